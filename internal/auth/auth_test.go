package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketTokenRoundTrip(t *testing.T) {
	s := NewSigner("qr-secret")
	ticketID, userID, eventID := uuid.New(), uuid.New(), uuid.New()

	token, exp, err := s.SignTicket(ticketID, userID, eventID, 24*time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp, 2*time.Second)

	claims, err := s.ParseTicket(token)
	require.NoError(t, err)
	assert.Equal(t, ticketID, claims.TicketID)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, eventID, claims.EventID)
}

func TestTicketTokenExpired(t *testing.T) {
	s := NewSigner("qr-secret")
	issued := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }

	token, _, err := s.SignTicket(uuid.New(), uuid.New(), uuid.New(), 24*time.Hour)
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(25 * time.Hour) }

	_, err = s.ParseTicket(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTicketTokenWrongSecret(t *testing.T) {
	token, _, err := NewSigner("a").SignTicket(uuid.New(), uuid.New(), uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = NewSigner("b").ParseTicket(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewSigner("a").ParseTicket("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTicketTokenRejectsNoneAlg(t *testing.T) {
	claims := TicketClaims{
		TicketID: uuid.New(), UserID: uuid.New(), EventID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewSigner("a").ParseTicket(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokenDoesNotRedeem(t *testing.T) {
	s := NewSigner("shared")

	token, _, err := s.SignSession(uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = s.ParseTicket(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := s.ParseSession(token)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, claims.UserID)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	assert.NoError(t, CheckPassword(hash, "s3cret!"))
	assert.ErrorIs(t, CheckPassword(hash, "nope"), ErrPasswordMismatch)
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateOTP(6)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.Regexp(t, `^[0-9]{6}$`, code)
	}
}
