package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

const issuer = "sievent"

// SessionClaims identify a logged in user.
type SessionClaims struct {
	UserID uuid.UUID `json:"uid"`
	jwt.RegisteredClaims
}

// TicketClaims bind a redemption token to one ticket, its owner and its
// event.
type TicketClaims struct {
	TicketID uuid.UUID `json:"ticketId"`
	UserID   uuid.UUID `json:"userId"`
	EventID  uuid.UUID `json:"eventId"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 tokens with a single secret. Sessions and
// redemption tokens use separate signers so one secret cannot mint the
// other kind.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) *Signer {
	return &Signer{
		secret: []byte(secret),
		now:    time.Now,
	}
}

func (s *Signer) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()

	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *Signer) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Signer) parse(token string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !parsed.Valid {
		return ErrInvalidToken
	}

	return nil
}

func (s *Signer) SignSession(userID uuid.UUID, ttl time.Duration) (string, time.Time, error) {
	const op = "auth.Signer.SignSession"

	claims := SessionClaims{
		UserID:           userID,
		RegisteredClaims: s.registered(userID.String(), ttl),
	}

	token, err := s.sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return token, claims.ExpiresAt.Time, nil
}

func (s *Signer) ParseSession(token string) (*SessionClaims, error) {
	var claims SessionClaims
	if err := s.parse(token, &claims); err != nil {
		return nil, err
	}

	if claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}

func (s *Signer) SignTicket(ticketID, userID, eventID uuid.UUID, ttl time.Duration) (string, time.Time, error) {
	const op = "auth.Signer.SignTicket"

	claims := TicketClaims{
		TicketID:         ticketID,
		UserID:           userID,
		EventID:          eventID,
		RegisteredClaims: s.registered(ticketID.String(), ttl),
	}

	token, err := s.sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return token, claims.ExpiresAt.Time, nil
}

// ParseTicket verifies a redemption token and returns its triple.
//
// Returns:
//   - error: ErrTokenExpired once the token is past its expiry.
//   - error: ErrInvalidToken for a bad signature or a malformed payload.
func (s *Signer) ParseTicket(token string) (*TicketClaims, error) {
	var claims TicketClaims
	if err := s.parse(token, &claims); err != nil {
		return nil, err
	}

	if claims.TicketID == uuid.Nil || claims.UserID == uuid.Nil || claims.EventID == uuid.Nil {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}
