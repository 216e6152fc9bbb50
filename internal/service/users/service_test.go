package users

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/sievent/internal/auth"
	"github.com/kirinyoku/sievent/internal/domain"
	mailer "github.com/kirinyoku/sievent/internal/mail"
	"github.com/kirinyoku/sievent/internal/repository/memory"
	redisrepo "github.com/kirinyoku/sievent/internal/repository/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type otpMap struct {
	mu    sync.Mutex
	codes map[string]string
}

func (o *otpMap) key(purpose string, userID uuid.UUID) string { return purpose + ":" + userID.String() }

func (o *otpMap) Save(_ context.Context, purpose string, userID uuid.UUID, code string, _ time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.codes[o.key(purpose, userID)] = code
	return nil
}

func (o *otpMap) Verify(_ context.Context, purpose string, userID uuid.UUID, code string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	stored, ok := o.codes[o.key(purpose, userID)]
	if !ok {
		return redisrepo.ErrOTPExpired
	}
	if stored != code {
		return redisrepo.ErrOTPMismatch
	}
	delete(o.codes, o.key(purpose, userID))
	return nil
}

func (o *otpMap) code(purpose string, userID uuid.UUID) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.codes[o.key(purpose, userID)]
}

type outbox struct{ sent []mailer.Message }

func (o *outbox) Send(_ context.Context, msg mailer.Message) error {
	o.sent = append(o.sent, msg)
	return nil
}

type fixture struct {
	store *memory.Store
	svc   *Service
	otp   *otpMap
	mails *outbox
}

func newFixture() *fixture {
	store := memory.New()
	otp := &otpMap{codes: map[string]string{}}
	mails := &outbox{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		store: store,
		svc:   New(store, auth.NewSigner("session-secret"), otp, mails, logger, Config{}),
		otp:   otp,
		mails: mails,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sess, err := f.svc.Register(ctx, "Ayu", " Ayu@Example.com ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "ayu@example.com", sess.User.Email)
	assert.NotEmpty(t, sess.Token)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), sess.ExpiresAt, time.Minute)
	require.Len(t, f.mails.sent, 1)

	_, err = f.svc.Register(ctx, "Ayu", "ayu@example.com", "secret123")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = f.svc.Login(ctx, "ayu@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := f.svc.Login(ctx, "AYU@example.com", "secret123")
	require.NoError(t, err)

	u, err := f.svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, u.ID)

	_, err = f.svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "", "a@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Register(ctx, "A", "not-an-email", "secret123")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Register(ctx, "A", "a@example.com", "123")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestVerifyAccount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sess, err := f.svc.Register(ctx, "Ayu", "ayu@example.com", "secret123")
	require.NoError(t, err)
	id := sess.User.ID

	assert.ErrorIs(t, f.svc.VerifyAccount(ctx, id, "123456"), ErrOTPExpired)

	require.NoError(t, f.svc.SendVerifyOTP(ctx, id))
	code := f.otp.code(purposeVerify, id)
	require.Len(t, code, 6)
	assert.Contains(t, f.mails.sent[len(f.mails.sent)-1].HTML, code)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	assert.ErrorIs(t, f.svc.VerifyAccount(ctx, id, wrong), ErrInvalidOTP)
	require.NoError(t, f.svc.VerifyAccount(ctx, id, code))

	u, err := f.svc.Me(ctx, id)
	require.NoError(t, err)
	assert.True(t, u.IsAccountVerified)

	assert.ErrorIs(t, f.svc.SendVerifyOTP(ctx, id), ErrAlreadyVerified)
}

func TestResetPassword(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sess, err := f.svc.Register(ctx, "Ayu", "ayu@example.com", "secret123")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.SendResetOTP(ctx, "nobody@example.com"), ErrUserNotFound)

	require.NoError(t, f.svc.SendResetOTP(ctx, "ayu@example.com"))
	code := f.otp.code(purposeReset, sess.User.ID)

	require.NoError(t, f.svc.ResetPassword(ctx, "ayu@example.com", code, "newsecret"))
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "ayu@example.com", code, "newsecret"), ErrOTPExpired)

	_, err = f.svc.Login(ctx, "ayu@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "ayu@example.com", "newsecret")
	assert.NoError(t, err)
}

func TestOTPDisabled(t *testing.T) {
	store := memory.New()
	svc := New(store, auth.NewSigner("s"), nil, &outbox{}, slog.New(slog.NewTextHandler(io.Discard, nil)), Config{})
	ctx := context.Background()

	sess, err := svc.Register(ctx, "Ayu", "ayu@example.com", "secret123")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.SendVerifyOTP(ctx, sess.User.ID), ErrOTPUnavailable)
}

func TestCreatorRequestFlow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	admin := domain.Actor{UserID: uuid.New(), IsAdmin: true}

	a, err := f.svc.Register(ctx, "Ayu", "ayu@example.com", "secret123")
	require.NoError(t, err)
	b, err := f.svc.Register(ctx, "Budi", "budi@example.com", "secret123")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.ApproveCreator(ctx, admin, a.User.ID), ErrNoCreatorRequest)

	require.NoError(t, f.svc.RequestCreator(ctx, a.User.ID))
	require.NoError(t, f.svc.RequestCreator(ctx, b.User.ID))

	_, err = f.svc.ListCreatorRequests(ctx, domain.Actor{UserID: a.User.ID})
	assert.ErrorIs(t, err, ErrNotAdmin)

	pending, err := f.svc.ListCreatorRequests(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, f.svc.ApproveCreator(ctx, admin, a.User.ID))
	require.NoError(t, f.svc.RejectCreator(ctx, admin, b.User.ID))

	ua, err := f.svc.Me(ctx, a.User.ID)
	require.NoError(t, err)
	assert.True(t, ua.IsCreator)
	assert.False(t, ua.CreatorRequest)

	ub, err := f.svc.Me(ctx, b.User.ID)
	require.NoError(t, err)
	assert.False(t, ub.IsCreator)
	assert.False(t, ub.CreatorRequest)

	assert.ErrorIs(t, f.svc.RequestCreator(ctx, a.User.ID), ErrAlreadyCreator)

	pending, err = f.svc.ListCreatorRequests(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
