package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/sievent/internal/auth"
	"github.com/kirinyoku/sievent/internal/domain"
	mailer "github.com/kirinyoku/sievent/internal/mail"
	"github.com/kirinyoku/sievent/internal/repository"
	redisrepo "github.com/kirinyoku/sievent/internal/repository/redis"
)

const (
	purposeVerify = "verify"
	purposeReset  = "reset"
	otpDigits     = 6
	minPassword   = 6
)

// OTPStore keeps one pending code per user and purpose.
type OTPStore interface {
	Save(ctx context.Context, purpose string, userID uuid.UUID, code string, ttl time.Duration) error
	Verify(ctx context.Context, purpose string, userID uuid.UUID, code string) error
}

type Config struct {
	SessionTTL   time.Duration
	VerifyOTPTTL time.Duration
	ResetOTPTTL  time.Duration
}

type Service struct {
	store  repository.Store
	signer *auth.Signer
	otp    OTPStore
	mailer mailer.Mailer
	logger *slog.Logger
	cfg    Config
}

// New builds the service. A nil otp disables the verification and password
// reset flows.
func New(
	store repository.Store,
	signer *auth.Signer,
	otp OTPStore,
	m mailer.Mailer,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}

	if cfg.VerifyOTPTTL <= 0 {
		cfg.VerifyOTPTTL = 24 * time.Hour
	}

	if cfg.ResetOTPTTL <= 0 {
		cfg.ResetOTPTTL = 15 * time.Minute
	}

	return &Service{
		store:  store,
		signer: signer,
		otp:    otp,
		mailer: m,
		logger: logger,
		cfg:    cfg,
	}
}

// Session is a signed-in user together with its bearer token.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and signs it in.
//
// Returns:
//   - error: users.ErrInvalidInput for a missing name, a malformed email or
//     a short password.
//   - error: users.ErrEmailTaken if the email is registered already.
func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	const op = "service.users.Register"

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name == "" {
		return nil, fmt.Errorf("%s: %w: name is required", op, ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%s: %w: email is malformed", op, ErrInvalidInput)
	}
	if len(password) < minPassword {
		return nil, fmt.Errorf("%s: %w: password must have at least %d characters", op, ErrInvalidInput, minPassword)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u := &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.store.Users().Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.send(ctx, mailer.Message{
		To:      u.Email,
		Subject: "Welcome to SiEvent",
		Text:    "Welcome to SiEvent. Your account has been created with email " + u.Email + ".",
	})

	sess, err := s.session(u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sess, nil
}

// Login checks the credentials and issues a session token. Unknown emails
// and wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	const op = "service.users.Login"

	u, err := s.store.Users().GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	sess, err := s.session(u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sess, nil
}

func (s *Service) session(u *domain.User) (*Session, error) {
	token, exp, err := s.signer.SignSession(u.ID, s.cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

// Authenticate resolves a session token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	const op = "service.users.Authenticate"

	claims, err := s.signer.ParseSession(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrSessionExpired)
		}
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	u, err := s.store.Users().Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	const op = "service.users.Me"

	u, err := s.get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

// SendVerifyOTP emails a fresh account verification code.
func (s *Service) SendVerifyOTP(ctx context.Context, userID uuid.UUID) error {
	const op = "service.users.SendVerifyOTP"

	u, err := s.get(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if u.IsAccountVerified {
		return fmt.Errorf("%s: %w", op, ErrAlreadyVerified)
	}

	code, err := s.issue(ctx, purposeVerify, u.ID, s.cfg.VerifyOTPTTL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.send(ctx, mailer.VerifyOTP(u.Email, u.Name, code, s.cfg.VerifyOTPTTL))

	return nil
}

func (s *Service) VerifyAccount(ctx context.Context, userID uuid.UUID, code string) error {
	const op = "service.users.VerifyAccount"

	u, err := s.get(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if u.IsAccountVerified {
		return fmt.Errorf("%s: %w", op, ErrAlreadyVerified)
	}

	if err := s.check(ctx, purposeVerify, u.ID, code); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.Users().MarkVerified(ctx, u.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SendResetOTP emails a password reset code to the account with the given
// email.
func (s *Service) SendResetOTP(ctx context.Context, email string) error {
	const op = "service.users.SendResetOTP"

	u, err := s.store.Users().GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	code, err := s.issue(ctx, purposeReset, u.ID, s.cfg.ResetOTPTTL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.send(ctx, mailer.ResetOTP(u.Email, u.Name, code, s.cfg.ResetOTPTTL))

	return nil
}

func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	const op = "service.users.ResetPassword"

	if len(newPassword) < minPassword {
		return fmt.Errorf("%s: %w: password must have at least %d characters", op, ErrInvalidInput, minPassword)
	}

	u, err := s.store.Users().GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.check(ctx, purposeReset, u.ID, code); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.Users().UpdatePassword(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) issue(ctx context.Context, purpose string, userID uuid.UUID, ttl time.Duration) (string, error) {
	if s.otp == nil {
		return "", ErrOTPUnavailable
	}

	code, err := auth.GenerateOTP(otpDigits)
	if err != nil {
		return "", err
	}

	if err := s.otp.Save(ctx, purpose, userID, code, ttl); err != nil {
		return "", err
	}

	return code, nil
}

func (s *Service) check(ctx context.Context, purpose string, userID uuid.UUID, code string) error {
	if s.otp == nil {
		return ErrOTPUnavailable
	}

	err := s.otp.Verify(ctx, purpose, userID, strings.TrimSpace(code))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redisrepo.ErrOTPExpired):
		return ErrOTPExpired
	case errors.Is(err, redisrepo.ErrOTPMismatch):
		return ErrInvalidOTP
	}
	return err
}

// RequestCreator asks an admin for the creator role.
func (s *Service) RequestCreator(ctx context.Context, userID uuid.UUID) error {
	const op = "service.users.RequestCreator"

	u, err := s.get(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if u.IsCreator {
		return fmt.Errorf("%s: %w", op, ErrAlreadyCreator)
	}

	if err := s.store.Users().SetRoles(ctx, u.ID, false, true); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) ListCreatorRequests(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	const op = "service.users.ListCreatorRequests"

	if !actor.IsAdmin {
		return nil, fmt.Errorf("%s: %w", op, ErrNotAdmin)
	}

	list, err := s.store.Users().ListCreatorRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

func (s *Service) ApproveCreator(ctx context.Context, actor domain.Actor, userID uuid.UUID) error {
	const op = "service.users.ApproveCreator"

	if err := s.decide(ctx, actor, userID, true); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) RejectCreator(ctx context.Context, actor domain.Actor, userID uuid.UUID) error {
	const op = "service.users.RejectCreator"

	if err := s.decide(ctx, actor, userID, false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) decide(ctx context.Context, actor domain.Actor, userID uuid.UUID, approve bool) error {
	if !actor.IsAdmin {
		return ErrNotAdmin
	}

	u, err := s.get(ctx, userID)
	if err != nil {
		return err
	}

	if !u.CreatorRequest {
		return ErrNoCreatorRequest
	}

	return s.store.Users().SetRoles(ctx, u.ID, approve, false)
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := s.store.Users().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) send(ctx context.Context, msg mailer.Message) {
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("mail delivery failed",
			slog.String("to", msg.To),
			slog.String("subject", msg.Subject),
			slog.Any("err", err),
		)
	}
}
