package redemption

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/sievent/internal/auth"
	"github.com/kirinyoku/sievent/internal/broker"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/mail"
	"github.com/kirinyoku/sievent/internal/metrics"
	"github.com/kirinyoku/sievent/internal/repository"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

type Config struct {
	AppURL   string
	TokenTTL time.Duration
}

type Service struct {
	store     repository.Store
	signer    *auth.Signer
	mailer    mail.Mailer
	publisher broker.Publisher
	logger    *slog.Logger
	cfg       Config
	now       func() time.Time
}

func New(
	store repository.Store,
	signer *auth.Signer,
	mailer mail.Mailer,
	publisher broker.Publisher,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}

	if publisher == nil {
		publisher = broker.Nop{}
	}

	return &Service{
		store:     store,
		signer:    signer,
		mailer:    mailer,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type AdmissionEvent struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
}

type AdmissionUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Admission is what the gate shows after a successful scan.
type Admission struct {
	TicketID  uuid.UUID      `json:"ticket_id"`
	Quantity  int            `json:"quantity"`
	ScannedAt time.Time      `json:"scanned_at"`
	Event     AdmissionEvent `json:"event"`
	User      AdmissionUser  `json:"user"`
}

// Verify redeems the ticket a token was minted for. Of any number of
// concurrent calls for the same ticket exactly one succeeds.
//
// Returns:
//   - error: redemption.ErrInvalidToken or redemption.ErrTokenExpired for a
//     token that does not verify.
//   - error: redemption.ErrTicketNotFound if no paid ticket matches the
//     token's ticket, user and event.
//   - error: redemption.AlreadyUsedError if the ticket was redeemed before.
func (s *Service) Verify(ctx context.Context, token string) (*Admission, error) {
	const op = "service.redemption.Verify"

	claims, err := s.signer.ParseTicket(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			metrics.Redemption("expired")
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}
		metrics.Redemption("invalid_token")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	t, err := s.store.Tickets().Redeem(ctx, claims.TicketID, claims.UserID, claims.EventID, s.now())
	if err != nil {
		err = s.redeemFailure(ctx, claims, err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.Redemption("ok")
	metrics.TicketTransition(string(domain.TicketPaid), string(domain.TicketUsed))

	if err := s.publisher.Publish(ctx, broker.NewTicketMessage(broker.TicketUsed, t.ID, t.EventID, t.UserID)); err != nil {
		s.logger.Warn("ticket message not published", slog.String("ticket_id", t.ID.String()), slog.Any("err", err))
	}

	return s.admission(ctx, t), nil
}

func (s *Service) redeemFailure(ctx context.Context, claims *auth.TicketClaims, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		metrics.Redemption("not_found")
		return ErrTicketNotFound
	case !errors.Is(err, repository.ErrStateMismatch):
		return err
	}

	t, err := s.store.Tickets().Get(ctx, claims.TicketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.Redemption("not_found")
			return ErrTicketNotFound
		}
		return err
	}

	if t.IsScanned {
		metrics.Redemption("already_used")

		var at time.Time
		if t.ScannedAt != nil {
			at = *t.ScannedAt
		}
		return AlreadyUsedError{TicketID: t.ID, ScannedAt: at}
	}

	metrics.Redemption("not_found")
	return ErrTicketNotFound
}

func (s *Service) admission(ctx context.Context, t *domain.Ticket) *Admission {
	a := &Admission{
		TicketID: t.ID,
		Quantity: t.Quantity,
		Event:    AdmissionEvent{ID: t.EventID, Date: t.EventDate},
		User:     AdmissionUser{ID: t.UserID},
	}
	if t.ScannedAt != nil {
		a.ScannedAt = *t.ScannedAt
	}

	if e, err := s.store.Events().Get(ctx, t.EventID); err == nil {
		a.Event.Name, a.Event.Location = e.Name, e.Location
	}

	if u, err := s.store.Users().Get(ctx, t.UserID); err == nil {
		a.User.Name, a.User.Email = u.Name, u.Email
	}

	return a
}

// Mint issues the redemption token for a ticket.
func (s *Service) Mint(t *domain.Ticket) (string, time.Time, error) {
	const op = "service.redemption.Mint"

	token, exp, err := s.signer.SignTicket(t.ID, t.UserID, t.EventID, s.cfg.TokenTTL)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return token, exp, nil
}

// VerifyURL is the link encoded in the QR code of an offline ticket.
func (s *Service) VerifyURL(token string) string {
	return strings.TrimRight(s.cfg.AppURL, "/") + "/api/qr/verify?token=" + url.QueryEscape(token)
}

// SendOfflineTicket emails the QR e-ticket of a paid ticket for an offline
// event to its owner.
func (s *Service) SendOfflineTicket(ctx context.Context, ticketID, userID uuid.UUID) error {
	const op = "service.redemption.SendOfflineTicket"

	if err := s.deliver(ctx, ticketID, &userID, domain.EventOffline); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SendOnlineTicket emails the event link of a paid ticket for an online
// event to its owner.
func (s *Service) SendOnlineTicket(ctx context.Context, ticketID, userID uuid.UUID) error {
	const op = "service.redemption.SendOnlineTicket"

	if err := s.deliver(ctx, ticketID, &userID, domain.EventOnline); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// HandleMessage delivers the e-ticket once a ticket becomes paid. Failures
// are logged; the payment stays settled either way.
func (s *Service) HandleMessage(ctx context.Context, msg broker.TicketMessage) {
	if msg.Type != broker.TicketPaid {
		return
	}

	if err := s.deliver(ctx, msg.TicketID, nil, ""); err != nil {
		s.logger.Error("e-ticket delivery failed",
			slog.String("ticket_id", msg.TicketID.String()),
			slog.Any("err", err),
		)
	}
}

// deliver sends the e-ticket matching the event type. A nil userID skips
// the ownership check and an empty want accepts either type.
func (s *Service) deliver(ctx context.Context, ticketID uuid.UUID, userID *uuid.UUID, want domain.EventType) error {
	t, err := s.store.Tickets().Get(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTicketNotFound
		}
		return err
	}

	if userID != nil && t.UserID != *userID {
		return ErrTicketNotFound
	}

	if t.Status != domain.TicketPaid {
		return ErrNotPaid
	}

	e, err := s.store.Events().Get(ctx, t.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTicketNotFound
		}
		return err
	}

	if want != "" && e.Type != want {
		return ErrWrongEventType
	}

	u, err := s.store.Users().Get(ctx, t.UserID)
	if err != nil {
		return err
	}

	details := mail.TicketDetails{
		Name:      u.Name,
		TicketID:  t.ID.String(),
		EventName: e.Name,
		Date:      e.Date,
		Location:  e.Location,
		Quantity:  t.Quantity,
	}

	var msg mail.Message
	if e.Type == domain.EventOnline {
		msg = mail.OnlineTicket(u.Email, details, e.Location)
	} else {
		token, exp, err := s.Mint(t)
		if err != nil {
			return err
		}

		png, err := qrcode.Encode(s.VerifyURL(token), qrcode.Medium, qrSize)
		if err != nil {
			return err
		}

		msg = mail.OfflineTicket(u.Email, details, png, exp)
	}

	return s.mailer.Send(ctx, msg)
}
