package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kirinyoku/sievent/internal/broker"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/gateway"
	"github.com/kirinyoku/sievent/internal/metrics"
	"github.com/kirinyoku/sievent/internal/repository"
	redisrepo "github.com/kirinyoku/sievent/internal/repository/redis"
	"github.com/kirinyoku/sievent/internal/service/tickets"
	"github.com/kirinyoku/sievent/internal/uow"
	"github.com/shopspring/decimal"
)

type Service struct {
	store     repository.Store
	uow       *uow.UoW
	gateway   gateway.Gateway
	cache     *redisrepo.Cache
	publisher broker.Publisher
	logger    *slog.Logger
}

func New(
	store repository.Store,
	gw gateway.Gateway,
	cache *redisrepo.Cache,
	publisher broker.Publisher,
	logger *slog.Logger,
) *Service {
	if publisher == nil {
		publisher = broker.Nop{}
	}

	return &Service{
		store:     store,
		uow:       uow.NewUoW(store),
		gateway:   gw,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

// Checkout is what the client needs to continue to the hosted payment page.
type Checkout struct {
	PaymentID   uuid.UUID       `json:"payment_id"`
	OrderID     string          `json:"order_id"`
	Token       string          `json:"token"`
	RedirectURL string          `json:"redirect_url"`
	Amount      decimal.Decimal `json:"amount"`
}

// Initiate opens a gateway transaction for a pending ticket and records it
// as a pending payment. A ticket that already has an open transaction gets
// the stored checkout back.
//
// Parameters:
//   - ticketID: the ticket to pay for.
//   - userID: the caller; must own the ticket.
//
// Returns:
//   - error: tickets.ErrTicketNotFound, tickets.ErrNotOwner or
//     tickets.ErrInvalidState when the ticket cannot be paid.
//   - error: payments.ErrGateway if the provider call fails. The ticket
//     stays pending and keeps its hold, so the call may be retried.
func (s *Service) Initiate(ctx context.Context, ticketID, userID uuid.UUID) (*Checkout, error) {
	const op = "service.payments.Initiate"

	t, err := s.payableTicket(ctx, s.store, ticketID, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orderID := t.OrderID()

	existing, err := s.store.Payments().GetByOrderID(ctx, orderID)
	switch {
	case err == nil:
		if existing.TransactionStatus == domain.PaymentPending && t.PaymentURL != "" {
			return &Checkout{
				PaymentID:   existing.ID,
				OrderID:     orderID,
				Token:       existing.Token,
				RedirectURL: existing.RedirectURL,
				Amount:      existing.GrossAmount,
			}, nil
		}
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	amount := decimal.NewFromInt(t.Total.IntPart())

	tx, err := s.gateway.CreateTransaction(ctx, gateway.TransactionRequest{
		OrderID:  orderID,
		Amount:   amount,
		Customer: gateway.Customer{Name: user.Name, Email: user.Email},
	})
	if err != nil {
		metrics.GatewayError("create_transaction")
		s.logger.Error("gateway transaction failed", slog.String("order_id", orderID), slog.Any("err", err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrGateway, err)
	}

	p := &domain.Payment{
		ID:                uuid.New(),
		UserID:            userID,
		TicketID:          t.ID,
		OrderID:           orderID,
		GrossAmount:       amount,
		TransactionStatus: domain.PaymentPending,
		Raw:               tx.Raw,
		Token:             tx.Token,
		RedirectURL:       tx.RedirectURL,
	}

	err = s.uow.Do(ctx, func(ctx context.Context, r repository.Repositories, _ func(uow.AfterCommit)) error {
		if _, err := s.payableTicket(ctx, r, ticketID, userID); err != nil {
			return err
		}

		if err := r.Payments().Upsert(ctx, p); err != nil {
			return err
		}

		return r.Tickets().SetPayment(ctx, t.ID, p.ID, tx.RedirectURL)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Checkout{
		PaymentID:   p.ID,
		OrderID:     orderID,
		Token:       p.Token,
		RedirectURL: p.RedirectURL,
		Amount:      amount,
	}, nil
}

// Notification is the part of a gateway callback the reconciliation reads.
// Any status the callback carries is ignored; Raw is only kept when the
// gateway's own answer has no body.
type Notification struct {
	OrderID string
	Raw     []byte
}

// Reconcile applies the gateway's authoritative status of an order. It is
// safe to call repeatedly for the same order: a settled ticket is paid once
// and a failed transaction releases the hold once.
//
// Returns:
//   - *domain.Payment: the payment after the update.
//   - error: payments.ErrPaymentNotFound if no payment has the order id.
//   - error: payments.ErrGateway if the status could not be fetched; nothing
//     is written in that case.
func (s *Service) Reconcile(ctx context.Context, n Notification) (*domain.Payment, error) {
	const op = "service.payments.Reconcile"

	if _, err := s.store.Payments().GetByOrderID(ctx, n.OrderID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPaymentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	st, err := s.gateway.TransactionStatus(ctx, n.OrderID)
	if err != nil {
		metrics.GatewayError("transaction_status")
		return nil, fmt.Errorf("%s: %w: %w", op, ErrGateway, err)
	}

	raw := st.Raw
	if len(raw) == 0 {
		raw = n.Raw
	}

	var (
		payment *domain.Payment
		outcome string
	)

	err = s.uow.Do(ctx, func(ctx context.Context, r repository.Repositories, after func(uow.AfterCommit)) error {
		p, err := r.Payments().UpdateStatus(ctx, n.OrderID, repository.PaymentUpdate{
			TransactionID: st.TransactionID,
			Status:        st.Status,
			PaymentType:   st.PaymentType,
			Raw:           raw,
		})
		if err != nil {
			return err
		}
		payment = p

		switch {
		case st.Status == domain.PaymentSettlement:
			outcome, err = s.settle(ctx, r, p, after)
		case st.Status.Failed():
			outcome, err = s.abandon(ctx, r, p, after)
		default:
			outcome = "recorded"
		}

		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPaymentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.Reconciled(string(st.Status), outcome)

	return payment, nil
}

func (s *Service) settle(
	ctx context.Context,
	r repository.Repositories,
	p *domain.Payment,
	after func(uow.AfterCommit),
) (string, error) {
	t, err := r.Tickets().Transition(ctx, p.TicketID, domain.TicketPending, domain.TicketPaid)
	if err == nil {
		after(func(ctx context.Context) {
			metrics.TicketTransition(string(domain.TicketPending), string(domain.TicketPaid))
			s.publish(ctx, broker.NewTicketMessage(broker.TicketPaid, t.ID, t.EventID, t.UserID))
		})
		return "paid", nil
	}

	if errors.Is(err, repository.ErrNotFound) {
		after(func(context.Context) {
			s.logger.Error("settled payment has no ticket",
				slog.String("order_id", p.OrderID),
				slog.String("ticket_id", p.TicketID.String()),
			)
		})
		return "orphaned", nil
	}
	if !errors.Is(err, repository.ErrStateMismatch) {
		return "", err
	}

	cur, err := r.Tickets().Get(ctx, p.TicketID)
	if err != nil {
		return "", err
	}

	if cur.Status == domain.TicketPaid || cur.Status == domain.TicketUsed {
		return "duplicate", nil
	}

	after(func(context.Context) {
		s.logger.Error("settlement for a ticket that is no longer pending",
			slog.String("order_id", p.OrderID),
			slog.String("ticket_id", cur.ID.String()),
			slog.String("status", string(cur.Status)),
		)
	})

	return "orphaned", nil
}

func (s *Service) abandon(
	ctx context.Context,
	r repository.Repositories,
	p *domain.Payment,
	after func(uow.AfterCommit),
) (string, error) {
	t, err := tickets.ReleaseHold(ctx, r, after, &domain.Ticket{ID: p.TicketID})
	if err != nil {
		if errors.Is(err, tickets.ErrInvalidState) || errors.Is(err, tickets.ErrTicketNotFound) {
			return "duplicate", nil
		}
		return "", err
	}

	after(func(ctx context.Context) {
		if err := s.cache.InvalidateEvent(ctx, t.EventID); err != nil {
			s.logger.Warn("event cache invalidation failed", slog.String("event_id", t.EventID.String()), slog.Any("err", err))
		}
		s.publish(ctx, broker.NewTicketMessage(broker.TicketCancelled, t.ID, t.EventID, t.UserID))
	})

	return "cancelled", nil
}

// Get returns a payment owned by userID.
func (s *Service) Get(ctx context.Context, paymentID, userID uuid.UUID) (*domain.Payment, error) {
	const op = "service.payments.Get"

	p, err := s.store.Payments().Get(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPaymentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if p.UserID != userID {
		return nil, fmt.Errorf("%s: %w", op, ErrPaymentNotFound)
	}

	return p, nil
}

func (s *Service) payableTicket(ctx context.Context, r repository.Repositories, ticketID, userID uuid.UUID) (*domain.Ticket, error) {
	t, err := r.Tickets().Get(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, tickets.ErrTicketNotFound
		}
		return nil, err
	}

	if t.UserID != userID {
		return nil, tickets.ErrNotOwner
	}

	if t.Status != domain.TicketPending {
		return nil, tickets.InvalidStateError{TicketID: t.ID, Status: t.Status}
	}

	return t, nil
}

func (s *Service) publish(ctx context.Context, msg broker.TicketMessage) {
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.Warn("ticket message not published",
			slog.String("type", string(msg.Type)),
			slog.String("ticket_id", msg.TicketID.String()),
			slog.Any("err", err),
		)
	}
}
