package tickets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/sievent/internal/broker"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/metrics"
	"github.com/kirinyoku/sievent/internal/repository"
	redisrepo "github.com/kirinyoku/sievent/internal/repository/redis"
	"github.com/kirinyoku/sievent/internal/uow"
	"github.com/shopspring/decimal"
)

type Config struct {
	MaxQuantity int
	// LockTTL bounds how long an idempotency key stays locked by a request
	// that never finishes.
	LockTTL    time.Duration
	SweepBatch int
}

type Service struct {
	store     repository.Store
	uow       *uow.UoW
	cache     *redisrepo.Cache
	limiter   *redisrepo.SlidingWindowLimiter
	idem      *redisrepo.IdempotencyStore
	publisher broker.Publisher
	logger    *slog.Logger
	cfg       Config
}

func New(
	store repository.Store,
	cache *redisrepo.Cache,
	limiter *redisrepo.SlidingWindowLimiter,
	idem *redisrepo.IdempotencyStore,
	publisher broker.Publisher,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.MaxQuantity <= 0 {
		cfg.MaxQuantity = 10
	}

	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}

	if cfg.SweepBatch <= 0 {
		cfg.SweepBatch = 100
	}

	if publisher == nil {
		publisher = broker.Nop{}
	}

	return &Service{
		store:     store,
		uow:       uow.NewUoW(store),
		cache:     cache,
		limiter:   limiter,
		idem:      idem,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
	}
}

// ReserveRequest asks for quantity tickets of one event on behalf of a user.
// IdempotencyKey is optional; a repeated key returns the first result.
type ReserveRequest struct {
	EventID        uuid.UUID
	UserID         uuid.UUID
	Quantity       int
	IdempotencyKey string
}

// CreatePaid reserves inventory and records a pending ticket that waits for
// payment. The unit price is the one observed by the inventory decrement.
//
// Returns:
//   - error: tickets.ErrEventNotFound if the event does not exist.
//   - error: tickets.ErrFreeEventNotAllowed if the event costs nothing.
//   - error: tickets.ErrInsufficientInventory if fewer than Quantity remain.
//   - error: tickets.ErrInvalidQuantity if Quantity is out of range.
//   - error: tickets.ErrRateLimited if the user reserves too often.
func (s *Service) CreatePaid(ctx context.Context, req ReserveRequest) (*domain.Ticket, error) {
	const op = "service.tickets.CreatePaid"

	t, err := s.reserve(ctx, req, func(snap *domain.InventorySnapshot) (*domain.Ticket, error) {
		if !snap.Price.IsPositive() {
			return nil, ErrFreeEventNotAllowed
		}

		total := snap.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))
		if !total.IsPositive() {
			return nil, ErrInvalidQuantity
		}

		return &domain.Ticket{
			ID:        uuid.New(),
			EventID:   req.EventID,
			UserID:    req.UserID,
			Quantity:  req.Quantity,
			Price:     snap.Price,
			Total:     total,
			EventDate: snap.Date,
			Status:    domain.TicketPending,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

// CreateFree reserves inventory of a free event and records the ticket as
// paid right away.
func (s *Service) CreateFree(ctx context.Context, req ReserveRequest) (*domain.Ticket, error) {
	const op = "service.tickets.CreateFree"

	t, err := s.reserve(ctx, req, func(snap *domain.InventorySnapshot) (*domain.Ticket, error) {
		if snap.Price.IsPositive() {
			return nil, ErrPaidEventNotAllowed
		}

		return &domain.Ticket{
			ID:        uuid.New(),
			EventID:   req.EventID,
			UserID:    req.UserID,
			Quantity:  req.Quantity,
			Price:     decimal.Zero,
			Total:     decimal.Zero,
			EventDate: snap.Date,
			Status:    domain.TicketPaid,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

func (s *Service) reserve(
	ctx context.Context,
	req ReserveRequest,
	build func(snap *domain.InventorySnapshot) (*domain.Ticket, error),
) (*domain.Ticket, error) {
	if req.Quantity < 1 || req.Quantity > s.cfg.MaxQuantity {
		return nil, ErrInvalidQuantity
	}

	ok, retry, err := s.limiter.Allow(ctx, req.UserID.String())
	if err != nil {
		s.logger.Warn("rate limiter unavailable", slog.Any("err", err))
	} else if !ok {
		return nil, RateLimitedError{RetryAfter: retry}
	}

	if req.IdempotencyKey == "" || !s.idem.Enabled() {
		return s.reserveTx(ctx, req, build)
	}

	key := redisrepo.KeyIdemTicket(req.UserID, req.IdempotencyKey)

	payload, found, locked, err := s.idem.GetResult(ctx, key)
	if err != nil {
		return nil, err
	}
	if found {
		var t domain.Ticket
		if err := json.Unmarshal(payload, &t); err != nil {
			return nil, err
		}
		return &t, nil
	}
	if locked {
		return nil, ErrRequestInFlight
	}

	acquired, err := s.idem.AcquireLock(ctx, key, s.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrRequestInFlight
	}

	t, err := s.reserveTx(ctx, req, build)
	if err != nil {
		_ = s.idem.Release(context.WithoutCancel(ctx), key)
		return nil, err
	}

	if b, err := json.Marshal(t); err == nil {
		if err := s.idem.SaveResult(context.WithoutCancel(ctx), key, b); err != nil {
			s.logger.Warn("idempotency result not saved", slog.String("ticket_id", t.ID.String()), slog.Any("err", err))
		}
	}

	return t, nil
}

func (s *Service) reserveTx(
	ctx context.Context,
	req ReserveRequest,
	build func(snap *domain.InventorySnapshot) (*domain.Ticket, error),
) (*domain.Ticket, error) {
	var ticket *domain.Ticket

	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Repositories, after func(uow.AfterCommit)) error {
		snap, err := tx.Events().Reserve(ctx, req.EventID, req.Quantity)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrNotFound):
				return ErrEventNotFound
			case errors.Is(err, repository.ErrInsufficientInventory):
				metrics.InventoryRejected()
				return ErrInsufficientInventory
			}
			return err
		}

		t, err := build(snap)
		if err != nil {
			return err
		}

		if err := tx.Tickets().Create(ctx, t); err != nil {
			return err
		}

		ticket = t

		after(func(ctx context.Context) {
			metrics.TicketTransition("", string(t.Status))
			s.invalidateEvent(ctx, t.EventID)

			typ := broker.TicketReserved
			if t.Status == domain.TicketPaid {
				typ = broker.TicketPaid
			}
			s.publish(ctx, broker.NewTicketMessage(typ, t.ID, t.EventID, t.UserID))
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return ticket, nil
}

// Cancel ends a pending reservation on the owner's request and gives its
// quantity back to the event.
//
// Returns:
//   - error: tickets.ErrTicketNotFound if the ticket does not exist.
//   - error: tickets.ErrNotOwner if the caller does not own it.
//   - error: tickets.ErrInvalidState if the ticket is not pending.
func (s *Service) Cancel(ctx context.Context, ticketID, userID uuid.UUID) (*domain.Ticket, error) {
	const op = "service.tickets.Cancel"

	var out *domain.Ticket

	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Repositories, after func(uow.AfterCommit)) error {
		t, err := s.owned(ctx, tx, ticketID, userID)
		if err != nil {
			return err
		}

		if !t.Status.CanTransitionTo(domain.TicketCancelled) {
			return InvalidStateError{TicketID: t.ID, Status: t.Status}
		}

		cancelled, err := ReleaseHold(ctx, tx, after, t)
		if err != nil {
			return err
		}

		out = cancelled

		after(func(ctx context.Context) {
			s.invalidateEvent(ctx, cancelled.EventID)
			s.publish(ctx, broker.NewTicketMessage(broker.TicketCancelled, cancelled.ID, cancelled.EventID, cancelled.UserID))
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Delete removes a pending ticket outright. Its hold is released the same
// way a cancellation releases it.
func (s *Service) Delete(ctx context.Context, ticketID, userID uuid.UUID) error {
	const op = "service.tickets.Delete"

	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Repositories, after func(uow.AfterCommit)) error {
		t, err := s.owned(ctx, tx, ticketID, userID)
		if err != nil {
			return err
		}

		if t.Status != domain.TicketPending {
			return InvalidStateError{TicketID: t.ID, Status: t.Status}
		}

		deleted, err := tx.Tickets().DeletePending(ctx, t.ID)
		if err != nil {
			if errors.Is(err, repository.ErrStateMismatch) {
				return InvalidStateError{TicketID: t.ID, Status: t.Status}
			}
			return err
		}

		if err := release(ctx, tx, deleted); err != nil {
			return err
		}

		after(func(ctx context.Context) {
			metrics.TicketTransition(string(domain.TicketPending), "deleted")
			s.invalidateEvent(ctx, deleted.EventID)
			s.publish(ctx, broker.NewTicketMessage(broker.TicketCancelled, deleted.ID, deleted.EventID, deleted.UserID))
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Get returns the caller's own ticket. Tickets of other users are reported
// as missing.
func (s *Service) Get(ctx context.Context, ticketID, userID uuid.UUID) (*domain.Ticket, error) {
	const op = "service.tickets.Get"

	t, err := s.store.Tickets().Get(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if t.UserID != userID {
		return nil, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
	}

	return t, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.TicketWithEvent, error) {
	const op = "service.tickets.ListForUser"

	list, err := s.store.Tickets().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

// ExpireStale cancels pending tickets created before the cutoff and
// releases their holds. Tickets that change state while the sweep runs are
// skipped. It returns the number of tickets cancelled.
func (s *Service) ExpireStale(ctx context.Context, createdBefore time.Time) (int, error) {
	const op = "service.tickets.ExpireStale"

	stale, err := s.store.Tickets().ListStalePending(ctx, createdBefore, s.cfg.SweepBatch)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	expired := 0
	for i := range stale {
		t := stale[i]

		err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Repositories, after func(uow.AfterCommit)) error {
			cancelled, err := ReleaseHold(ctx, tx, after, &t)
			if err != nil {
				return err
			}

			after(func(ctx context.Context) {
				s.invalidateEvent(ctx, cancelled.EventID)
				s.publish(ctx, broker.NewTicketMessage(broker.TicketCancelled, cancelled.ID, cancelled.EventID, cancelled.UserID))
			})

			return nil
		})
		if err != nil {
			if errors.Is(err, ErrInvalidState) || errors.Is(err, ErrTicketNotFound) {
				continue
			}
			return expired, fmt.Errorf("%s: %w", op, err)
		}

		expired++
	}

	return expired, nil
}

// ReleaseHold moves a pending ticket to cancelled and returns its quantity
// to the event, inside the caller's transaction. The conditional transition
// guarantees the quantity is returned at most once. The transition is
// counted once the transaction commits.
//
// Returns:
//   - *domain.Ticket: the cancelled ticket.
//   - error: tickets.ErrInvalidState if the ticket is no longer pending.
//   - error: tickets.ErrTicketNotFound if the ticket is gone.
func ReleaseHold(
	ctx context.Context,
	tx repository.Repositories,
	after func(uow.AfterCommit),
	t *domain.Ticket,
) (*domain.Ticket, error) {
	cancelled, err := tx.Tickets().Transition(ctx, t.ID, domain.TicketPending, domain.TicketCancelled)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStateMismatch):
			return nil, InvalidStateError{TicketID: t.ID, Status: t.Status}
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	if err := release(ctx, tx, cancelled); err != nil {
		return nil, err
	}

	after(func(context.Context) {
		metrics.TicketTransition(string(domain.TicketPending), string(domain.TicketCancelled))
	})

	return cancelled, nil
}

// release returns the ticket's quantity to its event. A deleted event has
// no inventory left to restore.
func release(ctx context.Context, tx repository.Repositories, t *domain.Ticket) error {
	err := tx.Events().Release(ctx, t.EventID, t.Quantity)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

func (s *Service) owned(ctx context.Context, tx repository.Repositories, ticketID, userID uuid.UUID) (*domain.Ticket, error) {
	t, err := tx.Tickets().Get(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	if t.UserID != userID {
		return nil, ErrNotOwner
	}

	return t, nil
}

func (s *Service) invalidateEvent(ctx context.Context, eventID uuid.UUID) {
	if err := s.cache.InvalidateEvent(ctx, eventID); err != nil {
		s.logger.Warn("event cache invalidation failed", slog.String("event_id", eventID.String()), slog.Any("err", err))
	}
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
