package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/sievent/internal/domain"
)

// EventRepository stores events and owns the inventory counter.
type EventRepository interface {
	Create(ctx context.Context, e *domain.Event) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	List(ctx context.Context, limit, offset int) ([]domain.Event, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]domain.Event, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.EventPatch) (*domain.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Reserve decrements ticket_available by qty in a single conditional
	// update. It returns ErrInsufficientInventory when fewer than qty remain
	// and ErrNotFound when the event does not exist.
	Reserve(ctx context.Context, id uuid.UUID, qty int) (*domain.InventorySnapshot, error)

	// Release increments ticket_available by qty.
	Release(ctx context.Context, id uuid.UUID, qty int) error
}

type TicketRepository interface {
	Create(ctx context.Context, t *domain.Ticket) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.TicketWithEvent, error)

	// Transition moves a ticket from one status to another only if its
	// current status equals from. ErrStateMismatch is returned otherwise.
	Transition(ctx context.Context, id uuid.UUID, from, to domain.TicketStatus) (*domain.Ticket, error)

	// DeletePending removes a ticket that is still pending and returns the
	// deleted row. ErrStateMismatch is returned for any other status.
	DeletePending(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)

	SetPayment(ctx context.Context, id, paymentID uuid.UUID, paymentURL string) error

	// Redeem marks a paid, unscanned ticket matching the triple as used.
	// ErrStateMismatch is returned when no such ticket exists.
	Redeem(ctx context.Context, id, userID, eventID uuid.UUID, at time.Time) (*domain.Ticket, error)

	ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Ticket, error)
}

// PaymentUpdate is the authoritative gateway state written by reconciliation.
type PaymentUpdate struct {
	TransactionID string
	Status        domain.PaymentStatus
	PaymentType   *string
	Raw           []byte
}

type PaymentRepository interface {
	// Upsert inserts a payment or, when one already exists for the order id,
	// replaces its gateway fields.
	Upsert(ctx context.Context, p *domain.Payment) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, orderID string, upd PaymentUpdate) (*domain.Payment, error)
}

type RatingRepository interface {
	// Upsert creates the rating or updates the existing one for the same
	// (user, event) pair. created reports which happened.
	Upsert(ctx context.Context, r *domain.Rating) (created bool, err error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Rating, error)
	GetByUserEvent(ctx context.Context, userID, eventID uuid.UUID) (*domain.Rating, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Rating, error)
	Summary(ctx context.Context, eventID uuid.UUID) (*domain.RatingSummary, error)
	Update(ctx context.Context, id, userID uuid.UUID, stars *int, review *string) (*domain.Rating, error)
	Delete(ctx context.Context, id, userID uuid.UUID) (*domain.Rating, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListCreatorRequests(ctx context.Context) ([]domain.User, error)
	SetRoles(ctx context.Context, id uuid.UUID, isCreator, creatorRequest bool) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

type ReportRepository interface {
	Create(ctx context.Context, r *domain.Report) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	List(ctx context.Context) ([]domain.Report, error)
	UpdateDescription(ctx context.Context, id uuid.UUID, description string) (*domain.Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repositories groups the per-entity repositories bound to one handle,
// either the connection pool or an open transaction.
type Repositories interface {
	Events() EventRepository
	Tickets() TicketRepository
	Payments() PaymentRepository
	Ratings() RatingRepository
	Users() UserRepository
	Reports() ReportRepository
}

type Store interface {
	Repositories

	// RunTx runs fn inside a transaction. Repositories passed to fn are bound
	// to that transaction; fn returning an error rolls it back.
	RunTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
}
