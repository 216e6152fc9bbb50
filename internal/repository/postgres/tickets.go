package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/repository"
)

const ticketColumns = `id, event_id, user_id, quantity, price, total, event_date, status,
	is_scanned, scanned_at, verified_by_creator, payment_id, payment_url, created_at, updated_at`

type TicketRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *TicketRepo) With(db DB) *TicketRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *TicketRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func scanTicket(row pgx.Row, extra ...any) (*domain.Ticket, error) {
	var t domain.Ticket
	dest := []any{
		&t.ID, &t.EventID, &t.UserID, &t.Quantity, &t.Price, &t.Total, &t.EventDate, &t.Status,
		&t.IsScanned, &t.ScannedAt, &t.VerifiedByCreator, &t.PaymentID, &t.PaymentURL, &t.CreatedAt, &t.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	const op = "postgres.TicketRepo.Create"

	err := r.handle().QueryRow(ctx,
		`INSERT INTO tickets (id, event_id, user_id, quantity, price, total, event_date, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		t.ID, t.EventID, t.UserID, t.Quantity, t.Price, t.Total, t.EventDate, t.Status,
	).Scan(&t.CreatedAt, &t.UpdatedAt)

	return wrapDBErr(op, err)
}

func (r *TicketRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	const op = "postgres.TicketRepo.Get"

	t, err := scanTicket(r.handle().QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

// ListByUser returns the user's tickets newest first. Tickets whose event
// has been deleted are still listed with empty event fields.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.TicketWithEvent, error) {
	const op = "postgres.TicketRepo.ListByUser"

	rows, err := r.handle().Query(ctx,
		`SELECT t.id, t.event_id, t.user_id, t.quantity, t.price, t.total, t.event_date, t.status,
		        t.is_scanned, t.scanned_at, t.verified_by_creator, t.payment_id, t.payment_url,
		        t.created_at, t.updated_at,
		        COALESCE(e.name, ''), COALESCE(e.location, ''), COALESCE(e.type, '')
		 FROM tickets t
		 LEFT JOIN events e ON e.id = t.event_id
		 WHERE t.user_id = $1
		 ORDER BY t.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.TicketWithEvent
	for rows.Next() {
		var tw domain.TicketWithEvent
		t, err := scanTicket(rows, &tw.EventName, &tw.EventLocation, &tw.EventType)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		tw.Ticket = *t
		out = append(out, tw)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// Transition moves the ticket from one status to another.
//
// The status guard is part of the UPDATE, so concurrent callers racing on
// the same edge see exactly one winner.
//
// Returns:
//   - *domain.Ticket: the ticket after the transition.
//   - error: repository.ErrNotFound if the ticket does not exist.
//   - error: repository.ErrStateMismatch if its status is not from.
func (r *TicketRepo) Transition(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.TicketStatus,
) (*domain.Ticket, error) {
	const op = "postgres.TicketRepo.Transition"

	if !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("%s: %s -> %s: %w", op, from, to, repository.ErrStateMismatch)
	}

	t, err := scanTicket(r.handle().QueryRow(ctx,
		`UPDATE tickets
		 SET status = $3, updated_at = now()
		 WHERE id = $1 AND status = $2
		 RETURNING `+ticketColumns,
		id, from, to,
	))
	if err == nil {
		return t, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrapDBErr(op, err)
	}

	if _, err := r.Get(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return nil, fmt.Errorf("%s: %w", op, repository.ErrStateMismatch)
}

func (r *TicketRepo) DeletePending(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	const op = "postgres.TicketRepo.DeletePending"

	t, err := scanTicket(r.handle().QueryRow(ctx,
		`DELETE FROM tickets
		 WHERE id = $1 AND status = 'pending'
		 RETURNING `+ticketColumns,
		id,
	))
	if err == nil {
		return t, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrapDBErr(op, err)
	}

	if _, err := r.Get(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return nil, fmt.Errorf("%s: %w", op, repository.ErrStateMismatch)
}

func (r *TicketRepo) SetPayment(ctx context.Context, id, paymentID uuid.UUID, paymentURL string) error {
	const op = "postgres.TicketRepo.SetPayment"

	tag, err := r.handle().Exec(ctx,
		`UPDATE tickets
		 SET payment_id = $2, payment_url = $3, updated_at = now()
		 WHERE id = $1`,
		id, paymentID, paymentURL,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}

// Redeem consumes a paid ticket bound to the given user and event.
//
// Returns:
//   - *domain.Ticket: the ticket, now used.
//   - error: repository.ErrNotFound if no ticket matches the triple.
//   - error: repository.ErrStateMismatch if the ticket exists but is not
//     a paid, unscanned ticket.
func (r *TicketRepo) Redeem(ctx context.Context, id, userID, eventID uuid.UUID, at time.Time) (*domain.Ticket, error) {
	const op = "postgres.TicketRepo.Redeem"

	db := r.handle()

	t, err := scanTicket(db.QueryRow(ctx,
		`UPDATE tickets
		 SET is_scanned = TRUE, verified_by_creator = TRUE, status = 'used',
		     scanned_at = $4, updated_at = $4
		 WHERE id = $1 AND user_id = $2 AND event_id = $3
		   AND status = 'paid' AND NOT is_scanned
		 RETURNING `+ticketColumns,
		id, userID, eventID, at,
	))
	if err == nil {
		return t, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrapDBErr(op, err)
	}

	var exists bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tickets WHERE id = $1 AND user_id = $2 AND event_id = $3)`,
		id, userID, eventID,
	).Scan(&exists); err != nil {
		return nil, wrapDBErr(op, err)
	}

	if !exists {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil, fmt.Errorf("%s: %w", op, repository.ErrStateMismatch)
}

func (r *TicketRepo) ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Ticket, error) {
	const op = "postgres.TicketRepo.ListStalePending"

	rows, err := r.handle().Query(ctx,
		`SELECT `+ticketColumns+` FROM tickets
		 WHERE status = 'pending' AND created_at < $1
		 ORDER BY created_at ASC
		 LIMIT $2`,
		createdBefore, limit,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
