package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/repository"
)

const eventColumns = `id, name, description, banner_url, type, date, location,
	latitude, longitude, price, ticket_available, creator_id, created_at, updated_at`

type EventRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *EventRepo) With(db DB) *EventRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *EventRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID, &e.Name, &e.Description, &e.BannerURL, &e.Type, &e.Date, &e.Location,
		&e.Latitude, &e.Longitude, &e.Price, &e.TicketAvailable, &e.CreatorID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEvents(rows pgx.Rows) ([]domain.Event, error) {
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}

	return out, rows.Err()
}

func (r *EventRepo) Create(ctx context.Context, e *domain.Event) error {
	const op = "postgres.EventRepo.Create"

	err := r.handle().QueryRow(ctx,
		`INSERT INTO events (id, name, description, banner_url, type, date, location,
		                     latitude, longitude, price, ticket_available, creator_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING created_at, updated_at`,
		e.ID, e.Name, e.Description, e.BannerURL, e.Type, e.Date, e.Location,
		e.Latitude, e.Longitude, e.Price, e.TicketAvailable, e.CreatorID,
	).Scan(&e.CreatedAt, &e.UpdatedAt)

	return wrapDBErr(op, err)
}

// Get retrieves an event by its ID.
//
// Returns:
//   - *domain.Event: the event when found.
//   - error: repository.ErrNotFound if the event is not found.
func (r *EventRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "postgres.EventRepo.Get"

	e, err := scanEvent(r.handle().QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return e, nil
}

func (r *EventRepo) List(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	const op = "postgres.EventRepo.List"

	rows, err := r.handle().Query(ctx,
		`SELECT `+eventColumns+` FROM events
		 ORDER BY date ASC, id ASC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := collectEvents(rows)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *EventRepo) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]domain.Event, error) {
	const op = "postgres.EventRepo.ListByCreator"

	rows, err := r.handle().Query(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE creator_id = $1
		 ORDER BY date ASC, id ASC`,
		creatorID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := collectEvents(rows)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// Update applies the non-nil fields of patch and returns the updated row.
func (r *EventRepo) Update(ctx context.Context, id uuid.UUID, patch domain.EventPatch) (*domain.Event, error) {
	const op = "postgres.EventRepo.Update"

	sets := make([]string, 0, 10)
	args := []any{id}

	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.BannerURL != nil {
		add("banner_url", *patch.BannerURL)
	}
	if patch.Type != nil {
		add("type", *patch.Type)
	}
	if patch.Date != nil {
		add("date", *patch.Date)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.Latitude != nil {
		add("latitude", *patch.Latitude)
	}
	if patch.Longitude != nil {
		add("longitude", *patch.Longitude)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.TicketAvailable != nil {
		add("ticket_available", *patch.TicketAvailable)
	}

	if len(sets) == 0 {
		return r.Get(ctx, id)
	}

	sets = append(sets, "updated_at = now()")

	e, err := scanEvent(r.handle().QueryRow(ctx,
		`UPDATE events SET `+strings.Join(sets, ", ")+`
		 WHERE id = $1
		 RETURNING `+eventColumns,
		args...,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return e, nil
}

func (r *EventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.EventRepo.Delete"

	tag, err := r.handle().Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}

// Reserve takes qty tickets out of the event's inventory.
//
// The decrement and the capacity check are one statement, so two
// concurrent reservations can never both pass the guard on the same
// remaining tickets.
//
// Returns:
//   - *domain.InventorySnapshot: price and date observed by the decrement.
//   - error: repository.ErrNotFound if the event does not exist.
//   - error: repository.ErrInsufficientInventory if fewer than qty remain.
func (r *EventRepo) Reserve(ctx context.Context, id uuid.UUID, qty int) (*domain.InventorySnapshot, error) {
	const op = "postgres.EventRepo.Reserve"

	db := r.handle()

	snap := domain.InventorySnapshot{EventID: id}
	err := db.QueryRow(ctx,
		`UPDATE events
		 SET ticket_available = ticket_available - $2, updated_at = now()
		 WHERE id = $1 AND ticket_available >= $2
		 RETURNING price, date, ticket_available`,
		id, qty,
	).Scan(&snap.Price, &snap.Date, &snap.Remaining)
	if err == nil {
		return &snap, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrapDBErr(op, err)
	}

	var exists bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return nil, wrapDBErr(op, err)
	}

	if !exists {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil, fmt.Errorf("%s: %w", op, repository.ErrInsufficientInventory)
}

func (r *EventRepo) Release(ctx context.Context, id uuid.UUID, qty int) error {
	const op = "postgres.EventRepo.Release"

	tag, err := r.handle().Exec(ctx,
		`UPDATE events
		 SET ticket_available = ticket_available + $2, updated_at = now()
		 WHERE id = $1`,
		id, qty,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}
