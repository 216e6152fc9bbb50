package postgresrepo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/repository"
	"github.com/shopspring/decimal"
)

const ratingColumns = `r.id, r.user_id, COALESCE(u.name, ''), r.event_id, r.stars, r.review,
	r.status, r.created_at, r.updated_at`

type RatingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *RatingRepo) With(db DB) *RatingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *RatingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func scanRating(row pgx.Row) (*domain.Rating, error) {
	var rt domain.Rating
	err := row.Scan(
		&rt.ID, &rt.UserID, &rt.UserName, &rt.EventID, &rt.Stars, &rt.Review,
		&rt.Status, &rt.CreatedAt, &rt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// Upsert relies on the (user_id, event_id) unique constraint; xmax is zero
// only for a freshly inserted row.
func (r *RatingRepo) Upsert(ctx context.Context, rt *domain.Rating) (bool, error) {
	const op = "postgres.RatingRepo.Upsert"

	var created bool
	err := r.handle().QueryRow(ctx,
		`INSERT INTO ratings (id, user_id, event_id, stars, review, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, event_id) DO UPDATE
		 SET stars = EXCLUDED.stars,
		     review = EXCLUDED.review,
		     status = EXCLUDED.status,
		     updated_at = now()
		 RETURNING id, created_at, updated_at, (xmax = 0)`,
		rt.ID, rt.UserID, rt.EventID, rt.Stars, rt.Review, rt.Status,
	).Scan(&rt.ID, &rt.CreatedAt, &rt.UpdatedAt, &created)
	if err != nil {
		return false, wrapDBErr(op, err)
	}

	return created, nil
}

func (r *RatingRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Rating, error) {
	const op = "postgres.RatingRepo.Get"

	rt, err := scanRating(r.handle().QueryRow(ctx,
		`SELECT `+ratingColumns+`
		 FROM ratings r LEFT JOIN users u ON u.id = r.user_id
		 WHERE r.id = $1`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return rt, nil
}

func (r *RatingRepo) GetByUserEvent(ctx context.Context, userID, eventID uuid.UUID) (*domain.Rating, error) {
	const op = "postgres.RatingRepo.GetByUserEvent"

	rt, err := scanRating(r.handle().QueryRow(ctx,
		`SELECT `+ratingColumns+`
		 FROM ratings r LEFT JOIN users u ON u.id = r.user_id
		 WHERE r.user_id = $1 AND r.event_id = $2`, userID, eventID))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return rt, nil
}

func (r *RatingRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Rating, error) {
	const op = "postgres.RatingRepo.ListByEvent"

	rows, err := r.handle().Query(ctx,
		`SELECT `+ratingColumns+`
		 FROM ratings r LEFT JOIN users u ON u.id = r.user_id
		 WHERE r.event_id = $1
		 ORDER BY r.created_at DESC`, eventID)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.Rating
	for rows.Next() {
		rt, err := scanRating(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, *rt)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *RatingRepo) Summary(ctx context.Context, eventID uuid.UUID) (*domain.RatingSummary, error) {
	const op = "postgres.RatingRepo.Summary"

	s := domain.RatingSummary{EventID: eventID}
	err := r.handle().QueryRow(ctx,
		`SELECT COALESCE(ROUND(AVG(stars)::numeric, 2), 0), COUNT(*)
		 FROM ratings WHERE event_id = $1`, eventID,
	).Scan(&s.Average, &s.Count)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	s.Average = s.Average.Round(2)
	if s.Count == 0 {
		s.Average = decimal.Zero
	}

	return &s, nil
}

// Update changes the owner's rating. A rating owned by someone else is
// reported as not found.
func (r *RatingRepo) Update(ctx context.Context, id, userID uuid.UUID, stars *int, review *string) (*domain.Rating, error) {
	const op = "postgres.RatingRepo.Update"

	tag, err := r.handle().Exec(ctx,
		`UPDATE ratings
		 SET stars = COALESCE($3, stars), review = COALESCE($4, review), updated_at = now()
		 WHERE id = $1 AND user_id = $2`,
		id, userID, stars, review,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return r.Get(ctx, id)
}

func (r *RatingRepo) Delete(ctx context.Context, id, userID uuid.UUID) (*domain.Rating, error) {
	const op = "postgres.RatingRepo.Delete"

	var rt domain.Rating
	err := r.handle().QueryRow(ctx,
		`DELETE FROM ratings WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, event_id, stars, review, status, created_at, updated_at`,
		id, userID,
	).Scan(&rt.ID, &rt.UserID, &rt.EventID, &rt.Stars, &rt.Review, &rt.Status, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &rt, nil
}
