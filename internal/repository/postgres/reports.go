package postgresrepo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/repository"
)

type ReportRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *ReportRepo) With(db DB) *ReportRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ReportRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func scanReport(row pgx.Row) (*domain.Report, error) {
	var rp domain.Report
	if err := row.Scan(&rp.ID, &rp.ReporterID, &rp.ReportedID, &rp.Description, &rp.CreatedAt); err != nil {
		return nil, err
	}
	return &rp, nil
}

func (r *ReportRepo) Create(ctx context.Context, rp *domain.Report) error {
	const op = "postgres.ReportRepo.Create"

	err := r.handle().QueryRow(ctx,
		`INSERT INTO reports (id, reporter_id, reported_id, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		rp.ID, rp.ReporterID, rp.ReportedID, rp.Description,
	).Scan(&rp.CreatedAt)

	return wrapDBErr(op, err)
}

func (r *ReportRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	const op = "postgres.ReportRepo.Get"

	rp, err := scanReport(r.handle().QueryRow(ctx,
		`SELECT id, reporter_id, reported_id, description, created_at
		 FROM reports WHERE id = $1`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return rp, nil
}

func (r *ReportRepo) List(ctx context.Context) ([]domain.Report, error) {
	const op = "postgres.ReportRepo.List"

	rows, err := r.handle().Query(ctx,
		`SELECT id, reporter_id, reported_id, description, created_at
		 FROM reports ORDER BY created_at DESC`)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.Report
	for rows.Next() {
		rp, err := scanReport(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, *rp)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *ReportRepo) UpdateDescription(ctx context.Context, id uuid.UUID, description string) (*domain.Report, error) {
	const op = "postgres.ReportRepo.UpdateDescription"

	rp, err := scanReport(r.handle().QueryRow(ctx,
		`UPDATE reports SET description = $2 WHERE id = $1
		 RETURNING id, reporter_id, reported_id, description, created_at`,
		id, description,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return rp, nil
}

func (r *ReportRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.ReportRepo.Delete"

	tag, err := r.handle().Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}
