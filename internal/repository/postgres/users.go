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

const userColumns = `id, name, email, password_hash, is_account_verified,
	is_creator, creator_request, is_admin, created_at`

type UserRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *UserRepo) With(db DB) *UserRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *UserRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAccountVerified,
		&u.IsCreator, &u.CreatorRequest, &u.IsAdmin, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user. A taken email yields repository.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	const op = "postgres.UserRepo.Create"

	err := r.handle().QueryRow(ctx,
		`INSERT INTO users (id, name, email, password_hash, is_account_verified,
		                    is_creator, creator_request, is_admin)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.IsAccountVerified,
		u.IsCreator, u.CreatorRequest, u.IsAdmin,
	).Scan(&u.CreatedAt)

	return wrapDBErr(op, err)
}

func (r *UserRepo) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "postgres.UserRepo.Get"

	u, err := scanUser(r.handle().QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "postgres.UserRepo.GetByEmail"

	u, err := scanUser(r.handle().QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return u, nil
}

func (r *UserRepo) ListCreatorRequests(ctx context.Context) ([]domain.User, error) {
	const op = "postgres.UserRepo.ListCreatorRequests"

	rows, err := r.handle().Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE creator_request AND NOT is_creator
		 ORDER BY created_at ASC`)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *UserRepo) SetRoles(ctx context.Context, id uuid.UUID, isCreator, creatorRequest bool) error {
	const op = "postgres.UserRepo.SetRoles"

	return r.exec(ctx, op,
		`UPDATE users SET is_creator = $2, creator_request = $3 WHERE id = $1`,
		id, isCreator, creatorRequest,
	)
}

func (r *UserRepo) MarkVerified(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.UserRepo.MarkVerified"

	return r.exec(ctx, op, `UPDATE users SET is_account_verified = TRUE WHERE id = $1`, id)
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	const op = "postgres.UserRepo.UpdatePassword"

	return r.exec(ctx, op, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
}

func (r *UserRepo) exec(ctx context.Context, op, sql string, args ...any) error {
	tag, err := r.handle().Exec(ctx, sql, args...)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}
