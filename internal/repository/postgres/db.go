package postgresrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/sievent/internal/repository"
)

const maxTxAttempts = 3

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ DB = (*pgxpool.Pool)(nil)
	_ DB = (pgx.Tx)(nil)
)

type Store struct {
	pool *pgxpool.Pool
}

var _ repository.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
	}
}

// RunTx runs fn in a read-committed transaction. Inventory and status
// changes are conditional single-statement updates, so read committed is
// enough to keep them race free; serialization failures and deadlocks are
// retried.
func (s *Store) RunTx(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Repositories) error,
) error {
	txOpts := pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	}

	return retryTx(func() error {
		return s.runTxOnce(ctx, txOpts, fn)
	})
}

// retryTx calls attempt up to maxTxAttempts times while it fails with a
// retryable error.
func retryTx(attempt func() error) error {
	var err error
	for i := 0; i < maxTxAttempts; i++ {
		err = attempt()
		if err == nil || !IsRetryable(err) {
			return err
		}
	}

	return err
}

func (s *Store) runTxOnce(
	ctx context.Context,
	txOpts pgx.TxOptions,
	fn func(ctx context.Context, tx repository.Repositories) error,
) error {
	tx, err := s.pool.BeginTx(ctx, txOpts)
	if err != nil {
		return err
	}

	defer tx.Rollback(ctx)

	if err := fn(ctx, bound{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (s *Store) Events() repository.EventRepository     { return &EventRepo{pool: s.pool} }
func (s *Store) Tickets() repository.TicketRepository   { return &TicketRepo{pool: s.pool} }
func (s *Store) Payments() repository.PaymentRepository { return &PaymentRepo{pool: s.pool} }
func (s *Store) Ratings() repository.RatingRepository   { return &RatingRepo{pool: s.pool} }
func (s *Store) Users() repository.UserRepository       { return &UserRepo{pool: s.pool} }
func (s *Store) Reports() repository.ReportRepository   { return &ReportRepo{pool: s.pool} }

// bound hands out repositories that all share one transaction handle.
type bound struct {
	db DB
}

func (b bound) Events() repository.EventRepository     { return (&EventRepo{}).With(b.db) }
func (b bound) Tickets() repository.TicketRepository   { return (&TicketRepo{}).With(b.db) }
func (b bound) Payments() repository.PaymentRepository { return (&PaymentRepo{}).With(b.db) }
func (b bound) Ratings() repository.RatingRepository   { return (&RatingRepo{}).With(b.db) }
func (b bound) Users() repository.UserRepository       { return (&UserRepo{}).With(b.db) }
func (b bound) Reports() repository.ReportRepository   { return (&ReportRepo{}).With(b.db) }
