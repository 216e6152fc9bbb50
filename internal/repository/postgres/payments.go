package postgresrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/repository"
)

const paymentColumns = `id, user_id, ticket_id, transaction_id, order_id, gross_amount,
	transaction_status, payment_type, raw, token, redirect_url, created_at, updated_at`

type PaymentRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *PaymentRepo) With(db DB) *PaymentRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *PaymentRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.ID, &p.UserID, &p.TicketID, &p.TransactionID, &p.OrderID, &p.GrossAmount,
		&p.TransactionStatus, &p.PaymentType, &p.Raw, &p.Token, &p.RedirectURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert inserts p keyed by its order id. A retried initiate for the same
// ticket replaces the gateway fields of the existing row and keeps its id,
// which is written back into p.
func (r *PaymentRepo) Upsert(ctx context.Context, p *domain.Payment) error {
	const op = "postgres.PaymentRepo.Upsert"

	err := r.handle().QueryRow(ctx,
		`INSERT INTO payments (id, user_id, ticket_id, transaction_id, order_id, gross_amount,
		                       transaction_status, payment_type, raw, token, redirect_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (order_id) DO UPDATE
		 SET transaction_id = EXCLUDED.transaction_id,
		     gross_amount = EXCLUDED.gross_amount,
		     transaction_status = EXCLUDED.transaction_status,
		     payment_type = EXCLUDED.payment_type,
		     raw = EXCLUDED.raw,
		     token = EXCLUDED.token,
		     redirect_url = EXCLUDED.redirect_url,
		     updated_at = now()
		 RETURNING id, created_at, updated_at`,
		p.ID, p.UserID, p.TicketID, p.TransactionID, p.OrderID, p.GrossAmount,
		p.TransactionStatus, p.PaymentType, p.Raw, p.Token, p.RedirectURL,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	return wrapDBErr(op, err)
}

func (r *PaymentRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	const op = "postgres.PaymentRepo.Get"

	p, err := scanPayment(r.handle().QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return p, nil
}

func (r *PaymentRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	const op = "postgres.PaymentRepo.GetByOrderID"

	p, err := scanPayment(r.handle().QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id = $1`, orderID))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return p, nil
}

// UpdateStatus overwrites the gateway-owned fields of the payment with the
// authoritative state.
func (r *PaymentRepo) UpdateStatus(
	ctx context.Context,
	orderID string,
	upd repository.PaymentUpdate,
) (*domain.Payment, error) {
	const op = "postgres.PaymentRepo.UpdateStatus"

	p, err := scanPayment(r.handle().QueryRow(ctx,
		`UPDATE payments
		 SET transaction_id = $2, transaction_status = $3, payment_type = $4, raw = $5, updated_at = now()
		 WHERE order_id = $1
		 RETURNING `+paymentColumns,
		orderID, upd.TransactionID, upd.Status, upd.PaymentType, upd.Raw,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return p, nil
}
