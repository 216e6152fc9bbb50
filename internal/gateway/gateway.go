// Package gateway defines what the payment flow needs from an external
// payment provider.
package gateway

import (
	"context"
	"errors"

	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrUnavailable wraps every failed or malformed provider call.
var ErrUnavailable = errors.New("payment gateway unavailable")

type Customer struct {
	Name  string
	Email string
}

type TransactionRequest struct {
	OrderID  string
	Amount   decimal.Decimal
	Customer Customer
}

type Transaction struct {
	Token       string
	RedirectURL string
	Raw         []byte
}

// Status is the provider's authoritative view of an order.
type Status struct {
	TransactionID string
	Status        domain.PaymentStatus
	PaymentType   *string
	Raw           []byte
}

type Gateway interface {
	CreateTransaction(ctx context.Context, req TransactionRequest) (*Transaction, error)
	TransactionStatus(ctx context.Context, orderID string) (*Status, error)
}
