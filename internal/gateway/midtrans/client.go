package midtrans

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/gateway"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

type Config struct {
	ServerKey  string
	Production bool
}

// Client talks to Snap for checkout and to the Core API for status
// lookups. The SDK has no context support; ctx is only checked before each
// call.
type Client struct {
	snap snap.Client
	core coreapi.Client
}

var _ gateway.Gateway = (*Client)(nil)

func New(cfg Config) *Client {
	env := midtrans.Sandbox
	if cfg.Production {
		env = midtrans.Production
	}

	c := &Client{}
	c.snap.New(cfg.ServerKey, env)
	c.core.New(cfg.ServerKey, env)

	return c
}

// CreateTransaction opens a Snap checkout for the order. Midtrans only
// accepts whole rupiah amounts, so the fractional part is dropped.
func (c *Client) CreateTransaction(ctx context.Context, req gateway.TransactionRequest) (*gateway.Transaction, error) {
	const op = "midtrans.Client.CreateTransaction"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, mErr := c.snap.CreateTransaction(&snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.Amount.IntPart(),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.Customer.Name,
			Email: req.Customer.Email,
		},
	})
	if mErr != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, gateway.ErrUnavailable, mErr.Message)
	}

	if resp == nil || resp.Token == "" || resp.RedirectURL == "" {
		return nil, fmt.Errorf("%s: %w: empty snap response", op, gateway.ErrUnavailable)
	}

	raw, _ := json.Marshal(resp)

	return &gateway.Transaction{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
		Raw:         raw,
	}, nil
}

func (c *Client) TransactionStatus(ctx context.Context, orderID string) (*gateway.Status, error) {
	const op = "midtrans.Client.TransactionStatus"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, mErr := c.core.CheckTransaction(orderID)
	if mErr != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, gateway.ErrUnavailable, mErr.Message)
	}

	if resp == nil {
		return nil, fmt.Errorf("%s: %w: empty status response", op, gateway.ErrUnavailable)
	}

	status, err := MapStatus(resp.TransactionStatus, resp.FraudStatus)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	raw, _ := json.Marshal(resp)

	out := &gateway.Status{
		TransactionID: resp.TransactionID,
		Status:        status,
		Raw:           raw,
	}
	if resp.PaymentType != "" {
		pt := resp.PaymentType
		out.PaymentType = &pt
	}

	return out, nil
}

// MapStatus folds Midtrans transaction statuses into the payment statuses
// the system records. Refunds and chargebacks are recorded as cancel.
func MapStatus(transactionStatus, fraudStatus string) (domain.PaymentStatus, error) {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "challenge" {
			return domain.PaymentPending, nil
		}
		return domain.PaymentSettlement, nil
	case "settlement":
		return domain.PaymentSettlement, nil
	case "pending", "authorize":
		return domain.PaymentPending, nil
	case "deny", "failure":
		return domain.PaymentDeny, nil
	case "cancel", "refund", "partial_refund", "chargeback", "partial_chargeback":
		return domain.PaymentCancel, nil
	case "expire":
		return domain.PaymentExpire, nil
	default:
		return "", fmt.Errorf("%w: unknown transaction status %q", gateway.ErrUnavailable, transactionStatus)
	}
}
