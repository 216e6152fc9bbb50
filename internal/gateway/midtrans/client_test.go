package midtrans

import (
	"context"
	"testing"

	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/gateway"
	"github.com/stretchr/testify/assert"
)

func TestMapStatus(t *testing.T) {
	cases := []struct {
		status, fraud string
		want          domain.PaymentStatus
	}{
		{"settlement", "", domain.PaymentSettlement},
		{"capture", "accept", domain.PaymentSettlement},
		{"capture", "challenge", domain.PaymentPending},
		{"pending", "", domain.PaymentPending},
		{"deny", "", domain.PaymentDeny},
		{"failure", "", domain.PaymentDeny},
		{"cancel", "", domain.PaymentCancel},
		{"refund", "", domain.PaymentCancel},
		{"expire", "", domain.PaymentExpire},
	}

	for _, tc := range cases {
		got, err := MapStatus(tc.status, tc.fraud)
		assert.NoError(t, err, tc.status)
		assert.Equal(t, tc.want, got, tc.status)
	}

	_, err := MapStatus("mystery", "")
	assert.ErrorIs(t, err, gateway.ErrUnavailable)
}

func TestCanceledContextSkipsCall(t *testing.T) {
	c := New(Config{ServerKey: "SB-Mid-server-test"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.TransactionStatus(ctx, "ticket-x")
	assert.ErrorIs(t, err, context.Canceled)
}
