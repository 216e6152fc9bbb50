package redemption

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/sievent/internal/auth"
	"github.com/kirinyoku/sievent/internal/broker"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/mail"
	"github.com/kirinyoku/sievent/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outbox struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

type fixture struct {
	store  *memory.Store
	svc    *Service
	signer *auth.Signer
	mails  *outbox
	user   *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	signer := auth.NewSigner("qr-secret")
	mails := &outbox{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	user := &domain.User{ID: uuid.New(), Name: "Ayu", Email: "ayu@example.com"}
	require.NoError(t, store.Users().Create(context.Background(), user))

	return &fixture{
		store:  store,
		svc:    New(store, signer, mails, nil, logger, Config{AppURL: "https://sievent.test/"}),
		signer: signer,
		mails:  mails,
		user:   user,
	}
}

func (f *fixture) ticket(t *testing.T, typ domain.EventType, status domain.TicketStatus) *domain.Ticket {
	t.Helper()

	ctx := context.Background()
	e := &domain.Event{
		ID:        uuid.New(),
		Name:      "Jazz Night",
		Type:      typ,
		Date:      time.Date(2026, 12, 1, 19, 0, 0, 0, time.UTC),
		Location:  "https://meet.example.com/jazz",
		Price:     decimal.NewFromInt(100000),
		CreatorID: uuid.New(),
	}
	require.NoError(t, f.store.Events().Create(ctx, e))

	tk := &domain.Ticket{
		ID:        uuid.New(),
		EventID:   e.ID,
		UserID:    f.user.ID,
		Quantity:  2,
		Price:     e.Price,
		Total:     e.Price.Mul(decimal.NewFromInt(2)),
		EventDate: e.Date,
		Status:    status,
	}
	require.NoError(t, f.store.Tickets().Create(ctx, tk))

	return tk
}

func TestVerifyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := f.ticket(t, domain.EventOffline, domain.TicketPaid)

	token, _, err := f.svc.Mint(tk)
	require.NoError(t, err)

	adm, err := f.svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, tk.ID, adm.TicketID)
	assert.Equal(t, "Jazz Night", adm.Event.Name)
	assert.Equal(t, "ayu@example.com", adm.User.Email)

	got, err := f.store.Tickets().Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketUsed, got.Status)
	assert.True(t, got.IsScanned)
	assert.True(t, got.VerifiedByCreator)

	_, err = f.svc.Verify(ctx, token)

	var used AlreadyUsedError
	require.ErrorAs(t, err, &used)
	assert.ErrorIs(t, err, ErrAlreadyUsed)
	assert.Equal(t, adm.ScannedAt, used.ScannedAt)
}

func TestVerifyConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	tk := f.ticket(t, domain.EventOffline, domain.TicketPaid)

	token, _, err := f.svc.Mint(tk)
	require.NoError(t, err)

	const scanners = 16

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
		used int
	)
	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Verify(context.Background(), token)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case assert.ErrorIs(t, err, ErrAlreadyUsed):
				used++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, scanners-1, used)
}

func TestVerifyRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.ticket(t, domain.EventOffline, domain.TicketPending)
	paid := f.ticket(t, domain.EventOffline, domain.TicketPaid)

	t.Run("garbage", func(t *testing.T) {
		_, err := f.svc.Verify(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("foreign secret", func(t *testing.T) {
		token, _, err := auth.NewSigner("other").SignTicket(paid.ID, paid.UserID, paid.EventID, time.Hour)
		require.NoError(t, err)
		_, err = f.svc.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		token, _, err := f.signer.SignTicket(paid.ID, paid.UserID, paid.EventID, -time.Minute)
		require.NoError(t, err)
		_, err = f.svc.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("not paid", func(t *testing.T) {
		token, _, err := f.svc.Mint(pending)
		require.NoError(t, err)
		_, err = f.svc.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrTicketNotFound)
	})

	t.Run("wrong event", func(t *testing.T) {
		token, _, err := f.signer.SignTicket(paid.ID, paid.UserID, uuid.New(), time.Hour)
		require.NoError(t, err)
		_, err = f.svc.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrTicketNotFound)
	})

	got, err := f.store.Tickets().Get(ctx, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPaid, got.Status)
}

func TestSendOfflineTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := f.ticket(t, domain.EventOffline, domain.TicketPaid)

	require.NoError(t, f.svc.SendOfflineTicket(ctx, tk.ID, f.user.ID))
	require.Len(t, f.mails.sent, 1)

	msg := f.mails.sent[0]
	assert.Equal(t, "ayu@example.com", msg.To)
	require.Len(t, msg.Attachments, 1)

	_, err := png.Decode(bytes.NewReader(msg.Attachments[0].Data))
	assert.NoError(t, err)

	assert.ErrorIs(t, f.svc.SendOnlineTicket(ctx, tk.ID, f.user.ID), ErrWrongEventType)
	assert.ErrorIs(t, f.svc.SendOfflineTicket(ctx, tk.ID, uuid.New()), ErrTicketNotFound)
}

func TestSendOnlineTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := f.ticket(t, domain.EventOnline, domain.TicketPaid)
	pending := f.ticket(t, domain.EventOnline, domain.TicketPending)

	require.NoError(t, f.svc.SendOnlineTicket(ctx, tk.ID, f.user.ID))
	require.Len(t, f.mails.sent, 1)
	assert.Contains(t, f.mails.sent[0].HTML, "https://meet.example.com/jazz")
	assert.Empty(t, f.mails.sent[0].Attachments)

	assert.ErrorIs(t, f.svc.SendOnlineTicket(ctx, pending.ID, f.user.ID), ErrNotPaid)
}

func TestHandleMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := f.ticket(t, domain.EventOffline, domain.TicketPaid)

	f.svc.HandleMessage(ctx, broker.NewTicketMessage(broker.TicketReserved, tk.ID, tk.EventID, tk.UserID))
	assert.Empty(t, f.mails.sent)

	f.svc.HandleMessage(ctx, broker.NewTicketMessage(broker.TicketPaid, tk.ID, tk.EventID, tk.UserID))
	assert.Len(t, f.mails.sent, 1)
}

func TestVerifyURL(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "https://sievent.test/api/qr/verify?token=a.b.c", f.svc.VerifyURL("a.b.c"))
}
