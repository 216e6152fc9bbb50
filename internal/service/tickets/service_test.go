package tickets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/kirinyoku/sievent/internal/broker"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/repository"
	"github.com/kirinyoku/sievent/internal/repository/memory"
	redisrepo "github.com/kirinyoku/sievent/internal/repository/redis"
	"github.com/kirinyoku/sievent/internal/uow"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	msgs []broker.TicketMessage
}

func (r *recorder) Publish(_ context.Context, msg broker.TicketMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recorder) types() []broker.MessageType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]broker.MessageType, 0, len(r.msgs))
	for _, m := range r.msgs {
		out = append(out, m.Type)
	}
	return out
}

func newService(t *testing.T) (*Service, *memory.Store, *recorder) {
	t.Helper()

	store := memory.New()
	pub := &recorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(store, nil, nil, nil, pub, logger, Config{MaxQuantity: 10}), store, pub
}

func seedEvent(t *testing.T, store *memory.Store, price int64, available int) *domain.Event {
	t.Helper()

	e := &domain.Event{
		ID:              uuid.New(),
		Name:            "Jazz Night",
		Type:            domain.EventOffline,
		Date:            time.Date(2026, 12, 1, 19, 0, 0, 0, time.UTC),
		Location:        "Jakarta",
		Price:           decimal.NewFromInt(price),
		TicketAvailable: available,
		CreatorID:       uuid.New(),
	}
	require.NoError(t, store.Events().Create(context.Background(), e))

	return e
}

func available(t *testing.T, store *memory.Store, id uuid.UUID) int {
	t.Helper()

	e, err := store.Events().Get(context.Background(), id)
	require.NoError(t, err)

	return e.TicketAvailable
}

func TestCreatePaid(t *testing.T) {
	svc, store, pub := newService(t)
	e := seedEvent(t, store, 150000, 5)

	tk, err := svc.CreatePaid(context.Background(), ReserveRequest{EventID: e.ID, UserID: uuid.New(), Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketPending, tk.Status)
	assert.True(t, tk.Total.Equal(decimal.NewFromInt(300000)))
	assert.True(t, tk.Price.Equal(e.Price))
	assert.Equal(t, e.Date, tk.EventDate)
	assert.Equal(t, 3, available(t, store, e.ID))
	assert.Equal(t, []broker.MessageType{broker.TicketReserved}, pub.types())
}

func TestCreatePaidConcurrentNeverOversells(t *testing.T) {
	svc, store, _ := newService(t)
	e := seedEvent(t, store, 50000, 10)

	const workers = 20

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		okN  int
		errs []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreatePaid(context.Background(), ReserveRequest{EventID: e.ID, UserID: uuid.New(), Quantity: 3})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				okN++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, okN)
	for _, err := range errs {
		assert.ErrorIs(t, err, ErrInsufficientInventory)
	}
	assert.Equal(t, 1, available(t, store, e.ID))
}

func TestCreatePaidRejects(t *testing.T) {
	svc, store, _ := newService(t)
	paid := seedEvent(t, store, 10000, 2)
	free := seedEvent(t, store, 0, 2)
	ctx := context.Background()
	user := uuid.New()

	tests := []struct {
		name string
		req  ReserveRequest
		want error
	}{
		{"zero quantity", ReserveRequest{EventID: paid.ID, UserID: user, Quantity: 0}, ErrInvalidQuantity},
		{"above max", ReserveRequest{EventID: paid.ID, UserID: user, Quantity: 11}, ErrInvalidQuantity},
		{"unknown event", ReserveRequest{EventID: uuid.New(), UserID: user, Quantity: 1}, ErrEventNotFound},
		{"sold out", ReserveRequest{EventID: paid.ID, UserID: user, Quantity: 3}, ErrInsufficientInventory},
		{"free event", ReserveRequest{EventID: free.ID, UserID: user, Quantity: 1}, ErrFreeEventNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePaid(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, 2, available(t, store, paid.ID))
	assert.Equal(t, 2, available(t, store, free.ID), "free event reservation must roll back")
}

func TestCreateFree(t *testing.T) {
	svc, store, pub := newService(t)
	free := seedEvent(t, store, 0, 4)
	paid := seedEvent(t, store, 10000, 4)
	ctx := context.Background()

	tk, err := svc.CreateFree(ctx, ReserveRequest{EventID: free.ID, UserID: uuid.New(), Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPaid, tk.Status)
	assert.True(t, tk.Total.IsZero())
	assert.Equal(t, 2, available(t, store, free.ID))
	assert.Equal(t, []broker.MessageType{broker.TicketPaid}, pub.types())

	_, err = svc.CreateFree(ctx, ReserveRequest{EventID: paid.ID, UserID: uuid.New(), Quantity: 1})
	assert.ErrorIs(t, err, ErrPaidEventNotAllowed)
	assert.Equal(t, 4, available(t, store, paid.ID))
}

func TestPriceSnapshotSurvivesEventEdit(t *testing.T) {
	svc, store, _ := newService(t)
	e := seedEvent(t, store, 100000, 5)
	ctx := context.Background()

	tk, err := svc.CreatePaid(ctx, ReserveRequest{EventID: e.ID, UserID: uuid.New(), Quantity: 1})
	require.NoError(t, err)

	newPrice := decimal.NewFromInt(999999)
	_, err = store.Events().Update(ctx, e.ID, domain.EventPatch{Price: &newPrice})
	require.NoError(t, err)

	got, err := store.Tickets().Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(100000)))
	assert.True(t, got.Total.Equal(decimal.NewFromInt(100000)))
}

func TestCancelRestoresInventory(t *testing.T) {
	svc, store, pub := newService(t)
	e := seedEvent(t, store, 20000, 5)
	ctx := context.Background()
	user := uuid.New()

	tk, err := svc.CreatePaid(ctx, ReserveRequest{EventID: e.ID, UserID: user, Quantity: 3})
	require.NoError(t, err)
	require.Equal(t, 2, available(t, store, e.ID))

	_, err = svc.Cancel(ctx, tk.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotOwner)

	cancelled, err := svc.Cancel(ctx, tk.ID, user)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketCancelled, cancelled.Status)
	assert.Equal(t, 5, available(t, store, e.ID))

	_, err = svc.Cancel(ctx, tk.ID, user)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 5, available(t, store, e.ID), "second cancel must not release twice")

	assert.Equal(t, []broker.MessageType{broker.TicketReserved, broker.TicketCancelled}, pub.types())
}

func TestCancelPaidTicketRejected(t *testing.T) {
	svc, store, _ := newService(t)
	e := seedEvent(t, store, 0, 5)
	ctx := context.Background()
	user := uuid.New()

	tk, err := svc.CreateFree(ctx, ReserveRequest{EventID: e.ID, UserID: user, Quantity: 1})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, tk.ID, user)

	var ise InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, domain.TicketPaid, ise.Status)
	assert.Equal(t, 4, available(t, store, e.ID))
}

func TestCancelAfterEventDeleted(t *testing.T) {
	svc, store, _ := newService(t)
	e := seedEvent(t, store, 20000, 5)
	ctx := context.Background()
	user := uuid.New()

	tk, err := svc.CreatePaid(ctx, ReserveRequest{EventID: e.ID, UserID: user, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, store.Events().Delete(ctx, e.ID))

	got, err := svc.Cancel(ctx, tk.ID, user)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketCancelled, got.Status)
}

func TestDeleteReleasesInventory(t *testing.T) {
	svc, store, _ := newService(t)
	e := seedEvent(t, store, 20000, 5)
	ctx := context.Background()
	user := uuid.New()

	tk, err := svc.CreatePaid(ctx, ReserveRequest{EventID: e.ID, UserID: user, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, tk.ID, user))
	assert.Equal(t, 5, available(t, store, e.ID))

	_, err = svc.Get(ctx, tk.ID, user)
	assert.ErrorIs(t, err, ErrTicketNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, tk.ID, user), ErrTicketNotFound)
}

func TestGetHidesForeignTickets(t *testing.T) {
	svc, store, _ := newService(t)
	e := seedEvent(t, store, 20000, 5)
	ctx := context.Background()
	user := uuid.New()

	tk, err := svc.CreatePaid(ctx, ReserveRequest{EventID: e.ID, UserID: user, Quantity: 1})
	require.NoError(t, err)

	got, err := svc.Get(ctx, tk.ID, user)
	require.NoError(t, err)
	assert.Equal(t, tk.ID, got.ID)

	_, err = svc.Get(ctx, tk.ID, uuid.New())
	assert.ErrorIs(t, err, ErrTicketNotFound)

	list, err := svc.ListForUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Jazz Night", list[0].EventName)
}

func TestExpireStale(t *testing.T) {
	svc, store, _ := newService(t)
	paid := seedEvent(t, store, 20000, 10)
	free := seedEvent(t, store, 0, 10)
	ctx := context.Background()
	user := uuid.New()

	_, err := svc.CreatePaid(ctx, ReserveRequest{EventID: paid.ID, UserID: user, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.CreatePaid(ctx, ReserveRequest{EventID: paid.ID, UserID: user, Quantity: 3})
	require.NoError(t, err)
	_, err = svc.CreateFree(ctx, ReserveRequest{EventID: free.ID, UserID: user, Quantity: 1})
	require.NoError(t, err)

	n, err := svc.ExpireStale(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = svc.ExpireStale(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 10, available(t, store, paid.ID))
	assert.Equal(t, 9, available(t, store, free.ID))

	n, err = svc.ExpireStale(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func newRedisService(
	t *testing.T,
	rdb *redis.Client,
	limiter *redisrepo.SlidingWindowLimiter,
) (*Service, *memory.Store) {
	t.Helper()

	store := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	idem := redisrepo.NewIdempotencyStore(rdb, 24*time.Hour)

	return New(store, nil, limiter, idem, &recorder{}, logger, Config{MaxQuantity: 10}), store
}

func TestCreatePaidReplaysIdempotencyKey(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc, store := newRedisService(t, db, nil)
	e := seedEvent(t, store, 50000, 5)
	ctx := context.Background()

	user := uuid.New()
	key := redisrepo.KeyIdemTicket(user, "k1")
	req := ReserveRequest{EventID: e.ID, UserID: user, Quantity: 2, IdempotencyKey: "k1"}

	mock.ExpectGet(key).RedisNil()
	mock.ExpectSetNX(key, "LOCK", 30*time.Second).SetVal(true)
	mock.Regexp().ExpectSet(regexp.QuoteMeta(key), `^RES:\{`, 24*time.Hour).SetVal("OK")

	first, err := svc.CreatePaid(ctx, req)
	require.NoError(t, err)

	stored, err := json.Marshal(first)
	require.NoError(t, err)
	mock.ExpectGet(key).SetVal("RES:" + string(stored))

	second, err := svc.CreatePaid(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, available(t, store, e.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePaidIdempotencyKeyInFlight(t *testing.T) {
	tests := []struct {
		name   string
		expect func(mock redismock.ClientMock, key string)
	}{
		{
			name: "lock held",
			expect: func(mock redismock.ClientMock, key string) {
				mock.ExpectGet(key).SetVal("LOCK")
			},
		},
		{
			name: "lock lost",
			expect: func(mock redismock.ClientMock, key string) {
				mock.ExpectGet(key).RedisNil()
				mock.ExpectSetNX(key, "LOCK", 30*time.Second).SetVal(false)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := redismock.NewClientMock()
			svc, store := newRedisService(t, db, nil)
			e := seedEvent(t, store, 50000, 5)

			user := uuid.New()
			tt.expect(mock, redisrepo.KeyIdemTicket(user, "k1"))

			_, err := svc.CreatePaid(context.Background(), ReserveRequest{
				EventID:        e.ID,
				UserID:         user,
				Quantity:       2,
				IdempotencyKey: "k1",
			})

			assert.ErrorIs(t, err, ErrRequestInFlight)
			assert.Equal(t, 5, available(t, store, e.ID))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreatePaidFailureReleasesIdempotencyLock(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc, store := newRedisService(t, db, nil)
	e := seedEvent(t, store, 50000, 1)

	user := uuid.New()
	key := redisrepo.KeyIdemTicket(user, "k1")

	mock.ExpectGet(key).RedisNil()
	mock.ExpectSetNX(key, "LOCK", 30*time.Second).SetVal(true)
	mock.ExpectDel(key).SetVal(1)

	_, err := svc.CreatePaid(context.Background(), ReserveRequest{
		EventID:        e.ID,
		UserID:         user,
		Quantity:       2,
		IdempotencyKey: "k1",
	})

	assert.ErrorIs(t, err, ErrInsufficientInventory)
	assert.Equal(t, 1, available(t, store, e.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePaidRateLimited(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := redisrepo.NewSlidingWindowLimiter(db, "reserve", 1, time.Minute)
	svc, store := newRedisService(t, db, limiter)
	e := seedEvent(t, store, 50000, 5)

	user := uuid.New()
	rlKey := redisrepo.KeyRateLimit("reserve", user.String())

	mock.CustomMatch(func(_, actual []interface{}) error {
		if actual[3] != rlKey {
			return fmt.Errorf("unexpected key %v", actual[3])
		}
		return nil
	}).ExpectEvalSha("", []string{rlKey}, 0, 0, 0, "").SetVal([]interface{}{int64(0), int64(2), int64(1500)})

	_, err := svc.CreatePaid(context.Background(), ReserveRequest{EventID: e.ID, UserID: user, Quantity: 1})

	var rl RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 1500*time.Millisecond, rl.RetryAfter)
	assert.Equal(t, 5, available(t, store, e.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func transitionCount(t *testing.T, from, to string) float64 {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != "sievent_ticket_transitions_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["from"] == from && labels["to"] == to {
				return m.GetCounter().GetValue()
			}
		}
	}

	return 0
}

func TestReleaseHoldCountsCommittedTransitionsOnly(t *testing.T) {
	svc, store, _ := newService(t)
	e := seedEvent(t, store, 10000, 5)
	ctx := context.Background()

	tk, err := svc.CreatePaid(ctx, ReserveRequest{EventID: e.ID, UserID: uuid.New(), Quantity: 2})
	require.NoError(t, err)

	before := transitionCount(t, "pending", "cancelled")
	boom := errors.New("boom")

	err = svc.uow.Do(ctx, func(ctx context.Context, tx repository.Repositories, after func(uow.AfterCommit)) error {
		if _, err := ReleaseHold(ctx, tx, after, tk); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, before, transitionCount(t, "pending", "cancelled"))
	assert.Equal(t, 3, available(t, store, e.ID))

	_, err = svc.Cancel(ctx, tk.ID, tk.UserID)
	require.NoError(t, err)

	assert.Equal(t, before+1, transitionCount(t, "pending", "cancelled"))
	assert.Equal(t, 5, available(t, store, e.ID))
}
