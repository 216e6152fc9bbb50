package ratings

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/repository/memory"
	redisrepo "github.com/kirinyoku/sievent/internal/repository/redis"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func seed(t *testing.T, store *memory.Store) (*domain.Event, *domain.User) {
	t.Helper()

	ctx := context.Background()

	u := &domain.User{ID: uuid.New(), Name: "Ayu", Email: "ayu@example.com"}
	require.NoError(t, store.Users().Create(ctx, u))

	e := &domain.Event{
		ID:        uuid.New(),
		Name:      "Jazz Night",
		Type:      domain.EventOffline,
		Date:      time.Date(2026, 12, 1, 19, 0, 0, 0, time.UTC),
		Price:     decimal.NewFromInt(0),
		CreatorID: uuid.New(),
	}
	require.NoError(t, store.Events().Create(ctx, e))

	return e, u
}

func TestRateTwiceUpdatesInPlace(t *testing.T) {
	store := memory.New()
	svc := New(store, nil, discard)
	e, u := seed(t, store)
	ctx := context.Background()

	first, created, err := svc.Rate(ctx, u.ID, e.ID, 3, "ok")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.RatingRated, first.Status)

	second, created, err := svc.Rate(ctx, u.ID, e.ID, 5, "great")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	list, err := svc.ListForEvent(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].Stars)
	assert.Equal(t, "Ayu", list[0].UserName)

	got, err := svc.GetForUserAndEvent(ctx, u.ID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "great", got.Review)
}

func TestRateValidation(t *testing.T) {
	store := memory.New()
	svc := New(store, nil, discard)
	e, u := seed(t, store)
	ctx := context.Background()

	for _, stars := range []int{0, 6, -1} {
		_, _, err := svc.Rate(ctx, u.ID, e.ID, stars, "")
		assert.ErrorIs(t, err, ErrInvalidStars)
	}

	_, _, err := svc.Rate(ctx, u.ID, uuid.New(), 4, "")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestAverage(t *testing.T) {
	store := memory.New()
	svc := New(store, nil, discard)
	e, _ := seed(t, store)
	ctx := context.Background()

	for _, stars := range []int{5, 4, 4} {
		_, _, err := svc.Rate(ctx, uuid.New(), e.ID, stars, "")
		require.NoError(t, err)
	}

	sum, err := svc.Average(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, "4.33", sum.Average.StringFixed(2))

	_, err = svc.Average(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestUpdateAndDeleteOwnerOnly(t *testing.T) {
	store := memory.New()
	svc := New(store, nil, discard)
	e, u := seed(t, store)
	ctx := context.Background()

	r, _, err := svc.Rate(ctx, u.ID, e.ID, 2, "meh")
	require.NoError(t, err)

	stars := 4
	_, err = svc.Update(ctx, r.ID, uuid.New(), &stars, nil)
	assert.ErrorIs(t, err, ErrNotOwner)

	bad := 9
	_, err = svc.Update(ctx, r.ID, u.ID, &bad, nil)
	assert.ErrorIs(t, err, ErrInvalidStars)

	got, err := svc.Update(ctx, r.ID, u.ID, &stars, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stars)
	assert.Equal(t, "meh", got.Review)

	assert.ErrorIs(t, svc.Delete(ctx, r.ID, uuid.New()), ErrNotOwner)
	require.NoError(t, svc.Delete(ctx, r.ID, u.ID))

	_, err = svc.Get(ctx, r.ID)
	assert.ErrorIs(t, err, ErrRatingNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, r.ID, u.ID), ErrRatingNotFound)
}

func TestRateInvalidatesCachedSummary(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := memory.New()
	svc := New(store, redisrepo.New(db), discard)
	e, u := seed(t, store)

	mock.ExpectDel(redisrepo.KeyRatingSummary(e.ID)).SetVal(1)

	_, _, err := svc.Rate(context.Background(), u.ID, e.ID, 5, "")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAverageServedFromCache(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := memory.New()
	svc := New(store, redisrepo.New(db), discard)
	eventID := uuid.New()

	mock.ExpectGet(redisrepo.KeyRatingSummary(eventID)).
		SetVal(`{"event_id":"` + eventID.String() + `","average":"3.5","count":2}`)

	sum, err := svc.Average(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Count)
	assert.True(t, sum.Average.Equal(decimal.RequireFromString("3.5")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
