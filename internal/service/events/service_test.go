package events

import (
	"context"
	"encoding/json"
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

func draft() *domain.Event {
	return &domain.Event{
		Name:            "Jazz Night",
		Type:            domain.EventOffline,
		Date:            time.Date(2026, 12, 1, 19, 0, 0, 0, time.UTC),
		Location:        "Jakarta",
		Price:           decimal.NewFromInt(100000),
		TicketAvailable: 100,
	}
}

func TestCreate(t *testing.T) {
	svc := New(memory.New(), nil, discard, Config{})
	ctx := context.Background()
	creator := domain.Actor{UserID: uuid.New(), IsCreator: true}

	_, err := svc.Create(ctx, domain.Actor{UserID: uuid.New()}, draft())
	assert.ErrorIs(t, err, ErrNotCreator)

	e, err := svc.Create(ctx, creator, draft())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, creator.UserID, e.CreatorID)

	mine, err := svc.ListMine(ctx, creator)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestCreateValidation(t *testing.T) {
	svc := New(memory.New(), nil, discard, Config{})
	creator := domain.Actor{UserID: uuid.New(), IsCreator: true}

	tests := []struct {
		name   string
		mutate func(e *domain.Event)
	}{
		{"no name", func(e *domain.Event) { e.Name = " " }},
		{"bad type", func(e *domain.Event) { e.Type = "hybrid" }},
		{"no date", func(e *domain.Event) { e.Date = time.Time{} }},
		{"negative price", func(e *domain.Event) { e.Price = decimal.NewFromInt(-1) }},
		{"negative capacity", func(e *domain.Event) { e.TicketAvailable = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := draft()
			tt.mutate(e)
			_, err := svc.Create(context.Background(), creator, e)
			assert.ErrorIs(t, err, ErrInvalidEvent)
		})
	}
}

func TestUpdateOwnerOnly(t *testing.T) {
	svc := New(memory.New(), nil, discard, Config{})
	ctx := context.Background()
	owner := domain.Actor{UserID: uuid.New(), IsCreator: true}
	admin := domain.Actor{UserID: uuid.New(), IsAdmin: true}

	e, err := svc.Create(ctx, owner, draft())
	require.NoError(t, err)

	name := "Jazz Night II"
	_, err = svc.Update(ctx, admin, e.ID, domain.EventPatch{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)

	negative := -5
	_, err = svc.Update(ctx, owner, e.ID, domain.EventPatch{TicketAvailable: &negative})
	assert.ErrorIs(t, err, ErrInvalidEvent)

	got, err := svc.Update(ctx, owner, e.ID, domain.EventPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.Equal(t, 100, got.TicketAvailable)

	_, err = svc.Update(ctx, owner, uuid.New(), domain.EventPatch{Name: &name})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestDeleteOwnerOrAdmin(t *testing.T) {
	svc := New(memory.New(), nil, discard, Config{})
	ctx := context.Background()
	owner := domain.Actor{UserID: uuid.New(), IsCreator: true}
	admin := domain.Actor{UserID: uuid.New(), IsAdmin: true}

	a, err := svc.Create(ctx, owner, draft())
	require.NoError(t, err)
	b, err := svc.Create(ctx, owner, draft())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, domain.Actor{UserID: uuid.New()}, a.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, owner, a.ID))
	require.NoError(t, svc.Delete(ctx, admin, b.ID))

	_, err = svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestListPaging(t *testing.T) {
	svc := New(memory.New(), nil, discard, Config{DefaultLimit: 2, MaxLimit: 3})
	ctx := context.Background()
	creator := domain.Actor{UserID: uuid.New(), IsCreator: true}

	for i := 0; i < 5; i++ {
		e := draft()
		e.Date = e.Date.Add(time.Duration(i) * time.Hour)
		_, err := svc.Create(ctx, creator, e)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	page, err = svc.List(ctx, 100, 0)
	require.NoError(t, err)
	assert.Len(t, page, 3)

	page, err = svc.List(ctx, 10, 4)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, draft().Date.Add(4*time.Hour), page[0].Date)
}

func TestGetUsesCache(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := memory.New()
	svc := New(store, redisrepo.New(db), discard, Config{CacheTTL: time.Minute})
	ctx := context.Background()

	e := draft()
	e.ID = uuid.New()
	require.NoError(t, store.Events().Create(ctx, e))

	cached := *e
	cached.Name = "from cache"
	b, err := json.Marshal(cached)
	require.NoError(t, err)

	mock.ExpectGet(redisrepo.KeyEvent(e.ID)).SetVal(string(b))

	got, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "from cache", got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
