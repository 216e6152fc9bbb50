package redis

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type summary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestGetOrSetJSON_MissLoadsAndStores(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)
	ctx := context.Background()
	key := KeyEvent(uuid.MustParse("9b2e4a34-55a4-4b0f-8b8e-3d2f6f0e0c11"))

	mock.ExpectGet(key).RedisNil()
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, []byte(`{"name":"Jazz Night","count":2}`), time.Minute).SetVal("OK")

	calls := 0
	got, err := GetOrSetJSON(ctx, c, key, time.Minute, func(context.Context) (summary, error) {
		calls++
		return summary{Name: "Jazz Night", Count: 2}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, summary{Name: "Jazz Night", Count: 2}, got)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSetJSON_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)
	key := "k"

	mock.ExpectGet(key).SetVal(`{"name":"cached","count":7}`)

	got, err := GetOrSetJSON(context.Background(), c, key, time.Minute, func(context.Context) (summary, error) {
		t.Fatal("loader must not run on a hit")
		return summary{}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "cached", got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSetJSON_LoaderError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)
	boom := errors.New("boom")

	mock.ExpectGet("k").RedisNil()
	mock.ExpectGet("k").RedisNil()

	_, err := GetOrSetJSON(context.Background(), c, "k", time.Minute, func(context.Context) (summary, error) {
		return summary{}, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNilCachePassesThrough(t *testing.T) {
	var c *Cache

	got, err := GetOrSetJSON(context.Background(), c, "k", time.Minute, func(context.Context) (int, error) {
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.NoError(t, c.InvalidateEvent(context.Background(), uuid.New()))
}

func TestInvalidateEvent(t *testing.T) {
	db, mock := redismock.NewClientMock()
	id := uuid.New()

	mock.ExpectDel(KeyEvent(id)).SetVal(1)

	require.NoError(t, New(db).InvalidateEvent(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStore(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewIdempotencyStore(db, time.Hour)
	ctx := context.Background()
	key := KeyIdemTicket(uuid.New(), "abc")

	mock.ExpectSetNX(key, "LOCK", 30*time.Second).SetVal(true)
	mock.ExpectGet(key).SetVal("LOCK")
	mock.ExpectSet(key, `RES:{"id":"1"}`, time.Hour).SetVal("OK")
	mock.ExpectGet(key).SetVal(`RES:{"id":"1"}`)

	ok, err := s.AcquireLock(ctx, key, 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	_, found, locked, err := s.GetResult(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, locked)

	require.NoError(t, s.SaveResult(ctx, key, []byte(`{"id":"1"}`)))

	payload, found, _, err := s.GetResult(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"id":"1"}`, string(payload))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOTPStore(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewOTPStore(db)
	ctx := context.Background()
	userID := uuid.New()
	key := KeyOTP("verify", userID)

	mock.ExpectSet(key, "123456", 24*time.Hour).SetVal("OK")
	mock.ExpectGet(key).SetVal("123456")
	mock.ExpectGet(key).SetVal("123456")
	mock.ExpectDel(key).SetVal(1)
	mock.ExpectGet(key).RedisNil()

	require.NoError(t, s.Save(ctx, "verify", userID, "123456", 24*time.Hour))

	assert.ErrorIs(t, s.Verify(ctx, "verify", userID, "000000"), ErrOTPMismatch)
	assert.NoError(t, s.Verify(ctx, "verify", userID, "123456"))
	assert.ErrorIs(t, s.Verify(ctx, "verify", userID, "123456"), ErrOTPExpired)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLimiterDisabled(t *testing.T) {
	var l *SlidingWindowLimiter

	ok, _, err := l.Allow(context.Background(), "user")
	require.NoError(t, err)
	assert.True(t, ok)

	db, _ := redismock.NewClientMock()
	ok, _, err = NewSlidingWindowLimiter(db, "tickets", 0, time.Minute).Allow(context.Background(), "user")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLimiterAllow(t *testing.T) {
	tests := []struct {
		name      string
		reply     []interface{}
		wantOK    bool
		wantRetry time.Duration
	}{
		{"room left", []interface{}{int64(1), int64(1), int64(0)}, true, 0},
		{"window full", []interface{}{int64(0), int64(2), int64(1500)}, false, 1500 * time.Millisecond},
	}

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := redismock.NewClientMock()
			l := NewSlidingWindowLimiter(db, "reserve", 2, time.Minute)
			l.now = func() time.Time { return now }

			mock.Regexp().ExpectEvalSha(
				reserveWindow.Hash(),
				[]string{regexp.QuoteMeta(KeyRateLimit("reserve", "user-1"))},
				now.UnixMilli(), int64(60000), 2, `^[0-9a-f-]{36}$`,
			).SetVal(tt.reply)

			ok, retry, err := l.Allow(context.Background(), "user-1")
			require.NoError(t, err)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantRetry, retry)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLimiterScriptError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := NewSlidingWindowLimiter(db, "reserve", 2, time.Minute)

	mock.CustomMatch(func(_, _ []interface{}) error { return nil }).
		ExpectEvalSha("", []string{""}, 0, 0, 0, "").
		SetErr(errors.New("connection refused"))

	_, _, err := l.Allow(context.Background(), "user-1")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
