package redis

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrOTPExpired  = errors.New("otp expired or never issued")
	ErrOTPMismatch = errors.New("otp mismatch")
)

// OTPStore keeps one-time codes per user and purpose. Issuing a new code
// replaces the previous one; a matching code is consumed.
type OTPStore struct {
	rdb *redis.Client
}

func NewOTPStore(rdb *redis.Client) *OTPStore {
	return &OTPStore{rdb: rdb}
}

func (s *OTPStore) Save(ctx context.Context, purpose string, userID uuid.UUID, code string, ttl time.Duration) error {
	const op = "redis.OTPStore.Save"

	if err := s.rdb.Set(ctx, KeyOTP(purpose, userID), code, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *OTPStore) Verify(ctx context.Context, purpose string, userID uuid.UUID, code string) error {
	const op = "redis.OTPStore.Verify"

	key := KeyOTP(purpose, userID)

	stored, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%s: %w", op, ErrOTPExpired)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return fmt.Errorf("%s: %w", op, ErrOTPMismatch)
	}

	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
