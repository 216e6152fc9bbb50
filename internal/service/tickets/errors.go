package tickets

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/sievent/internal/domain"
)

var (
	ErrEventNotFound         = errors.New("event not found")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrNotOwner              = errors.New("ticket belongs to another user")
	ErrInvalidState          = errors.New("illegal ticket transition")
	ErrInsufficientInventory = errors.New("not enough tickets available")
	ErrInvalidQuantity       = errors.New("invalid ticket quantity")
	ErrPaidEventNotAllowed   = errors.New("event is not free")
	ErrFreeEventNotAllowed   = errors.New("event is free")
	ErrRateLimited           = errors.New("too many reservations")
	ErrRequestInFlight       = errors.New("request with this idempotency key is still running")
)

type InvalidStateError struct {
	TicketID uuid.UUID
	Status   domain.TicketStatus
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("ticket %s is %s", e.TicketID, e.Status)
}

func (e InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("too many reservations, retry in %s", e.RetryAfter)
}

func (e RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}
