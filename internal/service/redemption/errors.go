package redemption

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("invalid ticket token")
	ErrTokenExpired   = errors.New("ticket token expired")
	ErrTicketNotFound = errors.New("ticket not found")
	ErrAlreadyUsed    = errors.New("ticket already used")
	ErrNotPaid        = errors.New("ticket is not paid")
	ErrWrongEventType = errors.New("ticket belongs to an event of another type")
)

// AlreadyUsedError reports a second redemption together with the time of
// the first one.
type AlreadyUsedError struct {
	TicketID  uuid.UUID
	ScannedAt time.Time
}

func (e AlreadyUsedError) Error() string {
	return fmt.Sprintf("ticket %s already used at %s", e.TicketID, e.ScannedAt.Format(time.RFC3339))
}

func (e AlreadyUsedError) Is(target error) bool {
	return target == ErrAlreadyUsed
}
