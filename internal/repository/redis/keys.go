package redis

import (
	"fmt"

	"github.com/google/uuid"
)

const ns = "sievent:v1"

func KeyEvent(eventID uuid.UUID) string {
	return fmt.Sprintf("%s:event:%s", ns, eventID)
}

func KeyRatingSummary(eventID uuid.UUID) string {
	return fmt.Sprintf("%s:event:%s:rating", ns, eventID)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func KeyIdemTicket(userID uuid.UUID, idemKey string) string {
	return fmt.Sprintf("%s:idem:tickets:%s:%s", ns, userID, idemKey)
}

func KeyOTP(purpose string, userID uuid.UUID) string {
	return fmt.Sprintf("%s:otp:%s:%s", ns, purpose, userID)
}

func ChannelTickets() string {
	return ns + ":tickets"
}
