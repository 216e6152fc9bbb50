// Package broker carries ticket lifecycle notifications between the request
// path and background consumers such as e-ticket delivery.
package broker

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	TicketReserved  MessageType = "ticket.reserved"
	TicketPaid      MessageType = "ticket.paid"
	TicketCancelled MessageType = "ticket.cancelled"
	TicketUsed      MessageType = "ticket.used"
)

type TicketMessage struct {
	Type     MessageType `json:"type"`
	TicketID uuid.UUID   `json:"ticket_id"`
	EventID  uuid.UUID   `json:"event_id"`
	UserID   uuid.UUID   `json:"user_id"`
	TsUnix   int64       `json:"ts_unix"`
}

func NewTicketMessage(typ MessageType, ticketID, eventID, userID uuid.UUID) TicketMessage {
	return TicketMessage{
		Type:     typ,
		TicketID: ticketID,
		EventID:  eventID,
		UserID:   userID,
		TsUnix:   time.Now().Unix(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, msg TicketMessage) error
}

// Subscriber delivers messages to handler until ctx is done.
type Subscriber interface {
	Subscribe(ctx context.Context, handler func(ctx context.Context, msg TicketMessage)) error
}

// Nop drops every message. Used when BROKER_DRIVER=none.
type Nop struct{}

func (Nop) Publish(context.Context, TicketMessage) error { return nil }

func (Nop) Subscribe(ctx context.Context, _ func(context.Context, TicketMessage)) error {
	<-ctx.Done()
	return nil
}
