package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventOnline  EventType = "online"
	EventOffline EventType = "offline"
)

func (t EventType) Valid() bool {
	return t == EventOnline || t == EventOffline
}

type TicketStatus string

const (
	TicketPending   TicketStatus = "pending"
	TicketPaid      TicketStatus = "paid"
	TicketCancelled TicketStatus = "cancelled"
	TicketUsed      TicketStatus = "used"
)

// transitions lists every edge of the ticket lifecycle. Creation edges
// (none -> pending, none -> paid) are not represented here.
var transitions = map[TicketStatus][]TicketStatus{
	TicketPending: {TicketPaid, TicketCancelled},
	TicketPaid:    {TicketUsed},
}

// CanTransitionTo reports whether a ticket in status s may move to next.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s TicketStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentSettlement PaymentStatus = "settlement"
	PaymentCancel     PaymentStatus = "cancel"
	PaymentExpire     PaymentStatus = "expire"
	PaymentDeny       PaymentStatus = "deny"
)

// Failed reports whether the gateway gave up on the transaction for good.
func (s PaymentStatus) Failed() bool {
	return s == PaymentCancel || s == PaymentExpire || s == PaymentDeny
}

type RatingStatus string

const (
	RatingUnrated RatingStatus = "unrated"
	RatingRated   RatingStatus = "rated"
)

type User struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	IsAccountVerified bool      `json:"is_account_verified"`
	IsCreator         bool      `json:"is_creator"`
	CreatorRequest    bool      `json:"creator_request"`
	IsAdmin           bool      `json:"is_admin"`
	CreatedAt         time.Time `json:"created_at"`
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID    uuid.UUID
	IsCreator bool
	IsAdmin   bool
}

func ActorOf(u *User) Actor {
	return Actor{UserID: u.ID, IsCreator: u.IsCreator, IsAdmin: u.IsAdmin}
}

type Event struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	BannerURL       string          `json:"banner_url"`
	Type            EventType       `json:"type"`
	Date            time.Time       `json:"date"`
	Location        string          `json:"location"`
	Latitude        float64         `json:"latitude"`
	Longitude       float64         `json:"longitude"`
	Price           decimal.Decimal `json:"price"`
	TicketAvailable int             `json:"ticket_available"`
	CreatorID       uuid.UUID       `json:"creator_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Free reports whether tickets for the event cost nothing.
func (e *Event) Free() bool {
	return !e.Price.IsPositive()
}

// EventPatch carries the optional fields of an event edit.
type EventPatch struct {
	Name            *string
	Description     *string
	BannerURL       *string
	Type            *EventType
	Date            *time.Time
	Location        *string
	Latitude        *float64
	Longitude       *float64
	Price           *decimal.Decimal
	TicketAvailable *int
}

// InventorySnapshot is what a successful reservation observed on the event
// row at the moment of the decrement.
type InventorySnapshot struct {
	EventID   uuid.UUID
	Price     decimal.Decimal
	Date      time.Time
	Remaining int
}

type Ticket struct {
	ID                uuid.UUID       `json:"id"`
	EventID           uuid.UUID       `json:"event_id"`
	UserID            uuid.UUID       `json:"user_id"`
	Quantity          int             `json:"quantity"`
	Price             decimal.Decimal `json:"price"`
	Total             decimal.Decimal `json:"total"`
	EventDate         time.Time       `json:"event_date"`
	Status            TicketStatus    `json:"status"`
	IsScanned         bool            `json:"is_scanned"`
	ScannedAt         *time.Time      `json:"scanned_at,omitempty"`
	VerifiedByCreator bool            `json:"verified_by_creator"`
	PaymentID         *uuid.UUID      `json:"payment_id,omitempty"`
	PaymentURL        string          `json:"payment_url,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// OrderID is the gateway order identifier derived from the ticket id.
func (t *Ticket) OrderID() string {
	return OrderIDForTicket(t.ID)
}

func OrderIDForTicket(id uuid.UUID) string {
	return "ticket-" + id.String()
}

// TicketWithEvent is a ticket joined with the event fields shown in listings.
type TicketWithEvent struct {
	Ticket
	EventName     string    `json:"event_name"`
	EventLocation string    `json:"event_location"`
	EventType     EventType `json:"event_type"`
}

type Payment struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"user_id"`
	TicketID          uuid.UUID       `json:"ticket_id"`
	TransactionID     string          `json:"transaction_id"`
	OrderID           string          `json:"order_id"`
	GrossAmount       decimal.Decimal `json:"gross_amount"`
	TransactionStatus PaymentStatus   `json:"transaction_status"`
	PaymentType       *string         `json:"payment_type,omitempty"`
	Raw               []byte          `json:"-"`
	Token             string          `json:"token,omitempty"`
	RedirectURL       string          `json:"redirect_url,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type Rating struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"user_id"`
	UserName  string       `json:"user_name,omitempty"`
	EventID   uuid.UUID    `json:"event_id"`
	Stars     int          `json:"stars"`
	Review    string       `json:"review"`
	Status    RatingStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type RatingSummary struct {
	EventID uuid.UUID       `json:"event_id"`
	Average decimal.Decimal `json:"average"`
	Count   int             `json:"count"`
}

type Report struct {
	ID          uuid.UUID `json:"id"`
	ReporterID  uuid.UUID `json:"reporter_id"`
	ReportedID  uuid.UUID `json:"reported_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
