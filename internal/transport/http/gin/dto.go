package httpgin

import (
	"time"

	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/shopspring/decimal"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Data    any    `json:"data,omitempty"`
	Warning string `json:"warning,omitempty"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type VerifyAccountRequest struct {
	OTP string `json:"otp" binding:"required"`
}

type SendResetOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type CreateEventRequest struct {
	Name            string           `json:"name" binding:"required"`
	Description     string           `json:"description"`
	BannerURL       string           `json:"banner_url"`
	Type            domain.EventType `json:"type" binding:"required,oneof=online offline"`
	Date            time.Time        `json:"date" binding:"required"`
	Location        string           `json:"location"`
	Latitude        float64          `json:"latitude"`
	Longitude       float64          `json:"longitude"`
	Price           decimal.Decimal  `json:"price" swaggertype:"string"`
	TicketAvailable int              `json:"ticket_available" binding:"gte=0"`
}

func (r CreateEventRequest) toDomain() *domain.Event {
	return &domain.Event{
		Name:            r.Name,
		Description:     r.Description,
		BannerURL:       r.BannerURL,
		Type:            r.Type,
		Date:            r.Date,
		Location:        r.Location,
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
		Price:           r.Price,
		TicketAvailable: r.TicketAvailable,
	}
}

type UpdateEventRequest struct {
	Name            *string           `json:"name"`
	Description     *string           `json:"description"`
	BannerURL       *string           `json:"banner_url"`
	Type            *domain.EventType `json:"type"`
	Date            *time.Time        `json:"date"`
	Location        *string           `json:"location"`
	Latitude        *float64          `json:"latitude"`
	Longitude       *float64          `json:"longitude"`
	Price           *decimal.Decimal  `json:"price" swaggertype:"string"`
	TicketAvailable *int              `json:"ticket_available"`
}

func (r UpdateEventRequest) toPatch() domain.EventPatch {
	return domain.EventPatch{
		Name:            r.Name,
		Description:     r.Description,
		BannerURL:       r.BannerURL,
		Type:            r.Type,
		Date:            r.Date,
		Location:        r.Location,
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
		Price:           r.Price,
		TicketAvailable: r.TicketAvailable,
	}
}

type CreateTicketRequest struct {
	EventID  string `json:"event_id" binding:"required"`
	Quantity int    `json:"quantity"`
}

type CreatePaymentRequest struct {
	TicketID string `json:"ticket_id" binding:"required"`
}

// PaymentNotification is the part of the gateway callback the server reads.
type PaymentNotification struct {
	OrderID string `json:"order_id" binding:"required"`
}

type VerifyTicketRequest struct {
	Token string `json:"token" binding:"required"`
}

type RateEventRequest struct {
	Stars  int    `json:"stars" binding:"required,min=1,max=5"`
	Review string `json:"review"`
}

type UpdateRatingRequest struct {
	Stars  *int    `json:"stars" binding:"omitempty,min=1,max=5"`
	Review *string `json:"review"`
}

type ReportRequest struct {
	Description string `json:"description" binding:"required"`
}

type AlreadyUsedResponse struct {
	TicketID  string    `json:"ticket_id"`
	ScannedAt time.Time `json:"scanned_at"`
}
