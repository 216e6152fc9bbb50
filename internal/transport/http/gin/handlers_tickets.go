package httpgin

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/service"
	"github.com/kirinyoku/sievent/internal/service/payments"
	"github.com/kirinyoku/sievent/internal/service/tickets"
)

func reserveRequest(c *gin.Context) (tickets.ReserveRequest, bool) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return tickets.ReserveRequest{}, false
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		badRequest(c, "invalid event_id")
		return tickets.ReserveRequest{}, false
	}

	return tickets.ReserveRequest{
		EventID:        eventID,
		UserID:         currentUser(c).ID,
		Quantity:       req.Quantity,
		IdempotencyKey: strings.TrimSpace(c.GetHeader("Idempotency-Key")),
	}, true
}

// @Summary  Reserve tickets for a paid event (idempotent)
// @Param    Idempotency-Key header string false "replays the first result"
// @Param    req body  CreateTicketRequest true "payload"
// @Success  201 {object} Envelope{data=domain.Ticket}
// @Failure  400 {object} Envelope "invalid quantity / free event"
// @Failure  404 {object} Envelope
// @Failure  409 {object} Envelope "insufficient inventory / request in flight"
// @Failure  429 {object} Envelope "rate limited"
// @Router   /api/tickets [post]
func handleCreateTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, valid := reserveRequest(c)
		if !valid {
			return
		}

		t, err := svcs.Tickets.CreatePaid(c.Request.Context(), req)
		if err != nil {
			respondErr(c, err)
			return
		}
		if req.IdempotencyKey != "" {
			c.Header("Idempotency-Key", req.IdempotencyKey)
		}
		ok(c, http.StatusCreated, t)
	}
}

// @Summary  Claim tickets for a free event (idempotent)
// @Param    Idempotency-Key header string false "replays the first result"
// @Param    req body  CreateTicketRequest true "payload"
// @Success  201 {object} Envelope{data=domain.Ticket}
// @Failure  400 {object} Envelope "invalid quantity / paid event"
// @Failure  409 {object} Envelope
// @Router   /api/tickets/free [post]
func handleCreateFreeTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, valid := reserveRequest(c)
		if !valid {
			return
		}

		t, err := svcs.Tickets.CreateFree(c.Request.Context(), req)
		if err != nil {
			respondErr(c, err)
			return
		}
		if req.IdempotencyKey != "" {
			c.Header("Idempotency-Key", req.IdempotencyKey)
		}
		ok(c, http.StatusCreated, t)
	}
}

// @Summary  Caller's tickets with their events
// @Success  200 {object} Envelope{data=[]domain.TicketWithEvent}
// @Router   /api/tickets [get]
func handleListTickets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Tickets.ListForUser(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			respondErr(c, err)
			return
		}
		if list == nil {
			list = []domain.TicketWithEvent{}
		}
		ok(c, http.StatusOK, list)
	}
}

// @Summary  Get ticket
// @Param    id  path  string  true  "Ticket ID (uuid)"
// @Success  200 {object} Envelope{data=domain.Ticket}
// @Failure  404 {object} Envelope
// @Router   /api/tickets/{id} [get]
func handleGetTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}

		t, err := svcs.Tickets.Get(c.Request.Context(), id, currentUser(c).ID)
		if err != nil {
			respondErr(c, err)
			return
		}
		ok(c, http.StatusOK, t)
	}
}

// @Summary  Cancel a pending ticket
// @Param    id  path  string  true  "Ticket ID (uuid)"
// @Success  200 {object} Envelope{data=domain.Ticket}
// @Failure  403 {object} Envelope
// @Failure  409 {object} Envelope "not pending"
// @Router   /api/tickets/{id}/cancel [post]
func handleCancelTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}

		t, err := svcs.Tickets.Cancel(c.Request.Context(), id, currentUser(c).ID)
		if err != nil {
			respondErr(c, err)
			return
		}
		ok(c, http.StatusOK, t)
	}
}

// @Summary  Delete a pending ticket
// @Param    id  path  string  true  "Ticket ID (uuid)"
// @Success  200 {object} Envelope
// @Failure  403 {object} Envelope
// @Failure  409 {object} Envelope "not pending"
// @Router   /api/tickets/{id} [delete]
func handleDeleteTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}
		if err := svcs.Tickets.Delete(c.Request.Context(), id, currentUser(c).ID); err != nil {
			respondErr(c, err)
			return
		}
		okMessage(c, "ticket deleted")
	}
}

// @Summary  Start payment for a pending ticket
// @Param    req body  CreatePaymentRequest true "payload"
// @Success  201 {object} Envelope{data=payments.Checkout}
// @Failure  409 {object} Envelope "ticket not pending"
// @Failure  502 {object} Envelope "gateway error"
// @Router   /api/payments [post]
func handleCreatePayment(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		ticketID, err := uuid.Parse(req.TicketID)
		if err != nil {
			badRequest(c, "invalid ticket_id")
			return
		}

		co, err := svcs.Payments.Initiate(c.Request.Context(), ticketID, currentUser(c).ID)
		if err != nil {
			respondErr(c, err)
			return
		}
		ok(c, http.StatusCreated, co)
	}
}

// @Summary  Gateway notification
// @Description The body is only used to find the order; the status is always
// @Description fetched from the gateway.
// @Param    req body  PaymentNotification true "gateway callback"
// @Success  200 {object} Envelope{data=domain.Payment}
// @Failure  404 {object} Envelope
// @Failure  502 {object} Envelope
// @Router   /api/payments/notification [post]
func handlePaymentNotification(svcs *service.Services, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.GetRawData()
		if err != nil {
			badRequest(c, "unreadable body")
			return
		}

		var req PaymentNotification
		if err := binding.JSON.BindBody(raw, &req); err != nil {
			badRequest(c, err.Error())
			return
		}

		p, err := svcs.Payments.Reconcile(c.Request.Context(), payments.Notification{
			OrderID: req.OrderID,
			Raw:     raw,
		})
		if err != nil {
			logger.Warn("payment notification not applied",
				slog.String("order_id", req.OrderID),
				slog.String("err", err.Error()),
			)
			respondErr(c, err)
			return
		}
		ok(c, http.StatusOK, p)
	}
}

// @Summary  Get payment
// @Param    id  path  string  true  "Payment ID (uuid)"
// @Success  200 {object} Envelope{data=domain.Payment}
// @Failure  404 {object} Envelope
// @Router   /api/payments/{id} [get]
func handleGetPayment(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}

		p, err := svcs.Payments.Get(c.Request.Context(), id, currentUser(c).ID)
		if err != nil {
			respondErr(c, err)
			return
		}
		ok(c, http.StatusOK, p)
	}
}
