package httpgin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/sievent/internal/service"
)

func verify(c *gin.Context, svcs *service.Services, token string) {
	adm, err := svcs.Redemption.Verify(c.Request.Context(), token)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, Envelope{Success: true, Message: "ticket admitted", Data: adm})
}

// @Summary  Redeem a scanned ticket token
// @Param    req body  VerifyTicketRequest true "payload"
// @Success  200 {object} Envelope{data=redemption.Admission}
// @Failure  401 {object} Envelope "invalid or expired token"
// @Failure  404 {object} Envelope
// @Failure  409 {object} Envelope{data=AlreadyUsedResponse} "already used"
// @Router   /api/qr/verify [post]
func handleVerifyTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		verify(c, svcs, req.Token)
	}
}

// @Summary  Redeem a ticket from the QR link
// @Param    token query string true "ticket token"
// @Success  200 {object} Envelope{data=redemption.Admission}
// @Failure  401 {object} Envelope "invalid or expired token"
// @Failure  409 {object} Envelope{data=AlreadyUsedResponse} "already used"
// @Router   /api/qr/verify [get]
func handleVerifyTicketLink(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.Query("token"))
		if token == "" {
			badRequest(c, "token is required")
			return
		}
		verify(c, svcs, token)
	}
}

// @Summary  Email the QR ticket of an offline event
// @Param    id  path  string  true  "Ticket ID (uuid)"
// @Success  200 {object} Envelope
// @Failure  400 {object} Envelope "not an offline event"
// @Failure  404 {object} Envelope
// @Failure  409 {object} Envelope "not paid"
// @Router   /api/mail/tickets/{id}/offline [post]
func handleSendOfflineTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}
		if err := svcs.Redemption.SendOfflineTicket(c.Request.Context(), id, currentUser(c).ID); err != nil {
			respondErr(c, err)
			return
		}
		okMessage(c, "ticket sent")
	}
}

// @Summary  Email the access link of an online event
// @Param    id  path  string  true  "Ticket ID (uuid)"
// @Success  200 {object} Envelope
// @Failure  400 {object} Envelope "not an online event"
// @Failure  404 {object} Envelope
// @Failure  409 {object} Envelope "not paid"
// @Router   /api/mail/tickets/{id}/online [post]
func handleSendOnlineTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}
		if err := svcs.Redemption.SendOnlineTicket(c.Request.Context(), id, currentUser(c).ID); err != nil {
			respondErr(c, err)
			return
		}
		okMessage(c, "ticket sent")
	}
}
