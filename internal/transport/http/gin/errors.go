package httpgin

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/sievent/internal/repository"
	"github.com/kirinyoku/sievent/internal/service/events"
	"github.com/kirinyoku/sievent/internal/service/payments"
	"github.com/kirinyoku/sievent/internal/service/ratings"
	"github.com/kirinyoku/sievent/internal/service/redemption"
	"github.com/kirinyoku/sievent/internal/service/reports"
	"github.com/kirinyoku/sievent/internal/service/tickets"
	"github.com/kirinyoku/sievent/internal/service/users"
)

const (
	kindNotFound              = "not_found"
	kindUnauthorized          = "unauthorized"
	kindUnauthenticated       = "unauthenticated"
	kindInvalidState          = "invalid_state"
	kindConflict              = "conflict"
	kindInsufficientInventory = "insufficient_inventory"
	kindInvalidQuantity       = "invalid_quantity"
	kindPaidEventNotAllowed   = "paid_event_not_allowed"
	kindFreeEventNotAllowed   = "free_event_not_allowed"
	kindAlreadyUsed           = "already_used"
	kindTokenExpired          = "token_expired"
	kindInvalidToken          = "invalid_token"
	kindGateway               = "gateway_error"
	kindRateLimited           = "rate_limited"
	kindValidation            = "validation"
	kindInternal              = "internal"
)

type errorMapping struct {
	target error
	status int
	kind   string
}

// errorTable is scanned in order; the first target err matches decides the
// response.
var errorTable = []errorMapping{
	{tickets.ErrEventNotFound, http.StatusNotFound, kindNotFound},
	{tickets.ErrTicketNotFound, http.StatusNotFound, kindNotFound},
	{tickets.ErrNotOwner, http.StatusForbidden, kindUnauthorized},
	{tickets.ErrInvalidState, http.StatusConflict, kindInvalidState},
	{tickets.ErrInsufficientInventory, http.StatusConflict, kindInsufficientInventory},
	{tickets.ErrInvalidQuantity, http.StatusBadRequest, kindInvalidQuantity},
	{tickets.ErrPaidEventNotAllowed, http.StatusBadRequest, kindPaidEventNotAllowed},
	{tickets.ErrFreeEventNotAllowed, http.StatusBadRequest, kindFreeEventNotAllowed},
	{tickets.ErrRequestInFlight, http.StatusConflict, kindConflict},

	{payments.ErrPaymentNotFound, http.StatusNotFound, kindNotFound},
	{payments.ErrGateway, http.StatusBadGateway, kindGateway},

	{redemption.ErrInvalidToken, http.StatusUnauthorized, kindInvalidToken},
	{redemption.ErrTokenExpired, http.StatusUnauthorized, kindTokenExpired},
	{redemption.ErrTicketNotFound, http.StatusNotFound, kindNotFound},
	{redemption.ErrAlreadyUsed, http.StatusConflict, kindAlreadyUsed},
	{redemption.ErrNotPaid, http.StatusConflict, kindInvalidState},
	{redemption.ErrWrongEventType, http.StatusBadRequest, kindValidation},

	{events.ErrEventNotFound, http.StatusNotFound, kindNotFound},
	{events.ErrNotCreator, http.StatusForbidden, kindUnauthorized},
	{events.ErrForbidden, http.StatusForbidden, kindUnauthorized},
	{events.ErrInvalidEvent, http.StatusBadRequest, kindValidation},

	{ratings.ErrRatingNotFound, http.StatusNotFound, kindNotFound},
	{ratings.ErrEventNotFound, http.StatusNotFound, kindNotFound},
	{ratings.ErrInvalidStars, http.StatusBadRequest, kindValidation},
	{ratings.ErrNotOwner, http.StatusForbidden, kindUnauthorized},

	{users.ErrUserNotFound, http.StatusNotFound, kindNotFound},
	{users.ErrEmailTaken, http.StatusConflict, kindConflict},
	{users.ErrInvalidCredentials, http.StatusUnauthorized, kindUnauthenticated},
	{users.ErrUnauthenticated, http.StatusUnauthorized, kindUnauthenticated},
	{users.ErrSessionExpired, http.StatusUnauthorized, kindUnauthenticated},
	{users.ErrNotAdmin, http.StatusForbidden, kindUnauthorized},
	{users.ErrInvalidInput, http.StatusBadRequest, kindValidation},
	{users.ErrAlreadyVerified, http.StatusConflict, kindConflict},
	{users.ErrAlreadyCreator, http.StatusConflict, kindConflict},
	{users.ErrNoCreatorRequest, http.StatusConflict, kindInvalidState},
	{users.ErrInvalidOTP, http.StatusBadRequest, kindValidation},
	{users.ErrOTPExpired, http.StatusBadRequest, kindValidation},
	{users.ErrOTPUnavailable, http.StatusServiceUnavailable, kindInternal},

	{reports.ErrReportNotFound, http.StatusNotFound, kindNotFound},
	{reports.ErrUserNotFound, http.StatusNotFound, kindNotFound},
	{reports.ErrNotACreator, http.StatusBadRequest, kindValidation},
	{reports.ErrNotCreator, http.StatusForbidden, kindUnauthorized},
	{reports.ErrNotAdmin, http.StatusForbidden, kindUnauthorized},
	{reports.ErrSelfReport, http.StatusBadRequest, kindValidation},
	{reports.ErrEmptyDescription, http.StatusBadRequest, kindValidation},

	{repository.ErrNotFound, http.StatusNotFound, kindNotFound},
	{repository.ErrConflict, http.StatusConflict, kindConflict},
	{repository.ErrInsufficientInventory, http.StatusConflict, kindInsufficientInventory},
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var rl tickets.RateLimitedError
	if errors.As(err, &rl) {
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(rl.RetryAfter.Seconds()))))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, Envelope{
			Message: rl.Error(),
			Kind:    kindRateLimited,
		})
		return
	}

	var used redemption.AlreadyUsedError
	if errors.As(err, &used) {
		c.AbortWithStatusJSON(http.StatusConflict, Envelope{
			Message: "ticket already used",
			Kind:    kindAlreadyUsed,
			Data: AlreadyUsedResponse{
				TicketID:  used.TicketID.String(),
				ScannedAt: used.ScannedAt,
			},
		})
		return
	}

	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			if m.status >= http.StatusInternalServerError {
				_ = c.Error(err)
			}
			c.AbortWithStatusJSON(m.status, Envelope{Message: message(err, m.target), Kind: m.kind})
			return
		}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, Envelope{
		Message: "internal server error",
		Kind:    kindInternal,
	})
}

// message keeps the detail a service attached to a validation sentinel and
// hides the op chain for everything else.
func message(err, target error) string {
	switch target {
	case events.ErrInvalidEvent, users.ErrInvalidInput:
		msg := err.Error()
		if i := strings.Index(msg, target.Error()); i >= 0 {
			return msg[i:]
		}
	}
	return target.Error()
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{Message: msg, Kind: kindValidation})
}
