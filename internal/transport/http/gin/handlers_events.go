package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/sievent/internal/service"
)

// @Summary  List events
// @Param    limit  query  int  false  "page size"
// @Param    offset query  int  false  "offset"
// @Success  200 {object} Envelope{data=[]domain.Event}
// @Router   /api/events [get]
func handleListEvents(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseIntDefault(c.Query("limit"), 0)
		offset := parseIntDefault(c.Query("offset"), 0)

		list, err := svcs.Events.List(c.Request.Context(), limit, offset)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, Envelope{Success: true, Data: list}, "public, max-age=15", true)
	}
}

// @Summary  Get event
// @Param    id  path  string  true  "Event ID (uuid)"
// @Success  200 {object} Envelope{data=domain.Event}
// @Failure  404 {object} Envelope
// @Router   /api/events/{id} [get]
func handleGetEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}

		e, err := svcs.Events.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ticket_available moves with every reservation; keep the window short
		writeJSONWithCache(c, http.StatusOK, Envelope{Success: true, Data: e}, "public, max-age=15", true)
	}
}

// @Summary  Events created by the caller
// @Success  200 {object} Envelope{data=[]domain.Event}
// @Failure  403 {object} Envelope
// @Router   /api/events/mine [get]
func handleListMyEvents(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Events.ListMine(c.Request.Context(), currentActor(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		ok(c, http.StatusOK, list)
	}
}

// @Summary  Create event
// @Param    req body  CreateEventRequest true "payload"
// @Success  201 {object} Envelope{data=domain.Event}
// @Failure  400 {object} Envelope
// @Failure  403 {object} Envelope
// @Router   /api/events [post]
func handleCreateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		e, err := svcs.Events.Create(c.Request.Context(), currentActor(c), req.toDomain())
		if err != nil {
			respondErr(c, err)
			return
		}
		ok(c, http.StatusCreated, e)
	}
}

// @Summary  Update event
// @Param    id  path  string  true  "Event ID (uuid)"
// @Param    req body  UpdateEventRequest true "fields to change"
// @Success  200 {object} Envelope{data=domain.Event}
// @Failure  403 {object} Envelope
// @Failure  404 {object} Envelope
// @Router   /api/events/{id} [patch]
func handleUpdateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}
		var req UpdateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		e, err := svcs.Events.Update(c.Request.Context(), currentActor(c), id, req.toPatch())
		if err != nil {
			respondErr(c, err)
			return
		}
		ok(c, http.StatusOK, e)
	}
}

// @Summary  Delete event
// @Param    id  path  string  true  "Event ID (uuid)"
// @Success  200 {object} Envelope
// @Failure  403 {object} Envelope
// @Failure  404 {object} Envelope
// @Router   /api/events/{id} [delete]
func handleDeleteEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}
		if err := svcs.Events.Delete(c.Request.Context(), currentActor(c), id); err != nil {
			respondErr(c, err)
			return
		}
		okMessage(c, "event deleted")
	}
}
