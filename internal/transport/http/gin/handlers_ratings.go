package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/service"
)

// @Summary  Rate an event
// @Description Rating the same event again replaces the earlier rating.
// @Param    id  path  string  true  "Event ID (uuid)"
// @Param    req body  RateEventRequest true "payload"
// @Success  201 {object} Envelope{data=domain.Rating} "created"
// @Success  200 {object} Envelope{data=domain.Rating} "replaced"
// @Failure  404 {object} Envelope
// @Router   /api/events/{id}/ratings [post]
func handleRateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}
		var req RateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		r, created, err := svcs.Ratings.Rate(c.Request.Context(), currentUser(c).ID, eventID, req.Stars, req.Review)
		if err != nil {
			respondErr(c, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		ok(c, status, r)
	}
}

// @Summary  Ratings of an event
// @Param    id  path  string  true  "Event ID (uuid)"
// @Success  200 {object} Envelope{data=[]domain.Rating}
// @Failure  404 {object} Envelope
// @Router   /api/events/{id}/ratings [get]
func handleListRatings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}

		list, err := svcs.Ratings.ListForEvent(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		if list == nil {
			list = []domain.Rating{}
		}
		ok(c, http.StatusOK, list)
	}
}

// @Summary  Average rating of an event
// @Param    id  path  string  true  "Event ID (uuid)"
// @Success  200 {object} Envelope{data=domain.RatingSummary}
// @Failure  404 {object} Envelope
// @Router   /api/events/{id}/ratings/average [get]
func handleRatingAverage(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}

		sum, err := svcs.Ratings.Average(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, Envelope{Success: true, Data: sum}, "public, max-age=60", true)
	}
}

// @Summary  A user's rating of an event
// @Param    id      path  string  true  "Event ID (uuid)"
// @Param    userId  path  string  true  "User ID (uuid)"
// @Success  200 {object} Envelope{data=domain.Rating}
// @Failure  404 {object} Envelope
// @Router   /api/events/{id}/ratings/users/{userId} [get]
func handleUserRating(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}
		userID, valid := parseUUIDParam(c, "userId")
		if !valid {
			return
		}

		r, err := svcs.Ratings.GetForUserAndEvent(c.Request.Context(), userID, eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		ok(c, http.StatusOK, r)
	}
}

// @Summary  Get rating
// @Param    id  path  string  true  "Rating ID (uuid)"
// @Success  200 {object} Envelope{data=domain.Rating}
// @Failure  404 {object} Envelope
// @Router   /api/ratings/{id} [get]
func handleGetRating(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}

		r, err := svcs.Ratings.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		ok(c, http.StatusOK, r)
	}
}

// @Summary  Update own rating
// @Param    id  path  string  true  "Rating ID (uuid)"
// @Param    req body  UpdateRatingRequest true "fields to change"
// @Success  200 {object} Envelope{data=domain.Rating}
// @Failure  403 {object} Envelope
// @Router   /api/ratings/{id} [patch]
func handleUpdateRating(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}
		var req UpdateRatingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		r, err := svcs.Ratings.Update(c.Request.Context(), id, currentUser(c).ID, req.Stars, req.Review)
		if err != nil {
			respondErr(c, err)
			return
		}
		ok(c, http.StatusOK, r)
	}
}

// @Summary  Delete own rating
// @Param    id  path  string  true  "Rating ID (uuid)"
// @Success  200 {object} Envelope
// @Failure  403 {object} Envelope
// @Router   /api/ratings/{id} [delete]
func handleDeleteRating(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}
		if err := svcs.Ratings.Delete(c.Request.Context(), id, currentUser(c).ID); err != nil {
			respondErr(c, err)
			return
		}
		okMessage(c, "rating deleted")
	}
}
