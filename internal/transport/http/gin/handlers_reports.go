package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/service"
)

// @Summary  Report a creator
// @Param    id  path  string  true  "Creator user ID (uuid)"
// @Param    req body  ReportRequest true "payload"
// @Success  201 {object} Envelope{data=domain.Report}
// @Failure  400 {object} Envelope
// @Failure  404 {object} Envelope
// @Router   /api/reports/creators/{id} [post]
func handleReportCreator(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}
		var req ReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		r, err := svcs.Reports.ReportCreator(c.Request.Context(), currentActor(c), id, req.Description)
		if err != nil {
			respondErr(c, err)
			return
		}
		ok(c, http.StatusCreated, r)
	}
}

// @Summary  Report an attendee (creators only)
// @Param    id  path  string  true  "User ID (uuid)"
// @Param    req body  ReportRequest true "payload"
// @Success  201 {object} Envelope{data=domain.Report}
// @Failure  403 {object} Envelope
// @Failure  404 {object} Envelope
// @Router   /api/reports/users/{id} [post]
func handleReportUser(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}
		var req ReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		r, err := svcs.Reports.ReportUser(c.Request.Context(), currentActor(c), id, req.Description)
		if err != nil {
			respondErr(c, err)
			return
		}
		ok(c, http.StatusCreated, r)
	}
}

// @Summary  List reports
// @Success  200 {object} Envelope{data=[]domain.Report}
// @Failure  403 {object} Envelope
// @Router   /api/reports [get]
func handleListReports(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Reports.List(c.Request.Context(), currentActor(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		if list == nil {
			list = []domain.Report{}
		}
		ok(c, http.StatusOK, list)
	}
}

// @Summary  Get report
// @Param    id  path  string  true  "Report ID (uuid)"
// @Success  200 {object} Envelope{data=domain.Report}
// @Failure  404 {object} Envelope
// @Router   /api/reports/{id} [get]
func handleGetReport(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}

		r, err := svcs.Reports.Get(c.Request.Context(), currentActor(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		ok(c, http.StatusOK, r)
	}
}

// @Summary  Edit report description
// @Param    id  path  string  true  "Report ID (uuid)"
// @Param    req body  ReportRequest true "payload"
// @Success  200 {object} Envelope{data=domain.Report}
// @Failure  404 {object} Envelope
// @Router   /api/reports/{id} [patch]
func handleUpdateReport(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}
		var req ReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		r, err := svcs.Reports.Update(c.Request.Context(), currentActor(c), id, req.Description)
		if err != nil {
			respondErr(c, err)
			return
		}
		ok(c, http.StatusOK, r)
	}
}

// @Summary  Delete report
// @Param    id  path  string  true  "Report ID (uuid)"
// @Success  200 {object} Envelope
// @Failure  404 {object} Envelope
// @Router   /api/reports/{id} [delete]
func handleDeleteReport(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}
		if err := svcs.Reports.Delete(c.Request.Context(), currentActor(c), id); err != nil {
			respondErr(c, err)
			return
		}
		okMessage(c, "report deleted")
	}
}
