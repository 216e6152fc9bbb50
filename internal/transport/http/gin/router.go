package httpgin

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/sievent/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Options struct {
	// CORSOrigins lists the allowed browser origins. Empty allows all.
	CORSOrigins []string
	// CookieSecure marks the session cookie Secure.
	CookieSecure bool
	// SessionTTL bounds the session cookie lifetime.
	SessionTTL time.Duration
}

func NewRouter(
	svcs *service.Services,
	logger *slog.Logger,
	opts Options,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		LoggingMiddleware(logger),
		RequestIDMiddleware(),
		MetricsMiddleware(),
		CORS(opts.CORSOrigins),
	)
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := RequireAuth(svcs.Users)
	creator := RequireCreator()
	admin := RequireAdmin()
	cookies := cookieJar{secure: opts.CookieSecure, ttl: opts.SessionTTL}

	api := r.Group("/api")

	// auth
	api.POST("/auth/register", handleRegister(svcs, cookies))
	api.POST("/auth/login", handleLogin(svcs, cookies))
	api.POST("/auth/logout", handleLogout(cookies))
	api.GET("/auth/me", authed, handleMe(svcs))
	api.POST("/auth/send-verify-otp", authed, handleSendVerifyOTP(svcs))
	api.POST("/auth/verify-account", authed, handleVerifyAccount(svcs))
	api.POST("/auth/send-reset-otp", handleSendResetOTP(svcs))
	api.POST("/auth/reset-password", handleResetPassword(svcs))

	api.POST("/users/creator-request", authed, handleRequestCreator(svcs))

	adminAPI := api.Group("/admin", authed, admin)
	{
		adminAPI.GET("/creator-requests", handleListCreatorRequests(svcs))
		adminAPI.POST("/creator-requests/:userId/approve", handleApproveCreator(svcs))
		adminAPI.POST("/creator-requests/:userId/reject", handleRejectCreator(svcs))
	}

	// events
	api.GET("/events", handleListEvents(svcs))
	api.GET("/events/mine", authed, creator, handleListMyEvents(svcs))
	api.GET("/events/:id", handleGetEvent(svcs))
	api.POST("/events", authed, creator, handleCreateEvent(svcs))
	api.PATCH("/events/:id", authed, handleUpdateEvent(svcs))
	api.DELETE("/events/:id", authed, handleDeleteEvent(svcs))

	// ratings
	api.POST("/events/:id/ratings", authed, handleRateEvent(svcs))
	api.GET("/events/:id/ratings", handleListRatings(svcs))
	api.GET("/events/:id/ratings/average", handleRatingAverage(svcs))
	api.GET("/events/:id/ratings/users/:userId", handleUserRating(svcs))
	api.GET("/ratings/:id", handleGetRating(svcs))
	api.PATCH("/ratings/:id", authed, handleUpdateRating(svcs))
	api.DELETE("/ratings/:id", authed, handleDeleteRating(svcs))

	// tickets
	tickets := api.Group("/tickets", authed)
	{
		tickets.POST("", handleCreateTicket(svcs))
		tickets.POST("/free", handleCreateFreeTicket(svcs))
		tickets.GET("", handleListTickets(svcs))
		tickets.GET("/:id", handleGetTicket(svcs))
		tickets.POST("/:id/cancel", handleCancelTicket(svcs))
		tickets.DELETE("/:id", handleDeleteTicket(svcs))
	}

	// payments
	api.POST("/payments", authed, handleCreatePayment(svcs))
	api.POST("/payments/notification", handlePaymentNotification(svcs, logger))
	api.GET("/payments/:id", authed, handleGetPayment(svcs))

	// gate and delivery
	api.POST("/qr/verify", authed, creator, handleVerifyTicket(svcs))
	api.GET("/qr/verify", authed, creator, handleVerifyTicketLink(svcs))
	api.POST("/mail/tickets/:id/offline", authed, handleSendOfflineTicket(svcs))
	api.POST("/mail/tickets/:id/online", authed, handleSendOnlineTicket(svcs))

	// reports
	api.POST("/reports/creators/:id", authed, handleReportCreator(svcs))
	api.POST("/reports/users/:id", authed, creator, handleReportUser(svcs))
	reports := api.Group("/reports", authed, admin)
	{
		reports.GET("", handleListReports(svcs))
		reports.GET("/:id", handleGetReport(svcs))
		reports.PATCH("/:id", handleUpdateReport(svcs))
		reports.DELETE("/:id", handleDeleteReport(svcs))
	}

	return r
}

// --- Helpers ---

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func okMessage(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: msg})
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

type cookieJar struct {
	secure bool
	ttl    time.Duration
}

func (j cookieJar) set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(j.ttl.Seconds()), "/", "", j.secure, true)
}

func (j cookieJar) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", j.secure, true)
}
