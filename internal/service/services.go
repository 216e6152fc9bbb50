package service

import (
	"log/slog"

	"github.com/kirinyoku/sievent/internal/auth"
	"github.com/kirinyoku/sievent/internal/broker"
	"github.com/kirinyoku/sievent/internal/gateway"
	"github.com/kirinyoku/sievent/internal/mail"
	"github.com/kirinyoku/sievent/internal/repository"
	redisrepo "github.com/kirinyoku/sievent/internal/repository/redis"
	"github.com/kirinyoku/sievent/internal/service/events"
	"github.com/kirinyoku/sievent/internal/service/payments"
	"github.com/kirinyoku/sievent/internal/service/ratings"
	"github.com/kirinyoku/sievent/internal/service/redemption"
	"github.com/kirinyoku/sievent/internal/service/reports"
	"github.com/kirinyoku/sievent/internal/service/tickets"
	"github.com/kirinyoku/sievent/internal/service/users"
)

type Services struct {
	Users      *users.Service
	Events     *events.Service
	Tickets    *tickets.Service
	Payments   *payments.Service
	Redemption *redemption.Service
	Ratings    *ratings.Service
	Reports    *reports.Service
}

type Config struct {
	Users      users.Config
	Events     events.Config
	Tickets    tickets.Config
	Redemption redemption.Config
}

// Deps are the collaborators shared by the services. Cache, Limiter, Idem
// and OTP may be nil when redis is not configured.
type Deps struct {
	Store         repository.Store
	Cache         *redisrepo.Cache
	Limiter       *redisrepo.SlidingWindowLimiter
	Idem          *redisrepo.IdempotencyStore
	OTP           users.OTPStore
	Publisher     broker.Publisher
	Gateway       gateway.Gateway
	Mailer        mail.Mailer
	SessionSigner *auth.Signer
	TicketSigner  *auth.Signer
	Logger        *slog.Logger
}

func NewServices(d Deps, cfg Config) *Services {
	return &Services{
		Users:      users.New(d.Store, d.SessionSigner, d.OTP, d.Mailer, d.Logger, cfg.Users),
		Events:     events.New(d.Store, d.Cache, d.Logger, cfg.Events),
		Tickets:    tickets.New(d.Store, d.Cache, d.Limiter, d.Idem, d.Publisher, d.Logger, cfg.Tickets),
		Payments:   payments.New(d.Store, d.Gateway, d.Cache, d.Publisher, d.Logger),
		Redemption: redemption.New(d.Store, d.TicketSigner, d.Mailer, d.Publisher, d.Logger, cfg.Redemption),
		Ratings:    ratings.New(d.Store, d.Cache, d.Logger),
		Reports:    reports.New(d.Store),
	}
}
