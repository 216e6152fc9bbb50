package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/kirinyoku/sievent/internal/auth"
	"github.com/kirinyoku/sievent/internal/broker"
	"github.com/kirinyoku/sievent/internal/config"
	"github.com/kirinyoku/sievent/internal/gateway/midtrans"
	"github.com/kirinyoku/sievent/internal/mail"
	"github.com/kirinyoku/sievent/internal/postgres"
	"github.com/kirinyoku/sievent/internal/redis"
	"github.com/kirinyoku/sievent/internal/repository"
	"github.com/kirinyoku/sievent/internal/repository/memory"
	postgresrepo "github.com/kirinyoku/sievent/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/sievent/internal/repository/redis"
	"github.com/kirinyoku/sievent/internal/service"
	"github.com/kirinyoku/sievent/internal/service/events"
	"github.com/kirinyoku/sievent/internal/service/redemption"
	"github.com/kirinyoku/sievent/internal/service/tickets"
	"github.com/kirinyoku/sievent/internal/service/users"
	httpgin "github.com/kirinyoku/sievent/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	services   *service.Services
	subscriber broker.Subscriber
	httpServer *http.Server
	closers    []func() error
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	ctx := context.Background()

	store, err := a.openStore(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	deps := service.Deps{
		Store:         store,
		Publisher:     broker.Nop{},
		Gateway:       midtrans.New(midtrans.Config{ServerKey: cfg.Midtrans.ServerKey, Production: cfg.Midtrans.Production}),
		SessionSigner: auth.NewSigner(cfg.Auth.JWTSecret),
		TicketSigner:  auth.NewSigner(cfg.Auth.QRSecret),
		Logger:        logger,
	}
	a.subscriber = broker.Nop{}

	if cfg.Midtrans.ServerKey == "" {
		logger.Warn("MIDTRANS_SERVER_KEY is empty, payments will fail")
	}

	rdb, err := redis.New(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	switch {
	case errors.Is(err, redis.ErrDisabled):
		logger.Warn("redis disabled: no cache, rate limiting, idempotency or OTP")
	case err != nil:
		a.close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	default:
		a.closers = append(a.closers, rdb.Close)

		deps.OTP = redisrepo.NewOTPStore(rdb)
		deps.Cache = redisrepo.New(rdb)
		deps.Limiter = redisrepo.NewSlidingWindowLimiter(rdb, "reserve", cfg.Tickets.RateLimit, cfg.Tickets.RateWindow)
		deps.Idem = redisrepo.NewIdempotencyStore(rdb, 24*time.Hour)
	}

	switch cfg.Broker.Driver {
	case config.BrokerRedis:
		bus := broker.NewRedisBus(rdb, redisrepo.ChannelTickets())
		deps.Publisher = bus
		a.subscriber = bus
	case config.BrokerKafka:
		kcfg := broker.NewKafkaConfig()

		producer, err := sarama.NewSyncProducer(cfg.Broker.KafkaBrokers, kcfg)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize kafka producer: %w", err)
		}
		pub := broker.NewKafkaPublisher(producer, cfg.Broker.Topic)
		a.closers = append(a.closers, pub.Close)

		consumer, err := sarama.NewConsumer(cfg.Broker.KafkaBrokers, kcfg)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize kafka consumer: %w", err)
		}
		sub := broker.NewKafkaSubscriber(consumer, cfg.Broker.Topic, logger)
		a.closers = append(a.closers, sub.Close)

		deps.Publisher = pub
		a.subscriber = sub
	}

	if cfg.SMTP.Host != "" {
		deps.Mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
		})
	} else {
		logger.Warn("SMTP_HOST is empty, outgoing mail is only logged")
		deps.Mailer = mail.NewLogMailer(logger)
	}

	a.services = service.NewServices(deps, service.Config{
		Users:      users.Config{SessionTTL: cfg.Auth.SessionTTL},
		Events:     events.Config{},
		Tickets:    tickets.Config{},
		Redemption: redemption.Config{AppURL: cfg.App.PublicURL, TokenTTL: cfg.Auth.QRTTL},
	})

	router := httpgin.NewRouter(a.services, logger, httpgin.Options{
		CORSOrigins:  cfg.Server.CORSOrigins,
		CookieSecure: cfg.Auth.CookieSecure,
		SessionTTL:   cfg.Auth.SessionTTL,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

func (a *App) openStore(ctx context.Context) (repository.Store, error) {
	if a.cfg.Storage.Driver == config.StorageMemory {
		a.logger.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), nil
	}

	pool, err := postgres.New(ctx, postgres.Config{
		DSN:      a.cfg.Postgres.DSN(),
		MaxConns: a.cfg.Postgres.MaxConns,
		Migrate:  a.cfg.Postgres.AutoMigrate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}
	a.closers = append(a.closers, func() error {
		pool.Close()
		return nil
	})

	return postgresrepo.NewStore(pool), nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Lifecycle messages
	g.Go(func() error {
		if err := a.subscriber.Subscribe(gCtx, a.services.Redemption.HandleMessage); err != nil {
			return fmt.Errorf("ticket subscriber stopped: %w", err)
		}
		return nil
	})

	if a.cfg.Tickets.PendingTTL > 0 {
		g.Go(func() error {
			a.sweep(gCtx)
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

// sweep cancels pending tickets older than the configured TTL until ctx is
// done.
func (a *App) sweep(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Tickets.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.services.Tickets.ExpireStale(ctx, time.Now().Add(-a.cfg.Tickets.PendingTTL))
			if err != nil {
				a.logger.Error("pending ticket sweep failed", slog.String("err", err.Error()))
				continue
			}
			if n > 0 {
				a.logger.Info("expired pending tickets", slog.Int("count", n))
			}
		}
	}
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", slog.String("err", err.Error()))
		}
	}
	a.closers = nil
}
