package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	BrokerNone  = "none"
	BrokerRedis = "redis"
	BrokerKafka = "kafka"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Midtrans MidtransConfig
	SMTP     SMTPConfig
	Broker   BrokerConfig
	App      AppConfig
	Tickets  TicketsConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type StorageConfig struct {
	Driver string
}

type PostgresConfig struct {
	User        string
	Password    string
	Name        string
	Host        string
	Port        int
	SSLMode     string
	MaxConns    int32
	AutoMigrate bool
}

// RedisConfig with an empty Addr disables redis. Caching, rate limiting,
// idempotency and OTP flows are then off.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret    string
	SessionTTL   time.Duration
	QRSecret     string
	QRTTL        time.Duration
	CookieSecure bool
}

type MidtransConfig struct {
	ServerKey  string
	Production bool
}

// SMTPConfig with an empty Host logs outgoing mail instead of sending it.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

type BrokerConfig struct {
	Driver       string
	KafkaBrokers []string
	// Topic is the kafka topic. The redis driver uses a fixed channel.
	Topic string
}

type AppConfig struct {
	// PublicURL is where QR links point to.
	PublicURL string
}

type TicketsConfig struct {
	// PendingTTL is how long a pending ticket may hold inventory. Zero
	// disables the sweep.
	PendingTTL    time.Duration
	SweepInterval time.Duration
	RateLimit     int
	RateWindow    time.Duration
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host:        stringEnv("SERVER_HOST", "localhost"),
		Port:        serverPort,
		CORSOrigins: listEnv("CORS_ORIGINS"),
	}

	storageCfg := StorageConfig{Driver: stringEnv("STORAGE_DRIVER", StoragePostgres)}
	if storageCfg.Driver != StoragePostgres && storageCfg.Driver != StorageMemory {
		return nil, fmt.Errorf("%s: invalid STORAGE_DRIVER %q", op, storageCfg.Driver)
	}

	postgresCfg, err := postgresConfig(storageCfg.Driver == StoragePostgres)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisCfg := RedisConfig{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}

	authCfg, err := authConfig()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	midtransProd, err := boolEnv("MIDTRANS_PRODUCTION", false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	midtransCfg := MidtransConfig{
		ServerKey:  os.Getenv("MIDTRANS_SERVER_KEY"),
		Production: midtransProd,
	}

	smtpPort, err := intEnv("SMTP_PORT", 587)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	smtpCfg := SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     smtpPort,
		User:     os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     stringEnv("SMTP_FROM", os.Getenv("SMTP_USER")),
		FromName: stringEnv("SMTP_FROM_NAME", "SiEvent"),
	}

	brokerCfg := BrokerConfig{
		Driver:       stringEnv("BROKER_DRIVER", BrokerNone),
		KafkaBrokers: listEnv("KAFKA_BROKERS"),
		Topic:        stringEnv("BROKER_TOPIC", "sievent.tickets"),
	}

	switch brokerCfg.Driver {
	case BrokerNone:
	case BrokerRedis:
		if redisCfg.Addr == "" {
			return nil, fmt.Errorf("%s: BROKER_DRIVER=redis requires REDIS_ADDR", op)
		}
	case BrokerKafka:
		if len(brokerCfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("%s: BROKER_DRIVER=kafka requires KAFKA_BROKERS", op)
		}
	default:
		return nil, fmt.Errorf("%s: invalid BROKER_DRIVER %q", op, brokerCfg.Driver)
	}

	ticketsCfg, err := ticketsConfig()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Config{
		Server:   serverCfg,
		Storage:  storageCfg,
		Postgres: postgresCfg,
		Redis:    redisCfg,
		Auth:     authCfg,
		Midtrans: midtransCfg,
		SMTP:     smtpCfg,
		Broker:   brokerCfg,
		App: AppConfig{
			PublicURL: stringEnv("APP_URL", fmt.Sprintf("http://%s:%d", serverCfg.Host, serverCfg.Port)),
		},
		Tickets: ticketsCfg,
	}, nil
}

func postgresConfig(required bool) (PostgresConfig, error) {
	port, err := intEnv("POSTGRES_PORT", 5432)
	if err != nil {
		return PostgresConfig{}, err
	}

	maxConns, err := intEnv("POSTGRES_MAX_CONNS", 0)
	if err != nil {
		return PostgresConfig{}, err
	}

	migrate, err := boolEnv("POSTGRES_AUTO_MIGRATE", true)
	if err != nil {
		return PostgresConfig{}, err
	}

	cfg := PostgresConfig{
		User:        os.Getenv("POSTGRES_USER"),
		Password:    os.Getenv("POSTGRES_PASSWORD"),
		Name:        os.Getenv("POSTGRES_DB"),
		Host:        stringEnv("POSTGRES_HOST", "localhost"),
		Port:        port,
		SSLMode:     stringEnv("POSTGRES_SSLMODE", "disable"),
		MaxConns:    int32(maxConns),
		AutoMigrate: migrate,
	}

	if !required {
		return cfg, nil
	}

	if cfg.User == "" {
		return cfg, fmt.Errorf("missing POSTGRES_USER")
	}
	if cfg.Password == "" {
		return cfg, fmt.Errorf("missing POSTGRES_PASSWORD")
	}
	if cfg.Name == "" {
		return cfg, fmt.Errorf("missing POSTGRES_DB")
	}

	return cfg, nil
}

func authConfig() (AuthConfig, error) {
	sessionTTL, err := durationEnv("SESSION_TTL", 7*24*time.Hour)
	if err != nil {
		return AuthConfig{}, err
	}

	qrTTL, err := durationEnv("QR_TTL", 24*time.Hour)
	if err != nil {
		return AuthConfig{}, err
	}

	secure, err := boolEnv("COOKIE_SECURE", false)
	if err != nil {
		return AuthConfig{}, err
	}

	cfg := AuthConfig{
		JWTSecret:    os.Getenv("JWT_SECRET"),
		SessionTTL:   sessionTTL,
		QRSecret:     os.Getenv("QR_SECRET"),
		QRTTL:        qrTTL,
		CookieSecure: secure,
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("missing JWT_SECRET")
	}
	if cfg.QRSecret == "" {
		return cfg, fmt.Errorf("missing QR_SECRET")
	}
	if cfg.QRSecret == cfg.JWTSecret {
		return cfg, fmt.Errorf("QR_SECRET must differ from JWT_SECRET")
	}

	return cfg, nil
}

func ticketsConfig() (TicketsConfig, error) {
	pendingTTL, err := durationEnv("TICKET_PENDING_TTL", 0)
	if err != nil {
		return TicketsConfig{}, err
	}

	interval, err := durationEnv("TICKET_SWEEP_INTERVAL", time.Minute)
	if err != nil {
		return TicketsConfig{}, err
	}

	if pendingTTL < 0 {
		return TicketsConfig{}, fmt.Errorf("TICKET_PENDING_TTL must not be negative")
	}
	if pendingTTL > 0 && interval <= 0 {
		return TicketsConfig{}, fmt.Errorf("TICKET_SWEEP_INTERVAL must be positive when TICKET_PENDING_TTL is set")
	}

	limit, err := intEnv("RESERVE_RATE_LIMIT", 10)
	if err != nil {
		return TicketsConfig{}, err
	}

	window, err := durationEnv("RESERVE_RATE_WINDOW", time.Minute)
	if err != nil {
		return TicketsConfig{}, err
	}

	return TicketsConfig{
		PendingTTL:    pendingTTL,
		SweepInterval: interval,
		RateLimit:     limit,
		RateWindow:    window,
	}, nil
}

// DSN builds the pgx connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
	)
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func boolEnv(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func listEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
