package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Auth         AuthConfig
	Gateway      GatewayConfig
	Session      SessionConfig
	RateLimit    RateLimitConfig
	PubSub       PubSubConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Session.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Gateway.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Auth.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"FUNDEDPAY_APP_ENV" required:"true"`
	Port         string   `envconfig:"FUNDEDPAY_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"FUNDEDPAY_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"FUNDEDPAY_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"FUNDEDPAY_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FUNDEDPAY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FUNDEDPAY_DB_DSN"`
	Driver string `envconfig:"FUNDEDPAY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FUNDEDPAY_DB_HOST"`
	LegacyPort     int    `envconfig:"FUNDEDPAY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FUNDEDPAY_DB_USER"`
	LegacyPassword string `envconfig:"FUNDEDPAY_DB_PASSWORD"`
	LegacyName     string `envconfig:"FUNDEDPAY_DB_NAME"`
	LegacySSLMode  string `envconfig:"FUNDEDPAY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FUNDEDPAY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FUNDEDPAY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FUNDEDPAY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FUNDEDPAY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FUNDEDPAY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FUNDEDPAY_REDIS_ADDR"`
	Password     string        `envconfig:"FUNDEDPAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"FUNDEDPAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FUNDEDPAY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FUNDEDPAY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FUNDEDPAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FUNDEDPAY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FUNDEDPAY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// AuthConfig describes the tokens issued by the hosted auth provider.
type AuthConfig struct {
	JWTSecret string `envconfig:"FUNDEDPAY_AUTH_JWT_SECRET" required:"true"`
	Issuer    string `envconfig:"FUNDEDPAY_AUTH_ISSUER"`
	Audience  string `envconfig:"FUNDEDPAY_AUTH_AUDIENCE" default:"authenticated"`
}

func (a AuthConfig) validate() error {
	if strings.TrimSpace(a.JWTSecret) == "" {
		return fmt.Errorf("%s must not be blank", EnvAuthJWTSecret)
	}
	return nil
}

type GatewayConfig struct {
	BaseURL    string        `envconfig:"FUNDEDPAY_GATEWAY_BASE_URL" required:"true"`
	APIKey     string        `envconfig:"FUNDEDPAY_GATEWAY_API_KEY" required:"true"`
	IPNSecret  string        `envconfig:"FUNDEDPAY_GATEWAY_IPN_SECRET" required:"true"`
	Timeout    time.Duration `envconfig:"FUNDEDPAY_GATEWAY_TIMEOUT" default:"8s"`
	WebhookTTL time.Duration `envconfig:"FUNDEDPAY_GATEWAY_WEBHOOK_IDEMPOTENCY_TTL" default:"72h"`
}

// Blank secrets are rejected since envconfig only checks that they are set.
func (g GatewayConfig) validate() error {
	if strings.TrimSpace(g.APIKey) == "" {
		return fmt.Errorf("%s must not be blank", EnvGatewayAPIKey)
	}
	if strings.TrimSpace(g.IPNSecret) == "" {
		return fmt.Errorf("%s must not be blank", EnvGatewayIPNSecret)
	}
	return nil
}

// SessionConfig drives the payment session timers.
type SessionConfig struct {
	Window            time.Duration `envconfig:"FUNDEDPAY_SESSION_WINDOW" default:"30m"`
	CountdownInterval time.Duration `envconfig:"FUNDEDPAY_SESSION_COUNTDOWN_INTERVAL" default:"1s"`
	PollInterval      time.Duration `envconfig:"FUNDEDPAY_SESSION_POLL_INTERVAL" default:"10s"`
	LoadAttempts      int           `envconfig:"FUNDEDPAY_SESSION_LOAD_ATTEMPTS" default:"3"`
	LoadBackoff       time.Duration `envconfig:"FUNDEDPAY_SESSION_LOAD_BACKOFF" default:"2s"`
	IdleTTL           time.Duration `envconfig:"FUNDEDPAY_SESSION_IDLE_TTL" default:"45m"`
	SweepInterval     time.Duration `envconfig:"FUNDEDPAY_SESSION_SWEEP_INTERVAL" default:"1m"`
}

// WindowSeconds returns the countdown length in whole seconds.
func (s SessionConfig) WindowSeconds() int {
	return int(s.Window / time.Second)
}

func (s SessionConfig) validate() error {
	if s.Window < time.Second {
		return fmt.Errorf("%s must be at least 1s", EnvSessionWindow)
	}
	if s.Window >= time.Hour {
		return fmt.Errorf("%s must be under 1h", EnvSessionWindow)
	}
	if s.CountdownInterval <= 0 || s.PollInterval <= 0 {
		return fmt.Errorf("session timer intervals must be positive")
	}
	return nil
}

type RateLimitConfig struct {
	SessionWindow time.Duration `envconfig:"FUNDEDPAY_RATE_LIMIT_SESSION_WINDOW" default:"1m"`
	SessionLimit  int           `envconfig:"FUNDEDPAY_RATE_LIMIT_SESSION_LIMIT" default:"20"`
}

type PubSubConfig struct {
	ProjectID     string `envconfig:"FUNDEDPAY_GCP_PROJECT_ID"`
	PaymentsTopic string `envconfig:"FUNDEDPAY_PUBSUB_PAYMENTS_TOPIC"`
}

// Enabled reports whether payment events should be published.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.ProjectID) != "" && strings.TrimSpace(p.PaymentsTopic) != ""
}

type CronConfig struct {
	Interval    time.Duration `envconfig:"FUNDEDPAY_CRON_INTERVAL" default:"5m"`
	ExpiryGrace time.Duration `envconfig:"FUNDEDPAY_CRON_EXPIRY_GRACE" default:"15m"`
	BatchSize   int           `envconfig:"FUNDEDPAY_CRON_BATCH_SIZE" default:"200"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FUNDEDPAY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
