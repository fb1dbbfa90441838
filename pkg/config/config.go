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
	DB           DBConfig
	Redis        RedisConfig
	Auth         AuthConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Stripe       StripeConfig
	Pricing      PricingDefaults
	Drafts       DraftsConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		if cfg.DB.SQLitePath == "" {
			cfg.DB.SQLitePath = "atelier.db"
		}
	} else if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"THERMOLAQ_APP_ENV" required:"true"`
	Port         string   `envconfig:"THERMOLAQ_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"THERMOLAQ_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"THERMOLAQ_LOG_WARN_STACK" default:"false"`
	LogFormat    string   `envconfig:"THERMOLAQ_LOG_FORMAT" default:"json"`
	CORSOrigins  []string `envconfig:"THERMOLAQ_CORS_ORIGINS" default:"http://localhost:3000"`
	PublicURL    string   `envconfig:"THERMOLAQ_PUBLIC_URL" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"THERMOLAQ_DB_DSN"`
	SQLitePath string `envconfig:"THERMOLAQ_SQLITE_PATH"`

	LegacyHost     string `envconfig:"THERMOLAQ_DB_HOST"`
	LegacyPort     int    `envconfig:"THERMOLAQ_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"THERMOLAQ_DB_USER"`
	LegacyPassword string `envconfig:"THERMOLAQ_DB_PASSWORD"`
	LegacyName     string `envconfig:"THERMOLAQ_DB_NAME"`
	LegacySSLMode  string `envconfig:"THERMOLAQ_DB_SSLMODE" default:"require"`

	MaxOpenConns    int           `envconfig:"THERMOLAQ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"THERMOLAQ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"THERMOLAQ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"THERMOLAQ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"THERMOLAQ_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"THERMOLAQ_REDIS_URL"`
	Address      string        `envconfig:"THERMOLAQ_REDIS_ADDR"`
	Password     string        `envconfig:"THERMOLAQ_REDIS_PASSWORD"`
	DB           int           `envconfig:"THERMOLAQ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"THERMOLAQ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"THERMOLAQ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"THERMOLAQ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"THERMOLAQ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"THERMOLAQ_REDIS_WRITE_TIMEOUT" default:"5s"`
	// KeyPrefix namespaces every key so staging and prod can share an instance.
	KeyPrefix string `envconfig:"THERMOLAQ_REDIS_KEY_PREFIX" default:"atelier"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// AuthConfig describes how access tokens issued by the hosted auth provider are verified.
type AuthConfig struct {
	JWTSecret string `envconfig:"THERMOLAQ_AUTH_JWT_SECRET" required:"true"`
	Issuer    string `envconfig:"THERMOLAQ_AUTH_ISSUER"`
	Audience  string `envconfig:"THERMOLAQ_AUTH_AUDIENCE" default:"authenticated"`
	// DevTokenTTL is only used by the dev token minting helper.
	DevTokenTTL time.Duration `envconfig:"THERMOLAQ_AUTH_DEV_TOKEN_TTL" default:"12h"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64       `envconfig:"THERMOLAQ_RATE_LIMIT_RPS" default:"10"`
	Burst             int           `envconfig:"THERMOLAQ_RATE_LIMIT_BURST" default:"20"`
	EntryTTL          time.Duration `envconfig:"THERMOLAQ_RATE_LIMIT_ENTRY_TTL" default:"10m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"THERMOLAQ_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"THERMOLAQ_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey        string `envconfig:"THERMOLAQ_STRIPE_API_KEY"`
	WebhookSecret string `envconfig:"THERMOLAQ_STRIPE_WEBHOOK_SECRET"`
	Env           string `envconfig:"THERMOLAQ_STRIPE_ENV" default:"test"`
	ProPriceID    string `envconfig:"THERMOLAQ_STRIPE_PRO_PRICE_ID"`
	EnterpriseID  string `envconfig:"THERMOLAQ_STRIPE_ENTERPRISE_PRICE_ID"`
	// EventTTL bounds how long processed event ids are remembered for duplicate suppression.
	EventTTL time.Duration `envconfig:"THERMOLAQ_STRIPE_EVENT_TTL" default:"720h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// WebhookConfigured reports whether inbound webhook verification is possible.
func (s StripeConfig) WebhookConfigured() bool {
	return strings.TrimSpace(s.WebhookSecret) != ""
}

// PricingDefaults seed a workshop's rate card until the tenant saves its own settings.
type PricingDefaults struct {
	LaborRatePerHour     float64 `envconfig:"THERMOLAQ_PRICING_LABOR_RATE" default:"45"`
	LaborHoursPerM2      float64 `envconfig:"THERMOLAQ_PRICING_LABOR_HOURS_PER_M2" default:"0.25"`
	ConsumablesCostPerM2 float64 `envconfig:"THERMOLAQ_PRICING_CONSUMABLES_PER_M2" default:"2.5"`
	PowderMarginPct      float64 `envconfig:"THERMOLAQ_PRICING_POWDER_MARGIN_PCT" default:"30"`
	LaborMarginPct       float64 `envconfig:"THERMOLAQ_PRICING_LABOR_MARGIN_PCT" default:"20"`
	VATRatePct           float64 `envconfig:"THERMOLAQ_PRICING_VAT_PCT" default:"20"`
	QuoteValidityDays    int     `envconfig:"THERMOLAQ_QUOTE_VALIDITY_DAYS" default:"30"`
	PaymentTermsDays     int     `envconfig:"THERMOLAQ_PAYMENT_TERMS_DAYS" default:"30"`
}

type DraftsConfig struct {
	TTL time.Duration `envconfig:"THERMOLAQ_DRAFTS_TTL" default:"168h"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"THERMOLAQ_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"THERMOLAQ_CRON_LOCK_TTL" default:"10m"`

	AlertRetentionDays        int `envconfig:"THERMOLAQ_CRON_ALERT_RETENTION_DAYS" default:"90"`
	WebhookEventRetentionDays int `envconfig:"THERMOLAQ_CRON_WEBHOOK_RETENTION_DAYS" default:"60"`
	ReconcileLimit            int `envconfig:"THERMOLAQ_CRON_RECONCILE_LIMIT" default:"250"`

	// MetricsAddr, when set, exposes /metrics from the worker (e.g. ":9091").
	MetricsAddr string `envconfig:"THERMOLAQ_CRON_METRICS_ADDR"`
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
