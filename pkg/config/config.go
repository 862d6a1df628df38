package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Stripe       StripeConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if port := strings.TrimSpace(os.Getenv(EnvPlatformPort)); port != "" {
		cfg.App.Port = port
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MEDIMALL_APP_ENV" default:"dev"`
	Port         string `envconfig:"MEDIMALL_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"MEDIMALL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEDIMALL_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"MEDIMALL_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(a.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

type DBConfig struct {
	DSN    string `envconfig:"MEDIMALL_DB_DSN"`
	Driver string `envconfig:"MEDIMALL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MEDIMALL_DB_HOST"`
	LegacyPort     int    `envconfig:"MEDIMALL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MEDIMALL_DB_USER"`
	LegacyPassword string `envconfig:"MEDIMALL_DB_PASSWORD"`
	LegacyName     string `envconfig:"MEDIMALL_DB_NAME"`
	LegacySSLMode  string `envconfig:"MEDIMALL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEDIMALL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEDIMALL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEDIMALL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEDIMALL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"MEDIMALL_DB_SLOW_QUERY" default:"200ms"`
}

// RedisConfig is optional; an empty URL and address disables idempotent replay.
type RedisConfig struct {
	URL            string        `envconfig:"MEDIMALL_REDIS_URL"`
	Address        string        `envconfig:"MEDIMALL_REDIS_ADDR"`
	Password       string        `envconfig:"MEDIMALL_REDIS_PASSWORD"`
	DB             int           `envconfig:"MEDIMALL_REDIS_DB" default:"0"`
	PoolSize       int           `envconfig:"MEDIMALL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns   int           `envconfig:"MEDIMALL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout    time.Duration `envconfig:"MEDIMALL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout    time.Duration `envconfig:"MEDIMALL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout   time.Duration `envconfig:"MEDIMALL_REDIS_WRITE_TIMEOUT" default:"5s"`
	IdempotencyTTL time.Duration `envconfig:"MEDIMALL_IDEMPOTENCY_TTL" default:"168h"`
	// IdempotencyLockTTL bounds how long an in-flight reservation blocks
	// retries if the process dies before storing a response.
	IdempotencyLockTTL time.Duration `envconfig:"MEDIMALL_IDEMPOTENCY_LOCK_TTL" default:"60s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret string `envconfig:"MEDIMALL_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"MEDIMALL_JWT_ISSUER" default:"medimall"`
}

type StripeConfig struct {
	APIKey   string `envconfig:"MEDIMALL_STRIPE_API_KEY"`
	Env      string `envconfig:"MEDIMALL_STRIPE_ENV" default:"test"`
	Currency string `envconfig:"MEDIMALL_STRIPE_CURRENCY" default:"usd"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// NormalizedCurrency returns the lowercase ISO currency used for every intent.
func (s StripeConfig) NormalizedCurrency() string {
	cur := strings.TrimSpace(strings.ToLower(s.Currency))
	if cur == "" {
		return "usd"
	}
	return cur
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MEDIMALL_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"MEDIMALL_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"MEDIMALL_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	PaymentsTopic string `envconfig:"MEDIMALL_PUBSUB_PAYMENTS_TOPIC" default:"medimall-payment-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"MEDIMALL_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"MEDIMALL_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"MEDIMALL_OUTBOX_MAX_ATTEMPTS" default:"10"`
	// MetricsAddr exposes the relay's /metrics when set, e.g. ":9102".
	MetricsAddr string `envconfig:"MEDIMALL_OUTBOX_METRICS_ADDR"`
}

func (o OutboxConfig) PollInterval() time.Duration {
	if o.PollIntervalMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(o.PollIntervalMS) * time.Millisecond
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MEDIMALL_AUTO_MIGRATE" default:"false"`
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
