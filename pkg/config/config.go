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
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Outbox       OutboxConfig
	Checkout     CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ORDERHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"ORDERHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ORDERHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ORDERHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ORDERHUB_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ORDERHUB_DB_DSN"`
	Driver string `envconfig:"ORDERHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ORDERHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"ORDERHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ORDERHUB_DB_USER"`
	LegacyPassword string `envconfig:"ORDERHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"ORDERHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"ORDERHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ORDERHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ORDERHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ORDERHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORDERHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ORDERHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ORDERHUB_REDIS_ADDR"`
	Password     string        `envconfig:"ORDERHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORDERHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORDERHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORDERHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORDERHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORDERHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORDERHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ORDERHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ORDERHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ORDERHUB_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ORDERHUB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ORDERHUB_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ORDERHUB_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"ORDERHUB_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ORDERHUB_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	TelemetryTopic        string `envconfig:"ORDERHUB_PUBSUB_TELEMETRY_TOPIC" required:"true"`
	TelemetrySubscription string `envconfig:"ORDERHUB_PUBSUB_TELEMETRY_SUBSCRIPTION" required:"true"`
}

type BigQueryConfig struct {
	Dataset            string `envconfig:"ORDERHUB_BIGQUERY_DATASET" default:"orderhub"`
	DispatchEventTable string `envconfig:"ORDERHUB_BIGQUERY_DISPATCH_TABLE" default:"dispatch_events"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"ORDERHUB_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"ORDERHUB_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"ORDERHUB_OUTBOX_MAX_ATTEMPTS" default:"10"`
	IdempotencyTTL time.Duration `envconfig:"ORDERHUB_OUTBOX_IDEMPOTENCY_TTL" default:"72h"`
}

type CheckoutConfig struct {
	DefaultCutoffHour   int    `envconfig:"ORDERHUB_CHECKOUT_DEFAULT_CUTOFF_HOUR" default:"9"`
	DefaultCutoffMinute int    `envconfig:"ORDERHUB_CHECKOUT_DEFAULT_CUTOFF_MINUTE" default:"0"`
	DefaultLanguage     string `envconfig:"ORDERHUB_CHECKOUT_DEFAULT_LANGUAGE" default:"en"`
	OrderRefPrefix      string `envconfig:"ORDERHUB_CHECKOUT_ORDER_REF_PREFIX" default:"OH"`
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
