package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable consumed by the service.
	EnvPrefix = "LOJASOCIAL"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "LOJASOCIAL_DB_DSN"
	EnvDBHost = "LOJASOCIAL_DB_HOST"
	EnvDBUser = "LOJASOCIAL_DB_USER"
	EnvDBName = "LOJASOCIAL_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
	Baskets      BasketsConfig
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
	Env          string `envconfig:"LOJASOCIAL_APP_ENV" required:"true"`
	Port         string `envconfig:"LOJASOCIAL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LOJASOCIAL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOJASOCIAL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"LOJASOCIAL_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"LOJASOCIAL_DB_DSN"`
	Driver string `envconfig:"LOJASOCIAL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LOJASOCIAL_DB_HOST"`
	LegacyPort     int    `envconfig:"LOJASOCIAL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LOJASOCIAL_DB_USER"`
	LegacyPassword string `envconfig:"LOJASOCIAL_DB_PASSWORD"`
	LegacyName     string `envconfig:"LOJASOCIAL_DB_NAME"`
	LegacySSLMode  string `envconfig:"LOJASOCIAL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LOJASOCIAL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LOJASOCIAL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LOJASOCIAL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LOJASOCIAL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LOJASOCIAL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LOJASOCIAL_REDIS_ADDR"`
	Password     string        `envconfig:"LOJASOCIAL_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOJASOCIAL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOJASOCIAL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOJASOCIAL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOJASOCIAL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOJASOCIAL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOJASOCIAL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LOJASOCIAL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LOJASOCIAL_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"LOJASOCIAL_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON string `envconfig:"LOJASOCIAL_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	BasketTopic         string `envconfig:"LOJASOCIAL_PUBSUB_BASKET_TOPIC" default:"ls-basket-events"`
	BasketSubscription  string `envconfig:"LOJASOCIAL_PUBSUB_BASKET_SUBSCRIPTION"`
	ProductTopic        string `envconfig:"LOJASOCIAL_PUBSUB_PRODUCT_TOPIC" default:"ls-product-events"`
	ProductSubscription string `envconfig:"LOJASOCIAL_PUBSUB_PRODUCT_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"LOJASOCIAL_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollInterval   time.Duration `envconfig:"LOJASOCIAL_OUTBOX_PUBLISH_POLL_INTERVAL" default:"500ms"`
	MaxAttempts    int           `envconfig:"LOJASOCIAL_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int           `envconfig:"LOJASOCIAL_OUTBOX_RETENTION_DAYS" default:"30"`
	IdempotencyTTL time.Duration `envconfig:"LOJASOCIAL_OUTBOX_IDEMPOTENCY_TTL" default:"720h"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"LOJASOCIAL_CRON_INTERVAL" default:"1h"`
}

type BasketsConfig struct {
	// EditWindow bounds how far in the future a reschedule date may land.
	MaxScheduleHorizon time.Duration `envconfig:"LOJASOCIAL_BASKET_MAX_SCHEDULE_HORIZON" default:"2160h"`
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
