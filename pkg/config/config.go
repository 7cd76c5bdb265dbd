package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "MARKETSTALL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names, exported so tests can seed them.
const (
	EnvAppEnv            = "MARKETSTALL_APP_ENV"
	EnvPort              = "MARKETSTALL_APP_PORT"
	EnvDBDSN             = "MARKETSTALL_DB_DSN"
	EnvRedisURL          = "MARKETSTALL_REDIS_URL"
	EnvCapabilitySecret  = "MARKETSTALL_CAPABILITY_SECRET"
	EnvCapabilityIssuer  = "MARKETSTALL_CAPABILITY_ISSUER"
	EnvGCPProjectID      = "MARKETSTALL_GCP_PROJECT_ID"
	EnvPubSubLedgerTopic = "MARKETSTALL_PUBSUB_LEDGER_TOPIC"
	EnvPubSubLedgerSub   = "MARKETSTALL_PUBSUB_LEDGER_SUB"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Capability   CapabilityConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if strings.TrimSpace(cfg.DB.DSN) == "" {
		return nil, fmt.Errorf("database DSN is required")
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MARKETSTALL_APP_ENV" required:"true"`
	Port         string `envconfig:"MARKETSTALL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MARKETSTALL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MARKETSTALL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MARKETSTALL_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MARKETSTALL_DB_DSN"`
	Driver string `envconfig:"MARKETSTALL_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"MARKETSTALL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MARKETSTALL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MARKETSTALL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MARKETSTALL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MARKETSTALL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MARKETSTALL_REDIS_ADDR"`
	Password     string        `envconfig:"MARKETSTALL_REDIS_PASSWORD"`
	DB           int           `envconfig:"MARKETSTALL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MARKETSTALL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MARKETSTALL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MARKETSTALL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MARKETSTALL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MARKETSTALL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CapabilityConfig signs and verifies store-owner capability tokens.
// Tokens carry no expiry: possession is the authorization model, and a
// holder transfers ownership by handing the token over.
type CapabilityConfig struct {
	Secret string `envconfig:"MARKETSTALL_CAPABILITY_SECRET" required:"true"`
	Issuer string `envconfig:"MARKETSTALL_CAPABILITY_ISSUER" required:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MARKETSTALL_FEATURE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"MARKETSTALL_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	LedgerTopic        string `envconfig:"MARKETSTALL_PUBSUB_LEDGER_TOPIC"`
	LedgerSubscription string `envconfig:"MARKETSTALL_PUBSUB_LEDGER_SUB"`
}

type OutboxConfig struct {
	BatchSize    int           `envconfig:"MARKETSTALL_OUTBOX_BATCH_SIZE" default:"100"`
	PollInterval time.Duration `envconfig:"MARKETSTALL_OUTBOX_POLL_INTERVAL" default:"2s"`
	MaxAttempts  int           `envconfig:"MARKETSTALL_OUTBOX_MAX_ATTEMPTS" default:"10"`
}
