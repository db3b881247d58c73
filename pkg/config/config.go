package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable this process reads.
	EnvPrefix = "messmate"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "MESSMATE_APP_ENV"
	EnvDBDSN  = "MESSMATE_DB_DSN"
	EnvDBHost = "MESSMATE_DB_HOST"
	EnvDBUser = "MESSMATE_DB_USER"
	EnvDBName = "MESSMATE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Billing      BillingConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MESSMATE_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"MESSMATE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MESSMATE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MESSMATE_DB_DSN"`
	Driver string `envconfig:"MESSMATE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MESSMATE_DB_HOST"`
	LegacyPort     int    `envconfig:"MESSMATE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MESSMATE_DB_USER"`
	LegacyPassword string `envconfig:"MESSMATE_DB_PASSWORD"`
	LegacyName     string `envconfig:"MESSMATE_DB_NAME"`
	LegacySSLMode  string `envconfig:"MESSMATE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MESSMATE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MESSMATE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MESSMATE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MESSMATE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MESSMATE_REDIS_URL"`
	Address      string        `envconfig:"MESSMATE_REDIS_ADDR"`
	Password     string        `envconfig:"MESSMATE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MESSMATE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MESSMATE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MESSMATE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MESSMATE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MESSMATE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MESSMATE_REDIS_WRITE_TIMEOUT" default:"5s"`
	SettingsTTL  time.Duration `envconfig:"MESSMATE_REDIS_SETTINGS_TTL" default:"10m"`
}

type BillingConfig struct {
	// MaxRangeDays caps bulk toggle/reset/recalculate windows so worst-case
	// latency stays predictable.
	MaxRangeDays int `envconfig:"MESSMATE_BILLING_MAX_RANGE_DAYS" default:"31"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MESSMATE_AUTO_MIGRATE" default:"false"`
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
