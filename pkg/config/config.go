package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix  = ""
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Cart     CartConfig
	Checkout CheckoutConfig
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
	Env          string `envconfig:"CHRONOVA_APP_ENV" required:"true"`
	Port         string `envconfig:"CHRONOVA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CHRONOVA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CHRONOVA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CHRONOVA_DB_DSN"`
	Driver string `envconfig:"CHRONOVA_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"CHRONOVA_DB_HOST"`
	Port     int    `envconfig:"CHRONOVA_DB_PORT" default:"5432"`
	User     string `envconfig:"CHRONOVA_DB_USER"`
	Password string `envconfig:"CHRONOVA_DB_PASSWORD"`
	Name     string `envconfig:"CHRONOVA_DB_NAME"`
	SSLMode  string `envconfig:"CHRONOVA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CHRONOVA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CHRONOVA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CHRONOVA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CHRONOVA_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"CHRONOVA_DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CHRONOVA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CHRONOVA_REDIS_ADDR"`
	Password     string        `envconfig:"CHRONOVA_REDIS_PASSWORD"`
	DB           int           `envconfig:"CHRONOVA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CHRONOVA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CHRONOVA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CHRONOVA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CHRONOVA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CHRONOVA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"CHRONOVA_JWT_SECRET"`
	Issuer string `envconfig:"CHRONOVA_JWT_ISSUER" default:"chronova"`
}

type CartConfig struct {
	SnapshotTTL time.Duration `envconfig:"CHRONOVA_CART_SNAPSHOT_TTL" default:"720h"`
}

type CheckoutConfig struct {
	LockTTL time.Duration `envconfig:"CHRONOVA_CHECKOUT_LOCK_TTL" default:"30s"`
	Timeout time.Duration `envconfig:"CHRONOVA_CHECKOUT_TIMEOUT" default:"20s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for _, part := range []struct {
		name  string
		value string
	}{
		{"CHRONOVA_DB_HOST", db.Host},
		{"CHRONOVA_DB_USER", db.User},
		{"CHRONOVA_DB_NAME", db.Name},
	} {
		if part.value == "" {
			missing = append(missing, part.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either CHRONOVA_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
