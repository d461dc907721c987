package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "UTESHOP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	Service  ServiceConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Cron     CronConfig
	Features FeaturesConfig
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
	Env          string   `envconfig:"UTESHOP_APP_ENV" required:"true"`
	Port         string   `envconfig:"UTESHOP_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"UTESHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"UTESHOP_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"UTESHOP_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"UTESHOP_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"UTESHOP_DB_DSN"`

	Host     string `envconfig:"UTESHOP_DB_HOST"`
	Port     int    `envconfig:"UTESHOP_DB_PORT" default:"5432"`
	User     string `envconfig:"UTESHOP_DB_USER"`
	Password string `envconfig:"UTESHOP_DB_PASSWORD"`
	Name     string `envconfig:"UTESHOP_DB_NAME"`
	SSLMode  string `envconfig:"UTESHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"UTESHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"UTESHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"UTESHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"UTESHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"UTESHOP_REDIS_URL"`
	Address      string        `envconfig:"UTESHOP_REDIS_ADDR"`
	Password     string        `envconfig:"UTESHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"UTESHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"UTESHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"UTESHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"UTESHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"UTESHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"UTESHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"UTESHOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"UTESHOP_JWT_ISSUER" default:"uteshop"`
	ExpirationMinutes int    `envconfig:"UTESHOP_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"UTESHOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"UTESHOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"UTESHOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"UTESHOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"UTESHOP_ARGON_KEY_LEN" default:"32"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"UTESHOP_CRON_INTERVAL" default:"5m"`
	LockTTL  time.Duration `envconfig:"UTESHOP_CRON_LOCK_TTL" default:"10m"`
}

type FeaturesConfig struct {
	AutoMigrate bool `envconfig:"UTESHOP_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for env, value := range map[string]string{
		"UTESHOP_DB_HOST": db.Host,
		"UTESHOP_DB_USER": db.User,
		"UTESHOP_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either UTESHOP_DB_DSN or %s are required", strings.Join(missing, ", "))
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
