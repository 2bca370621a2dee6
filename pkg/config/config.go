package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Costing      CostingConfig
	Editor       EditorConfig
	FeatureFlags FeatureFlagsConfig
	Cron         CronConfig
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
	Env          string `envconfig:"BIDBOARD_APP_ENV" required:"true"`
	Port         string `envconfig:"BIDBOARD_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BIDBOARD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BIDBOARD_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BIDBOARD_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BIDBOARD_DB_DSN"`
	Driver string `envconfig:"BIDBOARD_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BIDBOARD_DB_HOST"`
	LegacyPort     int    `envconfig:"BIDBOARD_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BIDBOARD_DB_USER"`
	LegacyPassword string `envconfig:"BIDBOARD_DB_PASSWORD"`
	LegacyName     string `envconfig:"BIDBOARD_DB_NAME"`
	LegacySSLMode  string `envconfig:"BIDBOARD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BIDBOARD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BIDBOARD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BIDBOARD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BIDBOARD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BIDBOARD_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BIDBOARD_REDIS_ADDR"`
	Password     string        `envconfig:"BIDBOARD_REDIS_PASSWORD"`
	DB           int           `envconfig:"BIDBOARD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BIDBOARD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BIDBOARD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BIDBOARD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BIDBOARD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BIDBOARD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CostingConfig carries the fixed business rates used by the cost model.
// Rates are strings so they parse into exact decimals, never binary floats.
type CostingConfig struct {
	LaborRate string `envconfig:"BIDBOARD_LABOR_RATE" default:"75.00"`
	TaxRate   string `envconfig:"BIDBOARD_TAX_RATE" default:"0.0825"`
}

// LaborRateDecimal parses the hourly labor rate.
func (c CostingConfig) LaborRateDecimal() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.LaborRate))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid labor rate %q: %w", c.LaborRate, err)
	}
	return rate, nil
}

// TaxRateDecimal parses the parts+hardware tax rate.
func (c CostingConfig) TaxRateDecimal() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.TaxRate))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid tax rate %q: %w", c.TaxRate, err)
	}
	return rate, nil
}

// EditorConfig tunes the edit session engine and its API client.
type EditorConfig struct {
	AutoSaveInterval time.Duration `envconfig:"BIDBOARD_EDITOR_AUTOSAVE_INTERVAL" default:"30s"`
	ClientBaseURL    string        `envconfig:"BIDBOARD_EDITOR_API_BASE_URL"`
	ClientTimeout    time.Duration `envconfig:"BIDBOARD_EDITOR_CLIENT_TIMEOUT" default:"15s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BIDBOARD_AUTO_MIGRATE" default:"false"`
}

type CronConfig struct {
	Interval        time.Duration `envconfig:"BIDBOARD_CRON_INTERVAL" default:"1h"`
	TotalsBatchSize int           `envconfig:"BIDBOARD_CRON_TOTALS_BATCH_SIZE" default:"100"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	if strings.EqualFold(db.Driver, "sqlite") {
		db.DSN = "file:bidboard.db?cache=shared"
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
