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
	DB           DBConfig
	Redis        RedisConfig
	Storage      StorageConfig
	Cart         CartConfig
	Shipping     ShippingConfig
	FeatureFlags FeatureFlagsConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ECOFINDS_APP_ENV" required:"true"`
	Port         string `envconfig:"ECOFINDS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ECOFINDS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ECOFINDS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ECOFINDS_DB_DSN"`
	Driver string `envconfig:"ECOFINDS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"ECOFINDS_DB_HOST"`
	Port     int    `envconfig:"ECOFINDS_DB_PORT" default:"5432"`
	User     string `envconfig:"ECOFINDS_DB_USER"`
	Password string `envconfig:"ECOFINDS_DB_PASSWORD"`
	Name     string `envconfig:"ECOFINDS_DB_NAME"`
	SSLMode  string `envconfig:"ECOFINDS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ECOFINDS_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"ECOFINDS_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"ECOFINDS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ECOFINDS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"ECOFINDS_REDIS_URL"`
	Address      string        `envconfig:"ECOFINDS_REDIS_ADDR"`
	Password     string        `envconfig:"ECOFINDS_REDIS_PASSWORD"`
	DB           int           `envconfig:"ECOFINDS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ECOFINDS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ECOFINDS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ECOFINDS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ECOFINDS_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"ECOFINDS_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// StorageConfig selects the backend for the session key-value slots.
type StorageConfig struct {
	Driver   string        `envconfig:"ECOFINDS_STORAGE_DRIVER" default:"memory"`
	FileDir  string        `envconfig:"ECOFINDS_STORAGE_FILE_DIR" default:"./data/slots"`
	RedisTTL time.Duration `envconfig:"ECOFINDS_STORAGE_REDIS_TTL" default:"720h"`
}

// NormalizedDriver returns the lower-cased storage driver name.
func (s StorageConfig) NormalizedDriver() string {
	return strings.ToLower(strings.TrimSpace(s.Driver))
}

// CartConfig bounds the in-memory cart registry.
type CartConfig struct {
	MaxSessions int           `envconfig:"ECOFINDS_CART_MAX_SESSIONS" default:"10000"`
	IdleTimeout time.Duration `envconfig:"ECOFINDS_CART_IDLE_TIMEOUT" default:"30m"`
}

type ShippingConfig struct {
	Fee           decimal.Decimal `envconfig:"ECOFINDS_SHIPPING_FEE" default:"5.99"`
	FreeThreshold decimal.Decimal `envconfig:"ECOFINDS_SHIPPING_FREE_THRESHOLD" default:"50"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ECOFINDS_AUTO_MIGRATE" default:"false"`
	SeedCoupons bool `envconfig:"ECOFINDS_SEED_COUPONS" default:"true"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ECOFINDS_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func (c *Config) validate() error {
	if c.Shipping.Fee.IsNegative() || c.Shipping.FreeThreshold.IsNegative() {
		return fmt.Errorf("%s and %s must be non-negative", EnvShippingFee, EnvShippingFreeThreshold)
	}

	if c.Cart.MaxSessions <= 0 || c.Cart.IdleTimeout <= 0 {
		return fmt.Errorf("%s and %s must be positive", EnvCartMaxSessions, EnvCartIdleTimeout)
	}

	switch c.Storage.NormalizedDriver() {
	case StorageDriverMemory:
	case StorageDriverFile:
		if strings.TrimSpace(c.Storage.FileDir) == "" {
			return fmt.Errorf("%s is required for the file storage driver", EnvStorageFileDir)
		}
	case StorageDriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("either %s or %s is required for the redis storage driver", EnvRedisURL, EnvRedisAddr)
		}
	case StorageDriverSQL:
		if err := c.DB.ensureDSN(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvStorageDriver, c.Storage.Driver)
	}
	return nil
}

// RequireDB resolves the database DSN for commands that always need a database,
// whatever storage driver is selected.
func (c *Config) RequireDB() error {
	return c.DB.ensureDSN()
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbHostEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
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
