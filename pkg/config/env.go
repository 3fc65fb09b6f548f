package config

const EnvPrefix = "ECOFINDS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	StorageDriverMemory = "memory"
	StorageDriverFile   = "file"
	StorageDriverRedis  = "redis"
	StorageDriverSQL    = "sql"
)

const (
	EnvAppEnv   = "ECOFINDS_APP_ENV"
	EnvPort     = "ECOFINDS_APP_PORT"
	EnvLogLevel = "ECOFINDS_LOG_LEVEL"

	EnvDBDSN    = "ECOFINDS_DB_DSN"
	EnvDBDriver = "ECOFINDS_DB_DRIVER"
	EnvDBHost   = "ECOFINDS_DB_HOST"
	EnvDBUser   = "ECOFINDS_DB_USER"
	EnvDBName   = "ECOFINDS_DB_NAME"

	EnvRedisURL  = "ECOFINDS_REDIS_URL"
	EnvRedisAddr = "ECOFINDS_REDIS_ADDR"

	EnvStorageDriver  = "ECOFINDS_STORAGE_DRIVER"
	EnvStorageFileDir = "ECOFINDS_STORAGE_FILE_DIR"

	EnvCartMaxSessions = "ECOFINDS_CART_MAX_SESSIONS"
	EnvCartIdleTimeout = "ECOFINDS_CART_IDLE_TIMEOUT"

	EnvShippingFee           = "ECOFINDS_SHIPPING_FEE"
	EnvShippingFreeThreshold = "ECOFINDS_SHIPPING_FREE_THRESHOLD"
)

var dbHostEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
