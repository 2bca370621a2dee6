package config

// EnvPrefix namespaces every BidBoard environment variable.
const EnvPrefix = "BIDBOARD"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "BIDBOARD_APP_ENV"
	EnvPort     = "BIDBOARD_APP_PORT"
	EnvRedisURL = "BIDBOARD_REDIS_URL"

	EnvDBDSN  = "BIDBOARD_DB_DSN"
	EnvDBHost = "BIDBOARD_DB_HOST"
	EnvDBUser = "BIDBOARD_DB_USER"
	EnvDBName = "BIDBOARD_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
