package config

const (
	EnvPrefix = "THERMOLAQ"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv       = "THERMOLAQ_APP_ENV"
	EnvPort         = "THERMOLAQ_APP_PORT"
	EnvDBDSN        = "THERMOLAQ_DB_DSN"
	EnvDBHost       = "THERMOLAQ_DB_HOST"
	EnvDBUser       = "THERMOLAQ_DB_USER"
	EnvDBName       = "THERMOLAQ_DB_NAME"
	EnvDBPassword   = "THERMOLAQ_DB_PASSWORD"
	EnvUseSQLite    = "THERMOLAQ_USE_SQLITE"
	EnvRedisURL     = "THERMOLAQ_REDIS_URL"
	EnvAuthSecret   = "THERMOLAQ_AUTH_JWT_SECRET"
	EnvStripeSecret = "THERMOLAQ_STRIPE_WEBHOOK_SECRET"
	EnvVATRate      = "THERMOLAQ_PRICING_VAT_PCT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
