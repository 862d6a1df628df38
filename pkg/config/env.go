package config

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvPlatformPort = "PORT"

	EnvAppEnv      = "MEDIMALL_APP_ENV"
	EnvAppPort     = "MEDIMALL_APP_PORT"
	EnvLogLevel    = "MEDIMALL_LOG_LEVEL"
	EnvCORSOrigins = "MEDIMALL_CORS_ORIGINS"

	EnvDBDSN  = "MEDIMALL_DB_DSN"
	EnvDBHost = "MEDIMALL_DB_HOST"
	EnvDBUser = "MEDIMALL_DB_USER"
	EnvDBName = "MEDIMALL_DB_NAME"

	EnvRedisURL = "MEDIMALL_REDIS_URL"

	EnvJWTSecret = "MEDIMALL_JWT_SECRET"
	EnvJWTIssuer = "MEDIMALL_JWT_ISSUER"

	EnvStripeAPIKey   = "MEDIMALL_STRIPE_API_KEY"
	EnvStripeCurrency = "MEDIMALL_STRIPE_CURRENCY"

	EnvPubSubPaymentsTopic = "MEDIMALL_PUBSUB_PAYMENTS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
