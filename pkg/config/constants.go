package config

// EnvPrefix scopes every environment variable this service reads.
const EnvPrefix = "GIGBOARD"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "GIGBOARD_APP_ENV"
	EnvPort     = "GIGBOARD_APP_PORT"
	EnvDBDSN    = "GIGBOARD_DB_DSN"
	EnvDBHost   = "GIGBOARD_DB_HOST"
	EnvDBUser   = "GIGBOARD_DB_USER"
	EnvDBName   = "GIGBOARD_DB_NAME"
	EnvRedisURL = "GIGBOARD_REDIS_URL"

	EnvJWTSecret = "GIGBOARD_JWT_SECRET"
	EnvJWTIssuer = "GIGBOARD_JWT_ISSUER"

	EnvGCPProjectID           = "GIGBOARD_GCP_PROJECT_ID"
	EnvPubSubNotificationTopic = "GIGBOARD_PUBSUB_NOTIFICATION_TOPIC"

	EnvStripeAPIKey = "GIGBOARD_STRIPE_API_KEY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
