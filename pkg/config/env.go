package config

// EnvPrefix is handed to envconfig; every field carries an explicit envconfig tag.
const EnvPrefix = "FUNDEDPAY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "FUNDEDPAY_APP_ENV"
	EnvPort     = "FUNDEDPAY_APP_PORT"
	EnvLogLevel = "FUNDEDPAY_LOG_LEVEL"
	EnvDBDSN    = "FUNDEDPAY_DB_DSN"
	EnvDBHost   = "FUNDEDPAY_DB_HOST"
	EnvDBUser   = "FUNDEDPAY_DB_USER"
	EnvDBName   = "FUNDEDPAY_DB_NAME"
	EnvDBPass   = "FUNDEDPAY_DB_PASSWORD"
	EnvDBPort   = "FUNDEDPAY_DB_PORT"
	EnvRedisURL = "FUNDEDPAY_REDIS_URL"

	EnvAuthJWTSecret = "FUNDEDPAY_AUTH_JWT_SECRET"

	EnvGatewayBaseURL   = "FUNDEDPAY_GATEWAY_BASE_URL"
	EnvGatewayAPIKey    = "FUNDEDPAY_GATEWAY_API_KEY"
	EnvGatewayIPNSecret = "FUNDEDPAY_GATEWAY_IPN_SECRET"

	EnvSessionWindow       = "FUNDEDPAY_SESSION_WINDOW"
	EnvSessionPollInterval = "FUNDEDPAY_SESSION_POLL_INTERVAL"

	EnvPubSubProjectID     = "FUNDEDPAY_GCP_PROJECT_ID"
	EnvPubSubPaymentsTopic = "FUNDEDPAY_PUBSUB_PAYMENTS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
