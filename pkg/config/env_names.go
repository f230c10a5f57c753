package config

// EnvPrefix is the envconfig prefix shared by every variable.
const EnvPrefix = "SHOPORA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "SHOPORA_APP_ENV"
	EnvPort     = "SHOPORA_APP_PORT"
	EnvLogLevel = "SHOPORA_LOG_LEVEL"

	EnvDBDSN  = "SHOPORA_DB_DSN"
	EnvDBHost = "SHOPORA_DB_HOST"
	EnvDBPort = "SHOPORA_DB_PORT"
	EnvDBUser = "SHOPORA_DB_USER"
	EnvDBPass = "SHOPORA_DB_PASSWORD"
	EnvDBName = "SHOPORA_DB_NAME"

	EnvRedisURL = "SHOPORA_REDIS_URL"

	EnvGCPProjectID = "SHOPORA_GCP_PROJECT_ID"

	EnvPubSubDomainTopic = "SHOPORA_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub   = "SHOPORA_PUBSUB_DOMAIN_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
