package config

const (
	EnvPrefix = "orderhub"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv   = "ORDERHUB_APP_ENV"
	EnvPort     = "ORDERHUB_APP_PORT"
	EnvDBDSN    = "ORDERHUB_DB_DSN"
	EnvDBHost   = "ORDERHUB_DB_HOST"
	EnvDBUser   = "ORDERHUB_DB_USER"
	EnvDBName   = "ORDERHUB_DB_NAME"
	EnvRedisURL = "ORDERHUB_REDIS_URL"

	EnvJWTSecret  = "ORDERHUB_JWT_SECRET"
	EnvJWTIssuer  = "ORDERHUB_JWT_ISSUER"
	EnvJWTExpMins = "ORDERHUB_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID          = "ORDERHUB_GCP_PROJECT_ID"
	EnvPubSubTelemetryTopic  = "ORDERHUB_PUBSUB_TELEMETRY_TOPIC"
	EnvPubSubTelemetrySub    = "ORDERHUB_PUBSUB_TELEMETRY_SUBSCRIPTION"
	EnvBigQueryDataset       = "ORDERHUB_BIGQUERY_DATASET"
	EnvBigQueryDispatchTable = "ORDERHUB_BIGQUERY_DISPATCH_TABLE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
