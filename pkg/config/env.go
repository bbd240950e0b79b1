package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvStorageBackend = "STORAGE_BACKEND"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvWebhookSecret = "AUTOMATION_WEBHOOK_SECRET"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvEventsEnabled  = "BOOKING_EVENTS_ENABLED"
	EnvEventsTopic    = "BOOKING_EVENTS_TOPIC"
	EnvEventsDLQTopic = "BOOKING_EVENTS_DLQ_TOPIC"
	EnvIndexAuditSpec = "INDEX_AUDIT_SCHEDULE"
	EnvDotEnvFile     = "DOTENV_FILE"

	EnvDirectorySeedFile = "DIRECTORY_SEED_FILE"
)
