package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "kaycrm"
	DefaultMongoConnTimeout  = 10 * time.Second

	StorageMongo          = "mongo"
	StorageMemory         = "memory"
	DefaultStorageBackend = StorageMongo

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultEventsEnabled  = false
	DefaultEventsTopic    = "booking-events"
	DefaultEventsDLQTopic = "dlq-booking-events"

	// Every 10 minutes; empty disables the audit job.
	DefaultIndexAuditSpec = "@every 10m"

	DefaultPaginationLimit = 100
	DefaultDotEnvFile      = ".env"
)
