package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"kaycrm/pkg/client"
	"kaycrm/pkg/logger"
)

var (
	mongoURIRegex   = regexp.MustCompile(`^mongodb(\+srv)?://`)
	credentialRegex = regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	StorageBackend string

	Port string

	WebhookSecret string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	EventsEnabled  bool
	EventsTopic    string
	EventsDLQTopic string

	IndexAuditSchedule string

	// Customers and vehicles loaded into the in-memory directory.
	DirectorySeedFile string

	Log    *logger.Logger
	Client *client.Client
}

// Load reads an optional dotenv file, then the process environment.
// Variables already set in the environment win over the file.
func Load(serviceName string) *Config {
	dotEnvErr := godotenv.Load(getEnvStr(EnvDotEnvFile, DefaultDotEnvFile))

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		StorageBackend: getEnvStr(EnvStorageBackend, DefaultStorageBackend),

		Port: getEnvStr(EnvPort, DefaultPort),

		WebhookSecret: getEnvStr(EnvWebhookSecret, ""),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		EventsEnabled:  getEnvBool(EnvEventsEnabled, DefaultEventsEnabled),
		EventsTopic:    getEnvStr(EnvEventsTopic, DefaultEventsTopic),
		EventsDLQTopic: getEnvStr(EnvEventsDLQTopic, DefaultEventsDLQTopic),

		IndexAuditSchedule: os.Getenv(EnvIndexAuditSpec),

		DirectorySeedFile: getEnvStr(EnvDirectorySeedFile, ""),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}
	if _, set := os.LookupEnv(EnvIndexAuditSpec); !set {
		cfg.IndexAuditSchedule = DefaultIndexAuditSpec
	}

	if dotEnvErr != nil && !errors.Is(dotEnvErr, fs.ErrNotExist) {
		cfg.Log.Warn("Failed to read dotenv file", "error", dotEnvErr)
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) UsesMongo() bool {
	return cfg.StorageBackend == StorageMongo
}

// Validate reports every problem at once, numbered in check order.
func (cfg *Config) Validate() error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		addf("Port must be between 1 and 65535, got: %s", cfg.Port)
	}

	switch cfg.StorageBackend {
	case StorageMongo:
		switch {
		case cfg.MongoURI == "":
			addf("MongoURI cannot be empty")
		case !mongoURIRegex.MatchString(cfg.MongoURI):
			addf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI))
		}
		if cfg.MongoDatabaseName == "" {
			addf("MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			addf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout)
		}
	case StorageMemory:
	default:
		addf("StorageBackend must be %q or %q, got: %q", StorageMongo, StorageMemory, cfg.StorageBackend)
	}

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
	} {
		if d.value <= 0 {
			addf("%s must be positive, got: %s", d.name, d.value)
		}
	}
	if cfg.RateLimitRequests <= 0 {
		addf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests)
	}
	if cfg.MaxRequestSize <= 0 {
		addf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize)
	}

	if cfg.EventsEnabled && cfg.EventsTopic == "" {
		addf("EventsTopic cannot be empty when booking events are enabled")
	}
	if cfg.IndexAuditSchedule != "" {
		if _, err := cron.ParseStandard(cfg.IndexAuditSchedule); err != nil {
			addf("IndexAuditSchedule is not a valid cron spec: %v", err)
		}
	}
	if cfg.DirectorySeedFile != "" && cfg.StorageBackend != StorageMemory {
		addf("DirectorySeedFile is only read by the %q storage backend", StorageMemory)
	}

	if len(problems) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("Configuration validation failed:\n")
	for i, p := range problems {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, p)
	}
	return errors.New(b.String())
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"storage_backend", cfg.StorageBackend,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"webhook_secret_set", cfg.WebhookSecret != "",
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"events_enabled", cfg.EventsEnabled,
		"events_topic", cfg.EventsTopic,
		"index_audit_schedule", cfg.IndexAuditSchedule,
		"directory_seed_file", cfg.DirectorySeedFile,
	)
}

func redactMongoURI(uri string) string {
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
