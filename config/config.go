package config

import "time"

type Config struct {
	AppName            string `env:"APP_NAME" env-default:"fern-sync"`
	Port               int    `env:"PORT" env-default:"3004"`
	LogLevel           string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs         bool   `env:"PRETTY_LOGS" env-default:"false"`
	StartupMaxAttempts int    `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// Movidesk API
	MovideskBaseURL        string `env:"MOVIDESK_BASE_URL" env-default:"https://api.movidesk.com/public/v1/tickets"`
	MovideskToken          string `env:"MOVIDESK_TOKEN" env-default:""`
	MovideskTimeoutSeconds int    `env:"MOVIDESK_TIMEOUT_SECONDS" env-default:"30"`

	// Rate limiting for ticket detail fetches. The Movidesk API tolerates
	// roughly 10 requests per minute before it starts rejecting calls.
	RateLimitRequests      int `env:"RATE_LIMIT_REQUESTS" env-default:"10"`
	RateLimitWindowSeconds int `env:"RATE_LIMIT_WINDOW_SECONDS" env-default:"60"`

	// Checkpoint file for pending ticket IDs
	CheckpointPath string `env:"CHECKPOINT_PATH" env-default:"ticket_ids.txt"`

	// Sync scheduling. 0 runs the pipeline once and exits; anything greater
	// keeps the process alive and re-runs on the interval.
	SyncIntervalMinutes int `env:"SYNC_INTERVAL_MINUTES" env-default:"0"`

	// PostgreSQL
	DatabaseDriver                string        `env:"DB_DRIVER" env-default:"postgres"`
	DatabaseHost                  string        `env:"DB_HOST" env-default:""`
	DatabasePort                  string        `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName              string        `env:"DB_USER_NAME" env-default:""`
	DatabasePassword              string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName                  string        `env:"DB_NAME" env-default:"fern"`
	DatabaseSSLMode               string        `env:"DB_SQL_MODE" env-default:"disable"`
	DatabaseReconnectRetryCount   int           `env:"DB_RECONNECT_RETRY_COUNT" env-default:"3"`
	DatabaseMaxOpenConns          int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns          int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime       time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	DatabaseMigrationFolderPath   string        `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	DatabaseMigrationVersion      int           `env:"DB_MIGRATION_VERSION" env-default:"0"`
	DatabaseMigrationForce        int           `env:"DB_MIGRATION_FORCE" env-default:"0"`
	DatabaseMigrationAutoRollback bool          `env:"DB_MIGRATION_AUTO_ROLLBACK" env-default:"true"`

	// Redis (optional run lock so two fern instances cannot sync against the
	// same database at once)
	RedisEnabled        bool   `env:"REDIS_ENABLED" env-default:"false"`
	RedisHost           string `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort           int    `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword       string `env:"REDIS_PASSWORD" env-default:""`
	RedisDB             int    `env:"REDIS_DB" env-default:"0"`
	RunLockTTLMinutes   int    `env:"RUN_LOCK_TTL_MINUTES" env-default:"30"`

	// Kafka Producer (optional ticket.synced events)
	KafkaProducerEnabled bool     `env:"KAFKA_PRODUCER_ENABLED" env-default:"false"`
	KafkaBrokers         []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaOutputTopic     string   `env:"KAFKA_OUTPUT_TOPIC" env-default:"ticket-events"`
	KafkaBatchSize       int      `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout    int      `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks    int      `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression     string   `env:"KAFKA_COMPRESSION" env-default:"snappy"`

	// Tracing
	TracingEnabled bool `env:"TRACING_ENABLED" env-default:"false"`
}
