package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "roadbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultKafkaBrokers     = "localhost:9092"
	DefaultKafkaTopic       = "roadbook.booking-events"
	DefaultKafkaMaxAttempts = 3
	DefaultKafkaBatchWait   = 50 * time.Millisecond

	DefaultPort = "8080"

	DefaultTokenTTL   = 1 * time.Hour
	DefaultSessionTTL = 1 * time.Hour

	DefaultRateLimitRPS   = 20
	DefaultRateLimitBurst = 40

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	// Replays of a booking request are only plausible within a client retry
	// window; a day of cached responses is more than enough.
	DefaultIdempotencyTTL = 24 * time.Hour

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Availability horizon: hourly buckets for the next 7 days, matching the
	// slot grid the booking client renders.
	DefaultAvailabilityDays = 7
	DefaultSlotDuration     = 1 * time.Hour

	// Fallback applied when a road record has no hourly capacity set.
	DefaultHourlyCapacity = 100

	DefaultPerPage = 20
	MaxPerPage     = 100
)
