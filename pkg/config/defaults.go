package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "roomtime"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"

	DefaultResourceDirectoryURL = "http://localhost:8081"

	DefaultPort = "8080"

	// Hold-then-confirm by default: new reservations start pending and are
	// reclaimed after the hold TTL unless confirmed.
	DefaultAdmissionPolicy = PolicyHold

	DefaultHoldTTL         = 15 * time.Minute
	DefaultReclaimInterval = 1 * time.Minute
	DefaultReclaimBatch    = 100

	DefaultLockTTL            = 30 * time.Second
	DefaultLockAcquireTimeout = 5 * time.Second
	DefaultLockRetryInterval  = 50 * time.Millisecond

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)
