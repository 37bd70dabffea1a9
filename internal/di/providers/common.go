package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// catalogSettleDelay is how long the catalog file must be quiet before it is reloaded.
	catalogSettleDelay = 500 * time.Millisecond

	// evictionInterval is how often idle session stores are dropped from memory.
	evictionInterval = 5 * time.Minute

	// valueLogGCInterval is how often Badger value log garbage collection runs.
	valueLogGCInterval = 10 * time.Minute
)
