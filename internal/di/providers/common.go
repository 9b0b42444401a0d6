package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// collectionsNamespace prefixes the host collection snapshots in the store.
	collectionsNamespace = "host:"
)
