package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// blocklistGCInterval is how often the revoked-token store reclaims space.
	blocklistGCInterval = 10 * time.Minute
)
