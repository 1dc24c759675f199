package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// GeneratorChecker reports whether the text generation provider is configured.
type GeneratorChecker interface {
	IsAvailable() bool
}
