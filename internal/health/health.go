// Package health provides health check implementations for external
// dependencies of the match API server.
package health

import "context"

// Checker is implemented by anything that can report dependency health.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
