package ports

import (
	"context"
	"time"
)

const (
	HealthOK    = "ok"
	HealthError = "error"
)

// HealthReport is the outcome of a single dependency probe. Probe failures
// are folded into an error-status report rather than returned as Go errors,
// so callers always get a renderable result.
type HealthReport struct {
	Status    string    `json:"status"` // "ok" or "error"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

// HealthAPI probes the remote API process and its database.
type HealthAPI interface {
	CheckAPI(ctx context.Context) HealthReport
	CheckDatabase(ctx context.Context) HealthReport
}
