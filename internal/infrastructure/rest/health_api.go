package rest

import (
	"context"
	"time"

	"github.com/workcity/crm-client/internal/core/ports"
)

// HealthAPI implements ports.HealthAPI against /health. Probe failures are
// folded into error-status reports so the caller always has something to
// render.
type HealthAPI struct {
	http *Client
}

func NewHealthAPI(http *Client) *HealthAPI {
	return &HealthAPI{http: http}
}

func (a *HealthAPI) CheckAPI(ctx context.Context) ports.HealthReport {
	return a.probe(ctx, "/health", "Backend API is not responding")
}

func (a *HealthAPI) CheckDatabase(ctx context.Context) ports.HealthReport {
	return a.probe(ctx, "/health/database", "Database connection failed")
}

func (a *HealthAPI) probe(ctx context.Context, path, fallback string) ports.HealthReport {
	var report ports.HealthReport
	if err := a.http.Get(ctx, path, &report); err != nil {
		return ports.HealthReport{
			Status:    ports.HealthError,
			Message:   withFallback(err, fallback).Error(),
			Timestamp: time.Now().UTC(),
		}
	}
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now().UTC()
	}
	return report
}
