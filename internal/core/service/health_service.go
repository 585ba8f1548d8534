package service

import (
	"context"
	"sync"

	"github.com/workcity/crm-client/internal/core/ports"
)

const (
	OverallHealthy  = "healthy"
	OverallDegraded = "degraded"
	OverallDown     = "down"
)

// SystemStatus aggregates the API and database probes into one overall
// verdict: both failing means down, exactly one failing means degraded.
type SystemStatus struct {
	API      ports.HealthReport `json:"api"`
	Database ports.HealthReport `json:"database"`
	Overall  string             `json:"overall"`
}

// HealthService reports on the remote system's availability.
type HealthService struct {
	api ports.HealthAPI
}

func NewHealthService(api ports.HealthAPI) *HealthService {
	return &HealthService{api: api}
}

// Status runs both probes concurrently and aggregates the verdict.
func (s *HealthService) Status(ctx context.Context) SystemStatus {
	var status SystemStatus
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		status.API = s.api.CheckAPI(ctx)
	}()
	go func() {
		defer wg.Done()
		status.Database = s.api.CheckDatabase(ctx)
	}()
	wg.Wait()

	apiDown := status.API.Status == ports.HealthError
	dbDown := status.Database.Status == ports.HealthError
	switch {
	case apiDown && dbDown:
		status.Overall = OverallDown
	case apiDown || dbDown:
		status.Overall = OverallDegraded
	default:
		status.Overall = OverallHealthy
	}
	return status
}
