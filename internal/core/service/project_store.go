package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/workcity/crm-client/internal/core/domain"
	"github.com/workcity/crm-client/internal/core/ports"
	"github.com/workcity/crm-client/internal/metrics"
)

// ProjectStore mirrors ClientStore for the project collection. Project
// client references are forwarded untouched: the server decides whether a
// clientId resolves.
type ProjectStore struct {
	api ports.ProjectAPI
	log zerolog.Logger

	mu         sync.Mutex
	items      []domain.Project
	pagination ports.Pagination
	filters    ports.Filters
	loading    bool
	lastErr    string
	fresh      bool
}

// ProjectSnapshot is a copy of the observable store state.
type ProjectSnapshot struct {
	Items      []domain.Project
	Pagination ports.Pagination
	Filters    ports.Filters
	IsLoading  bool
	Err        string
}

func NewProjectStore(api ports.ProjectAPI, initialFilters ports.Filters, log zerolog.Logger) *ProjectStore {
	return &ProjectStore{api: api, filters: initialFilters, log: log}
}

// Snapshot returns a copy of the current state.
func (s *ProjectStore) Snapshot() ProjectSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.Project, len(s.items))
	copy(items, s.items)
	return ProjectSnapshot{
		Items:      items,
		Pagination: s.pagination,
		Filters:    s.filters,
		IsLoading:  s.loading,
		Err:        s.lastErr,
	}
}

// Refresh fetches the full list with the current filters.
func (s *ProjectStore) Refresh(ctx context.Context) error {
	return s.refresh(ctx, "manual")
}

// EnsureFresh refetches only when the cache has never loaded or has been
// invalidated.
func (s *ProjectStore) EnsureFresh(ctx context.Context) error {
	s.mu.Lock()
	fresh := s.fresh
	s.mu.Unlock()
	if fresh {
		return nil
	}
	return s.refresh(ctx, "stale")
}

// Invalidate marks the cache stale without touching its contents.
func (s *ProjectStore) Invalidate() {
	s.mu.Lock()
	s.fresh = false
	s.mu.Unlock()
}

// SetFilters replaces the filter set and refetches immediately.
func (s *ProjectStore) SetFilters(ctx context.Context, filters ports.Filters) error {
	s.mu.Lock()
	s.filters = filters
	s.mu.Unlock()
	return s.refresh(ctx, "filters")
}

func (s *ProjectStore) refresh(ctx context.Context, trigger string) error {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	filters := s.filters
	s.mu.Unlock()

	metrics.StoreRefreshesTotal.WithLabelValues("projects", trigger).Inc()

	page, err := s.api.List(ctx, filters)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = err.Error()
		return err
	}
	s.items = page.Items
	s.pagination = page.Pagination
	s.fresh = true
	return nil
}

// Create adds a project; on success it is prepended to the cached list.
func (s *ProjectStore) Create(ctx context.Context, draft ports.ProjectDraft) (*domain.Project, error) {
	created, err := s.api.Create(ctx, draft)
	if err != nil {
		metrics.StoreMutationsTotal.WithLabelValues("projects", "create", "error").Inc()
		s.recordErr(err)
		return nil, err
	}
	metrics.StoreMutationsTotal.WithLabelValues("projects", "create", "ok").Inc()

	s.mu.Lock()
	s.items = append([]domain.Project{*created}, s.items...)
	s.pagination.TotalItems++
	s.lastErr = ""
	s.mu.Unlock()
	return created, nil
}

// Update patches a project, replacing the cached entry in place.
func (s *ProjectStore) Update(ctx context.Context, id string, patch ports.ProjectPatch) (*domain.Project, error) {
	updated, err := s.api.Update(ctx, id, patch)
	if err != nil {
		metrics.StoreMutationsTotal.WithLabelValues("projects", "update", "error").Inc()
		s.recordErr(err)
		return nil, err
	}
	metrics.StoreMutationsTotal.WithLabelValues("projects", "update", "ok").Inc()

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = *updated
			break
		}
	}
	s.lastErr = ""
	s.mu.Unlock()
	return updated, nil
}

// Delete removes a project from the server and the cache.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		metrics.StoreMutationsTotal.WithLabelValues("projects", "delete", "error").Inc()
		s.recordErr(err)
		return err
	}
	metrics.StoreMutationsTotal.WithLabelValues("projects", "delete", "ok").Inc()

	s.mu.Lock()
	kept := s.items[:0]
	for _, p := range s.items {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) < len(s.items) && s.pagination.TotalItems > 0 {
		s.pagination.TotalItems--
	}
	s.items = kept
	s.lastErr = ""
	s.mu.Unlock()
	return nil
}

// Get fetches a single project by id, bypassing the cache.
func (s *ProjectStore) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.api.Get(ctx, id)
}

// ByClient returns every project referencing the given client. The result
// is not cached: the per-client view is always read fresh.
func (s *ProjectStore) ByClient(ctx context.Context, clientID string) ([]domain.Project, error) {
	return s.api.ListByClient(ctx, clientID)
}

func (s *ProjectStore) recordErr(err error) {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()
}
