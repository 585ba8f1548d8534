package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/workcity/crm-client/internal/core/domain"
	"github.com/workcity/crm-client/internal/core/ports"
	"github.com/workcity/crm-client/internal/metrics"
)

// ClientStore is the cached view of the client collection: one list, the
// paging descriptor, the active filter set, and a loading/error pair. After
// any successful mutation the list matches what a fresh fetch with the
// current filters would return, assuming no concurrent out-of-band writes.
//
// Mutations patch the cache in place instead of refetching; Invalidate
// marks the cache stale so the next EnsureFresh refetches.
type ClientStore struct {
	api ports.ClientAPI
	log zerolog.Logger

	mu         sync.Mutex
	items      []domain.Client
	pagination ports.Pagination
	filters    ports.Filters
	loading    bool
	lastErr    string
	fresh      bool
}

// ClientSnapshot is a copy of the observable store state.
type ClientSnapshot struct {
	Items      []domain.Client
	Pagination ports.Pagination
	Filters    ports.Filters
	IsLoading  bool
	Err        string
}

func NewClientStore(api ports.ClientAPI, initialFilters ports.Filters, log zerolog.Logger) *ClientStore {
	return &ClientStore{api: api, filters: initialFilters, log: log}
}

// Snapshot returns a copy of the current state. The items slice is cloned
// so callers can hold it across later mutations.
func (s *ClientStore) Snapshot() ClientSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.Client, len(s.items))
	copy(items, s.items)
	return ClientSnapshot{
		Items:      items,
		Pagination: s.pagination,
		Filters:    s.filters,
		IsLoading:  s.loading,
		Err:        s.lastErr,
	}
}

// Refresh fetches the full list with the current filters, replacing the
// cached list and pagination.
func (s *ClientStore) Refresh(ctx context.Context) error {
	return s.refresh(ctx, "manual")
}

// EnsureFresh refetches only when the cache has never loaded or has been
// invalidated.
func (s *ClientStore) EnsureFresh(ctx context.Context) error {
	s.mu.Lock()
	fresh := s.fresh
	s.mu.Unlock()
	if fresh {
		return nil
	}
	return s.refresh(ctx, "stale")
}

// Invalidate marks the cache stale without touching its contents.
func (s *ClientStore) Invalidate() {
	s.mu.Lock()
	s.fresh = false
	s.mu.Unlock()
}

// SetFilters replaces the filter set and refetches immediately.
func (s *ClientStore) SetFilters(ctx context.Context, filters ports.Filters) error {
	s.mu.Lock()
	s.filters = filters
	s.mu.Unlock()
	return s.refresh(ctx, "filters")
}

func (s *ClientStore) refresh(ctx context.Context, trigger string) error {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	filters := s.filters
	s.mu.Unlock()

	metrics.StoreRefreshesTotal.WithLabelValues("clients", trigger).Inc()

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

// Create adds a client. On success the new record is prepended; on failure
// the list is untouched and the error is returned for the caller to react.
func (s *ClientStore) Create(ctx context.Context, draft ports.ClientDraft) (*domain.Client, error) {
	created, err := s.api.Create(ctx, draft)
	if err != nil {
		metrics.StoreMutationsTotal.WithLabelValues("clients", "create", "error").Inc()
		s.recordErr(err)
		return nil, err
	}
	metrics.StoreMutationsTotal.WithLabelValues("clients", "create", "ok").Inc()

	s.mu.Lock()
	s.items = append([]domain.Client{*created}, s.items...)
	s.pagination.TotalItems++
	s.lastErr = ""
	s.mu.Unlock()
	return created, nil
}

// Update patches a client. On success the server's copy replaces the cached
// entry in place, preserving list order.
func (s *ClientStore) Update(ctx context.Context, id string, patch ports.ClientPatch) (*domain.Client, error) {
	updated, err := s.api.Update(ctx, id, patch)
	if err != nil {
		metrics.StoreMutationsTotal.WithLabelValues("clients", "update", "error").Inc()
		s.recordErr(err)
		return nil, err
	}
	metrics.StoreMutationsTotal.WithLabelValues("clients", "update", "ok").Inc()

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

// Delete removes a client. On success no entry with the id remains in the
// cache; on failure the entry stays.
func (s *ClientStore) Delete(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		metrics.StoreMutationsTotal.WithLabelValues("clients", "delete", "error").Inc()
		s.recordErr(err)
		return err
	}
	metrics.StoreMutationsTotal.WithLabelValues("clients", "delete", "ok").Inc()

	s.mu.Lock()
	kept := s.items[:0]
	for _, c := range s.items {
		if c.ID != id {
			kept = append(kept, c)
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

// Get fetches a single client by id, bypassing the cache.
func (s *ClientStore) Get(ctx context.Context, id string) (*domain.Client, error) {
	return s.api.Get(ctx, id)
}

func (s *ClientStore) recordErr(err error) {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()
}
