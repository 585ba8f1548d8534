package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/workcity/crm-client/internal/core/domain"
	"github.com/workcity/crm-client/internal/core/ports"
)

type stubProjectAPI struct {
	items     []domain.Project
	listCalls int
	failWith  error
	nextID    int
}

func (a *stubProjectAPI) List(_ context.Context, _ ports.Filters) (*ports.ProjectPage, error) {
	a.listCalls++
	if a.failWith != nil {
		return nil, a.failWith
	}
	items := make([]domain.Project, len(a.items))
	copy(items, a.items)
	return &ports.ProjectPage{
		Items: items,
		Pagination: ports.Pagination{
			CurrentPage: 1, TotalPages: 1,
			TotalItems: len(items), ItemsPerPage: 10,
		},
	}, nil
}

func (a *stubProjectAPI) Get(_ context.Context, id string) (*domain.Project, error) {
	for _, p := range a.items {
		if p.ID == id {
			clone := p
			return &clone, nil
		}
	}
	return nil, &domain.Error{Kind: domain.KindNotFound, Message: "not found"}
}

func (a *stubProjectAPI) ListByClient(_ context.Context, clientID string) ([]domain.Project, error) {
	if a.failWith != nil {
		return nil, a.failWith
	}
	var out []domain.Project
	for _, p := range a.items {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (a *stubProjectAPI) Create(_ context.Context, draft ports.ProjectDraft) (*domain.Project, error) {
	if a.failWith != nil {
		return nil, a.failWith
	}
	a.nextID++
	project := domain.Project{
		ID: string(rune('a' + a.nextID - 1)), Name: draft.Name, Description: draft.Description,
		ClientID: draft.ClientID, Status: draft.Status, StartDate: draft.StartDate,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	a.items = append([]domain.Project{project}, a.items...)
	return &project, nil
}

func (a *stubProjectAPI) Update(_ context.Context, id string, patch ports.ProjectPatch) (*domain.Project, error) {
	if a.failWith != nil {
		return nil, a.failWith
	}
	for i := range a.items {
		if a.items[i].ID == id {
			if patch.Status != nil {
				a.items[i].Status = *patch.Status
			}
			if patch.Name != nil {
				a.items[i].Name = *patch.Name
			}
			clone := a.items[i]
			return &clone, nil
		}
	}
	return nil, &domain.Error{Kind: domain.KindNotFound, Message: "not found"}
}

func (a *stubProjectAPI) Delete(_ context.Context, id string) error {
	if a.failWith != nil {
		return a.failWith
	}
	for i := range a.items {
		if a.items[i].ID == id {
			a.items = append(a.items[:i], a.items[i+1:]...)
			return nil
		}
	}
	return &domain.Error{Kind: domain.KindNotFound, Message: "not found"}
}

func seededProjectAPI() *stubProjectAPI {
	return &stubProjectAPI{items: []domain.Project{
		{ID: "p2", Name: "Redesign", ClientID: "c1", Status: domain.ProjectInProgress},
		{ID: "p1", Name: "Launch", ClientID: "c2", Status: domain.ProjectPlanning},
	}}
}

func TestProjectStore_Create_PrependsOnce(t *testing.T) {
	api := seededProjectAPI()
	store := NewProjectStore(api, ports.Filters{}, zerolog.Nop())
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	created, err := store.Create(context.Background(), ports.ProjectDraft{
		Name: "Migration", Description: "Move to the new stack",
		ClientID: "c1", Status: domain.ProjectPlanning, StartDate: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	snap := store.Snapshot()
	if snap.Items[0].ID != created.ID {
		t.Fatalf("created entity not first: %+v", snap.Items)
	}
	count := 0
	for _, p := range snap.Items {
		if p.ID == created.ID {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("created entity present %d times", count)
	}
	if snap.Pagination.TotalItems != 3 {
		t.Fatalf("total not bumped: %+v", snap.Pagination)
	}
}

func TestProjectStore_Update_StatusTransition(t *testing.T) {
	api := seededProjectAPI()
	store := NewProjectStore(api, ports.Filters{}, zerolog.Nop())
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	done := domain.ProjectCompleted
	updated, err := store.Update(context.Background(), "p2", ports.ProjectPatch{Status: &done})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != domain.ProjectCompleted {
		t.Fatalf("status not applied: %+v", updated)
	}

	snap := store.Snapshot()
	if snap.Items[0].ID != "p2" || snap.Items[1].ID != "p1" {
		t.Fatalf("order changed: %+v", snap.Items)
	}
	if snap.Items[0].Status != domain.ProjectCompleted {
		t.Fatalf("cache entry not replaced: %+v", snap.Items[0])
	}
}

func TestProjectStore_Delete_FailureKeepsEntry(t *testing.T) {
	api := seededProjectAPI()
	store := NewProjectStore(api, ports.Filters{}, zerolog.Nop())
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	api.failWith = &domain.Error{Kind: domain.KindNetwork, Message: "could not reach the API"}
	if err := store.Delete(context.Background(), "p1"); err == nil {
		t.Fatalf("expected error")
	}
	if len(store.Snapshot().Items) != 2 {
		t.Fatalf("entry removed despite failure")
	}
	if store.Snapshot().Err == "" {
		t.Fatalf("error not recorded")
	}
}

func TestProjectStore_Delete_RemovesEntry(t *testing.T) {
	api := seededProjectAPI()
	store := NewProjectStore(api, ports.Filters{}, zerolog.Nop())
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if err := store.Delete(context.Background(), "p2"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	for _, p := range store.Snapshot().Items {
		if p.ID == "p2" {
			t.Fatalf("deleted entry still present")
		}
	}
}

func TestProjectStore_ByClient_NotCached(t *testing.T) {
	api := seededProjectAPI()
	store := NewProjectStore(api, ports.Filters{}, zerolog.Nop())

	projects, err := store.ByClient(context.Background(), "c1")
	if err != nil {
		t.Fatalf("by-client failed: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != "p2" {
		t.Fatalf("unexpected projects: %+v", projects)
	}
	if api.listCalls != 0 {
		t.Fatalf("by-client must not touch the paged list")
	}
}

func TestProjectStore_EnsureFreshSkipsWhenFresh(t *testing.T) {
	api := seededProjectAPI()
	store := NewProjectStore(api, ports.Filters{}, zerolog.Nop())

	if err := store.EnsureFresh(context.Background()); err != nil {
		t.Fatalf("initial load failed: %v", err)
	}
	if err := store.EnsureFresh(context.Background()); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if api.listCalls != 1 {
		t.Fatalf("fresh cache refetched: %d calls", api.listCalls)
	}
}
