package rest

import (
	"context"

	"github.com/workcity/crm-client/internal/core/domain"
	"github.com/workcity/crm-client/internal/core/ports"
)

// ProjectAPI implements ports.ProjectAPI against /projects.
type ProjectAPI struct {
	http *Client
}

func NewProjectAPI(http *Client) *ProjectAPI {
	return &ProjectAPI{http: http}
}

func (a *ProjectAPI) List(ctx context.Context, filters ports.Filters) (*ports.ProjectPage, error) {
	var items []domain.Project
	pagination, err := a.http.GetPaginated(ctx, "/projects", filtersToQuery(filters), &items)
	if err != nil {
		return nil, withFallback(err, "Failed to fetch projects")
	}
	return &ports.ProjectPage{Items: items, Pagination: *pagination}, nil
}

func (a *ProjectAPI) Get(ctx context.Context, id string) (*domain.Project, error) {
	var project domain.Project
	if err := a.http.Get(ctx, "/projects/"+id, &project); err != nil {
		return nil, withFallback(err, "Failed to fetch project")
	}
	return &project, nil
}

func (a *ProjectAPI) ListByClient(ctx context.Context, clientID string) ([]domain.Project, error) {
	var projects []domain.Project
	if err := a.http.Get(ctx, "/projects/client/"+clientID, &projects); err != nil {
		return nil, withFallback(err, "Failed to fetch client projects")
	}
	return projects, nil
}

func (a *ProjectAPI) Create(ctx context.Context, draft ports.ProjectDraft) (*domain.Project, error) {
	if err := checkInput(draft); err != nil {
		return nil, err
	}
	var project domain.Project
	if err := a.http.Post(ctx, "/projects", draft, &project); err != nil {
		return nil, withFallback(err, "Failed to create project")
	}
	return &project, nil
}

func (a *ProjectAPI) Update(ctx context.Context, id string, patch ports.ProjectPatch) (*domain.Project, error) {
	if err := checkInput(patch); err != nil {
		return nil, err
	}
	var project domain.Project
	if err := a.http.Put(ctx, "/projects/"+id, patch, &project); err != nil {
		return nil, withFallback(err, "Failed to update project")
	}
	return &project, nil
}

func (a *ProjectAPI) Delete(ctx context.Context, id string) error {
	if err := a.http.Delete(ctx, "/projects/"+id); err != nil {
		return withFallback(err, "Failed to delete project")
	}
	return nil
}
