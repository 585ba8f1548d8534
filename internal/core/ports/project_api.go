package ports

import (
	"context"
	"time"

	"github.com/workcity/crm-client/internal/core/domain"
)

// ProjectDraft carries all caller-supplied fields for creating a project.
// ClientID is forwarded as-is; the server decides whether it resolves.
type ProjectDraft struct {
	Name         string               `json:"name"        validate:"required"`
	Description  string               `json:"description" validate:"required"`
	ClientID     string               `json:"clientId"    validate:"required"`
	Status       domain.ProjectStatus `json:"status"      validate:"required,oneof=planning in-progress completed on-hold cancelled"`
	StartDate    time.Time            `json:"startDate"   validate:"required"`
	EndDate      *time.Time           `json:"endDate,omitempty"`
	Budget       float64              `json:"budget,omitempty" validate:"omitempty,gt=0"`
	Technologies []string             `json:"technologies,omitempty"`
}

// ProjectPatch is a partial update with nil meaning "leave unchanged".
type ProjectPatch struct {
	Name         *string               `json:"name,omitempty"`
	Description  *string               `json:"description,omitempty"`
	ClientID     *string               `json:"clientId,omitempty"`
	Status       *domain.ProjectStatus `json:"status,omitempty" validate:"omitempty,oneof=planning in-progress completed on-hold cancelled"`
	StartDate    *time.Time            `json:"startDate,omitempty"`
	EndDate      *time.Time            `json:"endDate,omitempty"`
	Budget       *float64              `json:"budget,omitempty" validate:"omitempty,gt=0"`
	Technologies *[]string             `json:"technologies,omitempty"`
}

// ProjectPage is one page of the project collection.
type ProjectPage struct {
	Items      []domain.Project
	Pagination Pagination
}

// ProjectAPI maps the /projects REST resource to typed CRUD calls.
type ProjectAPI interface {
	List(ctx context.Context, filters Filters) (*ProjectPage, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	// ListByClient returns every project referencing the given client,
	// unpaginated (GET /projects/client/:clientId).
	ListByClient(ctx context.Context, clientID string) ([]domain.Project, error)
	Create(ctx context.Context, draft ProjectDraft) (*domain.Project, error)
	Update(ctx context.Context, id string, patch ProjectPatch) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
}
