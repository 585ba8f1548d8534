package ports

import (
	"context"

	"github.com/workcity/crm-client/internal/core/domain"
)

// ClientDraft carries all caller-supplied fields for creating a client.
// Ids and timestamps are server-assigned.
type ClientDraft struct {
	Name     string              `json:"name"     validate:"required"`
	Email    string              `json:"email"    validate:"required,email"`
	Phone    string              `json:"phone,omitempty"`
	Company  string              `json:"company"  validate:"required"`
	Position string              `json:"position,omitempty"`
	Address  string              `json:"address,omitempty"`
	City     string              `json:"city,omitempty"`
	State    string              `json:"state,omitempty"`
	ZipCode  string              `json:"zipCode,omitempty"`
	Country  string              `json:"country,omitempty"`
	Status   domain.ClientStatus `json:"status"   validate:"required,oneof=active inactive"`
	Notes    string              `json:"notes,omitempty"`
}

// ClientPatch is a partial update: nil fields are left untouched by the
// server, so absent and zero are distinguishable.
type ClientPatch struct {
	Name     *string              `json:"name,omitempty"`
	Email    *string              `json:"email,omitempty"    validate:"omitempty,email"`
	Phone    *string              `json:"phone,omitempty"`
	Company  *string              `json:"company,omitempty"`
	Position *string              `json:"position,omitempty"`
	Address  *string              `json:"address,omitempty"`
	City     *string              `json:"city,omitempty"`
	State    *string              `json:"state,omitempty"`
	ZipCode  *string              `json:"zipCode,omitempty"`
	Country  *string              `json:"country,omitempty"`
	Status   *domain.ClientStatus `json:"status,omitempty"   validate:"omitempty,oneof=active inactive"`
	Notes    *string              `json:"notes,omitempty"`
}

// ClientPage is one page of the client collection.
type ClientPage struct {
	Items      []domain.Client
	Pagination Pagination
}

// ClientAPI maps the /clients REST resource to typed CRUD calls. Every
// failure is a *domain.Error carrying a human-readable message.
type ClientAPI interface {
	List(ctx context.Context, filters Filters) (*ClientPage, error)
	Get(ctx context.Context, id string) (*domain.Client, error)
	Create(ctx context.Context, draft ClientDraft) (*domain.Client, error)
	Update(ctx context.Context, id string, patch ClientPatch) (*domain.Client, error)
	Delete(ctx context.Context, id string) error
}
