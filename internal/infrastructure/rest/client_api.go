package rest

import (
	"context"

	"github.com/workcity/crm-client/internal/core/domain"
	"github.com/workcity/crm-client/internal/core/ports"
)

// ClientAPI implements ports.ClientAPI against /clients.
type ClientAPI struct {
	http *Client
}

func NewClientAPI(http *Client) *ClientAPI {
	return &ClientAPI{http: http}
}

func (a *ClientAPI) List(ctx context.Context, filters ports.Filters) (*ports.ClientPage, error) {
	var items []domain.Client
	pagination, err := a.http.GetPaginated(ctx, "/clients", filtersToQuery(filters), &items)
	if err != nil {
		return nil, withFallback(err, "Failed to fetch clients")
	}
	return &ports.ClientPage{Items: items, Pagination: *pagination}, nil
}

func (a *ClientAPI) Get(ctx context.Context, id string) (*domain.Client, error) {
	var client domain.Client
	if err := a.http.Get(ctx, "/clients/"+id, &client); err != nil {
		return nil, withFallback(err, "Failed to fetch client")
	}
	return &client, nil
}

func (a *ClientAPI) Create(ctx context.Context, draft ports.ClientDraft) (*domain.Client, error) {
	if err := checkInput(draft); err != nil {
		return nil, err
	}
	var client domain.Client
	if err := a.http.Post(ctx, "/clients", draft, &client); err != nil {
		return nil, withFallback(err, "Failed to create client")
	}
	return &client, nil
}

func (a *ClientAPI) Update(ctx context.Context, id string, patch ports.ClientPatch) (*domain.Client, error) {
	if err := checkInput(patch); err != nil {
		return nil, err
	}
	var client domain.Client
	if err := a.http.Put(ctx, "/clients/"+id, patch, &client); err != nil {
		return nil, withFallback(err, "Failed to update client")
	}
	return &client, nil
}

func (a *ClientAPI) Delete(ctx context.Context, id string) error {
	if err := a.http.Delete(ctx, "/clients/"+id); err != nil {
		return withFallback(err, "Failed to delete client")
	}
	return nil
}
