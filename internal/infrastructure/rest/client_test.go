package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/workcity/crm-client/internal/core/domain"
	"github.com/workcity/crm-client/internal/core/ports"
	"github.com/workcity/crm-client/internal/infrastructure/session"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts Options) (*Client, *session.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sessions := session.NewMemoryStore()
	opts.BaseURL = srv.URL + "/api"
	opts.Sessions = sessions
	opts.Logger = zerolog.Nop()
	return NewClient(opts), sessions
}

func TestClient_InjectsBearerToken(t *testing.T) {
	var gotAuth string
	client, sessions := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":null,"success":true}`))
	}, Options{})

	if err := sessions.Save(context.Background(), &domain.Session{
		Token: "tok-123",
		User:  domain.User{ID: "u1"},
	}); err != nil {
		t.Fatalf("save session: %v", err)
	}

	if err := client.Get(context.Background(), "/clients", nil); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
}

func TestClient_NoSessionNoHeader(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":null,"success":true}`))
	}, Options{})

	if err := client.Get(context.Background(), "/health", nil); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("unexpected authorization header %q", gotAuth)
	}
}

func TestClient_DecodesEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"id":"c1","name":"Acme","status":"active"},"message":"","success":true}`))
	}, Options{})

	var got domain.Client
	if err := client.Get(context.Background(), "/clients/c1", &got); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.ID != "c1" || got.Name != "Acme" || got.Status != domain.ClientActive {
		t.Fatalf("unexpected client: %+v", got)
	}
}

func TestClient_GetPaginated(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{
			"data":[{"id":"c1"},{"id":"c2"}],
			"pagination":{"currentPage":2,"totalPages":5,"totalItems":42,"itemsPerPage":10},
			"success":true
		}`))
	}, Options{})

	query := filtersToQuery(ports.Filters{Status: "active", Page: 2, Limit: 10})
	var items []domain.Client
	pagination, err := client.GetPaginated(context.Background(), "/clients", query, &items)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(items) != 2 || items[0].ID != "c1" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if pagination.TotalItems != 42 || pagination.CurrentPage != 2 {
		t.Fatalf("unexpected pagination: %+v", pagination)
	}
	if gotQuery != "limit=10&page=2&status=active" {
		t.Fatalf("unexpected query: %q", gotQuery)
	}
}

func TestClient_UnauthorizedTearsDownSession(t *testing.T) {
	hookCalls := 0
	client, sessions := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid token","success":false}`))
	}, Options{OnUnauthorized: func() { hookCalls++ }})

	if err := sessions.Save(context.Background(), &domain.Session{Token: "stale"}); err != nil {
		t.Fatalf("save session: %v", err)
	}

	err := client.Get(context.Background(), "/auth/me", nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if domain.KindOf(err) != domain.KindUnauthorized {
		t.Fatalf("kind = %q", domain.KindOf(err))
	}

	sess, loadErr := sessions.Load(context.Background())
	if loadErr != nil || sess != nil {
		t.Fatalf("session not cleared: %+v %v", sess, loadErr)
	}
	if hookCalls != 1 {
		t.Fatalf("hook fired %d times", hookCalls)
	}
}

func TestClient_NotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Client not found","success":false}`))
	}, Options{})

	err := client.Get(context.Background(), "/clients/nope", nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	var de *domain.Error
	if !errors.As(err, &de) || de.Message != "Client not found" {
		t.Fatalf("server message lost: %v", err)
	}
}

func TestClient_ServerMessagePassthrough(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"name is required"}`))
	}, Options{})

	err := client.Post(context.Background(), "/clients", map[string]string{}, nil)
	var de *domain.Error
	if !errors.As(err, &de) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if de.Kind != domain.KindValidation || de.Message != "name is required" {
		t.Fatalf("unexpected error: %+v", de)
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewClient(Options{
		BaseURL:  srv.URL + "/api",
		Sessions: session.NewMemoryStore(),
		Timeout:  time.Second,
		Logger:   zerolog.Nop(),
	})

	err := client.Get(context.Background(), "/health", nil)
	var de *domain.Error
	if !errors.As(err, &de) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if de.Kind != domain.KindNetwork || de.Message != "could not reach the API" {
		t.Fatalf("unexpected error: %+v", de)
	}
}

func TestClientAPI_FallbackMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// An empty error body forces the adapter's fallback message.
		w.WriteHeader(http.StatusBadRequest)
	}, Options{})

	api := NewClientAPI(client)
	_, err := api.Create(context.Background(), ports.ClientDraft{
		Name: "Acme", Email: "acme@example.com", Company: "Acme Inc",
		Status: domain.ClientActive,
	})
	var de *domain.Error
	if !errors.As(err, &de) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if de.Message != "Failed to create client" {
		t.Fatalf("fallback not applied: %+v", de)
	}
}

func TestClientAPI_LocalValidationSkipsNetwork(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	}, Options{})

	api := NewClientAPI(client)
	_, err := api.Create(context.Background(), ports.ClientDraft{Name: "", Email: "not-an-email"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("kind = %q", domain.KindOf(err))
	}
	if calls != 0 {
		t.Fatalf("invalid draft reached the network")
	}
}

func TestResourceOf(t *testing.T) {
	cases := map[string]string{
		"/clients":            "clients",
		"/clients/42":         "clients",
		"/projects/client/c1": "projects",
		"/auth/login":         "auth",
		"/health?verbose=1":   "health",
		"/":                   "root",
	}
	for path, want := range cases {
		if got := resourceOf(path); got != want {
			t.Errorf("resourceOf(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestFiltersToQuery_OmitsZeroValues(t *testing.T) {
	q := filtersToQuery(ports.Filters{Search: "acme", SortBy: "name"})
	if q.Get("search") != "acme" || q.Get("sortBy") != "name" {
		t.Fatalf("unexpected query: %v", q)
	}
	for _, key := range []string{"status", "sortOrder", "page", "limit"} {
		if q.Has(key) {
			t.Fatalf("zero-value %s encoded: %v", key, q)
		}
	}
}
