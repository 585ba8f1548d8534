package mockapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const (
	testEmail    = "admin@workcity.com"
	testPassword = "password123"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := New(Options{JWTSecret: "test-secret", Logger: zerolog.Nop()})
	if err := s.Seed("Work", "City", testEmail, testPassword); err != nil {
		t.Fatalf("seed: %v", err)
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

type apiResponse struct {
	Data       json.RawMessage `json:"data"`
	Pagination json.RawMessage `json:"pagination"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func doJSON(t *testing.T, method, url, token string, body any) (int, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, out
}

func loginToken(t *testing.T, base string) string {
	t.Helper()
	status, resp := doJSON(t, http.MethodPost, base+"/api/auth/login", "", map[string]string{
		"email": testEmail, "password": testPassword,
	})
	if status != http.StatusOK {
		t.Fatalf("login status %d: %s", status, resp.Message)
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil || result.Token == "" {
		t.Fatalf("no token in login response: %s", resp.Data)
	}
	return result.Token
}

func TestRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Token abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"demo token", "Bearer demo-token-abc123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/auth/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", resp.StatusCode)
			}
		})
	}

	t.Run("valid token", func(t *testing.T) {
		token := loginToken(t, srv.URL)
		status, resp := doJSON(t, http.MethodGet, srv.URL+"/api/auth/me", token, nil)
		if status != http.StatusOK {
			t.Fatalf("status = %d: %s", status, resp.Message)
		}
		var user struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(resp.Data, &user); err != nil || user.Email != testEmail {
			t.Fatalf("unexpected user: %s", resp.Data)
		}
	})
}

func TestLogin_WrongPassword(t *testing.T) {
	srv := newTestServer(t)

	status, resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email": testEmail, "password": "wrong",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if resp.Success || resp.Message != "Invalid email or password" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSignup(t *testing.T) {
	srv := newTestServer(t)

	t.Run("success", func(t *testing.T) {
		status, resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/signup", "", map[string]string{
			"firstName": "Jane", "lastName": "Doe",
			"email": "jane@example.com", "password": "secret1", "confirmPassword": "secret1",
		})
		if status != http.StatusCreated {
			t.Fatalf("status = %d: %s", status, resp.Message)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		status, resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/signup", "", map[string]string{
			"firstName": "Work", "lastName": "City",
			"email": testEmail, "password": "secret1", "confirmPassword": "secret1",
		})
		if status != http.StatusConflict {
			t.Fatalf("status = %d, want 409", status)
		}
		if resp.Message != "User with this email already exists" {
			t.Fatalf("unexpected message: %q", resp.Message)
		}
	})

	t.Run("password mismatch", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/signup", "", map[string]string{
			"firstName": "Jane", "lastName": "Doe",
			"email": "jane2@example.com", "password": "secret1", "confirmPassword": "other22",
		})
		if status != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", status)
		}
	})
}

func TestChangePassword(t *testing.T) {
	srv := newTestServer(t)
	token := loginToken(t, srv.URL)

	status, resp := doJSON(t, http.MethodPut, srv.URL+"/api/auth/change-password", token, map[string]string{
		"currentPassword": "wrong", "newPassword": "newsecret",
	})
	if status != http.StatusBadRequest || resp.Message != "Current password is incorrect" {
		t.Fatalf("status = %d, message = %q", status, resp.Message)
	}

	status, _ = doJSON(t, http.MethodPut, srv.URL+"/api/auth/change-password", token, map[string]string{
		"currentPassword": testPassword, "newPassword": "newsecret",
	})
	if status != http.StatusOK {
		t.Fatalf("rotation failed with status %d", status)
	}

	// Old password must stop working, new one must authenticate.
	status, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email": testEmail, "password": testPassword,
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("old password still valid: %d", status)
	}
	status, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email": testEmail, "password": "newsecret",
	})
	if status != http.StatusOK {
		t.Fatalf("new password rejected: %d", status)
	}
}

func TestClientLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := loginToken(t, srv.URL)

	status, resp := doJSON(t, http.MethodPost, srv.URL+"/api/clients", token, map[string]any{
		"name": "Acme", "email": "contact@acme.com", "company": "Acme Inc", "status": "active",
	})
	if status != http.StatusCreated {
		t.Fatalf("create status %d: %s", status, resp.Message)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &created); err != nil || created.ID == "" {
		t.Fatalf("no id in create response: %s", resp.Data)
	}

	status, resp = doJSON(t, http.MethodGet, srv.URL+"/api/clients", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list status %d", status)
	}
	var listed []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("created client not listed: %+v", listed)
	}

	status, resp = doJSON(t, http.MethodPut, srv.URL+"/api/clients/"+created.ID, token, map[string]string{
		"status": "inactive",
	})
	if status != http.StatusOK {
		t.Fatalf("update status %d: %s", status, resp.Message)
	}
	var updated struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Data, &updated); err != nil || updated.Status != "inactive" {
		t.Fatalf("status not updated: %s", resp.Data)
	}

	status, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/clients/"+created.ID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("delete status %d", status)
	}
	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/clients/"+created.ID, token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("deleted client still served: %d", status)
	}
}

func TestClientList_Filters(t *testing.T) {
	srv := newTestServer(t)
	token := loginToken(t, srv.URL)

	for i, status := range []string{"active", "inactive", "active"} {
		code, resp := doJSON(t, http.MethodPost, srv.URL+"/api/clients", token, map[string]any{
			"name":    fmt.Sprintf("Client %d", i),
			"email":   fmt.Sprintf("c%d@example.com", i),
			"company": "Example Corp", "status": status,
		})
		if code != http.StatusCreated {
			t.Fatalf("seed client %d: %d %s", i, code, resp.Message)
		}
	}

	status, resp := doJSON(t, http.MethodGet, srv.URL+"/api/clients?status=active", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list status %d", status)
	}
	var items []struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Data, &items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 active clients, got %d", len(items))
	}
	var pagination struct {
		TotalItems int `json:"totalItems"`
	}
	if err := json.Unmarshal(resp.Pagination, &pagination); err != nil || pagination.TotalItems != 2 {
		t.Fatalf("unexpected pagination: %s", resp.Pagination)
	}
}

func TestProjectReferentialIntegrity(t *testing.T) {
	srv := newTestServer(t)
	token := loginToken(t, srv.URL)

	t.Run("unknown client rejected", func(t *testing.T) {
		status, resp := doJSON(t, http.MethodPost, srv.URL+"/api/projects", token, map[string]any{
			"name": "Ghost", "description": "No such client",
			"clientId": "missing", "status": "planning",
			"startDate": time.Now().UTC().Format(time.RFC3339),
		})
		if status != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", status)
		}
		if resp.Message != "Referenced client does not exist" {
			t.Fatalf("unexpected message: %q", resp.Message)
		}
	})

	t.Run("client with projects cannot be deleted", func(t *testing.T) {
		_, resp := doJSON(t, http.MethodPost, srv.URL+"/api/clients", token, map[string]any{
			"name": "Acme", "email": "contact@acme.com", "company": "Acme Inc", "status": "active",
		})
		var client struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(resp.Data, &client); err != nil || client.ID == "" {
			t.Fatalf("create client: %s", resp.Data)
		}

		status, resp := doJSON(t, http.MethodPost, srv.URL+"/api/projects", token, map[string]any{
			"name": "Launch", "description": "Initial build",
			"clientId": client.ID, "status": "planning",
			"startDate": time.Now().UTC().Format(time.RFC3339),
		})
		if status != http.StatusCreated {
			t.Fatalf("create project: %d %s", status, resp.Message)
		}

		status, resp = doJSON(t, http.MethodDelete, srv.URL+"/api/clients/"+client.ID, token, nil)
		if status != http.StatusBadRequest {
			t.Fatalf("delete status = %d, want 400", status)
		}
		if resp.Message != "Client still has projects" {
			t.Fatalf("unexpected message: %q", resp.Message)
		}
	})
}

func TestProjectsByClient(t *testing.T) {
	srv := newTestServer(t)
	token := loginToken(t, srv.URL)

	_, resp := doJSON(t, http.MethodPost, srv.URL+"/api/clients", token, map[string]any{
		"name": "Acme", "email": "contact@acme.com", "company": "Acme Inc", "status": "active",
	})
	var client struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &client); err != nil {
		t.Fatalf("create client: %s", resp.Data)
	}

	for _, name := range []string{"Launch", "Redesign"} {
		status, resp := doJSON(t, http.MethodPost, srv.URL+"/api/projects", token, map[string]any{
			"name": name, "description": "work",
			"clientId": client.ID, "status": "planning",
			"startDate": time.Now().UTC().Format(time.RFC3339),
		})
		if status != http.StatusCreated {
			t.Fatalf("create project %s: %d %s", name, status, resp.Message)
		}
	}

	status, resp := doJSON(t, http.MethodGet, srv.URL+"/api/projects/client/"+client.ID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("by-client status %d", status)
	}
	var projects []struct {
		ClientID string `json:"clientId"`
	}
	if err := json.Unmarshal(resp.Data, &projects); err != nil {
		t.Fatalf("decode projects: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
	for _, p := range projects {
		if p.ClientID != client.ID {
			t.Fatalf("foreign project in result: %+v", p)
		}
	}
}
