// Package rest implements the driven API ports over the Workcity REST
// contract: JSON envelopes, bearer-token auth, and global 401 teardown.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/workcity/crm-client/internal/core/domain"
	"github.com/workcity/crm-client/internal/core/ports"
	"github.com/workcity/crm-client/internal/metrics"
)

const defaultTimeout = 10 * time.Second

// Client wraps net/http with the API base URL, bearer-token injection from
// the session store, and the unauthorized teardown side effect.
type Client struct {
	baseURL        string
	http           *http.Client
	sessions       ports.SessionStore
	onUnauthorized func()
	log            zerolog.Logger
}

// Options configures a Client.
type Options struct {
	// BaseURL is the API root including the /api prefix.
	BaseURL string
	// Timeout bounds every request. Defaults to 10s.
	Timeout time.Duration
	// Sessions supplies the bearer token and absorbs the 401 teardown.
	Sessions ports.SessionStore
	// OnUnauthorized runs after a 401 has cleared the session slot, at most
	// once per response. The CLI uses it to tell the user to log in again.
	OnUnauthorized func()

	Logger zerolog.Logger
}

// NewClient builds a Client. Sessions is required; OnUnauthorized may be nil.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		http:           &http.Client{Timeout: timeout},
		sessions:       opts.Sessions,
		onUnauthorized: opts.OnUnauthorized,
		log:            opts.Logger,
	}
}

// envelope is the single-resource response shape: {data, message, success}.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Success bool            `json:"success"`
}

// pagedEnvelope is the list response shape: {data: [...], pagination: {...}}.
type pagedEnvelope struct {
	Data       json.RawMessage  `json:"data"`
	Pagination ports.Pagination `json:"pagination"`
	Message    string           `json:"message"`
	Success    bool             `json:"success"`
}

// Get issues a GET and decodes the envelope's data field into out (unless
// out is nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// GetPaginated issues a GET with query parameters and decodes a list
// envelope, returning its pagination descriptor.
func (c *Client) GetPaginated(ctx context.Context, path string, query url.Values, out any) (*ports.Pagination, error) {
	if len(query) > 0 {
		path = path + "?" + query.Encode()
	}

	raw, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var env pagedEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &domain.Error{Kind: domain.KindNetwork, Message: "malformed API response", Err: err}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, &domain.Error{Kind: domain.KindNetwork, Message: "malformed API response", Err: err}
		}
	}
	return &env.Pagination, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &domain.Error{Kind: domain.KindNetwork, Message: "malformed API response", Err: err}
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &domain.Error{Kind: domain.KindNetwork, Message: "malformed API response", Err: err}
	}
	return nil
}

// send performs one HTTP round trip and returns the raw response body for
// 2xx statuses. Non-2xx statuses and transport failures come back as
// *domain.Error with the appropriate kind.
func (c *Client) send(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &domain.Error{Kind: domain.KindLocal, Message: "could not encode request", Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindLocal, Message: "could not build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	if session, err := c.sessions.Load(ctx); err == nil && session != nil {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	resource := resourceOf(path)
	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.APIRequestDuration.WithLabelValues(method, resource).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(method, resource, "error").Inc()
		return nil, &domain.Error{Kind: domain.KindNetwork, Message: "could not reach the API", Err: err}
	}
	defer resp.Body.Close()

	metrics.APIRequestsTotal.WithLabelValues(method, resource, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindNetwork, Message: "could not read API response", Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	return nil, c.statusError(ctx, resp.StatusCode, raw)
}

// statusError maps a non-2xx response to a domain error. A 401 additionally
// tears down the stored session and fires the unauthorized hook; callers
// cannot recover the session after that.
func (c *Client) statusError(ctx context.Context, status int, raw []byte) error {
	message := serverMessage(raw)

	switch {
	case status == http.StatusUnauthorized:
		if err := c.sessions.Clear(ctx); err != nil {
			c.log.Error().Err(err).Msg("failed to clear session after 401")
		}
		metrics.SessionTeardownsTotal.WithLabelValues("unauthorized").Inc()
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return domain.NewError(domain.KindUnauthorized, message, "session expired, please log in again", nil)
	case status == http.StatusNotFound:
		return domain.NewError(domain.KindNotFound, message, "resource not found", nil)
	default:
		// Message may stay empty here; adapters substitute a
		// per-operation fallback via withFallback.
		return &domain.Error{Kind: domain.KindValidation, Message: message}
	}
}

// serverMessage digs the human-readable message out of an error body,
// accepting both {"message": ...} and {"error": ...} shapes.
func serverMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// resourceOf extracts the metrics resource label from a request path:
// "/clients/42" reports as "clients".
func resourceOf(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "root"
	}
	return path
}

// filtersToQuery renders list filters as URL query parameters, omitting
// zero values.
func filtersToQuery(f ports.Filters) url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
	}
	if f.SortOrder != "" {
		q.Set("sortOrder", f.SortOrder)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// withFallback substitutes a per-operation message when the error carries
// none of its own, leaving kind and cause untouched.
func withFallback(err error, fallback string) error {
	var de *domain.Error
	if errors.As(err, &de) {
		if de.Message == "" {
			de.Message = fallback
		}
		return de
	}
	return domain.NewError(domain.KindNetwork, "", fallback, err)
}
