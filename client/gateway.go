// Package client is the marketplace SDK: a REST gateway plus in-memory session
// and project stores that stay consistent with the server across mutations and
// restarts. It mirrors what a browser front end keeps in application state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultRequestTimeout = 30 * time.Second

// APIError is the single failure shape surfaced by the gateway. Transport
// failures and rejected requests both reduce to a human-readable message;
// StatusCode is zero when no response was received.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Gateway performs the REST calls the stores depend on. Credential transport
// is configuration: a token source attaches bearer headers, a cookie jar lets
// the server's auth cookie ride along instead. Stores never branch on which
// one is active.
type Gateway struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource func() string
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) GatewayOption {
	return func(g *Gateway) {
		g.httpClient = hc
	}
}

// WithTokenSource attaches bearer tokens from fn to authenticated requests.
func WithTokenSource(fn func() string) GatewayOption {
	return func(g *Gateway) {
		g.tokenSource = fn
	}
}

// WithCookieJar enables cookie-based credential transport.
func WithCookieJar(jar http.CookieJar) GatewayOption {
	return func(g *Gateway) {
		g.httpClient.Jar = jar
	}
}

// NewGateway creates a gateway for the API at baseURL.
func NewGateway(baseURL string, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// UseTokenSource sets the bearer token source after construction, for the
// common wiring where the session store owning the token is built after the
// gateway it depends on.
func (g *Gateway) UseTokenSource(fn func() string) {
	g.tokenSource = fn
}

// wireUser tolerates the legacy identity field name alongside the canonical
// one. Only one of the two carries the value for a given record.
type wireUser struct {
	ID    string `json:"id"`
	AltID string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (w wireUser) canonical() User {
	id := w.ID
	if id == "" {
		id = w.AltID
	}
	return User{ID: id, Name: w.Name, Email: w.Email}
}

type wireProject struct {
	ID          string    `json:"id"`
	AltID       string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Budget      int       `json:"budget"`
	TechStack   []string  `json:"tech_stack"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func (w wireProject) canonical() Project {
	id := w.ID
	if id == "" {
		id = w.AltID
	}
	return Project{
		ID:          id,
		Title:       w.Title,
		Description: w.Description,
		Budget:      w.Budget,
		TechStack:   w.TechStack,
		Status:      ProjectStatus(w.Status),
		CreatedBy:   w.CreatedBy,
		CreatedAt:   w.CreatedAt,
	}
}

// Login authenticates and returns the user plus the issued access token. The
// token may be empty on cookie-transport deployments.
func (g *Gateway) Login(ctx context.Context, creds Credentials) (User, string, error) {
	body := map[string]string{"email": creds.Email, "password": creds.Password}
	var resp struct {
		AccessToken string   `json:"access_token"`
		User        wireUser `json:"user"`
	}
	if err := g.do(ctx, http.MethodPost, "/auth/login", body, &resp, "Login failed"); err != nil {
		return User{}, "", err
	}
	return resp.User.canonical(), resp.AccessToken, nil
}

// Signup creates an account and returns the new user. No token is issued.
func (g *Gateway) Signup(ctx context.Context, profile Profile) (User, error) {
	body := map[string]string{
		"name":     profile.Name,
		"email":    profile.Email,
		"password": profile.Password,
	}
	var resp struct {
		User wireUser `json:"user"`
	}
	if err := g.do(ctx, http.MethodPost, "/auth/signup", body, &resp, "Signup failed"); err != nil {
		return User{}, err
	}
	return resp.User.canonical(), nil
}

// Logout revokes the current credentials server-side.
func (g *Gateway) Logout(ctx context.Context) error {
	return g.do(ctx, http.MethodPost, "/auth/logout", nil, nil, "Logout failed")
}

// FetchProjects returns the full project list. A payload that is not an array
// is normalized to an empty list rather than surfaced as an error.
func (g *Gateway) FetchProjects(ctx context.Context) ([]Project, error) {
	var raw json.RawMessage
	if err := g.do(ctx, http.MethodGet, "/projects", nil, &raw, "Failed to fetch projects"); err != nil {
		return nil, err
	}

	var wire []wireProject
	if err := json.Unmarshal(raw, &wire); err != nil {
		return []Project{}, nil
	}

	projects := make([]Project, len(wire))
	for i, w := range wire {
		projects[i] = w.canonical()
	}
	return projects, nil
}

// CreateProject posts a draft and returns the server-assigned project.
func (g *Gateway) CreateProject(ctx context.Context, draft ProjectDraft) (Project, error) {
	body := map[string]interface{}{
		"title":       draft.Title,
		"description": draft.Description,
		"budget":      draft.Budget,
		"tech_stack":  draft.TechStack,
	}
	var wire wireProject
	if err := g.do(ctx, http.MethodPost, "/projects", body, &wire, "Failed to create project"); err != nil {
		return Project{}, err
	}
	return wire.canonical(), nil
}

// UpdateProject sends the non-nil patch fields to the server.
func (g *Gateway) UpdateProject(ctx context.Context, id string, patch ProjectPatch) error {
	body := map[string]interface{}{}
	if patch.Title != nil {
		body["title"] = *patch.Title
	}
	if patch.Description != nil {
		body["description"] = *patch.Description
	}
	if patch.Budget != nil {
		body["budget"] = *patch.Budget
	}
	if patch.TechStack != nil {
		body["tech_stack"] = *patch.TechStack
	}
	return g.do(ctx, http.MethodPut, "/projects/"+id, body, nil, "Failed to update project")
}

// DeleteProject removes a project.
func (g *Gateway) DeleteProject(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodDelete, "/projects/"+id, nil, nil, "Failed to delete project")
}

// CompleteProject marks a project completed for every viewer.
func (g *Gateway) CompleteProject(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodPatch, "/projects/"+id+"/complete", nil, nil, "Failed to mark project as completed")
}

func (g *Gateway) do(ctx context.Context, method, path string, body, out interface{}, fallback string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &APIError{Message: fallback}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return &APIError{Message: fallback}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.tokenSource != nil {
		if token := g.tokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return &APIError{Message: fallback}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: fallback}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data, fallback)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &APIError{StatusCode: resp.StatusCode, Message: fallback}
		}
	}
	return nil
}

// errorMessage digs a human-readable message out of an error body, scanning
// detail, then message, then error. Frameworks wrap payloads differently, so
// message may itself be an object carrying the detail.
func errorMessage(data []byte, fallback string) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fallback
	}

	if s, ok := rawString(fields["detail"]); ok {
		return s
	}
	if raw, present := fields["message"]; present {
		if s, ok := rawString(raw); ok {
			return s
		}
		if nested := errorMessage(raw, ""); nested != "" {
			return nested
		}
	}
	if s, ok := rawString(fields["error"]); ok {
		return s
	}
	return fallback
}

func rawString(raw json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}
