package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reunionrs/reunion-site-backend/api"
	"github.com/reunionrs/reunion-site-backend/auth"
	"github.com/reunionrs/reunion-site-backend/errs"
	"github.com/reunionrs/reunion-site-backend/models"
)

// Client talks to the admin surface of a running server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Login exchanges the operator password for a session token. The client
// uses the new token from then on.
func (c *Client) Login(ctx context.Context, password string) (api.TokenResponse, error) {
	var issued api.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/token", api.TokenRequest{Password: password}, &issued); err != nil {
		return api.TokenResponse{}, err
	}
	c.token = issued.Token
	return issued, nil
}

// Session asks the server whether the token is still good.
func (c *Client) Session(ctx context.Context) (auth.Session, error) {
	if c.token == "" {
		return auth.Session{State: auth.StateUnauthenticated}, nil
	}

	var session api.SessionResponse
	if err := c.do(ctx, http.MethodGet, "/auth/session", nil, &session); err != nil {
		return auth.Session{}, err
	}
	if session.State != auth.StateAuthenticated.String() || session.User == nil {
		return auth.Session{State: auth.StateUnauthenticated}, nil
	}
	return auth.Session{State: auth.StateAuthenticated, User: session.User}, nil
}

// ListStored lists the records as stored, for editing.
func (c *Client) ListStored(ctx context.Context) ([]models.Project, error) {
	var collection api.ProjectCollection
	if err := c.do(ctx, http.MethodGet, "/admin/projects", nil, &collection); err != nil {
		return nil, err
	}
	return collection.Projects, nil
}

func (c *Client) Create(ctx context.Context, input models.ProjectInput) (uuid.UUID, error) {
	var created api.CreatedResponse
	if err := c.do(ctx, http.MethodPost, "/admin/project", input, &created); err != nil {
		return uuid.Nil, err
	}
	return created.ID, nil
}

func (c *Client) Update(ctx context.Context, id uuid.UUID, patch models.ProjectPatch) error {
	return c.do(ctx, http.MethodPut, "/admin/project/"+id.String(), patch, nil)
}

// Delete sends the confirmed deletion. The panel asks the operator first.
func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/admin/project/"+id.String()+"?confirm=true", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return responseError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func responseError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body api.ErrorResponse
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		return errs.FromResponse(resp.StatusCode, strings.TrimSpace(string(raw)), "")
	}
	message := body.Message
	if message == "" {
		message = body.Error
	}
	return errs.FromResponse(resp.StatusCode, message, body.Field)
}
