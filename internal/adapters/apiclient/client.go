// Package apiclient calls the storefront server's auth endpoints on behalf of the session resolver.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/ports"
	"golang.org/x/oauth2"
)

var (
	_ ports.AdminBootstrapper = (*Client)(nil)
	_ ports.SignupClient      = (*Client)(nil)
	_ ports.ProviderRejection = (*Error)(nil)
)

// Error is a non-2xx answer. Message is the server's "error" field verbatim.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) RejectionStatus() int     { return e.Status }
func (e *Error) RejectionMessage() string { return e.Message }

// Client talks to one storefront server.
type Client struct {
	base string
	http *http.Client
}

// New creates a Client for baseURL.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("server URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{base: base, http: httpClient}, nil
}

// DevLogin calls the admin bootstrap endpoint.
func (c *Client) DevLogin(ctx context.Context, email, password string) (*ports.BootstrapUser, error) {
	var out struct {
		Success bool                `json:"success"`
		User    ports.BootstrapUser `json:"user"`
	}
	if err := c.do(ctx, c.http, http.MethodPost, "/api/auth/dev-login",
		map[string]string{"email": email, "password": password}, &out); err != nil {
		return nil, err
	}
	if !out.Success || out.User.ID == "" {
		return nil, &Error{Status: http.StatusOK, Message: "Login failed"}
	}
	return &out.User, nil
}

// SignUp calls the signup endpoint.
func (c *Client) SignUp(ctx context.Context, in ports.SignupInput) error {
	return c.do(ctx, c.http, http.MethodPost, "/api/auth/signup", in, nil)
}

// Me is the server's view of the caller.
type Me struct {
	ID      string            `json:"id"`
	Email   string            `json:"email"`
	Claims  domainauth.Claims `json:"claims"`
	IsAdmin bool              `json:"is_admin"`
}

// Me calls /api/auth/me with the bearer token from ts.
func (c *Client) Me(ctx context.Context, ts oauth2.TokenSource) (*Me, error) {
	authed := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.http), ts)
	var out Me
	if err := c.do(ctx, authed, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		msg := ""
		if json.Unmarshal(raw, &e) == nil {
			msg = e.Error
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
