// Package gotrue talks to a GoTrue-compatible auth REST API.
package gotrue

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
)

const (
	authPrefix     = "/auth/v1"
	maxErrorBody   = 64 << 10
	defaultTimeout = 15 * time.Second
)

// APIError is a non-2xx answer from the provider.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth provider: %d %s", e.Status, e.Message)
}

// RejectionStatus implements ports.ProviderRejection.
func (e *APIError) RejectionStatus() int { return e.Status }

// RejectionMessage implements ports.ProviderRejection.
func (e *APIError) RejectionMessage() string { return e.Message }

// IsClientError reports whether the provider rejected the request itself (4xx).
func (e *APIError) IsClientError() bool { return e.Status >= 400 && e.Status < 500 }

// AsAPIError unwraps an *APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// transport issues JSON requests against one provider base URL.
type transport struct {
	base   string
	apiKey string
	bearer string
	client *http.Client
}

func newTransport(baseURL, apiKey string, client *http.Client) (transport, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return transport{}, errors.New("auth provider URL is required")
	}
	base = strings.TrimSuffix(base, authPrefix)
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return transport{base: base + authPrefix, apiKey: apiKey, client: client}, nil
}

// do sends in as JSON (when non-nil) and decodes a 2xx body into out (when non-nil).
// bearer overrides the transport's default Authorization token.
func (t transport) do(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, t.base+path, body)
	if err != nil {
		return fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.apiKey != "" {
		req.Header.Set("apikey", t.apiKey)
	}
	if bearer == "" {
		bearer = t.bearer
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode auth response: %w", err)
	}
	return nil
}

// decodeAPIError understands the several error shapes GoTrue has used over time.
func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            any    `json:"error"`
	}
	msg := ""
	if json.Unmarshal(raw, &body) == nil {
		errStr, _ := body.Error.(string)
		msg = firstNonEmpty(body.Msg, body.ErrorDescription, body.Message, errStr)
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
