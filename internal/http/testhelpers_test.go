package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	mockauth "github.com/jerseyretro/storefront/internal/mocks/auth"
	"github.com/stretchr/testify/require"
)

const (
	adminToken = "admin-token"
	userToken  = "user-token"
)

func testVerifier() mockauth.StaticTokenVerifier {
	return mockauth.StaticTokenVerifier{
		adminToken: {
			Subject: "a1",
			Email:   "admin@jersey.com",
			Claims:  domainauth.Claims{AppMetadata: domainauth.Metadata{Role: domainauth.RoleAdmin}},
		},
		userToken: {
			Subject: "u1",
			Email:   "x@gmail.com",
			Claims: domainauth.Claims{
				UserMetadata: domainauth.Metadata{Role: domainauth.RoleAdmin},
				AppMetadata:  domainauth.Metadata{Role: domainauth.RoleUser},
			},
		},
	}
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
