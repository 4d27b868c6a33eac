package gotrue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrar_Register(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		wantID string
		want   *APIError
	}{
		{name: "bare user", status: 200, body: `{"id":"u1","email":"x@gmail.com"}`, wantID: "u1"},
		{name: "session wrapper", status: 200, body: `{"access_token":"a","user":{"id":"u2","email":"x@gmail.com"}}`, wantID: "u2"},
		{name: "no identity", status: 200, body: `{}`, wantID: ""},
		{name: "already registered", status: 422, body: `{"code":422,"msg":"User already registered"}`,
			want: &APIError{Status: 422, Message: "User already registered"}},
		{name: "weak password", status: 400, body: `{"message":"Password should be at least 6 characters"}`,
			want: &APIError{Status: 400, Message: "Password should be at least 6 characters"}},
		{name: "server error without body", status: 503, body: ``,
			want: &APIError{Status: 503, Message: "Service Unavailable"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/auth/v1/signup", r.URL.Path)
				var body struct {
					Email string         `json:"email"`
					Data  map[string]any `json:"data"`
				}
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, map[string]any{"name": "X", "role": "user"}, body.Data)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			reg, err := NewRegistrar(srv.URL+"/auth/v1/", "anon", nil)
			require.NoError(t, err)
			acct, err := reg.Register(context.Background(), ports.RegisterInput{
				Email: "x@gmail.com", Password: "secret1",
				Metadata: domainauth.Metadata{Name: "X", Role: domainauth.RoleUser},
			})
			if tt.want != nil {
				apiErr, ok := AsAPIError(err)
				require.True(t, ok, "got %v", err)
				assert.Equal(t, tt.want, apiErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, acct.ID)
		})
	}
}

func TestRegistrar_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	reg, err := NewRegistrar(url, "anon", nil)
	require.NoError(t, err)
	_, err = reg.Register(context.Background(), ports.RegisterInput{Email: "x@gmail.com"})
	require.Error(t, err)
	_, ok := AsAPIError(err)
	assert.False(t, ok)
}

func TestAdmin(t *testing.T) {
	users := map[string]map[string]any{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer service", r.Header.Get("Authorization"))
		assert.Equal(t, "service", r.Header.Get("apikey"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/auth/v1/admin/users":
			var in map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, true, in["email_confirm"])
			id := fmt.Sprintf("u%d", len(users)+1)
			u := map[string]any{"id": id, "email": in["email"], "user_metadata": in["user_metadata"], "app_metadata": in["app_metadata"]}
			users[id] = u
			_ = json.NewEncoder(w).Encode(u)
		case r.Method == http.MethodGet && r.URL.Path == "/auth/v1/admin/users":
			list := []map[string]any{}
			if r.URL.Query().Get("page") == "1" {
				for _, u := range users {
					list = append(list, u)
				}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"users": list})
		case r.Method == http.MethodPut:
			id := r.URL.Path[len("/auth/v1/admin/users/"):]
			u, ok := users[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"msg":"User not found"}`))
				return
			}
			var in map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			u["user_metadata"], u["app_metadata"] = in["user_metadata"], in["app_metadata"]
			_ = json.NewEncoder(w).Encode(u)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	admin, err := NewAdmin(srv.URL, "service", nil)
	require.NoError(t, err)
	ctx := context.Background()

	created, err := admin.CreateAccount(ctx, ports.CreateAccountInput{
		Email: "boss@jersey.com", Password: "pw", EmailConfirm: true,
		Claims: domainauth.Claims{UserMetadata: domainauth.Metadata{Name: "Boss"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", created.ID)

	found, err := admin.FindAccountByEmail(ctx, "BOSS@jersey.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "u1", found.ID)

	missing, err := admin.FindAccountByEmail(ctx, "nobody@jersey.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	updated, err := admin.UpdateClaims(ctx, "u1", domainauth.Claims{
		UserMetadata: domainauth.Metadata{Name: "Boss", Role: domainauth.RoleAdmin},
		AppMetadata:  domainauth.Metadata{Role: domainauth.RoleAdmin},
	})
	require.NoError(t, err)
	assert.True(t, domainauth.IsAdmin(updated.Claims))

	_, err = admin.UpdateClaims(ctx, "u9", domainauth.Claims{})
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestNewAdmin_RequiresKey(t *testing.T) {
	_, err := NewAdmin("http://x", "", nil)
	assert.Error(t, err)
}

func TestAPIError_IsProviderRejection(t *testing.T) {
	var err error = fmt.Errorf("signup: %w", &APIError{Status: 422, Message: "User already registered"})
	var rej ports.ProviderRejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, 422, rej.RejectionStatus())
	assert.Equal(t, "User already registered", rej.RejectionMessage())
}
