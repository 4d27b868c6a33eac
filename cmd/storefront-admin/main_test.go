package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jerseyretro/storefront/config"
	"github.com/jerseyretro/storefront/internal/adapters/gotrue"
	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/domain/model"
	apperrors "github.com/jerseyretro/storefront/internal/errors"
	"github.com/jerseyretro/storefront/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdminAccounts struct {
	created []service.CreateAdminInput
	err     error
}

func (f *fakeAdminAccounts) CreateAdmin(_ context.Context, in service.CreateAdminInput) (*model.User, error) {
	f.created = append(f.created, in)
	if f.err != nil {
		return nil, f.err
	}
	return &model.User{ID: "u1", Email: in.Email, Name: in.Name, Role: domainauth.RoleAdmin}, nil
}

func (f *fakeAdminAccounts) MakeAdmin(_ context.Context, email string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.User{ID: "u2", Email: email, Role: domainauth.RoleAdmin}, nil
}

func TestPrintUsageListsCommandsSorted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))

	out := buf.String()
	require.Contains(t, out, "Usage: storefront-admin")
	create := strings.Index(out, "create-admin")
	migrate := strings.Index(out, "migrate")
	require.True(t, create > 0 && migrate > create, out)
}

func TestParseCreateAdminFlags(t *testing.T) {
	opts, err := parseCreateAdminFlags([]string{"-email", "admin@jersey.com", "-password", "admin123", "-name", "Admin Jersey"})
	require.NoError(t, err)
	assert.Equal(t, "admin@jersey.com", opts.Email)
	assert.Equal(t, defaultCommandTimeout, opts.Timeout)

	_, err = parseCreateAdminFlags([]string{"-password", "x"})
	require.EqualError(t, err, "--email is required")

	_, err = parseCreateAdminFlags([]string{"-email", "a@b.c", "-timeout", "0s"})
	require.Error(t, err)
}

func TestParseMakeAdminFlags(t *testing.T) {
	opts, err := parseMakeAdminFlags([]string{"-email", "ops@jersey.com", "-allow-remote"})
	require.NoError(t, err)
	assert.True(t, opts.AllowRemote)

	_, err = parseMakeAdminFlags(nil)
	require.Error(t, err)
}

func TestCreateAdminWritesSummary(t *testing.T) {
	svc := &fakeAdminAccounts{}
	var out bytes.Buffer
	err := createAdmin(context.Background(), svc, createAdminOptions{Email: "admin@jersey.com", Name: "Admin Jersey"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "admin ready: admin@jersey.com (Admin Jersey) id=u1\n", out.String())

	svc.err = apperrors.Upstream(errors.New("boom"), "provider unavailable")
	err = createAdmin(context.Background(), svc, createAdminOptions{Email: "admin@jersey.com"}, &out)
	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
}

func TestMakeAdmin(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, makeAdmin(context.Background(), &fakeAdminAccounts{}, "ops@jersey.com", &out))
	assert.Equal(t, "ops@jersey.com is now admin\n", out.String())

	err := makeAdmin(context.Background(), &fakeAdminAccounts{err: apperrors.NotFound("user not found")}, "x@y.z", &out)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestProviderAdmin(t *testing.T) {
	acct, err := providerAdmin(config.AuthConfig{Mode: config.AuthModeMock})
	require.NoError(t, err)
	assert.Nil(t, acct)

	acct, err = providerAdmin(config.AuthConfig{
		Mode:   config.AuthModeGoTrue,
		GoTrue: config.GoTrueConfig{URL: "https://project.example.com", ServiceKey: "service"},
	})
	require.NoError(t, err)
	assert.IsType(t, &gotrue.Admin{}, acct)
}

func TestGuardRemoteHost(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, guardRemoteHost("localhost", false, strings.NewReader(""), &out))

	err := guardRemoteHost("db.prod.example.com", false, strings.NewReader(""), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--allow-remote")

	require.NoError(t, guardRemoteHost("db.prod.example.com", true, strings.NewReader("db.prod.example.com\n"), &out))

	err = guardRemoteHost("db.prod.example.com", true, strings.NewReader("nope\n"), &out)
	require.EqualError(t, err, "aborted by user")
}

func TestIsLikelyRemoteHost(t *testing.T) {
	tests := map[string]bool{
		"":                  false,
		"localhost":         false,
		"127.0.0.1":         false,
		"::1":               false,
		"devbox.local":      false,
		"10.0.0.5":          true,
		"rds.amazonaws.com": true,
	}
	for host, want := range tests {
		assert.Equal(t, want, isLikelyRemoteHost(host), host)
	}
}
