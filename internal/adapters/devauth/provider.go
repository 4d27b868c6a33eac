// Package devauth is an in-process stand-in for the hosted auth provider, used when AUTH_MODE=mock.
// It keeps accounts in memory and speaks the same REST dialect under /auth/v1.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jerseyretro/storefront/internal/adapters/gotrue"
	"github.com/jerseyretro/storefront/internal/adapters/oidc"
	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/ports"
	"golang.org/x/crypto/bcrypt"
)

var (
	_ ports.AccountRegistrar = (*Provider)(nil)
	_ ports.AccountAdmin     = (*Provider)(nil)
)

const minPasswordLen = 6

// Config controls the dev provider.
type Config struct {
	JWTSecret  string
	Issuer     string
	AccessTTL  time.Duration // default 1h
	BcryptCost int           // default bcrypt.DefaultCost
	Logger     *slog.Logger
}

type account struct {
	id        string
	email     string
	hash      []byte
	claims    domainauth.Claims
	createdAt time.Time
}

// Provider holds dev accounts and issues HS256 access tokens.
type Provider struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	cost      int
	logger    *slog.Logger
	verifier  *oidc.HS256Verifier
	now       func() time.Time

	mu       sync.Mutex
	byEmail  map[string]*account
	byID     map[string]*account
	refreshs map[string]string // refresh token -> account id
}

// NewProvider constructs a dev provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("dev auth: JWT secret is required")
	}
	verifier, err := oidc.NewHS256Verifier(oidc.HS256Config{Secret: cfg.JWTSecret, Issuer: cfg.Issuer})
	if err != nil {
		return nil, err
	}
	ttl := cfg.AccessTTL
	if ttl == 0 {
		ttl = time.Hour
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		secret:    []byte(cfg.JWTSecret),
		issuer:    cfg.Issuer,
		accessTTL: ttl,
		cost:      cost,
		logger:    logger.With("component", "devauth"),
		verifier:  verifier,
		now:       time.Now,
		byEmail:   make(map[string]*account),
		byID:      make(map[string]*account),
		refreshs:  make(map[string]string),
	}, nil
}

// Verifier returns the token verifier matching the tokens this provider issues.
func (p *Provider) Verifier() *oidc.HS256Verifier { return p.verifier }

// Register creates an account with self-reported metadata.
func (p *Provider) Register(_ context.Context, in ports.RegisterInput) (ports.RegisteredAccount, error) {
	acct, err := p.create(in.Email, in.Password, domainauth.Claims{UserMetadata: in.Metadata})
	if err != nil {
		return ports.RegisteredAccount{}, err
	}
	p.logger.Info("dev account registered", "email", acct.email)
	return ports.RegisteredAccount{ID: acct.id, Email: acct.email}, nil
}

// CreateAccount creates an account with both metadata layers.
func (p *Provider) CreateAccount(_ context.Context, in ports.CreateAccountInput) (ports.AdminAccount, error) {
	acct, err := p.create(in.Email, in.Password, in.Claims)
	if err != nil {
		return ports.AdminAccount{}, err
	}
	return acct.admin(), nil
}

// FindAccountByEmail returns nil when no account matches.
func (p *Provider) FindAccountByEmail(_ context.Context, email string) (*ports.AdminAccount, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	acct, ok := p.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	out := acct.admin()
	return &out, nil
}

// UpdateClaims replaces both metadata layers.
func (p *Provider) UpdateClaims(_ context.Context, id string, claims domainauth.Claims) (ports.AdminAccount, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	acct, ok := p.byID[id]
	if !ok {
		return ports.AdminAccount{}, &gotrue.APIError{Status: http.StatusNotFound, Message: "User not found"}
	}
	acct.claims = claims
	return acct.admin(), nil
}

func (p *Provider) create(email, password string, claims domainauth.Claims) (*account, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, &gotrue.APIError{Status: http.StatusBadRequest, Message: "Unable to validate email address: invalid format"}
	}
	if len(password) < minPasswordLen {
		return nil, &gotrue.APIError{
			Status:  http.StatusUnprocessableEntity,
			Message: fmt.Sprintf("Password should be at least %d characters.", minPasswordLen),
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.byEmail[email]; exists {
		return nil, &gotrue.APIError{Status: http.StatusUnprocessableEntity, Message: "User already registered"}
	}
	acct := &account{id: uuid.NewString(), email: email, hash: hash, claims: claims, createdAt: p.now()}
	p.byEmail[email] = acct
	p.byID[acct.id] = acct
	return acct, nil
}

// tokens is the token endpoint response.
type tokens struct {
	AccessToken  string  `json:"access_token"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    int64   `json:"expires_in"`
	ExpiresAt    int64   `json:"expires_at"`
	RefreshToken string  `json:"refresh_token"`
	User         userDoc `json:"user"`
}

type userDoc struct {
	ID           string         `json:"id"`
	Aud          string         `json:"aud"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	AppMetadata  map[string]any `json:"app_metadata"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (a *account) doc() userDoc {
	app := a.claims.AppMetadata.Map()
	app["provider"] = "email"
	return userDoc{
		ID:           a.id,
		Aud:          oidc.DefaultAudience,
		Email:        a.email,
		UserMetadata: a.claims.UserMetadata.Map(),
		AppMetadata:  app,
		CreatedAt:    a.createdAt,
	}
}

func (a *account) admin() ports.AdminAccount {
	return ports.AdminAccount{ID: a.id, Email: a.email, Claims: a.claims}
}

var errInvalidGrant = &gotrue.APIError{Status: http.StatusBadRequest, Message: "Invalid login credentials"}

// signIn verifies a password and issues tokens.
func (p *Provider) signIn(email, password string) (tokens, error) {
	p.mu.Lock()
	acct, ok := p.byEmail[normalizeEmail(email)]
	p.mu.Unlock()
	if !ok {
		return tokens{}, errInvalidGrant
	}
	if bcrypt.CompareHashAndPassword(acct.hash, []byte(password)) != nil {
		return tokens{}, errInvalidGrant
	}
	return p.issue(acct)
}

// refresh rotates a refresh token.
func (p *Provider) refresh(token string) (tokens, error) {
	p.mu.Lock()
	id, ok := p.refreshs[token]
	delete(p.refreshs, token)
	acct := p.byID[id]
	p.mu.Unlock()
	if !ok || acct == nil {
		return tokens{}, &gotrue.APIError{Status: http.StatusBadRequest, Message: "Invalid Refresh Token: Refresh Token Not Found"}
	}
	return p.issue(acct)
}

// revoke drops every refresh token of the subject.
func (p *Provider) revoke(subject string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for tok, id := range p.refreshs {
		if id == subject {
			delete(p.refreshs, tok)
		}
	}
}

func (p *Provider) issue(acct *account) (tokens, error) {
	now := p.now()
	exp := now.Add(p.accessTTL)

	p.mu.Lock()
	doc := acct.doc()
	p.mu.Unlock()

	claims := oidc.AccessClaims{
		Email:        doc.Email,
		Role:         oidc.DefaultAudience,
		UserMetadata: doc.UserMetadata,
		AppMetadata:  doc.AppMetadata,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acct.id,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{oidc.DefaultAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return tokens{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := randomString(40)
	if err != nil {
		return tokens{}, fmt.Errorf("generate refresh token: %w", err)
	}

	p.mu.Lock()
	p.refreshs[refresh] = acct.id
	p.mu.Unlock()

	return tokens{
		AccessToken:  access,
		TokenType:    "bearer",
		ExpiresIn:    int64(p.accessTTL / time.Second),
		ExpiresAt:    exp.Unix(),
		RefreshToken: refresh,
		User:         doc,
	}, nil
}

func (p *Provider) user(id string) (userDoc, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	acct, ok := p.byID[id]
	if !ok {
		return userDoc{}, false
	}
	return acct.doc(), true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, (n*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
