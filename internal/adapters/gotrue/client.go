package gotrue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/ports"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

var (
	_ ports.CredentialVerifier = (*Client)(nil)
	_ ports.ProviderRejection  = (*APIError)(nil)
)

// ClientConfig configures the end-user client.
type ClientConfig struct {
	URL        string // project base URL; the /auth/v1 prefix is added when missing
	APIKey     string // public anon key
	HTTPClient *http.Client
	// Slot persists the remote session between process runs. Optional.
	Slot   ports.Slot
	Logger *slog.Logger
}

// Client is the end-user side of the provider: password sign-in, token refresh,
// sign-out and change notifications.
type Client struct {
	t      transport
	slot   ports.Slot
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	loaded  bool
	session *domainauth.Session
	subs    map[int]func(ports.SessionEvent)
	nextSub int

	refreshes singleflight.Group
}

// NewClient creates a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	t, err := newTransport(cfg.URL, cfg.APIKey, cfg.HTTPClient)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		t:      t,
		slot:   cfg.Slot,
		logger: logger.With("component", "gotrue"),
		now:    time.Now,
		subs:   make(map[int]func(ports.SessionEvent)),
	}, nil
}

// Subscribe registers fn for change notifications.
func (c *Client) Subscribe(fn func(ports.SessionEvent)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// CurrentSession returns the persisted session, refreshing its access token when expired.
// A refresh the provider rejects ends the session.
func (c *Client) CurrentSession(ctx context.Context) (*domainauth.Session, error) {
	sess := c.loadSession(ctx)
	if sess == nil {
		return nil, nil
	}
	if tokenFor(sess).Valid() {
		return sess, nil
	}
	return c.refresh(ctx, sess.RefreshToken)
}

// SignInWithPassword exchanges credentials for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domainauth.Session, error) {
	var out wireSession
	if err := c.t.do(ctx, http.MethodPost, "/token?grant_type=password", "",
		map[string]string{"email": email, "password": password}, &out); err != nil {
		return nil, err
	}
	sess := out.session(c.now())
	c.replace(ctx, sess, ports.SessionSignedIn)
	return copySession(sess), nil
}

// SignOut forgets the local session and then revokes it at the provider.
// The local session is gone even when revocation fails.
func (c *Client) SignOut(ctx context.Context) error {
	sess := c.loadSession(ctx)
	if sess == nil {
		return nil
	}
	c.replace(ctx, nil, ports.SessionSignedOut)
	if sess.AccessToken == "" {
		return nil
	}
	if err := c.t.do(ctx, http.MethodPost, "/logout", sess.AccessToken, nil, nil); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// User fetches the provider's view of the signed-in user.
func (c *Client) User(ctx context.Context) (*domainauth.Session, error) {
	sess, err := c.CurrentSession(ctx)
	if err != nil || sess == nil {
		return nil, err
	}
	var u wireUser
	if err := c.t.do(ctx, http.MethodGet, "/user", sess.AccessToken, nil, &u); err != nil {
		return nil, err
	}
	claims := u.claims()
	sess.ID, sess.Email, sess.Claims = u.ID, u.Email, claims
	if claims.UserMetadata.Name != "" {
		sess.Name = claims.UserMetadata.Name
	}
	return sess, nil
}

// TokenSource exposes the current access token as an oauth2.TokenSource,
// refreshing it on demand.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return tokenSourceFunc(func() (*oauth2.Token, error) {
		sess, err := c.CurrentSession(ctx)
		if err != nil {
			return nil, err
		}
		if sess == nil {
			return nil, errors.New("not signed in")
		}
		return tokenFor(sess), nil
	})
}

type tokenSourceFunc func() (*oauth2.Token, error)

func (f tokenSourceFunc) Token() (*oauth2.Token, error) { return f() }

func (c *Client) refresh(ctx context.Context, refreshToken string) (*domainauth.Session, error) {
	if refreshToken == "" {
		c.replace(ctx, nil, ports.SessionSignedOut)
		return nil, nil
	}
	v, err, _ := c.refreshes.Do(refreshToken, func() (any, error) {
		var out wireSession
		err := c.t.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", "",
			map[string]string{"refresh_token": refreshToken}, &out)
		if err != nil {
			if apiErr, ok := AsAPIError(err); ok && apiErr.IsClientError() {
				c.logger.InfoContext(ctx, "refresh rejected, ending session", "status", apiErr.Status)
				c.replaceIfCurrent(ctx, refreshToken, nil, ports.SessionSignedOut)
				return (*domainauth.Session)(nil), nil
			}
			return nil, err
		}
		sess := out.session(c.now())
		if !c.replaceIfCurrent(ctx, refreshToken, sess, ports.SessionTokenRefreshed) {
			return c.snapshot(), nil
		}
		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	return copySession(v.(*domainauth.Session)), nil
}

func (c *Client) snapshot() *domainauth.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copySession(c.session)
}

// loadSession returns a copy of the in-memory session, reading the slot on first use.
func (c *Client) loadSession(ctx context.Context) *domainauth.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		c.loaded = true
		c.session = c.readSlot(ctx)
	}
	return copySession(c.session)
}

// readSlot is called with mu held.
func (c *Client) readSlot(ctx context.Context) *domainauth.Session {
	if c.slot == nil {
		return nil
	}
	raw, err := c.slot.Load(ctx)
	if err != nil {
		if !errors.Is(err, ports.ErrSlotEmpty) {
			c.logger.WarnContext(ctx, "read persisted session", "error", err)
		}
		return nil
	}
	var sess domainauth.Session
	if err := json.Unmarshal(raw, &sess); err != nil || sess.ID == "" {
		c.logger.WarnContext(ctx, "discarding unreadable persisted session", "error", err)
		if rmErr := c.slot.Remove(ctx); rmErr != nil {
			c.logger.WarnContext(ctx, "remove persisted session", "error", rmErr)
		}
		return nil
	}
	sess.Origin = domainauth.OriginRemote
	return &sess
}

func (c *Client) replace(ctx context.Context, sess *domainauth.Session, kind ports.SessionEventKind) {
	c.mu.Lock()
	c.loaded = true
	c.session = copySession(sess)
	c.persist(ctx, sess)
	subs := c.subscribers()
	c.mu.Unlock()
	c.emit(subs, ports.SessionEvent{Kind: kind, Session: sess})
}

// replaceIfCurrent applies a refresh outcome only if the session it started from is still current.
func (c *Client) replaceIfCurrent(ctx context.Context, refreshToken string, sess *domainauth.Session, kind ports.SessionEventKind) bool {
	c.mu.Lock()
	if c.session == nil || c.session.RefreshToken != refreshToken {
		c.mu.Unlock()
		return false
	}
	c.session = copySession(sess)
	c.persist(ctx, sess)
	subs := c.subscribers()
	c.mu.Unlock()
	c.emit(subs, ports.SessionEvent{Kind: kind, Session: copySession(sess)})
	return true
}

// persist is called with mu held.
func (c *Client) persist(ctx context.Context, sess *domainauth.Session) {
	if c.slot == nil {
		return
	}
	var err error
	if sess == nil {
		err = c.slot.Remove(ctx)
	} else {
		var raw []byte
		if raw, err = json.Marshal(sess); err == nil {
			err = c.slot.Store(ctx, raw)
		}
	}
	if err != nil {
		c.logger.WarnContext(ctx, "persist session", "error", err)
	}
}

// subscribers is called with mu held.
func (c *Client) subscribers() []func(ports.SessionEvent) {
	out := make([]func(ports.SessionEvent), 0, len(c.subs))
	for _, fn := range c.subs {
		out = append(out, fn)
	}
	return out
}

func (c *Client) emit(subs []func(ports.SessionEvent), ev ports.SessionEvent) {
	for _, fn := range subs {
		fn(ports.SessionEvent{Kind: ev.Kind, Session: copySession(ev.Session)})
	}
}

func tokenFor(s *domainauth.Session) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: s.RefreshToken,
		Expiry:       s.ExpiresAt,
	}
}

func copySession(s *domainauth.Session) *domainauth.Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
