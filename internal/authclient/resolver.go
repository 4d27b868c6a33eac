// Package authclient reconciles the remote provider session with the locally
// fabricated admin session and publishes the resulting auth state.
package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/ports"
)

// FallbackSlotName is the slot holding the local admin session.
const FallbackSlotName = "dev_admin_session"

// Options configures a Resolver.
type Options struct {
	Verifier  ports.CredentialVerifier // Required
	Bootstrap ports.AdminBootstrapper  // Optional: no second tier when nil
	Signup    ports.SignupClient       // Optional: SignUp fails when nil
	Fallback  ports.Slot               // Optional: fallback sessions are not persisted when nil
	// BootstrapEmail is the only address allowed to use the bootstrap tier.
	BootstrapEmail string
	Logger         *slog.Logger
}

// State is a snapshot of the resolver's auth state.
type State struct {
	Session *domainauth.Session
	IsAdmin bool
	Loading bool
}

// Resolver owns the single current-session slot.
type Resolver struct {
	verifier       ports.CredentialVerifier
	bootstrap      ports.AdminBootstrapper
	signup         ports.SignupClient
	fallback       ports.Slot
	bootstrapEmail string
	logger         *slog.Logger

	mu      sync.Mutex
	state   State
	// decided counts writes that outrank the initial resolution: sign-in
	// notifications, committed sign-ins and sign-outs.
	decided uint64
	seq     uint64 // latest issued sign-in sequence
	started bool
	closed  bool
	unsub   func()
	subs    map[int]chan State
	nextSub int
}

// New constructs a Resolver in the loading state. Call Start to resolve the initial session.
func New(opts Options) *Resolver {
	if opts.Verifier == nil {
		panic("CredentialVerifier is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		verifier:       opts.Verifier,
		bootstrap:      opts.Bootstrap,
		signup:         opts.Signup,
		fallback:       opts.Fallback,
		bootstrapEmail: opts.BootstrapEmail,
		logger:         logger.With("component", "authclient"),
		state:          State{Loading: true},
		subs:           make(map[int]chan State),
	}
}

// Start subscribes to provider notifications and resolves the initial session:
// the remote session when present, else a valid fallback session. Only the first call has effect.
func (r *Resolver) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started || r.closed {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	unsub := r.verifier.Subscribe(r.onEvent)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		unsub()
		return
	}
	r.unsub = unsub
	startDecided := r.decided
	r.mu.Unlock()

	next := r.initialState(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if r.decided != startDecided {
		r.logger.DebugContext(ctx, "initial session superseded by a newer session")
		return
	}
	r.setLocked(next)
}

func (r *Resolver) initialState(ctx context.Context) State {
	sess, err := r.verifier.CurrentSession(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "auth provider unavailable, treating as signed out", "error", err)
		sess = nil
	}
	if sess != nil {
		return remoteState(sess)
	}
	if fb := r.loadFallback(ctx); fb != nil {
		return fallbackState(fb)
	}
	return State{}
}

func (r *Resolver) loadFallback(ctx context.Context) *domainauth.Session {
	if r.fallback == nil {
		return nil
	}
	raw, err := r.fallback.Load(ctx)
	if errors.Is(err, ports.ErrSlotEmpty) {
		return nil
	}
	if err != nil {
		r.logger.WarnContext(ctx, "fallback session unreadable", "error", err)
		return nil
	}
	var sess domainauth.Session
	if err := json.Unmarshal(raw, &sess); err != nil || sess.ID == "" {
		r.logger.WarnContext(ctx, "discarding corrupt fallback session", "error", err)
		if rerr := r.fallback.Remove(ctx); rerr != nil {
			r.logger.WarnContext(ctx, "failed to remove corrupt fallback session", "error", rerr)
		}
		return nil
	}
	return &sess
}

func (r *Resolver) onEvent(ev ports.SessionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.logger.Debug("auth state change", "event", string(ev.Kind))
	if ev.Session != nil {
		r.decided++
	}
	r.setLocked(remoteState(ev.Session))
}

// SignIn authenticates with the provider, falling back to the admin bootstrap
// endpoint for the bootstrap address. A result overtaken by a newer SignIn or
// SignOut is discarded and ErrSuperseded returned.
func (r *Resolver) SignIn(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return &Error{Kind: KindValidation, Message: "Email and password are required"}
	}
	seq := r.nextSeq()

	sess, perr := r.verifier.SignInWithPassword(ctx, email, password)
	if perr == nil && sess != nil {
		return r.commit(ctx, seq, remoteState(sess), nil)
	}

	if r.bootstrap == nil || r.bootstrapEmail == "" || email != r.bootstrapEmail {
		if r.superseded(seq) {
			return ErrSuperseded
		}
		if perr == nil {
			return &Error{Kind: KindUnexpected, Message: "Login failed"}
		}
		return classify(perr, KindInvalidCredentials)
	}

	user, berr := r.bootstrap.DevLogin(ctx, email, password)
	if berr != nil || user == nil {
		if r.superseded(seq) {
			return ErrSuperseded
		}
		switch {
		case berr != nil:
			return classify(berr, KindInvalidCredentials)
		case perr != nil:
			return classify(perr, KindInvalidCredentials)
		default:
			return &Error{Kind: KindUnexpected, Message: "Login failed"}
		}
	}

	fb := &domainauth.Session{
		ID:     user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Origin: domainauth.OriginLocalFallback,
		Claims: domainauth.Claims{
			UserMetadata: user.UserMetadata,
			AppMetadata:  domainauth.Metadata{Role: domainauth.RoleAdmin},
		},
	}
	return r.commit(ctx, seq, fallbackState(fb), fb)
}

// commit applies next when seq is still the latest sign-in. persist, when set,
// is written to the fallback slot under the same lock.
func (r *Resolver) commit(ctx context.Context, seq uint64, next State, persist *domainauth.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.seq {
		return ErrSuperseded
	}
	if persist != nil && r.fallback != nil {
		raw, err := json.Marshal(persist)
		if err == nil {
			err = r.fallback.Store(ctx, raw)
		}
		if err != nil {
			r.logger.WarnContext(ctx, "failed to persist fallback session", "error", err)
		}
	}
	r.decided++
	r.setLocked(next)
	return nil
}

// SignUp registers a new account through the signup endpoint. The current session is untouched.
func (r *Resolver) SignUp(ctx context.Context, email, password, name string) error {
	if r.signup == nil {
		return &Error{Kind: KindUnexpected, Message: "Signup failed"}
	}
	if err := r.signup.SignUp(ctx, ports.SignupInput{Email: email, Password: password, Name: name}); err != nil {
		return classify(err, KindValidation)
	}
	return nil
}

// SignOut clears local state and the fallback slot, publishes the signed-out
// state, then revokes the remote session. Revocation failures are only logged.
func (r *Resolver) SignOut(ctx context.Context) {
	r.mu.Lock()
	r.seq++
	r.decided++
	if r.fallback != nil {
		if err := r.fallback.Remove(ctx); err != nil {
			r.logger.WarnContext(ctx, "failed to remove fallback session", "error", err)
		}
	}
	r.setLocked(State{})
	r.mu.Unlock()

	if err := r.verifier.SignOut(ctx); err != nil {
		r.logger.WarnContext(ctx, "remote sign-out failed", "error", err)
	}
}

// State returns the current snapshot.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.clone()
}

// Subscribe returns a channel carrying the latest state, starting with the
// current one. Slow readers only miss intermediate states. The returned func
// closes the channel.
func (r *Resolver) Subscribe() (<-chan State, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan State, 1)
	if r.closed {
		close(ch)
		return ch, func() {}
	}
	ch <- r.state.clone()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if c, ok := r.subs[id]; ok {
				delete(r.subs, id)
				close(c)
			}
		})
	}
}

// Close releases the provider subscription and closes every subscriber channel.
func (r *Resolver) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	unsub := r.unsub
	r.unsub = nil
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
	r.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (r *Resolver) nextSeq() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq
}

func (r *Resolver) superseded(seq uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return seq != r.seq
}

// setLocked replaces the state and publishes it. r.mu must be held.
func (r *Resolver) setLocked(next State) {
	next.Loading = false
	r.state = next
	for _, ch := range r.subs {
		select {
		case <-ch:
		default:
		}
		ch <- next.clone()
	}
}

func remoteState(sess *domainauth.Session) State {
	if sess == nil {
		return State{}
	}
	s := *sess
	s.Origin = domainauth.OriginRemote
	return State{Session: &s, IsAdmin: domainauth.IsAdmin(s.Claims)}
}

// fallbackState adopts a locally fabricated session. It never carries tokens
// and always holds the admin flag.
func fallbackState(sess *domainauth.Session) State {
	s := *sess
	s.Origin = domainauth.OriginLocalFallback
	s.AccessToken = ""
	s.RefreshToken = ""
	s.ExpiresAt = time.Time{}
	return State{Session: &s, IsAdmin: true}
}

func (s State) clone() State {
	if s.Session != nil {
		cp := *s.Session
		s.Session = &cp
	}
	return s
}
