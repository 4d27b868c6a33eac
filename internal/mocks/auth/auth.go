package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.CredentialVerifier = (*FakeVerifier)(nil)
	_ ports.AdminBootstrapper  = (*FakeBootstrapper)(nil)
	_ ports.SignupClient       = (*FakeSignupClient)(nil)
	_ ports.Slot               = (*MemorySlot)(nil)
	_ ports.AccountRegistrar   = (*FakeRegistrar)(nil)
	_ ports.TokenVerifier      = (*StaticTokenVerifier)(nil)
	_ ports.RateLimiter        = AllowAll{}
)

// ErrNotFound is returned by fakes when an entity is not present.
var ErrNotFound = errors.New("not found")

// FakeVerifier is a scriptable CredentialVerifier. Unset funcs fall back to
// in-memory behavior driven by the Current field.
type FakeVerifier struct {
	CurrentSessionFunc func(ctx context.Context) (*domainauth.Session, error)
	SignInFunc         func(ctx context.Context, email, password string) (*domainauth.Session, error)
	SignOutFunc        func(ctx context.Context) error

	mu          sync.Mutex
	current     *domainauth.Session
	subscribers map[int]func(ports.SessionEvent)
	nextID      int

	SignInCalls  int
	SignOutCalls int
}

// NewFakeVerifier creates a FakeVerifier with no session.
func NewFakeVerifier() *FakeVerifier {
	return &FakeVerifier{subscribers: make(map[int]func(ports.SessionEvent))}
}

// SetCurrent sets the session returned by the default CurrentSession.
func (f *FakeVerifier) SetCurrent(s *domainauth.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = s
}

func (f *FakeVerifier) CurrentSession(ctx context.Context) (*domainauth.Session, error) {
	if f.CurrentSessionFunc != nil {
		return f.CurrentSessionFunc(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, nil
}

func (f *FakeVerifier) SignInWithPassword(ctx context.Context, email, password string) (*domainauth.Session, error) {
	f.mu.Lock()
	f.SignInCalls++
	f.mu.Unlock()
	if f.SignInFunc != nil {
		return f.SignInFunc(ctx, email, password)
	}
	return nil, errors.New("Invalid login credentials")
}

func (f *FakeVerifier) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.SignOutCalls++
	f.mu.Unlock()
	if f.SignOutFunc != nil {
		return f.SignOutFunc(ctx)
	}
	return nil
}

func (f *FakeVerifier) Subscribe(fn func(ports.SessionEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribers == nil {
		f.subscribers = make(map[int]func(ports.SessionEvent))
	}
	id := f.nextID
	f.nextID++
	f.subscribers[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subscribers, id)
	}
}

// Emit delivers ev to every current subscriber synchronously.
func (f *FakeVerifier) Emit(ev ports.SessionEvent) {
	f.mu.Lock()
	subs := make([]func(ports.SessionEvent), 0, len(f.subscribers))
	for _, fn := range f.subscribers {
		subs = append(subs, fn)
	}
	f.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// SubscriberCount reports the number of active subscribers.
func (f *FakeVerifier) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}

// FakeBootstrapper is a scriptable AdminBootstrapper.
type FakeBootstrapper struct {
	DevLoginFunc func(ctx context.Context, email, password string) (*ports.BootstrapUser, error)

	mu    sync.Mutex
	Calls int
}

func (f *FakeBootstrapper) DevLogin(ctx context.Context, email, password string) (*ports.BootstrapUser, error) {
	f.mu.Lock()
	f.Calls++
	f.mu.Unlock()
	if f.DevLoginFunc != nil {
		return f.DevLoginFunc(ctx, email, password)
	}
	return nil, errors.New("Invalid credentials")
}

// CallCount returns the number of DevLogin calls.
func (f *FakeBootstrapper) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls
}

// FakeSignupClient records signup requests.
type FakeSignupClient struct {
	Err  error
	Last ports.SignupInput
}

func (f *FakeSignupClient) SignUp(_ context.Context, in ports.SignupInput) error {
	f.Last = in
	return f.Err
}

// MemorySlot is an in-memory Slot.
type MemorySlot struct {
	mu    sync.Mutex
	data  []byte
	set   bool
	Fails error
}

// NewMemorySlot returns a slot pre-populated with data when data is non-nil.
func NewMemorySlot(data []byte) *MemorySlot {
	return &MemorySlot{data: data, set: data != nil}
}

func (m *MemorySlot) Load(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fails != nil {
		return nil, m.Fails
	}
	if !m.set {
		return nil, ports.ErrSlotEmpty
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemorySlot) Store(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fails != nil {
		return m.Fails
	}
	m.data = append([]byte(nil), data...)
	m.set = true
	return nil
}

func (m *MemorySlot) Remove(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	m.set = false
	return nil
}

// Has reports whether the slot holds a value.
func (m *MemorySlot) Has() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set
}

// FakeRegistrar is a scriptable AccountRegistrar.
type FakeRegistrar struct {
	RegisterFunc func(ctx context.Context, in ports.RegisterInput) (ports.RegisteredAccount, error)
	Last         ports.RegisterInput
}

func (f *FakeRegistrar) Register(ctx context.Context, in ports.RegisterInput) (ports.RegisteredAccount, error) {
	f.Last = in
	if f.RegisterFunc != nil {
		return f.RegisterFunc(ctx, in)
	}
	return ports.RegisteredAccount{ID: "acct-1", Email: in.Email}, nil
}

// StaticTokenVerifier maps raw tokens to principals.
type StaticTokenVerifier map[string]domainauth.Principal

func (s StaticTokenVerifier) Verify(_ context.Context, raw string) (domainauth.Principal, error) {
	p, ok := s[raw]
	if !ok {
		return domainauth.Principal{}, errors.New("invalid token")
	}
	return p, nil
}

// AllowAll is a RateLimiter that never limits.
type AllowAll struct{}

func (AllowAll) Allow(context.Context, string) (bool, error) { return true, nil }

// DenyAll is a RateLimiter that always limits.
type DenyAll struct{}

func (DenyAll) Allow(context.Context, string) (bool, error) { return false, nil }
