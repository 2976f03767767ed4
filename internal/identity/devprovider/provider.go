// Package devprovider is an in-memory identity provider used by tests and
// local runs. It mimics the behavior of a managed provider: accounts live in
// an email-style namespace, account creation establishes a session, and
// session state is pushed to subscribers.
//
// Password checks are plain equality; this stands in for a managed provider,
// not for a password store.
package devprovider

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"gesher/internal/identity"
	id "gesher/pkg/domain"
)

type account struct {
	uid      string
	password string
}

// Provider implements identity.Provider backed by process memory.
type Provider struct {
	mu        sync.Mutex
	accounts  map[id.AccountID]account
	current   *identity.Handle
	listeners map[int]func(*identity.Handle)
	nextID    int
}

var _ identity.Provider = (*Provider)(nil)

func New() *Provider {
	return &Provider{
		accounts:  make(map[id.AccountID]account),
		listeners: make(map[int]func(*identity.Handle)),
	}
}

// SeedAccount provisions an account without establishing a session, the way
// out-of-band tooling would. Returns the provider UID.
func (p *Provider) SeedAccount(accountID id.AccountID, password string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	uid := uuid.NewString()
	p.accounts[accountID] = account{uid: uid, password: password}
	return uid
}

// HasAccount reports whether an account exists. Used by tests asserting the
// migration side effect.
func (p *Provider) HasAccount(accountID id.AccountID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.accounts[accountID]
	return ok
}

func (p *Provider) CreateAccount(ctx context.Context, accountID id.AccountID, password string) (identity.Handle, error) {
	p.mu.Lock()
	if _, exists := p.accounts[accountID]; exists {
		p.mu.Unlock()
		return identity.Handle{}, identity.ErrAccountExists
	}
	acc := account{uid: uuid.NewString(), password: password}
	p.accounts[accountID] = acc
	handle := identity.Handle{UID: acc.uid, AccountID: accountID}
	// Managed providers establish a session for a freshly created account.
	p.current = &handle
	fns, snapshot := p.listenerSnapshot()
	p.mu.Unlock()

	notify(fns, snapshot)
	return handle, nil
}

func (p *Provider) SignIn(ctx context.Context, accountID id.AccountID, password string) error {
	p.mu.Lock()
	acc, ok := p.accounts[accountID]
	if !ok {
		p.mu.Unlock()
		return identity.ErrAccountNotFound
	}
	if acc.password != password {
		p.mu.Unlock()
		return identity.ErrInvalidPassword
	}
	p.current = &identity.Handle{UID: acc.uid, AccountID: accountID}
	fns, snapshot := p.listenerSnapshot()
	p.mu.Unlock()

	notify(fns, snapshot)
	return nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	fns, snapshot := p.listenerSnapshot()
	p.mu.Unlock()

	notify(fns, snapshot)
	return nil
}

// OnSessionChange registers a listener and delivers the current session
// state to it immediately, matching managed-provider subscription semantics.
func (p *Provider) OnSessionChange(fn func(*identity.Handle)) func() {
	p.mu.Lock()
	key := p.nextID
	p.nextID++
	p.listeners[key] = fn
	snapshot := cloneHandle(p.current)
	p.mu.Unlock()

	fn(snapshot)
	return func() {
		p.mu.Lock()
		delete(p.listeners, key)
		p.mu.Unlock()
	}
}

// listenerSnapshot copies the listener set and current handle under the
// caller's lock so notification can happen outside it.
func (p *Provider) listenerSnapshot() ([]func(*identity.Handle), *identity.Handle) {
	fns := make([]func(*identity.Handle), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	return fns, cloneHandle(p.current)
}

func notify(fns []func(*identity.Handle), h *identity.Handle) {
	for _, fn := range fns {
		fn(cloneHandle(h))
	}
}

func cloneHandle(h *identity.Handle) *identity.Handle {
	if h == nil {
		return nil
	}
	clone := *h
	return &clone
}
