// Package session maintains the process-wide "current user" view. A single
// writer - the synchronizer's event pump - updates the cell from provider
// session events; everyone else reads consistent snapshots or subscribes.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"gesher/internal/identity"
	"gesher/internal/profile"
	"gesher/internal/session/cache"
	id "gesher/pkg/domain"
	"gesher/pkg/platform/sentinel"
)

// User is the cached current-user view. It is rebuilt from the provider and
// the profile store on every session event; the persisted snapshot only
// bridges cold starts.
type User struct {
	Phone     id.Phone
	FirstName string
	FullName  string
}

// eventBuffer bounds the queue between the provider callback and the pump.
// Session events are rare; the buffer only has to absorb a profile fetch.
const eventBuffer = 16

// Synchronizer subscribes to the identity provider's session stream and owns
// the current-user cell for the lifetime of the process.
type Synchronizer struct {
	provider identity.Provider
	profiles profile.Store
	cache    cache.Store
	logger   *slog.Logger

	mu      sync.RWMutex
	current *User
	loading bool
	subs    map[int]func(*User)
	nextSub int

	events      chan *identity.Handle
	unsubscribe func()
	done        chan struct{}
	flight      singleflight.Group
}

// New constructs a synchronizer. It starts in the loading state; Start must
// be called to attach it to the provider.
func New(provider identity.Provider, profiles profile.Store, cacheStore cache.Store, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		provider: provider,
		profiles: profiles,
		cache:    cacheStore,
		logger:   logger,
		loading:  true,
		subs:     make(map[int]func(*User)),
		events:   make(chan *identity.Handle, eventBuffer),
		done:     make(chan struct{}),
	}
}

// Start loads the persisted snapshot as the provisional user, installs the
// provider subscription and launches the event pump. The subscription lives
// until ctx is cancelled; events arrive at arbitrary times, not just now.
func (s *Synchronizer) Start(ctx context.Context) {
	if snap, err := s.cache.Load(ctx); err == nil {
		s.mu.Lock()
		s.current = &User{Phone: snap.Phone, FirstName: snap.FirstName, FullName: snap.FullName}
		s.mu.Unlock()
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "session cache load failed", "error", err)
	}

	// The callback only enqueues so the provider is never blocked by a
	// profile fetch.
	s.unsubscribe = s.provider.OnSessionChange(func(h *identity.Handle) {
		select {
		case s.events <- h:
		case <-ctx.Done():
		}
	})

	go s.pump(ctx)
}

func (s *Synchronizer) pump(ctx context.Context) {
	defer close(s.done)
	defer s.unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case h := <-s.events:
			s.apply(ctx, h)
		}
	}
}

// Wait blocks until the pump has exited after context cancellation.
func (s *Synchronizer) Wait() {
	<-s.done
}

// apply resolves one session event into the cell. The loading flag flips to
// false exactly once per event so the UI can tell "still resolving" from
// "resolved to signed-out".
func (s *Synchronizer) apply(ctx context.Context, h *identity.Handle) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	if h == nil {
		s.clear(ctx)
		return
	}

	phone, ok := identity.PhoneFromAccountID(h.AccountID)
	if !ok {
		// Not a phone identity (a genuine email account, or foreign data).
		// Degrade to signed-out rather than fail.
		s.logger.InfoContext(ctx, "session account outside phone namespace, treating as signed out")
		s.clear(ctx)
		return
	}

	user := &User{Phone: phone}
	p, err := s.fetchProfile(ctx, phone)
	if err != nil {
		// A missing or unreadable profile must not lock the user out; keep
		// the bare phone and let the UI degrade.
		s.logger.ErrorContext(ctx, "profile fetch failed, keeping bare session user",
			"phone", phone.Display(),
			"error", err,
		)
	} else {
		user.FirstName = p.FirstName
		user.FullName = p.FullName()
		snap := &cache.Snapshot{Phone: phone, FirstName: user.FirstName, FullName: user.FullName}
		if err := s.cache.Save(ctx, snap); err != nil {
			s.logger.WarnContext(ctx, "session cache save failed", "error", err)
		}
	}

	s.set(user)
}

// fetchProfile dedupes concurrent lookups for the same phone; a burst of
// session events resolves with a single store read.
func (s *Synchronizer) fetchProfile(ctx context.Context, phone id.Phone) (*profile.Profile, error) {
	v, err, _ := s.flight.Do(phone.String(), func() (any, error) {
		return s.profiles.Get(ctx, phone)
	})
	if err != nil {
		return nil, err
	}
	return v.(*profile.Profile), nil
}

// ClearNow clears the cell and the persisted cache synchronously. Sign-out
// uses it so the caller never observes stale signed-in state while the
// provider's own session event is still in flight.
func (s *Synchronizer) ClearNow(ctx context.Context) {
	s.clear(ctx)
}

func (s *Synchronizer) clear(ctx context.Context) {
	if err := s.cache.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "session cache clear failed", "error", err)
	}
	s.set(nil)
}

// set is the single write path for the cell.
func (s *Synchronizer) set(user *User) {
	s.mu.Lock()
	s.current = user
	s.loading = false
	fns := make([]func(*User), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(cloneUser(user))
	}
}

// Current returns a snapshot of the signed-in user. The second return is
// false when signed out.
func (s *Synchronizer) Current() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return User{}, false
	}
	return *s.current, true
}

// Loading reports whether the first session event is still being resolved.
func (s *Synchronizer) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Subscribe registers a listener invoked with a consistent snapshot on every
// cell change. The returned func removes the listener.
func (s *Synchronizer) Subscribe(fn func(*User)) func() {
	s.mu.Lock()
	key := s.nextSub
	s.nextSub++
	s.subs[key] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, key)
		s.mu.Unlock()
	}
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
