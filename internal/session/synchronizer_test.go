package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gesher/internal/identity"
	"gesher/internal/profile"
	"gesher/internal/session/cache"
	id "gesher/pkg/domain"
	"gesher/pkg/platform/sentinel"
)

// fakeProvider delivers session events on demand so tests control timing.
// Unlike a real provider it does not deliver the current state on subscribe
// unless told to, which lets tests observe the provisional cold-start user.
type fakeProvider struct {
	mu sync.Mutex
	fn func(*identity.Handle)
}

func (f *fakeProvider) CreateAccount(ctx context.Context, accountID id.AccountID, password string) (identity.Handle, error) {
	return identity.Handle{}, errors.New("not implemented")
}

func (f *fakeProvider) SignIn(ctx context.Context, accountID id.AccountID, password string) error {
	return errors.New("not implemented")
}

func (f *fakeProvider) SignOut(ctx context.Context) error { return nil }

func (f *fakeProvider) OnSessionChange(fn func(*identity.Handle)) func() {
	f.mu.Lock()
	f.fn = fn
	f.mu.Unlock()
	return func() {}
}

func (f *fakeProvider) emit(h *identity.Handle) {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	if fn != nil {
		fn(h)
	}
}

// failingProfiles simulates an unreachable profile store.
type failingProfiles struct{}

func (failingProfiles) Get(ctx context.Context, phone id.Phone) (*profile.Profile, error) {
	return nil, errors.New("store unreachable")
}

func (failingProfiles) Save(ctx context.Context, p *profile.Profile, owner identity.Handle) error {
	return errors.New("store unreachable")
}

func (failingProfiles) IsRegistered(ctx context.Context, phone id.Phone) (bool, error) {
	return false, errors.New("store unreachable")
}

type SynchronizerSuite struct {
	suite.Suite
	provider *fakeProvider
	profiles *profile.InMemoryStore
	cache    *cache.InMemoryStore
	sync     *Synchronizer
	updates  chan *User
	cancel   context.CancelFunc
}

func (s *SynchronizerSuite) SetupTest() {
	s.provider = &fakeProvider{}
	s.profiles = profile.NewInMemoryStore()
	s.cache = cache.NewInMemoryStore()
	s.sync = New(s.provider, s.profiles, s.cache, slog.Default())
	s.updates = make(chan *User, 16)
	s.sync.Subscribe(func(u *User) { s.updates <- u })

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.sync.Start(ctx)
}

func (s *SynchronizerSuite) TearDownTest() {
	s.cancel()
	s.sync.Wait()
}

func TestSynchronizerSuite(t *testing.T) {
	suite.Run(t, new(SynchronizerSuite))
}

func (s *SynchronizerSuite) phone(raw string) id.Phone {
	p, err := id.ParsePhone(raw)
	s.Require().NoError(err)
	return p
}

func (s *SynchronizerSuite) nextUpdate() *User {
	select {
	case u := <-s.updates:
		return u
	case <-time.After(2 * time.Second):
		s.T().Fatal("timed out waiting for session update")
		return nil
	}
}

func (s *SynchronizerSuite) handleFor(phone id.Phone) *identity.Handle {
	return &identity.Handle{UID: "uid-1", AccountID: identity.AccountIDFor(phone)}
}

func (s *SynchronizerSuite) TestActiveSessionResolvesProfile() {
	phone := s.phone("0501234567")
	s.Require().NoError(s.profiles.Save(context.Background(),
		&profile.Profile{Phone: phone, FirstName: "Dana", LastName: "Levi"},
		identity.Handle{UID: "uid-1"},
	))

	s.provider.emit(s.handleFor(phone))

	user := s.nextUpdate()
	s.Require().NotNil(user)
	s.Equal(phone, user.Phone)
	s.Equal("Dana", user.FirstName)
	s.Equal("Dana Levi", user.FullName)
	s.False(s.sync.Loading())

	snap, err := s.cache.Load(context.Background())
	s.Require().NoError(err)
	s.Equal(phone, snap.Phone)
	s.Equal("Dana Levi", snap.FullName)
}

func TestProfileFetchFailureKeepsBarePhone(t *testing.T) {
	provider := &fakeProvider{}
	store := cache.NewInMemoryStore()
	sync := New(provider, failingProfiles{}, store, slog.Default())

	updates := make(chan *User, 16)
	sync.Subscribe(func(u *User) { updates <- u })

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		sync.Wait()
	}()
	sync.Start(ctx)

	phone, err := id.ParsePhone("0501234567")
	if err != nil {
		t.Fatal(err)
	}
	provider.emit(&identity.Handle{UID: "uid-1", AccountID: identity.AccountIDFor(phone)})

	select {
	case user := <-updates:
		if user == nil {
			t.Fatal("a broken profile store must not lock the user out")
		}
		if user.Phone != phone || user.FirstName != "" {
			t.Fatalf("expected bare phone user, got %+v", user)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session update")
	}

	if _, err := store.Load(context.Background()); !errors.Is(err, sentinel.ErrNotFound) {
		t.Fatalf("cache only updates on full resolution, got %v", err)
	}
}

func (s *SynchronizerSuite) TestSignedOutEventClearsEverything() {
	phone := s.phone("0501234567")
	s.Require().NoError(s.cache.Save(context.Background(), &cache.Snapshot{Phone: phone}))

	s.provider.emit(nil)

	s.Nil(s.nextUpdate())
	s.False(s.sync.Loading())
	_, ok := s.sync.Current()
	s.False(ok)

	_, err := s.cache.Load(context.Background())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *SynchronizerSuite) TestNonPhoneAccountTreatedAsSignedOut() {
	s.provider.emit(&identity.Handle{UID: "uid-2", AccountID: "someone@example.com"})

	s.Nil(s.nextUpdate())
	_, ok := s.sync.Current()
	s.False(ok)
}

func (s *SynchronizerSuite) TestClearNow() {
	phone := s.phone("0501234567")
	s.Require().NoError(s.profiles.Save(context.Background(),
		&profile.Profile{Phone: phone, FirstName: "Dana", LastName: "Levi"},
		identity.Handle{UID: "uid-1"},
	))
	s.provider.emit(s.handleFor(phone))
	s.Require().NotNil(s.nextUpdate())

	s.sync.ClearNow(context.Background())

	s.Nil(s.nextUpdate())
	_, ok := s.sync.Current()
	s.False(ok)
	_, err := s.cache.Load(context.Background())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func TestColdStartContinuity(t *testing.T) {
	provider := &fakeProvider{}
	profiles := profile.NewInMemoryStore()
	store := cache.NewInMemoryStore()

	phone, err := id.ParsePhone("0523985505")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(context.Background(), &cache.Snapshot{Phone: phone, FirstName: "Noa", FullName: "Noa Mizrahi"}); err != nil {
		t.Fatal(err)
	}

	sync := New(provider, profiles, store, slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		sync.Wait()
	}()
	sync.Start(ctx)

	// Before the first provider event the persisted snapshot is served as
	// the provisional user, and the cell still reports loading.
	user, ok := sync.Current()
	if !ok {
		t.Fatal("expected provisional user from persisted snapshot")
	}
	if user.FullName != "Noa Mizrahi" {
		t.Fatalf("FullName = %q", user.FullName)
	}
	if !sync.Loading() {
		t.Fatal("expected loading until the first provider event resolves")
	}
}
