package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gesher/internal/admin"
	"gesher/internal/auth"
	"gesher/internal/identity/devprovider"
	"gesher/internal/legacy"
	"gesher/internal/profile"
	"gesher/internal/session"
	"gesher/internal/session/cache"
	id "gesher/pkg/domain"
	dErrors "gesher/pkg/domain-errors"
	"gesher/pkg/platform/audit/publisher"
	"gesher/pkg/platform/audit/store/memory"
	"gesher/pkg/platform/sentinel"
)

// TestLegacyHolderEndToEnd walks the full path of a pre-provisioned admin:
// legacy record, migration on first sign-in, session resolution, admin
// authority, and sign-out leaving a clean cold start.
func TestLegacyHolderEndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider := devprovider.New()
	profiles := profile.NewInMemoryStore()
	legacyCreds := legacy.NewInMemoryStore()
	snapshots := cache.NewInMemoryStore()
	auditPub := publisher.NewPublisher(memory.NewInMemoryStore())
	checker := admin.NewChecker([]string{"0523985505"})

	adminPhone, err := id.ParsePhone("+972523985505")
	require.NoError(t, err)
	legacyCreds.Seed(adminPhone, "112233")

	synchronizer := session.New(provider, profiles, snapshots, slog.Default())
	updates := make(chan *session.User, 16)
	synchronizer.Subscribe(func(u *session.User) { updates <- u })
	synchronizer.Start(ctx)

	svc := New(provider, profiles, legacyCreds, auditPub, slog.Default(),
		WithSessionClearer(synchronizer))

	next := func() *session.User {
		select {
		case u := <-updates:
			return u
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for session update")
			return nil
		}
	}

	// Initial subscription reports signed out.
	require.Nil(t, next())

	// Sign-in with the legacy credential migrates and establishes a session.
	res, err := svc.SignIn(ctx, auth.Credentials{Phone: "052-398-5505", Password: "112233"})
	require.NoError(t, err)
	require.Equal(t, auth.StageMigrated, res.Stage)

	user := next()
	require.NotNil(t, user)
	require.Equal(t, adminPhone, user.Phone)

	// The session phone carries admin authority in every spelling.
	require.True(t, checker.IsAdmin(user.Phone.String()))
	require.True(t, checker.IsAdmin(user.Phone.Display()))

	// A wrong password now fails like any other bad credential.
	_, err = svc.SignIn(ctx, auth.Credentials{Phone: "052-398-5505", Password: "wrong"})
	require.True(t, dErrors.HasCode(err, dErrors.CodeInvalidCredentials))

	// Sign-out clears the cell and the persisted cache synchronously.
	require.NoError(t, svc.SignOut(ctx))
	_, ok := synchronizer.Current()
	require.False(t, ok)
	_, err = snapshots.Load(ctx)
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	// A fresh process start over the same stores reports no signed-in user.
	cancel()
	synchronizer.Wait()

	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	restarted := session.New(provider, profiles, snapshots, slog.Default())
	restartUpdates := make(chan *session.User, 16)
	restarted.Subscribe(func(u *session.User) { restartUpdates <- u })
	restarted.Start(ctx2)
	defer func() {
		cancel2()
		restarted.Wait()
	}()

	select {
	case u := <-restartUpdates:
		require.Nil(t, u, "fresh start after sign-out must report signed out")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for restart session state")
	}
	_, ok = restarted.Current()
	require.False(t, ok)
}
