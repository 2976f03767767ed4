package publisher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "gesher/pkg/domain"
	"gesher/pkg/platform/audit"
	"gesher/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	phone, err := id.ParsePhone("0501234567")
	require.NoError(t, err)

	err = pub.Emit(context.Background(), audit.Event{
		Phone:  phone,
		Action: string(audit.EventUserSignedIn),
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), phone)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventUserSignedIn), events[0].Action)
	assert.False(t, events[0].Timestamp.IsZero(), "Emit should stamp the timestamp")
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))

	phone, err := id.ParsePhone("0523985505")
	require.NoError(t, err)

	err = pub.Emit(context.Background(), audit.Event{
		Phone:  phone,
		Action: string(audit.EventLegacyMigrated),
	})
	require.NoError(t, err)

	// Close flushes the buffer before returning.
	pub.Close()

	events, err := pub.List(context.Background(), phone)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventLegacyMigrated), events[0].Action)
}

func TestPublisher_AsyncModeDropsWhenFull(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	pub := NewPublisher(store, WithAsyncBuffer(1))

	phone, err := id.ParsePhone("0501234567")
	require.NoError(t, err)
	event := audit.Event{Phone: phone, Action: string(audit.EventUserSignedIn)}

	// First emit occupies the worker, second fills the buffer, third drops.
	require.NoError(t, pub.Emit(context.Background(), event))
	require.NoError(t, pub.Emit(context.Background(), event))
	require.NoError(t, pub.Emit(context.Background(), event))

	close(store.release)
	pub.Close()

	events, err := store.List(context.Background(), phone)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(events), 2, "overflow events must be dropped, not block")
}

type blockingStore struct {
	memory.InMemoryStore
	release chan struct{}
}

func (s *blockingStore) Append(ctx context.Context, event audit.Event) error {
	select {
	case <-s.release:
	case <-time.After(2 * time.Second):
	}
	return s.InMemoryStore.Append(ctx, event)
}
