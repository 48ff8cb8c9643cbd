package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "v", time.Minute))
	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, m.Delete(ctx, "k"))
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	current := time.Now()
	m.now = func() time.Time { return current }

	require.NoError(t, m.Set(ctx, "k", "v", time.Minute))

	current = current.Add(2 * time.Minute)
	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "expired key must read as absent")

	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, m.PurgeExpired())
	assert.Equal(t, 0, m.Len())
}

func TestMemorySetResetsTTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	current := time.Now()
	m.now = func() time.Time { return current }

	require.NoError(t, m.Set(ctx, "k", "v1", time.Minute))
	current = current.Add(50 * time.Second)
	require.NoError(t, m.Set(ctx, "k", "v2", time.Minute))
	current = current.Add(50 * time.Second)

	v, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestKeyBuilders(t *testing.T) {
	assert.Equal(t, "anki_session:alice:My_German_Deck", DeckSessionKey("alice", "My German Deck"))
	assert.Equal(t, "chat_history:c1", ChatHistoryKey("c1"))
	assert.Equal(t, "user_conversations:bob", UserConversationsKey("bob"))
}

func TestAsideComputesOnceOnConcurrentMiss(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a := NewAside(m)

	var mu sync.Mutex
	computes := 0
	release := make(chan struct{})

	compute := func(context.Context) (string, error) {
		mu.Lock()
		computes++
		mu.Unlock()
		<-release
		return "computed", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := a.GetOrCompute(ctx, "k", time.Minute, compute)
			require.NoError(t, err)
			results[i] = v
		}(i)
	}

	// Let the callers pile up on the flight before releasing it.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, "computed", v)
	}
	mu.Lock()
	assert.Equal(t, 1, computes)
	mu.Unlock()

	// Subsequent reads hit the cache.
	v, err := a.GetOrCompute(ctx, "k", time.Minute, func(context.Context) (string, error) {
		t.Fatal("must not recompute on hit")
		return "", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "computed", v)
}

func TestAsideInvalidate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a := NewAside(m)

	_, err := a.GetOrCompute(ctx, "k", time.Minute, func(context.Context) (string, error) {
		return "v1", nil
	})
	require.NoError(t, err)

	require.NoError(t, a.Invalidate(ctx, "k"))

	v, err := a.GetOrCompute(ctx, "k", time.Minute, func(context.Context) (string, error) {
		return "v2", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
}
