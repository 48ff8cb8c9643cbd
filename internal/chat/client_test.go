package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendAfterClose(t *testing.T) {
	c := NewClient("alice", nil, NewManager(), nil)

	require.NoError(t, c.SendJSON(map[string]string{"type": "pong"}))

	c.closeSend()
	// Closing twice is a no-op.
	c.closeSend()

	assert.Error(t, c.SendJSON(map[string]string{"type": "pong"}), "send after close drops, never panics")

	// The queue was closed, so a drainer sees the buffered frame then EOF.
	frame, ok := <-c.send
	assert.True(t, ok)
	assert.NotEmpty(t, frame)
	_, ok = <-c.send
	assert.False(t, ok)
}

func TestClientSendBufferFull(t *testing.T) {
	c := NewClient("alice", nil, NewManager(), nil)

	for i := 0; i < sendBufferSize; i++ {
		require.NoError(t, c.SendJSON(map[string]int{"i": i}))
	}
	assert.Error(t, c.SendJSON(map[string]string{"overflow": "dropped"}))
}
