package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesEverySubscriber(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()
	require.Equal(t, 2, h.ClientCount())

	h.Broadcast("created", map[string]string{"id": "s1"})

	for _, ch := range []chan []byte{a, b} {
		var env struct {
			Channel string          `json:"channel"`
			Event   string          `json:"event"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(<-ch, &env))
		assert.Equal(t, Channel, env.Channel)
		assert.Equal(t, "created", env.Event)
	}
}

func TestBroadcastDropsForSlowClient(t *testing.T) {
	h := NewHub()
	slow := h.Subscribe()

	// fill the buffer and then some, must not block
	for i := 0; i < 40; i++ {
		h.Broadcast("updated", map[string]int{"n": i})
	}

	assert.Equal(t, cap(slow), len(slow))
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	h.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.ClientCount())

	// double unsubscribe must not panic
	h.Unsubscribe(ch)
}
