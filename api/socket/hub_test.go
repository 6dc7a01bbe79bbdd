package socket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func waitForSubscribers(t *testing.T, h *Hub, streamID string, want int) {
	t.Helper()
	assert.Eventually(t, func() bool {
		return h.Subscribers(streamID) == want
	}, time.Second, 5*time.Millisecond)
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	h := NewHub()
	go h.Run()

	c1 := NewClient(h, nil, "class-5", "u1")
	c2 := NewClient(h, nil, "class-5", "u2")
	other := NewClient(h, nil, "general", "u3")

	h.Register(c1)
	h.Register(c2)
	h.Register(other)
	waitForSubscribers(t, h, "class-5", 2)
	waitForSubscribers(t, h, "general", 1)

	h.Broadcast("class-5", []byte("snapshot"))

	assert.Equal(t, "snapshot", string(<-c1.Send()))
	assert.Equal(t, "snapshot", string(<-c2.Send()))

	select {
	case payload := <-other.Send():
		t.Errorf("subscriber of another stream received payload: %s", payload)
	default:
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := NewClient(h, nil, "general", "u1")
	h.Register(c)
	waitForSubscribers(t, h, "general", 1)

	h.Unregister(c)
	waitForSubscribers(t, h, "general", 0)

	_, ok := <-c.Send()
	assert.False(t, ok, "send channel should be closed after unregister")

	// releasing an already released subscription is a no-op
	h.Unregister(c)
	waitForSubscribers(t, h, "general", 0)
}

func TestHub_StreamSwitchLeavesOneSubscription(t *testing.T) {
	h := NewHub()
	go h.Run()

	// a consumer navigating between streams opens a new subscription and
	// releases the old one
	old := NewClient(h, nil, "general", "u1")
	h.Register(old)
	waitForSubscribers(t, h, "general", 1)

	next := NewClient(h, nil, "class-5", "u1")
	h.Register(next)
	h.Unregister(old)

	waitForSubscribers(t, h, "general", 0)
	waitForSubscribers(t, h, "class-5", 1)
}

func TestHub_BroadcastSkipsSlowSubscriber(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := NewClient(h, nil, "general", "u1")
	h.Register(c)
	waitForSubscribers(t, h, "general", 1)

	// fill the send buffer so the next broadcast has to drop
	for i := 0; i < cap(c.send); i++ {
		h.Broadcast("general", []byte("fill"))
	}

	done := make(chan struct{})
	go func() {
		h.Broadcast("general", []byte("dropped"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow subscriber")
	}
}
