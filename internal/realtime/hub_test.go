package realtime

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	mu       sync.Mutex
	received []interface{}
	fail     bool
	closed   bool
}

func (f *fakeSubscriber) Send(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("send failed")
	}
	f.received = append(f.received, v)
	return nil
}

func (f *fakeSubscriber) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSubscriber) messages() []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]interface{}(nil), f.received...)
}

func TestHub_BroadcastDeliversToAll(t *testing.T) {
	hub := NewHub()
	a, b := &fakeSubscriber{}, &fakeSubscriber{}
	hub.Subscribe("tr-1", a)
	hub.Subscribe("tr-1", b)

	hub.Broadcast("tr-1", "first")
	hub.Broadcast("tr-1", "second")

	assert.Equal(t, []interface{}{"first", "second"}, a.messages())
	assert.Equal(t, []interface{}{"first", "second"}, b.messages())
}

func TestHub_FailedSendIsIsolated(t *testing.T) {
	hub := NewHub()
	one := &fakeSubscriber{}
	two := &fakeSubscriber{fail: true}
	three := &fakeSubscriber{}
	hub.Subscribe("tr-1", one)
	hub.Subscribe("tr-1", two)
	hub.Subscribe("tr-1", three)

	hub.Broadcast("tr-1", "ping")

	// one and three still got the message
	assert.Equal(t, []interface{}{"ping"}, one.messages())
	assert.Equal(t, []interface{}{"ping"}, three.messages())
	// the failing observer was pruned and closed
	assert.Equal(t, 2, hub.Count("tr-1"))
	assert.True(t, two.closed)

	// subsequent broadcasts skip the removed observer
	hub.Broadcast("tr-1", "pong")
	assert.Equal(t, []interface{}{"ping", "pong"}, one.messages())
	assert.Empty(t, two.messages())
}

func TestHub_UnsubscribeDeletesEmptyRoom(t *testing.T) {
	hub := NewHub()
	sub := &fakeSubscriber{}
	hub.Subscribe("tr-1", sub)
	require.Equal(t, 1, hub.Count("tr-1"))

	hub.Unsubscribe("tr-1", sub)
	assert.Equal(t, 0, hub.Count("tr-1"))

	_, ok := hub.rooms["tr-1"]
	assert.False(t, ok, "empty room should be deleted")
}

func TestHub_BroadcastToUnknownIDIsNoop(t *testing.T) {
	hub := NewHub()
	hub.Broadcast("tr-missing", "ping")
}

func TestHub_RoomsAreIndependent(t *testing.T) {
	hub := NewHub()
	a, b := &fakeSubscriber{}, &fakeSubscriber{}
	hub.Subscribe("tr-1", a)
	hub.Subscribe("tr-2", b)

	hub.Broadcast("tr-1", "only a")

	assert.Equal(t, []interface{}{"only a"}, a.messages())
	assert.Empty(t, b.messages())
}

// blockingSubscriber parks every Send until released, standing in for an
// observer whose socket has stopped draining.
type blockingSubscriber struct {
	release chan struct{}
}

func (b *blockingSubscriber) Send(interface{}) error {
	<-b.release
	return nil
}

func (b *blockingSubscriber) Close() error { return nil }

func TestHub_SlowObserverDoesNotStallOtherIDs(t *testing.T) {
	hub := NewHub()
	stuck := &blockingSubscriber{release: make(chan struct{})}
	hub.Subscribe("tr-1", stuck)
	fast := &fakeSubscriber{}
	hub.Subscribe("tr-2", fast)

	go hub.Broadcast("tr-1", "stall")
	defer close(stuck.release)

	done := make(chan struct{})
	go func() {
		hub.Broadcast("tr-2", "ping")
		hub.Subscribe("tr-3", &fakeSubscriber{})
		hub.Unsubscribe("tr-3", &fakeSubscriber{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub operations on other ids blocked behind a slow observer")
	}
	assert.Equal(t, []interface{}{"ping"}, fast.messages())
}

func TestHub_BroadcastPruneDeletesEmptyRoom(t *testing.T) {
	hub := NewHub()
	sub := &fakeSubscriber{fail: true}
	hub.Subscribe("tr-1", sub)

	hub.Broadcast("tr-1", "ping")

	assert.True(t, sub.closed)
	hub.mu.RLock()
	_, ok := hub.rooms["tr-1"]
	hub.mu.RUnlock()
	assert.False(t, ok, "room emptied by pruning should be deleted")
}

func TestHub_ConcurrentBroadcastOrderPerID(t *testing.T) {
	hub := NewHub()
	sub := &fakeSubscriber{}
	hub.Subscribe("tr-1", sub)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			hub.Broadcast("tr-1", n)
		}(i)
	}
	wg.Wait()

	assert.Len(t, sub.messages(), 50)
}
