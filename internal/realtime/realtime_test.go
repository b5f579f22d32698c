package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnez/pkg/logger"
)

func TestBroadcastReachesSubscribersOnly(t *testing.T) {
	hub := NewSSEHub(logger.NewNop())
	alice := hub.NewSSEClient("alice")
	bob := hub.NewSSEClient("bob")
	hub.AddChannel(alice, UserChannel("alice"))
	hub.AddChannel(bob, UserChannel("bob"))

	hub.Broadcast(SSEMessage{Channel: UserChannel("alice"), Event: EventAttemptUpdated, Data: "x"})

	select {
	case msg := <-alice.Outbound:
		assert.Equal(t, EventAttemptUpdated, msg.Event)
	default:
		t.Fatal("alice did not receive the message")
	}
	assert.Len(t, bob.Outbound, 0)
}

func TestRemoveClientDropsEmptyChannels(t *testing.T) {
	hub := NewSSEHub(logger.NewNop())
	c := hub.NewSSEClient("u1")
	hub.AddChannel(c, UserChannel("u1"))
	hub.AddChannel(c, "  ")
	require.Equal(t, 1, hub.Subscribers(UserChannel("u1")))

	hub.CloseClient(c)
	hub.CloseClient(c)

	assert.Equal(t, 0, hub.Subscribers(UserChannel("u1")))
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	hub := NewSSEHub(logger.NewNop())
	c := hub.NewSSEClient("u1")
	hub.AddChannel(c, UserChannel("u1"))

	for i := 0; i < cap(c.Outbound)+5; i++ {
		hub.Broadcast(SSEMessage{Channel: UserChannel("u1"), Event: EventMilestoneCreated})
	}

	assert.Len(t, c.Outbound, cap(c.Outbound))
}

func TestServeHTTPWritesEventFrames(t *testing.T) {
	hub := NewSSEHub(logger.NewNop())
	c := hub.NewSSEClient("u1")
	hub.AddChannel(c, UserChannel("u1"))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, c)
		close(done)
	}()

	hub.Broadcast(SSEMessage{Channel: UserChannel("u1"), Event: EventRoadmapReady, Data: map[string]string{"id": "r1"}})
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.True(t, strings.Contains(body, "event: roadmap-ready"), body)
	assert.True(t, strings.Contains(body, `"id":"r1"`), body)
}

type fakeBus struct {
	mu   sync.Mutex
	sent []SSEMessage
	err  error
}

func (b *fakeBus) Publish(_ context.Context, msg SSEMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.sent = append(b.sent, msg)
	return nil
}

func (b *fakeBus) StartForwarder(context.Context, func(SSEMessage)) error { return nil }
func (b *fakeBus) Close() error                                          { return nil }

func TestBusEmitterPublishes(t *testing.T) {
	hub := NewSSEHub(logger.NewNop())
	bus := &fakeBus{}
	e := &BusEmitter{Bus: bus, Hub: hub, Log: logger.NewNop()}

	e.Emit(context.Background(), "u1", EventRoadmapFailed, nil)

	require.Len(t, bus.sent, 1)
	assert.Equal(t, "user:u1", bus.sent[0].Channel)
}

func TestBusEmitterFallsBackToHub(t *testing.T) {
	hub := NewSSEHub(logger.NewNop())
	c := hub.NewSSEClient("u1")
	hub.AddChannel(c, UserChannel("u1"))
	e := &BusEmitter{Bus: &fakeBus{err: errors.New("down")}, Hub: hub, Log: logger.NewNop()}

	e.Emit(context.Background(), "u1", EventAttemptUpdated, nil)

	assert.Len(t, c.Outbound, 1)
}

func TestNewRedisBusRequiresAddr(t *testing.T) {
	_, err := NewRedisBus(RedisBusConfig{}, logger.NewNop())
	assert.Error(t, err)
}
