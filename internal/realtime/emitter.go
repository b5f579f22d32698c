package realtime

import (
	"context"

	"learnez/pkg/logger"
)

// Emitter delivers an event to one user's channel.
type Emitter interface {
	Emit(ctx context.Context, userID string, event SSEEvent, data any)
}

// HubEmitter broadcasts on the local hub only.
type HubEmitter struct {
	Hub *SSEHub
}

func (e *HubEmitter) Emit(ctx context.Context, userID string, event SSEEvent, data any) {
	e.Hub.Broadcast(SSEMessage{Channel: UserChannel(userID), Event: event, Data: data})
}

// BusEmitter publishes through the bus; every instance's forwarder then
// broadcasts on its own hub. Publish failures fall back to the local hub.
type BusEmitter struct {
	Bus Bus
	Hub *SSEHub
	Log *logger.Logger
}

func (e *BusEmitter) Emit(ctx context.Context, userID string, event SSEEvent, data any) {
	msg := SSEMessage{Channel: UserChannel(userID), Event: event, Data: data}
	if err := e.Bus.Publish(context.WithoutCancel(ctx), msg); err != nil {
		if e.Log != nil {
			e.Log.Warn("bus publish failed, delivering locally", "event", event, "error", err)
		}
		e.Hub.Broadcast(msg)
	}
}

// NopEmitter drops every event.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, SSEEvent, any) {}
