package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coder/websocket"
)

// writeTimeout bounds a single message send to a subscriber, mirroring the
// teacher's per-connection write timeout in pkg/events/manager.go.
const writeTimeout = 5 * time.Second

// clientMessage is what a client sends to select which run it wants
// relayed on the single shared stream path (spec.md §6).
type clientMessage struct {
	RunID string `json:"runId"`
}

// HandleConnection reads one subscription request from conn, then relays
// every event for that run until the connection closes or pipeline_done is
// sent. It blocks until the connection terminates, matching the teacher's
// ConnectionManager.HandleConnection contract.
func (b *Bus) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close(websocket.StatusNormalClosure, "")

	_, data, err := conn.Read(ctx)
	if err != nil {
		b.Logger.Warn("eventbus: failed to read subscription request", "error", err)
		return
	}
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.RunID == "" {
		b.Logger.Warn("eventbus: malformed or missing subscription request")
		return
	}

	for _, evt := range b.Catchup(msg.RunID) {
		if !b.send(ctx, conn, evt) {
			return
		}
	}

	events, unsubscribe := b.Subscribe(msg.RunID)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if !b.send(ctx, conn, evt) {
				return
			}
			if evt.Event == EventPipelineDone {
				return
			}
		}
	}
}

func (b *Bus) send(ctx context.Context, conn *websocket.Conn, evt Event) bool {
	data, err := json.Marshal(evt)
	if err != nil {
		b.Logger.Error("eventbus: failed to marshal event", "error", err)
		return false
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		b.Logger.Warn("eventbus: dropping connection after write failure", "error", err)
		return false
	}
	return true
}
