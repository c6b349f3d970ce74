package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

// writeTimeout bounds how long a single subscriber send may block, the way
// the teacher's ConnectionManager bounds sendRaw.
const writeTimeout = 5 * time.Second

// ClientMessage is what a subscriber may send over the socket — currently
// only a liveness ping (spec.md §6: "A ping from a subscriber must elicit a
// pong").
type ClientMessage struct {
	Action string `json:"action"`
}

// ServeWebSocket pumps topic onto conn until the connection closes or ctx is
// cancelled. snapshot, if non-nil, is sent once as an initial_state event
// before the live stream begins (spec.md §4.8).
func ServeWebSocket(ctx context.Context, bus *Bus, conn *websocket.Conn, topic string, snapshot map[string]interface{}) {
	sub := bus.Subscribe(topic)
	defer bus.Unsubscribe(sub)

	if snapshot != nil {
		writeEvent(ctx, conn, NewEvent(TypeInitialState, snapshot))
	}

	readErrCh := make(chan error, 1)
	go readLoop(ctx, conn, readErrCh)

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-readErrCh:
			if err != nil {
				return
			}
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := writeEvent(ctx, conn, event); err != nil {
				slog.Warn("broadcast: dropping subscriber after write failure", "topic", topic, "error", err)
				return
			}
		}
	}
}

// readLoop drains client messages (pings) and answers them with pongs,
// reporting any read error (including normal close) on errCh.
func readLoop(ctx context.Context, conn *websocket.Conn, errCh chan<- error) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			errCh <- err
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Action == "ping" {
			_ = writeEvent(ctx, conn, NewEvent("pong", nil))
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, event Event) error {
	data, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
