package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsTransport serialises calls over a single connection. Frames whose id
// does not match the pending request are dropped.
type wsTransport struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func dialWebSocket(ctx context.Context, endpoint string) (*wsTransport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return &wsTransport{conn: conn}, nil
}

func (t *wsTransport) roundTrip(ctx context.Context, req Request) (*Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var deadline time.Time
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}

	if err := t.conn.SetWriteDeadline(deadline); err != nil {
		return nil, fmt.Errorf("websocket set write deadline: %w", err)
	}
	if err := t.conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("websocket write: %w", err)
	}
	if err := t.conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("websocket set read deadline: %w", err)
	}

	for {
		_, msg, err := t.conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("websocket read: %w", ctxErr)
			}
			return nil, fmt.Errorf("websocket read: %w", err)
		}
		var resp Response
		if err := json.Unmarshal(msg, &resp); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
		if resp.ID != req.ID {
			continue
		}
		return &resp, nil
	}
}

func (t *wsTransport) close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return t.conn.Close()
}
