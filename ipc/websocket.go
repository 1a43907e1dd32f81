package ipc

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsTransport struct {
	conn *websocket.Conn
}

// NewWebSocketTransport carries one JSON envelope per websocket text message.
func NewWebSocketTransport(conn *websocket.Conn) Transport {
	conn.SetReadLimit(MaxMessageSize)
	return &wsTransport{conn: conn}
}

func (t *wsTransport) ReadEnvelope() (Envelope, error) {
	for {
		kind, payload, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return Envelope{}, fmt.Errorf("websocket closed: %w", err)
			}
			return Envelope{}, fmt.Errorf("read message: %w", err)
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		return unmarshalEnvelope(payload)
	}
}

func (t *wsTransport) WriteEnvelope(env Envelope) error {
	if err := t.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := t.conn.WriteJSON(env); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

func (t *wsTransport) Close() error {
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return t.conn.Close()
}

// SessionFunc wires handlers onto a freshly accepted connection. The returned
// func, if any, runs after the connection ends.
type SessionFunc func(c *Connection) (done func())

// WebSocketHandler upgrades each request and runs a Connection for it until
// the peer disconnects.
func WebSocketHandler(setup SessionFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		slog.Info("websocket connection accepted", "remote", r.RemoteAddr)

		c := NewTransportConnection(NewWebSocketTransport(conn), nil)
		done := setup(c)
		c.ReadLoop()
		if done != nil {
			done()
		}
	})
}

// DialWebSocket connects to a websocket endpoint speaking the envelope protocol.
func DialWebSocket(url string) (*Connection, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewTransportConnection(NewWebSocketTransport(conn), nil), nil
}
