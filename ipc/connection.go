package ipc

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// Transport moves whole envelopes. The stream transport frames them with a
// length prefix; the websocket transport sends one envelope per message.
type Transport interface {
	ReadEnvelope() (Envelope, error)
	WriteEnvelope(env Envelope) error
	Close() error
}

type streamTransport struct {
	conn net.Conn
}

// NewStreamTransport frames envelopes over a byte stream such as a unix socket.
func NewStreamTransport(conn net.Conn) Transport { return &streamTransport{conn: conn} }

func (t *streamTransport) ReadEnvelope() (Envelope, error)  { return ReadEnvelope(t.conn) }
func (t *streamTransport) WriteEnvelope(env Envelope) error { return WriteEnvelope(t.conn, env) }
func (t *streamTransport) Close() error                     { return t.conn.Close() }

// Connection represents a single bridge instance talking to the agent.
// Each game player gets its own connection, identified after the hello handshake.
type Connection struct {
	transport Transport
	handlers  map[string]Handler
	writeMu   sync.Mutex
	Player    string
}

func NewConnection(conn net.Conn, handlers map[string]Handler) *Connection {
	return NewTransportConnection(NewStreamTransport(conn), handlers)
}

func NewTransportConnection(t Transport, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{
		transport: t,
		handlers:  handlers,
	}
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return c.write(env)
}

func (c *Connection) write(env Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.transport.WriteEnvelope(env)
}

// Close ends the session; a blocked ReadLoop returns shortly after.
func (c *Connection) Close() error { return c.transport.Close() }

// ReadLoop blocks until the connection closes or errors. It owns the conn lifetime
// so callers don't need to track cleanup.
func (c *Connection) ReadLoop() {
	defer c.transport.Close()

	for {
		env, err := c.transport.ReadEnvelope()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				slog.Info("connection closed", "player", c.Player)
			} else {
				slog.Info("connection read ended", "player", c.Player, "error", err)
			}
			return
		}

		handler, ok := c.handlers[env.Type]
		if !ok {
			slog.Warn("no handler for message type", "type", env.Type)
			continue
		}

		resp, err := handler(env)
		if err != nil {
			slog.Error("handler error", "type", env.Type, "error", err)
			continue
		}

		if resp != nil {
			if err := c.write(*resp); err != nil {
				slog.Error("failed to send response", "type", resp.Type, "error", err)
				return
			}
			slog.Debug("sent response", "type", resp.Type, "player", c.Player)
		}
	}
}
