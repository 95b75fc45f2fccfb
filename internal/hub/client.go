package hub

import (
	"encoding/json"

	"github.com/Adri-2310/chatMulti/pkg/log"
)

// Client couples one transport connection with its outbound buffer. Reads
// and writes run in separate pumps; the read pump owns the session lifecycle
// and is the only place cleanup happens.
type Client struct {
	conn Conn
	hub  *Hub
	send chan []byte

	// closed is guarded by the hub's lock. Once set, nothing may enqueue
	// into send, which is about to be closed by Unregister.
	closed bool
}

// NewClient wraps a transport connection. The caller must Track the client
// on the hub before starting the pumps.
func NewClient(h *Hub, conn Conn) *Client {
	return &Client{
		conn: conn,
		hub:  h,
		send: make(chan []byte, h.opts.SendBuffer),
	}
}

// RemoteAddr returns the remote address for logging.
func (c *Client) RemoteAddr() string {
	return c.conn.RemoteAddr()
}

// Send marshals a frame and queues it for delivery on this connection.
func (c *Client) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.hub.mu.RLock()
	ok := c.enqueueLocked(data)
	c.hub.mu.RUnlock()
	if !ok {
		log.L().Warn().
			Str(log.FieldRemoteAddr, c.RemoteAddr()).
			Msg("dropping response frame: send buffer full or connection closing")
	}
	return nil
}

// enqueueLocked queues a frame for the write pump. Callers must hold the
// hub's lock (read or write) so the closed flag and the channel close in
// Unregister cannot race with the send.
func (c *Client) enqueueLocked(data []byte) bool {
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// ReadPump reads frames until end-of-stream or a stream error, handing each
// one to the profile handler. Handler panics are logged and the loop
// continues; only the stream ending is terminal. On termination the session
// is unregistered and the connection closed, whatever the reason.
func (c *Client) ReadPump(handle func(*Client, []byte)) {
	defer func() {
		c.hub.Unregister(c)
		if err := c.conn.Close(); err != nil {
			log.L().Debug().Err(err).
				Str(log.FieldRemoteAddr, c.RemoteAddr()).
				Msg("error closing connection in read pump")
		}
	}()

	for {
		frame, err := c.conn.ReadFrame()
		if err != nil {
			log.L().Debug().Err(err).
				Str(log.FieldRemoteAddr, c.RemoteAddr()).
				Msg("read loop terminated")
			return
		}
		c.dispatch(handle, frame)
	}
}

// dispatch shields the read loop from a panicking handler: the frame is
// dropped, the connection lives on.
func (c *Client) dispatch(handle func(*Client, []byte), frame []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.L().Error().
				Interface("panic", r).
				Str(log.FieldRemoteAddr, c.RemoteAddr()).
				Msg("recovered from panic while processing frame")
		}
	}()
	handle(c, frame)
}

// WritePump drains the send buffer onto the connection in FIFO order, which
// preserves per-member broadcast ordering. A write failure on this
// connection is terminal for it alone: the connection is closed and the
// read pump performs the cleanup.
func (c *Client) WritePump() {
	for message := range c.send {
		if err := c.conn.WriteFrame(message); err != nil {
			log.L().Debug().Err(err).
				Str(log.FieldRemoteAddr, c.RemoteAddr()).
				Msg("write failed, closing connection")
			c.conn.Close()
			// Drain until Unregister closes the channel so no
			// broadcaster blocks on a dead connection.
			for range c.send {
			}
			return
		}
	}
	c.conn.Close()
}
