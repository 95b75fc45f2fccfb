package hub

// Conn abstracts a bidirectional connection for both TCP and WebSocket
// transports. One frame is one line-delimited JSON payload, without the
// trailing newline; framing details stay inside the transport.
type Conn interface {
	// ReadFrame reads a single frame. Returns an error (io.EOF included)
	// when the connection is closed; any read error is terminal.
	ReadFrame() ([]byte, error)

	// WriteFrame sends a single frame.
	WriteFrame(data []byte) error

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the remote address for logging.
	RemoteAddr() string
}
