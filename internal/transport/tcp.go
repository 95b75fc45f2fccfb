// Package transport accepts connections and adapts them to the hub's
// line-frame Conn interface. Two transports share one core: raw TCP with
// newline-delimited frames, and a WebSocket gateway.
package transport

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/Adri-2310/chatMulti/internal/hub"
	"github.com/Adri-2310/chatMulti/internal/protocol"
	"github.com/Adri-2310/chatMulti/pkg/log"
)

// tcpConn frames a net.Conn as UTF-8 lines: one frame per '\n'-terminated
// line in, one newline appended per frame out.
type tcpConn struct {
	nc      net.Conn
	scanner *bufio.Scanner
}

func newTCPConn(nc net.Conn, maxFrameSize int) *tcpConn {
	s := bufio.NewScanner(nc)
	s.Buffer(make([]byte, 0, 1024), maxFrameSize)
	return &tcpConn{nc: nc, scanner: s}
}

func (t *tcpConn) ReadFrame() ([]byte, error) {
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return t.scanner.Bytes(), nil
}

func (t *tcpConn) WriteFrame(data []byte) error {
	// One write per frame so lines never interleave.
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, data...)
	buf = append(buf, '\n')
	_, err := t.nc.Write(buf)
	return err
}

func (t *tcpConn) Close() error {
	return t.nc.Close()
}

func (t *tcpConn) RemoteAddr() string {
	return t.nc.RemoteAddr().String()
}

// TCPServer runs the accept loop: one goroutine pair per connection.
type TCPServer struct {
	addr         string
	hub          *hub.Hub
	profile      protocol.Profile
	maxFrameSize int

	ln net.Listener
	wg sync.WaitGroup
}

// NewTCPServer prepares a TCP server; call Listen before Serve.
func NewTCPServer(addr string, h *hub.Hub, p protocol.Profile, maxFrameSize int) *TCPServer {
	return &TCPServer{
		addr:         addr,
		hub:          h,
		profile:      p,
		maxFrameSize: maxFrameSize,
	}
}

// Listen binds the listener so Addr is known before Serve starts.
func (s *TCPServer) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	log.L().Info().
		Str("addr", ln.Addr().String()).
		Str(log.FieldProfile, s.profile.Name()).
		Msg("tcp server listening")
	return nil
}

// Addr returns the bound listener address.
func (s *TCPServer) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts connections until the context is cancelled, then closes the
// listener, force-closes the remaining connections, and waits for every
// connection loop to run its cleanup path.
func (s *TCPServer) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()

	for {
		nc, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			log.L().Warn().Err(err).Msg("accept failed")
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(nc)
		}()
	}

	s.hub.CloseAll()
	s.wg.Wait()
	log.L().Info().Msg("tcp server stopped")
	return nil
}

func (s *TCPServer) serveConn(nc net.Conn) {
	c := hub.NewClient(s.hub, newTCPConn(nc, s.maxFrameSize))
	s.hub.Track(c)

	log.L().Info().
		Str(log.FieldRemoteAddr, c.RemoteAddr()).
		Str(log.FieldTransport, "tcp").
		Msg("new connection")

	go c.WritePump()
	s.profile.OnConnect(c)
	c.ReadPump(s.profile.Handle)
}
