package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Adri-2310/chatMulti/internal/hub"
	"github.com/Adri-2310/chatMulti/internal/protocol"
	"github.com/Adri-2310/chatMulti/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsConn adapts a WebSocket connection to the line-frame Conn interface:
// one text message is one frame.
type wsConn struct {
	c *websocket.Conn
}

func (w *wsConn) ReadFrame() ([]byte, error) {
	for {
		mt, data, err := w.c.ReadMessage()
		if err != nil {
			return nil, err
		}
		if mt == websocket.TextMessage {
			return data, nil
		}
	}
}

func (w *wsConn) WriteFrame(data []byte) error {
	return w.c.WriteMessage(websocket.TextMessage, data)
}

func (w *wsConn) Close() error {
	return w.c.Close()
}

func (w *wsConn) RemoteAddr() string {
	return w.c.RemoteAddr().String()
}

// WSGateway exposes the same chat protocol over WebSocket.
type WSGateway struct {
	hub          *hub.Hub
	profile      protocol.Profile
	maxFrameSize int64
}

// NewWSGateway builds the gateway for the active profile.
func NewWSGateway(h *hub.Hub, p protocol.Profile, maxFrameSize int) *WSGateway {
	return &WSGateway{hub: h, profile: p, maxFrameSize: int64(maxFrameSize)}
}

// Handle upgrades the request and runs the standard connection loop.
func (g *WSGateway) Handle(ctx *gin.Context) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.L().Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(g.maxFrameSize)

	c := hub.NewClient(g.hub, &wsConn{c: conn})
	g.hub.Track(c)

	log.L().Info().
		Str(log.FieldRemoteAddr, c.RemoteAddr()).
		Str(log.FieldTransport, "websocket").
		Msg("new connection")

	go c.WritePump()
	g.profile.OnConnect(c)
	go c.ReadPump(g.profile.Handle)
}
