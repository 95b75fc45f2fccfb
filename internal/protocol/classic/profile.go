// Package classic implements the explicit action/result wire shape:
// user-chosen unique usernames, rooms that must exist before joining, a
// nullable current room, and broadcasts that include the sender.
package classic

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Adri-2310/chatMulti/internal/audit"
	"github.com/Adri-2310/chatMulti/internal/domain"
	"github.com/Adri-2310/chatMulti/internal/hub"
	"github.com/Adri-2310/chatMulti/internal/protocol"
	"github.com/Adri-2310/chatMulti/pkg/log"
)

// HubOptions is the room policy of this profile: rooms must pre-exist on
// join, are never auto-deleted, and leaving makes the session roomless.
func HubOptions(defaultRoom string) hub.Options {
	return hub.Options{
		DefaultRoom:      defaultRoom,
		AutoCreateOnJoin: false,
		DeleteEmptyRooms: false,
		LeaveToDefault:   false,
	}
}

// Profile dispatches classic frames onto the hub.
type Profile struct {
	hub *hub.Hub
	d   *protocol.Dispatcher[*request]
}

// New builds the profile with all actions registered.
func New(h *hub.Hub) *Profile {
	p := &Profile{
		hub: h,
		d:   protocol.NewDispatcher[*request](),
	}
	p.d.Register(ActionRegister, p.handleRegister)
	p.d.Register(ActionListRooms, p.handleListRooms)
	p.d.Register(ActionCreateRoom, p.handleCreateRoom)
	p.d.Register(ActionJoinRoom, p.handleJoinRoom)
	p.d.Register(ActionLeaveRoom, p.handleLeaveRoom)
	p.d.Register(ActionSendMessage, p.handleSendMessage)
	return p
}

// Name identifies the profile in config and logs.
func (p *Profile) Name() string { return "classic" }

// OnConnect is a no-op: a classic session only exists after register.
func (p *Profile) OnConnect(c *hub.Client) {}

// Handle decodes one frame and routes it to the registered handler.
// A frame that is not valid JSON gets an error frame and is discarded; so
// does an unknown (or absent) action. Neither closes the connection.
func (p *Profile) Handle(c *hub.Client, frame []byte) {
	var req request
	if err := json.Unmarshal(frame, &req); err != nil {
		p.sendError(c, "Invalid JSON")
		return
	}

	fn, ok := p.d.Lookup(req.Action)
	if !ok {
		p.sendError(c, "Unknown action")
		return
	}
	fn(c, &req)
}

func (p *Profile) handleRegister(c *hub.Client, req *request) {
	sess, err := p.hub.Register(c, req.Username)
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		p.sendError(c, "username required")
	case errors.Is(err, domain.ErrNameTaken):
		p.sendError(c, "username already taken")
	case errors.Is(err, domain.ErrAlreadyRegistered):
		p.sendError(c, "already registered")
	case err != nil:
		p.sendError(c, err.Error())
	default:
		p.send(c, infoResponse{
			Type:    TypeInfo,
			Message: fmt.Sprintf("Registered as %s", sess.Name),
			Room:    sess.Room,
		})
	}
}

func (p *Profile) handleListRooms(c *hub.Client, _ *request) {
	p.send(c, roomListResponse{Type: TypeRoomList, Rooms: p.hub.Rooms()})
}

func (p *Profile) handleCreateRoom(c *hub.Client, req *request) {
	sess, ok := p.hub.Session(c)
	if !ok {
		p.sendError(c, "register first")
		return
	}

	err := p.hub.CreateRoom(req.Room)
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		p.sendError(c, "room name required")
	case errors.Is(err, domain.ErrRoomExists):
		p.sendError(c, "room already exists")
	case err != nil:
		p.sendError(c, err.Error())
	default:
		audit.Log(audit.ActionCreateRoom, sess.Name, "created room "+req.Room)
		p.send(c, infoResponse{
			Type:    TypeInfo,
			Message: fmt.Sprintf("Room '%s' created", req.Room),
		})
		// The source protocol follows up with a fresh room list for
		// the creator.
		p.send(c, roomListResponse{Type: TypeRoomList, Rooms: p.hub.Rooms()})
	}
}

func (p *Profile) handleJoinRoom(c *hub.Client, req *request) {
	if _, ok := p.hub.Session(c); !ok {
		p.sendError(c, "register first")
		return
	}

	err := p.hub.JoinRoom(c, req.Room)
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		p.sendError(c, "room name required")
	case errors.Is(err, domain.ErrRoomNotFound):
		p.sendError(c, "room does not exist")
	case err != nil:
		p.sendError(c, err.Error())
	default:
		p.send(c, roomJoinedResponse{Type: TypeRoomJoined, Room: req.Room})
	}
}

func (p *Profile) handleLeaveRoom(c *hub.Client, _ *request) {
	if _, ok := p.hub.Session(c); !ok {
		p.sendError(c, "register first")
		return
	}

	left, err := p.hub.LeaveRoom(c)
	switch {
	case errors.Is(err, domain.ErrNotInRoom):
		p.sendError(c, "not in a room")
	case err != nil:
		p.sendError(c, err.Error())
	default:
		p.send(c, roomLeftResponse{Type: TypeRoomLeft, Room: left})
	}
}

func (p *Profile) handleSendMessage(c *hub.Client, req *request) {
	sess, ok := p.hub.Session(c)
	if !ok {
		p.sendError(c, "register first")
		return
	}
	if req.Message == "" {
		p.sendError(c, "message required")
		return
	}
	if !sess.InRoom() {
		p.sendError(c, "join a room first")
		return
	}

	// Serialize once, then fan out. The sender is a room member too and
	// receives its own message in this profile.
	payload, err := json.Marshal(chatMessage{
		Type:    TypeChatMessage,
		Room:    sess.Room,
		From:    sess.Name,
		Message: req.Message,
	})
	if err != nil {
		log.L().Error().Err(err).Msg("failed to marshal chat message")
		return
	}

	delivered := p.hub.Broadcast(sess.Room, payload, nil)
	audit.Log(audit.ActionSendMessage, sess.Name, "message broadcast to "+sess.Room)
	log.L().Debug().
		Str(log.FieldUsername, sess.Name).
		Str(log.FieldRoom, sess.Room).
		Int("delivered", delivered).
		Msg("chat message broadcast")
}

func (p *Profile) send(c *hub.Client, v any) {
	if err := c.Send(v); err != nil {
		log.L().Error().Err(err).
			Str(log.FieldRemoteAddr, c.RemoteAddr()).
			Msg("failed to marshal response frame")
	}
}

func (p *Profile) sendError(c *hub.Client, msg string) {
	p.send(c, errorResponse{Type: TypeError, Message: msg})
}
