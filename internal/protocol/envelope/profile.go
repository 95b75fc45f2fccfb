// Package envelope implements the action/payload wire shape: identities are
// generated at connect time, joining a missing room creates it, leaving
// always returns to the default room, empty non-default rooms are deleted,
// and broadcasts exclude the sender.
package envelope

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

// HubOptions is the room policy of this profile: join auto-creates, empty
// non-default rooms are deleted, and leave returns to the default room.
func HubOptions(defaultRoom string) hub.Options {
	return hub.Options{
		DefaultRoom:      defaultRoom,
		AutoCreateOnJoin: true,
		DeleteEmptyRooms: true,
		LeaveToDefault:   true,
	}
}

// Profile dispatches envelope frames onto the hub.
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
	p.d.Register(ActionCreateRoom, p.handleCreateRoom)
	p.d.Register(ActionJoinRoom, p.handleJoinRoom)
	p.d.Register(ActionLeaveRoom, p.handleLeaveRoom)
	p.d.Register(ActionSendMsg, p.handleSendMsg)
	return p
}

// Name identifies the profile in config and logs.
func (p *Profile) Name() string { return "envelope" }

// OnConnect assigns the generated identity, places the session in the
// default room, and announces both to the client (there is no other way for
// it to learn its own "from" name).
func (p *Profile) OnConnect(c *hub.Client) {
	sess := p.hub.Attach(c)
	p.sendInfo(c, fmt.Sprintf("Connected as %s in room '%s'", sess.Name, sess.Room))
}

// Handle decodes one frame and routes it to the registered handler. Invalid
// frames and unknown actions get an ERROR frame; the connection stays open.
func (p *Profile) Handle(c *hub.Client, frame []byte) {
	var req request
	if err := json.Unmarshal(frame, &req); err != nil {
		p.sendError(c, "invalid message format")
		return
	}

	fn, ok := p.d.Lookup(req.Action)
	if !ok {
		p.sendError(c, "unknown action")
		return
	}
	fn(c, &req)
}

func (p *Profile) handleCreateRoom(c *hub.Client, req *request) {
	sess, ok := p.hub.Session(c)
	if !ok {
		p.sendError(c, "not connected")
		return
	}

	err := p.hub.CreateRoom(req.Payload.RoomName)
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		p.sendError(c, "room name required")
	case errors.Is(err, domain.ErrRoomExists):
		p.sendError(c, "room already exists")
	case err != nil:
		p.sendError(c, err.Error())
	default:
		audit.Log(audit.ActionCreateRoom, sess.Name, "created room "+req.Payload.RoomName)
		p.sendInfo(c, fmt.Sprintf("Room '%s' created", req.Payload.RoomName))
	}
}

func (p *Profile) handleJoinRoom(c *hub.Client, req *request) {
	err := p.hub.JoinRoom(c, req.Payload.RoomName)
	switch {
	case errors.Is(err, domain.ErrNotRegistered):
		p.sendError(c, "not connected")
	case errors.Is(err, domain.ErrNameRequired):
		p.sendError(c, "room name required")
	case err != nil:
		p.sendError(c, err.Error())
	default:
		p.sendInfo(c, fmt.Sprintf("Joined room '%s'", req.Payload.RoomName))
	}
}

func (p *Profile) handleLeaveRoom(c *hub.Client, _ *request) {
	left, err := p.hub.LeaveRoom(c)
	if err != nil {
		// Only reachable when the session vanished mid-frame; leaving
		// itself cannot fail in this profile.
		p.sendError(c, "not connected")
		return
	}
	p.sendInfo(c, fmt.Sprintf("Left room '%s', back in '%s'", left, p.hub.DefaultRoom()))
}

func (p *Profile) handleSendMsg(c *hub.Client, req *request) {
	sess, ok := p.hub.Session(c)
	if !ok {
		p.sendError(c, "not connected")
		return
	}
	if req.Payload.Content == "" {
		p.sendError(c, "message content required")
		return
	}

	// Serialize once, then fan out to everyone in the room but the sender.
	payload, err := json.Marshal(newMsgResponse{
		Type: TypeNewMsg,
		Payload: newMsgPayload{
			From:    sess.Name,
			Content: req.Payload.Content,
			Room:    sess.Room,
		},
	})
	if err != nil {
		log.L().Error().Err(err).Msg("failed to marshal chat message")
		return
	}

	delivered := p.hub.Broadcast(sess.Room, payload, c)
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

func (p *Profile) sendInfo(c *hub.Client, msg string) {
	p.send(c, noticeResponse{Type: TypeInfo, Payload: messagePayload{Message: msg}})
}

func (p *Profile) sendError(c *hub.Client, msg string) {
	p.send(c, noticeResponse{Type: TypeError, Payload: messagePayload{Message: msg}})
}
