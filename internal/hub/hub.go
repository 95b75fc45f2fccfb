// Package hub owns client identity, room membership, and fan-out delivery.
// A single Hub guards the session table and the room table under one lock,
// since join/leave/register/unregister are compound cross-map updates.
package hub

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Adri-2310/chatMulti/internal/audit"
	"github.com/Adri-2310/chatMulti/internal/domain"
	"github.com/Adri-2310/chatMulti/pkg/log"
)

// Options selects the room policy of the active protocol profile.
type Options struct {
	// DefaultRoom always exists and is exempt from empty-room deletion.
	DefaultRoom string

	// AutoCreateOnJoin makes JoinRoom create missing rooms instead of
	// failing with ErrRoomNotFound.
	AutoCreateOnJoin bool

	// DeleteEmptyRooms removes a non-default room once its last member
	// leaves it.
	DeleteEmptyRooms bool

	// LeaveToDefault makes LeaveRoom return the session to the default
	// room instead of leaving it roomless.
	LeaveToDefault bool

	// SendBuffer is the per-client outbound buffer size.
	SendBuffer int
}

// RoomInfo is a point-in-time view of one room, for the status API.
type RoomInfo struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
}

// Hub maps connections to sessions and room names to member sets. All
// mutations happen under one RWMutex so the cross-map invariants (a session
// in at most one room, no dangling membership) hold at every instant.
type Hub struct {
	mu       sync.RWMutex
	opts     Options
	clients  map[*Client]struct{}          // every open connection
	sessions map[*Client]*domain.Session   // registered identities
	names    map[string]*Client            // identity -> connection
	rooms    map[string]map[string]*Client // room -> identity -> connection
	order    []string                      // room creation order
}

// New creates a Hub with the default room already present.
func New(opts Options) *Hub {
	if opts.DefaultRoom == "" {
		opts.DefaultRoom = domain.DefaultRoom
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 256
	}
	h := &Hub{
		opts:     opts,
		clients:  make(map[*Client]struct{}),
		sessions: make(map[*Client]*domain.Session),
		names:    make(map[string]*Client),
		rooms:    make(map[string]map[string]*Client),
	}
	h.rooms[opts.DefaultRoom] = make(map[string]*Client)
	h.order = append(h.order, opts.DefaultRoom)
	return h
}

// DefaultRoom returns the name of the default room.
func (h *Hub) DefaultRoom() string {
	return h.opts.DefaultRoom
}

// Track records a newly accepted connection so shutdown can reach it.
func (h *Hub) Track(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	c.closed = false
	h.mu.Unlock()

	log.L().Debug().Str(log.FieldRemoteAddr, c.RemoteAddr()).Msg("client connected")
}

// Register binds a user-chosen identity to the connection and places the
// session in the default room. The name must be unique across all live
// sessions. A connection can register only once.
func (h *Hub) Register(c *Client, name string) (domain.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if name == "" {
		return domain.Session{}, domain.ErrNameRequired
	}
	if _, ok := h.sessions[c]; ok {
		return domain.Session{}, domain.ErrAlreadyRegistered
	}
	if _, taken := h.names[name]; taken {
		return domain.Session{}, domain.ErrNameTaken
	}

	sess := &domain.Session{Name: name, Room: h.opts.DefaultRoom}
	h.sessions[c] = sess
	h.names[name] = c
	h.rooms[h.opts.DefaultRoom][name] = c

	audit.Log(audit.ActionRegister, name, "user registered")
	return *sess, nil
}

// Attach mints a generated identity for the connection and places the
// session in the default room. Identifiers are uuid-derived and checked
// against the live session table, so a collision is re-minted rather than
// silently overwriting an existing session.
func (h *Hub) Attach(c *Client) domain.Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sess, ok := h.sessions[c]; ok {
		return *sess
	}

	var name string
	for {
		name = "user-" + uuid.NewString()[:8]
		if _, taken := h.names[name]; !taken {
			break
		}
	}

	sess := &domain.Session{Name: name, Room: h.opts.DefaultRoom}
	h.sessions[c] = sess
	h.names[name] = c
	h.rooms[h.opts.DefaultRoom][name] = c

	audit.Log(audit.ActionRegister, name, "generated identity attached")
	return *sess
}

// Session returns a copy of the connection's session record, if registered.
func (h *Hub) Session(c *Client) (domain.Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sess, ok := h.sessions[c]
	if !ok {
		return domain.Session{}, false
	}
	return *sess, true
}

// Unregister atomically removes the session from its room's member set and
// deletes the session record, then releases the connection's send buffer.
// It is idempotent and safe to call for never-registered connections.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	c.closed = true

	var name string
	if sess, ok := h.sessions[c]; ok {
		name = sess.Name
		h.removeFromRoomLocked(sess)
		delete(h.names, sess.Name)
		delete(h.sessions, c)
	}
	h.mu.Unlock()

	// Close the channel after releasing the lock.
	close(c.send)

	if name != "" {
		audit.Log(audit.ActionDisconnect, name, "session cleaned up")
	}
	log.L().Debug().Str(log.FieldRemoteAddr, c.RemoteAddr()).Msg("client disconnected")
}

// CreateRoom creates an empty room. The name must not collide with an
// existing room.
func (h *Hub) CreateRoom(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if name == "" {
		return domain.ErrNameRequired
	}
	if _, ok := h.rooms[name]; ok {
		return domain.ErrRoomExists
	}
	h.createRoomLocked(name)
	return nil
}

// JoinRoom atomically moves the session out of its current room and into the
// target room, updating the session's room field in the same critical
// section. Depending on Options, a missing target is either an error or
// created on demand, and the vacated room may be deleted when empty.
func (h *Hub) JoinRoom(c *Client, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	sess, ok := h.sessions[c]
	if !ok {
		return domain.ErrNotRegistered
	}
	if name == "" {
		return domain.ErrNameRequired
	}
	if _, ok := h.rooms[name]; !ok {
		if !h.opts.AutoCreateOnJoin {
			return domain.ErrRoomNotFound
		}
		h.createRoomLocked(name)
	}

	// Rejoining the current room is a no-op. Removing first would delete
	// a solo-occupied room under DeleteEmptyRooms and strand the session.
	if sess.Room == name {
		return nil
	}

	h.removeFromRoomLocked(sess)
	h.rooms[name][sess.Name] = c
	sess.Room = name

	audit.Log(audit.ActionJoinRoom, sess.Name, "joined room "+name)
	return nil
}

// LeaveRoom moves the session out of its current room. With LeaveToDefault
// it rejoins the default room and cannot fail once registered; otherwise the
// session becomes roomless and leaving twice is an error. It returns the
// name of the room that was left.
func (h *Hub) LeaveRoom(c *Client) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sess, ok := h.sessions[c]
	if !ok {
		return "", domain.ErrNotRegistered
	}

	if h.opts.LeaveToDefault {
		prev := sess.Room
		h.removeFromRoomLocked(sess)
		h.rooms[h.opts.DefaultRoom][sess.Name] = c
		sess.Room = h.opts.DefaultRoom

		audit.Log(audit.ActionLeaveRoom, sess.Name, "left room "+prev)
		return prev, nil
	}

	if !sess.InRoom() {
		return "", domain.ErrNotInRoom
	}
	prev := sess.Room
	h.removeFromRoomLocked(sess)
	sess.Room = ""

	audit.Log(audit.ActionLeaveRoom, sess.Name, "left room "+prev)
	return prev, nil
}

// Rooms returns a snapshot of all room names in creation order.
func (h *Hub) Rooms() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, len(h.order))
	copy(out, h.order)
	return out
}

// RoomCounts returns a snapshot of all rooms with member counts, in
// creation order.
func (h *Hub) RoomCounts() []RoomInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]RoomInfo, 0, len(h.order))
	for _, name := range h.order {
		out = append(out, RoomInfo{Name: name, Members: len(h.rooms[name])})
	}
	return out
}

// Members returns a snapshot of the identities in a room.
func (h *Hub) Members(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[room]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(members))
	for name := range members {
		out = append(out, name)
	}
	return out
}

// ClientCount returns the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast delivers an already-serialized payload to every member of the
// room, except the excluded connection if any. Delivery is best-effort: a
// member whose buffer is full is logged and skipped, the remaining members
// still get the payload, and cleanup stays the connection handler's job.
// Returns the number of successful deliveries.
func (h *Hub) Broadcast(room string, payload []byte, exclude *Client) int {
	h.mu.RLock()

	members, ok := h.rooms[room]
	if !ok {
		h.mu.RUnlock()
		return 0
	}

	// Snapshot before iterating so concurrent join/leave cannot affect
	// in-flight delivery.
	targets := make([]*Client, 0, len(members))
	for _, c := range members {
		if c != exclude {
			targets = append(targets, c)
		}
	}

	delivered := 0
	for _, c := range targets {
		if c.enqueueLocked(payload) {
			delivered++
		} else {
			log.L().Warn().
				Str(log.FieldRemoteAddr, c.RemoteAddr()).
				Str(log.FieldRoom, room).
				Msg("dropping broadcast frame: send buffer full or connection closing")
		}
	}
	h.mu.RUnlock()

	return delivered
}

// CloseAll force-closes every tracked connection. Each connection's read
// loop then terminates and runs its own cleanup path.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	conns := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.conn.Close(); err != nil {
			log.L().Debug().Err(err).
				Str(log.FieldRemoteAddr, c.RemoteAddr()).
				Msg("error closing client connection")
		}
	}
	log.L().Info().Int("count", len(conns)).Msg("closed client connections")
}

func (h *Hub) createRoomLocked(name string) {
	h.rooms[name] = make(map[string]*Client)
	h.order = append(h.order, name)
	log.L().Info().Str(log.FieldRoom, name).Msg("room created")
}

// removeFromRoomLocked drops the session from its current room's member set
// and applies the empty-room deletion policy. The default room is never
// deleted.
func (h *Hub) removeFromRoomLocked(sess *domain.Session) {
	if !sess.InRoom() {
		return
	}
	members, ok := h.rooms[sess.Room]
	if !ok {
		return
	}
	delete(members, sess.Name)
	if len(members) == 0 && h.opts.DeleteEmptyRooms && sess.Room != h.opts.DefaultRoom {
		delete(h.rooms, sess.Room)
		h.removeFromOrderLocked(sess.Room)
		log.L().Info().Str(log.FieldRoom, sess.Room).Msg("empty room deleted")
	}
}

func (h *Hub) removeFromOrderLocked(name string) {
	for i, n := range h.order {
		if n == name {
			h.order = append(h.order[:i], h.order[i+1:]...)
			return
		}
	}
}
