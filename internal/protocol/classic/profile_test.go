package classic_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adri-2310/chatMulti/internal/hub"
	"github.com/Adri-2310/chatMulti/internal/protocol/classic"
)

// captureConn records every frame the write pump emits.
type captureConn struct {
	frames chan []byte
}

func newCaptureConn() *captureConn {
	return &captureConn{frames: make(chan []byte, 32)}
}

func (c *captureConn) ReadFrame() ([]byte, error) { select {} }

func (c *captureConn) WriteFrame(data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	c.frames <- cp
	return nil
}

func (c *captureConn) Close() error       { return nil }
func (c *captureConn) RemoteAddr() string { return "test:0" }

// next waits for the next outbound frame.
func (c *captureConn) next(t *testing.T) string {
	t.Helper()
	select {
	case data := <-c.frames:
		return string(data)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return ""
	}
}

// none asserts no frame arrives within a short window.
func (c *captureConn) none(t *testing.T) {
	t.Helper()
	select {
	case data := <-c.frames:
		t.Fatalf("unexpected frame: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

type testPeer struct {
	client *hub.Client
	conn   *captureConn
}

func connect(t *testing.T, h *hub.Hub) *testPeer {
	t.Helper()
	conn := newCaptureConn()
	c := hub.NewClient(h, conn)
	h.Track(c)
	go c.WritePump()
	return &testPeer{client: c, conn: conn}
}

func newProfile(t *testing.T) (*classic.Profile, *hub.Hub) {
	t.Helper()
	opts := classic.HubOptions("general")
	opts.SendBuffer = 32
	h := hub.New(opts)
	return classic.New(h), h
}

func send(p *classic.Profile, peer *testPeer, frame string) {
	p.Handle(peer.client, []byte(frame))
}

func TestRegister(t *testing.T) {
	p, h := newProfile(t)
	alice := connect(t, h)

	send(p, alice, `{"action":"register","username":"alice"}`)
	assert.JSONEq(t,
		`{"type":"info","message":"Registered as alice","room":"general"}`,
		alice.conn.next(t))
}

func TestRegisterRequiresUsername(t *testing.T) {
	p, h := newProfile(t)
	alice := connect(t, h)

	send(p, alice, `{"action":"register"}`)
	assert.JSONEq(t, `{"type":"error","message":"username required"}`, alice.conn.next(t))
}

func TestRegisterDuplicateName(t *testing.T) {
	p, h := newProfile(t)
	alice := connect(t, h)
	intruder := connect(t, h)

	send(p, alice, `{"action":"register","username":"alice"}`)
	alice.conn.next(t)

	send(p, intruder, `{"action":"register","username":"alice"}`)
	assert.JSONEq(t, `{"type":"error","message":"username already taken"}`, intruder.conn.next(t))

	// The first session is unaffected and still routable.
	send(p, alice, `{"action":"send_message","message":"hi"}`)
	assert.JSONEq(t,
		`{"type":"chat_message","room":"general","from":"alice","message":"hi"}`,
		alice.conn.next(t))
}

func TestActionsBeforeRegistration(t *testing.T) {
	p, h := newProfile(t)
	peer := connect(t, h)

	for _, frame := range []string{
		`{"action":"create_room","room":"sports"}`,
		`{"action":"join_room","room":"sports"}`,
		`{"action":"leave_room"}`,
		`{"action":"send_message","message":"hello"}`,
	} {
		send(p, peer, frame)
		assert.JSONEq(t, `{"type":"error","message":"register first"}`, peer.conn.next(t))
	}

	// No broadcast happened and the connection is still usable.
	send(p, peer, `{"action":"register","username":"late"}`)
	assert.JSONEq(t,
		`{"type":"info","message":"Registered as late","room":"general"}`,
		peer.conn.next(t))
}

func TestMalformedFrame(t *testing.T) {
	p, h := newProfile(t)
	peer := connect(t, h)

	send(p, peer, `{not json`)
	assert.JSONEq(t, `{"type":"error","message":"Invalid JSON"}`, peer.conn.next(t))

	// The connection stays open: a valid frame still works.
	send(p, peer, `{"action":"list_rooms"}`)
	assert.JSONEq(t, `{"type":"room_list","rooms":["general"]}`, peer.conn.next(t))
}

func TestUnknownAction(t *testing.T) {
	p, h := newProfile(t)
	peer := connect(t, h)

	send(p, peer, `{"action":"fly"}`)
	assert.JSONEq(t, `{"type":"error","message":"Unknown action"}`, peer.conn.next(t))

	send(p, peer, `{"no_action":true}`)
	assert.JSONEq(t, `{"type":"error","message":"Unknown action"}`, peer.conn.next(t))
}

func TestListRooms(t *testing.T) {
	p, h := newProfile(t)
	peer := connect(t, h)

	// list_rooms needs no registration in this profile.
	send(p, peer, `{"action":"list_rooms"}`)
	assert.JSONEq(t, `{"type":"room_list","rooms":["general"]}`, peer.conn.next(t))
}

func TestCreateRoom(t *testing.T) {
	p, h := newProfile(t)
	alice := connect(t, h)
	send(p, alice, `{"action":"register","username":"alice"}`)
	alice.conn.next(t)

	send(p, alice, `{"action":"create_room","room":"sports"}`)
	assert.JSONEq(t, `{"type":"info","message":"Room 'sports' created"}`, alice.conn.next(t))
	// The creator gets the refreshed room list as a follow-up frame.
	assert.JSONEq(t, `{"type":"room_list","rooms":["general","sports"]}`, alice.conn.next(t))

	send(p, alice, `{"action":"create_room","room":"sports"}`)
	assert.JSONEq(t, `{"type":"error","message":"room already exists"}`, alice.conn.next(t))

	send(p, alice, `{"action":"create_room"}`)
	assert.JSONEq(t, `{"type":"error","message":"room name required"}`, alice.conn.next(t))
}

func TestJoinAndLeave(t *testing.T) {
	p, h := newProfile(t)
	alice := connect(t, h)
	send(p, alice, `{"action":"register","username":"alice"}`)
	alice.conn.next(t)

	send(p, alice, `{"action":"join_room","room":"sports"}`)
	assert.JSONEq(t, `{"type":"error","message":"room does not exist"}`, alice.conn.next(t))

	send(p, alice, `{"action":"create_room","room":"sports"}`)
	alice.conn.next(t)
	alice.conn.next(t)

	send(p, alice, `{"action":"join_room","room":"sports"}`)
	assert.JSONEq(t, `{"type":"room_joined","room":"sports"}`, alice.conn.next(t))

	send(p, alice, `{"action":"leave_room"}`)
	assert.JSONEq(t, `{"type":"room_left","room":"sports"}`, alice.conn.next(t))

	send(p, alice, `{"action":"leave_room"}`)
	assert.JSONEq(t, `{"type":"error","message":"not in a room"}`, alice.conn.next(t))

	// Roomless sessions cannot chat.
	send(p, alice, `{"action":"send_message","message":"hi"}`)
	assert.JSONEq(t, `{"type":"error","message":"join a room first"}`, alice.conn.next(t))
}

func TestSendMessageRequiresText(t *testing.T) {
	p, h := newProfile(t)
	alice := connect(t, h)
	send(p, alice, `{"action":"register","username":"alice"}`)
	alice.conn.next(t)

	send(p, alice, `{"action":"send_message"}`)
	assert.JSONEq(t, `{"type":"error","message":"message required"}`, alice.conn.next(t))
}

func TestChatScenario(t *testing.T) {
	p, h := newProfile(t)

	alice := connect(t, h)
	send(p, alice, `{"action":"register","username":"alice"}`)
	assert.JSONEq(t,
		`{"type":"info","message":"Registered as alice","room":"general"}`,
		alice.conn.next(t))

	send(p, alice, `{"action":"create_room","room":"sports"}`)
	alice.conn.next(t)
	alice.conn.next(t)
	send(p, alice, `{"action":"join_room","room":"sports"}`)
	assert.JSONEq(t, `{"type":"room_joined","room":"sports"}`, alice.conn.next(t))

	require.Contains(t, h.Rooms(), "sports")

	bob := connect(t, h)
	send(p, bob, `{"action":"register","username":"bob"}`)
	bob.conn.next(t)
	send(p, bob, `{"action":"join_room","room":"sports"}`)
	bob.conn.next(t)

	carol := connect(t, h)
	send(p, carol, `{"action":"register","username":"carol"}`)
	carol.conn.next(t)

	send(p, bob, `{"action":"send_message","message":"hello"}`)

	want := `{"type":"chat_message","room":"sports","from":"bob","message":"hello"}`
	assert.JSONEq(t, want, alice.conn.next(t))
	// This profile includes the sender in the fan-out.
	assert.JSONEq(t, want, bob.conn.next(t))
	// Members of other rooms hear nothing.
	carol.conn.none(t)
}

func TestBroadcastAfterRoomSwitchExcludesOldRoom(t *testing.T) {
	p, h := newProfile(t)

	alice := connect(t, h)
	bob := connect(t, h)
	for _, tc := range []struct {
		peer *testPeer
		name string
	}{{alice, "alice"}, {bob, "bob"}} {
		frame, _ := json.Marshal(map[string]string{"action": "register", "username": tc.name})
		send(p, tc.peer, string(frame))
		tc.peer.conn.next(t)
	}

	send(p, alice, `{"action":"create_room","room":"sports"}`)
	alice.conn.next(t)
	alice.conn.next(t)
	send(p, alice, `{"action":"join_room","room":"sports"}`)
	alice.conn.next(t)

	// Alice left general; a general broadcast no longer reaches her.
	send(p, bob, `{"action":"send_message","message":"anyone here?"}`)
	assert.JSONEq(t,
		`{"type":"chat_message","room":"general","from":"bob","message":"anyone here?"}`,
		bob.conn.next(t))
	alice.conn.none(t)
}
