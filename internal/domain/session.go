package domain

// DefaultRoom is the room every session starts in. It always exists and is
// never deleted, regardless of membership count.
const DefaultRoom = "general"

// Session is the server-side record of one connected, registered client.
// The hub is the only mutator; all fields are guarded by the hub's lock.
type Session struct {
	// Name is the session identity on the wire: either the user-chosen
	// username or a server-generated identifier, depending on profile.
	Name string

	// Room is the name of the room the session currently occupies.
	// Empty means roomless (only reachable in the classic profile).
	Room string
}

// InRoom reports whether the session currently occupies a room.
func (s *Session) InRoom() bool {
	return s.Room != ""
}
