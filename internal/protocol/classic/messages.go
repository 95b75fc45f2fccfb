package classic

// Request actions.
const (
	ActionRegister    = "register"
	ActionListRooms   = "list_rooms"
	ActionCreateRoom  = "create_room"
	ActionJoinRoom    = "join_room"
	ActionLeaveRoom   = "leave_room"
	ActionSendMessage = "send_message"
)

// Response types.
const (
	TypeInfo        = "info"
	TypeError       = "error"
	TypeRoomList    = "room_list"
	TypeRoomJoined  = "room_joined"
	TypeRoomLeft    = "room_left"
	TypeChatMessage = "chat_message"
)

// request carries every field a classic frame may use; absent fields decode
// to their zero value, matching the permissive source protocol.
type request struct {
	Action   string `json:"action"`
	Username string `json:"username"`
	Room     string `json:"room"`
	Message  string `json:"message"`
}

type infoResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Room    string `json:"room,omitempty"`
}

type errorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type roomListResponse struct {
	Type  string   `json:"type"`
	Rooms []string `json:"rooms"`
}

type roomJoinedResponse struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

type roomLeftResponse struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

type chatMessage struct {
	Type    string `json:"type"`
	Room    string `json:"room"`
	From    string `json:"from"`
	Message string `json:"message"`
}
