package envelope

// Request actions.
const (
	ActionCreateRoom = "CREATE_ROOM"
	ActionJoinRoom   = "JOIN_ROOM"
	ActionLeaveRoom  = "LEAVE_ROOM"
	ActionSendMsg    = "SEND_MSG"
)

// Response types.
const (
	TypeInfo   = "INFO"
	TypeError  = "ERROR"
	TypeNewMsg = "NEW_MSG"
)

type requestPayload struct {
	RoomName string `json:"roomName"`
	Content  string `json:"content"`
}

type request struct {
	Action  string         `json:"action"`
	Payload requestPayload `json:"payload"`
}

type messagePayload struct {
	Message string `json:"message"`
}

type noticeResponse struct {
	Type    string         `json:"type"`
	Payload messagePayload `json:"payload"`
}

type newMsgPayload struct {
	From    string `json:"from"`
	Content string `json:"content"`
	Room    string `json:"room"`
}

type newMsgResponse struct {
	Type    string        `json:"type"`
	Payload newMsgPayload `json:"payload"`
}
