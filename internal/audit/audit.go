package audit

import (
	"github.com/Adri-2310/chatMulti/pkg/log"
)

// Audit actions for the chat relay.
const (
	ActionRegister    = "chat.register"
	ActionCreateRoom  = "chat.create_room"
	ActionJoinRoom    = "chat.join_room"
	ActionLeaveRoom   = "chat.leave_room"
	ActionSendMessage = "chat.send_message"
	ActionDisconnect  = "chat.disconnect"
)

// Log emits a structured audit log entry.
func Log(action string, username string, msg string) {
	log.L().Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(log.FieldAction, action).
		Str(log.FieldUsername, username).
		Msg(msg)
}
