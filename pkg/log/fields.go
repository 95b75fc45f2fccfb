package log

const (
	// Connection
	FieldRemoteAddr = "remote_addr"
	FieldTransport  = "transport"

	// Chat
	FieldUsername = "username"
	FieldRoom     = "room"
	FieldAction   = "action"
	FieldProfile  = "profile"

	// Service
	FieldService = "service"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
