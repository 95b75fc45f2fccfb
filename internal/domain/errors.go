package domain

import "errors"

// Validation errors returned by hub operations. Profiles translate these
// into wire-level error frames; none of them ever closes a connection.
var (
	ErrNameRequired      = errors.New("name required")
	ErrNameTaken         = errors.New("name already taken")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotRegistered     = errors.New("not registered")
	ErrRoomExists        = errors.New("room already exists")
	ErrRoomNotFound      = errors.New("room does not exist")
	ErrNotInRoom         = errors.New("not in a room")
)
