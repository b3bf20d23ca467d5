package chat

import "errors"

// Business outcomes. These are expected, user-facing conditions and never
// leave partial state behind. Anything else returned by this package is a
// storage fault and the caller should retry.
var (
	ErrInvalidTarget = errors.New("cannot start a conversation with yourself")
	ErrEmptyBody     = errors.New("message body must not be empty")
	ErrAccessDenied  = errors.New("you are not a member of this chat room")

	ErrNotFound             = errors.New("event not found")
	ErrClosed               = errors.New("event is closed")
	ErrFull                 = errors.New("event is full")
	ErrAlreadyJoined        = errors.New("already joined this event")
	ErrNotParticipant       = errors.New("not a participant of this event")
	ErrOrganizerCannotLeave = errors.New("organizer cannot leave their own event")
	ErrNotOrganizer         = errors.New("only the organizer can change this event")
	ErrInvalidCapacity      = errors.New("max members must be at least 1")
	ErrInvalidStatus        = errors.New("status must be 'open' or 'closed'")
)
