package errors

import "fmt"

// Sentinel errors for the relay. Messages double as the client-facing
// text of `error` events, so they stay short and free of internal detail.
var (
	ErrUnauthorized      = fmt.Errorf("unauthorized")
	ErrNotAMember        = fmt.Errorf("room not found or not a member")
	ErrForbidden         = fmt.Errorf("permission denied")
	ErrUserNotFound      = fmt.Errorf("user not found")
	ErrRoomNotFound      = fmt.Errorf("room not found")
	ErrTargetBanned      = fmt.Errorf("user is banned")
	ErrMuted             = fmt.Errorf("you are muted")
	ErrTooLarge          = fmt.Errorf("file exceeds the maximum allowed size")
	ErrInsufficientSpace = fmt.Errorf("not enough storage space")
	ErrMalformedEvent    = fmt.Errorf("malformed event")
	ErrBlobNotFound      = fmt.Errorf("file not found or expired")

	ErrSinkClosed = fmt.Errorf("sink closed")
	ErrSinkFull   = fmt.Errorf("sink buffer full")

	ErrEmptyWords = fmt.Errorf("no censored words have been provided")
)
