package session

import "errors"

// Session errors.
var (
	ErrNoSession      = errors.New("no session")
	ErrEmptyTokens    = errors.New("token pair has no access token")
	ErrUnknownBackend = errors.New("unknown session backend")
)
