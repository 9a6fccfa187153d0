package model

import "errors"

// Sentinel kinds for model parsing errors.
var (
	ErrUnknownStatus = errors.New("unknown status")
	ErrInvalidViewID = errors.New("invalid view id")
)
