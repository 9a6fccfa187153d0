package upload

import (
	"errors"
	"fmt"
)

// ErrValidation marks every local file rejection. Rejected files never
// reach the network.
var ErrValidation = errors.New("upload validation failed")

// Rejection reasons, also used as metric labels.
const (
	ReasonSize  = "size"
	ReasonType  = "type"
	ReasonEmpty = "empty"
)

// ValidationError describes why a file was rejected.
type ValidationError struct {
	File    string
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.File == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Is lets errors.Is match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
