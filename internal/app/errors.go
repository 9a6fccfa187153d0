package app

import (
	"errors"

	"github.com/okian/onboard/internal/adapters/http/client"
	"github.com/okian/onboard/internal/domain/upload"
)

// Store errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrNoInstance  = errors.New("no instance for this item yet")
	ErrNotLoggedIn = errors.New("not logged in")
)

// Fallback messages shown when an error carries nothing better.
const (
	msgInvalidCredentials = "Invalid credentials"
	msgLoginFailed        = "Login failed"
	msgSessionExpired     = "Your session has expired. Please log in again."
	msgLoadDocuments      = "Failed to load documents"
	msgUploadDocument     = "Failed to upload document"
	msgLoadTasks          = "Failed to load tasks"
	msgUpdateTask         = "Failed to update task status"
	msgLoadTraining       = "Failed to load training modules"
	msgUpdateTraining     = "Failed to update training progress"
	msgLoadDashboard      = "Failed to load dashboard data"
	msgMarkNotification   = "Failed to mark notification as read"
	msgNoInstance         = "This item has not been started yet"
	msgNotFound           = "Item not found"
)

// UserMessage turns err into the text a candidate sees. Validation errors
// speak for themselves, backend details are shown verbatim, and anything
// else falls back to the action's generic message.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var ve *upload.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	if detail, ok := client.DetailOf(err); ok {
		return detail
	}
	switch {
	case errors.Is(err, ErrNoInstance):
		return msgNoInstance
	case errors.Is(err, ErrNotFound):
		return msgNotFound
	}
	return fallback
}
