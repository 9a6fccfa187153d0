package model

import (
	"fmt"
	"strings"
	"time"
)

// SubmissionStatus is the backend vocabulary for document submissions.
type SubmissionStatus string

// Submission statuses.
const (
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionApproved  SubmissionStatus = "approved"
	SubmissionRejected  SubmissionStatus = "rejected"
)

// TaskStatus is the backend vocabulary for candidate tasks.
type TaskStatus string

// Task statuses.
const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// ParseTaskStatus accepts the backend spelling and the view spelling.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return TaskPending, nil
	case "in_progress", "in-progress":
		return TaskInProgress, nil
	case "done", "completed":
		return TaskDone, nil
	}
	return "", fmt.Errorf("%w: task status %q", ErrUnknownStatus, s)
}

// TrainingStatus is the backend vocabulary for training progress.
type TrainingStatus string

// Training statuses.
const (
	TrainingNotStarted TrainingStatus = "not_started"
	TrainingInProgress TrainingStatus = "in_progress"
	TrainingCompleted  TrainingStatus = "completed"
)

// ParseTrainingStatus accepts the backend spelling and the view spelling.
func ParseTrainingStatus(s string) (TrainingStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "not_started", "not-started", "pending":
		return TrainingNotStarted, nil
	case "in_progress", "in-progress":
		return TrainingInProgress, nil
	case "completed", "done":
		return TrainingCompleted, nil
	}
	return "", fmt.Errorf("%w: training status %q", ErrUnknownStatus, s)
}

// Status is the view vocabulary every view-model is aggregated on.
type Status string

// View statuses.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// ParseStatus parses a view status; used by status filters.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending, "not-started":
		return StatusPending, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusCompleted:
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// dateLayouts are the due-date shapes the backend emits.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses a backend date or timestamp. Dates without a zone are UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
