// Package progress aggregates view-models into completion summaries. All
// functions take the evaluation time explicitly and are deterministic.
package progress

import (
	"math"
	"time"

	"github.com/okian/onboard/internal/domain/model"
)

// Trackable is anything with a view status and an optional due date.
type Trackable interface {
	ProgressStatus() model.Status
	DueDate() *string
}

// Summary counts items per status. Completed+InProgress+Pending never
// exceeds Total; Overdue counts only non-completed items past due.
type Summary struct {
	Total                int `json:"total"`
	Completed            int `json:"completed"`
	InProgress           int `json:"in_progress"`
	Pending              int `json:"pending"`
	Overdue              int `json:"overdue"`
	CompletionPercentage int `json:"completion_percentage"`
}

// Aggregate summarizes items as of now.
func Aggregate[T Trackable](items []T, now time.Time) Summary {
	s := Summary{Total: len(items)}
	for _, it := range items {
		status := it.ProgressStatus()
		switch status {
		case model.StatusCompleted:
			s.Completed++
		case model.StatusInProgress:
			s.InProgress++
		case model.StatusPending:
			s.Pending++
		}
		if status != model.StatusCompleted && IsOverdue(it.DueDate(), now) {
			s.Overdue++
		}
	}
	s.CompletionPercentage = Percent(s.Completed, s.Total)
	return s
}

// IsOverdue reports whether due parses to an instant strictly before now.
// Missing or unparsable dates are never overdue.
func IsOverdue(due *string, now time.Time) bool {
	if due == nil {
		return false
	}
	t, ok := model.ParseDate(*due)
	if !ok {
		return false
	}
	return t.Before(now)
}

// Percent returns round(part/total*100), or 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
