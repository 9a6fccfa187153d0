package model

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	instancePrefix = "instance:"
	templatePrefix = "template:"
)

// ViewID identifies a view-model. Records backed by an instance use the
// instance id, the rest a template-derived id; the prefixes keep the two
// spaces disjoint.
type ViewID string

// InstanceViewID returns the id of a view backed by instance id.
func InstanceViewID(id int64) ViewID {
	return ViewID(instancePrefix + strconv.FormatInt(id, 10))
}

// TemplateViewID returns the id of a view that has no instance yet.
func TemplateViewID(id int64) ViewID {
	return ViewID(templatePrefix + strconv.FormatInt(id, 10))
}

// InstanceID returns the backing instance id, if any.
func (v ViewID) InstanceID() (int64, bool) {
	return v.numeric(instancePrefix)
}

// TemplateID returns the template id of a template-only view, if it is one.
func (v ViewID) TemplateID() (int64, bool) {
	return v.numeric(templatePrefix)
}

func (v ViewID) numeric(prefix string) (int64, bool) {
	rest, ok := strings.CutPrefix(string(v), prefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ParseViewID validates a user-supplied view id.
func ParseViewID(s string) (ViewID, error) {
	v := ViewID(strings.TrimSpace(s))
	if _, ok := v.InstanceID(); ok {
		return v, nil
	}
	if _, ok := v.TemplateID(); ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidViewID, s)
}

// Document is the merged view of a DocumentTemplate and its submission.
type Document struct {
	ID           ViewID
	TemplateID   int64
	SubmissionID *int64
	Name         string
	Description  string
	CategoryID   *int64
	CategoryName string
	Status       Status
	// Review keeps the backend status; empty when nothing was submitted.
	Review      SubmissionStatus
	Rejected    bool
	ReviewNotes *string
	FilePath    *string
	SubmittedAt *string
	ReviewedAt  *string
	IsRequired  bool
	IsCompleted bool
}

// ProgressStatus implements progress.Trackable.
func (d Document) ProgressStatus() Status { return d.Status }

// DueDate implements progress.Trackable; documents carry no due date.
func (d Document) DueDate() *string { return nil }

// Task is the merged view of an OnboardingTask and the candidate's task.
type Task struct {
	ID               ViewID
	TemplateID       int64
	CandidateTaskID  *int64
	Title            string
	Description      string
	AssigneeRole     string
	DueDaysFromStart int
	Status           Status
	Due              *string
	CompletedAt      *string
	IsRequired       bool
	IsCompleted      bool
}

// ProgressStatus implements progress.Trackable.
func (t Task) ProgressStatus() Status { return t.Status }

// DueDate implements progress.Trackable.
func (t Task) DueDate() *string { return t.Due }

// Difficulty grades a training module by its length.
type Difficulty string

// Difficulties.
const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// TrainingModuleView is the merged view of a TrainingModule and its progress.
type TrainingModuleView struct {
	ID              ViewID
	ModuleID        int64
	ProgressID      *int64
	Name            string
	Description     string
	DurationMinutes int
	Duration        string
	Category        string
	Difficulty      Difficulty
	Status          Status
	Progress        int
	ContentURL      *string
	Due             *string
	StartedAt       *string
	CompletedAt     *string
	IsRequired      bool
	IsCompleted     bool
}

// ProgressStatus implements progress.Trackable.
func (m TrainingModuleView) ProgressStatus() Status { return m.Status }

// DueDate implements progress.Trackable.
func (m TrainingModuleView) DueDate() *string { return m.Due }
