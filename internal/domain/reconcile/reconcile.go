// Package reconcile merges backend templates with the candidate's instances
// into view-models. Every function is pure: inputs are never modified and the
// result is freshly allocated, so calling it again after either collection
// lands always rebuilds the same views.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/okian/onboard/internal/domain/model"
)

// Training defaults and thresholds.
const (
	defaultDurationMinutes  = 60
	beginnerMaxMinutes      = 60
	intermediateMaxMinutes  = 120
	defaultTrainingCategory = "Onboarding"
)

// Result holds the reconciled views in template order and the ids of
// instances whose template was not in the template list. Dropped instances
// never produce a view and are not an error.
type Result[T any] struct {
	Views   []T
	Dropped []int64
}

// index returns the first instance per template id and the ids of instances
// pointing at no known template.
func index[I any](templateIDs map[int64]struct{}, instances []I, key func(I) int64, id func(I) int64) (map[int64]I, []int64) {
	byTemplate := make(map[int64]I, len(instances))
	var dropped []int64
	for _, inst := range instances {
		tid := key(inst)
		if _, ok := templateIDs[tid]; !ok {
			dropped = append(dropped, id(inst))
			continue
		}
		if _, seen := byTemplate[tid]; seen {
			continue
		}
		byTemplate[tid] = inst
	}
	return byTemplate, dropped
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptr[T any](v T) *T { return &v }

// Documents merges document templates with submissions. Categories only
// resolve CategoryName and may be empty.
func Documents(templates []model.DocumentTemplate, submissions []model.DocumentSubmission, categories []model.DocumentCategory) Result[model.Document] {
	ids := make(map[int64]struct{}, len(templates))
	for _, t := range templates {
		ids[t.ID] = struct{}{}
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	byTemplate, dropped := index(ids, submissions,
		func(s model.DocumentSubmission) int64 { return s.TemplateID },
		func(s model.DocumentSubmission) int64 { return s.ID })

	views := make([]model.Document, 0, len(templates))
	for _, t := range templates {
		d := model.Document{
			ID:          model.TemplateViewID(t.ID),
			TemplateID:  t.ID,
			Name:        t.Name,
			Description: deref(t.Description),
			Status:      model.StatusPending,
			IsRequired:  t.RequiredForRole != nil && *t.RequiredForRole == model.RoleCandidate,
		}
		if t.CategoryID != nil {
			d.CategoryID = ptr(*t.CategoryID)
			d.CategoryName = names[*t.CategoryID]
		}
		if s, ok := byTemplate[t.ID]; ok {
			d.ID = model.InstanceViewID(s.ID)
			d.SubmissionID = ptr(s.ID)
			d.Status = DocumentStatus(s.Status)
			d.Review = s.Status
			d.Rejected = s.Status == model.SubmissionRejected
			d.ReviewNotes = s.Notes
			if s.FilePath != "" {
				d.FilePath = ptr(s.FilePath)
			}
			if s.CreatedAt != "" {
				d.SubmittedAt = ptr(s.CreatedAt)
			}
			d.ReviewedAt = s.ReviewedAt
		}
		d.IsCompleted = d.Status == model.StatusCompleted
		views = append(views, d)
	}
	return Result[model.Document]{Views: views, Dropped: dropped}
}

// DocumentStatus maps a submission status onto the view vocabulary. A
// rejected submission goes back to pending.
func DocumentStatus(s model.SubmissionStatus) model.Status {
	switch s {
	case model.SubmissionApproved:
		return model.StatusCompleted
	case model.SubmissionSubmitted:
		return model.StatusInProgress
	default:
		return model.StatusPending
	}
}

// Tasks merges task templates with the candidate's tasks.
func Tasks(templates []model.OnboardingTask, instances []model.CandidateTask) Result[model.Task] {
	ids := make(map[int64]struct{}, len(templates))
	for _, t := range templates {
		ids[t.ID] = struct{}{}
	}
	byTemplate, dropped := index(ids, instances,
		func(c model.CandidateTask) int64 { return c.TaskID },
		func(c model.CandidateTask) int64 { return c.ID })

	views := make([]model.Task, 0, len(templates))
	for _, t := range templates {
		v := model.Task{
			ID:               model.TemplateViewID(t.ID),
			TemplateID:       t.ID,
			Title:            t.Title,
			Description:      deref(t.Description),
			AssigneeRole:     t.AssigneeRole,
			DueDaysFromStart: t.DueDaysFromStart,
			Status:           model.StatusPending,
			IsRequired:       t.AssigneeRole == model.RoleCandidate,
		}
		if c, ok := byTemplate[t.ID]; ok {
			v.ID = model.InstanceViewID(c.ID)
			v.CandidateTaskID = ptr(c.ID)
			v.Status = TaskStatus(c.Status)
			v.Due = c.DueDate
			v.CompletedAt = c.CompletedAt
		}
		v.IsCompleted = v.Status == model.StatusCompleted
		views = append(views, v)
	}
	return Result[model.Task]{Views: views, Dropped: dropped}
}

// TaskStatus maps a candidate task status onto the view vocabulary.
func TaskStatus(s model.TaskStatus) model.Status {
	switch s {
	case model.TaskDone:
		return model.StatusCompleted
	case model.TaskInProgress:
		return model.StatusInProgress
	default:
		return model.StatusPending
	}
}

// Training merges training modules with the candidate's progress. Modules
// carry no role, so every module served to the candidate is required.
func Training(modules []model.TrainingModule, progress []model.TrainingProgress) Result[model.TrainingModuleView] {
	ids := make(map[int64]struct{}, len(modules))
	for _, m := range modules {
		ids[m.ID] = struct{}{}
	}
	byModule, dropped := index(ids, progress,
		func(p model.TrainingProgress) int64 { return p.ModuleID },
		func(p model.TrainingProgress) int64 { return p.ID })

	views := make([]model.TrainingModuleView, 0, len(modules))
	for _, m := range modules {
		minutes := defaultDurationMinutes
		if m.DurationMinutes != nil {
			minutes = *m.DurationMinutes
		}
		v := model.TrainingModuleView{
			ID:              model.TemplateViewID(m.ID),
			ModuleID:        m.ID,
			Name:            m.Title,
			Description:     deref(m.Description),
			DurationMinutes: minutes,
			Duration:        DurationLabel(minutes),
			Category:        Category(m.Title),
			Difficulty:      DifficultyFor(minutes),
			Status:          model.StatusPending,
			ContentURL:      m.ContentURL,
			IsRequired:      true,
		}
		if p, ok := byModule[m.ID]; ok {
			v.ID = model.InstanceViewID(p.ID)
			v.ProgressID = ptr(p.ID)
			v.Status = TrainingStatus(p.Status)
			v.Progress = clampPercent(p.CompletionPercentage)
			v.Due = p.DueDate
			v.StartedAt = p.StartedAt
			v.CompletedAt = p.CompletedAt
		}
		v.IsCompleted = v.Status == model.StatusCompleted
		views = append(views, v)
	}
	return Result[model.TrainingModuleView]{Views: views, Dropped: dropped}
}

// TrainingStatus maps a training progress status onto the view vocabulary.
func TrainingStatus(s model.TrainingStatus) model.Status {
	switch s {
	case model.TrainingCompleted:
		return model.StatusCompleted
	case model.TrainingInProgress:
		return model.StatusInProgress
	default:
		return model.StatusPending
	}
}

// DurationLabel renders minutes as "1h 30m", "2h 0m" or "45m".
func DurationLabel(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// DifficultyFor grades a module by its length.
func DifficultyFor(minutes int) model.Difficulty {
	switch {
	case minutes <= beginnerMaxMinutes:
		return model.DifficultyBeginner
	case minutes <= intermediateMaxMinutes:
		return model.DifficultyIntermediate
	default:
		return model.DifficultyAdvanced
	}
}

// categoryKeywords are checked in order against the lowercased title.
var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"security", "Security"},
	{"compliance", "Compliance"},
	{"technical", "Technical Skills"},
}

// Category derives a display category from a module title.
func Category(title string) string {
	lower := strings.ToLower(title)
	for _, k := range categoryKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.category
		}
	}
	return defaultTrainingCategory
}

func clampPercent(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
