package progress

import (
	"strconv"
	"time"

	"github.com/okian/onboard/internal/domain/model"
)

// AllCategories is the key of the bucket counting every document.
const AllCategories = "all"

// TrainingSummary extends Summary with training-only counters.
type TrainingSummary struct {
	Summary
	NotStarted   int `json:"not_started"`
	TotalMinutes int `json:"total_minutes"`
}

// Training summarizes training views. NotStarted mirrors Pending.
func Training(views []model.TrainingModuleView, now time.Time) TrainingSummary {
	ts := TrainingSummary{Summary: Aggregate(views, now)}
	ts.NotStarted = ts.Pending
	for _, v := range views {
		ts.TotalMinutes += v.DurationMinutes
	}
	return ts
}

// CategoryCount is the number of documents and completed documents in one
// category.
type CategoryCount struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
}

// DocumentCategories counts documents per category. The "all" bucket comes
// first, then categories in the given order. Documents with an unknown
// category only count towards "all".
func DocumentCategories(views []model.Document, categories []model.DocumentCategory) []CategoryCount {
	out := make([]CategoryCount, 0, len(categories)+1)
	out = append(out, CategoryCount{Key: AllCategories, Name: "All Documents"})
	pos := make(map[int64]int, len(categories))
	for _, c := range categories {
		pos[c.ID] = len(out)
		out = append(out, CategoryCount{Key: CategoryKey(c.ID), Name: c.Name})
	}
	for _, v := range views {
		out[0].Total++
		if v.IsCompleted {
			out[0].Completed++
		}
		if v.CategoryID == nil {
			continue
		}
		i, ok := pos[*v.CategoryID]
		if !ok {
			continue
		}
		out[i].Total++
		if v.IsCompleted {
			out[i].Completed++
		}
	}
	return out
}

// CategoryKey is the filter key of a document category.
func CategoryKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Overall folds the dashboard counters into one summary. Approved documents
// count as completed, submitted ones as in progress.
func Overall(stats model.DashboardStats) Summary {
	s := Summary{
		Total:     stats.Documents.Total + stats.Tasks.Total + stats.Training.Total,
		Completed: stats.Documents.Approved + stats.Tasks.Completed + stats.Training.Completed,
	}
	inProgress := stats.Documents.Submitted - stats.Documents.Approved
	if inProgress > 0 {
		s.InProgress = inProgress
	}
	if rest := s.Total - s.Completed - s.InProgress; rest > 0 {
		s.Pending = rest
	}
	s.CompletionPercentage = Percent(s.Completed, s.Total)
	return s
}
