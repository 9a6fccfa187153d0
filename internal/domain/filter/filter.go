// Package filter narrows view-model lists the way the portal's search and
// filter bars do.
package filter

import (
	"strings"

	"github.com/okian/onboard/internal/domain/model"
	"github.com/okian/onboard/internal/domain/progress"
)

// All matches every category.
const All = "all"

// Query is a search over view-models. Empty fields match everything.
// Text is a case-insensitive substring over the name or title and the
// description. Category is a document category key or a training category
// name; tasks have no category and ignore it.
type Query struct {
	Text     string
	Status   model.Status
	Category string
}

// IsZero reports whether the query matches everything.
func (q Query) IsZero() bool {
	return strings.TrimSpace(q.Text) == "" && q.Status == "" && q.anyCategory()
}

func (q Query) anyCategory() bool {
	c := strings.TrimSpace(q.Category)
	return c == "" || strings.EqualFold(c, All)
}

func (q Query) matchText(fields ...string) bool {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	if needle == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func (q Query) matchStatus(s model.Status) bool {
	return q.Status == "" || q.Status == s
}

func (q Query) matchCategory(c string) bool {
	return q.anyCategory() || strings.EqualFold(strings.TrimSpace(q.Category), c)
}

func apply[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Documents filters document views; Category is a category key.
func Documents(views []model.Document, q Query) []model.Document {
	return apply(views, func(d model.Document) bool {
		category := ""
		if d.CategoryID != nil {
			category = progress.CategoryKey(*d.CategoryID)
		}
		return q.matchText(d.Name, d.Description) && q.matchStatus(d.Status) && q.matchCategory(category)
	})
}

// Tasks filters task views.
func Tasks(views []model.Task, q Query) []model.Task {
	return apply(views, func(t model.Task) bool {
		return q.matchText(t.Title, t.Description) && q.matchStatus(t.Status)
	})
}

// Training filters training views; Category is the derived category name.
func Training(views []model.TrainingModuleView, q Query) []model.TrainingModuleView {
	return apply(views, func(m model.TrainingModuleView) bool {
		return q.matchText(m.Name, m.Description) && q.matchStatus(m.Status) && q.matchCategory(m.Category)
	})
}
