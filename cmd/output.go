package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/okian/onboard/internal/domain/progress"
)

// table writes tab-separated rows aligned into columns.
type table struct {
	w *tabwriter.Writer
}

func newTable(out io.Writer, header ...string) *table {
	t := &table{w: tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)}
	t.row(header...)
	return t
}

func (t *table) row(cols ...string) {
	fmt.Fprintln(t.w, strings.Join(cols, "\t"))
}

func (t *table) flush() error { return t.w.Flush() }

// orDash renders optional strings.
func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// bar renders a percentage as a fixed-width progress bar.
func bar(pct int) string {
	const width = 20
	pct = max(0, min(100, pct))
	filled := pct * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "] " + fmt.Sprintf("%3d%%", pct)
}

func printSummary(out io.Writer, title string, s progress.Summary) {
	fmt.Fprintf(out, "%-10s %s  %d/%d completed, %d in progress, %d pending",
		title, bar(s.CompletionPercentage), s.Completed, s.Total, s.InProgress, s.Pending)
	if s.Overdue > 0 {
		fmt.Fprintf(out, ", %d overdue", s.Overdue)
	}
	fmt.Fprintln(out)
}
