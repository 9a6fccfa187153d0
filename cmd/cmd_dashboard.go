package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func (c *cli) dashboardCmd() *cobra.Command {
	var detailed bool
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show onboarding stats, overall progress and recent activity",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}

			if detailed {
				if err := c.portal.Refresh(ctx); err != nil {
					return shown(err, c.portal.Dashboard.State().Error)
				}
			} else if err := c.portal.Dashboard.Load(ctx); err != nil {
				return shown(err, c.portal.Dashboard.State().Error)
			}

			st := c.portal.Dashboard.State()
			if st.User != nil {
				fmt.Fprintf(c.stdout, "Welcome, %s\n\n", st.User.FullName)
			}
			s := st.Stats
			t := newTable(c.stdout, "AREA", "TOTAL", "DONE", "DETAIL")
			t.row("Documents", strconv.Itoa(s.Documents.Total), strconv.Itoa(s.Documents.Approved),
				fmt.Sprintf("%d submitted, %d approved", s.Documents.Submitted, s.Documents.Approved))
			t.row("Tasks", strconv.Itoa(s.Tasks.Total), strconv.Itoa(s.Tasks.Completed), "")
			t.row("Training", strconv.Itoa(s.Training.Total), strconv.Itoa(s.Training.Completed), "")
			t.row("Notifications", strconv.Itoa(s.Notifications), "", "")
			if err := t.flush(); err != nil {
				return err
			}

			fmt.Fprintln(c.stdout)
			printSummary(c.stdout, "Overall", st.Overall)
			if detailed {
				summaries := c.portal.Progress(time.Now())
				printSummary(c.stdout, "Documents", summaries["documents"])
				printSummary(c.stdout, "Tasks", summaries["tasks"])
				printSummary(c.stdout, "Training", summaries["training"])
			}

			fmt.Fprintf(c.stdout, "\nRecent activity (%d unread)\n", c.portal.Dashboard.UnreadCount())
			if len(st.Notifications) == 0 {
				fmt.Fprintln(c.stdout, "  nothing yet")
				return nil
			}
			n := newTable(c.stdout, "", "WHEN", "TITLE", "MESSAGE")
			for _, note := range st.Notifications {
				mark := "*"
				if note.IsRead {
					mark = " "
				}
				n.row(mark, note.CreatedAt, note.Title, note.Message)
			}
			return n.flush()
		},
	}
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Also load every domain and show per-domain progress")
	return cmd
}
