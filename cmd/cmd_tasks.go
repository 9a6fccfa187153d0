package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/okian/onboard/internal/domain/model"
	"github.com/spf13/cobra"
)

func (c *cli) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and update onboarding tasks",
	}
	cmd.AddCommand(c.tasksListCmd(), c.tasksSetStatusCmd(), c.tasksCompleteCmd())
	return cmd
}

func (c *cli) tasksListCmd() *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List onboarding tasks with status and due date",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := qf.query()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}
			tasks := c.portal.Tasks
			if err := tasks.Load(ctx); err != nil {
				return shown(err, tasks.State().Error)
			}
			tasks.SetQuery(q)

			t := newTable(c.stdout, "ID", "TITLE", "STATUS", "DUE", "REQUIRED", "COMPLETED")
			for _, v := range tasks.Visible() {
				t.row(string(v.ID), v.Title, string(v.Status), orDash(v.Due), yesNo(v.IsRequired), orDash(v.CompletedAt))
			}
			if err := t.flush(); err != nil {
				return err
			}
			fmt.Fprintln(c.stdout)
			printSummary(c.stdout, "Tasks", tasks.Summary(time.Now()))
			return nil
		},
	}
	qf.bind(cmd, false)
	return cmd
}

func (c *cli) tasksSetStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <view-id> <status>",
		Short: "Set a task to pending, in-progress or done",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseViewID(args[0])
			if err != nil {
				return err
			}
			status, err := model.ParseTaskStatus(args[1])
			if err != nil {
				return fmt.Errorf("%w: %w", errUsage, err)
			}
			return c.updateTask(cmd, id, status)
		},
	}
}

func (c *cli) tasksCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <view-id>",
		Short: "Mark a task done",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseViewID(args[0])
			if err != nil {
				return err
			}
			return c.updateTask(cmd, id, model.TaskDone)
		},
	}
}

func (c *cli) updateTask(cmd *cobra.Command, id model.ViewID, status model.TaskStatus) error {
	ctx := cmd.Context()
	if err := c.requireSession(ctx); err != nil {
		return err
	}
	tasks := c.portal.Tasks
	if err := tasks.Load(ctx); err != nil {
		return shown(err, tasks.State().Error)
	}
	if err := tasks.UpdateStatus(ctx, id, status); err != nil {
		return shown(err, tasks.State().Error)
	}
	for _, v := range tasks.State().Views {
		if v.ID == id {
			fmt.Fprintf(c.stdout, "%s %q is now %s\n", v.ID, v.Title, v.Status)
			return nil
		}
	}
	fmt.Fprintf(c.stdout, "%s updated\n", id)
	return nil
}

func parseViewID(s string) (model.ViewID, error) {
	id, err := model.ParseViewID(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errUsage, err)
	}
	return id, nil
}

// parseScore reads an optional score flag; empty means no score.
func parseScore(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 100 {
		return nil, fmt.Errorf("%w: --score must be an integer between 0 and 100", errUsage)
	}
	return &n, nil
}
