package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/okian/onboard/internal/domain/model"
	"github.com/spf13/cobra"
)

func (c *cli) trainingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "training",
		Short: "List training modules and report progress",
	}
	cmd.AddCommand(c.trainingListCmd(), c.trainingUpdateCmd())
	return cmd
}

func (c *cli) trainingListCmd() *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List training modules with progress",
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
			training := c.portal.Training
			if err := training.Load(ctx); err != nil {
				return shown(err, training.State().Error)
			}
			training.SetQuery(q)

			t := newTable(c.stdout, "ID", "MODULE", "CATEGORY", "LEVEL", "DURATION", "STATUS", "PROGRESS", "DUE")
			for _, m := range training.Visible() {
				t.row(string(m.ID), m.Name, m.Category, string(m.Difficulty), m.Duration,
					string(m.Status), strconv.Itoa(m.Progress)+"%", orDash(m.Due))
			}
			if err := t.flush(); err != nil {
				return err
			}

			s := training.Summary(time.Now())
			fmt.Fprintln(c.stdout)
			printSummary(c.stdout, "Training", s.Summary)
			fmt.Fprintf(c.stdout, "%d not started, %d minutes in total\n", s.NotStarted, s.TotalMinutes)
			return nil
		},
	}
	qf.bind(cmd, true)
	return cmd
}

func (c *cli) trainingUpdateCmd() *cobra.Command {
	var score string
	cmd := &cobra.Command{
		Use:   "update <view-id> <status>",
		Short: "Report progress on a started training module",
		Long: `Report progress on a training module: not-started, in-progress or completed,
optionally with a score. Only modules the candidate has started carry a
progress record and can be updated.`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseViewID(args[0])
			if err != nil {
				return err
			}
			status, err := model.ParseTrainingStatus(args[1])
			if err != nil {
				return fmt.Errorf("%w: %w", errUsage, err)
			}
			sc, err := parseScore(score)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}
			training := c.portal.Training
			if err := training.Load(ctx); err != nil {
				return shown(err, training.State().Error)
			}
			if err := training.UpdateProgress(ctx, id, status, sc); err != nil {
				return shown(err, training.State().Error)
			}
			for _, m := range training.State().Views {
				if m.ID == id {
					fmt.Fprintf(c.stdout, "%s %q is now %s (%d%%)\n", m.ID, m.Name, m.Status, m.Progress)
					return nil
				}
			}
			fmt.Fprintf(c.stdout, "%s updated\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&score, "score", "", "Score between 0 and 100")
	return cmd
}
