package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/okian/onboard/internal/domain/filter"
	"github.com/okian/onboard/internal/domain/model"
	"github.com/okian/onboard/internal/domain/progress"
	"github.com/okian/onboard/internal/domain/upload"
	"github.com/spf13/cobra"
)

// queryFlags are the search and filter flags shared by the list commands.
type queryFlags struct {
	search   string
	status   string
	category string
}

func (q *queryFlags) bind(cmd *cobra.Command, withCategory bool) {
	cmd.Flags().StringVar(&q.search, "search", "", "Case-insensitive text in the name or description")
	cmd.Flags().StringVar(&q.status, "status", "", "pending, in-progress or completed")
	if withCategory {
		cmd.Flags().StringVar(&q.category, "category", "", "Category name (or \"all\")")
	}
}

func (q *queryFlags) query() (filter.Query, error) {
	out := filter.Query{Text: q.search, Category: q.category}
	if q.status != "" && !strings.EqualFold(q.status, filter.All) {
		s, err := model.ParseStatus(q.status)
		if err != nil {
			return filter.Query{}, fmt.Errorf("%w: --status: %w", errUsage, err)
		}
		out.Status = s
	}
	return out, nil
}

func (c *cli) documentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "List and upload onboarding documents",
	}
	cmd.AddCommand(c.documentsListCmd(), c.documentsCategoriesCmd(), c.documentsUploadCmd())
	return cmd
}

func (c *cli) documentsListCmd() *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List required documents and their review status",
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
			docs := c.portal.Documents
			if err := docs.Load(ctx); err != nil {
				return shown(err, docs.State().Error)
			}
			q.Category = c.documentCategoryKey(q.Category)
			docs.SetQuery(q)

			t := newTable(c.stdout, "ID", "NAME", "CATEGORY", "STATUS", "REQUIRED", "SUBMITTED", "NOTES")
			for _, d := range docs.Visible() {
				status := string(d.Status)
				if d.Rejected {
					status += " (rejected)"
				}
				t.row(string(d.ID), d.Name, d.CategoryName, status, yesNo(d.IsRequired), orDash(d.SubmittedAt), orDash(d.ReviewNotes))
			}
			if err := t.flush(); err != nil {
				return err
			}
			fmt.Fprintln(c.stdout)
			printSummary(c.stdout, "Documents", docs.Summary(time.Now()))
			return nil
		},
	}
	qf.bind(cmd, true)
	return cmd
}

// documentCategoryKey resolves a category given by name or key; unknown
// names pass through and match nothing.
func (c *cli) documentCategoryKey(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return ""
	}
	for _, cc := range c.portal.Documents.Categories() {
		if strings.EqualFold(cc.Name, category) || cc.Key == category {
			return cc.Key
		}
	}
	return category
}

func (c *cli) documentsCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Count documents per category",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}
			docs := c.portal.Documents
			if err := docs.Load(ctx); err != nil {
				return shown(err, docs.State().Error)
			}
			t := newTable(c.stdout, "KEY", "CATEGORY", "DONE", "TOTAL", "PROGRESS")
			for _, cc := range docs.Categories() {
				t.row(cc.Key, cc.Name, strconv.Itoa(cc.Completed), strconv.Itoa(cc.Total), bar(progress.Percent(cc.Completed, cc.Total)))
			}
			return t.flush()
		},
	}
}

func (c *cli) documentsUploadCmd() *cobra.Command {
	var templateID int64
	cmd := &cobra.Command{
		Use:   "upload --template <id> <file>...",
		Short: "Upload one or more files against a document template",
		Long: `Upload files against a document template. Each file is checked before it is
sent: at most 10MB, and PDF, DOC, DOCX, PNG or JPG only. Files are uploaded
concurrently and independently; one failing does not stop the others.`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if templateID <= 0 {
				return fmt.Errorf("%w: --template is required", errUsage)
			}
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}

			files, closeFiles, err := openUploads(args)
			if err != nil {
				return err
			}
			defer closeFiles()

			docs := c.portal.Documents
			results := docs.SubmitMany(ctx, templateID, files)
			var errs []error
			for _, r := range results {
				if r.Err != nil {
					msg := describe(r.Err)
					var ve *upload.ValidationError
					if errors.As(r.Err, &ve) {
						msg = ve.Message
					}
					fmt.Fprintf(c.stdout, "FAIL  %s: %s\n", r.File, msg)
					errs = append(errs, r.Err)
					continue
				}
				fmt.Fprintf(c.stdout, "OK    %s: submission %d (%s)\n", r.File, r.Submission.ID, r.Submission.Status)
			}
			if len(errs) > 0 {
				return shown(errors.Join(errs...), fmt.Sprintf("%d of %d uploads failed", len(errs), len(results)))
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&templateID, "template", 0, "Document template id")
	return cmd
}

// openUploads opens every path for upload. The returned function closes them.
func openUploads(paths []string) ([]upload.File, func(), error) {
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	files := make([]upload.File, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("open %s: %w", p, err)
		}
		opened = append(opened, f)
		info, err := f.Stat()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("stat %s: %w", p, err)
		}
		files = append(files, upload.File{
			FileInfo: upload.FileInfo{Name: filepath.Base(p), Size: info.Size()},
			Body:     f,
		})
	}
	return files, closeAll, nil
}
