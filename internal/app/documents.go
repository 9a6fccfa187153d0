package app

import (
	"context"
	"errors"
	"time"

	"github.com/okian/onboard/internal/domain/filter"
	"github.com/okian/onboard/internal/domain/model"
	"github.com/okian/onboard/internal/domain/progress"
	"github.com/okian/onboard/internal/domain/reconcile"
	"github.com/okian/onboard/internal/domain/upload"
	"github.com/okian/onboard/pkg/logger"
	"github.com/okian/onboard/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

const defaultUploadConcurrency = 3

// DocumentsState is the documents slice of client state.
type DocumentsState struct {
	Templates   []model.DocumentTemplate
	Categories  []model.DocumentCategory
	Submissions []model.DocumentSubmission
	Views       []model.Document
	Dropped     []int64
	Query       filter.Query
	Loading     bool
	Error       string
}

func (s DocumentsState) reconciled() DocumentsState {
	res := reconcile.Documents(s.Templates, s.Submissions, s.Categories)
	s.Views, s.Dropped = res.Views, res.Dropped
	return s
}

// SubmitResult is the outcome of one file of a multi-file upload.
type SubmitResult struct {
	File       string
	Submission *model.DocumentSubmission
	Err        error
}

// DocumentsStore mirrors document templates, categories and submissions.
type DocumentsStore struct {
	st          guarded[DocumentsState]
	backend     DocumentsBackend
	tracker     *upload.Tracker
	maxBytes    int64
	concurrency int
	log         logger.Logger
}

// NewDocumentsStore returns an empty store. maxBytes is capped at
// upload.MaxBytes; concurrency bounds SubmitMany.
func NewDocumentsStore(backend DocumentsBackend, maxBytes int64, concurrency int, log logger.Logger) *DocumentsStore {
	if concurrency <= 0 {
		concurrency = defaultUploadConcurrency
	}
	return &DocumentsStore{
		backend:     backend,
		tracker:     upload.NewTracker(),
		maxBytes:    upload.Limit(maxBytes),
		concurrency: concurrency,
		log:         logger.OrNop(log),
	}
}

// State returns a snapshot.
func (d *DocumentsStore) State() DocumentsState { return d.st.get() }

// Uploads returns the progress of uploads in flight keyed by upload id.
func (d *DocumentsStore) Uploads() map[string]int { return d.tracker.Snapshot() }

// Load fetches templates, categories and submissions concurrently. Views are
// rebuilt once, after all three arrived; if any fetch fails the previous
// collections and views are kept.
func (d *DocumentsStore) Load(ctx context.Context) error {
	d.st.update(func(s DocumentsState) DocumentsState {
		s.Loading = true
		s.Error = ""
		return s
	})

	var (
		tpl  []model.DocumentTemplate
		cats []model.DocumentCategory
		subs []model.DocumentSubmission
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tpl, err = d.backend.DocumentTemplates(gctx)
		return err
	})
	g.Go(func() (err error) {
		cats, err = d.backend.DocumentCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		subs, err = d.backend.MySubmissions(gctx)
		return err
	})
	err := g.Wait()
	if err == nil {
		d.apply(func(s DocumentsState) DocumentsState {
			s.Templates, s.Categories, s.Submissions = tpl, cats, subs
			return s
		})
	}
	d.finish(ctx, err, msgLoadDocuments)
	return err
}

func (d *DocumentsStore) loadSubmissions(ctx context.Context) error {
	subs, err := d.backend.MySubmissions(ctx)
	if err != nil {
		return err
	}
	d.apply(func(s DocumentsState) DocumentsState { s.Submissions = subs; return s })
	return nil
}

// apply runs fn and reconciles under the lock.
func (d *DocumentsStore) apply(fn func(DocumentsState) DocumentsState) {
	s := d.st.update(func(s DocumentsState) DocumentsState { return fn(s).reconciled() })
	metrics.RecordReconcile(domainDocuments, len(s.Dropped))
	if len(s.Dropped) > 0 {
		d.log.Warn(context.Background(), "submissions without a template dropped", logger.Any("ids", s.Dropped))
	}
}

func (d *DocumentsStore) finish(ctx context.Context, err error, fallback string) {
	d.st.update(func(s DocumentsState) DocumentsState {
		s.Loading = false
		if err != nil {
			s.Error = UserMessage(err, fallback)
		}
		return s
	})
	if err != nil {
		d.log.Warn(ctx, fallback, logger.Error(err))
	}
}

// Submit validates f, uploads it against templateID and reloads the
// submissions. A file failing validation never reaches the network. On
// failure the views are left as they were.
func (d *DocumentsStore) Submit(ctx context.Context, templateID int64, f upload.File) (*model.DocumentSubmission, error) {
	d.ClearError()
	sub, err := d.send(ctx, templateID, f)
	if err != nil {
		d.fail(ctx, err, msgUploadDocument)
		return nil, err
	}
	if err := d.loadSubmissions(ctx); err != nil {
		d.fail(ctx, err, msgLoadDocuments)
		return sub, err
	}
	return sub, nil
}

// SubmitMany uploads several files against one template, each validated
// and sent independently. Submissions are reloaded once if any succeeded.
func (d *DocumentsStore) SubmitMany(ctx context.Context, templateID int64, files []upload.File) []SubmitResult {
	d.ClearError()
	results := make([]SubmitResult, len(files))
	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			sub, err := d.send(ctx, templateID, f)
			results[i] = SubmitResult{File: f.Name, Submission: sub, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var sent int
	var lastErr error
	for _, r := range results {
		if r.Err != nil {
			lastErr = r.Err
			continue
		}
		sent++
	}
	if lastErr != nil {
		d.fail(ctx, lastErr, msgUploadDocument)
	}
	if sent > 0 {
		if err := d.loadSubmissions(ctx); err != nil {
			d.fail(ctx, err, msgLoadDocuments)
		}
	}
	return results
}

// send validates and uploads one file, tracking its progress.
func (d *DocumentsStore) send(ctx context.Context, templateID int64, f upload.File) (*model.DocumentSubmission, error) {
	if err := upload.Validate(f.FileInfo, d.maxBytes); err != nil {
		var ve *upload.ValidationError
		if errors.As(err, &ve) {
			metrics.RecordValidationRejection(ve.Reason)
		}
		return nil, err
	}

	id := d.tracker.Begin()
	metrics.AddUploadsInFlight(1)
	defer func() {
		d.tracker.Finish(id)
		metrics.AddUploadsInFlight(-1)
	}()

	start := time.Now()
	d.log.Debug(ctx, "upload started",
		logger.String("upload_id", id),
		logger.String("file", f.Name),
		logger.Int64("template_id", templateID))
	sub, err := d.backend.SubmitDocument(ctx, templateID, f, func(pct int) { d.tracker.Update(id, pct) })
	if err != nil {
		metrics.RecordUpload(metrics.OutcomeFailed, 0)
		return nil, err
	}
	metrics.RecordUpload(metrics.OutcomeSuccess, f.Size)
	d.log.Info(ctx, "document uploaded",
		logger.String("upload_id", id),
		logger.Int64("submission_id", sub.ID),
		logger.Duration("elapsed", time.Since(start)))
	return &sub, nil
}

func (d *DocumentsStore) fail(ctx context.Context, err error, fallback string) {
	d.st.update(func(s DocumentsState) DocumentsState {
		s.Error = UserMessage(err, fallback)
		return s
	})
	d.log.Warn(ctx, fallback, logger.Error(err))
}

// SetQuery replaces the active search.
func (d *DocumentsStore) SetQuery(q filter.Query) {
	d.st.update(func(s DocumentsState) DocumentsState { s.Query = q; return s })
}

// ClearQuery drops the active search.
func (d *DocumentsStore) ClearQuery() { d.SetQuery(filter.Query{}) }

// ClearError resets the error message.
func (d *DocumentsStore) ClearError() {
	d.st.update(func(s DocumentsState) DocumentsState { s.Error = ""; return s })
}

// Visible returns the views matching the active search.
func (d *DocumentsStore) Visible() []model.Document {
	s := d.st.get()
	return filter.Documents(s.Views, s.Query)
}

// Categories counts documents per category.
func (d *DocumentsStore) Categories() []progress.CategoryCount {
	s := d.st.get()
	return progress.DocumentCategories(s.Views, s.Categories)
}

// Summary aggregates the views as of now.
func (d *DocumentsStore) Summary(now time.Time) progress.Summary {
	return progress.Aggregate(d.st.get().Views, now)
}
