// Package app wires the per-domain stores that mirror the onboarding
// backend into one Portal.
package app

import (
	"context"
	"time"

	"github.com/okian/onboard/internal/adapters/session"
	"github.com/okian/onboard/internal/domain/progress"
	"github.com/okian/onboard/internal/domain/upload"
	"github.com/okian/onboard/pkg/logger"
	"github.com/okian/onboard/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Option applies a configuration option to the Portal.
type Option func(*Portal)

// WithLogger sets the logger the stores derive their named loggers from.
func WithLogger(l logger.Logger) Option {
	return func(p *Portal) {
		if l != nil {
			p.log = l
		}
	}
}

// WithLoginRedirect sets what happens when the backend rejects the session.
func WithLoginRedirect(r LoginRedirect) Option {
	return func(p *Portal) { p.redirect = r }
}

// WithMaxUploadBytes lowers the upload size cap.
func WithMaxUploadBytes(n int64) Option {
	return func(p *Portal) {
		if n > 0 {
			p.maxUploadBytes = n
		}
	}
}

// WithUploadConcurrency bounds concurrent uploads of one SubmitMany call.
func WithUploadConcurrency(n int) Option {
	return func(p *Portal) {
		if n > 0 {
			p.uploadConcurrency = n
		}
	}
}

// Portal is the candidate's client state: one store per domain sharing a
// backend.
type Portal struct {
	Auth      *AuthStore
	Documents *DocumentsStore
	Tasks     *TasksStore
	Training  *TrainingStore
	Dashboard *DashboardStore

	log               logger.Logger
	redirect          LoginRedirect
	maxUploadBytes    int64
	uploadConcurrency int
}

// New builds the stores and binds the backend's 401 hook to Auth.Expire.
func New(backend Backend, sessions session.Store, opts ...Option) *Portal {
	p := &Portal{
		log:               logger.Nop(),
		maxUploadBytes:    upload.MaxBytes,
		uploadConcurrency: defaultUploadConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.Auth = NewAuthStore(backend, sessions, p.redirect, p.log.Named(domainAuth))
	p.Documents = NewDocumentsStore(backend, p.maxUploadBytes, p.uploadConcurrency, p.log.Named(domainDocuments))
	p.Tasks = NewTasksStore(backend, p.log.Named(domainTasks))
	p.Training = NewTrainingStore(backend, p.log.Named(domainTraining))
	p.Dashboard = NewDashboardStore(backend, p.log.Named(domainDashboard))
	backend.SetUnauthorizedHandler(p.Auth.Expire)
	return p
}

// Refresh reloads every domain concurrently. Each store keeps its own
// error; the first failure is returned.
func (p *Portal) Refresh(ctx context.Context) error {
	start := time.Now()
	var g errgroup.Group
	g.Go(func() error { return p.Documents.Load(ctx) })
	g.Go(func() error { return p.Tasks.Load(ctx) })
	g.Go(func() error { return p.Training.Load(ctx) })
	g.Go(func() error { return p.Dashboard.Load(ctx) })
	err := g.Wait()
	p.log.Debug(ctx, "portal refreshed", logger.Duration("elapsed", time.Since(start)), logger.Bool("ok", err == nil))
	return err
}

// Progress summarizes each domain as of now and publishes the gauges.
func (p *Portal) Progress(now time.Time) map[string]progress.Summary {
	out := map[string]progress.Summary{
		domainDocuments: p.Documents.Summary(now),
		domainTasks:     p.Tasks.Summary(now),
		domainTraining:  p.Training.Summary(now).Summary,
	}
	for domain, s := range out {
		metrics.UpdateProgress(domain, s.CompletionPercentage, s.Overdue)
	}
	return out
}
