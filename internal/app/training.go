package app

import (
	"context"
	"time"

	"github.com/okian/onboard/internal/domain/filter"
	"github.com/okian/onboard/internal/domain/model"
	"github.com/okian/onboard/internal/domain/progress"
	"github.com/okian/onboard/internal/domain/reconcile"
	"github.com/okian/onboard/pkg/logger"
	"github.com/okian/onboard/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// TrainingState is the training slice of client state.
type TrainingState struct {
	Modules  []model.TrainingModule
	Progress []model.TrainingProgress
	Views    []model.TrainingModuleView
	Dropped  []int64
	Query    filter.Query
	Loading  bool
	Error    string
}

func (s TrainingState) reconciled() TrainingState {
	res := reconcile.Training(s.Modules, s.Progress)
	s.Views, s.Dropped = res.Views, res.Dropped
	return s
}

// TrainingStore mirrors training modules and the candidate's progress.
type TrainingStore struct {
	st      guarded[TrainingState]
	backend TrainingBackend
	log     logger.Logger
}

// NewTrainingStore returns an empty store.
func NewTrainingStore(backend TrainingBackend, log logger.Logger) *TrainingStore {
	return &TrainingStore{backend: backend, log: logger.OrNop(log)}
}

// State returns a snapshot.
func (t *TrainingStore) State() TrainingState { return t.st.get() }

// Load fetches modules and progress concurrently and applies them only
// when both arrived.
func (t *TrainingStore) Load(ctx context.Context) error {
	t.st.update(func(s TrainingState) TrainingState {
		s.Loading = true
		s.Error = ""
		return s
	})
	var (
		mods []model.TrainingModule
		prog []model.TrainingProgress
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		mods, err = t.backend.TrainingModules(gctx)
		return err
	})
	g.Go(func() (err error) {
		prog, err = t.backend.MyTrainingProgress(gctx)
		return err
	})
	err := g.Wait()
	if err == nil {
		t.apply(func(s TrainingState) TrainingState {
			s.Modules, s.Progress = mods, prog
			return s
		})
	}
	t.st.update(func(s TrainingState) TrainingState {
		s.Loading = false
		if err != nil {
			s.Error = UserMessage(err, msgLoadTraining)
		}
		return s
	})
	if err != nil {
		t.log.Warn(ctx, msgLoadTraining, logger.Error(err))
	}
	return err
}

func (t *TrainingStore) loadProgress(ctx context.Context) error {
	p, err := t.backend.MyTrainingProgress(ctx)
	if err != nil {
		return err
	}
	t.apply(func(s TrainingState) TrainingState { s.Progress = p; return s })
	return nil
}

func (t *TrainingStore) apply(fn func(TrainingState) TrainingState) {
	s := t.st.update(func(s TrainingState) TrainingState { return fn(s).reconciled() })
	metrics.RecordReconcile(domainTraining, len(s.Dropped))
	if len(s.Dropped) > 0 {
		t.log.Warn(context.Background(), "training progress without a module dropped", logger.Any("ids", s.Dropped))
	}
}

// UpdateProgress sends a new status, and optionally a score, for the module
// behind viewID, then reloads the candidate's progress. Modules the
// candidate has not started have no progress record and fail with
// ErrNoInstance.
func (t *TrainingStore) UpdateProgress(ctx context.Context, viewID model.ViewID, status model.TrainingStatus, score *int) error {
	t.ClearError()
	id, err := instanceOf(viewID, t.st.get().Views, func(v model.TrainingModuleView) model.ViewID { return v.ID })
	if err != nil {
		t.fail(ctx, err)
		return err
	}
	update := model.TrainingProgressUpdate{Status: status, Score: score}
	if _, err := t.backend.UpdateTrainingProgress(ctx, id, update); err != nil {
		t.fail(ctx, err)
		return err
	}
	t.log.Info(ctx, "training progress updated", logger.Int64("progress_id", id), logger.String("status", string(status)))
	if err := t.loadProgress(ctx); err != nil {
		t.fail(ctx, err)
		return err
	}
	return nil
}

func (t *TrainingStore) fail(ctx context.Context, err error) {
	t.st.update(func(s TrainingState) TrainingState {
		s.Error = UserMessage(err, msgUpdateTraining)
		return s
	})
	t.log.Warn(ctx, msgUpdateTraining, logger.Error(err))
}

// SetQuery replaces the active search.
func (t *TrainingStore) SetQuery(q filter.Query) {
	t.st.update(func(s TrainingState) TrainingState { s.Query = q; return s })
}

// ClearQuery drops the active search.
func (t *TrainingStore) ClearQuery() { t.SetQuery(filter.Query{}) }

// ClearError resets the error message.
func (t *TrainingStore) ClearError() {
	t.st.update(func(s TrainingState) TrainingState { s.Error = ""; return s })
}

// Visible returns the views matching the active search.
func (t *TrainingStore) Visible() []model.TrainingModuleView {
	s := t.st.get()
	return filter.Training(s.Views, s.Query)
}

// Summary aggregates the views as of now.
func (t *TrainingStore) Summary(now time.Time) progress.TrainingSummary {
	return progress.Training(t.st.get().Views, now)
}
