package app

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/onboard/internal/domain/filter"
	"github.com/okian/onboard/internal/domain/model"
	"github.com/okian/onboard/internal/domain/progress"
	"github.com/okian/onboard/internal/domain/reconcile"
	"github.com/okian/onboard/pkg/logger"
	"github.com/okian/onboard/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// TasksState is the tasks slice of client state.
type TasksState struct {
	Templates []model.OnboardingTask
	Instances []model.CandidateTask
	Views     []model.Task
	Dropped   []int64
	Query     filter.Query
	Loading   bool
	Error     string
}

func (s TasksState) reconciled() TasksState {
	res := reconcile.Tasks(s.Templates, s.Instances)
	s.Views, s.Dropped = res.Views, res.Dropped
	return s
}

// TasksStore mirrors task templates and the candidate's tasks.
type TasksStore struct {
	st      guarded[TasksState]
	backend TasksBackend
	log     logger.Logger
}

// NewTasksStore returns an empty store.
func NewTasksStore(backend TasksBackend, log logger.Logger) *TasksStore {
	return &TasksStore{backend: backend, log: logger.OrNop(log)}
}

// State returns a snapshot.
func (t *TasksStore) State() TasksState { return t.st.get() }

// Load fetches templates and the candidate's tasks concurrently. Both are
// applied together once every fetch succeeded; a failed load keeps the
// previous collections.
func (t *TasksStore) Load(ctx context.Context) error {
	t.st.update(func(s TasksState) TasksState {
		s.Loading = true
		s.Error = ""
		return s
	})
	var (
		tpl  []model.OnboardingTask
		inst []model.CandidateTask
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tpl, err = t.backend.Tasks(gctx)
		return err
	})
	g.Go(func() (err error) {
		inst, err = t.backend.MyCandidateTasks(gctx)
		return err
	})
	err := g.Wait()
	if err == nil {
		t.apply(func(s TasksState) TasksState {
			s.Templates, s.Instances = tpl, inst
			return s
		})
	}
	t.st.update(func(s TasksState) TasksState {
		s.Loading = false
		if err != nil {
			s.Error = UserMessage(err, msgLoadTasks)
		}
		return s
	})
	if err != nil {
		t.log.Warn(ctx, msgLoadTasks, logger.Error(err))
	}
	return err
}

func (t *TasksStore) loadInstances(ctx context.Context) error {
	inst, err := t.backend.MyCandidateTasks(ctx)
	if err != nil {
		return err
	}
	t.apply(func(s TasksState) TasksState { s.Instances = inst; return s })
	return nil
}

func (t *TasksStore) apply(fn func(TasksState) TasksState) {
	s := t.st.update(func(s TasksState) TasksState { return fn(s).reconciled() })
	metrics.RecordReconcile(domainTasks, len(s.Dropped))
	if len(s.Dropped) > 0 {
		t.log.Warn(context.Background(), "candidate tasks without a template dropped", logger.Any("ids", s.Dropped))
	}
}

// UpdateStatus sends a new status for the task behind viewID, then reloads
// the candidate's tasks. Nothing changes locally before the backend
// confirms; a rejection is kept in Error and the views stay as they were.
func (t *TasksStore) UpdateStatus(ctx context.Context, viewID model.ViewID, status model.TaskStatus) error {
	t.ClearError()
	id, err := instanceOf(viewID, t.st.get().Views, func(v model.Task) model.ViewID { return v.ID })
	if err != nil {
		t.fail(ctx, err)
		return err
	}
	if _, err := t.backend.UpdateCandidateTask(ctx, id, status); err != nil {
		t.fail(ctx, err)
		return err
	}
	t.log.Info(ctx, "task status updated", logger.Int64("candidate_task_id", id), logger.String("status", string(status)))
	if err := t.loadInstances(ctx); err != nil {
		t.fail(ctx, err)
		return err
	}
	return nil
}

// Complete marks the task behind viewID as done.
func (t *TasksStore) Complete(ctx context.Context, viewID model.ViewID) error {
	return t.UpdateStatus(ctx, viewID, model.TaskDone)
}

func (t *TasksStore) fail(ctx context.Context, err error) {
	t.st.update(func(s TasksState) TasksState {
		s.Error = UserMessage(err, msgUpdateTask)
		return s
	})
	t.log.Warn(ctx, msgUpdateTask, logger.Error(err))
}

// SetQuery replaces the active search.
func (t *TasksStore) SetQuery(q filter.Query) {
	t.st.update(func(s TasksState) TasksState { s.Query = q; return s })
}

// ClearQuery drops the active search.
func (t *TasksStore) ClearQuery() { t.SetQuery(filter.Query{}) }

// ClearError resets the error message.
func (t *TasksStore) ClearError() {
	t.st.update(func(s TasksState) TasksState { s.Error = ""; return s })
}

// Visible returns the views matching the active search.
func (t *TasksStore) Visible() []model.Task {
	s := t.st.get()
	return filter.Tasks(s.Views, s.Query)
}

// Summary aggregates the views as of now.
func (t *TasksStore) Summary(now time.Time) progress.Summary {
	return progress.Aggregate(t.st.get().Views, now)
}

// instanceOf resolves a view id to its instance id. Template-only views have
// no instance to mutate.
func instanceOf[V any](viewID model.ViewID, views []V, idOf func(V) model.ViewID) (int64, error) {
	known := false
	for _, v := range views {
		if idOf(v) == viewID {
			known = true
			break
		}
	}
	if !known {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, viewID)
	}
	id, ok := viewID.InstanceID()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoInstance, viewID)
	}
	return id, nil
}
