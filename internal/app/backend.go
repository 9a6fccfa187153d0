package app

import (
	"context"

	"github.com/okian/onboard/internal/adapters/http/client"
	"github.com/okian/onboard/internal/domain/model"
	"github.com/okian/onboard/internal/domain/upload"
)

// AuthBackend is what the auth store needs from the API.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (model.TokenPair, error)
	Me(ctx context.Context) (model.User, error)
}

// DocumentsBackend is what the documents store needs from the API.
type DocumentsBackend interface {
	DocumentTemplates(ctx context.Context) ([]model.DocumentTemplate, error)
	DocumentCategories(ctx context.Context) ([]model.DocumentCategory, error)
	MySubmissions(ctx context.Context) ([]model.DocumentSubmission, error)
	SubmitDocument(ctx context.Context, templateID int64, f upload.File, progress client.ProgressFunc) (model.DocumentSubmission, error)
}

// TasksBackend is what the tasks store needs from the API.
type TasksBackend interface {
	Tasks(ctx context.Context) ([]model.OnboardingTask, error)
	MyCandidateTasks(ctx context.Context) ([]model.CandidateTask, error)
	UpdateCandidateTask(ctx context.Context, id int64, status model.TaskStatus) (model.CandidateTask, error)
}

// TrainingBackend is what the training store needs from the API.
type TrainingBackend interface {
	TrainingModules(ctx context.Context) ([]model.TrainingModule, error)
	MyTrainingProgress(ctx context.Context) ([]model.TrainingProgress, error)
	UpdateTrainingProgress(ctx context.Context, id int64, update model.TrainingProgressUpdate) (model.TrainingProgress, error)
}

// DashboardBackend is what the dashboard store needs from the API.
type DashboardBackend interface {
	CandidateDashboard(ctx context.Context) (model.CandidateDashboard, error)
}

// Backend is the whole API surface the portal uses. *client.Client
// implements it.
type Backend interface {
	AuthBackend
	DocumentsBackend
	TasksBackend
	TrainingBackend
	DashboardBackend
	SetUnauthorizedHandler(h client.UnauthorizedHandler)
}

var _ Backend = (*client.Client)(nil)
