package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/onboard/internal/domain/model"
)

// Login exchanges credentials for a token pair. A 401 here is a login
// failure, so the unauthorized hook is not fired.
func (c *Client) Login(ctx context.Context, email, password string) (model.TokenPair, error) {
	cl, err := c.jsonCall(http.MethodPost, "/auth/login", "/auth/login", model.LoginRequest{Email: email, Password: password})
	if err != nil {
		return model.TokenPair{}, err
	}
	cl.auth = false
	var out model.TokenPair
	if err := c.do(ctx, cl, &out); err != nil {
		return model.TokenPair{}, err
	}
	return out, nil
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var out model.User
	err := c.get(ctx, "/users/me", "/users/me", &out)
	return out, err
}

// DocumentTemplates lists the organization's document templates.
func (c *Client) DocumentTemplates(ctx context.Context) ([]model.DocumentTemplate, error) {
	var out []model.DocumentTemplate
	err := c.get(ctx, "/documents/templates", "/documents/templates", &out)
	return out, err
}

// DocumentCategories lists document categories.
func (c *Client) DocumentCategories(ctx context.Context) ([]model.DocumentCategory, error) {
	var out []model.DocumentCategory
	err := c.get(ctx, "/documents/categories", "/documents/categories", &out)
	return out, err
}

// MySubmissions lists the candidate's document submissions.
func (c *Client) MySubmissions(ctx context.Context) ([]model.DocumentSubmission, error) {
	var out []model.DocumentSubmission
	err := c.get(ctx, "/documents/submissions/me", "/documents/submissions/me", &out)
	return out, err
}

// Tasks lists the task templates.
func (c *Client) Tasks(ctx context.Context) ([]model.OnboardingTask, error) {
	var out []model.OnboardingTask
	err := c.get(ctx, "/tasks/", "/tasks/", &out)
	return out, err
}

// MyCandidateTasks lists the candidate's tasks.
func (c *Client) MyCandidateTasks(ctx context.Context) ([]model.CandidateTask, error) {
	var out []model.CandidateTask
	err := c.get(ctx, "/candidate-tasks/me", "/candidate-tasks/me", &out)
	return out, err
}

// UpdateCandidateTask sets the status of a candidate task.
func (c *Client) UpdateCandidateTask(ctx context.Context, id int64, status model.TaskStatus) (model.CandidateTask, error) {
	var out model.CandidateTask
	cl, err := c.jsonCall(http.MethodPut, "/candidate-tasks/"+strconv.FormatInt(id, 10), "/candidate-tasks/{id}", model.TaskStatusUpdate{Status: status})
	if err != nil {
		return out, err
	}
	err = c.do(ctx, cl, &out)
	return out, err
}

// TrainingModules lists the training modules.
func (c *Client) TrainingModules(ctx context.Context) ([]model.TrainingModule, error) {
	var out []model.TrainingModule
	err := c.get(ctx, "/training/modules", "/training/modules", &out)
	return out, err
}

// MyTrainingProgress lists the candidate's training progress.
func (c *Client) MyTrainingProgress(ctx context.Context) ([]model.TrainingProgress, error) {
	var out []model.TrainingProgress
	err := c.get(ctx, "/training/progress/me", "/training/progress/me", &out)
	return out, err
}

// UpdateTrainingProgress patches a training progress record.
func (c *Client) UpdateTrainingProgress(ctx context.Context, id int64, update model.TrainingProgressUpdate) (model.TrainingProgress, error) {
	var out model.TrainingProgress
	cl, err := c.jsonCall(http.MethodPatch, "/training/progress/"+strconv.FormatInt(id, 10), "/training/progress/{id}", update)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, cl, &out)
	return out, err
}

// CandidateDashboard returns the dashboard summary.
func (c *Client) CandidateDashboard(ctx context.Context) (model.CandidateDashboard, error) {
	var out model.CandidateDashboard
	err := c.get(ctx, "/dashboard/candidate", "/dashboard/candidate", &out)
	return out, err
}

// Health checks the backend's root health endpoint.
func (c *Client) Health(ctx context.Context) (model.HealthStatus, error) {
	var out model.HealthStatus
	err := c.do(ctx, call{method: http.MethodGet, path: "/healthz", endpoint: "/healthz", root: true}, &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path, endpoint string, out any) error {
	return c.do(ctx, call{method: http.MethodGet, path: path, endpoint: endpoint, auth: true}, out)
}
