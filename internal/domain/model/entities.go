// Package model contains the backend entities and client view-models shared
// between the adapters, the pure domain functions and the stores.
package model

// RoleCandidate is the role a template must name to be required of the
// signed-in candidate.
const RoleCandidate = "candidate"

// User mirrors GET /users/me.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	OrgID     *int64 `json:"org_id"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair is returned by POST /auth/login and persisted by the session store.
type TokenPair struct {
	AccessToken  string `json:"access_token" yaml:"access_token"`
	RefreshToken string `json:"refresh_token" yaml:"refresh_token"`
	TokenType    string `json:"token_type" yaml:"token_type"`
}

// Empty reports whether the pair carries no access token.
func (t TokenPair) Empty() bool { return t.AccessToken == "" }

// DocumentTemplate is an organization-wide document the candidate may owe.
type DocumentTemplate struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	RequiredForRole *string `json:"required_for_role"`
	OrgID           int64   `json:"org_id"`
	CategoryID      *int64  `json:"category_id"`
}

// DocumentCategory groups document templates.
type DocumentCategory struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	OrgID       int64   `json:"org_id"`
}

// DocumentSubmission is one candidate upload against a template.
type DocumentSubmission struct {
	ID              int64            `json:"id"`
	CandidateUserID int64            `json:"candidate_user_id"`
	TemplateID      int64            `json:"template_id"`
	FilePath        string           `json:"file_path"`
	Status          SubmissionStatus `json:"status"`
	Notes           *string          `json:"notes"`
	ReviewedBy      *int64           `json:"reviewed_by"`
	ReviewedAt      *string          `json:"reviewed_at"`
	CreatedAt       string           `json:"created_at"`
}

// OnboardingTask is a task template.
type OnboardingTask struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Description      *string `json:"description"`
	DueDaysFromStart int     `json:"due_days_from_start"`
	AssigneeRole     string  `json:"assignee_role"`
	OrgID            int64   `json:"org_id"`
}

// CandidateTask is the candidate's record against an OnboardingTask.
type CandidateTask struct {
	ID              int64          `json:"id"`
	CandidateUserID int64          `json:"candidate_user_id"`
	TaskID          int64          `json:"task_id"`
	Status          TaskStatus     `json:"status"`
	DueDate         *string        `json:"due_date"`
	CompletedAt     *string        `json:"completed_at"`
	CreatedAt       string         `json:"created_at"`
	Task            OnboardingTask `json:"task"`
}

// TrainingModule is a training template.
type TrainingModule struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Description     *string `json:"description"`
	ContentURL      *string `json:"content_url"`
	DurationMinutes *int    `json:"duration_minutes"`
	OrgID           int64   `json:"org_id"`
}

// TrainingProgress is the candidate's record against a TrainingModule.
type TrainingProgress struct {
	ID                   int64          `json:"id"`
	CandidateUserID      int64          `json:"candidate_user_id"`
	ModuleID             int64          `json:"module_id"`
	Status               TrainingStatus `json:"status"`
	CompletionPercentage int            `json:"completion_percentage"`
	StartedAt            *string        `json:"started_at"`
	CompletedAt          *string        `json:"completed_at"`
	DueDate              *string        `json:"due_date"`
}

// NotificationLog is one entry of the candidate's recent activity.
type NotificationLog struct {
	ID               int64  `json:"id"`
	RecipientID      int64  `json:"recipient_id"`
	Title            string `json:"title"`
	Message          string `json:"message"`
	NotificationType string `json:"notification_type"`
	IsRead           bool   `json:"is_read"`
	CreatedAt        string `json:"created_at"`
}

// DocumentStats are the document counters of the dashboard.
type DocumentStats struct {
	Total     int `json:"total"`
	Submitted int `json:"submitted"`
	Approved  int `json:"approved"`
}

// CompletionStats are the task and training counters of the dashboard.
type CompletionStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// DashboardStats mirrors the stats block of GET /dashboard/candidate.
type DashboardStats struct {
	Documents     DocumentStats   `json:"documents"`
	Tasks         CompletionStats `json:"tasks"`
	Training      CompletionStats `json:"training"`
	Notifications int             `json:"notifications"`
}

// CandidateDashboard mirrors GET /dashboard/candidate.
type CandidateDashboard struct {
	User           User              `json:"user"`
	Stats          DashboardStats    `json:"stats"`
	RecentActivity []NotificationLog `json:"recent_activity"`
}

// TaskStatusUpdate is the body of PUT /candidate-tasks/{id}.
type TaskStatusUpdate struct {
	Status TaskStatus `json:"status"`
}

// TrainingProgressUpdate is the body of PATCH /training/progress/{id}.
type TrainingProgressUpdate struct {
	Status TrainingStatus `json:"status"`
	Score  *int           `json:"score,omitempty"`
}

// HealthStatus mirrors GET /healthz.
type HealthStatus struct {
	Status string `json:"status"`
}
