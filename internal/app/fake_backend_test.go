package app_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/okian/onboard/internal/domain/model"
)

func str(s string) *string { return &s }

// fakeBackend is an in-memory onboarding API.
type fakeBackend struct {
	mu          sync.Mutex
	srv         *httptest.Server
	calls       atomic.Int64
	token       string
	failMe      bool
	rejectMe    bool
	failPath    string
	templates   []model.DocumentTemplate
	categories  []model.DocumentCategory
	submissions []model.DocumentSubmission
	tasks       []model.OnboardingTask
	candidate   []model.CandidateTask
	modules     []model.TrainingModule
	progress    []model.TrainingProgress
	dashboard   model.CandidateDashboard
	lastScore   *int
}

func newFakeBackend() *fakeBackend {
	f := &fakeBackend{
		token: "at",
		templates: []model.DocumentTemplate{
			{ID: 1, Name: "W4", RequiredForRole: str(model.RoleCandidate), CategoryID: ptr64(10)},
			{ID: 2, Name: "I9", RequiredForRole: str(model.RoleCandidate)},
		},
		categories: []model.DocumentCategory{{ID: 10, Name: "Tax"}},
		submissions: []model.DocumentSubmission{
			{ID: 101, TemplateID: 1, Status: model.SubmissionSubmitted, FilePath: "w4.pdf"},
		},
		tasks: []model.OnboardingTask{
			{ID: 1, Title: "Laptop setup", AssigneeRole: model.RoleCandidate},
			{ID: 2, Title: "Badge photo", AssigneeRole: model.RoleCandidate},
		},
		candidate: []model.CandidateTask{
			{ID: 11, TaskID: 1, Status: model.TaskPending, DueDate: str("2024-01-01")},
		},
		modules: []model.TrainingModule{
			{ID: 1, Title: "Security Basics"},
			{ID: 2, Title: "Team Intro"},
		},
		progress: []model.TrainingProgress{
			{ID: 21, ModuleID: 1, Status: model.TrainingInProgress, CompletionPercentage: 50},
		},
		dashboard: model.CandidateDashboard{
			User: model.User{ID: 9, Email: "c@example.com", Role: model.RoleCandidate},
			Stats: model.DashboardStats{
				Documents: model.DocumentStats{Total: 2, Submitted: 1},
				Tasks:     model.CompletionStats{Total: 2},
				Training:  model.CompletionStats{Total: 2},
			},
			RecentActivity: []model.NotificationLog{
				{ID: 1, Title: "Welcome"},
				{ID: 2, Title: "W4 received", IsRead: true},
			},
		},
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			f.calls.Add(1)
			f.mu.Lock()
			broken := f.failPath != "" && req.URL.Path == "/api/v1"+f.failPath
			f.mu.Unlock()
			if broken {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", f.login)
		r.Group(func(r chi.Router) {
			r.Use(f.requireToken)
			r.Get("/users/me", f.me)
			r.Get("/documents/templates", list(f, func() any { return f.templates }))
			r.Get("/documents/categories", list(f, func() any { return f.categories }))
			r.Get("/documents/submissions/me", list(f, func() any { return f.submissions }))
			r.Post("/documents/submit/{template_id}", f.submit)
			r.Get("/tasks/", list(f, func() any { return f.tasks }))
			r.Get("/candidate-tasks/me", list(f, func() any { return f.candidate }))
			r.Put("/candidate-tasks/{id}", f.updateTask)
			r.Get("/training/modules", list(f, func() any { return f.modules }))
			r.Get("/training/progress/me", list(f, func() any { return f.progress }))
			r.Patch("/training/progress/{id}", f.updateProgress)
			r.Get("/dashboard/candidate", list(f, func() any { return f.dashboard }))
		})
	})
	f.srv = httptest.NewServer(r)
	return f
}

func ptr64(v int64) *int64 { return &v }

func (f *fakeBackend) url() string { return f.srv.URL + "/api/v1" }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func list(f *fakeBackend, get func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, get())
	}
}

func (f *fakeBackend) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		want := "Bearer " + f.token
		f.mu.Unlock()
		if req.Header.Get("Authorization") != want {
			detail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (f *fakeBackend) login(w http.ResponseWriter, req *http.Request) {
	var in model.LoginRequest
	_ = json.NewDecoder(req.Body).Decode(&in)
	if in.Password != "secret" {
		detail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	f.mu.Lock()
	tok := f.token
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, model.TokenPair{AccessToken: tok, RefreshToken: "rt", TokenType: "bearer"})
}

func (f *fakeBackend) me(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMe {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if f.rejectMe {
		detail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	writeJSON(w, http.StatusOK, f.dashboard.User)
}

func (f *fakeBackend) submit(w http.ResponseWriter, req *http.Request) {
	tid, _ := strconv.ParseInt(chi.URLParam(req, "template_id"), 10, 64)
	file, hdr, err := req.FormFile("file")
	if err != nil {
		detail(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	_, _ = io.Copy(io.Discard, file)
	if hdr.Filename == "reject.pdf" {
		detail(w, http.StatusBadRequest, "Template not found")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	sub := model.DocumentSubmission{
		ID:         int64(200 + len(f.submissions)),
		TemplateID: tid,
		Status:     model.SubmissionSubmitted,
		FilePath:   hdr.Filename,
	}
	f.submissions = append(f.submissions, sub)
	writeJSON(w, http.StatusOK, sub)
}

func (f *fakeBackend) updateTask(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	var in model.TaskStatusUpdate
	_ = json.NewDecoder(req.Body).Decode(&in)
	if in.Status == model.TaskPending {
		detail(w, http.StatusBadRequest, "Invalid status transition")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.candidate {
		if f.candidate[i].ID == id {
			f.candidate[i].Status = in.Status
			writeJSON(w, http.StatusOK, f.candidate[i])
			return
		}
	}
	detail(w, http.StatusNotFound, "Candidate task not found")
}

func (f *fakeBackend) updateProgress(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	var in model.TrainingProgressUpdate
	_ = json.NewDecoder(req.Body).Decode(&in)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastScore = in.Score
	for i := range f.progress {
		if f.progress[i].ID == id {
			f.progress[i].Status = in.Status
			if in.Status == model.TrainingCompleted {
				f.progress[i].CompletionPercentage = 100
			}
			writeJSON(w, http.StatusOK, f.progress[i])
			return
		}
	}
	detail(w, http.StatusNotFound, "Progress not found")
}

// breakPath makes path (relative to /api/v1) answer 500.
func (f *fakeBackend) breakPath(path string) {
	f.mu.Lock()
	f.failPath = path
	f.mu.Unlock()
}

// rotateToken invalidates every token issued so far.
func (f *fakeBackend) rotateToken(tok string) {
	f.mu.Lock()
	f.token = tok
	f.mu.Unlock()
}
