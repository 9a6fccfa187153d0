package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/okian/onboard/internal/adapters/http/client"
	"github.com/okian/onboard/internal/domain/model"
	"github.com/okian/onboard/internal/domain/upload"
	. "github.com/smartystreets/goconvey/convey"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type backend struct {
	srv   *httptest.Server
	auth  atomic.Value
	hits  atomic.Int64
	files atomic.Value
}

func newBackend() *backend {
	b := &backend{}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			b.hits.Add(1)
			b.auth.Store(req.Header.Get("Authorization"))
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
			var in model.LoginRequest
			_ = json.NewDecoder(req.Body).Decode(&in)
			if in.Password != "secret" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
				return
			}
			writeJSON(w, http.StatusOK, model.TokenPair{AccessToken: "at", RefreshToken: "rt", TokenType: "bearer"})
		})
		r.Get("/users/me", func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("Authorization") != "Bearer at" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
				return
			}
			writeJSON(w, http.StatusOK, model.User{ID: 9, Email: "c@example.com", Role: model.RoleCandidate})
		})
		r.Get("/tasks/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, []model.OnboardingTask{{ID: 1, Title: "Laptop setup"}})
		})
		r.Put("/candidate-tasks/{id}", func(w http.ResponseWriter, req *http.Request) {
			if chi.URLParam(req, "id") == "400" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid status transition"})
				return
			}
			var in model.TaskStatusUpdate
			_ = json.NewDecoder(req.Body).Decode(&in)
			writeJSON(w, http.StatusOK, model.CandidateTask{ID: 5, Status: in.Status})
		})
		r.Patch("/training/progress/{id}", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"detail": []map[string]any{{"loc": []string{"body", "score"}, "msg": "value is not a valid integer"}},
			})
		})
		r.Get("/dashboard/candidate", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, "boom")
		})
		r.Get("/documents/templates", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "{not json")
		})
		r.Post("/documents/submit/{template_id}", func(w http.ResponseWriter, req *http.Request) {
			f, hdr, err := req.FormFile("file")
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
				return
			}
			defer f.Close()
			body, _ := io.ReadAll(f)
			b.files.Store(hdr.Filename + "|" + hdr.Header.Get("Content-Type") + "|" + string(body))
			writeJSON(w, http.StatusOK, model.DocumentSubmission{ID: 101, TemplateID: 1, Status: model.SubmissionSubmitted})
		})
	})
	b.srv = httptest.NewServer(r)
	return b
}

func staticToken(tok string) client.TokenSource {
	return client.TokenSourceFunc(func(context.Context) (string, error) { return tok, nil })
}

func TestNew(t *testing.T) {
	Convey("Given base urls", t, func() {
		_, err := client.New("localhost:8000")
		So(errors.Is(err, client.ErrInvalidBaseURL), ShouldBeTrue)
		_, err = client.New("ftp://example.com/api/v1")
		So(errors.Is(err, client.ErrInvalidBaseURL), ShouldBeTrue)

		c, err := client.New("http://localhost:8000/api/v1/")
		So(err, ShouldBeNil)
		So(c.BaseURL(), ShouldEqual, "http://localhost:8000/api/v1")
	})
}

func TestClientRequests(t *testing.T) {
	Convey("Given a client against a fake backend", t, func() {
		b := newBackend()
		defer b.srv.Close()
		var expired atomic.Int64
		c, err := client.New(b.srv.URL+"/api/v1",
			client.WithTokenSource(staticToken("at")),
			client.WithUnauthorizedHandler(func(context.Context) { expired.Add(1) }),
			client.WithTimeout(2*time.Second))
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When logging in with good credentials", func() {
			pair, err := c.Login(ctx, "c@example.com", "secret")

			Convey("Then the token pair is returned", func() {
				So(err, ShouldBeNil)
				So(pair.AccessToken, ShouldEqual, "at")
				So(pair.TokenType, ShouldEqual, "bearer")
			})
		})

		Convey("When logging in with bad credentials", func() {
			_, err := c.Login(ctx, "c@example.com", "wrong")

			Convey("Then the detail is kept and the expiry hook does not fire", func() {
				detail, ok := client.DetailOf(err)
				So(ok, ShouldBeTrue)
				So(detail, ShouldEqual, "Incorrect email or password")
				So(errors.Is(err, client.ErrUnauthorized), ShouldBeTrue)
				So(expired.Load(), ShouldEqual, 0)
			})
		})

		Convey("When fetching the profile", func() {
			u, err := c.Me(ctx)

			Convey("Then the bearer token is attached", func() {
				So(err, ShouldBeNil)
				So(u.ID, ShouldEqual, 9)
				So(b.auth.Load(), ShouldEqual, "Bearer at")
			})
		})

		Convey("When an authenticated call gets a 401", func() {
			stale, _ := client.New(b.srv.URL+"/api/v1",
				client.WithTokenSource(staticToken("old")),
				client.WithUnauthorizedHandler(func(context.Context) { expired.Add(1) }))
			_, err := stale.Me(ctx)

			Convey("Then the hook fires exactly once", func() {
				So(errors.Is(err, client.ErrUnauthorized), ShouldBeTrue)
				So(expired.Load(), ShouldEqual, 1)
			})
		})

		Convey("When listing task templates", func() {
			tasks, err := c.Tasks(ctx)
			So(err, ShouldBeNil)
			So(tasks, ShouldHaveLength, 1)
		})

		Convey("When a status update is rejected", func() {
			_, err := c.UpdateCandidateTask(ctx, 400, model.TaskDone)

			Convey("Then an APIError with the detail is returned", func() {
				var apiErr *client.APIError
				So(errors.As(err, &apiErr), ShouldBeTrue)
				So(apiErr.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(apiErr.Detail, ShouldEqual, "Invalid status transition")
				So(apiErr.Endpoint, ShouldEqual, "/candidate-tasks/{id}")
			})
		})

		Convey("When a status update is accepted", func() {
			ct, err := c.UpdateCandidateTask(ctx, 5, model.TaskInProgress)
			So(err, ShouldBeNil)
			So(ct.Status, ShouldEqual, model.TaskInProgress)
		})

		Convey("When the backend returns validation entries", func() {
			score := 5
			_, err := c.UpdateTrainingProgress(ctx, 3, model.TrainingProgressUpdate{Status: model.TrainingCompleted, Score: &score})
			detail, ok := client.DetailOf(err)
			So(ok, ShouldBeTrue)
			So(detail, ShouldEqual, "value is not a valid integer")
		})

		Convey("When the backend fails without a detail", func() {
			_, err := c.CandidateDashboard(ctx)
			var apiErr *client.APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Detail, ShouldBeEmpty)
			So(apiErr.Body, ShouldEqual, "boom")
		})

		Convey("When the body is not json", func() {
			_, err := c.DocumentTemplates(ctx)
			So(errors.Is(err, client.ErrDecode), ShouldBeTrue)
		})

		Convey("When uploading a document", func() {
			var last, calls atomic.Int64
			sub, err := c.SubmitDocument(ctx, 1, upload.File{
				FileInfo: upload.FileInfo{Name: "w4.pdf", Size: 5, ContentType: upload.TypePDF},
				Body:     strings.NewReader("%PDF-"),
			}, func(pct int) {
				calls.Add(1)
				last.Store(int64(pct))
			})

			Convey("Then one multipart request carries the file and progress ends at 100", func() {
				So(err, ShouldBeNil)
				So(sub.ID, ShouldEqual, 101)
				So(b.files.Load(), ShouldEqual, "w4.pdf|application/pdf|%PDF-")
				So(calls.Load(), ShouldBeGreaterThan, 0)
				So(last.Load(), ShouldEqual, 100)
			})
		})

		Convey("When checking health", func() {
			h, err := c.Health(ctx)
			So(err, ShouldBeNil)
			So(h.Status, ShouldEqual, "ok")
		})
	})

	Convey("Given an unreachable backend", t, func() {
		b := newBackend()
		url := b.srv.URL
		b.srv.Close()
		c, _ := client.New(url + "/api/v1")

		Convey("Then calls fail with a transport error", func() {
			_, err := c.Tasks(context.Background())
			So(errors.Is(err, client.ErrTransport), ShouldBeTrue)
			_, isAPI := client.DetailOf(err)
			So(isAPI, ShouldBeFalse)
		})
	})
}
