package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/okian/onboard/internal/app"
	"github.com/okian/onboard/pkg/logger"
	"github.com/okian/onboard/pkg/metrics"
	"github.com/spf13/cobra"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	healthTimeout     = 3 * time.Second
)

// refreshState is what the last refresh of `watch` left behind.
type refreshState struct {
	mu      sync.Mutex
	at      time.Time
	err     error
	refresh int
}

func (s *refreshState) record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.at = time.Now()
	s.err = err
	s.refresh++
}

// healthReport is the body of the watch server's /healthz.
type healthReport struct {
	Status      string `json:"status"`
	Backend     string `json:"backend"`
	LastRefresh string `json:"last_refresh,omitempty"`
	LastError   string `json:"last_error,omitempty"`
	Refreshes   int    `json:"refreshes"`
}

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the portal state fresh and export progress metrics",
		Long: `Reload documents, tasks, training and the dashboard every refresh_interval
and publish progress gauges. /metrics and /healthz are served on
metrics_addr until interrupted.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}
			return c.watch(ctx)
		},
	}
}

func (c *cli) watch(ctx context.Context) error {
	state := &refreshState{}
	srv := &http.Server{
		Addr:              c.cfg.MetricsAddr,
		Handler:           c.watchRouter(state),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		c.log.Info(ctx, "starting metrics server", logger.String("addr", c.cfg.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	err := c.refreshLoop(ctx, state, serveErr)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		c.log.Error(ctx, "metrics server shutdown failed", logger.Error(serr))
	}
	c.log.Info(ctx, "watch stopped")
	return err
}

// refreshLoop refreshes right away and then on every tick until ctx ends,
// the session is gone or the server fails.
func (c *cli) refreshLoop(ctx context.Context, state *refreshState, serveErr <-chan error) error {
	ticker := time.NewTicker(c.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		err := c.portal.Refresh(ctx)
		state.record(err)
		if err != nil && ctx.Err() == nil {
			c.log.Warn(ctx, "refresh failed", logger.Error(err))
		}
		for domain, s := range c.portal.Progress(time.Now()) {
			c.log.Debug(ctx, "progress",
				logger.String("domain", domain),
				logger.Int("completion_percentage", s.CompletionPercentage),
				logger.Int("overdue", s.Overdue))
		}
		if ctx.Err() != nil {
			return nil
		}
		if err := c.requireSession(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-serveErr:
			if ok {
				return err
			}
			serveErr = nil
		case <-ticker.C:
		}
	}
}

func (c *cli) watchRouter(state *refreshState) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(c.requestLog)

	r.Handle("/metrics", metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), healthTimeout)
		defer cancel()

		report := healthReport{Status: "ok", Backend: "ok"}
		code := http.StatusOK
		if _, err := c.client.Health(ctx); err != nil {
			report.Status, report.Backend = "degraded", app.UserMessage(err, err.Error())
			code = http.StatusServiceUnavailable
		}
		state.mu.Lock()
		report.Refreshes = state.refresh
		if !state.at.IsZero() {
			report.LastRefresh = state.at.UTC().Format(time.RFC3339)
		}
		if state.err != nil {
			report.LastError = state.err.Error()
		}
		state.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(report)
	})
	return r
}

// requestLog logs every request to the watch server at debug level.
func (c *cli) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			c.log.Debug(r.Context(), "http request",
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status", ww.Status()),
				logger.Int("bytes", ww.BytesWritten()),
				logger.Duration("elapsed", time.Since(start)),
				logger.String("request_id", middleware.GetReqID(r.Context())))
		}()
		next.ServeHTTP(ww, r)
	})
}
