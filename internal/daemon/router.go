package daemon

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"karaoke/internal/api"
	"karaoke/internal/ledger"
	"karaoke/internal/logging"
	"karaoke/internal/metrics"
	"karaoke/internal/services"
)

// StatusFunc reports daemon status for /api/v1/status.
type StatusFunc func(ctx context.Context) api.DaemonStatus

// RouterOptions wires the HTTP surface.
type RouterOptions struct {
	Jobs    *api.JobService
	Status  StatusFunc
	Metrics *metrics.Metrics
	Token   string
	Logger  *slog.Logger
}

// NewRouter builds the chi router for the daemon API.
func NewRouter(opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	h := &handlers{jobs: opts.Jobs, status: opts.Status, logger: logging.NewComponentLogger(logger, "http")}

	r := chi.NewRouter()
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders: []string{"*"},
			MaxAge:         300,
		}),
		middleware.RequestID,
		h.requestLogger,
		middleware.Recoverer,
	)

	r.Get("/", h.welcome)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMiddleware(opts.Token))
		r.Post("/jobs", h.createJob)
		r.Get("/jobs", h.listJobs)
		r.Get("/jobs/{id}", h.getJob)
		r.Get("/status", h.daemonStatus)
	})
	return r
}

type handlers struct {
	jobs   *api.JobService
	status StatusFunc
	logger *slog.Logger
}

func (h *handlers) welcome(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.Welcome{Message: api.WelcomeMessage})
}

func (h *handlers) createJob(w http.ResponseWriter, r *http.Request) {
	var req api.CreateJobRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid JSON body", err)
		return
	}
	rec, err := h.jobs.Submit(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, rec)
}

func (h *handlers) listJobs(w http.ResponseWriter, r *http.Request) {
	records, err := h.jobs.List(r.Context(), r.URL.Query()["status"]...)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, records)
}

func (h *handlers) getJob(w http.ResponseWriter, r *http.Request) {
	rec, err := h.jobs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, rec)
}

func (h *handlers) daemonStatus(w http.ResponseWriter, r *http.Request) {
	if h.status == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "status unavailable", nil)
		return
	}
	render.JSON(w, r, h.status(r.Context()))
}

func (h *handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		h.writeError(w, r, http.StatusBadRequest, "invalid request", err)
	case errors.Is(err, ledger.ErrNotFound):
		h.writeError(w, r, http.StatusNotFound, "job not found", nil)
	default:
		logging.ErrorWithContext(logging.WithContext(r.Context(), h.logger), "request failed", "http_error",
			logging.Error(err),
			logging.String("path", r.URL.Path),
			logging.String(logging.FieldErrorHint, "check database access"),
		)
		h.writeError(w, r, http.StatusInternalServerError, "internal error", nil)
	}
}

func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	body := api.ErrorResponse{Error: message}
	if err != nil {
		body.Detail = err.Error()
	}
	render.Status(r, status)
	render.JSON(w, r, body)
}

// requestLogger stamps the chi request id into the context and logs one line
// per request.
func (h *handlers) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := services.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		r = r.WithContext(ctx)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logging.WithContext(ctx, h.logger).Debug("http request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Duration("elapsed", time.Since(start)),
		)
	})
}
