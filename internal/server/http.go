package server

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-api/internal/config"
	"github.com/gokatarajesh/trivia-api/internal/logging"
	"github.com/gokatarajesh/trivia-api/internal/metrics"
	"github.com/gokatarajesh/trivia-api/internal/question"
	httperrors "github.com/gokatarajesh/trivia-api/pkg/http/errors"
)

// WSUpgrader handles WebSocket upgrades. The question feed is read-only, so any origin may subscribe.
var WSUpgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Dependency is a backing service checked by /v1/ping.
type Dependency struct {
	Name string
	Ping func(ctx context.Context) error
}

// Options carries the handlers and collaborators mounted by NewHTTPServer.
type Options struct {
	Questions    *question.HTTPHandler
	FeedHandler  http.HandlerFunc // nil when events are disabled
	Dependencies []Dependency
	Metrics      *metrics.Metrics
}

// NewHTTPServer wires the question bank routes plus health, metrics and ping.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, opts Options) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: NewHandler(cfg, logger, opts),
	}
}

// NewHandler builds the full middleware-wrapped route tree.
func NewHandler(cfg *config.App, logger zerolog.Logger, opts Options) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), opts.Dependencies); err != nil {
			reqLogger := logging.FromContext(r.Context())
			reqLogger.Error().Err(err).Msg("dependency ping failed")
			httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeUpstreamError, "upstream error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if h := opts.Questions; h != nil {
		mux.HandleFunc("GET /categories", h.HandleCategories)
		mux.HandleFunc("GET /categories/{id}/questions", h.HandleCategoryQuestions)
		mux.HandleFunc("GET /questions", h.HandleListQuestions)
		mux.HandleFunc("POST /questions", h.HandleCreateQuestion)
		mux.HandleFunc("DELETE /questions/{id}", h.HandleDeleteQuestion)
		mux.HandleFunc("POST /questions/search", h.HandleSearch)
		mux.HandleFunc("POST /quizzes", h.HandleQuiz)

		mux.HandleFunc("/categories", methodNotAllowed("GET"))
		mux.HandleFunc("/categories/{id}/questions", methodNotAllowed("GET"))
		mux.HandleFunc("/questions", methodNotAllowed("GET, POST"))
		mux.HandleFunc("/questions/{id}", func(w http.ResponseWriter, r *http.Request) {
			if r.PathValue("id") == "search" {
				httperrors.RespondMethodNotAllowed(w, "POST")
				return
			}
			httperrors.RespondMethodNotAllowed(w, "DELETE")
		})
		mux.HandleFunc("/quizzes", methodNotAllowed("POST"))
	}

	if opts.FeedHandler != nil {
		mux.HandleFunc("GET /ws/questions", opts.FeedHandler)
	} else {
		mux.HandleFunc("GET /ws/questions", func(w http.ResponseWriter, r *http.Request) {
			httperrors.RespondError(w, http.StatusNotImplemented, httperrors.ErrCodeFeedDisabled, "question feed disabled (REDIS_ADDR not set)")
		})
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "resource not found")
	})

	return withCORS(cfg.CORS, withRequestLogging(logger, opts.Metrics, mux))
}

// methodNotAllowed answers JSON 405s for known paths hit with the wrong verb.
func methodNotAllowed(allowed string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httperrors.RespondMethodNotAllowed(w, allowed)
	}
}

func pingDependencies(ctx context.Context, deps []Dependency) error {
	for _, dep := range deps {
		if err := dep.Ping(ctx); err != nil {
			return &dependencyError{name: dep.Name, err: err}
		}
	}
	return nil
}

type dependencyError struct {
	name string
	err  error
}

func (e *dependencyError) Error() string { return e.name + ": " + e.err.Error() }

func (e *dependencyError) Unwrap() error { return e.err }
