package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/flatdb/flatdb/core"
	"github.com/flatdb/flatdb/db"
)

// Server routes HTTP requests to one engine instance.
type Server struct {
	engine *db.Engine
	logger zerolog.Logger
	config Config
}

func newServer(engine *db.Engine, logger zerolog.Logger, cfg Config) *Server {
	return &Server{
		engine: engine,
		logger: logger,
		config: cfg,
	}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/query", s.handleQuery)
		r.Get("/tables", s.handleListTables)
		r.Get("/tables/{name}", s.handleGetTable)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(wrapped, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Columns       []string   `json:"columns,omitempty"`
	Rows          []core.Row `json:"rows,omitempty"`
	AffectedCount int        `json:"affectedCount"`
	RecordsRead   int        `json:"recordsRead"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Position *int   `json:"position,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorBody{Kind: "BadRequest", Message: "invalid request body"},
		})
		return
	}

	result, err := s.engine.Execute(req.Query)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Columns:       result.Columns,
		Rows:          result.Rows,
		AffectedCount: result.AffectedCount,
		RecordsRead:   result.RecordsRead,
	})
}

func (s *Server) handleListTables(w http.ResponseWriter, _ *http.Request) {
	names := []string{}
	for name, err := range s.engine.Persistence().ListTables() {
		if err != nil {
			s.writeEngineError(w, err)
			return
		}
		names = append(names, name)
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tables": names})
}

func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	table, err := s.engine.Persistence().GetTable(chi.URLParam(r, "name"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	var typed *core.Error
	if !errors.As(err, &typed) {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: errorBody{Kind: "Internal", Message: err.Error()},
		})
		return
	}

	status := http.StatusInternalServerError
	body := errorBody{Kind: typed.Kind.String(), Message: typed.Message}
	switch typed.Kind {
	case core.SyntaxError:
		status = http.StatusBadRequest
		body.Position = &typed.Position
	case core.SchemaError:
		status = http.StatusNotFound
	case core.ConstraintError:
		status = http.StatusConflict
	}
	writeJSON(w, status, errorResponse{Error: body})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
