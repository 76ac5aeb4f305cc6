package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/cuisine-engine/backend/internal/engine"
	"github.com/cuisine-engine/backend/internal/search"
)

const defaultTopN = 10

var validate = validator.New()

type Server struct {
	Engine  *engine.Engine
	Logger  *logrus.Entry
	Router  *chi.Mux
	MaxTopN int

	httpServer *http.Server
}

func NewServer(eng *engine.Engine, logger *logrus.Entry) *Server {
	s := &Server{
		Engine:  eng,
		Logger:  logger,
		Router:  chi.NewRouter(),
		MaxTopN: eng.Config.Server.MaxTopN,
	}
	s.routes()
	s.httpServer = &http.Server{
		Addr:              eng.Config.Server.Addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.Router.Use(chimiddleware.RequestID)
	s.Router.Use(chimiddleware.Recoverer)
	s.Router.Use(s.logRequests)

	s.Router.Route("/api/v1", func(r chi.Router) {
		r.Get("/recommend", s.handleRecommend)
		r.Get("/cuisines", s.handleCuisines)
		r.Get("/status", s.handleStatus)
		r.Post("/reload", s.handleReload)
	})
	s.Router.Handle("/metrics", promhttp.Handler())
}

// Start serves on the configured address until Shutdown is called. It
// returns nil straight away if Shutdown already ran.
func (s *Server) Start() error {
	s.Logger.Infof("Starting API Server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully. Safe to call before or during Start.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Requests & Responses

type RecommendRequest struct {
	Cuisine string `validate:"required"`
	TopN    int    `validate:"min=1"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type RecommendResponse struct {
	Cuisine string                  `json:"cuisine"`
	TopN    int                     `json:"top_n"`
	Results []search.Recommendation `json:"results"`
}

type CuisinesResponse struct {
	Cuisines []string `json:"cuisines"`
}

type StatusResponse struct {
	Ready       bool   `json:"ready"`
	RawRows     int    `json:"raw_rows"`
	SampledRows int    `json:"sampled_rows"`
	CleanRows   int    `json:"clean_rows"`
	Vocabulary  int    `json:"vocabulary"`
	Loads       int64  `json:"loads"`
	LastLoad    string `json:"last_load,omitempty"`
	LastError   string `json:"last_error,omitempty"`
}

// Handlers

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	req := RecommendRequest{
		Cuisine: r.URL.Query().Get("cuisine"),
		TopN:    defaultTopN,
	}
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "top_n must be an integer"})
			return
		}
		req.TopN = n
	}

	if err := validate.Struct(req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Query 'cuisine' is required and 'top_n' must be at least 1"})
		return
	}
	if err := validate.Var(req.TopN, fmt.Sprintf("max=%d", s.MaxTopN)); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("top_n must be at most %d", s.MaxTopN)})
		return
	}

	results, err := s.Engine.Recommend(req.Cuisine, req.TopN)
	if err != nil {
		s.engineError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, RecommendResponse{
		Cuisine: req.Cuisine,
		TopN:    req.TopN,
		Results: results,
	})
}

func (s *Server) handleCuisines(w http.ResponseWriter, r *http.Request) {
	cuisines, err := s.Engine.Cuisines()
	if err != nil {
		s.engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, CuisinesResponse{Cuisines: cuisines})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.Engine.Status()

	resp := StatusResponse{
		Ready:       status.Ready,
		RawRows:     status.RawRows,
		SampledRows: status.SampledRows,
		CleanRows:   status.CleanRows,
		Vocabulary:  status.Vocabulary,
		Loads:       status.Loads,
		LastError:   status.LastError,
	}
	if !status.LastLoad.IsZero() {
		resp.LastLoad = status.LastLoad.UTC().Format(time.RFC3339)
	}

	jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Reload(r.Context()); err != nil {
		s.Logger.WithError(err).Error("Reload failed")
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func (s *Server) engineError(w http.ResponseWriter, err error) {
	if errors.Is(err, engine.ErrNotReady) {
		jsonResponse(w, http.StatusServiceUnavailable, ErrorResponse{Error: "index is not ready"})
		return
	}
	s.Logger.WithError(err).Error("Request failed")
	jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"elapsed":    time.Since(start),
			"request_id": chimiddleware.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}

func jsonResponse(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
