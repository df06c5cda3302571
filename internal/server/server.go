// Package server exposes the HTTP trigger and inspection endpoints.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appjob "github.com/ripline/ripline/internal/job"
	"github.com/ripline/ripline/pkg/batch/core/launcher"
	"github.com/ripline/ripline/pkg/batch/core/model"
	"github.com/ripline/ripline/pkg/batch/core/repository"
	"github.com/ripline/ripline/pkg/batch/support/logger"
)

// Server routes HTTP requests to the batch launcher.
type Server struct {
	launcher      launcher.JobLauncher
	jobRepository repository.JobRepository
}

// NewServer builds the HTTP surface over the launcher and repository.
func NewServer(l launcher.JobLauncher, repo repository.JobRepository) *Server {
	return &Server{launcher: l, jobRepository: repo}
}

// Routes assembles the router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/job/start", s.handleStartJob)
	r.Get("/job/executions/{id}", s.handleGetExecution)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// handleStartJob launches the customer import synchronously and reports
// the outcome in the response body.
func (s *Server) handleStartJob(w http.ResponseWriter, r *http.Request) {
	execution, err := s.launcher.Launch(r.Context(), appjob.ImportCustomersJobName, model.NewJobParameters())
	if err != nil {
		switch {
		case errors.Is(err, launcher.ErrJobAlreadyRunning):
			http.Error(w, "Batch job is already running", http.StatusConflict)
		case errors.Is(err, launcher.ErrIncompatibleRestart):
			http.Error(w, "Batch job cannot be restarted", http.StatusConflict)
		default:
			logger.Errorf("Job launch failed: %v", err)
			http.Error(w, "Batch job failed", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if execution != nil {
		w.Header().Set("X-Job-Execution-Id", execution.ID)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("Batch job has been invoked")); err != nil {
		logger.Warnf("Failed to write response: %v", err)
	}
}

// handleGetExecution returns a job execution as JSON.
func (s *Server) handleGetExecution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	execution, err := s.jobRepository.FindJobExecutionByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "execution not found", http.StatusNotFound)
			return
		}
		logger.Errorf("Failed to load execution %s: %v", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(execution); err != nil {
		logger.Warnf("Failed to encode execution %s: %v", id, err)
	}
}
