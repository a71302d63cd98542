package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/symcheck/internal/domain"
	"github.com/kailas-cloud/symcheck/internal/domain/assessment"
	assessuc "github.com/kailas-cloud/symcheck/internal/usecase/assess"
	healthuc "github.com/kailas-cloud/symcheck/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server hosts the triage HTTP API.
type Server struct {
	assessments   *assessuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler

	uploadsDir     string
	maxUploadBytes int64
}

// NewServer creates an HTTP API server.
func NewServer(assessments *assessuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		assessments:    assessments,
		health:         health,
		logger:         logger,
		uploadsDir:     "uploads",
		maxUploadBytes: 5 << 20,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, CodeSessionNotFound),
		sentinelHandler(domain.ErrUploadTooLarge, http.StatusRequestEntityTooLarge, CodeUploadTooLarge),
	}
	return s
}

// WithUploads configures the image upload directory and size cap.
func (s *Server) WithUploads(dir string, maxMB int) *Server {
	if dir != "" {
		s.uploadsDir = dir
	}
	if maxMB > 0 {
		s.maxUploadBytes = int64(maxMB) << 20
	}
	return s
}

// RegisterRoutes mounts all API routes on the given router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/symptoms", s.ListSymptoms)
		r.Route("/assessments", func(r chi.Router) {
			r.Post("/", s.CreateAssessment)
			r.Get("/{id}", s.GetAssessment)
			r.Delete("/{id}", s.DeleteAssessment)
			r.Get("/{id}/export", s.ExportAssessment)
		})
	})
}

// CreateAssessment handles POST /api/v1/assessments. Accepts a JSON body
// or a multipart form (the latter may carry an image upload).
func (s *Server) CreateAssessment(w http.ResponseWriter, r *http.Request) {
	var (
		input    assessment.Input
		warnings []string
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var err error
		input, warnings, err = s.inputFromMultipart(w, r)
		if err != nil {
			s.handleUploadError(w, err)
			return
		}
	} else {
		var req AssessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
			return
		}
		input = assessment.Input{
			Text:       req.SymptomsText,
			Selections: req.SymptomsCheck,
			Duration:   req.Duration,
			Severity:   req.Severity,
			Age:        req.Age,
			Sex:        req.Sex,
		}
	}

	a, err := s.assessments.Assess(r.Context(), input)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/assessments/"+a.ID())
	writeJSON(w, http.StatusCreated, assessmentToResponse(a, warnings))
}

// GetAssessment handles GET /api/v1/assessments/{id}.
func (s *Server) GetAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := s.assessments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, assessmentToResponse(a, nil))
}

// DeleteAssessment handles DELETE /api/v1/assessments/{id}.
func (s *Server) DeleteAssessment(w http.ResponseWriter, r *http.Request) {
	if err := s.assessments.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportAssessment handles GET /api/v1/assessments/{id}/export. The
// assessment is served as a downloadable JSON report.
func (s *Server) ExportAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := s.assessments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	body, err := json.MarshalIndent(assessmentToResponse(a, nil), "", "  ")
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="report_`+a.ID()+`.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// ListSymptoms handles GET /api/v1/symptoms.
func (s *Server) ListSymptoms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SymptomsResponse{
		Symptoms: emptyIfNil(s.assessments.Symptoms()),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrSessionNotFound,
		domain.ErrUploadTooLarge,
		domain.ErrUploadType,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// handleUploadError maps multipart intake failures: an oversized body is
// 413, a malformed form is 400, anything else (disk faults) is 500.
func (s *Server) handleUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUploadTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, CodeUploadTooLarge, domain.ErrUploadTooLarge.Error())
	case errors.Is(err, errMalformedForm):
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid multipart form")
	default:
		s.logger.Error("upload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
	}
}
