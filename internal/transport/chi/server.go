package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wayfarer/internal/domain"
	"github.com/kailas-cloud/wayfarer/internal/domain/risk"
	"github.com/kailas-cloud/wayfarer/internal/domain/search/request"
	"github.com/kailas-cloud/wayfarer/internal/domain/search/result"
	"github.com/kailas-cloud/wayfarer/internal/domain/trip"
	"github.com/kailas-cloud/wayfarer/internal/logger"
	"github.com/kailas-cloud/wayfarer/internal/transport/api"
	healthuc "github.com/kailas-cloud/wayfarer/internal/usecase/health"
	planneruc "github.com/kailas-cloud/wayfarer/internal/usecase/planner"
	"github.com/kailas-cloud/wayfarer/internal/usecase/retrieval"
	riskuc "github.com/kailas-cloud/wayfarer/internal/usecase/risk"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Retriever answers knowledge queries.
type Retriever interface {
	NewRequest(query, location string, interests []string, topK int) (request.Request, error)
	Retrieve(ctx context.Context, req *request.Request) ([]result.Result, error)
	Len() int
}

// IndexInfo describes the similarity index.
type IndexInfo interface {
	Dimension() int
	Model() string
}

// Assessor scores trip risk.
type Assessor interface {
	Assess(in riskuc.AssessInput) (risk.Assessment, error)
}

// Planner runs the trip planning pipeline.
type Planner interface {
	Plan(ctx context.Context, t trip.Trip) (*planneruc.Plan, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the wayfarer HTTP API.
type Server struct {
	retriever     Retriever
	index         IndexInfo
	assessor      Assessor
	planner       Planner
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	retriever Retriever,
	index IndexInfo,
	assessor Assessor,
	planner Planner,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		retriever: retriever,
		index:     index,
		assessor:  assessor,
		planner:   planner,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, api.ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, api.ErrorCodeVectorDimMismatch),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, api.ErrorCodeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, api.ErrorCodeAlreadyExists),
		sentinelHandler(domain.ErrModelUnavailable, http.StatusServiceUnavailable, api.ErrorCodeModelUnavailable),
		sentinelHandler(domain.ErrSourceUnavailable, http.StatusBadGateway, api.ErrorCodeSourceUnavailable),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, api.ErrorCodeNotImplemented),
	}
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/knowledge/retrieve", s.RetrieveKnowledge)
		r.Get("/knowledge/search", s.SearchKnowledge)
		r.Get("/knowledge/stats", s.KnowledgeStats)
		r.Post("/risk/assess", s.AssessRisk)
		r.Post("/trips/plan", s.PlanTrip)
	})
}

// RetrieveKnowledge handles POST /api/v1/knowledge/retrieve.
func (s *Server) RetrieveKnowledge(w http.ResponseWriter, r *http.Request) {
	var req api.RetrieveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.retrieve(w, r, req.Query, req.Location, req.Interests, derefInt(req.TopK))
}

// SearchKnowledge handles GET /api/v1/knowledge/search?q=...&location=...&interests=...&top_k=...
func (s *Server) SearchKnowledge(w http.ResponseWriter, r *http.Request) {
	var params api.SearchParams
	query := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, true, "q", query, &params.Query); err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorCodeBadRequest, fmt.Sprintf("Invalid format for parameter q: %s", err))
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "location", query, &params.Location); err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorCodeBadRequest,
			fmt.Sprintf("Invalid format for parameter location: %s", err))
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "interests", query, &params.Interests); err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorCodeBadRequest,
			fmt.Sprintf("Invalid format for parameter interests: %s", err))
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "top_k", query, &params.TopK); err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorCodeBadRequest,
			fmt.Sprintf("Invalid format for parameter top_k: %s", err))
		return
	}

	var interests []string
	if params.Interests != nil {
		interests = *params.Interests
	}
	s.retrieve(w, r, params.Query, derefString(params.Location), interests, derefInt(params.TopK))
}

func (s *Server) retrieve(w http.ResponseWriter, r *http.Request, query, location string, interests []string, topK int) {
	req, err := s.retriever.NewRequest(query, location, interests, topK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	results, err := s.retriever.Retrieve(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.RetrieveResponse{
		Items:   api.KnowledgeFromResults(results),
		Total:   len(results),
		Summary: retrieval.Summary(results),
	})
}

// KnowledgeStats handles GET /api/v1/knowledge/stats.
func (s *Server) KnowledgeStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.StatsResponse{
		Documents:  s.retriever.Len(),
		Dimensions: s.index.Dimension(),
		Model:      s.index.Model(),
	})
}

// AssessRisk handles POST /api/v1/risk/assess.
func (s *Server) AssessRisk(w http.ResponseWriter, r *http.Request) {
	var req api.AssessRequest
	if !decodeBody(w, r, &req) {
		return
	}

	in, err := api.AssessInputFromAPI(&req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	assessment, err := s.assessor.Assess(in)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.AssessmentToAPI(&assessment))
}

// PlanTrip handles POST /api/v1/trips/plan.
func (s *Server) PlanTrip(w http.ResponseWriter, r *http.Request) {
	var req api.PlanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	t, err := trip.New(req.Destination, req.StartDate, req.EndDate, req.Budget, req.Currency, req.Interests)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	plan, err := s.planner.Plan(r.Context(), t)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.PlanToAPI(plan))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, api.HealthToAPI(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code api.ErrorCode, message string) {
	writeJSON(w, status, api.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message: field errors keep their detail,
// other sentinels collapse to the sentinel text.
func safeDomainMessage(err error) string {
	var fe *domain.FieldError
	if errors.As(err, &fe) {
		return fe.Error()
	}
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrVectorDimMismatch,
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrModelUnavailable,
		domain.ErrSourceUnavailable,
		domain.ErrNotImplemented,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code api.ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, api.ErrorCodeInternalError, "internal error")
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
