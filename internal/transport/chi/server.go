package chi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/queryrules/internal/domain"
	"github.com/kailas-cloud/queryrules/internal/domain/query"
	domrule "github.com/kailas-cloud/queryrules/internal/domain/rule"
	"github.com/kailas-cloud/queryrules/internal/usecase/augment"
	healthuc "github.com/kailas-cloud/queryrules/internal/usecase/health"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes = 1 << 20

// Augmenter rewrites a query document for a search term.
type Augmenter interface {
	AugmentWithReport(ctx context.Context, doc query.Document, term string) (query.Document, augment.Report)
}

// RuleService manages stored rules.
type RuleService interface {
	Create(ctx context.Context, r domrule.Rule) (domrule.Rule, error)
	Update(ctx context.Context, r domrule.Rule) (domrule.Rule, error)
	Get(ctx context.Context, id string) (domrule.Rule, error)
	List(ctx context.Context) ([]domrule.Rule, error)
	Delete(ctx context.Context, id string) error
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the augmentation and rule management API.
type Server struct {
	augmenter     Augmenter
	rules         RuleService
	health        HealthChecker
	logger        *zap.Logger
	maxBodyBytes  int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(augmenter Augmenter, rules RuleService, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		augmenter:    augmenter,
		rules:        rules,
		health:       health,
		logger:       logger,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	s.errorHandlers = []errorHandler{
		bodyTooLargeHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeRuleNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, CodeRuleExists),
		sentinelHandler(domain.ErrInvalidRule, http.StatusBadRequest, CodeValidationFailed),
	}
	return s
}

// WithMaxBodyBytes limits request body size. Non-positive values keep the default.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/augment", s.Augment)

		r.Route("/rules", func(r chi.Router) {
			r.Get("/", s.ListRules)
			r.Post("/", s.CreateRule)
			r.Get("/{id}", s.GetRule)
			r.Put("/{id}", s.UpdateRule)
			r.Delete("/{id}", s.DeleteRule)
		})
	})
}

// Augment handles POST /v1/augment.
func (s *Server) Augment(w http.ResponseWriter, r *http.Request) {
	var req AugmentRequest
	if !s.decode(w, r, &req) {
		return
	}

	doc := query.Document(req.Query)
	if doc == nil {
		doc = query.Document{}
	}

	out, report := s.augmenter.AugmentWithReport(r.Context(), doc, req.SearchTerm)

	applied := report.AppliedRules
	if applied == nil {
		applied = []string{}
	}
	writeJSON(w, http.StatusOK, AugmentResponse{
		Query:        out,
		AppliedRules: applied,
		Changed:      report.Changed(),
	})
}

// ListRules handles GET /v1/rules.
func (s *Server) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.rules.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]RuleResponse, len(rules))
	for i, rl := range rules {
		items[i] = ruleToResponse(rl)
	}
	writeJSON(w, http.StatusOK, RuleListResponse{Items: items, Total: len(items)})
}

// CreateRule handles POST /v1/rules.
func (s *Server) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req RuleRequest
	if !s.decode(w, r, &req) {
		return
	}

	rl, err := ruleFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	created, err := s.rules.Create(r.Context(), rl)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/v1/rules/%s", created.ID))
	writeJSON(w, http.StatusCreated, ruleToResponse(created))
}

// GetRule handles GET /v1/rules/{id}.
func (s *Server) GetRule(w http.ResponseWriter, r *http.Request) {
	rl, err := s.rules.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ruleToResponse(rl))
}

// UpdateRule handles PUT /v1/rules/{id}. The path id wins over any id in the body.
func (s *Server) UpdateRule(w http.ResponseWriter, r *http.Request) {
	var req RuleRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	rl, err := ruleFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	updated, err := s.rules.Update(r.Context(), rl)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ruleToResponse(updated))
}

// DeleteRule handles DELETE /v1/rules/{id}.
func (s *Server) DeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := s.rules.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
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

// decode reads a size-limited JSON body into v and writes the error response on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := decodeBody(r, v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.handleDomainError(w, err)
			return false
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
