package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"personaforge/internal/anonymize/models"
	platformMetrics "personaforge/internal/platform/metrics"
	"personaforge/internal/platform/middleware"
	dErrors "personaforge/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the interface for anonymization operations.
type Service interface {
	Run(ctx context.Context, req models.AnonymizeRequest, userID string) (models.Job, error)
	Get(ctx context.Context, jobID string) (models.Job, error)
	List(ctx context.Context) ([]models.Job, error)
}

// Handler handles anonymization endpoints.
type Handler struct {
	logger       *slog.Logger
	service      Service
	metrics      *platformMetrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new anonymization Handler.
func New(
	service Service,
	logger *slog.Logger,
	metrics *platformMetrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		service:      service,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the anonymization routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.LatencyMiddleware(h.metrics))
	router.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	router.Post("/v1/anonymize", h.handleAnonymize)
	router.Get("/v1/jobs/{jobID}", h.handleGetJob)
	router.Get("/v1/jobs", h.handleListJobs)

	r.Mount("/", router)
}

// handleAnonymize runs a dataset through the anonymization pipeline.
func (h *Handler) handleAnonymize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	userID := middleware.GetUserID(ctx)

	var req models.AnonymizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid anonymize request",
			"request_id", requestID,
			"error", err.Error(),
		)
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	job, err := h.service.Run(ctx, req, userID)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeBadRequest) {
			h.logger.WarnContext(ctx, "rejected anonymize request",
				"request_id", requestID,
				"error", err.Error(),
			)
			writeError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "anonymize run failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		writeError(w, dErrors.New(dErrors.CodeInternal, "failed to run anonymization"))
		return
	}

	writeJSON(w, http.StatusCreated, job)
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "jobID")

	job, err := h.service.Get(ctx, jobID)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) {
			writeError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get job",
			"request_id", middleware.GetRequestID(ctx),
			"job_id", jobID,
			"error", err.Error(),
		)
		writeError(w, dErrors.New(dErrors.CodeInternal, "failed to get job"))
		return
	}

	writeJSON(w, http.StatusOK, job)
}

func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobs, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list jobs",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, dErrors.New(dErrors.CodeInternal, "failed to list jobs"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}
