package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
	"wellness-center/internal/api/handler/dto"
	"wellness-center/internal/domain/classification"
)

// RunStarter launches a background classification run.
type RunStarter interface {
	Start(ctx context.Context, timeout time.Duration) error
	Running() bool
}

type ClassificationHandler struct {
	service    classification.Service
	job        RunStarter
	runTimeout time.Duration
	logger     *slog.Logger
}

func NewClassificationHandler(s classification.Service, job RunStarter, runTimeout time.Duration, l *slog.Logger) *ClassificationHandler {
	if s == nil || job == nil || l == nil {
		panic("classification handler dependencies cannot be nil")
	}
	return &ClassificationHandler{
		service:    s,
		job:        job,
		runTimeout: runTimeout,
		logger:     l.With("component", "ClassificationHandler"),
	}
}

// Preview handles POST /classification/preview
// @Summary Preview a classification
// @Description Classifies ad-hoc aggregates against the current criteria without storing anything.
// @Tags Classification
// @Accept json
// @Produce json
// @Param request body dto.PreviewRequest true "Customer aggregates"
// @Success 200 {object} dto.ClassificationResponse "Derived labels"
// @Failure 400 {object} dto.ErrorResponse "Invalid aggregates"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /classification/preview [post]
// @Security BearerAuth
func (h *ClassificationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req dto.PreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, badRequest(err))
		return
	}
	input, err := req.Input()
	if err != nil {
		respondError(w, badRequest(err))
		return
	}

	result, err := h.service.Preview(r.Context(), input, time.Now())
	if err != nil {
		h.logger.Log(r.Context(), errorLevel(err), "Classification preview failed", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewClassificationResponse(result))
}

// TriggerRun handles POST /classification/runs
// @Summary Start a classification run
// @Description Starts reclassifying every active customer in the background. Only one run may be in progress.
// @Tags Classification
// @Produce json
// @Success 202 {object} dto.RunStatusResponse "Run started"
// @Failure 409 {object} dto.ErrorResponse "A run is already in progress"
// @Router /classification/runs [post]
// @Security BearerAuth
func (h *ClassificationHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	if err := h.job.Start(r.Context(), h.runTimeout); err != nil {
		h.logger.Log(r.Context(), errorLevel(err), "Classification run not started", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Classification run started")
	respondJSON(w, http.StatusAccepted, dto.RunStatusResponse{Status: "started"})
}

// RunStatus handles GET /classification/runs/current
// @Summary Classification run status
// @Description Reports whether a classification run is in progress.
// @Tags Classification
// @Produce json
// @Success 200 {object} dto.RunStatusResponse "running or idle"
// @Router /classification/runs/current [get]
// @Security BearerAuth
func (h *ClassificationHandler) RunStatus(w http.ResponseWriter, r *http.Request) {
	status := "idle"
	if h.job.Running() {
		status = "running"
	}
	respondJSON(w, http.StatusOK, dto.RunStatusResponse{Status: status})
}

// Report handles GET /reports/classification
// @Summary Classification report
// @Description Counts active customers per membership level, status and risk level.
// @Tags Reports
// @Produce json
// @Success 200 {object} dto.SummaryResponse "Counts per label"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports/classification [get]
// @Security BearerAuth
func (h *ClassificationHandler) Report(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to build classification report", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewSummaryResponse(summary))
}
