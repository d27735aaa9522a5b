package handler

import (
	"io"
	"log/slog"
	"net/http"
	"wellness-center/internal/domain/membership"
	"wellness-center/internal/domain/settings"
)

type SettingsHandler struct {
	service settings.CriteriaService
	logger  *slog.Logger
}

func NewSettingsHandler(s settings.CriteriaService, l *slog.Logger) *SettingsHandler {
	if s == nil || l == nil {
		panic("settings handler dependencies cannot be nil")
	}
	return &SettingsHandler{
		service: s,
		logger:  l.With("component", "SettingsHandler"),
	}
}

// GetMembershipCriteria handles GET /settings/membership-criteria
// @Summary Get membership criteria
// @Description Returns the stored tier thresholds. A null visit ceiling means unbounded.
// @Tags Settings
// @Produce json
// @Success 200 {object} map[string]interface{} "Criteria per tier"
// @Failure 400 {object} dto.ErrorResponse "Stored criteria are malformed"
// @Failure 404 {object} dto.ErrorResponse "Membership criteria not configured"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /settings/membership-criteria [get]
// @Security BearerAuth
func (h *SettingsHandler) GetMembershipCriteria(w http.ResponseWriter, r *http.Request) {
	criteria, err := h.service.GetCriteria(r.Context())
	if err != nil {
		h.logger.Log(r.Context(), errorLevel(err), "Failed to load membership criteria", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, criteria)
}

// GetDefaultCriteria handles GET /settings/membership-criteria/defaults
// @Summary Get built-in default criteria
// @Description Returns the thresholds used when nothing is configured.
// @Tags Settings
// @Produce json
// @Success 200 {object} map[string]interface{} "Default criteria per tier"
// @Router /settings/membership-criteria/defaults [get]
// @Security BearerAuth
func (h *SettingsHandler) GetDefaultCriteria(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, membership.DefaultCriteria())
}

// UpdateMembershipCriteria handles PUT /settings/membership-criteria
// @Summary Replace membership criteria
// @Description Validates and stores tier thresholds. Tiers or fields left out keep their default values; "bronze" is accepted for basic.
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Criteria per tier, e.g. {\"gold\":{\"annual_revenue_min\":10000000,\"total_visits_min\":30,\"total_visits_max\":null}}"
// @Success 200 {object} map[string]interface{} "Stored criteria"
// @Failure 400 {object} dto.ErrorResponse "Invalid criteria document"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /settings/membership-criteria [put]
// @Security BearerAuth
func (h *SettingsHandler) UpdateMembershipCriteria(w http.ResponseWriter, r *http.Request) {
	if r.Body == nil || r.Body == http.NoBody {
		respondError(w, badRequest(errEmptyBody))
		return
	}
	defer r.Body.Close()

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to read criteria body", slog.Any("error", err))
		respondError(w, badRequest(err))
		return
	}

	criteria, err := h.service.UpdateCriteria(r.Context(), raw)
	if err != nil {
		h.logger.Log(r.Context(), errorLevel(err), "Failed to update membership criteria", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Membership criteria updated")
	respondJSON(w, http.StatusOK, criteria)
}
