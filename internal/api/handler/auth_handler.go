package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"wellness-center/internal/api/handler/dto"
	"wellness-center/internal/config"
	"wellness-center/internal/pkg/apperrors"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 24 * time.Hour

type AuthHandler struct {
	cfg    config.AuthConfig
	logger *slog.Logger
	now    func() time.Time
}

func NewAuthHandler(cfg config.AuthConfig, l *slog.Logger) *AuthHandler {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	return &AuthHandler{
		cfg:    cfg,
		logger: l.With("component", "AuthHandler"),
		now:    time.Now,
	}
}

// GenerateBearerToken exchanges staff credentials for a signed JWT.
//
// @Summary Generate a JWT bearer token
// @Description Checks the username and password against the configured staff accounts and returns an HS256 bearer token.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.TokenRequest true "Staff credentials"
// @Success 200 {object} dto.TokenResponse "Token successfully generated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} dto.ErrorResponse "Unknown user or wrong password"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/token [post]
func (h *AuthHandler) GenerateBearerToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, badRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, badRequest(err))
		return
	}

	username := strings.TrimSpace(req.Username)
	hash, known := h.cfg.Users[username]
	if !known || bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		h.logger.WarnContext(r.Context(), "Rejected login attempt", slog.String("username", username))
		respondError(w, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized))
		return
	}

	expiresAt := h.now().Add(h.cfg.TokenTTL)
	claims := jwt.MapClaims{
		"username": username,
		"sub":      username,
		"iat":      h.now().Unix(),
		"exp":      expiresAt.Unix(),
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to sign token", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: failed to sign token", apperrors.ErrInternalServer))
		return
	}

	h.logger.InfoContext(r.Context(), "Issued bearer token", slog.String("username", username), slog.Time("expiresAt", expiresAt))
	respondJSON(w, http.StatusOK, dto.TokenResponse{
		Token:     fmt.Sprintf("Bearer %s", tokenString),
		ExpiresAt: expiresAt,
	})
}
