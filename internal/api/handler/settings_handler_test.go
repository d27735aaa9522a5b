package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"wellness-center/internal/api/handler"
	"wellness-center/internal/domain/membership"
	"wellness-center/internal/domain/settings"
	"wellness-center/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetMembershipCriteria(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		svc := new(MockCriteriaService)
		h := handler.NewSettingsHandler(svc, testLogger)
		svc.On("GetCriteria", mock.Anything).Return(membership.DefaultCriteria(), nil).Once()

		rec := httptest.NewRecorder()
		h.GetMembershipCriteria(rec, httptest.NewRequest(http.MethodGet, "/settings/membership-criteria", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var doc map[string]map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Contains(t, doc, "vip")
		assert.Contains(t, doc["gold"], "annual_revenue_min")
	})

	t.Run("not configured is 404", func(t *testing.T) {
		svc := new(MockCriteriaService)
		h := handler.NewSettingsHandler(svc, testLogger)
		svc.On("GetCriteria", mock.Anything).Return(membership.Criteria{}, settings.ErrCriteriaNotConfigured).Once()

		rec := httptest.NewRecorder()
		h.GetMembershipCriteria(rec, httptest.NewRequest(http.MethodGet, "/settings/membership-criteria", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, decodeError(t, rec).Error.Message, "not configured")
	})

	t.Run("corrupt stored document is 500", func(t *testing.T) {
		svc := new(MockCriteriaService)
		h := handler.NewSettingsHandler(svc, testLogger)
		stored := fmt.Errorf("%w: stored membership criteria are invalid: unknown membership tier", apperrors.ErrInternalServer)
		svc.On("GetCriteria", mock.Anything).Return(membership.Criteria{}, stored).Once()

		rec := httptest.NewRecorder()
		h.GetMembershipCriteria(rec, httptest.NewRequest(http.MethodGet, "/settings/membership-criteria", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestGetDefaultCriteria(t *testing.T) {
	h := handler.NewSettingsHandler(new(MockCriteriaService), testLogger)

	rec := httptest.NewRecorder()
	h.GetDefaultCriteria(rec, httptest.NewRequest(http.MethodGet, "/settings/membership-criteria/defaults", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	expected, err := json.Marshal(membership.DefaultCriteria())
	require.NoError(t, err)
	assert.JSONEq(t, string(expected), rec.Body.String())
}

func TestUpdateMembershipCriteria(t *testing.T) {
	body := []byte(`{"gold":{"annual_revenue_min":9000000}}`)

	t.Run("stores the document", func(t *testing.T) {
		svc := new(MockCriteriaService)
		h := handler.NewSettingsHandler(svc, testLogger)
		svc.On("UpdateCriteria", mock.Anything, body).Return(membership.DefaultCriteria(), nil).Once()

		rec := httptest.NewRecorder()
		h.UpdateMembershipCriteria(rec, httptest.NewRequest(http.MethodPut, "/settings/membership-criteria", bytes.NewReader(body)))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("invalid document", func(t *testing.T) {
		svc := new(MockCriteriaService)
		h := handler.NewSettingsHandler(svc, testLogger)
		svc.On("UpdateCriteria", mock.Anything, mock.Anything).
			Return(membership.Criteria{}, apperrors.NewValidationError("diamond", "unknown membership tier")).Once()

		rec := httptest.NewRecorder()
		h.UpdateMembershipCriteria(rec, httptest.NewRequest(http.MethodPut, "/settings/membership-criteria", bytes.NewBufferString(`{"diamond":{}}`)))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "diamond", decodeError(t, rec).Error.Field)
	})

	t.Run("empty body", func(t *testing.T) {
		h := handler.NewSettingsHandler(new(MockCriteriaService), testLogger)

		rec := httptest.NewRecorder()
		h.UpdateMembershipCriteria(rec, httptest.NewRequest(http.MethodPut, "/settings/membership-criteria", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
