package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"personaforge/internal/anonymize/handler/mocks"
	"personaforge/internal/anonymize/models"
	platformMetrics "personaforge/internal/platform/metrics"
	"personaforge/internal/platform/middleware"
	dErrors "personaforge/pkg/domain-errors"
	"personaforge/pkg/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// staticValidator accepts exactly one token.
type staticValidator struct {
	token  string
	claims middleware.JWTClaims
}

func (v staticValidator) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	if tokenString != v.token {
		return nil, errors.New("invalid token")
	}
	claims := v.claims
	return &claims, nil
}

func TestHandler_handleAnonymize_HappyPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	request := models.AnonymizeRequest{
		Domain:       "healthcare",
		PrivacyLevel: models.PrivacyMedium,
		TargetRisk:   0.05,
		People:       []models.Person{{PersonID: "person-1"}},
	}
	job := models.Job{ID: "job-1", Status: models.JobStatusCompleted}

	mockService := mocks.NewMockService(ctrl)
	mockService.EXPECT().
		Run(gomock.Any(), request, "user123").
		Return(job, nil).
		Times(1)

	h := New(mockService, discardLogger(), &platformMetrics.Metrics{}, nil)

	body, err := json.Marshal(request)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/v1/anonymize", bytes.NewReader(body))
	req = testutil.WithUserID(req, "user123")

	w := httptest.NewRecorder()
	h.handleAnonymize(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var got models.Job
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "job-1", got.ID)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
}

func TestHandler_handleAnonymize_InvalidBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := New(mocks.NewMockService(ctrl), discardLogger(), &platformMetrics.Metrics{}, nil)

	req := httptest.NewRequest("POST", "/v1/anonymize", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	h.handleAnonymize(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), string(dErrors.CodeBadRequest))
}

func TestHandler_handleAnonymize_EmptyDataset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockService(ctrl)
	mockService.EXPECT().
		Run(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.Job{}, dErrors.New(dErrors.CodeBadRequest, "no people provided")).
		Times(1)

	h := New(mockService, discardLogger(), &platformMetrics.Metrics{}, nil)

	req := httptest.NewRequest("POST", "/v1/anonymize", strings.NewReader(`{"people":[]}`))
	w := httptest.NewRecorder()
	h.handleAnonymize(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no people provided")
}

func TestHandler_handleAnonymize_ServiceFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockService(ctrl)
	mockService.EXPECT().
		Run(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.Job{}, errors.New("database down")).
		Times(1)

	h := New(mockService, discardLogger(), &platformMetrics.Metrics{}, nil)

	req := httptest.NewRequest("POST", "/v1/anonymize", strings.NewReader(`{"people":[{"person_id":"p1"}]}`))
	w := httptest.NewRecorder()
	h.handleAnonymize(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "database down")
}

func TestHandler_handleGetJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockService(ctrl)
	mockService.EXPECT().
		Get(gomock.Any(), "job-1").
		Return(models.Job{ID: "job-1"}, nil).
		Times(1)

	h := New(mockService, discardLogger(), &platformMetrics.Metrics{}, nil)

	req := httptest.NewRequest("GET", "/v1/jobs/job-1", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("jobID", "job-1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	w := httptest.NewRecorder()
	h.handleGetJob(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Job
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "job-1", got.ID)
}

func TestHandler_handleGetJob_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockService(ctrl)
	mockService.EXPECT().
		Get(gomock.Any(), "missing").
		Return(models.Job{}, dErrors.New(dErrors.CodeNotFound, "job not found")).
		Times(1)

	h := New(mockService, discardLogger(), &platformMetrics.Metrics{}, nil)

	req := httptest.NewRequest("GET", "/v1/jobs/missing", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("jobID", "missing")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	w := httptest.NewRecorder()
	h.handleGetJob(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_handleListJobs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockService(ctrl)
	mockService.EXPECT().
		List(gomock.Any()).
		Return([]models.Job{{ID: "job-2"}, {ID: "job-1"}}, nil).
		Times(1)

	h := New(mockService, discardLogger(), &platformMetrics.Metrics{}, nil)

	req := httptest.NewRequest("GET", "/v1/jobs", nil)
	w := httptest.NewRecorder()
	h.handleListJobs(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Jobs []models.Job `json:"jobs"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Len(t, got.Jobs, 2)
	assert.Equal(t, "job-2", got.Jobs[0].ID)
}

func TestHandler_Register_RequiresAuth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockService(ctrl)
	mockService.EXPECT().
		List(gomock.Any()).
		Return(nil, nil).
		AnyTimes()

	validator := staticValidator{
		token:  "good-token",
		claims: middleware.JWTClaims{UserID: "user123"},
	}
	h := New(mockService, discardLogger(), platformTestMetrics, validator)

	router := chi.NewRouter()
	h.Register(router)

	t.Run("missing token is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/jobs", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/jobs", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token passes through", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/jobs", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

// platformTestMetrics is shared because promauto registers globally.
var platformTestMetrics = platformMetrics.New()
