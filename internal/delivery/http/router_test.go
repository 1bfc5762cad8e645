package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communityevents/internal/delivery/http/controllers"
	"communityevents/internal/delivery/http/helpers"
	"communityevents/internal/delivery/http/middleware"
	"communityevents/internal/domain"
)

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (string, error) {
	if token == "good" {
		return "user-1", nil
	}
	return "", domain.NewError(domain.ErrUnauthorized, "invalid token")
}

type stubAccounts struct{}

func (stubAccounts) GetByID(_ context.Context, id string) (*domain.User, error) {
	return &domain.User{ID: id, Active: true}, nil
}

type stubCategories struct{}

func (stubCategories) List(context.Context) ([]*domain.Category, error) {
	return []*domain.Category{{ID: "c-1", Name: "Tech"}}, nil
}

func (stubCategories) GetByID(context.Context, string) (*domain.Category, error) {
	return nil, domain.NewError(domain.ErrNotFound, "category not found")
}

func newTestHandler(health HealthCheck) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := NewRouter(Controllers{
		Auth:       controllers.NewAuthController(logger, nil),
		Category:   controllers.NewCategoryController(logger, stubCategories{}),
		Event:      controllers.NewEventController(logger, nil),
		Attendance: controllers.NewAttendanceController(logger, nil),
		Comment:    controllers.NewCommentController(logger, nil),
		Rating:     controllers.NewRatingController(logger, nil),
		Favorite:   controllers.NewFavoriteController(logger, nil),
		User:       controllers.NewUserController(logger, nil),
	}, stubVerifier{}, stubAccounts{}, health, logger)
	return Handler(mux, logger, []string{"https://app.example.com"})
}

func TestRouter(t *testing.T) {
	handler := newTestHandler(func(context.Context) error { return nil })
	const eventPath = "/api/events/0b0c52c4-5d8a-4a1e-9c43-3f7c9e1d2a10"

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
		wantCode   string
	}{
		{"public categories", http.MethodGet, "/api/categories", "", http.StatusOK, ""},
		{"category id is validated", http.MethodGet, "/api/categories/abc", "", http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"health", http.MethodGet, "/healthz", "", http.StatusOK, ""},
		{"create requires auth", http.MethodPost, "/api/events", "", http.StatusUnauthorized, helpers.ErrCodeUnauthorized},
		{"register requires auth", http.MethodPost, eventPath + "/attendance", "", http.StatusUnauthorized, helpers.ErrCodeUnauthorized},
		{"check-in requires auth", http.MethodPost, eventPath + "/checkin", "", http.StatusUnauthorized, helpers.ErrCodeUnauthorized},
		{"profile requires auth", http.MethodGet, "/api/users/me", "", http.StatusUnauthorized, helpers.ErrCodeUnauthorized},
		{"optional auth still rejects a bad token", http.MethodGet, eventPath, "bad", http.StatusUnauthorized, helpers.ErrCodeUnauthorized},
		{"authenticated request reaches the handler", http.MethodGet, "/api/events/not-a-uuid/my-ticket", "good", http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"unknown route", http.MethodGet, "/api/nope", "", http.StatusNotFound, ""},
		{"wrong method", http.MethodPatch, eventPath, "", http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "http://test"+tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
			if tt.wantCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
			}
		})
	}
}

func TestRouter_HealthFailure(t *testing.T) {
	handler := newTestHandler(func(context.Context) error { return errors.New("dial tcp: connection refused") })
	req := httptest.NewRequest(http.MethodGet, "http://test/healthz", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	assert.Equal(t, helpers.ErrCodeUnavailable, envelope.Error.Code)
}
