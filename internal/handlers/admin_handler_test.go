package handlers

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/apperrors"
	"github.com/roadsafety/backend/libs/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAnalyticsRouter(svc AnalyticsService, authMw func(http.Handler) http.Handler) chi.Router {
	h := NewAnalyticsHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Use(authMw)
	h.RegisterAdminRoutes(r)
	return r
}

func TestAnalyticsHandler_Routes(t *testing.T) {
	paths := []string{
		"/admin/analytics/dashboard-stats",
		"/admin/analytics/user-analytics",
		"/admin/analytics/course-analytics",
		"/admin/analytics/quiz-analytics",
		"/admin/analytics/user-count",
	}

	tests := []struct {
		name           string
		authMw         func(http.Handler) http.Handler
		expectedStatus int
	}{
		{name: "admin", authMw: asPrincipal(admin), expectedStatus: http.StatusOK},
		{name: "learner", authMw: asPrincipal(learner), expectedStatus: http.StatusForbidden},
		{name: "anonymous", authMw: anonymous, expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAnalyticsRouter(&mockAnalyticsService{}, tt.authMw)
			for _, path := range paths {
				w := serve(t, r, http.MethodGet, path, "")
				assert.Equal(t, tt.expectedStatus, w.Code, path)
			}
		})
	}
}

func TestAnalyticsHandler_UserAnalyticsDays(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		err            error
		expectedStatus int
		expectedDays   int
	}{
		{name: "default", expectedStatus: http.StatusOK, expectedDays: 0},
		{name: "explicit", query: "?days=90", expectedStatus: http.StatusOK, expectedDays: 90},
		{name: "not a number", query: "?days=many", expectedStatus: http.StatusBadRequest},
		{name: "out of range", query: "?days=400", err: apperrors.Validation("days must be between 1 and 365"), expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAnalyticsService{err: tt.err}
			w := serve(t, newAnalyticsRouter(svc, asPrincipal(admin)), http.MethodGet, "/admin/analytics/user-analytics"+tt.query, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedDays, svc.lastDays)
			}
		})
	}
}

func TestAnalyticsHandler_DashboardStats(t *testing.T) {
	w := serve(t, newAnalyticsRouter(&mockAnalyticsService{}, asPrincipal(admin)), http.MethodGet, "/admin/analytics/dashboard-stats", "")

	require.Equal(t, http.StatusOK, w.Code)
	var stats models.DashboardStats
	decodeBody(t, w, &stats)
	assert.Equal(t, 2, stats.LiveSessions)
}

func newUserRouter(svc UserService, p auth.Principal) chi.Router {
	h := NewUserHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Use(asPrincipal(p))
	h.RegisterAdminRoutes(r)
	return r
}

func TestUserHandler_ListUsers(t *testing.T) {
	t.Run("paging", func(t *testing.T) {
		svc := &mockUserService{}
		w := serve(t, newUserRouter(svc, admin), http.MethodGet, "/admin/users?skip=20&limit=10", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 20, svc.lastSkip)
		assert.Equal(t, 10, svc.lastLimit)
	})

	t.Run("invalid limit", func(t *testing.T) {
		w := serve(t, newUserRouter(&mockUserService{}, admin), http.MethodGet, "/admin/users?limit=x", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_UpdateUser(t *testing.T) {
	svc := &mockUserService{}
	w := serve(t, newUserRouter(svc, admin), http.MethodPut, "/admin/users/2", `{"preferred_language":"french"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, svc.lastID)
	require.NotNil(t, svc.lastUpdate.PreferredLanguage)
	assert.Nil(t, svc.lastUpdate.IsAdmin)
	var user models.User
	decodeBody(t, w, &user)
	assert.Equal(t, "french", user.PreferredLanguage)
}

func TestUserHandler_DeleteUser(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		err            error
		expectedStatus int
	}{
		{name: "deleted", path: "/admin/users/2", expectedStatus: http.StatusNoContent},
		{name: "own account", path: "/admin/users/1", err: apperrors.Validation("cannot delete your own account"), expectedStatus: http.StatusBadRequest},
		{name: "unknown", path: "/admin/users/50", err: apperrors.NotFound("user not found"), expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockUserService{err: tt.err}
			w := serve(t, newUserRouter(svc, admin), http.MethodDelete, tt.path, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, admin.UserID, svc.lastActor)
		})
	}
}
