package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/auth"
	"github.com/roadsafety/backend/libs/handlers"
	"go.uber.org/zap"
)

// AnalyticsService is the interface that wraps the admin reporting queries.
//
// Every method checks that "p" is an administrator and returns a Forbidden error otherwise.
type AnalyticsService interface {
	DashboardStats(ctx context.Context, p auth.Principal) (*models.DashboardStats, error)
	// Method UserAnalytics describe registrations of the last "days" days. Zero means 30, the maximum is 365.
	UserAnalytics(ctx context.Context, p auth.Principal, days int) (*models.UserAnalytics, error)
	CourseAnalytics(ctx context.Context, p auth.Principal) (*models.CourseAnalytics, error)
	QuizAnalytics(ctx context.Context, p auth.Principal) (*models.QuizAnalytics, error)
	UserCount(ctx context.Context, p auth.Principal) (*models.UserCount, error)
}

// AnalyticsHandler handles HTTP requests for admin analytics
type AnalyticsHandler struct {
	handlers.BaseHandler
	service AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(svc AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterAdminRoutes registers all analytics routes
func (h *AnalyticsHandler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/admin/analytics", func(r chi.Router) {
		r.Get("/dashboard-stats", h.DashboardStats)
		r.Get("/user-analytics", h.UserAnalytics)
		r.Get("/course-analytics", h.CourseAnalytics)
		r.Get("/quiz-analytics", h.QuizAnalytics)
		r.Get("/user-count", h.UserCount)
	})
}

// DashboardStats handles GET /api/v1/admin/analytics/dashboard-stats
// @Summary Dashboard statistics
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DashboardStats
// @Failure 403 {object} handlers.ErrorResponse
// @Router /api/v1/admin/analytics/dashboard-stats [get]
func (h *AnalyticsHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	stats, err := h.service.DashboardStats(r.Context(), principal)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, stats)
}

// UserAnalytics handles GET /api/v1/admin/analytics/user-analytics
// @Summary User analytics
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param days query int false "Registration trend window in days, 1 to 365 (default: 30)"
// @Success 200 {object} models.UserAnalytics
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse
// @Router /api/v1/admin/analytics/user-analytics [get]
func (h *AnalyticsHandler) UserAnalytics(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(&h.BaseHandler, w, r)
	if !ok {
		return
	}
	days, err := h.IntQuery(r, "days", 0)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	result, err := h.service.UserAnalytics(r.Context(), principal, days)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// CourseAnalytics handles GET /api/v1/admin/analytics/course-analytics
// @Summary Course analytics
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.CourseAnalytics
// @Failure 403 {object} handlers.ErrorResponse
// @Router /api/v1/admin/analytics/course-analytics [get]
func (h *AnalyticsHandler) CourseAnalytics(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	result, err := h.service.CourseAnalytics(r.Context(), principal)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// QuizAnalytics handles GET /api/v1/admin/analytics/quiz-analytics
// @Summary Quiz analytics
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.QuizAnalytics
// @Failure 403 {object} handlers.ErrorResponse
// @Router /api/v1/admin/analytics/quiz-analytics [get]
func (h *AnalyticsHandler) QuizAnalytics(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	result, err := h.service.QuizAnalytics(r.Context(), principal)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// UserCount handles GET /api/v1/admin/analytics/user-count
// @Summary User counters
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserCount
// @Failure 403 {object} handlers.ErrorResponse
// @Router /api/v1/admin/analytics/user-count [get]
func (h *AnalyticsHandler) UserCount(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	count, err := h.service.UserCount(r.Context(), principal)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, count)
}
