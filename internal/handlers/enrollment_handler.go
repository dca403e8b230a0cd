package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/handlers"
	"go.uber.org/zap"
)

// EnrollmentService is the interface that wraps methods for enrollment and lesson progress business logic.
type EnrollmentService interface {
	// Method Enroll create the enrollment of a user in an active course.
	//
	// If the user is already enrolled, a Conflict error will be returned together with "nil" value.
	// If the course does not exist or is inactive, a NotFound error will be returned.
	Enroll(ctx context.Context, userID, courseID int) (*models.Enrollment, error)
	ListEnrollments(ctx context.Context, userID int) ([]models.Enrollment, error)
	// Method RecordProgress create or update the progress of a user in a lesson.
	//
	// A completed lesson stays completed and its completion date is kept.
	RecordProgress(ctx context.Context, userID, lessonID int, update models.ProgressUpdate) (*models.UserProgress, error)
	// Method CourseProgress compute the live completion state of an enrollment.
	//
	// If the user is not enrolled in the course, a NotFound error will be returned together with "nil" value.
	CourseProgress(ctx context.Context, userID, courseID int) (*models.CourseProgress, error)
	ListProgress(ctx context.Context, userID, courseID int) ([]models.UserProgress, error)
}

// EnrollmentHandler handles HTTP requests for enrollments and progress
type EnrollmentHandler struct {
	handlers.BaseHandler
	service EnrollmentService
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(svc EnrollmentService, logger *zap.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all enrollment handler routes behind authMiddleware
func (h *EnrollmentHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/courses/{id}/enroll", h.EnrollInCourse)
		r.Get("/courses/{id}/progress", h.CourseProgress)
		r.Get("/courses/{id}/lesson-progress", h.ListProgress)
		r.Post("/enrollments", h.Enroll)
		r.Get("/enrollments", h.ListEnrollments)
		r.Post("/lessons/{id}/progress", h.RecordProgress)
	})
}

// userID extracts the authenticated user from the request context
func (h *EnrollmentHandler) userID(w http.ResponseWriter, r *http.Request) (int, bool) {
	principal, ok := requirePrincipal(&h.BaseHandler, w, r)
	return principal.UserID, ok
}

func (h *EnrollmentHandler) enroll(w http.ResponseWriter, r *http.Request, userID, courseID int) {
	enrollment, err := h.service.Enroll(r.Context(), userID, courseID)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, enrollment)
}

// EnrollInCourse handles POST /api/v1/courses/{id}/enroll
// @Summary Enroll in course
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 201 {object} models.Enrollment
// @Failure 401 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse "Course not found or inactive"
// @Failure 409 {object} handlers.ErrorResponse "Already enrolled"
// @Router /api/v1/courses/{id}/enroll [post]
func (h *EnrollmentHandler) EnrollInCourse(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	courseID, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.enroll(w, r, userID, courseID)
}

// Enroll handles POST /api/v1/enrollments
// @Summary Enroll in course
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.EnrollRequest true "Course to enroll in"
// @Success 201 {object} models.Enrollment
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 409 {object} handlers.ErrorResponse
// @Router /api/v1/enrollments [post]
func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req models.EnrollRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.enroll(w, r, userID, req.CourseID)
}

// ListEnrollments handles GET /api/v1/enrollments
// @Summary List my enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Enrollment
// @Failure 401 {object} handlers.ErrorResponse
// @Router /api/v1/enrollments [get]
func (h *EnrollmentHandler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	enrollments, err := h.service.ListEnrollments(r.Context(), userID)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, enrollments)
}

// RecordProgress handles POST /api/v1/lessons/{id}/progress
// @Summary Record lesson progress
// @Description Creates or updates the caller's progress in a lesson. Completion is never undone.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param request body models.ProgressUpdate true "Progress"
// @Success 200 {object} models.UserProgress
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/lessons/{id}/progress [post]
func (h *EnrollmentHandler) RecordProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	lessonID, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	var update models.ProgressUpdate
	if err := h.DecodeJSON(r, &update); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	progress, err := h.service.RecordProgress(r.Context(), userID, lessonID, update)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// CourseProgress handles GET /api/v1/courses/{id}/progress
// @Summary Get course progress
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} models.CourseProgress
// @Failure 404 {object} handlers.ErrorResponse "Not enrolled"
// @Router /api/v1/courses/{id}/progress [get]
func (h *EnrollmentHandler) CourseProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	courseID, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	progress, err := h.service.CourseProgress(r.Context(), userID, courseID)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// ListProgress handles GET /api/v1/courses/{id}/lesson-progress
// @Summary List lesson progress in a course
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {array} models.UserProgress
// @Failure 401 {object} handlers.ErrorResponse
// @Router /api/v1/courses/{id}/lesson-progress [get]
func (h *EnrollmentHandler) ListProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	courseID, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	progress, err := h.service.ListProgress(r.Context(), userID, courseID)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}
