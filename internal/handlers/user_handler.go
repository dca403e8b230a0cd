package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/handlers"
	"go.uber.org/zap"
)

// UserService is the interface that wraps methods for user administration.
type UserService interface {
	ListUsers(ctx context.Context, skip, limit int) ([]models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
	// Method UpdateUser apply a partial update and return the stored user.
	UpdateUser(ctx context.Context, id int, req *models.UpdateUserRequest) (*models.User, error)
	// Method DeleteUser remove user "id" together with the user's learner data.
	//
	// If "actorID" equals "id", a Validation error will be returned.
	DeleteUser(ctx context.Context, actorID, id int) error
}

// UserHandler handles HTTP requests for user administration
type UserHandler struct {
	handlers.BaseHandler
	service UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(svc UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterAdminRoutes registers all user administration routes
func (h *UserHandler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Get("/{id}", h.GetUser)
		r.Put("/{id}", h.UpdateUser)
		r.Delete("/{id}", h.DeleteUser)
	})
}

// ListUsers handles GET /api/v1/admin/users
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Number of users to skip (default: 0)"
// @Param limit query int false "Page size, at most 100 (default: 100)"
// @Success 200 {array} models.User
// @Failure 400 {object} handlers.ErrorResponse
// @Router /api/v1/admin/users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	skip, err := h.IntQuery(r, "skip", 0)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	limit, err := h.IntQuery(r, "limit", 0)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	users, err := h.service.ListUsers(r.Context(), skip, limit)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, users)
}

// GetUser handles GET /api/v1/admin/users/{id}
// @Summary Get user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/admin/users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// UpdateUser handles PUT /api/v1/admin/users/{id}
// @Summary Update user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body models.UpdateUserRequest true "Fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/admin/users/{id} [put]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	var req models.UpdateUserRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, &req)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/v1/admin/users/{id}
// @Summary Delete user
// @Description Removes the user with enrollments, progress and quiz responses
// @Tags admin
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204 "No Content"
// @Failure 400 {object} handlers.ErrorResponse "Cannot delete own account"
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(&h.BaseHandler, w, r)
	if !ok {
		return
	}
	id, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	if err := h.service.DeleteUser(r.Context(), principal.UserID, id); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
