package services

import (
	"context"
	"fmt"

	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/apperrors"
	"go.uber.org/zap"
)

// UsersRepository is the interface that wraps methods for Users table data access
type UsersRepository interface {
	// Method GetByID retrieve a user by ID.
	//
	// If the user does not exist, a NotFound error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.User, error)
	// Method List retrieve a page of users ordered by ID.
	List(ctx context.Context, skip, limit int) ([]models.User, error)
	// Method Update apply the non-nil fields of "req" to a user.
	Update(ctx context.Context, id int, req *models.UpdateUserRequest) error
	// Method Delete remove a user. Enrollments, progress and responses of the user are removed with it.
	Delete(ctx context.Context, id int) error
}

type userService struct {
	repo   UsersRepository
	logger *zap.Logger
}

// NewUserService creates a new user administration service
func NewUserService(repo UsersRepository, logger *zap.Logger) *userService {
	return &userService{
		repo:   repo,
		logger: logger,
	}
}

// ListUsers retrieves a page of users
func (s *userService) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	if skip < 0 {
		return nil, apperrors.Validation("skip must not be negative")
	}

	users, err := s.repo.List(ctx, skip, normalizeLimit(limit))
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// GetUser retrieves a user by ID
func (s *userService) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateUser applies a partial administrative update and returns the stored user.
// The preferred language must be one the platform speaks.
func (s *userService) UpdateUser(ctx context.Context, id int, req *models.UpdateUserRequest) (*models.User, error) {
	if req.FullName != nil && isBlank(*req.FullName) {
		return nil, apperrors.Validation("full_name must not be empty")
	}
	if req.PreferredLanguage != nil && !isSupportedLanguage(*req.PreferredLanguage) {
		return nil, apperrors.Validation("unsupported language: %s", *req.PreferredLanguage)
	}

	if err := s.repo.Update(ctx, id, req); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User updated", zap.Int("user_id", id))
	return s.repo.GetByID(ctx, id)
}

// DeleteUser removes a user and the user's learner data.
// An administrator cannot delete the account it is acting with.
func (s *userService) DeleteUser(ctx context.Context, actorID, id int) error {
	if actorID == id {
		return apperrors.Validation("cannot delete your own account")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted", zap.Int("user_id", id), zap.Int("deleted_by", actorID))
	return nil
}
