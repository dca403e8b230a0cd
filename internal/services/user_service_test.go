package services

import (
	"context"
	"errors"
	"testing"

	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockUserRepository struct {
	users     map[int]*models.User
	lastSkip  int
	lastLimit int
	deleted   []int
	err       error
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepository) List(ctx context.Context, skip, limit int) ([]models.User, error) {
	m.lastSkip, m.lastLimit = skip, limit
	if m.err != nil {
		return nil, m.err
	}
	var users []models.User
	for id := 1; id <= len(m.users); id++ {
		if u, ok := m.users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (m *mockUserRepository) Update(ctx context.Context, id int, req *models.UpdateUserRequest) error {
	if m.err != nil {
		return m.err
	}
	user, ok := m.users[id]
	if !ok {
		return apperrors.NotFound("user not found")
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.PreferredLanguage != nil {
		user.PreferredLanguage = *req.PreferredLanguage
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id int) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[id]; !ok {
		return apperrors.NotFound("user not found")
	}
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func newUserFixture() *mockUserRepository {
	return &mockUserRepository{users: map[int]*models.User{
		1: {ID: 1, Email: "admin@example.com", Username: "admin", FullName: "Admin", PreferredLanguage: "english", IsActive: true, IsAdmin: true},
		2: {ID: 2, Email: "learner@example.com", Username: "learner", FullName: "Learner", PreferredLanguage: "kinyarwanda", IsActive: true},
	}}
}

func TestNewUserService(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	repo := &mockUserRepository{}

	svc := NewUserService(repo, logger)

	assert.NotNil(t, svc)
	assert.Equal(t, repo, svc.repo)
	assert.Equal(t, logger, svc.logger)
}

func TestUserService_ListUsers(t *testing.T) {
	tests := []struct {
		name          string
		skip          int
		limit         int
		expectedLimit int
		expectedError bool
	}{
		{name: "default limit", skip: 0, limit: 0, expectedLimit: 100},
		{name: "explicit limit", skip: 1, limit: 10, expectedLimit: 10},
		{name: "limit capped", skip: 0, limit: 1000, expectedLimit: 100},
		{name: "negative skip", skip: -1, limit: 10, expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newUserFixture()
			svc := NewUserService(repo, zap.NewNop())

			users, err := svc.ListUsers(context.Background(), tt.skip, tt.limit)

			if tt.expectedError {
				assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Len(t, users, 2)
			assert.Equal(t, tt.skip, repo.lastSkip)
			assert.Equal(t, tt.expectedLimit, repo.lastLimit)
		})
	}
}

func TestUserService_ListUsersError(t *testing.T) {
	svc := NewUserService(&mockUserRepository{err: errors.New("database error")}, zap.NewNop())

	users, err := svc.ListUsers(context.Background(), 0, 10)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list users")
	assert.Nil(t, users)
}

func TestUserService_GetUser(t *testing.T) {
	svc := NewUserService(newUserFixture(), zap.NewNop())

	user, err := svc.GetUser(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "learner", user.Username)

	_, err = svc.GetUser(context.Background(), 99)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestUserService_UpdateUser(t *testing.T) {
	tests := []struct {
		name      string
		id        int
		req       *models.UpdateUserRequest
		errorKind apperrors.Kind
		check     func(t *testing.T, user *models.User)
	}{
		{
			name: "change language",
			id:   2,
			req:  &models.UpdateUserRequest{PreferredLanguage: strPtr("french")},
			check: func(t *testing.T, user *models.User) {
				assert.Equal(t, "french", user.PreferredLanguage)
				assert.Equal(t, "Learner", user.FullName)
			},
		},
		{
			name: "promote and deactivate",
			id:   2,
			req:  &models.UpdateUserRequest{IsAdmin: boolPtr(true), IsActive: boolPtr(false)},
			check: func(t *testing.T, user *models.User) {
				assert.True(t, user.IsAdmin)
				assert.False(t, user.IsActive)
			},
		},
		{
			name:      "blank full name",
			id:        2,
			req:       &models.UpdateUserRequest{FullName: strPtr("  ")},
			errorKind: apperrors.KindValidation,
		},
		{
			name:      "unsupported language",
			id:        2,
			req:       &models.UpdateUserRequest{PreferredLanguage: strPtr("klingon")},
			errorKind: apperrors.KindValidation,
		},
		{
			name:      "unknown user",
			id:        99,
			req:       &models.UpdateUserRequest{FullName: strPtr("Nobody")},
			errorKind: apperrors.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(newUserFixture(), zap.NewNop())

			user, err := svc.UpdateUser(context.Background(), tt.id, tt.req)

			if tt.errorKind != "" {
				assert.Equal(t, tt.errorKind, apperrors.KindOf(err))
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			tt.check(t, user)
		})
	}
}

func TestUserService_DeleteUser(t *testing.T) {
	repo := newUserFixture()
	svc := NewUserService(repo, zap.NewNop())

	err := svc.DeleteUser(context.Background(), 1, 1)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Empty(t, repo.deleted)

	err = svc.DeleteUser(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, repo.deleted)

	err = svc.DeleteUser(context.Background(), 1, 2)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
