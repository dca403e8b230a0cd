package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userTestColumns = []string{"id", "email", "username", "full_name", "preferred_language", "is_active", "is_admin", "created_at", "updated_at"}

func setupUserTestRepository(t *testing.T) (*userRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, cleanup := setupTestDB(t)
	return NewUserRepository(db), mock, cleanup
}

func TestUserRepository_GetByID(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		errorKind     apperrors.Kind
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM users WHERE id = \?`).
					WithArgs(1).
					WillReturnRows(sqlmock.NewRows(userTestColumns).AddRow(1, "a@b.rw", "amina", "Amina U.", "kinyarwanda", true, false, now, now))
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM users WHERE id = \?`).WithArgs(1).WillReturnError(sql.ErrNoRows)
			},
			expectedError: true,
			errorKind:     apperrors.KindNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM users WHERE id = \?`).WithArgs(1).WillReturnError(errDatabase)
			},
			expectedError: true,
			errorKind:     apperrors.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			user, err := repo.GetByID(context.Background(), 1)

			assertRepoError(t, err, tt.expectedError, "", tt.errorKind)
			if !tt.expectedError {
				assert.Equal(t, "amina", user.Username)
				assert.Equal(t, "kinyarwanda", user.PreferredLanguage)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_ListUpdateDelete(t *testing.T) {
	repo, mock, cleanup := setupUserTestRepository(t)
	defer cleanup()
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM users ORDER BY id LIMIT \? OFFSET \?`).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows(userTestColumns).
			AddRow(1, "a@b.rw", "amina", "", "english", true, true, now, now).
			AddRow(2, "c@d.rw", "jean", "", "french", false, false, now, now))
	mock.ExpectExec(`UPDATE users SET is_active = \?, is_admin = \? WHERE id = \?`).
		WithArgs(false, true, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM users WHERE id = \?`).
		WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM users WHERE id = \?`).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	users, err := repo.List(context.Background(), 0, 50)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	active, admin := false, true
	require.NoError(t, repo.Update(context.Background(), 2, &models.UpdateUserRequest{IsActive: &active, IsAdmin: &admin}))

	err = repo.Update(context.Background(), 2, &models.UpdateUserRequest{})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	require.NoError(t, repo.Delete(context.Background(), 2))

	err = repo.Delete(context.Background(), 3)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}
