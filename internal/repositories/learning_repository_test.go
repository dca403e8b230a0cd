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

var (
	enrollmentTestColumns = []string{"id", "user_id", "course_id", "enrolled_at", "completed_at", "progress_percentage", "certificate_issued", "certificate_url"}
	progressTestColumns   = []string{"id", "user_id", "lesson_id", "completed", "completion_date", "time_spent", "score", "created_at", "updated_at"}
	responseTestColumns   = []string{"id", "question_id", "user_id", "user_answer_index", "is_correct", "response_time", "created_at"}
)

func TestEnrollmentRepository_Create(t *testing.T) {
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
				mock.ExpectExec(`INSERT INTO course_enrollments`).
					WithArgs(1, 5, sqlmock.AnyArg(), 0.0).
					WillReturnResult(sqlmock.NewResult(30, 1))
			},
		},
		{
			name: "duplicate enrollment",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO course_enrollments`).
					WithArgs(1, 5, sqlmock.AnyArg(), 0.0).
					WillReturnError(duplicateEntryErr)
			},
			expectedError: true,
			errorKind:     apperrors.KindConflict,
		},
		{
			name: "course missing",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO course_enrollments`).
					WillReturnError(missingParentErr)
			},
			expectedError: true,
			errorKind:     apperrors.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupTestDB(t)
			defer cleanup()
			repo := NewEnrollmentRepository(db)

			tt.setupMock(mock)

			e := &models.Enrollment{UserID: 1, CourseID: 5, EnrolledAt: now}
			err := repo.Create(context.Background(), e)

			assertRepoError(t, err, tt.expectedError, "", tt.errorKind)
			if !tt.expectedError {
				assert.Equal(t, 30, e.ID)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEnrollmentRepository_ExistsAndGet(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM course_enrollments WHERE user_id = \? AND course_id = \?\)`).
		WithArgs(1, 5).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT .* FROM course_enrollments WHERE user_id = \? AND course_id = \?`).
		WithArgs(1, 5).
		WillReturnRows(sqlmock.NewRows(enrollmentTestColumns).AddRow(30, 1, 5, now, now, 100.0, false, nil))
	mock.ExpectQuery(`SELECT .* FROM course_enrollments WHERE user_id = \? AND course_id = \?`).
		WithArgs(1, 6).
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.Exists(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.True(t, exists)

	e, err := repo.GetByUserAndCourse(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 100.0, e.ProgressPercentage)
	assert.NotNil(t, e.CompletedAt)
	assert.Nil(t, e.CertificateURL)

	_, err = repo.GetByUserAndCourse(context.Background(), 1, 6)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepository_ListAndSnapshot(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM course_enrollments WHERE user_id = \? ORDER BY enrolled_at DESC, id DESC`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(enrollmentTestColumns).
			AddRow(31, 1, 6, now, nil, 0.0, false, nil).
			AddRow(30, 1, 5, now.Add(-time.Hour), nil, 50.0, false, nil))
	mock.ExpectExec(`UPDATE course_enrollments SET progress_percentage = \?, completed_at = COALESCE\(completed_at, \?\) WHERE id = \?`).
		WithArgs(50.0, nil, 30).
		WillReturnResult(sqlmock.NewResult(0, 1))

	enrollments, err := repo.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	assert.Equal(t, 31, enrollments[0].ID)

	assert.NoError(t, repo.UpdateProgressSnapshot(context.Background(), 30, 50.0, nil))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepository_Upsert(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	completed := true
	timeSpent := 120

	tests := []struct {
		name          string
		update        models.ProgressUpdate
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		errorKind     apperrors.Kind
	}{
		{
			name:   "completion sets date",
			update: models.ProgressUpdate{Completed: &completed, TimeSpent: &timeSpent},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO user_progress .* ON DUPLICATE KEY UPDATE`).
					WithArgs(1, 7, true, now, 120, nil, now, now, now, true, 120, nil, now).
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectQuery(`SELECT .* FROM user_progress WHERE user_id = \? AND lesson_id = \?`).
					WithArgs(1, 7).
					WillReturnRows(sqlmock.NewRows(progressTestColumns).
						AddRow(1, 1, 7, true, now, 120, nil, now, now))
				mock.ExpectCommit()
			},
		},
		{
			name:   "absent fields keep stored values",
			update: models.ProgressUpdate{},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO user_progress .* ON DUPLICATE KEY UPDATE`).
					WithArgs(1, 7, false, nil, 0, nil, now, now, nil, false, nil, nil, now).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(`SELECT .* FROM user_progress WHERE user_id = \? AND lesson_id = \?`).
					WithArgs(1, 7).
					WillReturnRows(sqlmock.NewRows(progressTestColumns).
						AddRow(1, 1, 7, true, now, 120, 88.5, now, now))
				mock.ExpectCommit()
			},
		},
		{
			name:   "lesson missing",
			update: models.ProgressUpdate{Completed: &completed},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO user_progress`).WillReturnError(missingParentErr)
				mock.ExpectRollback()
			},
			expectedError: true,
			errorKind:     apperrors.KindNotFound,
		},
		{
			name:   "begin error",
			update: models.ProgressUpdate{},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errDatabase)
			},
			expectedError: true,
			errorKind:     apperrors.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupTestDB(t)
			defer cleanup()
			repo := NewProgressRepository(db)

			tt.setupMock(mock)

			progress, err := repo.Upsert(context.Background(), 1, 7, tt.update, now)

			assertRepoError(t, err, tt.expectedError, "", tt.errorKind)
			if !tt.expectedError {
				assert.True(t, progress.Completed)
				require.NotNil(t, progress.CompletionDate)
				assert.Equal(t, 120, progress.TimeSpent)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProgressRepository_CountCourseProgress(t *testing.T) {
	tests := []struct {
		name              string
		setupMock         func(sqlmock.Sqlmock)
		expectedTotal     int
		expectedCompleted int
		expectedError     bool
	}{
		{
			name: "two lessons one completed",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT\(DISTINCT l.id\)`).
					WithArgs(1, 5).
					WillReturnRows(sqlmock.NewRows([]string{"total", "completed"}).AddRow(2, 1))
			},
			expectedTotal:     2,
			expectedCompleted: 1,
		},
		{
			name: "query error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT\(DISTINCT l.id\)`).WillReturnError(errDatabase)
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupTestDB(t)
			defer cleanup()
			repo := NewProgressRepository(db)

			tt.setupMock(mock)

			total, completed, err := repo.CountCourseProgress(context.Background(), 1, 5)

			assertRepoError(t, err, tt.expectedError, "failed to count course progress", "")
			assert.Equal(t, tt.expectedTotal, total)
			assert.Equal(t, tt.expectedCompleted, completed)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProgressRepository_ListByUserAndCourse(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewProgressRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM user_progress up .* WHERE up.user_id = \? AND m.course_id = \?`).
		WithArgs(1, 5).
		WillReturnRows(sqlmock.NewRows(progressTestColumns).
			AddRow(1, 1, 7, true, now, 60, 90.0, now, now).
			AddRow(2, 1, 8, false, nil, 10, nil, now, now))

	progress, err := repo.ListByUserAndCourse(context.Background(), 1, 5)
	require.NoError(t, err)
	require.Len(t, progress, 2)
	require.NotNil(t, progress[0].Score)
	assert.Equal(t, 90.0, *progress[0].Score)
	assert.Nil(t, progress[1].CompletionDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResponseRepository_Create(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewResponseRepository(db)
	now := time.Now()

	mock.ExpectExec(`INSERT INTO quiz_responses`).
		WithArgs(3, 1, 1, true, nil, now).
		WillReturnResult(sqlmock.NewResult(100, 1))
	mock.ExpectExec(`INSERT INTO quiz_responses`).
		WithArgs(3, 1, 1, true, nil, now).
		WillReturnResult(sqlmock.NewResult(101, 1))

	first := &models.QuizResponse{QuestionID: 3, UserID: 1, UserAnswerIndex: 1, IsCorrect: true, CreatedAt: now}
	second := &models.QuizResponse{QuestionID: 3, UserID: 1, UserAnswerIndex: 1, IsCorrect: true, CreatedAt: now}

	require.NoError(t, repo.Create(context.Background(), first))
	require.NoError(t, repo.Create(context.Background(), second))
	assert.NotEqual(t, first.ID, second.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResponseRepository_CreateBatch(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		errorKind     apperrors.Kind
	}{
		{
			name: "all inserted in one transaction",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO quiz_responses`).WithArgs(3, 1, 1, true, nil, now).WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec(`INSERT INTO quiz_responses`).WithArgs(4, 1, 0, false, nil, now).WillReturnResult(sqlmock.NewResult(2, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "failure rolls back",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO quiz_responses`).WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec(`INSERT INTO quiz_responses`).WillReturnError(errDatabase)
				mock.ExpectRollback()
			},
			expectedError: true,
			errorKind:     apperrors.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupTestDB(t)
			defer cleanup()
			repo := NewResponseRepository(db)

			tt.setupMock(mock)

			responses := []*models.QuizResponse{
				{QuestionID: 3, UserID: 1, UserAnswerIndex: 1, IsCorrect: true, CreatedAt: now},
				{QuestionID: 4, UserID: 1, UserAnswerIndex: 0, IsCorrect: false, CreatedAt: now},
			}
			err := repo.CreateBatch(context.Background(), responses)

			assertRepoError(t, err, tt.expectedError, "", tt.errorKind)
			if !tt.expectedError {
				assert.Equal(t, 1, responses[0].ID)
				assert.Equal(t, 2, responses[1].ID)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestResponseRepository_ListAndCount(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewResponseRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM quiz_responses qr .* WHERE qr.user_id = \? AND qq.quiz_id = \?`).
		WithArgs(1, 3).
		WillReturnRows(sqlmock.NewRows(responseTestColumns).
			AddRow(1, 10, 1, 1, true, 4.5, now).
			AddRow(2, 11, 1, 2, false, nil, now))
	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(is_correct\), 0\) FROM quiz_responses WHERE question_id = \?`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"total", "correct"}).AddRow(4, 1))

	responses, err := repo.ListByUserAndQuiz(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, responses, 2)
	require.NotNil(t, responses[0].ResponseTime)
	assert.Nil(t, responses[1].ResponseTime)

	total, correct, err := repo.CountForQuestion(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, 1, correct)

	assert.NoError(t, mock.ExpectationsWereMet())
}
