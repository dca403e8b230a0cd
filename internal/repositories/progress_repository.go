package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/apperrors"
)

const progressColumns = `id, user_id, lesson_id, completed, completion_date, time_spent, score, created_at, updated_at`

// upsertProgressQuery keeps completion monotonic. completion_date is assigned
// before completed so that it still sees the stored completion flag.
// Timestamps are bound from the caller's clock like every other learner record.
const upsertProgressQuery = `
	INSERT INTO user_progress (user_id, lesson_id, completed, completion_date, time_spent, score, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
		completion_date = IF(completed, completion_date, ?),
		completed = completed OR ?,
		time_spent = COALESCE(?, time_spent),
		score = COALESCE(?, score),
		updated_at = ?
`

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new user progress repository
func NewProgressRepository(db *sql.DB) *progressRepository {
	return &progressRepository{
		db: db,
	}
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanProgress(row interface{ Scan(...any) error }, p *models.UserProgress) error {
	var completionDate sql.NullTime
	var score sql.NullFloat64
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.LessonID,
		&p.Completed,
		&completionDate,
		&p.TimeSpent,
		&score,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return err
	}
	if completionDate.Valid {
		p.CompletionDate = &completionDate.Time
	}
	if score.Valid {
		p.Score = &score.Float64
	}
	return nil
}

func getProgress(ctx context.Context, q queryRower, userID, lessonID int) (*models.UserProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = ? AND lesson_id = ? LIMIT 1`

	var p models.UserProgress
	err := scanProgress(q.QueryRowContext(ctx, query, userID, lessonID), &p)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("progress not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	return &p, nil
}

// Upsert records progress for a (user, lesson) pair in a single statement and
// returns the stored row. Absent fields keep their stored value.
func (r *progressRepository) Upsert(ctx context.Context, userID, lessonID int, update models.ProgressUpdate, now time.Time) (*models.UserProgress, error) {
	completed := update.Completed != nil && *update.Completed
	var completionDate *time.Time
	if completed {
		completionDate = &now
	}
	timeSpent := 0
	if update.TimeSpent != nil {
		timeSpent = *update.TimeSpent
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, upsertProgressQuery,
		userID, lessonID, completed, completionDate, timeSpent, update.Score, now, now,
		completionDate, completed, update.TimeSpent, update.Score, now,
	)
	if isMissingParent(err) {
		return nil, apperrors.NotFound("lesson not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upsert progress: %w", err)
	}

	progress, err := getProgress(ctx, tx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return progress, nil
}

// ListByUserAndCourse retrieves a user's progress rows for the lessons of a course
func (r *progressRepository) ListByUserAndCourse(ctx context.Context, userID, courseID int) ([]models.UserProgress, error) {
	query := `
		SELECT up.id, up.user_id, up.lesson_id, up.completed, up.completion_date, up.time_spent, up.score, up.created_at, up.updated_at
		FROM user_progress up
		INNER JOIN lessons l ON l.id = up.lesson_id
		INNER JOIN modules m ON m.id = l.module_id
		WHERE up.user_id = ? AND m.course_id = ?
		ORDER BY m.order_index ASC, l.order_index ASC, l.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	progress := []models.UserProgress{}
	for rows.Next() {
		var p models.UserProgress
		if err := scanProgress(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		progress = append(progress, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return progress, nil
}

// CountCourseProgress returns the number of lessons in a course and how many of
// them the user has completed, both from live rows
func (r *progressRepository) CountCourseProgress(ctx context.Context, userID, courseID int) (total int, completed int, err error) {
	query := `
		SELECT COUNT(DISTINCT l.id),
			COUNT(DISTINCT CASE WHEN up.completed = TRUE THEN up.lesson_id END)
		FROM modules m
		INNER JOIN lessons l ON l.module_id = m.id
		LEFT JOIN user_progress up ON up.lesson_id = l.id AND up.user_id = ?
		WHERE m.course_id = ?
	`

	if err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&total, &completed); err != nil {
		return 0, 0, fmt.Errorf("failed to count course progress: %w", err)
	}

	return total, completed, nil
}
