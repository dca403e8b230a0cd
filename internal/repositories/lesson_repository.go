package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/apperrors"
)

const lessonColumns = `id, module_id, title, content, language, order_index, lesson_type, media_url, estimated_duration, status, created_at, updated_at`

type lessonRepository struct {
	db *sql.DB
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *sql.DB) *lessonRepository {
	return &lessonRepository{
		db: db,
	}
}

func scanLesson(row interface{ Scan(...any) error }, lesson *models.Lesson) error {
	var mediaURL sql.NullString
	var duration sql.NullInt64
	if err := row.Scan(
		&lesson.ID,
		&lesson.ModuleID,
		&lesson.Title,
		&lesson.Content,
		&lesson.Language,
		&lesson.OrderIndex,
		&lesson.LessonType,
		&mediaURL,
		&duration,
		&lesson.Status,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	); err != nil {
		return err
	}
	if mediaURL.Valid {
		lesson.MediaURL = &mediaURL.String
	}
	if duration.Valid {
		d := int(duration.Int64)
		lesson.EstimatedDuration = &d
	}
	return nil
}

// GetByID retrieves a lesson by its ID regardless of status
func (r *lessonRepository) GetByID(ctx context.Context, id int) (*models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = ? LIMIT 1`

	var lesson models.Lesson
	err := scanLesson(r.db.QueryRowContext(ctx, query, id), &lesson)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("lesson not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson by id: %w", err)
	}

	return &lesson, nil
}

// ListByModule retrieves the lessons of a module ordered by order_index, then id
func (r *lessonRepository) ListByModule(ctx context.Context, moduleID int, includeInactive bool) ([]models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE module_id = ?`
	args := []any{moduleID}
	if !includeInactive {
		query += ` AND status = ?`
		args = append(args, models.StatusActive)
	}
	query += ` ORDER BY order_index ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	lessons := []models.Lesson{}
	for rows.Next() {
		var lesson models.Lesson
		if err := scanLesson(rows, &lesson); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return lessons, nil
}

// Create inserts a new lesson and sets its ID
func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	query := `
		INSERT INTO lessons (module_id, title, content, language, order_index, lesson_type, media_url, estimated_duration, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		lesson.ModuleID,
		lesson.Title,
		lesson.Content,
		lesson.Language,
		lesson.OrderIndex,
		lesson.LessonType,
		lesson.MediaURL,
		lesson.EstimatedDuration,
		lesson.Status,
	)
	if isMissingParent(err) {
		return apperrors.NotFound("module not found")
	}
	if err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	lesson.ID = int(id)

	return nil
}

// Update applies the non-nil fields of req to a lesson
func (r *lessonRepository) Update(ctx context.Context, id int, req *models.UpdateLessonRequest) error {
	var b updateBuilder
	if req.Title != nil {
		b.set("title", *req.Title)
	}
	if req.Content != nil {
		b.set("content", *req.Content)
	}
	if req.Language != nil {
		b.set("language", *req.Language)
	}
	if req.OrderIndex != nil {
		b.set("order_index", *req.OrderIndex)
	}
	if req.LessonType != nil {
		b.set("lesson_type", *req.LessonType)
	}
	if req.MediaURL != nil {
		b.set("media_url", *req.MediaURL)
	}
	if req.EstimatedDuration != nil {
		b.set("estimated_duration", *req.EstimatedDuration)
	}
	if req.Status != nil {
		b.set("status", *req.Status)
	}
	if b.empty() {
		return apperrors.Validation("no fields to update")
	}

	query := fmt.Sprintf("UPDATE lessons SET %s WHERE id = ?", b.clause())
	result, err := r.db.ExecContext(ctx, query, append(b.args, id)...)
	if err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("lesson not found")
	}

	return nil
}

// SetStatus changes the status of a lesson
func (r *lessonRepository) SetStatus(ctx context.Context, id int, status models.Status) error {
	return r.Update(ctx, id, &models.UpdateLessonRequest{Status: &status})
}
