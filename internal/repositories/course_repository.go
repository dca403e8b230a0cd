package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/apperrors"
)

const courseColumns = `id, title, description, language, category, difficulty_level, estimated_duration, status, created_at, updated_at`

type courseRepository struct {
	db *sql.DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *sql.DB) *courseRepository {
	return &courseRepository{
		db: db,
	}
}

func scanCourse(row interface{ Scan(...any) error }, course *models.Course) error {
	var duration sql.NullInt64
	if err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Language,
		&course.Category,
		&course.DifficultyLevel,
		&duration,
		&course.Status,
		&course.CreatedAt,
		&course.UpdatedAt,
	); err != nil {
		return err
	}
	if duration.Valid {
		d := int(duration.Int64)
		course.EstimatedDuration = &d
	}
	return nil
}

// GetByID retrieves a course by its ID regardless of status
func (r *courseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = ? LIMIT 1`

	var course models.Course
	err := scanCourse(r.db.QueryRowContext(ctx, query, id), &course)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("course not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course by id: %w", err)
	}

	return &course, nil
}

// List retrieves courses matching the filter ordered by ID
func (r *courseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	var whereClauses []string
	var args []any

	if !filter.IncludeInactive {
		whereClauses = append(whereClauses, "status = ?")
		args = append(args, models.StatusActive)
	}
	if filter.Language != "" {
		whereClauses = append(whereClauses, "language = ?")
		args = append(args, filter.Language)
	}
	if filter.Category != "" {
		whereClauses = append(whereClauses, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Difficulty != "" {
		whereClauses = append(whereClauses, "difficulty_level = ?")
		args = append(args, filter.Difficulty)
	}

	whereClause := ""
	if len(whereClauses) > 0 {
		whereClause = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM courses %s ORDER BY id LIMIT ? OFFSET ?`, courseColumns, whereClause)
	args = append(args, filter.Limit, filter.Skip)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		var course models.Course
		if err := scanCourse(rows, &course); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return courses, nil
}

// Create inserts a new active course and sets its ID
func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (title, description, language, category, difficulty_level, estimated_duration, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		course.Title,
		course.Description,
		course.Language,
		course.Category,
		course.DifficultyLevel,
		course.EstimatedDuration,
		course.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	course.ID = int(id)

	return nil
}

// Update applies the non-nil fields of req to a course
func (r *courseRepository) Update(ctx context.Context, id int, req *models.UpdateCourseRequest) error {
	var b updateBuilder
	if req.Title != nil {
		b.set("title", *req.Title)
	}
	if req.Description != nil {
		b.set("description", *req.Description)
	}
	if req.Language != nil {
		b.set("language", *req.Language)
	}
	if req.Category != nil {
		b.set("category", *req.Category)
	}
	if req.DifficultyLevel != nil {
		b.set("difficulty_level", *req.DifficultyLevel)
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

	query := fmt.Sprintf("UPDATE courses SET %s WHERE id = ?", b.clause())
	args := append(b.args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("course not found")
	}

	return nil
}

// SetStatus changes the status of a course
func (r *courseRepository) SetStatus(ctx context.Context, id int, status models.Status) error {
	return r.Update(ctx, id, &models.UpdateCourseRequest{Status: &status})
}

// Delete removes a course together with its modules, lessons, quizzes and questions.
// It fails with a conflict while learner records still reference the course content.
func (r *courseRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if isRowReferenced(err) {
		return apperrors.Conflict("course has learner records and cannot be deleted")
	}
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("course not found")
	}

	return nil
}
