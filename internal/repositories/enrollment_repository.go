package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/apperrors"
)

const enrollmentColumns = `id, user_id, course_id, enrolled_at, completed_at, progress_percentage, certificate_issued, certificate_url`

type enrollmentRepository struct {
	db *sql.DB
}

// NewEnrollmentRepository creates a new course enrollment repository
func NewEnrollmentRepository(db *sql.DB) *enrollmentRepository {
	return &enrollmentRepository{
		db: db,
	}
}

func scanEnrollment(row interface{ Scan(...any) error }, e *models.Enrollment) error {
	var completedAt sql.NullTime
	var certificateURL sql.NullString
	if err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.CourseID,
		&e.EnrolledAt,
		&completedAt,
		&e.ProgressPercentage,
		&e.CertificateIssued,
		&certificateURL,
	); err != nil {
		return err
	}
	if completedAt.Valid {
		e.CompletedAt = &completedAt.Time
	}
	if certificateURL.Valid {
		e.CertificateURL = &certificateURL.String
	}
	return nil
}

// Exists reports whether the user is enrolled in the course
func (r *enrollmentRepository) Exists(ctx context.Context, userID, courseID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM course_enrollments WHERE user_id = ? AND course_id = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}

	return exists, nil
}

// Create inserts a new enrollment and sets its ID.
// The unique (user_id, course_id) key turns a concurrent duplicate into a conflict.
func (r *enrollmentRepository) Create(ctx context.Context, e *models.Enrollment) error {
	query := `
		INSERT INTO course_enrollments (user_id, course_id, enrolled_at, progress_percentage)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, e.UserID, e.CourseID, e.EnrolledAt, e.ProgressPercentage)
	if isDuplicateEntry(err) {
		return apperrors.Conflict("already enrolled in this course")
	}
	if isMissingParent(err) {
		return apperrors.NotFound("course not found")
	}
	if err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	e.ID = int(id)

	return nil
}

// GetByUserAndCourse retrieves the enrollment of a user in a course
func (r *enrollmentRepository) GetByUserAndCourse(ctx context.Context, userID, courseID int) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM course_enrollments WHERE user_id = ? AND course_id = ? LIMIT 1`

	var e models.Enrollment
	err := scanEnrollment(r.db.QueryRowContext(ctx, query, userID, courseID), &e)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("enrollment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	return &e, nil
}

// ListByUser retrieves a user's enrollments, newest first
func (r *enrollmentRepository) ListByUser(ctx context.Context, userID int) ([]models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM course_enrollments WHERE user_id = ? ORDER BY enrolled_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := []models.Enrollment{}
	for rows.Next() {
		var e models.Enrollment
		if err := scanEnrollment(rows, &e); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return enrollments, nil
}

// UpdateProgressSnapshot stores the advisory percentage of an enrollment.
// A non-nil completedAt is recorded only if the enrollment has no completion time yet.
func (r *enrollmentRepository) UpdateProgressSnapshot(ctx context.Context, id int, percentage float64, completedAt *time.Time) error {
	query := `
		UPDATE course_enrollments
		SET progress_percentage = ?, completed_at = COALESCE(completed_at, ?)
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, percentage, completedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update enrollment progress: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("enrollment not found")
	}

	return nil
}
