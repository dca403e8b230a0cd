package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/apperrors"
)

const quizColumns = `id, lesson_id, title, description, language, difficulty_level, passing_score, time_limit, status, created_at, updated_at`

type quizRepository struct {
	db *sql.DB
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db *sql.DB) *quizRepository {
	return &quizRepository{
		db: db,
	}
}

func scanQuiz(row interface{ Scan(...any) error }, quiz *models.Quiz) error {
	var lessonID, timeLimit sql.NullInt64
	if err := row.Scan(
		&quiz.ID,
		&lessonID,
		&quiz.Title,
		&quiz.Description,
		&quiz.Language,
		&quiz.DifficultyLevel,
		&quiz.PassingScore,
		&timeLimit,
		&quiz.Status,
		&quiz.CreatedAt,
		&quiz.UpdatedAt,
	); err != nil {
		return err
	}
	if lessonID.Valid {
		id := int(lessonID.Int64)
		quiz.LessonID = &id
	}
	if timeLimit.Valid {
		tl := int(timeLimit.Int64)
		quiz.TimeLimit = &tl
	}
	return nil
}

// GetByID retrieves a quiz by its ID regardless of status
func (r *quizRepository) GetByID(ctx context.Context, id int) (*models.Quiz, error) {
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE id = ? LIMIT 1`

	var quiz models.Quiz
	err := scanQuiz(r.db.QueryRowContext(ctx, query, id), &quiz)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("quiz not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz by id: %w", err)
	}

	return &quiz, nil
}

// List retrieves active quizzes matching the filter ordered by ID
func (r *quizRepository) List(ctx context.Context, filter models.QuizFilter) ([]models.Quiz, error) {
	whereClauses := []string{"status = ?"}
	args := []any{models.StatusActive}

	if filter.Language != "" {
		whereClauses = append(whereClauses, "language = ?")
		args = append(args, filter.Language)
	}
	if filter.LessonID != nil {
		whereClauses = append(whereClauses, "lesson_id = ?")
		args = append(args, *filter.LessonID)
	}

	query := fmt.Sprintf(`SELECT %s FROM quizzes WHERE %s ORDER BY id`, quizColumns, strings.Join(whereClauses, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := []models.Quiz{}
	for rows.Next() {
		var quiz models.Quiz
		if err := scanQuiz(rows, &quiz); err != nil {
			return nil, fmt.Errorf("failed to scan quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return quizzes, nil
}

// Create inserts a new quiz and sets its ID.
// A second quiz for the same lesson is a conflict.
func (r *quizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	query := `
		INSERT INTO quizzes (lesson_id, title, description, language, difficulty_level, passing_score, time_limit, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		quiz.LessonID,
		quiz.Title,
		quiz.Description,
		quiz.Language,
		quiz.DifficultyLevel,
		quiz.PassingScore,
		quiz.TimeLimit,
		quiz.Status,
	)
	if isDuplicateEntry(err) {
		return apperrors.Conflict("lesson already has a quiz")
	}
	if isMissingParent(err) {
		return apperrors.NotFound("lesson not found")
	}
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	quiz.ID = int(id)

	return nil
}

// Update applies the non-nil fields of req to a quiz
func (r *quizRepository) Update(ctx context.Context, id int, req *models.UpdateQuizRequest) error {
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
	if req.DifficultyLevel != nil {
		b.set("difficulty_level", *req.DifficultyLevel)
	}
	if req.PassingScore != nil {
		b.set("passing_score", *req.PassingScore)
	}
	if req.TimeLimit != nil {
		b.set("time_limit", *req.TimeLimit)
	}
	if req.Status != nil {
		b.set("status", *req.Status)
	}
	if b.empty() {
		return apperrors.Validation("no fields to update")
	}

	query := fmt.Sprintf("UPDATE quizzes SET %s WHERE id = ?", b.clause())
	result, err := r.db.ExecContext(ctx, query, append(b.args, id)...)
	if err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("quiz not found")
	}

	return nil
}
