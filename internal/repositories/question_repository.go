package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/apperrors"
)

const questionColumns = `id, quiz_id, question_text, options, correct_answer_index, explanation, points, question_type, status, created_at, updated_at`

type questionRepository struct {
	db *sql.DB
}

// NewQuestionRepository creates a new quiz question repository
func NewQuestionRepository(db *sql.DB) *questionRepository {
	return &questionRepository{
		db: db,
	}
}

func scanQuestion(row interface{ Scan(...any) error }, q *models.QuizQuestion) error {
	var options []byte
	var explanation sql.NullString
	if err := row.Scan(
		&q.ID,
		&q.QuizID,
		&q.QuestionText,
		&options,
		&q.CorrectAnswerIndex,
		&explanation,
		&q.Points,
		&q.QuestionType,
		&q.Status,
		&q.CreatedAt,
		&q.UpdatedAt,
	); err != nil {
		return err
	}
	if err := json.Unmarshal(options, &q.Options); err != nil {
		return fmt.Errorf("failed to decode options: %w", err)
	}
	if explanation.Valid {
		q.Explanation = &explanation.String
	}
	return nil
}

// GetByID retrieves a question by its ID regardless of status
func (r *questionRepository) GetByID(ctx context.Context, id int) (*models.QuizQuestion, error) {
	query := `SELECT ` + questionColumns + ` FROM quiz_questions WHERE id = ? LIMIT 1`

	var q models.QuizQuestion
	err := scanQuestion(r.db.QueryRowContext(ctx, query, id), &q)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("question not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question by id: %w", err)
	}

	return &q, nil
}

// ListByQuiz retrieves the questions of a quiz in creation order
func (r *questionRepository) ListByQuiz(ctx context.Context, quizID int, includeInactive bool) ([]models.QuizQuestion, error) {
	query := `SELECT ` + questionColumns + ` FROM quiz_questions WHERE quiz_id = ?`
	args := []any{quizID}
	if !includeInactive {
		query += ` AND status = ?`
		args = append(args, models.StatusActive)
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	questions := []models.QuizQuestion{}
	for rows.Next() {
		var q models.QuizQuestion
		if err := scanQuestion(rows, &q); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return questions, nil
}

// Create inserts a new question and sets its ID
func (r *questionRepository) Create(ctx context.Context, q *models.QuizQuestion) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}

	query := `
		INSERT INTO quiz_questions (quiz_id, question_text, options, correct_answer_index, explanation, points, question_type, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		q.QuizID,
		q.QuestionText,
		string(options),
		q.CorrectAnswerIndex,
		q.Explanation,
		q.Points,
		q.QuestionType,
		q.Status,
	)
	if isMissingParent(err) {
		return apperrors.NotFound("quiz not found")
	}
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	q.ID = int(id)

	return nil
}

// Update applies the non-nil fields of req to a question.
// Options and answer index are expected to be validated by the caller.
func (r *questionRepository) Update(ctx context.Context, id int, req *models.UpdateQuestionRequest) error {
	var b updateBuilder
	if req.QuestionText != nil {
		b.set("question_text", *req.QuestionText)
	}
	if req.Options != nil {
		options, err := json.Marshal(req.Options)
		if err != nil {
			return fmt.Errorf("failed to encode options: %w", err)
		}
		b.set("options", string(options))
	}
	if req.CorrectAnswerIndex != nil {
		b.set("correct_answer_index", *req.CorrectAnswerIndex)
	}
	if req.Explanation != nil {
		b.set("explanation", *req.Explanation)
	}
	if req.Points != nil {
		b.set("points", *req.Points)
	}
	if req.Status != nil {
		b.set("status", *req.Status)
	}
	if b.empty() {
		return apperrors.Validation("no fields to update")
	}

	query := fmt.Sprintf("UPDATE quiz_questions SET %s WHERE id = ?", b.clause())
	result, err := r.db.ExecContext(ctx, query, append(b.args, id)...)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("question not found")
	}

	return nil
}

// SetStatus changes the status of a question
func (r *questionRepository) SetStatus(ctx context.Context, id int, status models.Status) error {
	return r.Update(ctx, id, &models.UpdateQuestionRequest{Status: &status})
}
