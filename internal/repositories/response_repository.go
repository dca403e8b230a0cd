package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/apperrors"
)

const insertResponseQuery = `
	INSERT INTO quiz_responses (question_id, user_id, user_answer_index, is_correct, response_time, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
`

type responseRepository struct {
	db *sql.DB
}

// NewResponseRepository creates a new quiz response repository
func NewResponseRepository(db *sql.DB) *responseRepository {
	return &responseRepository{
		db: db,
	}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertResponse(ctx context.Context, exec execer, resp *models.QuizResponse) error {
	result, err := exec.ExecContext(ctx, insertResponseQuery,
		resp.QuestionID,
		resp.UserID,
		resp.UserAnswerIndex,
		resp.IsCorrect,
		resp.ResponseTime,
		resp.CreatedAt,
	)
	if isMissingParent(err) {
		return apperrors.NotFound("question or user not found")
	}
	if err != nil {
		return fmt.Errorf("failed to create quiz response: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	resp.ID = int(id)

	return nil
}

// Create inserts a new immutable response and sets its ID
func (r *responseRepository) Create(ctx context.Context, resp *models.QuizResponse) error {
	return insertResponse(ctx, r.db, resp)
}

// CreateBatch inserts all responses in one transaction
func (r *responseRepository) CreateBatch(ctx context.Context, responses []*models.QuizResponse) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, resp := range responses {
		if err := insertResponse(ctx, tx, resp); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListByUserAndQuiz retrieves a user's responses to the questions of a quiz, oldest first
func (r *responseRepository) ListByUserAndQuiz(ctx context.Context, userID, quizID int) ([]models.QuizResponse, error) {
	query := `
		SELECT qr.id, qr.question_id, qr.user_id, qr.user_answer_index, qr.is_correct, qr.response_time, qr.created_at
		FROM quiz_responses qr
		INNER JOIN quiz_questions qq ON qq.id = qr.question_id
		WHERE qr.user_id = ? AND qq.quiz_id = ?
		ORDER BY qr.created_at ASC, qr.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz responses: %w", err)
	}
	defer rows.Close()

	responses := []models.QuizResponse{}
	for rows.Next() {
		var resp models.QuizResponse
		var responseTime sql.NullFloat64
		if err := rows.Scan(
			&resp.ID,
			&resp.QuestionID,
			&resp.UserID,
			&resp.UserAnswerIndex,
			&resp.IsCorrect,
			&responseTime,
			&resp.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quiz response: %w", err)
		}
		if responseTime.Valid {
			resp.ResponseTime = &responseTime.Float64
		}
		responses = append(responses, resp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return responses, nil
}

// CountForQuestion returns the total and correct response counts of a question
func (r *responseRepository) CountForQuestion(ctx context.Context, questionID int) (total int, correct int, err error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(is_correct), 0)
		FROM quiz_responses
		WHERE question_id = ?
	`

	if err := r.db.QueryRowContext(ctx, query, questionID).Scan(&total, &correct); err != nil {
		return 0, 0, fmt.Errorf("failed to count question responses: %w", err)
	}

	return total, correct, nil
}
