package services

import (
	"context"
	"fmt"
	"time"

	"github.com/roadsafety/backend/internal/events"
	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/apperrors"
	"go.uber.org/zap"
)

// QuestionReader is the read side of QuestionsRepository
type QuestionReader interface {
	GetByID(ctx context.Context, id int) (*models.QuizQuestion, error)
	ListByQuiz(ctx context.Context, quizID int, includeInactive bool) ([]models.QuizQuestion, error)
}

// ResponsesRepository is the interface that wraps methods for QuizResponses table data access
type ResponsesRepository interface {
	// Method Create insert an immutable response and set its ID.
	Create(ctx context.Context, resp *models.QuizResponse) error
	// Method CreateBatch insert all responses in one transaction and set their IDs.
	//
	// If any insert fails nothing will be stored and the error will be returned.
	CreateBatch(ctx context.Context, responses []*models.QuizResponse) error
	// Method ListByUserAndQuiz retrieve a user's responses to the questions of a quiz, oldest first.
	ListByUserAndQuiz(ctx context.Context, userID, quizID int) ([]models.QuizResponse, error)
	// Method CountForQuestion count all and correct responses to a question.
	CountForQuestion(ctx context.Context, questionID int) (total int, correct int, err error)
}

type quizService struct {
	quizzes   QuizReader
	questions QuestionReader
	responses ResponsesRepository
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewQuizService creates a new quiz scoring service
func NewQuizService(
	quizzes QuizReader,
	questions QuestionReader,
	responses ResponsesRepository,
	publisher EventPublisher,
	logger *zap.Logger,
) *quizService {
	return &quizService{
		quizzes:   quizzes,
		questions: questions,
		responses: responses,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetQuiz retrieves an active quiz
func (s *quizService) GetQuiz(ctx context.Context, quizID int) (*models.Quiz, error) {
	return activeQuiz(ctx, s.quizzes, quizID)
}

// ListQuestions retrieves the active questions of an active quiz in creation order,
// including the answer key
func (s *quizService) ListQuestions(ctx context.Context, quizID int) ([]models.QuizQuestion, error) {
	if _, err := activeQuiz(ctx, s.quizzes, quizID); err != nil {
		return nil, err
	}

	questions, err := s.questions.ListByQuiz(ctx, quizID, false)
	if err != nil {
		s.logger.Error("failed to list questions", zap.Error(err), zap.Int("quiz_id", quizID))
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	return questions, nil
}

// ListPublicQuestions is ListQuestions without correct answers and explanations
func (s *quizService) ListPublicQuestions(ctx context.Context, quizID int) ([]models.PublicQuestion, error) {
	questions, err := s.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}

	public := make([]models.PublicQuestion, 0, len(questions))
	for i := range questions {
		public = append(public, questions[i].Public())
	}

	return public, nil
}

// SubmitAnswer scores and stores one answer.
//
// Correctness is always computed from the stored answer key. Inactive questions remain answerable.
// Every call stores a new response, so repeated submissions produce distinct rows.
func (s *quizService) SubmitAnswer(ctx context.Context, userID int, req *models.SubmitAnswerRequest) (*models.AnswerResult, error) {
	if req.QuestionID <= 0 {
		return nil, apperrors.Validation("question_id is required")
	}
	if req.UserAnswerIndex == nil {
		return nil, apperrors.Validation("user_answer_index is required")
	}

	question, err := s.questions.GetByID(ctx, req.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	result, err := s.score(userID, question, *req.UserAnswerIndex, req.ResponseTime)
	if err != nil {
		return nil, err
	}

	if err := s.responses.Create(ctx, &result.QuizResponse); err != nil {
		s.logger.Error("failed to store quiz response", zap.Error(err), zap.Int("user_id", userID), zap.Int("question_id", question.ID))
		return nil, fmt.Errorf("failed to store response: %w", err)
	}

	s.publishAnswer(ctx, question.QuizID, result)
	return result, nil
}

// SubmitQuiz scores a batch of answers for one active quiz and stores them in one transaction.
//
// Every answer must address an active question of the quiz, at most once. The score is
// earned points over the total points of all active questions, so unanswered questions count as wrong.
func (s *quizService) SubmitQuiz(ctx context.Context, userID, quizID int, req *models.SubmitQuizRequest) (*models.QuizResult, error) {
	if len(req.Answers) == 0 {
		return nil, apperrors.Validation("at least one answer is required")
	}

	quiz, err := activeQuiz(ctx, s.quizzes, quizID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.ListByQuiz(ctx, quizID, false)
	if err != nil {
		s.logger.Error("failed to list questions", zap.Error(err), zap.Int("quiz_id", quizID))
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	byID := make(map[int]*models.QuizQuestion, len(questions))
	totalPoints := 0
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
		totalPoints += questions[i].Points
	}

	seen := make(map[int]bool, len(req.Answers))
	results := make([]models.AnswerResult, 0, len(req.Answers))
	for _, answer := range req.Answers {
		question, ok := byID[answer.QuestionID]
		if !ok {
			return nil, apperrors.Validation("question %d does not belong to quiz %d", answer.QuestionID, quizID)
		}
		if seen[answer.QuestionID] {
			return nil, apperrors.Validation("question %d is answered more than once", answer.QuestionID)
		}
		seen[answer.QuestionID] = true
		if answer.UserAnswerIndex == nil {
			return nil, apperrors.Validation("user_answer_index is required for question %d", answer.QuestionID)
		}

		result, err := s.score(userID, question, *answer.UserAnswerIndex, answer.ResponseTime)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	batch := make([]*models.QuizResponse, len(results))
	for i := range results {
		batch[i] = &results[i].QuizResponse
	}
	if err := s.responses.CreateBatch(ctx, batch); err != nil {
		s.logger.Error("failed to store quiz responses", zap.Error(err), zap.Int("user_id", userID), zap.Int("quiz_id", quizID))
		return nil, fmt.Errorf("failed to store responses: %w", err)
	}

	outcome := &models.QuizResult{
		QuizID:         quizID,
		TotalQuestions: len(questions),
		Answered:       len(results),
		TotalPoints:    totalPoints,
		PassingScore:   quiz.PassingScore,
		Results:        results,
	}
	for i := range results {
		if results[i].IsCorrect {
			outcome.CorrectAnswers++
		}
		outcome.EarnedPoints += results[i].PointsEarned
	}
	if totalPoints > 0 {
		outcome.Score = round2(float64(outcome.EarnedPoints) / float64(totalPoints) * 100)
	}
	outcome.Passed = outcome.Score >= float64(quiz.PassingScore)

	for i := range results {
		s.publishAnswer(ctx, quizID, &results[i])
	}
	s.logger.Info("Quiz submitted",
		zap.Int("user_id", userID),
		zap.Int("quiz_id", quizID),
		zap.Float64("score", outcome.Score),
		zap.Bool("passed", outcome.Passed),
	)

	return outcome, nil
}

// QuestionAccuracy returns the share of correct responses to a question, 0 when unanswered
func (s *quizService) QuestionAccuracy(ctx context.Context, questionID int) (*models.QuestionAccuracy, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	total, correct, err := s.responses.CountForQuestion(ctx, questionID)
	if err != nil {
		s.logger.Error("failed to count responses", zap.Error(err), zap.Int("question_id", questionID))
		return nil, fmt.Errorf("failed to count responses: %w", err)
	}

	return &models.QuestionAccuracy{
		QuestionID:       questionID,
		QuizID:           question.QuizID,
		QuestionText:     question.QuestionText,
		TotalResponses:   total,
		CorrectResponses: correct,
		AccuracyRate:     percentage(correct, total),
	}, nil
}

// ListUserResponses retrieves the answer history of a user for a quiz
func (s *quizService) ListUserResponses(ctx context.Context, userID, quizID int) ([]models.QuizResponse, error) {
	if _, err := s.quizzes.GetByID(ctx, quizID); err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	responses, err := s.responses.ListByUserAndQuiz(ctx, userID, quizID)
	if err != nil {
		s.logger.Error("failed to list responses", zap.Error(err), zap.Int("user_id", userID), zap.Int("quiz_id", quizID))
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	return responses, nil
}

// score builds the response for an answer to a question without storing it
func (s *quizService) score(userID int, question *models.QuizQuestion, answer int, responseTime *float64) (*models.AnswerResult, error) {
	if answer < 0 || answer >= len(question.Options) {
		return nil, apperrors.Validation("user_answer_index must be between 0 and %d", len(question.Options)-1)
	}
	if responseTime != nil && *responseTime < 0 {
		return nil, apperrors.Validation("response_time must not be negative")
	}

	correct := answer == question.CorrectAnswerIndex
	earned := 0
	if correct {
		earned = question.Points
	}

	return &models.AnswerResult{
		QuizResponse: models.QuizResponse{
			QuestionID:      question.ID,
			UserID:          userID,
			UserAnswerIndex: answer,
			IsCorrect:       correct,
			ResponseTime:    responseTime,
			CreatedAt:       s.now(),
		},
		CorrectAnswerIndex: question.CorrectAnswerIndex,
		Explanation:        question.Explanation,
		PointsEarned:       earned,
	}, nil
}

func (s *quizService) publishAnswer(ctx context.Context, quizID int, result *models.AnswerResult) {
	publish(ctx, s.publisher, s.logger, events.TopicQuizAnswered, events.Event{
		UserID:     result.UserID,
		EntityID:   result.QuestionID,
		OccurredAt: result.CreatedAt,
		Data: map[string]any{
			"quiz_id":     quizID,
			"response_id": result.ID,
			"is_correct":  result.IsCorrect,
		},
	})
}
