package models

import "time"

// QuizResponse is one immutable answer submission
type QuizResponse struct {
	ID              int       `json:"id"`
	QuestionID      int       `json:"question_id"`
	UserID          int       `json:"user_id"`
	UserAnswerIndex int       `json:"user_answer_index"`
	IsCorrect       bool      `json:"is_correct"`
	ResponseTime    *float64  `json:"response_time,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// SubmitAnswerRequest represents an answer to a single question.
// The caller cannot assert correctness; it is always computed from the answer key.
type SubmitAnswerRequest struct {
	QuestionID      int      `json:"question_id"`
	UserAnswerIndex *int     `json:"user_answer_index"`
	ResponseTime    *float64 `json:"response_time,omitempty"`
}

// AnswerResult is the scored outcome of one submission
type AnswerResult struct {
	QuizResponse
	CorrectAnswerIndex int     `json:"correct_answer_index"`
	Explanation        *string `json:"explanation,omitempty"`
	PointsEarned       int     `json:"points_earned"`
}

// SubmitQuizRequest represents a batch of answers for one quiz
type SubmitQuizRequest struct {
	Answers []SubmitAnswerRequest `json:"answers"`
}

// QuizResult is the scored outcome of a batch submission
type QuizResult struct {
	QuizID         int            `json:"quiz_id"`
	TotalQuestions int            `json:"total_questions"`
	Answered       int            `json:"answered"`
	CorrectAnswers int            `json:"correct_answers"`
	TotalPoints    int            `json:"total_points"`
	EarnedPoints   int            `json:"earned_points"`
	Score          float64        `json:"score"`
	PassingScore   int            `json:"passing_score"`
	Passed         bool           `json:"passed"`
	Results        []AnswerResult `json:"results"`
}

// QuestionAccuracy is the share of correct responses to a question
type QuestionAccuracy struct {
	QuestionID       int     `json:"question_id"`
	QuizID           int     `json:"quiz_id,omitempty"`
	QuestionText     string  `json:"question_text,omitempty"`
	TotalResponses   int     `json:"total_responses"`
	CorrectResponses int     `json:"correct_responses"`
	AccuracyRate     float64 `json:"accuracy_rate"`
}
