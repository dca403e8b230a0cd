package models

import "time"

// QuestionTypeMultipleChoice is the only question type the scoring engine understands
const QuestionTypeMultipleChoice = "multiple_choice"

// QuizQuestion is a multiple choice question.
// CorrectAnswerIndex always addresses an element of Options.
type QuizQuestion struct {
	ID                 int       `json:"id"`
	QuizID             int       `json:"quiz_id"`
	QuestionText       string    `json:"question_text"`
	Options            []string  `json:"options"`
	CorrectAnswerIndex int       `json:"correct_answer_index"`
	Explanation        *string   `json:"explanation,omitempty"`
	Points             int       `json:"points"`
	QuestionType       string    `json:"question_type"`
	Status             Status    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// PublicQuestion is the learner-facing view of a question, without the answer key
type PublicQuestion struct {
	ID           int      `json:"id"`
	QuizID       int      `json:"quiz_id"`
	QuestionText string   `json:"question_text"`
	Options      []string `json:"options"`
	Points       int      `json:"points"`
	QuestionType string   `json:"question_type"`
}

// Public strips the answer key from the question
func (q *QuizQuestion) Public() PublicQuestion {
	return PublicQuestion{
		ID:           q.ID,
		QuizID:       q.QuizID,
		QuestionText: q.QuestionText,
		Options:      q.Options,
		Points:       q.Points,
		QuestionType: q.QuestionType,
	}
}

// CreateQuestionRequest represents a request to add a question to a quiz
type CreateQuestionRequest struct {
	QuestionText       string   `json:"question_text"`
	Options            []string `json:"options"`
	CorrectAnswerIndex *int     `json:"correct_answer_index"`
	Explanation        *string  `json:"explanation,omitempty"`
	Points             *int     `json:"points,omitempty"`
	QuestionType       string   `json:"question_type,omitempty"`
}

// UpdateQuestionRequest represents a request to update a question (partial update).
// A nil Options slice leaves the options untouched.
type UpdateQuestionRequest struct {
	QuestionText       *string  `json:"question_text,omitempty"`
	Options            []string `json:"options,omitempty"`
	CorrectAnswerIndex *int     `json:"correct_answer_index,omitempty"`
	Explanation        *string  `json:"explanation,omitempty"`
	Points             *int     `json:"points,omitempty"`
	Status             *Status  `json:"status,omitempty"`
}
