package models

import "time"

// DefaultPassingScore is the passing threshold used when a quiz does not set one
const DefaultPassingScore = 70

// Quiz is a set of questions, attached to a lesson or standalone
type Quiz struct {
	ID              int             `json:"id"`
	LessonID        *int            `json:"lesson_id,omitempty"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Language        string          `json:"language"`
	DifficultyLevel DifficultyLevel `json:"difficulty_level"`
	PassingScore    int             `json:"passing_score"`
	TimeLimit       *int            `json:"time_limit,omitempty"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CreateQuizRequest represents a request to create a quiz
type CreateQuizRequest struct {
	LessonID        *int            `json:"lesson_id,omitempty"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Language        string          `json:"language"`
	DifficultyLevel DifficultyLevel `json:"difficulty_level"`
	PassingScore    *int            `json:"passing_score,omitempty"`
	TimeLimit       *int            `json:"time_limit,omitempty"`
}

// UpdateQuizRequest represents a request to update a quiz (partial update)
type UpdateQuizRequest struct {
	Title           *string          `json:"title,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Language        *string          `json:"language,omitempty"`
	DifficultyLevel *DifficultyLevel `json:"difficulty_level,omitempty"`
	PassingScore    *int             `json:"passing_score,omitempty"`
	TimeLimit       *int             `json:"time_limit,omitempty"`
	Status          *Status          `json:"status,omitempty"`
}

// QuizFilter narrows quiz listings
type QuizFilter struct {
	Language string
	LessonID *int
}
