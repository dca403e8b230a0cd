package models

import "time"

// DifficultyLevel is the target audience level of a course or quiz
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

// IsValid reports whether d is a known difficulty level
func (d DifficultyLevel) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	default:
		return false
	}
}

// Course represents a course in the catalog
type Course struct {
	ID                int             `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Language          string          `json:"language"`
	Category          string          `json:"category"`
	DifficultyLevel   DifficultyLevel `json:"difficulty_level"`
	EstimatedDuration *int            `json:"estimated_duration,omitempty"`
	Status            Status          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// CreateCourseRequest represents a request to create a course
type CreateCourseRequest struct {
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Language          string          `json:"language"`
	Category          string          `json:"category"`
	DifficultyLevel   DifficultyLevel `json:"difficulty_level"`
	EstimatedDuration *int            `json:"estimated_duration,omitempty"`
}

// UpdateCourseRequest represents a request to update a course (partial update)
type UpdateCourseRequest struct {
	Title             *string          `json:"title,omitempty"`
	Description       *string          `json:"description,omitempty"`
	Language          *string          `json:"language,omitempty"`
	Category          *string          `json:"category,omitempty"`
	DifficultyLevel   *DifficultyLevel `json:"difficulty_level,omitempty"`
	EstimatedDuration *int             `json:"estimated_duration,omitempty"`
	Status            *Status          `json:"status,omitempty"`
}

// CourseFilter narrows course listings
type CourseFilter struct {
	Language        string
	Category        string
	Difficulty      DifficultyLevel
	IncludeInactive bool
	Skip            int
	Limit           int
}
