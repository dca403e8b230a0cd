package models

import "time"

// LessonType represents the presentation type of a lesson
type LessonType string

const (
	LessonTypeText        LessonType = "text"
	LessonTypeVideo       LessonType = "video"
	LessonTypeInteractive LessonType = "interactive"
)

// IsValid reports whether t is a known lesson type
func (t LessonType) IsValid() bool {
	switch t {
	case LessonTypeText, LessonTypeVideo, LessonTypeInteractive:
		return true
	default:
		return false
	}
}

// Lesson is an ordered unit of content within a module
type Lesson struct {
	ID                int        `json:"id"`
	ModuleID          int        `json:"module_id"`
	Title             string     `json:"title"`
	Content           string     `json:"content"`
	Language          string     `json:"language"`
	OrderIndex        int        `json:"order_index"`
	LessonType        LessonType `json:"lesson_type"`
	MediaURL          *string    `json:"media_url,omitempty"`
	EstimatedDuration *int       `json:"estimated_duration,omitempty"`
	Status            Status     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CreateLessonRequest represents a request to create a lesson under a module
type CreateLessonRequest struct {
	Title             string     `json:"title"`
	Content           string     `json:"content"`
	Language          string     `json:"language"`
	OrderIndex        int        `json:"order_index"`
	LessonType        LessonType `json:"lesson_type"`
	MediaURL          *string    `json:"media_url,omitempty"`
	EstimatedDuration *int       `json:"estimated_duration,omitempty"`
}

// UpdateLessonRequest represents a request to update a lesson (partial update)
type UpdateLessonRequest struct {
	Title             *string     `json:"title,omitempty"`
	Content           *string     `json:"content,omitempty"`
	Language          *string     `json:"language,omitempty"`
	OrderIndex        *int        `json:"order_index,omitempty"`
	LessonType        *LessonType `json:"lesson_type,omitempty"`
	MediaURL          *string     `json:"media_url,omitempty"`
	EstimatedDuration *int        `json:"estimated_duration,omitempty"`
	Status            *Status     `json:"status,omitempty"`
}
