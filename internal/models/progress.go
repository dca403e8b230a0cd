package models

import "time"

// UserProgress is a user's state for one lesson. At most one exists per (user, lesson).
type UserProgress struct {
	ID             int        `json:"id"`
	UserID         int        `json:"user_id"`
	LessonID       int        `json:"lesson_id"`
	Completed      bool       `json:"completed"`
	CompletionDate *time.Time `json:"completion_date"`
	TimeSpent      int        `json:"time_spent"`
	Score          *float64   `json:"score"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ProgressUpdate carries the fields of a progress submission.
// Nil fields keep their stored values.
type ProgressUpdate struct {
	Completed *bool    `json:"completed,omitempty"`
	TimeSpent *int     `json:"time_spent,omitempty"`
	Score     *float64 `json:"score,omitempty"`
}
