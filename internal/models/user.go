package models

import "time"

// User is the identity anchor for enrollments, progress and responses
type User struct {
	ID                int       `json:"id"`
	Email             string    `json:"email"`
	Username          string    `json:"username"`
	FullName          string    `json:"full_name"`
	PreferredLanguage string    `json:"preferred_language"`
	IsActive          bool      `json:"is_active"`
	IsAdmin           bool      `json:"is_admin"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// UpdateUserRequest represents an administrative user update (partial update)
type UpdateUserRequest struct {
	FullName          *string `json:"full_name,omitempty"`
	PreferredLanguage *string `json:"preferred_language,omitempty"`
	IsActive          *bool   `json:"is_active,omitempty"`
	IsAdmin           *bool   `json:"is_admin,omitempty"`
}
