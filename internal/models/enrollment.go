package models

import "time"

// Enrollment links a user to a course. At most one exists per (user, course).
// ProgressPercentage is an advisory snapshot; CourseProgress is authoritative.
type Enrollment struct {
	ID                 int        `json:"id"`
	UserID             int        `json:"user_id"`
	CourseID           int        `json:"course_id"`
	EnrolledAt         time.Time  `json:"enrolled_at"`
	CompletedAt        *time.Time `json:"completed_at"`
	ProgressPercentage float64    `json:"progress_percentage"`
	CertificateIssued  bool       `json:"certificate_issued"`
	CertificateURL     *string    `json:"certificate_url"`
}

// EnrollRequest represents a request to enroll in a course
type EnrollRequest struct {
	CourseID int `json:"course_id"`
}

// CourseProgress is the live completion state of an enrollment
type CourseProgress struct {
	CourseID           int        `json:"course_id"`
	TotalLessons       int        `json:"total_lessons"`
	CompletedLessons   int        `json:"completed_lessons"`
	ProgressPercentage float64    `json:"progress_percentage"`
	EnrolledAt         time.Time  `json:"enrolled_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}
