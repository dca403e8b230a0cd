package models

// Count pairs a total with the active subset
type Count struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// UserStats counts users by state
type UserStats struct {
	Total  int `json:"total"`
	Active int `json:"active"`
	Admins int `json:"admins"`
}

// EnrollmentStats counts enrollments by completion
type EnrollmentStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

// RecentActivity counts events inside the trailing seven-day window
type RecentActivity struct {
	NewEnrollments  int `json:"new_enrollments_7d"`
	ProgressUpdates int `json:"progress_updates_7d"`
	NewUsers        int `json:"new_users_7d"`
}

// DashboardStats is the admin dashboard summary
type DashboardStats struct {
	Users          UserStats       `json:"users"`
	Courses        Count           `json:"courses"`
	Lessons        Count           `json:"lessons"`
	Quizzes        Count           `json:"quizzes"`
	Enrollments    EnrollmentStats `json:"enrollments"`
	RecentActivity RecentActivity  `json:"recent_activity"`
	LiveSessions   int             `json:"live_sessions"`
}

// DailyCount is a per-calendar-day bucket (YYYY-MM-DD)
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// LabelCount is a categorical distribution bucket
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// UserAnalytics describes registrations and learner activity
type UserAnalytics struct {
	Days                int          `json:"days"`
	RegistrationTrend   []DailyCount `json:"registration_trend"`
	ActiveUsers7d       int          `json:"active_users_7d"`
	ActiveUsers30d      int          `json:"active_users_30d"`
	LanguagePreferences []LabelCount `json:"language_preferences"`
}

// PopularCourse is a course ranked by enrollments
type PopularCourse struct {
	CourseID    int    `json:"course_id"`
	Title       string `json:"title"`
	Enrollments int    `json:"enrollments"`
}

// CourseCompletionRate is the share of completed enrollments of a course
type CourseCompletionRate struct {
	CourseID             int     `json:"course_id"`
	Title                string  `json:"title"`
	TotalEnrollments     int     `json:"total_enrollments"`
	CompletedEnrollments int     `json:"completed_enrollments"`
	CompletionRate       float64 `json:"completion_rate"`
}

// CourseAnalytics describes course popularity and completion
type CourseAnalytics struct {
	PopularCourses         []PopularCourse        `json:"popular_courses"`
	CompletionRates        []CourseCompletionRate `json:"completion_rates"`
	LanguageDistribution   []LabelCount           `json:"language_distribution"`
	DifficultyDistribution []LabelCount           `json:"difficulty_distribution"`
}

// QuizPerformance aggregates responses over one quiz
type QuizPerformance struct {
	QuizID           int     `json:"quiz_id"`
	Title            string  `json:"title"`
	TotalResponses   int     `json:"total_responses"`
	CorrectResponses int     `json:"correct_responses"`
	AccuracyRate     float64 `json:"accuracy_rate"`
}

// OverallQuizStats aggregates all responses
type OverallQuizStats struct {
	TotalResponses   int     `json:"total_responses"`
	CorrectResponses int     `json:"correct_responses"`
	OverallAccuracy  float64 `json:"overall_accuracy"`
	Responses7d      int     `json:"responses_7d"`
}

// QuizAnalytics describes learner performance on quizzes
type QuizAnalytics struct {
	QuizPerformance  []QuizPerformance  `json:"quiz_performance"`
	Overall          OverallQuizStats   `json:"overall"`
	HardestQuestions []QuestionAccuracy `json:"hardest_questions"`
}

// UserCount is the lightweight user counter
type UserCount struct {
	TotalUsers  int `json:"total_users"`
	ActiveUsers int `json:"active_users"`
}
