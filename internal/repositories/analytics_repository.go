package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roadsafety/backend/internal/models"
)

// Course columns that may be grouped for a distribution
const (
	DistributionLanguage   = "language"
	DistributionDifficulty = "difficulty_level"
)

type analyticsRepository struct {
	db *sql.DB
}

// NewAnalyticsRepository creates a new read-only analytics repository
func NewAnalyticsRepository(db *sql.DB) *analyticsRepository {
	return &analyticsRepository{
		db: db,
	}
}

// UserStats counts all, active and admin users
func (r *analyticsRepository) UserStats(ctx context.Context) (models.UserStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(is_active), 0), COALESCE(SUM(is_admin), 0)
		FROM users
	`

	var stats models.UserStats
	if err := r.db.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Active, &stats.Admins); err != nil {
		return models.UserStats{}, fmt.Errorf("failed to count users: %w", err)
	}

	return stats, nil
}

// ContentCounts counts courses, lessons and quizzes in total and in active status
func (r *analyticsRepository) ContentCounts(ctx context.Context) (courses, lessons, quizzes models.Count, err error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM courses),
			(SELECT COUNT(*) FROM courses WHERE status = ?),
			(SELECT COUNT(*) FROM lessons),
			(SELECT COUNT(*) FROM lessons WHERE status = ?),
			(SELECT COUNT(*) FROM quizzes),
			(SELECT COUNT(*) FROM quizzes WHERE status = ?)
	`

	active := models.StatusActive
	err = r.db.QueryRowContext(ctx, query, active, active, active).Scan(
		&courses.Total, &courses.Active,
		&lessons.Total, &lessons.Active,
		&quizzes.Total, &quizzes.Active,
	)
	if err != nil {
		return models.Count{}, models.Count{}, models.Count{}, fmt.Errorf("failed to count content: %w", err)
	}

	return courses, lessons, quizzes, nil
}

// EnrollmentStats counts enrollments split by completion
func (r *analyticsRepository) EnrollmentStats(ctx context.Context) (models.EnrollmentStats, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(completed_at IS NULL), 0),
			COALESCE(SUM(completed_at IS NOT NULL), 0)
		FROM course_enrollments
	`

	var stats models.EnrollmentStats
	if err := r.db.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Active, &stats.Completed); err != nil {
		return models.EnrollmentStats{}, fmt.Errorf("failed to count enrollments: %w", err)
	}

	return stats, nil
}

// RecentActivity counts enrollments, progress updates and registrations in [from, to)
func (r *analyticsRepository) RecentActivity(ctx context.Context, from, to time.Time) (models.RecentActivity, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM course_enrollments WHERE enrolled_at >= ? AND enrolled_at < ?),
			(SELECT COUNT(*) FROM user_progress WHERE updated_at >= ? AND updated_at < ?),
			(SELECT COUNT(*) FROM users WHERE created_at >= ? AND created_at < ?)
	`

	var activity models.RecentActivity
	err := r.db.QueryRowContext(ctx, query, from, to, from, to, from, to).Scan(
		&activity.NewEnrollments,
		&activity.ProgressUpdates,
		&activity.NewUsers,
	)
	if err != nil {
		return models.RecentActivity{}, fmt.Errorf("failed to count recent activity: %w", err)
	}

	return activity, nil
}

// RegistrationTrend counts registrations per calendar day in [from, to)
func (r *analyticsRepository) RegistrationTrend(ctx context.Context, from, to time.Time) ([]models.DailyCount, error) {
	query := `
		SELECT DATE(created_at) AS day, COUNT(*)
		FROM users
		WHERE created_at >= ? AND created_at < ?
		GROUP BY day
		ORDER BY day ASC
	`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query registration trend: %w", err)
	}
	defer rows.Close()

	trend := []models.DailyCount{}
	for rows.Next() {
		var day time.Time
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("failed to scan registration day: %w", err)
		}
		trend = append(trend, models.DailyCount{Date: day.Format("2006-01-02"), Count: count})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return trend, nil
}

// ActiveUsers counts distinct users with a progress update in [from, to)
func (r *analyticsRepository) ActiveUsers(ctx context.Context, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT user_id)
		FROM user_progress
		WHERE updated_at >= ? AND updated_at < ?
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}

	return count, nil
}

// LanguagePreferences counts users per preferred language
func (r *analyticsRepository) LanguagePreferences(ctx context.Context) ([]models.LabelCount, error) {
	query := `
		SELECT preferred_language, COUNT(*) AS total
		FROM users
		GROUP BY preferred_language
		ORDER BY total DESC, preferred_language ASC
	`

	return r.queryLabelCounts(ctx, query)
}

// CourseDistribution counts active courses grouped by language or difficulty_level
func (r *analyticsRepository) CourseDistribution(ctx context.Context, column string) ([]models.LabelCount, error) {
	if column != DistributionLanguage && column != DistributionDifficulty {
		return nil, fmt.Errorf("unsupported distribution column: %s", column)
	}

	query := fmt.Sprintf(`
		SELECT %[1]s, COUNT(*) AS total
		FROM courses
		WHERE status = ?
		GROUP BY %[1]s
		ORDER BY total DESC, %[1]s ASC
	`, column)

	return r.queryLabelCounts(ctx, query, models.StatusActive)
}

func (r *analyticsRepository) queryLabelCounts(ctx context.Context, query string, args ...any) ([]models.LabelCount, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query distribution: %w", err)
	}
	defer rows.Close()

	counts := []models.LabelCount{}
	for rows.Next() {
		var lc models.LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan distribution: %w", err)
		}
		counts = append(counts, lc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return counts, nil
}

// PopularCourses ranks courses by enrollment count, ties broken by id.
// Courses without enrollments are ranked with a zero count.
func (r *analyticsRepository) PopularCourses(ctx context.Context, limit int) ([]models.PopularCourse, error) {
	query := `
		SELECT c.id, c.title, COUNT(e.id) AS enrollments
		FROM courses c
		LEFT JOIN course_enrollments e ON e.course_id = c.id
		GROUP BY c.id, c.title
		ORDER BY enrollments DESC, c.id ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular courses: %w", err)
	}
	defer rows.Close()

	courses := []models.PopularCourse{}
	for rows.Next() {
		var pc models.PopularCourse
		if err := rows.Scan(&pc.CourseID, &pc.Title, &pc.Enrollments); err != nil {
			return nil, fmt.Errorf("failed to scan popular course: %w", err)
		}
		courses = append(courses, pc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return courses, nil
}

// CourseCompletionCounts returns total and completed enrollments per course, whatever its status.
// CompletionRate is left for the caller to derive.
func (r *analyticsRepository) CourseCompletionCounts(ctx context.Context) ([]models.CourseCompletionRate, error) {
	query := `
		SELECT c.id, c.title, COUNT(e.id), COALESCE(SUM(e.completed_at IS NOT NULL), 0)
		FROM courses c
		LEFT JOIN course_enrollments e ON e.course_id = c.id
		GROUP BY c.id, c.title
		ORDER BY c.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query course completion: %w", err)
	}
	defer rows.Close()

	rates := []models.CourseCompletionRate{}
	for rows.Next() {
		var cr models.CourseCompletionRate
		if err := rows.Scan(&cr.CourseID, &cr.Title, &cr.TotalEnrollments, &cr.CompletedEnrollments); err != nil {
			return nil, fmt.Errorf("failed to scan course completion: %w", err)
		}
		rates = append(rates, cr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return rates, nil
}

// QuizPerformance returns response counts per quiz.
// AccuracyRate is left for the caller to derive.
func (r *analyticsRepository) QuizPerformance(ctx context.Context) ([]models.QuizPerformance, error) {
	query := `
		SELECT q.id, q.title, COUNT(qr.id), COALESCE(SUM(qr.is_correct), 0)
		FROM quizzes q
		LEFT JOIN quiz_questions qq ON qq.quiz_id = q.id
		LEFT JOIN quiz_responses qr ON qr.question_id = qq.id
		GROUP BY q.id, q.title
		ORDER BY q.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz performance: %w", err)
	}
	defer rows.Close()

	performance := []models.QuizPerformance{}
	for rows.Next() {
		var qp models.QuizPerformance
		if err := rows.Scan(&qp.QuizID, &qp.Title, &qp.TotalResponses, &qp.CorrectResponses); err != nil {
			return nil, fmt.Errorf("failed to scan quiz performance: %w", err)
		}
		performance = append(performance, qp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return performance, nil
}

// OverallResponses counts all responses, correct responses and responses in [from, to)
func (r *analyticsRepository) OverallResponses(ctx context.Context, from, to time.Time) (models.OverallQuizStats, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(is_correct), 0),
			COALESCE(SUM(created_at >= ? AND created_at < ?), 0)
		FROM quiz_responses
	`

	var stats models.OverallQuizStats
	err := r.db.QueryRowContext(ctx, query, from, to).Scan(&stats.TotalResponses, &stats.CorrectResponses, &stats.Responses7d)
	if err != nil {
		return models.OverallQuizStats{}, fmt.Errorf("failed to count quiz responses: %w", err)
	}

	return stats, nil
}

// HardestQuestions returns answered questions ordered by lowest accuracy first.
// AccuracyRate is left for the caller to derive.
func (r *analyticsRepository) HardestQuestions(ctx context.Context, limit int) ([]models.QuestionAccuracy, error) {
	query := `
		SELECT qq.id, qq.quiz_id, qq.question_text, COUNT(qr.id) AS total, COALESCE(SUM(qr.is_correct), 0) AS correct
		FROM quiz_questions qq
		INNER JOIN quiz_responses qr ON qr.question_id = qq.id
		GROUP BY qq.id, qq.quiz_id, qq.question_text
		ORDER BY correct / total ASC, total DESC, qq.id ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query question accuracy: %w", err)
	}
	defer rows.Close()

	questions := []models.QuestionAccuracy{}
	for rows.Next() {
		var qa models.QuestionAccuracy
		if err := rows.Scan(&qa.QuestionID, &qa.QuizID, &qa.QuestionText, &qa.TotalResponses, &qa.CorrectResponses); err != nil {
			return nil, fmt.Errorf("failed to scan question accuracy: %w", err)
		}
		questions = append(questions, qa)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return questions, nil
}
