package services

import (
	"context"
	"fmt"
	"time"

	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/internal/repositories"
	"github.com/roadsafety/backend/libs/apperrors"
	"github.com/roadsafety/backend/libs/auth"
	"go.uber.org/zap"
)

// AnalyticsRepository is the interface that wraps the read-only aggregate queries over core tables.
//
// Windowed methods count rows with from <= timestamp < to.
type AnalyticsRepository interface {
	UserStats(ctx context.Context) (models.UserStats, error)
	ContentCounts(ctx context.Context) (courses, lessons, quizzes models.Count, err error)
	EnrollmentStats(ctx context.Context) (models.EnrollmentStats, error)
	RecentActivity(ctx context.Context, from, to time.Time) (models.RecentActivity, error)
	RegistrationTrend(ctx context.Context, from, to time.Time) ([]models.DailyCount, error)
	// Method ActiveUsers count distinct users with a progress update inside the window.
	ActiveUsers(ctx context.Context, from, to time.Time) (int, error)
	LanguagePreferences(ctx context.Context) ([]models.LabelCount, error)
	// Method CourseDistribution count active courses grouped by "column".
	//
	// Only the language and difficulty_level columns are accepted.
	CourseDistribution(ctx context.Context, column string) ([]models.LabelCount, error)
	PopularCourses(ctx context.Context, limit int) ([]models.PopularCourse, error)
	CourseCompletionCounts(ctx context.Context) ([]models.CourseCompletionRate, error)
	QuizPerformance(ctx context.Context) ([]models.QuizPerformance, error)
	OverallResponses(ctx context.Context, from, to time.Time) (models.OverallQuizStats, error)
	HardestQuestions(ctx context.Context, limit int) ([]models.QuestionAccuracy, error)
}

// SessionCounter reports the number of live quiz sessions
type SessionCounter interface {
	Count() int
}

const (
	recentWindow         = 7 * 24 * time.Hour
	defaultAnalyticsDays = 30
	maxAnalyticsDays     = 365
	popularCoursesLimit  = 10
	hardestQuestionLimit = 20
)

type analyticsService struct {
	repo     AnalyticsRepository
	sessions SessionCounter
	logger   *zap.Logger
	now      func() time.Time
}

// NewAnalyticsService creates a new analytics service. "sessions" may be nil.
func NewAnalyticsService(repo AnalyticsRepository, sessions SessionCounter, logger *zap.Logger) *analyticsService {
	return &analyticsService{
		repo:     repo,
		sessions: sessions,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func requireAdmin(p auth.Principal) error {
	if !auth.RequireAdmin(p) {
		return apperrors.Forbidden("admin access required")
	}
	return nil
}

// DashboardStats returns the admin dashboard summary
func (s *analyticsService) DashboardStats(ctx context.Context, p auth.Principal) (*models.DashboardStats, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	users, err := s.repo.UserStats(ctx)
	if err != nil {
		return nil, s.fail("failed to get user stats", err)
	}
	courses, lessons, quizzes, err := s.repo.ContentCounts(ctx)
	if err != nil {
		return nil, s.fail("failed to get content counts", err)
	}
	enrollments, err := s.repo.EnrollmentStats(ctx)
	if err != nil {
		return nil, s.fail("failed to get enrollment stats", err)
	}
	now := s.now()
	recent, err := s.repo.RecentActivity(ctx, now.Add(-recentWindow), now)
	if err != nil {
		return nil, s.fail("failed to get recent activity", err)
	}

	stats := &models.DashboardStats{
		Users:          users,
		Courses:        courses,
		Lessons:        lessons,
		Quizzes:        quizzes,
		Enrollments:    enrollments,
		RecentActivity: recent,
	}
	if s.sessions != nil {
		stats.LiveSessions = s.sessions.Count()
	}

	return stats, nil
}

// UserAnalytics describes registrations over the last "days" days and learner activity.
// A zero "days" means 30.
func (s *analyticsService) UserAnalytics(ctx context.Context, p auth.Principal, days int) (*models.UserAnalytics, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if days == 0 {
		days = defaultAnalyticsDays
	}
	if days < 1 || days > maxAnalyticsDays {
		return nil, apperrors.Validation("days must be between 1 and %d", maxAnalyticsDays)
	}

	now := s.now()
	trend, err := s.repo.RegistrationTrend(ctx, now.AddDate(0, 0, -days), now)
	if err != nil {
		return nil, s.fail("failed to get registration trend", err)
	}
	active7d, err := s.repo.ActiveUsers(ctx, now.Add(-recentWindow), now)
	if err != nil {
		return nil, s.fail("failed to count active users", err)
	}
	active30d, err := s.repo.ActiveUsers(ctx, now.AddDate(0, 0, -30), now)
	if err != nil {
		return nil, s.fail("failed to count active users", err)
	}
	languages, err := s.repo.LanguagePreferences(ctx)
	if err != nil {
		return nil, s.fail("failed to get language preferences", err)
	}

	return &models.UserAnalytics{
		Days:                days,
		RegistrationTrend:   trend,
		ActiveUsers7d:       active7d,
		ActiveUsers30d:      active30d,
		LanguagePreferences: languages,
	}, nil
}

// CourseAnalytics describes course popularity, completion and catalog distributions
func (s *analyticsService) CourseAnalytics(ctx context.Context, p auth.Principal) (*models.CourseAnalytics, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	popular, err := s.repo.PopularCourses(ctx, popularCoursesLimit)
	if err != nil {
		return nil, s.fail("failed to get popular courses", err)
	}
	rates, err := s.repo.CourseCompletionCounts(ctx)
	if err != nil {
		return nil, s.fail("failed to get course completion", err)
	}
	for i := range rates {
		rates[i].CompletionRate = percentage(rates[i].CompletedEnrollments, rates[i].TotalEnrollments)
	}
	languages, err := s.repo.CourseDistribution(ctx, repositories.DistributionLanguage)
	if err != nil {
		return nil, s.fail("failed to get course languages", err)
	}
	difficulties, err := s.repo.CourseDistribution(ctx, repositories.DistributionDifficulty)
	if err != nil {
		return nil, s.fail("failed to get course difficulties", err)
	}

	return &models.CourseAnalytics{
		PopularCourses:         popular,
		CompletionRates:        rates,
		LanguageDistribution:   languages,
		DifficultyDistribution: difficulties,
	}, nil
}

// QuizAnalytics describes learner performance per quiz, overall and on the hardest questions
func (s *analyticsService) QuizAnalytics(ctx context.Context, p auth.Principal) (*models.QuizAnalytics, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	performance, err := s.repo.QuizPerformance(ctx)
	if err != nil {
		return nil, s.fail("failed to get quiz performance", err)
	}
	for i := range performance {
		performance[i].AccuracyRate = percentage(performance[i].CorrectResponses, performance[i].TotalResponses)
	}
	now := s.now()
	overall, err := s.repo.OverallResponses(ctx, now.Add(-recentWindow), now)
	if err != nil {
		return nil, s.fail("failed to get overall responses", err)
	}
	overall.OverallAccuracy = percentage(overall.CorrectResponses, overall.TotalResponses)
	hardest, err := s.repo.HardestQuestions(ctx, hardestQuestionLimit)
	if err != nil {
		return nil, s.fail("failed to get hardest questions", err)
	}
	for i := range hardest {
		hardest[i].AccuracyRate = percentage(hardest[i].CorrectResponses, hardest[i].TotalResponses)
	}

	return &models.QuizAnalytics{
		QuizPerformance:  performance,
		Overall:          overall,
		HardestQuestions: hardest,
	}, nil
}

// UserCount returns the total and active user counters
func (s *analyticsService) UserCount(ctx context.Context, p auth.Principal) (*models.UserCount, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	users, err := s.repo.UserStats(ctx)
	if err != nil {
		return nil, s.fail("failed to get user stats", err)
	}

	return &models.UserCount{TotalUsers: users.Total, ActiveUsers: users.Active}, nil
}

func (s *analyticsService) fail(msg string, err error) error {
	s.logger.Error(msg, zap.Error(err))
	return fmt.Errorf("%s: %w", msg, err)
}
