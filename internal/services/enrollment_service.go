package services

import (
	"context"
	"fmt"
	"time"

	"github.com/roadsafety/backend/internal/events"
	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/apperrors"
	"go.uber.org/zap"
)

// EnrollmentsRepository is the interface that wraps methods for CourseEnrollments table data access
type EnrollmentsRepository interface {
	// Method Exists report whether "userID" is enrolled in "courseID".
	Exists(ctx context.Context, userID, courseID int) (bool, error)
	// Method Create insert an enrollment and set its ID.
	//
	// A concurrent duplicate is rejected by the unique (user, course) key and returned as a Conflict error.
	Create(ctx context.Context, e *models.Enrollment) error
	// Method GetByUserAndCourse retrieve the enrollment of a user in a course.
	//
	// If the user is not enrolled, a NotFound error will be returned together with "nil" value.
	GetByUserAndCourse(ctx context.Context, userID, courseID int) (*models.Enrollment, error)
	// Method ListByUser retrieve the enrollments of a user, newest first.
	ListByUser(ctx context.Context, userID int) ([]models.Enrollment, error)
	// Method UpdateProgressSnapshot store the advisory progress percentage.
	//
	// "completedAt" is written only when the enrollment has no completion time yet.
	UpdateProgressSnapshot(ctx context.Context, id int, percentage float64, completedAt *time.Time) error
}

// ProgressRepository is the interface that wraps methods for UserProgress table data access
type ProgressRepository interface {
	// Method Upsert insert or update the progress of a user on a lesson in one statement.
	//
	// Completion is monotonic: a stored completed row stays completed and keeps its first completion date.
	// Nil fields of "update" keep their stored values. The stored row is returned.
	Upsert(ctx context.Context, userID, lessonID int, update models.ProgressUpdate, now time.Time) (*models.UserProgress, error)
	// Method ListByUserAndCourse retrieve the progress rows of a user for the lessons of a course.
	ListByUserAndCourse(ctx context.Context, userID, courseID int) ([]models.UserProgress, error)
	// Method CountCourseProgress count the lessons of a course and the ones the user completed.
	CountCourseProgress(ctx context.Context, userID, courseID int) (total int, completed int, err error)
}

// CourseReader is the read side of CoursesRepository
type CourseReader interface {
	GetByID(ctx context.Context, id int) (*models.Course, error)
}

// LessonReader is the read side of LessonsRepository
type LessonReader interface {
	GetByID(ctx context.Context, id int) (*models.Lesson, error)
}

type enrollmentService struct {
	enrollments EnrollmentsRepository
	progress    ProgressRepository
	courses     CourseReader
	lessons     LessonReader
	publisher   EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewEnrollmentService creates a new enrollment and progress service
func NewEnrollmentService(
	enrollments EnrollmentsRepository,
	progress ProgressRepository,
	courses CourseReader,
	lessons LessonReader,
	publisher EventPublisher,
	logger *zap.Logger,
) *enrollmentService {
	return &enrollmentService{
		enrollments: enrollments,
		progress:    progress,
		courses:     courses,
		lessons:     lessons,
		publisher:   publisher,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Enroll enrolls a user in a course.
//
// An existing enrollment is a Conflict whatever the course status is.
// A missing or inactive course is NotFound.
func (s *enrollmentService) Enroll(ctx context.Context, userID, courseID int) (*models.Enrollment, error) {
	if courseID <= 0 {
		return nil, apperrors.Validation("invalid course id")
	}

	exists, err := s.enrollments.Exists(ctx, userID, courseID)
	if err != nil {
		s.logger.Error("failed to check enrollment", zap.Error(err), zap.Int("user_id", userID), zap.Int("course_id", courseID))
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if exists {
		return nil, apperrors.Conflict("already enrolled in this course")
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course.Status != models.StatusActive {
		return nil, apperrors.NotFound("course not found")
	}

	enrollment := &models.Enrollment{
		UserID:             userID,
		CourseID:           courseID,
		EnrolledAt:         s.now(),
		ProgressPercentage: 0,
	}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, fmt.Errorf("failed to enroll: %w", err)
	}

	s.logger.Info("User enrolled", zap.Int("user_id", userID), zap.Int("course_id", courseID))
	publish(ctx, s.publisher, s.logger, events.TopicEnrollmentCreated, events.Event{
		UserID:     userID,
		EntityID:   courseID,
		OccurredAt: enrollment.EnrolledAt,
		Data:       map[string]any{"enrollment_id": enrollment.ID},
	})

	return enrollment, nil
}

// ListEnrollments retrieves the enrollments of a user, newest first
func (s *enrollmentService) ListEnrollments(ctx context.Context, userID int) ([]models.Enrollment, error) {
	enrollments, err := s.enrollments.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list enrollments", zap.Error(err), zap.Int("user_id", userID))
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	return enrollments, nil
}

// RecordProgress stores a progress submission for a lesson.
//
// Any existing lesson accepts progress, including inactive lessons and lessons of inactive courses.
func (s *enrollmentService) RecordProgress(ctx context.Context, userID, lessonID int, update models.ProgressUpdate) (*models.UserProgress, error) {
	if update.TimeSpent != nil && *update.TimeSpent < 0 {
		return nil, apperrors.Validation("time_spent must not be negative")
	}
	if update.Score != nil && (*update.Score < 0 || *update.Score > 100) {
		return nil, apperrors.Validation("score must be between 0 and 100")
	}

	if _, err := s.lessons.GetByID(ctx, lessonID); err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	now := s.now()
	progress, err := s.progress.Upsert(ctx, userID, lessonID, update, now)
	if err != nil {
		s.logger.Error("failed to record progress", zap.Error(err), zap.Int("user_id", userID), zap.Int("lesson_id", lessonID))
		return nil, fmt.Errorf("failed to record progress: %w", err)
	}

	if progress.Completed {
		publish(ctx, s.publisher, s.logger, events.TopicLessonCompleted, events.Event{
			UserID:     userID,
			EntityID:   lessonID,
			OccurredAt: now,
			Data:       map[string]any{"time_spent": progress.TimeSpent},
		})
	}

	return progress, nil
}

// CourseProgress computes the live completion of a course for an enrolled user.
//
// The percentage is derived from current lesson counts. The stored snapshot on the
// enrollment is refreshed best-effort and a failure there is only logged.
func (s *enrollmentService) CourseProgress(ctx context.Context, userID, courseID int) (*models.CourseProgress, error) {
	enrollment, err := s.enrollments.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	total, completed, err := s.progress.CountCourseProgress(ctx, userID, courseID)
	if err != nil {
		s.logger.Error("failed to count course progress", zap.Error(err), zap.Int("user_id", userID), zap.Int("course_id", courseID))
		return nil, fmt.Errorf("failed to count course progress: %w", err)
	}

	pct := exactPercentage(completed, total)
	result := &models.CourseProgress{
		CourseID:           courseID,
		TotalLessons:       total,
		CompletedLessons:   completed,
		ProgressPercentage: pct,
		EnrolledAt:         enrollment.EnrolledAt,
		CompletedAt:        enrollment.CompletedAt,
	}

	var completedAt *time.Time
	if pct >= 100 && enrollment.CompletedAt == nil {
		now := s.now()
		completedAt = &now
		result.CompletedAt = completedAt
	}
	// The snapshot column keeps two decimals
	snapshot := round2(pct)
	if snapshot != enrollment.ProgressPercentage || completedAt != nil {
		if err := s.enrollments.UpdateProgressSnapshot(ctx, enrollment.ID, snapshot, completedAt); err != nil {
			s.logger.Warn("failed to refresh enrollment progress", zap.Error(err), zap.Int("enrollment_id", enrollment.ID))
		}
	}

	return result, nil
}

// ListProgress retrieves the progress rows of a user for the lessons of a course
func (s *enrollmentService) ListProgress(ctx context.Context, userID, courseID int) ([]models.UserProgress, error) {
	progress, err := s.progress.ListByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		s.logger.Error("failed to list progress", zap.Error(err), zap.Int("user_id", userID), zap.Int("course_id", courseID))
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	return progress, nil
}
