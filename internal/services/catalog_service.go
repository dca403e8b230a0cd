package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/apperrors"
	"go.uber.org/zap"
)

// CoursesRepository is the interface that wraps methods for Courses table data access
type CoursesRepository interface {
	// Method GetByID retrieve a course by its ID regardless of its status.
	//
	// If the course does not exist, an apperrors NotFound error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Course, error)
	// Method List retrieve courses matching "filter" ordered by ID.
	//
	// "filter" parameter carries language, category and difficulty filters, the page window and the inactive flag.
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	// Method Create insert a course and set its ID.
	Create(ctx context.Context, course *models.Course) error
	// Method Update apply the non-nil fields of "req" to a course.
	//
	// An empty request returns a Validation error, a missing course returns NotFound.
	Update(ctx context.Context, id int, req *models.UpdateCourseRequest) error
	// Method SetStatus change the lifecycle status of a course.
	SetStatus(ctx context.Context, id int, status models.Status) error
	// Method Delete remove a course together with its content.
	//
	// If enrollments, progress rows or responses still reference the course, a Conflict error will be returned.
	Delete(ctx context.Context, id int) error
}

// ModulesRepository is the interface that wraps methods for Modules table data access
type ModulesRepository interface {
	// Method GetByID retrieve a module by its ID regardless of its status.
	GetByID(ctx context.Context, id int) (*models.Module, error)
	// Method ListByCourse retrieve the modules of a course ordered by order_index, then ID.
	//
	// Inactive modules are returned only when "includeInactive" is true.
	ListByCourse(ctx context.Context, courseID int, includeInactive bool) ([]models.Module, error)
	Create(ctx context.Context, module *models.Module) error
	Update(ctx context.Context, id int, req *models.UpdateModuleRequest) error
}

// LessonsRepository is the interface that wraps methods for Lessons table data access
type LessonsRepository interface {
	// Method GetByID retrieve a lesson by its ID regardless of its status.
	GetByID(ctx context.Context, id int) (*models.Lesson, error)
	// Method ListByModule retrieve the lessons of a module ordered by order_index, then ID.
	//
	// Please reference ModulesRepository.ListByCourse for "includeInactive" parameter.
	ListByModule(ctx context.Context, moduleID int, includeInactive bool) ([]models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, id int, req *models.UpdateLessonRequest) error
	SetStatus(ctx context.Context, id int, status models.Status) error
}

// QuizzesRepository is the interface that wraps methods for Quizzes table data access
type QuizzesRepository interface {
	// Method GetByID retrieve a quiz by its ID regardless of its status.
	GetByID(ctx context.Context, id int) (*models.Quiz, error)
	// Method List retrieve active quizzes matching "filter" ordered by ID.
	List(ctx context.Context, filter models.QuizFilter) ([]models.Quiz, error)
	// Method Create insert a quiz and set its ID.
	//
	// A second quiz for the same lesson returns a Conflict error.
	Create(ctx context.Context, quiz *models.Quiz) error
	Update(ctx context.Context, id int, req *models.UpdateQuizRequest) error
}

// QuestionsRepository is the interface that wraps methods for QuizQuestions table data access
type QuestionsRepository interface {
	// Method GetByID retrieve a question by its ID regardless of its status.
	GetByID(ctx context.Context, id int) (*models.QuizQuestion, error)
	// Method ListByQuiz retrieve the questions of a quiz in creation order.
	ListByQuiz(ctx context.Context, quizID int, includeInactive bool) ([]models.QuizQuestion, error)
	Create(ctx context.Context, q *models.QuizQuestion) error
	// Method Update apply the non-nil fields of "req" to a question.
	//
	// The options and answer index must be validated against the merged state before calling it.
	Update(ctx context.Context, id int, req *models.UpdateQuestionRequest) error
	SetStatus(ctx context.Context, id int, status models.Status) error
}

const (
	defaultLanguage = "english"
	minOptions      = 2
	defaultPoints   = 1
)

type catalogService struct {
	courses   CoursesRepository
	modules   ModulesRepository
	lessons   LessonsRepository
	quizzes   QuizzesRepository
	questions QuestionsRepository
	logger    *zap.Logger
}

// NewCatalogService creates a new content catalog service
func NewCatalogService(
	courses CoursesRepository,
	modules ModulesRepository,
	lessons LessonsRepository,
	quizzes QuizzesRepository,
	questions QuestionsRepository,
	logger *zap.Logger,
) *catalogService {
	return &catalogService{
		courses:   courses,
		modules:   modules,
		lessons:   lessons,
		quizzes:   quizzes,
		questions: questions,
		logger:    logger,
	}
}

// ListCourses retrieves a page of courses.
//
// Inactive courses are included only when filter.IncludeInactive is set, which handlers do for admins.
// A non-positive limit falls back to 100 and larger limits are capped at 100.
func (s *catalogService) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	if filter.Skip < 0 {
		return nil, apperrors.Validation("skip must not be negative")
	}
	if filter.Difficulty != "" && !filter.Difficulty.IsValid() {
		return nil, apperrors.Validation("invalid difficulty level: %s", filter.Difficulty)
	}
	filter.Limit = normalizeLimit(filter.Limit)

	courses, err := s.courses.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list courses", zap.Error(err))
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return courses, nil
}

// GetCourse retrieves a course. Inactive courses are visible only with includeInactive.
func (s *catalogService) GetCourse(ctx context.Context, id int, includeInactive bool) (*models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if !includeInactive && course.Status != models.StatusActive {
		return nil, apperrors.NotFound("course not found")
	}

	return course, nil
}

// CreateCourse validates and stores a new active course
func (s *catalogService) CreateCourse(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error) {
	if isBlank(req.Title) {
		return nil, apperrors.Validation("title is required")
	}
	if isBlank(req.Language) {
		return nil, apperrors.Validation("language is required")
	}
	difficulty := req.DifficultyLevel
	if difficulty == "" {
		difficulty = models.DifficultyBeginner
	}
	if !difficulty.IsValid() {
		return nil, apperrors.Validation("invalid difficulty level: %s", difficulty)
	}
	if req.EstimatedDuration != nil && *req.EstimatedDuration < 0 {
		return nil, apperrors.Validation("estimated_duration must not be negative")
	}

	course := &models.Course{
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		Language:          strings.TrimSpace(req.Language),
		Category:          req.Category,
		DifficultyLevel:   difficulty,
		EstimatedDuration: req.EstimatedDuration,
		Status:            models.StatusActive,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		s.logger.Error("failed to create course", zap.Error(err))
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("Course created", zap.Int("course_id", course.ID))
	return s.courses.GetByID(ctx, course.ID)
}

// UpdateCourse applies a partial update and returns the stored course
func (s *catalogService) UpdateCourse(ctx context.Context, id int, req *models.UpdateCourseRequest) (*models.Course, error) {
	if req.Title != nil && isBlank(*req.Title) {
		return nil, apperrors.Validation("title must not be empty")
	}
	if req.Language != nil && isBlank(*req.Language) {
		return nil, apperrors.Validation("language must not be empty")
	}
	if req.DifficultyLevel != nil && !req.DifficultyLevel.IsValid() {
		return nil, apperrors.Validation("invalid difficulty level: %s", *req.DifficultyLevel)
	}
	if req.Status != nil && !req.Status.IsValid() {
		return nil, apperrors.Validation("invalid status: %s", *req.Status)
	}
	if req.EstimatedDuration != nil && *req.EstimatedDuration < 0 {
		return nil, apperrors.Validation("estimated_duration must not be negative")
	}

	if err := s.courses.Update(ctx, id, req); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	return s.courses.GetByID(ctx, id)
}

// DeactivateCourse soft deletes a course
func (s *catalogService) DeactivateCourse(ctx context.Context, id int) error {
	if err := s.courses.SetStatus(ctx, id, models.StatusInactive); err != nil {
		return fmt.Errorf("failed to deactivate course: %w", err)
	}
	s.logger.Info("Course deactivated", zap.Int("course_id", id))
	return nil
}

// DeleteCourse hard deletes a course and its content.
// It fails with Conflict while learner data references the course.
func (s *catalogService) DeleteCourse(ctx context.Context, id int) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	s.logger.Info("Course deleted", zap.Int("course_id", id))
	return nil
}

// ListModules retrieves the active modules of a visible course
func (s *catalogService) ListModules(ctx context.Context, courseID int) ([]models.Module, error) {
	if _, err := s.activeCourse(ctx, courseID); err != nil {
		return nil, err
	}

	modules, err := s.modules.ListByCourse(ctx, courseID, false)
	if err != nil {
		s.logger.Error("failed to list modules", zap.Error(err), zap.Int("course_id", courseID))
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}

	return modules, nil
}

// CreateModule adds a module to an active course
func (s *catalogService) CreateModule(ctx context.Context, courseID int, req *models.CreateModuleRequest) (*models.Module, error) {
	if isBlank(req.Title) {
		return nil, apperrors.Validation("title is required")
	}
	if req.OrderIndex < 0 {
		return nil, apperrors.Validation("order_index must not be negative")
	}
	if _, err := s.activeCourse(ctx, courseID); err != nil {
		return nil, err
	}

	module := &models.Module{
		CourseID:    courseID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		OrderIndex:  req.OrderIndex,
		Status:      models.StatusActive,
	}
	if err := s.modules.Create(ctx, module); err != nil {
		s.logger.Error("failed to create module", zap.Error(err), zap.Int("course_id", courseID))
		return nil, fmt.Errorf("failed to create module: %w", err)
	}

	return s.modules.GetByID(ctx, module.ID)
}

// UpdateModule applies a partial update and returns the stored module
func (s *catalogService) UpdateModule(ctx context.Context, id int, req *models.UpdateModuleRequest) (*models.Module, error) {
	if req.Title != nil && isBlank(*req.Title) {
		return nil, apperrors.Validation("title must not be empty")
	}
	if req.OrderIndex != nil && *req.OrderIndex < 0 {
		return nil, apperrors.Validation("order_index must not be negative")
	}
	if req.Status != nil && !req.Status.IsValid() {
		return nil, apperrors.Validation("invalid status: %s", *req.Status)
	}

	if err := s.modules.Update(ctx, id, req); err != nil {
		return nil, fmt.Errorf("failed to update module: %w", err)
	}

	return s.modules.GetByID(ctx, id)
}

// ListLessons retrieves the active lessons of an active module
func (s *catalogService) ListLessons(ctx context.Context, moduleID int) ([]models.Lesson, error) {
	if _, err := s.activeModule(ctx, moduleID); err != nil {
		return nil, err
	}

	lessons, err := s.lessons.ListByModule(ctx, moduleID, false)
	if err != nil {
		s.logger.Error("failed to list lessons", zap.Error(err), zap.Int("module_id", moduleID))
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}

	return lessons, nil
}

// GetLesson retrieves a lesson. Inactive lessons are visible only with includeInactive.
func (s *catalogService) GetLesson(ctx context.Context, id int, includeInactive bool) (*models.Lesson, error) {
	lesson, err := s.lessons.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	if !includeInactive && lesson.Status != models.StatusActive {
		return nil, apperrors.NotFound("lesson not found")
	}

	return lesson, nil
}

// CreateLesson adds a lesson to an active module.
// The lesson type defaults to text and the language to english.
func (s *catalogService) CreateLesson(ctx context.Context, moduleID int, req *models.CreateLessonRequest) (*models.Lesson, error) {
	if isBlank(req.Title) {
		return nil, apperrors.Validation("title is required")
	}
	if req.OrderIndex < 0 {
		return nil, apperrors.Validation("order_index must not be negative")
	}
	lessonType := req.LessonType
	if lessonType == "" {
		lessonType = models.LessonTypeText
	}
	if !lessonType.IsValid() {
		return nil, apperrors.Validation("invalid lesson type: %s", lessonType)
	}
	if req.EstimatedDuration != nil && *req.EstimatedDuration < 0 {
		return nil, apperrors.Validation("estimated_duration must not be negative")
	}
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = defaultLanguage
	}
	if _, err := s.activeModule(ctx, moduleID); err != nil {
		return nil, err
	}

	lesson := &models.Lesson{
		ModuleID:          moduleID,
		Title:             strings.TrimSpace(req.Title),
		Content:           req.Content,
		Language:          language,
		OrderIndex:        req.OrderIndex,
		LessonType:        lessonType,
		MediaURL:          req.MediaURL,
		EstimatedDuration: req.EstimatedDuration,
		Status:            models.StatusActive,
	}
	if err := s.lessons.Create(ctx, lesson); err != nil {
		s.logger.Error("failed to create lesson", zap.Error(err), zap.Int("module_id", moduleID))
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	return s.lessons.GetByID(ctx, lesson.ID)
}

// UpdateLesson applies a partial update and returns the stored lesson
func (s *catalogService) UpdateLesson(ctx context.Context, id int, req *models.UpdateLessonRequest) (*models.Lesson, error) {
	if req.Title != nil && isBlank(*req.Title) {
		return nil, apperrors.Validation("title must not be empty")
	}
	if req.OrderIndex != nil && *req.OrderIndex < 0 {
		return nil, apperrors.Validation("order_index must not be negative")
	}
	if req.LessonType != nil && !req.LessonType.IsValid() {
		return nil, apperrors.Validation("invalid lesson type: %s", *req.LessonType)
	}
	if req.Status != nil && !req.Status.IsValid() {
		return nil, apperrors.Validation("invalid status: %s", *req.Status)
	}
	if req.EstimatedDuration != nil && *req.EstimatedDuration < 0 {
		return nil, apperrors.Validation("estimated_duration must not be negative")
	}

	if err := s.lessons.Update(ctx, id, req); err != nil {
		return nil, fmt.Errorf("failed to update lesson: %w", err)
	}

	return s.lessons.GetByID(ctx, id)
}

// DeleteLesson soft deletes a lesson. The row and its learner data are kept.
func (s *catalogService) DeleteLesson(ctx context.Context, id int) error {
	if err := s.lessons.SetStatus(ctx, id, models.StatusInactive); err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	s.logger.Info("Lesson deactivated", zap.Int("lesson_id", id))
	return nil
}

// ListQuizzes retrieves active quizzes, optionally filtered by language or lesson
func (s *catalogService) ListQuizzes(ctx context.Context, filter models.QuizFilter) ([]models.Quiz, error) {
	quizzes, err := s.quizzes.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list quizzes", zap.Error(err))
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	return quizzes, nil
}

// GetQuiz retrieves an active quiz
func (s *catalogService) GetQuiz(ctx context.Context, id int) (*models.Quiz, error) {
	return activeQuiz(ctx, s.quizzes, id)
}

// CreateQuiz validates and stores a new quiz.
//
// When LessonID is set the lesson must exist and be active, and it must not own a quiz yet.
// The passing score defaults to 70.
func (s *catalogService) CreateQuiz(ctx context.Context, req *models.CreateQuizRequest) (*models.Quiz, error) {
	if isBlank(req.Title) {
		return nil, apperrors.Validation("title is required")
	}
	difficulty := req.DifficultyLevel
	if difficulty == "" {
		difficulty = models.DifficultyBeginner
	}
	if !difficulty.IsValid() {
		return nil, apperrors.Validation("invalid difficulty level: %s", difficulty)
	}
	passingScore := models.DefaultPassingScore
	if req.PassingScore != nil {
		passingScore = *req.PassingScore
	}
	if err := validatePassingScore(passingScore); err != nil {
		return nil, err
	}
	if req.TimeLimit != nil && *req.TimeLimit <= 0 {
		return nil, apperrors.Validation("time_limit must be positive")
	}
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = defaultLanguage
	}

	if req.LessonID != nil {
		lesson, err := s.lessons.GetByID(ctx, *req.LessonID)
		if err != nil {
			return nil, fmt.Errorf("failed to get lesson: %w", err)
		}
		if lesson.Status != models.StatusActive {
			return nil, apperrors.NotFound("lesson not found")
		}
	}

	quiz := &models.Quiz{
		LessonID:        req.LessonID,
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		Language:        language,
		DifficultyLevel: difficulty,
		PassingScore:    passingScore,
		TimeLimit:       req.TimeLimit,
		Status:          models.StatusActive,
	}
	if err := s.quizzes.Create(ctx, quiz); err != nil {
		s.logger.Error("failed to create quiz", zap.Error(err))
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	return s.quizzes.GetByID(ctx, quiz.ID)
}

// UpdateQuiz applies a partial update and returns the stored quiz
func (s *catalogService) UpdateQuiz(ctx context.Context, id int, req *models.UpdateQuizRequest) (*models.Quiz, error) {
	if req.Title != nil && isBlank(*req.Title) {
		return nil, apperrors.Validation("title must not be empty")
	}
	if req.DifficultyLevel != nil && !req.DifficultyLevel.IsValid() {
		return nil, apperrors.Validation("invalid difficulty level: %s", *req.DifficultyLevel)
	}
	if req.PassingScore != nil {
		if err := validatePassingScore(*req.PassingScore); err != nil {
			return nil, err
		}
	}
	if req.TimeLimit != nil && *req.TimeLimit <= 0 {
		return nil, apperrors.Validation("time_limit must be positive")
	}
	if req.Status != nil && !req.Status.IsValid() {
		return nil, apperrors.Validation("invalid status: %s", *req.Status)
	}

	if err := s.quizzes.Update(ctx, id, req); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}

	return s.quizzes.GetByID(ctx, id)
}

// CreateQuestion adds a multiple choice question to an active quiz.
//
// At least two options are required and the correct answer index must address one of them.
func (s *catalogService) CreateQuestion(ctx context.Context, quizID int, req *models.CreateQuestionRequest) (*models.QuizQuestion, error) {
	if isBlank(req.QuestionText) {
		return nil, apperrors.Validation("question_text is required")
	}
	if req.CorrectAnswerIndex == nil {
		return nil, apperrors.Validation("correct_answer_index is required")
	}
	if err := validateOptions(req.Options, *req.CorrectAnswerIndex); err != nil {
		return nil, err
	}
	points := defaultPoints
	if req.Points != nil {
		points = *req.Points
	}
	if points < 0 {
		return nil, apperrors.Validation("points must not be negative")
	}
	questionType := req.QuestionType
	if questionType == "" {
		questionType = models.QuestionTypeMultipleChoice
	}
	if questionType != models.QuestionTypeMultipleChoice {
		return nil, apperrors.Validation("unsupported question type: %s", questionType)
	}
	if _, err := activeQuiz(ctx, s.quizzes, quizID); err != nil {
		return nil, err
	}

	question := &models.QuizQuestion{
		QuizID:             quizID,
		QuestionText:       strings.TrimSpace(req.QuestionText),
		Options:            req.Options,
		CorrectAnswerIndex: *req.CorrectAnswerIndex,
		Explanation:        req.Explanation,
		Points:             points,
		QuestionType:       questionType,
		Status:             models.StatusActive,
	}
	if err := s.questions.Create(ctx, question); err != nil {
		s.logger.Error("failed to create question", zap.Error(err), zap.Int("quiz_id", quizID))
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	return s.questions.GetByID(ctx, question.ID)
}

// UpdateQuestion applies a partial update.
// Options and the answer index are validated against the merged stored and requested state.
func (s *catalogService) UpdateQuestion(ctx context.Context, id int, req *models.UpdateQuestionRequest) (*models.QuizQuestion, error) {
	if req.QuestionText != nil && isBlank(*req.QuestionText) {
		return nil, apperrors.Validation("question_text must not be empty")
	}
	if req.Points != nil && *req.Points < 0 {
		return nil, apperrors.Validation("points must not be negative")
	}
	if req.Status != nil && !req.Status.IsValid() {
		return nil, apperrors.Validation("invalid status: %s", *req.Status)
	}

	current, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	options := current.Options
	if req.Options != nil {
		options = req.Options
	}
	index := current.CorrectAnswerIndex
	if req.CorrectAnswerIndex != nil {
		index = *req.CorrectAnswerIndex
	}
	if err := validateOptions(options, index); err != nil {
		return nil, err
	}

	if err := s.questions.Update(ctx, id, req); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	return s.questions.GetByID(ctx, id)
}

// DeactivateQuestion soft deletes a question. Stored responses keep referencing it.
func (s *catalogService) DeactivateQuestion(ctx context.Context, id int) error {
	if err := s.questions.SetStatus(ctx, id, models.StatusInactive); err != nil {
		return fmt.Errorf("failed to deactivate question: %w", err)
	}
	return nil
}

func (s *catalogService) activeCourse(ctx context.Context, id int) (*models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course.Status != models.StatusActive {
		return nil, apperrors.NotFound("course not found")
	}
	return course, nil
}

func (s *catalogService) activeModule(ctx context.Context, id int) (*models.Module, error) {
	module, err := s.modules.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	if module.Status != models.StatusActive {
		return nil, apperrors.NotFound("module not found")
	}
	return module, nil
}

// QuizReader is the read side of QuizzesRepository
type QuizReader interface {
	GetByID(ctx context.Context, id int) (*models.Quiz, error)
}

func activeQuiz(ctx context.Context, quizzes QuizReader, id int) (*models.Quiz, error) {
	quiz, err := quizzes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz.Status != models.StatusActive {
		return nil, apperrors.NotFound("quiz not found")
	}
	return quiz, nil
}

// validateOptions checks the multiple choice invariant
func validateOptions(options []string, correctIndex int) error {
	if len(options) < minOptions {
		return apperrors.Validation("a question needs at least %d options", minOptions)
	}
	for i, option := range options {
		if isBlank(option) {
			return apperrors.Validation("option %d must not be empty", i)
		}
	}
	if correctIndex < 0 || correctIndex >= len(options) {
		return apperrors.Validation("correct_answer_index must be between 0 and %d", len(options)-1)
	}
	return nil
}

func validatePassingScore(score int) error {
	if score < 0 || score > 100 {
		return apperrors.Validation("passing_score must be between 0 and 100")
	}
	return nil
}
