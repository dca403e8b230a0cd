package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/apperrors"
	"github.com/roadsafety/backend/libs/handlers"
	"go.uber.org/zap"
)

// CatalogService is the interface that wraps methods for course, module, lesson, quiz and question management.
type CatalogService interface {
	// Method ListCourses retrieve courses matching "filter".
	//
	// Inactive courses are listed only when filter.IncludeInactive is set.
	// If the filter is invalid, a Validation error will be returned together with "nil" value.
	ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	// Method GetCourse retrieve a course by ID.
	//
	// Inactive courses are reported as not found unless "includeInactive" is set.
	GetCourse(ctx context.Context, id int, includeInactive bool) (*models.Course, error)
	CreateCourse(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error)
	UpdateCourse(ctx context.Context, id int, req *models.UpdateCourseRequest) (*models.Course, error)
	// Method DeactivateCourse hide a course from learners. Enrollments and progress are kept.
	DeactivateCourse(ctx context.Context, id int) error
	// Method DeleteCourse remove a course permanently.
	//
	// If the course still has enrollments, a Conflict error will be returned.
	DeleteCourse(ctx context.Context, id int) error
	ListModules(ctx context.Context, courseID int) ([]models.Module, error)
	CreateModule(ctx context.Context, courseID int, req *models.CreateModuleRequest) (*models.Module, error)
	UpdateModule(ctx context.Context, id int, req *models.UpdateModuleRequest) (*models.Module, error)
	ListLessons(ctx context.Context, moduleID int) ([]models.Lesson, error)
	GetLesson(ctx context.Context, id int, includeInactive bool) (*models.Lesson, error)
	CreateLesson(ctx context.Context, moduleID int, req *models.CreateLessonRequest) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, id int, req *models.UpdateLessonRequest) (*models.Lesson, error)
	// Method DeleteLesson deactivate a lesson. Progress rows referencing it are kept.
	DeleteLesson(ctx context.Context, id int) error
	ListQuizzes(ctx context.Context, filter models.QuizFilter) ([]models.Quiz, error)
	GetQuiz(ctx context.Context, id int) (*models.Quiz, error)
	CreateQuiz(ctx context.Context, req *models.CreateQuizRequest) (*models.Quiz, error)
	UpdateQuiz(ctx context.Context, id int, req *models.UpdateQuizRequest) (*models.Quiz, error)
	// Method CreateQuestion add a multiple-choice question to an active quiz.
	//
	// The options and the correct answer index are validated together.
	CreateQuestion(ctx context.Context, quizID int, req *models.CreateQuestionRequest) (*models.QuizQuestion, error)
	UpdateQuestion(ctx context.Context, id int, req *models.UpdateQuestionRequest) (*models.QuizQuestion, error)
	DeactivateQuestion(ctx context.Context, id int) error
}

// CatalogHandler handles HTTP requests for the content catalog
type CatalogHandler struct {
	handlers.BaseHandler
	service CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(svc CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers the public catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/courses", h.ListCourses)
	r.Get("/courses/{id}", h.GetCourse)
	r.Get("/courses/{id}/modules", h.ListModules)
	r.Get("/modules/{id}/lessons", h.ListLessons)
	r.Get("/lessons/{id}", h.GetLesson)
	r.Get("/quizzes", h.ListQuizzes)
	r.Get("/quizzes/{id}", h.GetQuiz)
}

// RegisterAdminRoutes registers the catalog management routes. The caller guards them with the admin middleware.
func (h *CatalogHandler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/admin/courses", func(r chi.Router) {
		r.Get("/", h.AdminListCourses)
		r.Post("/", h.CreateCourse)
		r.Put("/{id}", h.UpdateCourse)
		r.Delete("/{id}", h.DeleteCourse)
		r.Post("/{id}/modules", h.CreateModule)
	})
	r.Put("/admin/modules/{id}", h.UpdateModule)
	r.Post("/admin/modules/{id}/lessons", h.CreateLesson)
	r.Put("/admin/lessons/{id}", h.UpdateLesson)
	r.Delete("/admin/lessons/{id}", h.DeleteLesson)
	r.Post("/admin/quizzes", h.CreateQuiz)
	r.Put("/admin/quizzes/{id}", h.UpdateQuiz)
	r.Post("/admin/quizzes/{id}/questions", h.CreateQuestion)
	r.Put("/admin/questions/{id}", h.UpdateQuestion)
	r.Delete("/admin/questions/{id}", h.DeactivateQuestion)
}

func (h *CatalogHandler) courseFilter(r *http.Request) (models.CourseFilter, error) {
	q := r.URL.Query()
	filter := models.CourseFilter{
		Language:   q.Get("language"),
		Category:   q.Get("category"),
		Difficulty: models.DifficultyLevel(q.Get("difficulty")),
	}

	var err error
	if filter.Skip, err = h.IntQuery(r, "skip", 0); err != nil {
		return filter, err
	}
	if filter.Limit, err = h.IntQuery(r, "limit", 0); err != nil {
		return filter, err
	}
	return filter, nil
}

// ListCourses handles GET /api/v1/courses
// @Summary List courses
// @Description Get active courses, optionally filtered by language, category and difficulty
// @Tags catalog
// @Produce json
// @Param language query string false "Course language"
// @Param category query string false "Course category"
// @Param difficulty query string false "beginner, intermediate or advanced"
// @Param skip query int false "Number of courses to skip (default: 0)"
// @Param limit query int false "Page size, at most 100 (default: 100)"
// @Success 200 {array} models.Course
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /api/v1/courses [get]
func (h *CatalogHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	filter, err := h.courseFilter(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	courses, err := h.service.ListCourses(r.Context(), filter)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, courses)
}

// AdminListCourses handles GET /api/v1/admin/courses
// @Summary List all courses
// @Description Get courses including inactive ones
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param language query string false "Course language"
// @Param category query string false "Course category"
// @Param difficulty query string false "beginner, intermediate or advanced"
// @Param skip query int false "Number of courses to skip (default: 0)"
// @Param limit query int false "Page size, at most 100 (default: 100)"
// @Success 200 {array} models.Course
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse
// @Router /api/v1/admin/courses [get]
func (h *CatalogHandler) AdminListCourses(w http.ResponseWriter, r *http.Request) {
	filter, err := h.courseFilter(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	filter.IncludeInactive = true

	courses, err := h.service.ListCourses(r.Context(), filter)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, courses)
}

// GetCourse handles GET /api/v1/courses/{id}
// @Summary Get course
// @Description Get an active course by ID
// @Tags catalog
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} models.Course
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/courses/{id} [get]
func (h *CatalogHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	course, err := h.service.GetCourse(r.Context(), id, false)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, course)
}

// CreateCourse handles POST /api/v1/admin/courses
// @Summary Create course
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateCourseRequest true "Course"
// @Success 201 {object} models.Course
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse
// @Router /api/v1/admin/courses [post]
func (h *CatalogHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCourseRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	course, err := h.service.CreateCourse(r.Context(), &req)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, course)
}

// UpdateCourse handles PUT /api/v1/admin/courses/{id}
// @Summary Update course
// @Description Partial update, only the provided fields change
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body models.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} models.Course
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/admin/courses/{id} [put]
func (h *CatalogHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	var req models.UpdateCourseRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	course, err := h.service.UpdateCourse(r.Context(), id, &req)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, course)
}

// DeleteCourse handles DELETE /api/v1/admin/courses/{id}
// @Summary Deactivate or delete course
// @Description Deactivates the course. With hard=true the course is removed, which fails while enrollments exist.
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param hard query bool false "Remove the course permanently"
// @Success 204 "No Content"
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 409 {object} handlers.ErrorResponse
// @Router /api/v1/admin/courses/{id} [delete]
func (h *CatalogHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	hard := false
	if raw := r.URL.Query().Get("hard"); raw != "" {
		if hard, err = strconv.ParseBool(raw); err != nil {
			h.RespondAppError(w, r, apperrors.Validation("invalid hard: %s", raw))
			return
		}
	}

	if hard {
		err = h.service.DeleteCourse(r.Context(), id)
	} else {
		err = h.service.DeactivateCourse(r.Context(), id)
	}
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListModules handles GET /api/v1/courses/{id}/modules
// @Summary List course modules
// @Tags catalog
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {array} models.Module
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/courses/{id}/modules [get]
func (h *CatalogHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	id, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	modules, err := h.service.ListModules(r.Context(), id)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, modules)
}

// CreateModule handles POST /api/v1/admin/courses/{id}/modules
// @Summary Create module
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body models.CreateModuleRequest true "Module"
// @Success 201 {object} models.Module
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/admin/courses/{id}/modules [post]
func (h *CatalogHandler) CreateModule(w http.ResponseWriter, r *http.Request) {
	courseID, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	var req models.CreateModuleRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	module, err := h.service.CreateModule(r.Context(), courseID, &req)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, module)
}

// UpdateModule handles PUT /api/v1/admin/modules/{id}
// @Summary Update module
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID"
// @Param request body models.UpdateModuleRequest true "Fields to change"
// @Success 200 {object} models.Module
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/admin/modules/{id} [put]
func (h *CatalogHandler) UpdateModule(w http.ResponseWriter, r *http.Request) {
	id, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	var req models.UpdateModuleRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	module, err := h.service.UpdateModule(r.Context(), id, &req)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, module)
}

// ListLessons handles GET /api/v1/modules/{id}/lessons
// @Summary List module lessons
// @Tags catalog
// @Produce json
// @Param id path int true "Module ID"
// @Success 200 {array} models.Lesson
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/modules/{id}/lessons [get]
func (h *CatalogHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	id, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	lessons, err := h.service.ListLessons(r.Context(), id)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, lessons)
}

// GetLesson handles GET /api/v1/lessons/{id}
// @Summary Get lesson
// @Tags catalog
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} models.Lesson
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/lessons/{id} [get]
func (h *CatalogHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	id, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	lesson, err := h.service.GetLesson(r.Context(), id, false)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, lesson)
}

// CreateLesson handles POST /api/v1/admin/modules/{id}/lessons
// @Summary Create lesson
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID"
// @Param request body models.CreateLessonRequest true "Lesson"
// @Success 201 {object} models.Lesson
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/admin/modules/{id}/lessons [post]
func (h *CatalogHandler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	moduleID, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	var req models.CreateLessonRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	lesson, err := h.service.CreateLesson(r.Context(), moduleID, &req)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, lesson)
}

// UpdateLesson handles PUT /api/v1/admin/lessons/{id}
// @Summary Update lesson
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param request body models.UpdateLessonRequest true "Fields to change"
// @Success 200 {object} models.Lesson
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/admin/lessons/{id} [put]
func (h *CatalogHandler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	id, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	var req models.UpdateLessonRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	lesson, err := h.service.UpdateLesson(r.Context(), id, &req)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, lesson)
}

// DeleteLesson handles DELETE /api/v1/admin/lessons/{id}
// @Summary Deactivate lesson
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Success 204 "No Content"
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/admin/lessons/{id} [delete]
func (h *CatalogHandler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	id, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	if err := h.service.DeleteLesson(r.Context(), id); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListQuizzes handles GET /api/v1/quizzes
// @Summary List quizzes
// @Tags quizzes
// @Produce json
// @Param language query string false "Quiz language"
// @Param lesson_id query int false "Quizzes attached to a lesson"
// @Success 200 {array} models.Quiz
// @Failure 400 {object} handlers.ErrorResponse
// @Router /api/v1/quizzes [get]
func (h *CatalogHandler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	filter := models.QuizFilter{Language: r.URL.Query().Get("language")}
	if r.URL.Query().Get("lesson_id") != "" {
		lessonID, err := h.IntQuery(r, "lesson_id", 0)
		if err != nil {
			h.RespondAppError(w, r, err)
			return
		}
		filter.LessonID = &lessonID
	}

	quizzes, err := h.service.ListQuizzes(r.Context(), filter)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, quizzes)
}

// GetQuiz handles GET /api/v1/quizzes/{id}
// @Summary Get quiz
// @Tags quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} models.Quiz
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/quizzes/{id} [get]
func (h *CatalogHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	quiz, err := h.service.GetQuiz(r.Context(), id)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, quiz)
}

// CreateQuiz handles POST /api/v1/admin/quizzes
// @Summary Create quiz
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateQuizRequest true "Quiz"
// @Success 201 {object} models.Quiz
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/admin/quizzes [post]
func (h *CatalogHandler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.CreateQuizRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	quiz, err := h.service.CreateQuiz(r.Context(), &req)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, quiz)
}

// UpdateQuiz handles PUT /api/v1/admin/quizzes/{id}
// @Summary Update quiz
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Param request body models.UpdateQuizRequest true "Fields to change"
// @Success 200 {object} models.Quiz
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/admin/quizzes/{id} [put]
func (h *CatalogHandler) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	var req models.UpdateQuizRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	quiz, err := h.service.UpdateQuiz(r.Context(), id, &req)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, quiz)
}

// CreateQuestion handles POST /api/v1/admin/quizzes/{id}/questions
// @Summary Create question
// @Description Add a multiple-choice question. The answer key is validated against the options.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Param request body models.CreateQuestionRequest true "Question"
// @Success 201 {object} models.QuizQuestion
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/admin/quizzes/{id}/questions [post]
func (h *CatalogHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	quizID, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	var req models.CreateQuestionRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	question, err := h.service.CreateQuestion(r.Context(), quizID, &req)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, question)
}

// UpdateQuestion handles PUT /api/v1/admin/questions/{id}
// @Summary Update question
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param request body models.UpdateQuestionRequest true "Fields to change"
// @Success 200 {object} models.QuizQuestion
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/admin/questions/{id} [put]
func (h *CatalogHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	var req models.UpdateQuestionRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	question, err := h.service.UpdateQuestion(r.Context(), id, &req)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, question)
}

// DeactivateQuestion handles DELETE /api/v1/admin/questions/{id}
// @Summary Deactivate question
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 204 "No Content"
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/admin/questions/{id} [delete]
func (h *CatalogHandler) DeactivateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	if err := h.service.DeactivateQuestion(r.Context(), id); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
