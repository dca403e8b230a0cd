package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/handlers"
	"go.uber.org/zap"
)

// QuizService is the interface that wraps methods for quiz taking and scoring.
type QuizService interface {
	// Method GetQuiz retrieve an active quiz by ID.
	GetQuiz(ctx context.Context, quizID int) (*models.Quiz, error)
	// Method ListQuestions retrieve the active questions of an active quiz including the answer key.
	ListQuestions(ctx context.Context, quizID int) ([]models.QuizQuestion, error)
	// Method ListPublicQuestions retrieve the active questions of an active quiz without the answer key.
	ListPublicQuestions(ctx context.Context, quizID int) ([]models.PublicQuestion, error)
	// Method SubmitAnswer score and store one answer.
	//
	// Correctness is computed from the stored answer key. Every call stores a new response.
	// If the answer index is out of range, a Validation error will be returned together with "nil" value.
	SubmitAnswer(ctx context.Context, userID int, req *models.SubmitAnswerRequest) (*models.AnswerResult, error)
	// Method SubmitQuiz score and store a batch of answers for one quiz.
	//
	// Unanswered questions count as wrong. The batch is stored atomically.
	SubmitQuiz(ctx context.Context, userID, quizID int, req *models.SubmitQuizRequest) (*models.QuizResult, error)
	QuestionAccuracy(ctx context.Context, questionID int) (*models.QuestionAccuracy, error)
	ListUserResponses(ctx context.Context, userID, quizID int) ([]models.QuizResponse, error)
}

// QuizHandler handles HTTP requests for quiz taking
type QuizHandler struct {
	handlers.BaseHandler
	service QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(svc QuizService, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers the public and learner quiz routes
func (h *QuizHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/quizzes/{id}/questions", h.ListQuestions)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/quiz/answer", h.SubmitAnswer)
		r.Post("/quizzes/{id}/submit", h.SubmitQuiz)
		r.Get("/quizzes/{id}/responses", h.ListUserResponses)
	})
}

// RegisterAdminRoutes registers the quiz review routes. The caller guards them with the admin middleware.
func (h *QuizHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/admin/quizzes/{id}/questions", h.AdminListQuestions)
	r.Get("/admin/questions/{id}/accuracy", h.QuestionAccuracy)
}

// ListQuestions handles GET /api/v1/quizzes/{id}/questions
// @Summary List quiz questions
// @Description Active questions of an active quiz. The answer key is not included.
// @Tags quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {array} models.PublicQuestion
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/quizzes/{id}/questions [get]
func (h *QuizHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	quizID, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	questions, err := h.service.ListPublicQuestions(r.Context(), quizID)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, questions)
}

// AdminListQuestions handles GET /api/v1/admin/quizzes/{id}/questions
// @Summary List quiz questions with answer key
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Success 200 {array} models.QuizQuestion
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/admin/quizzes/{id}/questions [get]
func (h *QuizHandler) AdminListQuestions(w http.ResponseWriter, r *http.Request) {
	quizID, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	questions, err := h.service.ListQuestions(r.Context(), quizID)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, questions)
}

// SubmitAnswer handles POST /api/v1/quiz/answer
// @Summary Submit an answer
// @Description Scores one answer against the answer key and stores it
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SubmitAnswerRequest true "Answer"
// @Success 201 {object} models.AnswerResult
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/quiz/answer [post]
func (h *QuizHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.SubmitAnswerRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	result, err := h.service.SubmitAnswer(r.Context(), principal.UserID, &req)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, result)
}

// SubmitQuiz handles POST /api/v1/quizzes/{id}/submit
// @Summary Submit a whole quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Param request body models.SubmitQuizRequest true "Answers"
// @Success 201 {object} models.QuizResult
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/quizzes/{id}/submit [post]
func (h *QuizHandler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(&h.BaseHandler, w, r)
	if !ok {
		return
	}
	quizID, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	var req models.SubmitQuizRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	result, err := h.service.SubmitQuiz(r.Context(), principal.UserID, quizID, &req)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, result)
}

// ListUserResponses handles GET /api/v1/quizzes/{id}/responses
// @Summary List my responses to a quiz
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Success 200 {array} models.QuizResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/quizzes/{id}/responses [get]
func (h *QuizHandler) ListUserResponses(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(&h.BaseHandler, w, r)
	if !ok {
		return
	}
	quizID, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	responses, err := h.service.ListUserResponses(r.Context(), principal.UserID, quizID)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, responses)
}

// QuestionAccuracy handles GET /api/v1/admin/questions/{id}/accuracy
// @Summary Get question accuracy
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} models.QuestionAccuracy
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/admin/questions/{id}/accuracy [get]
func (h *QuizHandler) QuestionAccuracy(w http.ResponseWriter, r *http.Request) {
	questionID, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	accuracy, err := h.service.QuestionAccuracy(r.Context(), questionID)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, accuracy)
}
