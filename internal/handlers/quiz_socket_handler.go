package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/internal/sessions"
	"github.com/roadsafety/backend/libs/apperrors"
	"github.com/roadsafety/backend/libs/handlers"
	"go.uber.org/zap"
)

const (
	socketPongWait     = 60 * time.Second
	socketPingInterval = 30 * time.Second
	socketWriteWait    = 10 * time.Second

	// Open connections allowed per learner
	maxSessionsPerUser = 3
)

// Client message types
const (
	msgStartQuiz    = "start_quiz"
	msgGetQuestion  = "get_question"
	msgSubmitAnswer = "submit_answer"
)

// Server message types
const (
	msgQuizStarted  = "quiz_started"
	msgQuestion     = "question"
	msgAnswerResult = "answer_result"
	msgError        = "error"
)

// SessionRegistry keeps track of open quiz connections
type SessionRegistry interface {
	Add(s sessions.Session)
	SetQuiz(id string, quizID int) bool
	Remove(id string)
	Count() int
	CountByUser(userID int) int
}

// clientMessage is any message sent by the learner
type clientMessage struct {
	Type         string   `json:"type"`
	QuizID       int      `json:"quiz_id,omitempty"`
	Index        *int     `json:"index,omitempty"`
	QuestionID   int      `json:"question_id,omitempty"`
	AnswerIndex  *int     `json:"answer_index,omitempty"`
	ResponseTime *float64 `json:"response_time,omitempty"`
}

type quizStartedMessage struct {
	Type           string `json:"type"`
	QuizID         int    `json:"quiz_id"`
	Title          string `json:"title"`
	TotalQuestions int    `json:"total_questions"`
	TimeLimit      *int   `json:"time_limit,omitempty"`
}

type questionMessage struct {
	Type     string                `json:"type"`
	Index    int                   `json:"index"`
	Question models.PublicQuestion `json:"question"`
}

type answerResultMessage struct {
	Type   string               `json:"type"`
	Result *models.AnswerResult `json:"result"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// quizSession is the state of one connection
type quizSession struct {
	id        string
	userID    int
	quiz      *models.Quiz
	questions []models.PublicQuestion
}

// QuizSocketHandler serves live quizzes over WebSocket
type QuizSocketHandler struct {
	handlers.BaseHandler
	service  QuizService
	registry SessionRegistry
	upgrader websocket.Upgrader
}

// NewQuizSocketHandler creates a new live quiz handler.
// Upgrades are accepted from "allowedOrigins"; "*" accepts any origin.
func NewQuizSocketHandler(svc QuizService, registry SessionRegistry, allowedOrigins []string, logger *zap.Logger) *QuizSocketHandler {
	return &QuizSocketHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		service:     svc,
		registry:    registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowed := range allowedOrigins {
			if allowed == "*" || allowed == origin {
				return true
			}
		}
		return false
	}
}

// RegisterRoutes registers the WebSocket route behind authMiddleware
func (h *QuizSocketHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Get("/ws/quiz", h.Serve)
}

// Serve handles GET /api/v1/ws/quiz
// @Summary Live quiz
// @Description WebSocket endpoint. Browsers pass the access token as the "token" query parameter.
// @Tags quizzes
// @Security BearerAuth
// @Param token query string false "Access token"
// @Success 101 "Switching Protocols"
// @Failure 401 {object} handlers.ErrorResponse
// @Failure 429 {object} handlers.ErrorResponse
// @Router /api/v1/ws/quiz [get]
func (h *QuizSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	if h.registry.CountByUser(principal.UserID) >= maxSessionsPerUser {
		h.RespondError(w, http.StatusTooManyRequests, "too many live quiz sessions")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("failed to upgrade to websocket", zap.Error(err))
		return
	}

	session := &quizSession{id: uuid.New().String(), userID: principal.UserID}
	h.registry.Add(sessions.Session{ID: session.id, UserID: session.userID, ConnectedAt: time.Now()})
	h.Logger.Info("quiz session opened",
		zap.String("session_id", session.id),
		zap.Int("user_id", session.userID),
		zap.Int("live_sessions", h.registry.Count()))

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		h.registry.Remove(session.id)
		closeConnection(conn)
		h.Logger.Info("quiz session closed",
			zap.String("session_id", session.id),
			zap.Int("live_sessions", h.registry.Count()))
	}()

	conn.SetReadDeadline(time.Now().Add(socketPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(socketPongWait))
	})
	go h.ping(ctx, conn)

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Logger.Warn("failed to read quiz message", zap.String("session_id", session.id), zap.Error(err))
			}
			return
		}

		reply := h.handleMessage(ctx, session, &msg)
		for _, out := range reply {
			conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
			if err := conn.WriteJSON(out); err != nil {
				h.Logger.Warn("failed to write quiz message", zap.String("session_id", session.id), zap.Error(err))
				return
			}
		}
	}
}

// ping sends pings to the client until ctx is done
func (h *QuizSocketHandler) ping(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(socketPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(socketWriteWait)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func closeConnection(conn *websocket.Conn) {
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	conn.Close()
}

// handleMessage returns the messages to send back for one client message
func (h *QuizSocketHandler) handleMessage(ctx context.Context, s *quizSession, msg *clientMessage) []any {
	switch msg.Type {
	case msgStartQuiz:
		return h.startQuiz(ctx, s, msg)
	case msgGetQuestion:
		return h.getQuestion(s, msg)
	case msgSubmitAnswer:
		return h.submitAnswer(ctx, s, msg)
	default:
		return []any{errorMessage{Type: msgError, Message: "unknown message type"}}
	}
}

func (h *QuizSocketHandler) startQuiz(ctx context.Context, s *quizSession, msg *clientMessage) []any {
	if msg.QuizID <= 0 {
		return []any{errorMessage{Type: msgError, Message: "quiz_id is required"}}
	}

	quiz, err := h.service.GetQuiz(ctx, msg.QuizID)
	if err != nil {
		return []any{h.errorReply(s, err)}
	}
	questions, err := h.service.ListPublicQuestions(ctx, msg.QuizID)
	if err != nil {
		return []any{h.errorReply(s, err)}
	}

	s.quiz = quiz
	s.questions = questions
	h.registry.SetQuiz(s.id, quiz.ID)

	out := []any{quizStartedMessage{
		Type:           msgQuizStarted,
		QuizID:         quiz.ID,
		Title:          quiz.Title,
		TotalQuestions: len(questions),
		TimeLimit:      quiz.TimeLimit,
	}}
	if len(questions) > 0 {
		out = append(out, questionMessage{Type: msgQuestion, Index: 0, Question: questions[0]})
	}
	return out
}

func (h *QuizSocketHandler) getQuestion(s *quizSession, msg *clientMessage) []any {
	if s.quiz == nil {
		return []any{errorMessage{Type: msgError, Message: "no quiz started"}}
	}
	if msg.Index == nil {
		return []any{errorMessage{Type: msgError, Message: "index is required"}}
	}
	index := *msg.Index
	if index < 0 || index >= len(s.questions) {
		return []any{errorMessage{Type: msgError, Message: "question index out of range"}}
	}
	return []any{questionMessage{Type: msgQuestion, Index: index, Question: s.questions[index]}}
}

func (h *QuizSocketHandler) submitAnswer(ctx context.Context, s *quizSession, msg *clientMessage) []any {
	if msg.QuestionID <= 0 || msg.AnswerIndex == nil {
		return []any{errorMessage{Type: msgError, Message: "question_id and answer_index are required"}}
	}

	result, err := h.service.SubmitAnswer(ctx, s.userID, &models.SubmitAnswerRequest{
		QuestionID:      msg.QuestionID,
		UserAnswerIndex: msg.AnswerIndex,
		ResponseTime:    msg.ResponseTime,
	})
	if err != nil {
		return []any{h.errorReply(s, err)}
	}
	return []any{answerResultMessage{Type: msgAnswerResult, Result: result}}
}

// errorReply turns a service error into an error message. Internal errors are logged and hidden.
func (h *QuizSocketHandler) errorReply(s *quizSession, err error) errorMessage {
	if apperrors.KindOf(err) == apperrors.KindInternal {
		h.Logger.Error("quiz session request failed", zap.String("session_id", s.id), zap.Error(err))
	}
	return errorMessage{Type: msgError, Message: apperrors.MessageOf(err)}
}
