package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/apperrors"
	"github.com/roadsafety/backend/libs/auth"
	"github.com/roadsafety/backend/libs/auth/middleware"
	libhandlers "github.com/roadsafety/backend/libs/handlers"
	"github.com/stretchr/testify/require"
)

var (
	learner = auth.Principal{UserID: 7, Role: auth.RoleUser}
	admin   = auth.Principal{UserID: 1, Role: auth.RoleAdmin}
)

var (
	errAlreadyEnrolled  = apperrors.Conflict("already enrolled in this course")
	errQuizNotFound     = apperrors.NotFound("quiz not found")
	errQuestionNotFound = apperrors.NotFound("question not found")
	errAnswerOutOfRange = apperrors.Validation("user_answer_index out of range")
)

// asPrincipal stands in for the auth middleware
func asPrincipal(p auth.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithPrincipal(r.Context(), p)))
		})
	}
}

// anonymous lets requests through without a principal
func anonymous(next http.Handler) http.Handler {
	return next
}

func serve(t *testing.T, r chi.Router, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp libhandlers.ErrorResponse
	decodeBody(t, w, &resp)
	return resp.Code
}

// mockCatalogService embeds the interface so tests only implement what they call
type mockCatalogService struct {
	CatalogService
	courses     []models.Course
	course      *models.Course
	lastFilter  models.CourseFilter
	lastID      int
	lastCreate  *models.CreateCourseRequest
	deactivated []int
	deleted     []int
	err         error
}

func (m *mockCatalogService) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	m.lastFilter = filter
	return m.courses, m.err
}

func (m *mockCatalogService) GetCourse(ctx context.Context, id int, includeInactive bool) (*models.Course, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return m.course, nil
}

func (m *mockCatalogService) CreateCourse(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error) {
	m.lastCreate = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Course{ID: 11, Title: req.Title, Language: req.Language, Status: models.StatusActive}, nil
}

func (m *mockCatalogService) DeactivateCourse(ctx context.Context, id int) error {
	m.deactivated = append(m.deactivated, id)
	return m.err
}

func (m *mockCatalogService) DeleteCourse(ctx context.Context, id int) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

// mockEnrollmentService enrolls each (user, course) pair once
type mockEnrollmentService struct {
	enrolled   map[[2]int]bool
	lastUpdate models.ProgressUpdate
	progress   *models.CourseProgress
	err        error
}

func newMockEnrollmentService() *mockEnrollmentService {
	return &mockEnrollmentService{enrolled: map[[2]int]bool{}}
}

func (m *mockEnrollmentService) Enroll(ctx context.Context, userID, courseID int) (*models.Enrollment, error) {
	if m.err != nil {
		return nil, m.err
	}
	key := [2]int{userID, courseID}
	if m.enrolled[key] {
		return nil, errAlreadyEnrolled
	}
	m.enrolled[key] = true
	return &models.Enrollment{ID: len(m.enrolled), UserID: userID, CourseID: courseID, EnrolledAt: time.Now()}, nil
}

func (m *mockEnrollmentService) ListEnrollments(ctx context.Context, userID int) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for key := range m.enrolled {
		if key[0] == userID {
			out = append(out, models.Enrollment{UserID: userID, CourseID: key[1]})
		}
	}
	return out, m.err
}

func (m *mockEnrollmentService) RecordProgress(ctx context.Context, userID, lessonID int, update models.ProgressUpdate) (*models.UserProgress, error) {
	m.lastUpdate = update
	if m.err != nil {
		return nil, m.err
	}
	completed := update.Completed != nil && *update.Completed
	return &models.UserProgress{ID: 1, UserID: userID, LessonID: lessonID, Completed: completed}, nil
}

func (m *mockEnrollmentService) CourseProgress(ctx context.Context, userID, courseID int) (*models.CourseProgress, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.progress, nil
}

func (m *mockEnrollmentService) ListProgress(ctx context.Context, userID, courseID int) ([]models.UserProgress, error) {
	return nil, m.err
}

// mockQuizService scores answers against a fixed key
type mockQuizService struct {
	quiz       *models.Quiz
	questions  []models.QuizQuestion
	responses  []models.QuizResponse
	lastUserID int
	lastQuiz   int
	err        error
}

func (m *mockQuizService) GetQuiz(ctx context.Context, quizID int) (*models.Quiz, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.quiz == nil || m.quiz.ID != quizID {
		return nil, errQuizNotFound
	}
	return m.quiz, nil
}

func (m *mockQuizService) ListQuestions(ctx context.Context, quizID int) ([]models.QuizQuestion, error) {
	if _, err := m.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	return m.questions, nil
}

func (m *mockQuizService) ListPublicQuestions(ctx context.Context, quizID int) ([]models.PublicQuestion, error) {
	questions, err := m.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	out := make([]models.PublicQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, models.PublicQuestion{ID: q.ID, QuizID: q.QuizID, QuestionText: q.QuestionText, Options: q.Options, Points: q.Points})
	}
	return out, nil
}

func (m *mockQuizService) SubmitAnswer(ctx context.Context, userID int, req *models.SubmitAnswerRequest) (*models.AnswerResult, error) {
	m.lastUserID = userID
	if m.err != nil {
		return nil, m.err
	}
	for _, q := range m.questions {
		if q.ID != req.QuestionID {
			continue
		}
		answer := *req.UserAnswerIndex
		if answer < 0 || answer >= len(q.Options) {
			return nil, errAnswerOutOfRange
		}
		resp := models.QuizResponse{
			ID:              len(m.responses) + 1,
			QuestionID:      q.ID,
			UserID:          userID,
			UserAnswerIndex: answer,
			IsCorrect:       answer == q.CorrectAnswerIndex,
			ResponseTime:    req.ResponseTime,
		}
		m.responses = append(m.responses, resp)
		result := &models.AnswerResult{QuizResponse: resp, CorrectAnswerIndex: q.CorrectAnswerIndex, Explanation: q.Explanation}
		if resp.IsCorrect {
			result.PointsEarned = q.Points
		}
		return result, nil
	}
	return nil, errQuestionNotFound
}

func (m *mockQuizService) SubmitQuiz(ctx context.Context, userID, quizID int, req *models.SubmitQuizRequest) (*models.QuizResult, error) {
	m.lastUserID = userID
	m.lastQuiz = quizID
	if m.err != nil {
		return nil, m.err
	}
	return &models.QuizResult{QuizID: quizID, TotalQuestions: len(m.questions), Answered: len(req.Answers)}, nil
}

func (m *mockQuizService) QuestionAccuracy(ctx context.Context, questionID int) (*models.QuestionAccuracy, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.QuestionAccuracy{QuestionID: questionID, TotalResponses: 4, CorrectResponses: 3, AccuracyRate: 75}, nil
}

func (m *mockQuizService) ListUserResponses(ctx context.Context, userID, quizID int) ([]models.QuizResponse, error) {
	m.lastUserID = userID
	m.lastQuiz = quizID
	return m.responses, m.err
}

// mockAnalyticsService answers only administrators, like the real service
type mockAnalyticsService struct {
	lastDays int
	err      error
}

func (m *mockAnalyticsService) check(p auth.Principal) error {
	if m.err != nil {
		return m.err
	}
	if !auth.RequireAdmin(p) {
		return apperrors.Forbidden("admin access required")
	}
	return nil
}

func (m *mockAnalyticsService) DashboardStats(ctx context.Context, p auth.Principal) (*models.DashboardStats, error) {
	if err := m.check(p); err != nil {
		return nil, err
	}
	return &models.DashboardStats{LiveSessions: 2}, nil
}

func (m *mockAnalyticsService) UserAnalytics(ctx context.Context, p auth.Principal, days int) (*models.UserAnalytics, error) {
	if err := m.check(p); err != nil {
		return nil, err
	}
	m.lastDays = days
	return &models.UserAnalytics{Days: days}, nil
}

func (m *mockAnalyticsService) CourseAnalytics(ctx context.Context, p auth.Principal) (*models.CourseAnalytics, error) {
	if err := m.check(p); err != nil {
		return nil, err
	}
	return &models.CourseAnalytics{}, nil
}

func (m *mockAnalyticsService) QuizAnalytics(ctx context.Context, p auth.Principal) (*models.QuizAnalytics, error) {
	if err := m.check(p); err != nil {
		return nil, err
	}
	return &models.QuizAnalytics{}, nil
}

func (m *mockAnalyticsService) UserCount(ctx context.Context, p auth.Principal) (*models.UserCount, error) {
	if err := m.check(p); err != nil {
		return nil, err
	}
	return &models.UserCount{TotalUsers: 10, ActiveUsers: 8}, nil
}

// mockUserService records the last call arguments
type mockUserService struct {
	lastSkip, lastLimit int
	lastActor, lastID   int
	lastUpdate          *models.UpdateUserRequest
	err                 error
}

func (m *mockUserService) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	m.lastSkip, m.lastLimit = skip, limit
	return []models.User{{ID: 1, Username: "admin"}}, m.err
}

func (m *mockUserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return &models.User{ID: id}, nil
}

func (m *mockUserService) UpdateUser(ctx context.Context, id int, req *models.UpdateUserRequest) (*models.User, error) {
	m.lastID = id
	m.lastUpdate = req
	if m.err != nil {
		return nil, m.err
	}
	user := &models.User{ID: id}
	if req.PreferredLanguage != nil {
		user.PreferredLanguage = *req.PreferredLanguage
	}
	return user, nil
}

func (m *mockUserService) DeleteUser(ctx context.Context, actorID, id int) error {
	m.lastActor, m.lastID = actorID, id
	return m.err
}

// mockTTSService returns canned speech
type mockTTSService struct {
	lastText, lastLanguage string
	lastLesson             int
	lastMaxAge             time.Duration
	err                    error
}

func (m *mockTTSService) Languages() []models.TTSLanguage {
	return []models.TTSLanguage{{Name: "english", Code: "en"}, {Name: "french", Code: "fr"}, {Name: "kinyarwanda", Code: "rw"}}
}

func (m *mockTTSService) Synthesize(ctx context.Context, text, language string) (*models.TTSResponse, error) {
	m.lastText, m.lastLanguage = text, language
	if m.err != nil {
		return nil, m.err
	}
	return &models.TTSResponse{Filename: "tts_1.mp3", Language: language, FileSize: 8}, nil
}

func (m *mockTTSService) SynthesizeLesson(ctx context.Context, lessonID int) (*models.TTSResponse, error) {
	m.lastLesson = lessonID
	if m.err != nil {
		return nil, m.err
	}
	return &models.TTSResponse{Filename: "tts_2.mp3", Language: "english"}, nil
}

func (m *mockTTSService) Cleanup(ctx context.Context, maxAge time.Duration) (*models.CleanupResult, error) {
	m.lastMaxAge = maxAge
	if m.err != nil {
		return nil, m.err
	}
	return &models.CleanupResult{Deleted: 3, MaxAgeHours: maxAge.Hours()}, nil
}

// mockPDFService keeps the uploaded bytes
type mockPDFService struct {
	lastUploadedBy *int
	lastName       string
	lastContent    string
	lastFileID     string
	err            error
}

func (m *mockPDFService) Upload(ctx context.Context, uploadedBy *int, originalName string, r io.Reader) (*models.PDFUploadResponse, error) {
	m.lastUploadedBy = uploadedBy
	m.lastName = originalName
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.lastContent = string(data)
	if m.err != nil {
		return nil, m.err
	}
	return &models.PDFUploadResponse{FileID: "f1", Filename: "f1.pdf", OriginalName: originalName, FileSize: int64(len(data))}, nil
}

func (m *mockPDFService) Extract(ctx context.Context, fileID string) (*models.PDFExtractResponse, error) {
	m.lastFileID = fileID
	if m.err != nil {
		return nil, m.err
	}
	return &models.PDFExtractResponse{FileID: fileID, ExtractedContent: "Stop at red lights"}, nil
}

func (m *mockPDFService) Delete(ctx context.Context, fileID string) error {
	m.lastFileID = fileID
	return m.err
}
