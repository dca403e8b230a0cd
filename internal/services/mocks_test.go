package services

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/roadsafety/backend/internal/events"
	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/internal/storage"
	"github.com/roadsafety/backend/internal/synth"
	"github.com/roadsafety/backend/libs/apperrors"
)

// mockCourseRepository is an in-memory CoursesRepository
type mockCourseRepository struct {
	courses    map[int]*models.Course
	listed     []models.Course
	lastFilter models.CourseFilter
	err        error
	deleteErr  error
	nextID     int
}

func newMockCourseRepository(courses ...models.Course) *mockCourseRepository {
	m := &mockCourseRepository{courses: map[int]*models.Course{}, nextID: 100}
	for i := range courses {
		c := courses[i]
		m.courses[c.ID] = &c
	}
	return m
}

func (m *mockCourseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.courses[id]
	if !ok {
		return nil, apperrors.NotFound("course not found")
	}
	cp := *c
	return &cp, nil
}

func (m *mockCourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	return m.listed, nil
}

func (m *mockCourseRepository) Create(ctx context.Context, course *models.Course) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	course.ID = m.nextID
	cp := *course
	m.courses[course.ID] = &cp
	return nil
}

func (m *mockCourseRepository) Update(ctx context.Context, id int, req *models.UpdateCourseRequest) error {
	if m.err != nil {
		return m.err
	}
	c, ok := m.courses[id]
	if !ok {
		return apperrors.NotFound("course not found")
	}
	if req.Title != nil {
		c.Title = *req.Title
	}
	if req.Status != nil {
		c.Status = *req.Status
	}
	return nil
}

func (m *mockCourseRepository) SetStatus(ctx context.Context, id int, status models.Status) error {
	if m.err != nil {
		return m.err
	}
	c, ok := m.courses[id]
	if !ok {
		return apperrors.NotFound("course not found")
	}
	c.Status = status
	return nil
}

func (m *mockCourseRepository) Delete(ctx context.Context, id int) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.courses[id]; !ok {
		return apperrors.NotFound("course not found")
	}
	delete(m.courses, id)
	return nil
}

// mockModuleRepository is an in-memory ModulesRepository
type mockModuleRepository struct {
	modules      map[int]*models.Module
	listed       []models.Module
	lastInactive bool
	created      *models.Module
	err          error
	nextID       int
}

func newMockModuleRepository(modules ...models.Module) *mockModuleRepository {
	m := &mockModuleRepository{modules: map[int]*models.Module{}, nextID: 200}
	for i := range modules {
		mod := modules[i]
		m.modules[mod.ID] = &mod
	}
	return m
}

func (m *mockModuleRepository) GetByID(ctx context.Context, id int) (*models.Module, error) {
	if m.err != nil {
		return nil, m.err
	}
	mod, ok := m.modules[id]
	if !ok {
		return nil, apperrors.NotFound("module not found")
	}
	cp := *mod
	return &cp, nil
}

func (m *mockModuleRepository) ListByCourse(ctx context.Context, courseID int, includeInactive bool) ([]models.Module, error) {
	m.lastInactive = includeInactive
	if m.err != nil {
		return nil, m.err
	}
	return m.listed, nil
}

func (m *mockModuleRepository) Create(ctx context.Context, module *models.Module) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	module.ID = m.nextID
	cp := *module
	m.modules[module.ID] = &cp
	m.created = &cp
	return nil
}

func (m *mockModuleRepository) Update(ctx context.Context, id int, req *models.UpdateModuleRequest) error {
	if m.err != nil {
		return m.err
	}
	mod, ok := m.modules[id]
	if !ok {
		return apperrors.NotFound("module not found")
	}
	if req.Title != nil {
		mod.Title = *req.Title
	}
	if req.OrderIndex != nil {
		mod.OrderIndex = *req.OrderIndex
	}
	return nil
}

// mockLessonRepository is an in-memory LessonsRepository
type mockLessonRepository struct {
	lessons map[int]*models.Lesson
	listed  []models.Lesson
	err     error
	nextID  int
}

func newMockLessonRepository(lessons ...models.Lesson) *mockLessonRepository {
	m := &mockLessonRepository{lessons: map[int]*models.Lesson{}, nextID: 300}
	for i := range lessons {
		l := lessons[i]
		m.lessons[l.ID] = &l
	}
	return m
}

func (m *mockLessonRepository) GetByID(ctx context.Context, id int) (*models.Lesson, error) {
	if m.err != nil {
		return nil, m.err
	}
	l, ok := m.lessons[id]
	if !ok {
		return nil, apperrors.NotFound("lesson not found")
	}
	cp := *l
	return &cp, nil
}

func (m *mockLessonRepository) ListByModule(ctx context.Context, moduleID int, includeInactive bool) ([]models.Lesson, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.listed, nil
}

func (m *mockLessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	lesson.ID = m.nextID
	cp := *lesson
	m.lessons[lesson.ID] = &cp
	return nil
}

func (m *mockLessonRepository) Update(ctx context.Context, id int, req *models.UpdateLessonRequest) error {
	if m.err != nil {
		return m.err
	}
	l, ok := m.lessons[id]
	if !ok {
		return apperrors.NotFound("lesson not found")
	}
	if req.Title != nil {
		l.Title = *req.Title
	}
	if req.LessonType != nil {
		l.LessonType = *req.LessonType
	}
	return nil
}

func (m *mockLessonRepository) SetStatus(ctx context.Context, id int, status models.Status) error {
	if m.err != nil {
		return m.err
	}
	l, ok := m.lessons[id]
	if !ok {
		return apperrors.NotFound("lesson not found")
	}
	l.Status = status
	return nil
}

// mockQuizRepository is an in-memory QuizzesRepository
type mockQuizRepository struct {
	quizzes   map[int]*models.Quiz
	listed    []models.Quiz
	createErr error
	err       error
	nextID    int
}

func newMockQuizRepository(quizzes ...models.Quiz) *mockQuizRepository {
	m := &mockQuizRepository{quizzes: map[int]*models.Quiz{}, nextID: 400}
	for i := range quizzes {
		q := quizzes[i]
		m.quizzes[q.ID] = &q
	}
	return m
}

func (m *mockQuizRepository) GetByID(ctx context.Context, id int) (*models.Quiz, error) {
	if m.err != nil {
		return nil, m.err
	}
	q, ok := m.quizzes[id]
	if !ok {
		return nil, apperrors.NotFound("quiz not found")
	}
	cp := *q
	return &cp, nil
}

func (m *mockQuizRepository) List(ctx context.Context, filter models.QuizFilter) ([]models.Quiz, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.listed, nil
}

func (m *mockQuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	quiz.ID = m.nextID
	cp := *quiz
	m.quizzes[quiz.ID] = &cp
	return nil
}

func (m *mockQuizRepository) Update(ctx context.Context, id int, req *models.UpdateQuizRequest) error {
	if m.err != nil {
		return m.err
	}
	q, ok := m.quizzes[id]
	if !ok {
		return apperrors.NotFound("quiz not found")
	}
	if req.PassingScore != nil {
		q.PassingScore = *req.PassingScore
	}
	return nil
}

// mockQuestionRepository is an in-memory QuestionsRepository
type mockQuestionRepository struct {
	questions map[int]*models.QuizQuestion
	updated   *models.UpdateQuestionRequest
	err       error
	nextID    int
}

func newMockQuestionRepository(questions ...models.QuizQuestion) *mockQuestionRepository {
	m := &mockQuestionRepository{questions: map[int]*models.QuizQuestion{}, nextID: 500}
	for i := range questions {
		q := questions[i]
		m.questions[q.ID] = &q
	}
	return m
}

func (m *mockQuestionRepository) GetByID(ctx context.Context, id int) (*models.QuizQuestion, error) {
	if m.err != nil {
		return nil, m.err
	}
	q, ok := m.questions[id]
	if !ok {
		return nil, apperrors.NotFound("question not found")
	}
	cp := *q
	return &cp, nil
}

// ListByQuiz returns the questions of quizID ordered by ID
func (m *mockQuestionRepository) ListByQuiz(ctx context.Context, quizID int, includeInactive bool) ([]models.QuizQuestion, error) {
	if m.err != nil {
		return nil, m.err
	}
	questions := []models.QuizQuestion{}
	for _, q := range m.questions {
		if q.QuizID != quizID {
			continue
		}
		if !includeInactive && q.Status != models.StatusActive {
			continue
		}
		questions = append(questions, *q)
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions, nil
}

func (m *mockQuestionRepository) Create(ctx context.Context, q *models.QuizQuestion) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	q.ID = m.nextID
	cp := *q
	m.questions[q.ID] = &cp
	return nil
}

func (m *mockQuestionRepository) Update(ctx context.Context, id int, req *models.UpdateQuestionRequest) error {
	if m.err != nil {
		return m.err
	}
	q, ok := m.questions[id]
	if !ok {
		return apperrors.NotFound("question not found")
	}
	m.updated = req
	if req.Options != nil {
		q.Options = req.Options
	}
	if req.CorrectAnswerIndex != nil {
		q.CorrectAnswerIndex = *req.CorrectAnswerIndex
	}
	return nil
}

func (m *mockQuestionRepository) SetStatus(ctx context.Context, id int, status models.Status) error {
	if m.err != nil {
		return m.err
	}
	q, ok := m.questions[id]
	if !ok {
		return apperrors.NotFound("question not found")
	}
	q.Status = status
	return nil
}

// mockEnrollmentRepository is an in-memory EnrollmentsRepository keyed by (user, course)
type mockEnrollmentRepository struct {
	enrollments  map[[2]int]*models.Enrollment
	snapshots    int
	lastSnapshot struct {
		id          int
		percentage  float64
		completedAt *time.Time
	}
	existsErr   error
	createErr   error
	snapshotErr error
	nextID      int
}

func newMockEnrollmentRepository(enrollments ...models.Enrollment) *mockEnrollmentRepository {
	m := &mockEnrollmentRepository{enrollments: map[[2]int]*models.Enrollment{}}
	for i := range enrollments {
		e := enrollments[i]
		m.enrollments[[2]int{e.UserID, e.CourseID}] = &e
	}
	return m
}

func (m *mockEnrollmentRepository) Exists(ctx context.Context, userID, courseID int) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.enrollments[[2]int{userID, courseID}]
	return ok, nil
}

func (m *mockEnrollmentRepository) Create(ctx context.Context, e *models.Enrollment) error {
	if m.createErr != nil {
		return m.createErr
	}
	key := [2]int{e.UserID, e.CourseID}
	if _, ok := m.enrollments[key]; ok {
		return apperrors.Conflict("already enrolled in this course")
	}
	m.nextID++
	e.ID = m.nextID
	cp := *e
	m.enrollments[key] = &cp
	return nil
}

func (m *mockEnrollmentRepository) GetByUserAndCourse(ctx context.Context, userID, courseID int) (*models.Enrollment, error) {
	e, ok := m.enrollments[[2]int{userID, courseID}]
	if !ok {
		return nil, apperrors.NotFound("enrollment not found")
	}
	cp := *e
	return &cp, nil
}

func (m *mockEnrollmentRepository) ListByUser(ctx context.Context, userID int) ([]models.Enrollment, error) {
	list := []models.Enrollment{}
	for key, e := range m.enrollments {
		if key[0] == userID {
			list = append(list, *e)
		}
	}
	return list, nil
}

func (m *mockEnrollmentRepository) UpdateProgressSnapshot(ctx context.Context, id int, percentage float64, completedAt *time.Time) error {
	m.snapshots++
	m.lastSnapshot.id = id
	m.lastSnapshot.percentage = percentage
	m.lastSnapshot.completedAt = completedAt
	return m.snapshotErr
}

// mockProgressRepository applies the monotonic upsert rules in memory
type mockProgressRepository struct {
	rows      map[[2]int]*models.UserProgress
	total     int
	completed int
	upserts   int
	err       error
	nextID    int
}

func newMockProgressRepository() *mockProgressRepository {
	return &mockProgressRepository{rows: map[[2]int]*models.UserProgress{}}
}

func (m *mockProgressRepository) Upsert(ctx context.Context, userID, lessonID int, update models.ProgressUpdate, now time.Time) (*models.UserProgress, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.upserts++
	key := [2]int{userID, lessonID}
	row, ok := m.rows[key]
	if !ok {
		m.nextID++
		row = &models.UserProgress{ID: m.nextID, UserID: userID, LessonID: lessonID, CreatedAt: now}
		m.rows[key] = row
	}
	if update.Completed != nil && *update.Completed && !row.Completed {
		row.Completed = true
		completedAt := now
		row.CompletionDate = &completedAt
	}
	if update.TimeSpent != nil {
		row.TimeSpent = *update.TimeSpent
	}
	if update.Score != nil {
		row.Score = update.Score
	}
	row.UpdatedAt = now
	cp := *row
	return &cp, nil
}

func (m *mockProgressRepository) ListByUserAndCourse(ctx context.Context, userID, courseID int) ([]models.UserProgress, error) {
	if m.err != nil {
		return nil, m.err
	}
	list := []models.UserProgress{}
	for key, row := range m.rows {
		if key[0] == userID {
			list = append(list, *row)
		}
	}
	return list, nil
}

func (m *mockProgressRepository) CountCourseProgress(ctx context.Context, userID, courseID int) (int, int, error) {
	if m.err != nil {
		return 0, 0, m.err
	}
	return m.total, m.completed, nil
}

// mockResponseRepository records inserted responses
type mockResponseRepository struct {
	stored  []models.QuizResponse
	batches int
	total   int
	correct int
	err     error
	nextID  int
}

func (m *mockResponseRepository) Create(ctx context.Context, resp *models.QuizResponse) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	resp.ID = m.nextID
	m.stored = append(m.stored, *resp)
	return nil
}

func (m *mockResponseRepository) CreateBatch(ctx context.Context, responses []*models.QuizResponse) error {
	if m.err != nil {
		return m.err
	}
	m.batches++
	for _, resp := range responses {
		m.nextID++
		resp.ID = m.nextID
		m.stored = append(m.stored, *resp)
	}
	return nil
}

func (m *mockResponseRepository) ListByUserAndQuiz(ctx context.Context, userID, quizID int) ([]models.QuizResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	list := []models.QuizResponse{}
	for _, r := range m.stored {
		if r.UserID == userID {
			list = append(list, r)
		}
	}
	return list, nil
}

func (m *mockResponseRepository) CountForQuestion(ctx context.Context, questionID int) (int, int, error) {
	if m.err != nil {
		return 0, 0, m.err
	}
	return m.total, m.correct, nil
}

// mockPublisher records published events
type mockPublisher struct {
	mu     sync.Mutex
	topics []string
	events []events.Event
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics = append(m.topics, topic)
	m.events = append(m.events, event)
	return m.err
}

// mockStorage is an in-memory storage.Storage
type mockStorage struct {
	files     map[string][]byte
	saveErr   error
	deleteErr error
}

func newMockStorage() *mockStorage {
	return &mockStorage{files: map[string][]byte{}}
}

func (m *mockStorage) key(id, mediaType string) string {
	return mediaType + "/" + id
}

func (m *mockStorage) Save(ctx context.Context, id, mediaType string, r io.Reader, size int64, contentType string) (int64, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.files[m.key(id, mediaType)] = data
	return int64(len(data)), nil
}

func (m *mockStorage) Open(ctx context.Context, id, mediaType string) (*storage.Object, error) {
	data, ok := m.files[m.key(id, mediaType)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Object{ReadCloser: io.NopCloser(strings.NewReader(string(data))), Size: int64(len(data))}, nil
}

func (m *mockStorage) Delete(ctx context.Context, id, mediaType string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.files[m.key(id, mediaType)]; !ok {
		return storage.ErrNotFound
	}
	delete(m.files, m.key(id, mediaType))
	return nil
}

func (m *mockStorage) Exists(ctx context.Context, id, mediaType string) (bool, error) {
	_, ok := m.files[m.key(id, mediaType)]
	return ok, nil
}

// mockSynthesizer returns fixed audio and counts calls
type mockSynthesizer struct {
	audio *synth.Audio
	calls int
	err   error
}

func (m *mockSynthesizer) Synthesize(ctx context.Context, text, language string) (*synth.Audio, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.audio, nil
}

// mockAudioCache is an in-memory AudioCache
type mockAudioCache struct {
	entries map[string]string
	err     error
}

func newMockAudioCache() *mockAudioCache {
	return &mockAudioCache{entries: map[string]string{}}
}

func (m *mockAudioCache) Get(ctx context.Context, key string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *mockAudioCache) Set(ctx context.Context, key, filename string) error {
	if m.err != nil {
		return m.err
	}
	m.entries[key] = filename
	return nil
}

func (m *mockAudioCache) Delete(ctx context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

// mockAudioRepository is an in-memory AudioRepository
type mockAudioRepository struct {
	files     []models.AudioFile
	cutoff    time.Time
	createErr error
	nextID    int
}

func (m *mockAudioRepository) Create(ctx context.Context, a *models.AudioFile) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	a.ID = m.nextID
	m.files = append(m.files, *a)
	return nil
}

func (m *mockAudioRepository) GetByFilename(ctx context.Context, filename string) (*models.AudioFile, error) {
	for i := range m.files {
		if m.files[i].Filename == filename {
			cp := m.files[i]
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("audio file not found")
}

func (m *mockAudioRepository) ListOlderThan(ctx context.Context, cutoff time.Time) ([]models.AudioFile, error) {
	m.cutoff = cutoff
	old := []models.AudioFile{}
	for _, f := range m.files {
		if f.CreatedAt.Before(cutoff) {
			old = append(old, f)
		}
	}
	return old, nil
}

func (m *mockAudioRepository) Delete(ctx context.Context, id int) error {
	for i := range m.files {
		if m.files[i].ID == id {
			m.files = append(m.files[:i], m.files[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("audio file not found")
}
