package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/roadsafety/backend/internal/cache"
	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/internal/storage"
	"github.com/roadsafety/backend/internal/synth"
	"github.com/roadsafety/backend/libs/apperrors"
	"go.uber.org/zap"
)

// Synthesizer is the interface of the external text-to-speech engine
type Synthesizer interface {
	// Method Synthesize convert "text" in "language" to audio.
	//
	// If the engine fails or answers without audio, the error will be returned together with "nil" value.
	Synthesize(ctx context.Context, text, language string) (*synth.Audio, error)
}

// AudioCache is the interface that wraps the (language, text) to filename lookup
type AudioCache interface {
	// Method Get return the cached filename and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, filename string) error
	Delete(ctx context.Context, key string) error
}

// AudioRepository is the interface that wraps methods for AudioFiles table data access
type AudioRepository interface {
	Create(ctx context.Context, a *models.AudioFile) error
	// Method GetByFilename retrieve audio metadata by stored filename.
	//
	// If no row exists, a NotFound error will be returned together with "nil" value.
	GetByFilename(ctx context.Context, filename string) (*models.AudioFile, error)
	// Method ListOlderThan retrieve audio files created before "cutoff".
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]models.AudioFile, error)
	Delete(ctx context.Context, id int) error
}

const (
	maxTTSTextLength   = 5000
	defaultMaxAudioAge = 24 * time.Hour
)

// supportedLanguages lists the languages of the speech engine with their short codes
var supportedLanguages = []models.TTSLanguage{
	{Name: "english", Code: "en"},
	{Name: "french", Code: "fr"},
	{Name: "kinyarwanda", Code: "rw"},
}

func isSupportedLanguage(language string) bool {
	for _, l := range supportedLanguages {
		if l.Name == language {
			return true
		}
	}
	return false
}

type ttsService struct {
	engine   Synthesizer
	cache    AudioCache
	storage  storage.Storage
	audio    AudioRepository
	lessons  LessonReader
	mediaURL string
	logger   *zap.Logger
	now      func() time.Time
}

// NewTTSService creates a new text-to-speech service.
//
// "mediaURL" is the public base URL of stored media, such as "http://localhost:8080/api/v1/media".
// "audioCache" may be nil, in which case every request reaches the engine.
func NewTTSService(
	engine Synthesizer,
	audioCache AudioCache,
	store storage.Storage,
	audio AudioRepository,
	lessons LessonReader,
	mediaURL string,
	logger *zap.Logger,
) *ttsService {
	return &ttsService{
		engine:   engine,
		cache:    audioCache,
		storage:  store,
		audio:    audio,
		lessons:  lessons,
		mediaURL: strings.TrimRight(mediaURL, "/"),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Languages returns the languages the engine supports
func (s *ttsService) Languages() []models.TTSLanguage {
	languages := make([]models.TTSLanguage, len(supportedLanguages))
	copy(languages, supportedLanguages)
	return languages
}

// Synthesize returns audio for text, reusing a cached file when one still exists
func (s *ttsService) Synthesize(ctx context.Context, text, language string) (*models.TTSResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("text is required")
	}
	if utf8.RuneCountInString(text) > maxTTSTextLength {
		return nil, apperrors.Validation("text must be at most %d characters", maxTTSTextLength)
	}
	if !isSupportedLanguage(language) {
		return nil, apperrors.Validation("unsupported language: %s", language)
	}

	key := cache.Key(language, text)
	if cached := s.lookup(ctx, key); cached != nil {
		return s.response(cached, true), nil
	}

	audio, err := s.engine.Synthesize(ctx, text, language)
	if err != nil {
		s.logger.Error("failed to synthesize speech", zap.Error(err), zap.String("language", language))
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}

	filename := storage.GenerateFileName("tts_", "mp3")
	size, err := s.storage.Save(ctx, filename, string(models.MediaTypeAudio), bytes.NewReader(audio.Data), int64(len(audio.Data)), audio.ContentType)
	if err != nil {
		s.logger.Error("failed to store audio", zap.Error(err), zap.String("filename", filename))
		return nil, fmt.Errorf("failed to store audio: %w", err)
	}

	record := &models.AudioFile{
		Filename:     filename,
		OriginalText: text,
		Language:     language,
		FilePath:     string(models.MediaTypeAudio) + "/" + filename,
		FileSize:     size,
		Duration:     round2(audio.Duration),
		CreatedAt:    s.now(),
	}
	if err := s.audio.Create(ctx, record); err != nil {
		if delErr := s.storage.Delete(ctx, filename, string(models.MediaTypeAudio)); delErr != nil {
			s.logger.Warn("failed to remove orphaned audio", zap.Error(delErr), zap.String("filename", filename))
		}
		return nil, fmt.Errorf("failed to save audio metadata: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, filename); err != nil {
			s.logger.Warn("failed to cache audio", zap.Error(err))
		}
	}

	s.logger.Info("Speech synthesized", zap.String("filename", filename), zap.String("language", language), zap.Int64("size", size))
	return s.response(record, false), nil
}

// SynthesizeLesson returns audio for the content of an active lesson in the lesson's language
func (s *ttsService) SynthesizeLesson(ctx context.Context, lessonID int) (*models.TTSResponse, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	if lesson.Status != models.StatusActive {
		return nil, apperrors.NotFound("lesson not found")
	}
	if isBlank(lesson.Content) {
		return nil, apperrors.Validation("lesson has no content")
	}

	return s.Synthesize(ctx, lesson.Content, lesson.Language)
}

// Cleanup removes audio files older than maxAge (24 hours when zero) and returns how many were deleted.
// Files that fail to delete are logged and skipped.
func (s *ttsService) Cleanup(ctx context.Context, maxAge time.Duration) (*models.CleanupResult, error) {
	if maxAge < 0 {
		return nil, apperrors.Validation("max age must not be negative")
	}
	if maxAge == 0 {
		maxAge = defaultMaxAudioAge
	}

	files, err := s.audio.ListOlderThan(ctx, s.now().Add(-maxAge))
	if err != nil {
		s.logger.Error("failed to list old audio", zap.Error(err))
		return nil, fmt.Errorf("failed to list old audio: %w", err)
	}

	deleted := 0
	for _, f := range files {
		err := s.storage.Delete(ctx, f.Filename, string(models.MediaTypeAudio))
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("failed to delete audio file", zap.Error(err), zap.String("filename", f.Filename))
			continue
		}
		if err := s.audio.Delete(ctx, f.ID); err != nil {
			s.logger.Warn("failed to delete audio row", zap.Error(err), zap.Int("id", f.ID))
			continue
		}
		if s.cache != nil {
			if err := s.cache.Delete(ctx, cache.Key(f.Language, f.OriginalText)); err != nil {
				s.logger.Warn("failed to evict audio cache", zap.Error(err))
			}
		}
		deleted++
	}

	s.logger.Info("Audio cleanup finished", zap.Int("deleted", deleted), zap.Duration("max_age", maxAge))
	return &models.CleanupResult{Deleted: deleted, MaxAgeHours: maxAge.Hours()}, nil
}

// lookup returns the stored audio for a cache key, or nil on any miss.
// Stale entries whose row or file is gone are evicted.
func (s *ttsService) lookup(ctx context.Context, key string) *models.AudioFile {
	if s.cache == nil {
		return nil
	}

	filename, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read audio cache", zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}

	record, err := s.audio.GetByFilename(ctx, filename)
	if err == nil {
		var exists bool
		exists, err = s.storage.Exists(ctx, filename, string(models.MediaTypeAudio))
		if err == nil && exists {
			return record
		}
	}
	if err != nil && apperrors.KindOf(err) != apperrors.KindNotFound {
		s.logger.Warn("failed to verify cached audio", zap.Error(err), zap.String("filename", filename))
		return nil
	}

	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to evict audio cache", zap.Error(err))
	}
	return nil
}

func (s *ttsService) response(a *models.AudioFile, cached bool) *models.TTSResponse {
	return &models.TTSResponse{
		Filename: a.Filename,
		AudioURL: s.mediaURL + "/" + string(models.MediaTypeAudio) + "/" + a.Filename,
		Language: a.Language,
		FileSize: a.FileSize,
		Duration: a.Duration,
		Cached:   cached,
	}
}
