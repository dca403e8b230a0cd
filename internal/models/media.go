package models

import "time"

// MediaType is the storage namespace of a stored file
type MediaType string

const (
	MediaTypeAudio MediaType = "audio"
	MediaTypePDF   MediaType = "pdf"
)

// IsValid reports whether t is a known media type
func (t MediaType) IsValid() bool {
	return t == MediaTypeAudio || t == MediaTypePDF
}

// AudioFile is a synthesized speech file
type AudioFile struct {
	ID           int       `json:"id"`
	Filename     string    `json:"filename"`
	OriginalText string    `json:"original_text"`
	Language     string    `json:"language"`
	FilePath     string    `json:"file_path"`
	FileSize     int64     `json:"file_size"`
	Duration     float64   `json:"duration"`
	CreatedAt    time.Time `json:"created_at"`
}

// TTSRequest represents a request to synthesize speech
type TTSRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// TTSResponse describes a synthesized audio file
type TTSResponse struct {
	Filename string  `json:"filename"`
	AudioURL string  `json:"audio_url"`
	Language string  `json:"language"`
	FileSize int64   `json:"file_size"`
	Duration float64 `json:"duration"`
	Cached   bool    `json:"cached"`
}

// TTSLanguage is a language the speech engine supports
type TTSLanguage struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// CleanupResult reports removed audio files
type CleanupResult struct {
	Deleted     int     `json:"deleted"`
	MaxAgeHours float64 `json:"max_age_hours"`
}

// PDFDocument is an uploaded source document
type PDFDocument struct {
	ID           int       `json:"id"`
	FileID       string    `json:"file_id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	FileSize     int64     `json:"file_size"`
	UploadedBy   *int      `json:"uploaded_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// PDFUploadResponse describes an uploaded PDF and its extracted text
type PDFUploadResponse struct {
	FileID           string    `json:"file_id"`
	Filename         string    `json:"filename"`
	OriginalName     string    `json:"original_name"`
	FileSize         int64     `json:"file_size"`
	UploadedAt       time.Time `json:"uploaded_at"`
	ExtractedContent string    `json:"extracted_content"`
	FileURL          string    `json:"file_url"`
}

// PDFExtractResponse carries re-extracted PDF text
type PDFExtractResponse struct {
	FileID           string `json:"file_id"`
	ExtractedContent string `json:"extracted_content"`
}
