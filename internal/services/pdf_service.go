package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/internal/storage"
	"github.com/roadsafety/backend/libs/apperrors"
	"go.uber.org/zap"
)

// TextExtractor is the interface of the PDF text extraction engine
type TextExtractor interface {
	// Method Extract return the cleaned text of all pages of the PDF in "data".
	//
	// If the document cannot be parsed, the error will be returned together with an empty string.
	Extract(ctx context.Context, data []byte) (string, error)
}

// PDFRepository is the interface that wraps methods for PDFDocuments table data access
type PDFRepository interface {
	Create(ctx context.Context, doc *models.PDFDocument) error
	// Method GetByFileID retrieve document metadata by its public file ID.
	//
	// If the document does not exist, a NotFound error will be returned together with "nil" value.
	GetByFileID(ctx context.Context, fileID string) (*models.PDFDocument, error)
	DeleteByFileID(ctx context.Context, fileID string) error
}

// DefaultMaxPDFSize is the upload limit used when none is configured
const DefaultMaxPDFSize = 10 << 20

var pdfMagic = []byte("%PDF")

type pdfService struct {
	repo      PDFRepository
	storage   storage.Storage
	extractor TextExtractor
	mediaURL  string
	maxSize   int64
	logger    *zap.Logger
	now       func() time.Time
}

// NewPDFService creates a new PDF upload service. A non-positive maxSize means DefaultMaxPDFSize.
func NewPDFService(repo PDFRepository, store storage.Storage, extractor TextExtractor, mediaURL string, maxSize int64, logger *zap.Logger) *pdfService {
	if maxSize <= 0 {
		maxSize = DefaultMaxPDFSize
	}
	return &pdfService{
		repo:      repo,
		storage:   store,
		extractor: extractor,
		mediaURL:  strings.TrimRight(mediaURL, "/"),
		maxSize:   maxSize,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Upload validates, extracts and stores a PDF.
//
// The file must carry a .pdf extension and start with the %PDF header. Documents the
// extractor cannot parse are rejected before anything is stored.
func (s *pdfService) Upload(ctx context.Context, uploadedBy *int, originalName string, r io.Reader) (*models.PDFUploadResponse, error) {
	originalName = filepath.Base(strings.TrimSpace(originalName))
	if !strings.EqualFold(filepath.Ext(originalName), ".pdf") {
		return nil, apperrors.Validation("only PDF files are allowed")
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, apperrors.Validation("file size exceeds the %d byte limit", s.maxSize)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, apperrors.Validation("file is not a valid PDF")
	}

	text, err := s.extractor.Extract(ctx, data)
	if err != nil {
		s.logger.Warn("failed to extract pdf text", zap.Error(err), zap.String("original_name", originalName))
		return nil, apperrors.Validation("could not read PDF content")
	}

	fileID := uuid.New().String()
	filename := fileID + ".pdf"
	size, err := s.storage.Save(ctx, filename, string(models.MediaTypePDF), bytes.NewReader(data), int64(len(data)), "application/pdf")
	if err != nil {
		s.logger.Error("failed to store pdf", zap.Error(err), zap.String("file_id", fileID))
		return nil, fmt.Errorf("failed to store pdf: %w", err)
	}

	doc := &models.PDFDocument{
		FileID:       fileID,
		Filename:     filename,
		OriginalName: originalName,
		FileSize:     size,
		UploadedBy:   uploadedBy,
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		if delErr := s.storage.Delete(ctx, filename, string(models.MediaTypePDF)); delErr != nil {
			s.logger.Warn("failed to remove orphaned pdf", zap.Error(delErr), zap.String("file_id", fileID))
		}
		return nil, fmt.Errorf("failed to save pdf metadata: %w", err)
	}

	s.logger.Info("PDF uploaded", zap.String("file_id", fileID), zap.Int64("size", size))
	return &models.PDFUploadResponse{
		FileID:           fileID,
		Filename:         filename,
		OriginalName:     originalName,
		FileSize:         size,
		UploadedAt:       doc.CreatedAt,
		ExtractedContent: text,
		FileURL:          s.fileURL(filename),
	}, nil
}

// Extract re-reads the text of a stored PDF
func (s *pdfService) Extract(ctx context.Context, fileID string) (*models.PDFExtractResponse, error) {
	doc, err := s.repo.GetByFileID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pdf: %w", err)
	}

	obj, err := s.storage.Open(ctx, doc.Filename, string(models.MediaTypePDF))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NotFound("pdf file not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}

	text, err := s.extractor.Extract(ctx, data)
	if err != nil {
		s.logger.Error("failed to extract pdf text", zap.Error(err), zap.String("file_id", fileID))
		return nil, fmt.Errorf("failed to extract pdf text: %w", err)
	}

	return &models.PDFExtractResponse{FileID: fileID, ExtractedContent: text}, nil
}

// Delete removes a stored PDF and its metadata. A file already missing from storage is ignored.
func (s *pdfService) Delete(ctx context.Context, fileID string) error {
	doc, err := s.repo.GetByFileID(ctx, fileID)
	if err != nil {
		return fmt.Errorf("failed to get pdf: %w", err)
	}

	err = s.storage.Delete(ctx, doc.Filename, string(models.MediaTypePDF))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error("failed to delete pdf file", zap.Error(err), zap.String("file_id", fileID))
		return fmt.Errorf("failed to delete pdf file: %w", err)
	}

	if err := s.repo.DeleteByFileID(ctx, fileID); err != nil {
		return fmt.Errorf("failed to delete pdf: %w", err)
	}

	s.logger.Info("PDF deleted", zap.String("file_id", fileID))
	return nil
}

func (s *pdfService) fileURL(filename string) string {
	return s.mediaURL + "/" + string(models.MediaTypePDF) + "/" + filename
}
