package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/internal/storage"
	"github.com/roadsafety/backend/libs/apperrors"
	"github.com/roadsafety/backend/libs/handlers"
	"go.uber.org/zap"
)

// TTSService is the interface that wraps methods for speech synthesis.
type TTSService interface {
	Languages() []models.TTSLanguage
	// Method Synthesize return audio for "text", reusing a cached file when it still exists.
	//
	// If the text is empty or longer than 5000 characters, or the language is unknown,
	// a Validation error will be returned together with "nil" value.
	Synthesize(ctx context.Context, text, language string) (*models.TTSResponse, error)
	SynthesizeLesson(ctx context.Context, lessonID int) (*models.TTSResponse, error)
	// Method Cleanup remove audio older than "maxAge". Zero means 24 hours.
	Cleanup(ctx context.Context, maxAge time.Duration) (*models.CleanupResult, error)
}

// PDFService is the interface that wraps methods for PDF documents.
type PDFService interface {
	// Method Upload validate, extract and store a PDF.
	//
	// Files without the .pdf extension or %PDF header, larger than the limit or unreadable
	// are rejected with a Validation error.
	Upload(ctx context.Context, uploadedBy *int, originalName string, r io.Reader) (*models.PDFUploadResponse, error)
	Extract(ctx context.Context, fileID string) (*models.PDFExtractResponse, error)
	Delete(ctx context.Context, fileID string) error
}

const defaultTTSLanguage = "english"

// MediaHandler handles HTTP requests for speech, PDF documents and stored media files
type MediaHandler struct {
	handlers.BaseHandler
	tts        TTSService
	pdf        PDFService
	storage    storage.Storage
	maxPDFSize int64
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(tts TTSService, pdf PDFService, store storage.Storage, maxPDFSize int64, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		tts:         tts,
		pdf:         pdf,
		storage:     store,
		maxPDFSize:  maxPDFSize,
	}
}

// RegisterRoutes registers the public and learner media routes
func (h *MediaHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/tts/languages", h.Languages)
	r.Get("/media/{mediaType}/{filename}", h.DownloadFile)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/tts/synthesize", h.Synthesize)
		r.Post("/lessons/{id}/audio", h.SynthesizeLesson)
	})
}

// RegisterAdminRoutes registers the media management routes. The caller guards them with the admin middleware.
func (h *MediaHandler) RegisterAdminRoutes(r chi.Router) {
	r.Delete("/admin/tts/cleanup", h.Cleanup)
	r.Route("/admin/pdf", func(r chi.Router) {
		r.Post("/upload", h.UploadPDF)
		r.Get("/{fileID}/extract", h.ExtractPDF)
		r.Delete("/{fileID}", h.DeletePDF)
	})
}

// Languages handles GET /api/v1/tts/languages
// @Summary Supported speech languages
// @Tags tts
// @Produce json
// @Success 200 {array} models.TTSLanguage
// @Router /api/v1/tts/languages [get]
func (h *MediaHandler) Languages(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, h.tts.Languages())
}

// Synthesize handles POST /api/v1/tts/synthesize
// @Summary Synthesize speech
// @Tags tts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.TTSRequest true "Text and language (default: english)"
// @Success 200 {object} models.TTSResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /api/v1/tts/synthesize [post]
func (h *MediaHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req models.TTSRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	if req.Language == "" {
		req.Language = defaultTTSLanguage
	}

	resp, err := h.tts.Synthesize(r.Context(), req.Text, req.Language)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// SynthesizeLesson handles POST /api/v1/lessons/{id}/audio
// @Summary Synthesize lesson audio
// @Description Speech for the lesson content in the lesson language
// @Tags tts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Success 200 {object} models.TTSResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/lessons/{id}/audio [post]
func (h *MediaHandler) SynthesizeLesson(w http.ResponseWriter, r *http.Request) {
	lessonID, err := h.IntParam(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	resp, err := h.tts.SynthesizeLesson(r.Context(), lessonID)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// Cleanup handles DELETE /api/v1/admin/tts/cleanup
// @Summary Remove old audio files
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param max_age_hours query int false "Maximum age in hours (default: 24)"
// @Success 200 {object} models.CleanupResult
// @Failure 400 {object} handlers.ErrorResponse
// @Router /api/v1/admin/tts/cleanup [delete]
func (h *MediaHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	hours, err := h.IntQuery(r, "max_age_hours", 0)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	result, err := h.tts.Cleanup(r.Context(), time.Duration(hours)*time.Hour)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// UploadPDF handles POST /api/v1/admin/pdf/upload
// @Summary Upload PDF
// @Description Stores a PDF and returns its extracted text
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "PDF file"
// @Success 201 {object} models.PDFUploadResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Router /api/v1/admin/pdf/upload [post]
func (h *MediaHandler) UploadPDF(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	// Multipart overhead rides on top of the file itself
	r.Body = http.MaxBytesReader(w, r.Body, h.maxPDFSize+1<<20)
	if err := r.ParseMultipartForm(h.maxPDFSize); err != nil {
		h.Logger.Warn("failed to parse multipart form", zap.Error(err))
		h.RespondAppError(w, r, apperrors.Validation("invalid multipart upload"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.RespondAppError(w, r, apperrors.Validation("file is required"))
		return
	}
	defer file.Close()

	uploadedBy := principal.UserID
	resp, err := h.pdf.Upload(r.Context(), &uploadedBy, header.Filename, file)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, resp)
}

// ExtractPDF handles GET /api/v1/admin/pdf/{fileID}/extract
// @Summary Re-extract PDF text
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param fileID path string true "File ID"
// @Success 200 {object} models.PDFExtractResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/admin/pdf/{fileID}/extract [get]
func (h *MediaHandler) ExtractPDF(w http.ResponseWriter, r *http.Request) {
	resp, err := h.pdf.Extract(r.Context(), chi.URLParam(r, "fileID"))
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// DeletePDF handles DELETE /api/v1/admin/pdf/{fileID}
// @Summary Delete PDF
// @Tags admin
// @Security BearerAuth
// @Param fileID path string true "File ID"
// @Success 204 "No Content"
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/admin/pdf/{fileID} [delete]
func (h *MediaHandler) DeletePDF(w http.ResponseWriter, r *http.Request) {
	if err := h.pdf.Delete(r.Context(), chi.URLParam(r, "fileID")); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DownloadFile handles GET /api/v1/media/{mediaType}/{filename}
// @Summary Download media file
// @Tags media
// @Produce application/octet-stream
// @Param mediaType path string true "audio or pdf"
// @Param filename path string true "File name"
// @Success 200 "File content"
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/media/{mediaType}/{filename} [get]
func (h *MediaHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	mediaType := models.MediaType(chi.URLParam(r, "mediaType"))
	filename := chi.URLParam(r, "filename")
	if !mediaType.IsValid() {
		h.RespondAppError(w, r, apperrors.Validation("invalid media type"))
		return
	}

	obj, err := h.storage.Open(r.Context(), filename, string(mediaType))
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
		h.RespondAppError(w, r, apperrors.NotFound("file not found"))
		return
	}
	if err != nil {
		h.RespondAppError(w, r, apperrors.Internal("failed to open file", err))
		return
	}
	defer obj.Close()

	contentType := obj.ContentType
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = storage.ContentTypeFor(filename)
	}
	w.Header().Set("Content-Type", contentType)
	if obj.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.Header().Set("Content-Disposition", `inline; filename="`+filepath.Base(filename)+`"`)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, obj); err != nil {
		h.Logger.Error("failed to copy file to response", zap.Error(err))
	}
}
