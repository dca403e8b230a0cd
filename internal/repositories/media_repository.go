package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/apperrors"
)

type audioRepository struct {
	db *sql.DB
}

// NewAudioRepository creates a new audio file metadata repository
func NewAudioRepository(db *sql.DB) *audioRepository {
	return &audioRepository{
		db: db,
	}
}

// Create inserts audio file metadata and sets its ID
func (r *audioRepository) Create(ctx context.Context, a *models.AudioFile) error {
	query := `
		INSERT INTO audio_files (filename, original_text, language, file_path, file_size, duration, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		a.Filename, a.OriginalText, a.Language, a.FilePath, a.FileSize, a.Duration, a.CreatedAt,
	)
	if isDuplicateEntry(err) {
		return apperrors.Conflict("audio file already exists")
	}
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	a.ID = int(id)

	return nil
}

const audioColumns = `id, filename, original_text, language, file_path, file_size, duration, created_at`

func scanAudio(row interface{ Scan(...any) error }, a *models.AudioFile) error {
	return row.Scan(&a.ID, &a.Filename, &a.OriginalText, &a.Language, &a.FilePath, &a.FileSize, &a.Duration, &a.CreatedAt)
}

// GetByFilename retrieves audio file metadata by its stored filename
func (r *audioRepository) GetByFilename(ctx context.Context, filename string) (*models.AudioFile, error) {
	query := `SELECT ` + audioColumns + ` FROM audio_files WHERE filename = ? LIMIT 1`

	var a models.AudioFile
	err := scanAudio(r.db.QueryRowContext(ctx, query, filename), &a)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("audio file not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audio file: %w", err)
	}

	return &a, nil
}

// ListOlderThan retrieves audio files created before cutoff
func (r *audioRepository) ListOlderThan(ctx context.Context, cutoff time.Time) ([]models.AudioFile, error) {
	query := `SELECT ` + audioColumns + ` FROM audio_files WHERE created_at < ? ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query audio files: %w", err)
	}
	defer rows.Close()

	files := []models.AudioFile{}
	for rows.Next() {
		var a models.AudioFile
		if err := scanAudio(rows, &a); err != nil {
			return nil, fmt.Errorf("failed to scan audio file: %w", err)
		}
		files = append(files, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return files, nil
}

// Delete removes an audio file row
func (r *audioRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM audio_files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete audio file: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("audio file not found")
	}

	return nil
}

type pdfRepository struct {
	db *sql.DB
}

// NewPDFRepository creates a new PDF document metadata repository
func NewPDFRepository(db *sql.DB) *pdfRepository {
	return &pdfRepository{
		db: db,
	}
}

// Create inserts PDF document metadata and sets its ID
func (r *pdfRepository) Create(ctx context.Context, doc *models.PDFDocument) error {
	query := `
		INSERT INTO pdf_documents (file_id, filename, original_name, file_size, uploaded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		doc.FileID, doc.Filename, doc.OriginalName, doc.FileSize, doc.UploadedBy, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create pdf document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	doc.ID = int(id)

	return nil
}

// GetByFileID retrieves PDF document metadata by its public file ID
func (r *pdfRepository) GetByFileID(ctx context.Context, fileID string) (*models.PDFDocument, error) {
	query := `
		SELECT id, file_id, filename, original_name, file_size, uploaded_by, created_at
		FROM pdf_documents
		WHERE file_id = ?
		LIMIT 1
	`

	var doc models.PDFDocument
	var uploadedBy sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, fileID).Scan(
		&doc.ID, &doc.FileID, &doc.Filename, &doc.OriginalName, &doc.FileSize, &uploadedBy, &doc.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("pdf document not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pdf document: %w", err)
	}
	if uploadedBy.Valid {
		id := int(uploadedBy.Int64)
		doc.UploadedBy = &id
	}

	return &doc, nil
}

// DeleteByFileID removes PDF document metadata
func (r *pdfRepository) DeleteByFileID(ctx context.Context, fileID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pdf_documents WHERE file_id = ?`, fileID)
	if err != nil {
		return fmt.Errorf("failed to delete pdf document: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("pdf document not found")
	}

	return nil
}
