package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudioRepository(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewAudioRepository(db)
	now := time.Now()
	cutoff := now.Add(-24 * time.Hour)

	mock.ExpectExec(`INSERT INTO audio_files`).
		WithArgs("tts_1.mp3", "Stop at red", "english", "audio/tts_1.mp3", int64(2048), 1.5, now).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec(`INSERT INTO audio_files`).
		WillReturnError(duplicateEntryErr)
	mock.ExpectQuery(`FROM audio_files WHERE created_at < \?`).
		WithArgs(cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "original_text", "language", "file_path", "file_size", "duration", "created_at"}).
			AddRow(1, "tts_old.mp3", "x", "french", "audio/tts_old.mp3", 100, 0.5, cutoff.Add(-time.Hour)))
	mock.ExpectQuery(`FROM audio_files WHERE filename = \?`).
		WithArgs("tts_1.mp3").
		WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "original_text", "language", "file_path", "file_size", "duration", "created_at"}).
			AddRow(3, "tts_1.mp3", "Stop at red", "english", "audio/tts_1.mp3", 2048, 1.5, now))
	mock.ExpectQuery(`FROM audio_files WHERE filename = \?`).
		WithArgs("missing.mp3").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`DELETE FROM audio_files WHERE id = \?`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	audio := &models.AudioFile{Filename: "tts_1.mp3", OriginalText: "Stop at red", Language: "english", FilePath: "audio/tts_1.mp3", FileSize: 2048, Duration: 1.5, CreatedAt: now}
	require.NoError(t, repo.Create(context.Background(), audio))
	assert.Equal(t, 3, audio.ID)

	err := repo.Create(context.Background(), audio)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	old, err := repo.ListOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	require.Len(t, old, 1)
	assert.Equal(t, "tts_old.mp3", old[0].Filename)

	stored, err := repo.GetByFilename(context.Background(), "tts_1.mp3")
	require.NoError(t, err)
	assert.Equal(t, int64(2048), stored.FileSize)
	assert.Equal(t, 1.5, stored.Duration)

	_, err = repo.GetByFilename(context.Background(), "missing.mp3")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	require.NoError(t, repo.Delete(context.Background(), 1))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPDFRepository(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewPDFRepository(db)
	now := time.Now()
	uploader := 1
	fileID := "2b1a7c55-8e0c-4b8a-9d55-3b0f6f1c9a10"

	mock.ExpectExec(`INSERT INTO pdf_documents`).
		WithArgs(fileID, fileID+".pdf", "handbook.pdf", int64(5000), 1, now).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectQuery(`FROM pdf_documents WHERE file_id = \?`).
		WithArgs(fileID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "file_id", "filename", "original_name", "file_size", "uploaded_by", "created_at"}).
			AddRow(2, fileID, fileID+".pdf", "handbook.pdf", 5000, nil, now))
	mock.ExpectQuery(`FROM pdf_documents WHERE file_id = \?`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`DELETE FROM pdf_documents WHERE file_id = \?`).
		WithArgs(fileID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	doc := &models.PDFDocument{FileID: fileID, Filename: fileID + ".pdf", OriginalName: "handbook.pdf", FileSize: 5000, UploadedBy: &uploader, CreatedAt: now}
	require.NoError(t, repo.Create(context.Background(), doc))
	assert.Equal(t, 2, doc.ID)

	stored, err := repo.GetByFileID(context.Background(), fileID)
	require.NoError(t, err)
	assert.Nil(t, stored.UploadedBy)

	_, err = repo.GetByFileID(context.Background(), "missing")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	require.NoError(t, repo.DeleteByFileID(context.Background(), fileID))

	assert.NoError(t, mock.ExpectationsWereMet())
}
