package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// localStorage stores files under basePath/<mediaType>/<id>
type localStorage struct {
	basePath string
}

// NewLocalStorage creates a new local filesystem storage
func NewLocalStorage(basePath string) *localStorage {
	return &localStorage{
		basePath: basePath,
	}
}

// generatePath builds the full file path for id and mediaType
func (s *localStorage) generatePath(id, mediaType string) (string, error) {
	if err := validateName(id, mediaType); err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, mediaType, id), nil
}

// Save writes r to a temporary file and renames it into place
func (s *localStorage) Save(ctx context.Context, id, mediaType string, r io.Reader, size int64, contentType string) (int64, error) {
	path, err := s.generatePath(id, mediaType)
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+id+".*")
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	sw := &sizeWriter{}
	if _, err := io.Copy(tmp, io.TeeReader(r, sw)); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("failed to move file into place: %w", err)
	}

	return sw.Size(), nil
}

// Open opens a stored file for reading
func (s *localStorage) Open(ctx context.Context, id, mediaType string) (*Object, error) {
	path, err := s.generatePath(id, mediaType)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &Object{ReadCloser: f, Size: info.Size(), ContentType: ContentTypeFor(id)}, nil
}

// Delete removes a stored file
func (s *localStorage) Delete(ctx context.Context, id, mediaType string) error {
	path, err := s.generatePath(id, mediaType)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists reports whether a file is stored
func (s *localStorage) Exists(ctx context.Context, id, mediaType string) (bool, error) {
	path, err := s.generatePath(id, mediaType)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat file: %w", err)
	}
	return true, nil
}
