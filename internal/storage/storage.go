// Package storage keeps media files (synthesized audio, uploaded PDFs) on the
// local filesystem or in a MinIO bucket.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	// ErrNotFound is returned when the requested file does not exist
	ErrNotFound = errors.New("file not found")
	// ErrInvalidName is returned for ids or media types that would escape the storage root
	ErrInvalidName = errors.New("invalid file name")
)

// Storage is the behaviour shared by every backend
type Storage interface {
	// Save writes the content of r under id and returns the number of bytes stored.
	// size may be -1 when unknown.
	Save(ctx context.Context, id, mediaType string, r io.Reader, size int64, contentType string) (int64, error)
	// Open returns a reader for the file. The caller closes it.
	Open(ctx context.Context, id, mediaType string) (*Object, error)
	// Delete removes the file, returning ErrNotFound if it does not exist
	Delete(ctx context.Context, id, mediaType string) error
	// Exists reports whether the file is stored
	Exists(ctx context.Context, id, mediaType string) (bool, error)
}

// Object is an open stored file
type Object struct {
	io.ReadCloser
	Size        int64
	ContentType string
}

// validateName rejects empty names and names containing path elements
func validateName(id, mediaType string) error {
	if id == "" || mediaType == "" {
		return ErrInvalidName
	}
	for _, part := range []string{id, mediaType} {
		if strings.ContainsAny(part, `/\`) || strings.Contains(part, "..") {
			return ErrInvalidName
		}
	}
	return nil
}
