package storage

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// GenerateFileName generates a UUID-based file name with the given prefix and extension
func GenerateFileName(prefix, extension string) string {
	name := prefix + uuid.New().String()
	// Ensure extension starts with a dot if it doesn't already
	if extension != "" && extension[0] != '.' {
		return name + "." + extension
	}
	return name + extension
}

// ContentTypeFor infers the content type from the file extension
func ContentTypeFor(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mp3":
		return "audio/mpeg"
	case ".pdf":
		return "application/pdf"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// sizeWriter tracks the total number of bytes written through it
type sizeWriter struct {
	size int64
}

// Write implements io.Writer
func (sw *sizeWriter) Write(p []byte) (int, error) {
	n := len(p)
	sw.size += int64(n)
	return n, nil
}

// Size returns the total number of bytes written
func (sw *sizeWriter) Size() int64 {
	return sw.size
}
