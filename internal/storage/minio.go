package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const noSuchKey = "NoSuchKey"

// minioStorage stores files as <mediaType>/<id> objects in a single bucket
type minioStorage struct {
	client *minio.Client
	bucket string
}

// NewMinioClient connects to a MinIO or S3-compatible endpoint
func NewMinioClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return client, nil
}

// NewMinioStorage creates a new bucket-backed storage
func NewMinioStorage(client *minio.Client, bucket string) *minioStorage {
	return &minioStorage{
		client: client,
		bucket: bucket,
	}
}

// EnsureBucket creates the bucket if it does not exist yet
func (s *minioStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

func objectName(id, mediaType string) (string, error) {
	if err := validateName(id, mediaType); err != nil {
		return "", err
	}
	return mediaType + "/" + id, nil
}

func isNoSuchKey(err error) bool {
	return err != nil && minio.ToErrorResponse(err).Code == noSuchKey
}

// Save uploads r as an object
func (s *minioStorage) Save(ctx context.Context, id, mediaType string, r io.Reader, size int64, contentType string) (int64, error) {
	name, err := objectName(id, mediaType)
	if err != nil {
		return 0, err
	}

	info, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return 0, fmt.Errorf("failed to upload object: %w", err)
	}
	return info.Size, nil
}

// Open downloads an object
func (s *minioStorage) Open(ctx context.Context, id, mediaType string) (*Object, error) {
	name, err := objectName(id, mediaType)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}

	// GetObject is lazy; Stat surfaces a missing key
	info, err := obj.Stat()
	if isNoSuchKey(err) {
		obj.Close()
		return nil, ErrNotFound
	}
	if err != nil {
		obj.Close()
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = ContentTypeFor(id)
	}
	return &Object{ReadCloser: obj, Size: info.Size, ContentType: contentType}, nil
}

// Delete removes an object
func (s *minioStorage) Delete(ctx context.Context, id, mediaType string) error {
	exists, err := s.Exists(ctx, id, mediaType)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	name, _ := objectName(id, mediaType)
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

// Exists reports whether an object is stored
func (s *minioStorage) Exists(ctx context.Context, id, mediaType string) (bool, error) {
	name, err := objectName(id, mediaType)
	if err != nil {
		return false, err
	}

	_, err = s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	if isNoSuchKey(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat object: %w", err)
	}
	return true, nil
}
