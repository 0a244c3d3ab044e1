package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"sstcore/internal/apperrors"
	"sstcore/internal/store"
)

// EvidenceService stores finding photo evidence in object storage. Keys are
// prefixed with the tenant id, keeping evidence isolation aligned with the
// store handles.
type EvidenceService interface {
	UploadPhoto(ctx context.Context, h store.Handle, filename string, reader io.Reader, size int64, contentType string) (string, error)
	PhotoURL(ctx context.Context, h store.Handle, key string, expiry time.Duration) (string, error)
	EnsureBucket(ctx context.Context) error
}

type evidenceService struct {
	client *minio.Client
	bucket string
}

func NewEvidenceService(endpoint, accessKey, secretKey, bucket string, useSSL bool) (EvidenceService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &evidenceService{client: client, bucket: bucket}, nil
}

func (s *evidenceService) UploadPhoto(ctx context.Context, h store.Handle, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	const op = "evidence.UploadPhoto"

	if h.Zero() {
		return "", apperrors.Invalid(op, "no tenant handle")
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key := fmt.Sprintf("%s/findings/%s-%s", h.TenantID(), uuid.NewString(), filename)
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", apperrors.Unavailable(op, err)
	}
	return key, nil
}

// PhotoURL refuses keys outside the handle's tenant prefix.
func (s *evidenceService) PhotoURL(ctx context.Context, h store.Handle, key string, expiry time.Duration) (string, error) {
	const op = "evidence.PhotoURL"

	if h.Zero() {
		return "", apperrors.Invalid(op, "no tenant handle")
	}
	prefix := h.TenantID().String() + "/"
	if len(key) < len(prefix) || key[:len(prefix)] != prefix {
		return "", apperrors.Invalid(op, "evidence key outside tenant scope")
	}

	url, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, nil)
	if err != nil {
		return "", apperrors.Unavailable(op, err)
	}
	return url.String(), nil
}

func (s *evidenceService) EnsureBucket(ctx context.Context) error {
	const op = "evidence.EnsureBucket"

	found, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return apperrors.Unavailable(op, err)
	}
	if !found {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return apperrors.Unavailable(op, err)
		}
	}
	return nil
}
