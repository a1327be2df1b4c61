package minio

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/blog-service/internal/storage"
)

// ImageUploadURL генерирует presigned PUT URL для изображения.
// Ключ имеет вид "images/<uuid>-<unix-ms>.<ext>"; тип содержимого
// должен входить в upload.allowed_content_types.
func (s *UploadsStorage) ImageUploadURL(ctx context.Context, contentType string) (*storage.UploadInfo, error) {
	const op = "storage/minio/uploads/ImageUploadURL"

	if !slices.Contains(s.cfg.Upload.AllowedContentTypes, contentType) {
		return nil, fmt.Errorf("%s: content type %q: %w", op, contentType, storage.ErrInvalidArgument)
	}

	key := imageKey(uuid.NewString(), time.Now(), contentType)

	u, err := s.client.PresignedPutObject(ctx, s.cfg.S3.Bucket, key, s.cfg.S3.PresignTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	public := *u
	public.RawQuery = ""
	publicURL := public.String()
	if base := strings.TrimRight(s.cfg.S3.PublicBaseURL, "/"); base != "" {
		publicURL = base + "/" + key
	}

	return &storage.UploadInfo{
		UploadURL: u.String(),
		Key:       key,
		PublicURL: publicURL,
		Expires:   s.cfg.S3.PresignTTL,
	}, nil
}

// imageKey формирует ключ объекта: images/<id>-<unix-ms><ext>.
func imageKey(id string, at time.Time, contentType string) string {
	return path.Join("images", fmt.Sprintf("%s-%d%s", id, at.UnixMilli(), extFor(contentType)))
}

func extFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpeg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}
