package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pribylovaa/blog-service/internal/pkg/log"
	"github.com/pribylovaa/blog-service/internal/pkg/redact"
	"github.com/pribylovaa/blog-service/internal/storage"
)

const defaultImageType = "image/jpeg"

// UploadURL выдаёт presigned PUT URL для изображения.
// Пустой contentType трактуется как image/jpeg.
func (s *Service) UploadURL(ctx context.Context, contentType string) (*storage.UploadInfo, error) {
	const op = "service/uploads/UploadURL"

	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType == "" {
		contentType = defaultImageType
	}

	lg := log.From(ctx).With("op", op, "content_type", contentType)

	info, err := s.uploads.ImageUploadURL(ctx, contentType)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidArgument) {
			lg.Warn("invalid argument: content type")

			return nil, fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, "Unsupported image type"))
		}

		lg.Error("presign failed", "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Debug("upload url issued", "key", info.Key, "url", redact.URL(info.UploadURL))

	return info, nil
}
