package storage

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidArgument — нарушены ограничения запроса на загрузку (тип содержимого).
var ErrInvalidArgument = errors.New("invalid argument")

// UploadInfo — информация для клиента о presigned PUT загрузке.
//   - UploadURL: URL для PUT-запроса;
//   - Key: ключ будущего объекта в бакете;
//   - PublicURL: адрес объекта после загрузки (если задан PublicBaseURL);
//   - Expires: время жизни подписи.
type UploadInfo struct {
	UploadURL string
	Key       string
	PublicURL string
	Expires   time.Duration
}

// Uploads — контракт выдачи presigned URL для изображений (баннеры, аватары, блоки).
type Uploads interface {
	// ImageUploadURL генерирует presigned PUT. Недопустимый contentType — ErrInvalidArgument.
	ImageUploadURL(ctx context.Context, contentType string) (*UploadInfo, error)
}
