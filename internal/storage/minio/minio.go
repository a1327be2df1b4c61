// minio предоставляет реализацию storage.Uploads на базе MinIO/S3.
// minio.go - конструктор клиента MinIO: нормализует endpoint,
// настраивает Secure/creds и проверяет наличие целевого бакета.
// uploads.go - генерация presigned PUT URL для изображений блога.
package minio

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pribylovaa/blog-service/internal/config"
	"github.com/pribylovaa/blog-service/internal/storage"
)

// UploadsStorage — адаптер MinIO для загрузки изображений.
type UploadsStorage struct {
	cfg    *config.Config
	client *mclient.Client
}

// New создает и инициализирует клиент MinIO.
// Убирает схему из endpoint, подбирает Secure по схеме
// и выполняет fail-fast-проверку доступности бакета.
func New(ctx context.Context, cfg *config.Config) (*UploadsStorage, error) {
	const op = "storage/minio/New"

	endpoint, secure := normalizeEndpoint(cfg.S3.Endpoint)

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.S3.RootUser, cfg.S3.RootPassword, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.S3.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, cfg.S3.Bucket)
	}

	return &UploadsStorage{cfg: cfg, client: client}, nil
}

// normalizeEndpoint возвращает host[:port] и признак TLS.
func normalizeEndpoint(endpoint string) (string, bool) {
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Host, u.Scheme == "https"
	}

	return endpoint, secure
}

// Проверка выполнения контракта.
var _ storage.Uploads = (*UploadsStorage)(nil)
