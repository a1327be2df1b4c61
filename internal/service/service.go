// service содержит бизнес-логику blog-service:
//   - регистрация и вход (пароль, Google), выпуск и проверка access-токенов;
//   - блоги (создание/редактирование, выдача, поиск, удаление);
//   - комментарии и ответы, лайки, уведомления;
//   - профили пользователей и выдача URL для загрузки изображений.
//
// Service не хранит состояние запроса и безопасен для конкурентного
// использования при условии, что переданные хранилища потокобезопасны.
// Ошибки оборачивают одну из переменных ниже; транспорт маппит их на HTTP-статусы.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/blog-service/internal/cache"
	"github.com/pribylovaa/blog-service/internal/config"
	"github.com/pribylovaa/blog-service/internal/models"
	"github.com/pribylovaa/blog-service/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrInvalidArgument — некорректные входные данные (валидация).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthenticated — нет/некорректный токен или неверные учётные данные Google.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden — действие запрещено для этого пользователя.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound — сущность не найдена.
	ErrNotFound = errors.New("not found")
	// ErrConflict — конфликт уникальности (email, username).
	ErrConflict = errors.New("conflict")
	// ErrInternal — внутренняя ошибка сервиса.
	ErrInternal = errors.New("internal")
)

// Error — ошибка с сообщением для клиента. Kind — одна из переменных выше.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// IdentityVerifier проверяет ID-токен внешнего провайдера.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*models.Identity, error)
}

// Service описывает бизнес-логику blog-service.
type Service struct {
	cfg      *config.Config
	storage  storage.Storage
	uploads  storage.Uploads
	identity IdentityVerifier    // может быть nil, если Google-вход не сконфигурирован
	trending cache.TrendingCache // может быть nil, если Redis не сконфигурирован
}

// New создаёт новый экземпляр Service.
func New(st storage.Storage, uploads storage.Uploads, cfg *config.Config) *Service {
	return &Service{
		cfg:     cfg,
		storage: st,
		uploads: uploads,
	}
}

// SetIdentityVerifier включает вход через Google (опционально).
func (s *Service) SetIdentityVerifier(v IdentityVerifier) {
	s.identity = v
}

// SetTrendingCache устанавливает кэш ленты трендов (опционально).
func (s *Service) SetTrendingCache(c cache.TrendingCache) {
	s.trending = c
}

// fromStorage логирует ошибку хранилища и приводит её к ошибке сервиса.
// storage.ErrNotFound превращается в ErrNotFound с сообщением notFound.
func fromStorage(lg *slog.Logger, err error, notFound string) error {
	return storageError(lg, err, ErrNotFound, notFound)
}

// storageError — fromStorage с произвольным видом ошибки для storage.ErrNotFound.
// Отмена и дедлайн контекста возвращаются как есть.
func storageError(lg *slog.Logger, err error, notFoundKind error, msg string) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		lg.Warn("not found", "err", err)

		return newError(notFoundKind, msg)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		lg.Warn("request aborted", "err", err)

		return err
	default:
		lg.Error("storage error", "err", err)

		return ErrInternal
	}
}

// parseID разбирает hex ObjectID из запроса.
func parseID(raw, field string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, newError(ErrInvalidArgument, fmt.Sprintf("invalid %s", field))
	}

	return id, nil
}

// pageSkip переводит номер страницы (с 1) в смещение.
// deleted — сколько элементов клиент удалил на уже загруженных страницах.
func pageSkip(page, limit, deleted int64) int64 {
	if page < 1 {
		page = 1
	}

	skip := (page-1)*limit - deleted
	if skip < 0 {
		return 0
	}

	return skip
}

// clampLimit приводит запрошенный размер страницы к [1, limits.max]; 0 — def.
func (s *Service) clampLimit(requested, def int64) int64 {
	if requested <= 0 {
		return def
	}

	if requested > s.cfg.Limits.Max {
		return s.cfg.Limits.Max
	}

	return requested
}

// invalidateTrending сбрасывает кэш трендов; ошибка кэша не влияет на ответ.
func (s *Service) invalidateTrending(ctx context.Context, lg *slog.Logger) {
	if s.trending == nil {
		return
	}

	if err := s.trending.Invalidate(ctx); err != nil {
		lg.Warn("trending cache invalidate failed", "err", err)
	}
}
