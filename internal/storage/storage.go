// storage содержит контракты слоя хранилищ blog-service.
//
// storage.go - коллекции MongoDB: пользователи, блоги, комментарии, уведомления.
// uploads.go - контракт выдачи presigned URL для загрузки изображений в S3/MinIO.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/pribylovaa/blog-service/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrConflict — конфликт уникальности (email, username, blog_id, like).
	ErrConflict = errors.New("conflict")
	// ErrUsernameTaken — занят username; errors.Is(err, ErrConflict) тоже истинно.
	ErrUsernameTaken = fmt.Errorf("username %w", ErrConflict)
	// ErrParentNotFound — указан родительский комментарий, но он не найден
	// или относится к другому блогу.
	ErrParentNotFound = errors.New("parent not found")
)

// Users — контракт коллекции пользователей.
type Users interface {
	// CreateUser сохраняет нового пользователя. Занятый email — ErrConflict,
	// занятый username — ErrUsernameTaken.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	// UserByID / UserByEmail / UserByUsername — чтение; нет записи — ErrNotFound.
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	// UsernameExists сообщает, занят ли username.
	UsernameExists(ctx context.Context, username string) (bool, error)
	// UpdatePassword заменяет хэш пароля.
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	// UpdateProfile обновляет username/bio/social_links. Занятый username — ErrConflict.
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) error
	// UpdateProfileImg заменяет ссылку на аватар.
	UpdateProfileImg(ctx context.Context, id primitive.ObjectID, url string) error
	// SearchUsers ищет по подстроке username (без учёта регистра).
	SearchUsers(ctx context.Context, query string, limit int64) ([]models.AuthorRef, error)
}

// Blogs — контракт коллекции блогов.
type Blogs interface {
	// CreateBlog сохраняет блог. Для опубликованного блога у автора
	// total_posts+1 и ссылка на блог добавляется в blogs.
	CreateBlog(ctx context.Context, blog models.Blog) (*models.Blog, error)
	// UpdateBlog заменяет редактируемые поля блога с blog.BlogID.
	// Переход draft -> published учитывается в total_posts автора.
	UpdateBlog(ctx context.Context, blog models.Blog) (*models.Blog, error)
	// BlogByID возвращает блог по _id (без populate).
	BlogByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error)
	// ReadBlog возвращает блог по slug с заполненным автором.
	// incReads=true увеличивает total_reads у опубликованного блога и у автора.
	ReadBlog(ctx context.Context, blogID string, incReads bool) (*models.Blog, error)
	// ListBlogs / CountBlogs — выдача по фильтру BlogQuery.
	ListBlogs(ctx context.Context, q models.BlogQuery) ([]models.Blog, error)
	CountBlogs(ctx context.Context, q models.BlogQuery) (int64, error)
	// DeleteBlog удаляет блог вместе с комментариями и уведомлениями,
	// убирает ссылку у автора и (для опубликованного) уменьшает total_posts.
	DeleteBlog(ctx context.Context, blogID string) error
}

// Comments — контракт коллекции комментариев.
type Comments interface {
	// CreateComment создаёт комментарий или ответ, обновляет счётчики блога,
	// children родителя и создаёт уведомление автору блога (или родителя).
	// Возможные ошибки: ErrNotFound (блог), ErrParentNotFound.
	CreateComment(ctx context.Context, comment models.NewComment) (*models.Comment, error)
	// CommentByID возвращает комментарий; нет записи — ErrNotFound.
	CommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	// ListBlogComments — корневые комментарии блога, сначала новые.
	ListBlogComments(ctx context.Context, blogID primitive.ObjectID, skip, limit int64) ([]models.Comment, error)
	// ListReplies — прямые ответы на комментарий, сначала новые.
	ListReplies(ctx context.Context, parentID primitive.ObjectID, skip, limit int64) ([]models.Comment, error)
	// DeleteCommentTree удаляет комментарий со всеми потомками и связанными уведомлениями.
	DeleteCommentTree(ctx context.Context, id primitive.ObjectID) error
}

// Notifications — контракт коллекции уведомлений (включая лайки).
type Notifications interface {
	// LikeBlog фиксирует лайк. Повторный лайк ничего не меняет.
	LikeBlog(ctx context.Context, userID, blogID, blogAuthor primitive.ObjectID) error
	// UnlikeBlog снимает лайк. Отсутствие лайка — не ошибка.
	UnlikeBlog(ctx context.Context, userID, blogID primitive.ObjectID) error
	// IsLiked сообщает, есть ли лайк пользователя на блоге.
	IsLiked(ctx context.Context, userID, blogID primitive.ObjectID) (bool, error)
	// HasUnseen — есть ли непросмотренные уведомления от других пользователей.
	HasUnseen(ctx context.Context, userID primitive.ObjectID) (bool, error)
	// ListNotifications возвращает страницу и помечает её просмотренной.
	ListNotifications(ctx context.Context, q models.NotificationQuery) ([]models.Notification, error)
	CountNotifications(ctx context.Context, q models.NotificationQuery) (int64, error)
}

// Storage — верхнеуровневый интерфейс хранилища документов.
type Storage interface {
	Users
	Blogs
	Comments
	Notifications
	Close(ctx context.Context) error
}
