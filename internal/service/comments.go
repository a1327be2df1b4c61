package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pribylovaa/blog-service/internal/models"
	"github.com/pribylovaa/blog-service/internal/pkg/log"
	"github.com/pribylovaa/blog-service/internal/pkg/sanitize"
	"github.com/pribylovaa/blog-service/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgEmptyComment   = "Write something to leave a comment"
	msgForeignComment = "You can not delete this comment"
	commentAbsent     = "Comment not found"
)

// AddCommentInput — комментарий к блогу (BlogID — _id блога) или ответ (ReplyingTo).
// NotificationID — уведомление, из которого пользователь отвечает (опционально).
type AddCommentInput struct {
	BlogID         string
	Comment        string
	ReplyingTo     string
	NotificationID string
}

// AddComment добавляет комментарий или ответ.
//
// Валидация:
//   - текст после очистки от разметки не пуст;
//   - идентификаторы в формате ObjectID.
//
// Поведение:
//   - автор блога берётся из хранилища, а не из запроса;
//   - ответ на комментарий другого блога или несуществующий — ErrNotFound.
func (s *Service) AddComment(ctx context.Context, userID primitive.ObjectID, in AddCommentInput) (*models.Comment, error) {
	const op = "service/comments/AddComment"

	lg := log.From(ctx).With("op", op, "user_id", userID.Hex(), "blog", in.BlogID)

	text := sanitize.Text(in.Comment)
	if text == "" {
		lg.Warn("invalid argument: empty comment")

		return nil, fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, msgEmptyComment))
	}

	blogID, err := parseID(in.BlogID, "blog id")
	if err != nil {
		lg.Warn("invalid argument: blog id")

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	nc := models.NewComment{
		BlogID:      blogID,
		Comment:     text,
		CommentedBy: userID,
	}

	if in.ReplyingTo != "" {
		parent, err := parseID(in.ReplyingTo, "replying_to")
		if err != nil {
			lg.Warn("invalid argument: replying_to")

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		nc.ReplyingTo = &parent
	}

	if in.NotificationID != "" {
		nid, err := parseID(in.NotificationID, "notification_id")
		if err != nil {
			lg.Warn("invalid argument: notification_id")

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		nc.NotificationID = &nid
	}

	blog, err := s.storage.BlogByID(ctx, blogID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStorage(lg, err, blogAbsent))
	}

	nc.BlogAuthor = blog.Author

	comment, err := s.storage.CreateComment(ctx, nc)
	if err != nil {
		if errors.Is(err, storage.ErrParentNotFound) {
			lg.Warn("parent comment not found")

			return nil, fmt.Errorf("%s: %w", op, newError(ErrNotFound, commentAbsent))
		}

		return nil, fmt.Errorf("%s: %w", op, fromStorage(lg, err, blogAbsent))
	}

	return comment, nil
}

// BlogComments — страница корневых комментариев блога, skip — уже загружено.
func (s *Service) BlogComments(ctx context.Context, blogID string, skip int64) ([]models.Comment, error) {
	const op = "service/comments/BlogComments"

	lg := log.From(ctx).With("op", op, "blog", blogID)

	id, err := parseID(blogID, "blog id")
	if err != nil {
		lg.Warn("invalid argument: blog id")

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := s.storage.ListBlogComments(ctx, id, max(skip, 0), s.cfg.Limits.Comments)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStorage(lg, err, blogAbsent))
	}

	return out, nil
}

// Replies — страница ответов на комментарий.
func (s *Service) Replies(ctx context.Context, commentID string, skip int64) ([]models.Comment, error) {
	const op = "service/comments/Replies"

	lg := log.From(ctx).With("op", op, "comment", commentID)

	id, err := parseID(commentID, "comment id")
	if err != nil {
		lg.Warn("invalid argument: comment id")

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := s.storage.ListReplies(ctx, id, max(skip, 0), s.cfg.Limits.Comments)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStorage(lg, err, commentAbsent))
	}

	return out, nil
}

// DeleteComment удаляет комментарий со всеми ответами.
// Удалить может автор комментария или автор блога.
func (s *Service) DeleteComment(ctx context.Context, userID primitive.ObjectID, commentID string) error {
	const op = "service/comments/DeleteComment"

	lg := log.From(ctx).With("op", op, "user_id", userID.Hex(), "comment", commentID)

	id, err := parseID(commentID, "comment id")
	if err != nil {
		lg.Warn("invalid argument: comment id")

		return fmt.Errorf("%s: %w", op, err)
	}

	comment, err := s.storage.CommentByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, fromStorage(lg, err, commentAbsent))
	}

	if comment.CommentedBy != userID && comment.BlogAuthor != userID {
		lg.Warn("delete of foreign comment")

		return fmt.Errorf("%s: %w", op, newError(ErrForbidden, msgForeignComment))
	}

	if err := s.storage.DeleteCommentTree(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, fromStorage(lg, err, commentAbsent))
	}

	lg.Info("comment tree deleted")

	return nil
}
