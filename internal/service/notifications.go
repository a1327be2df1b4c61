package service

import (
	"context"
	"fmt"

	"github.com/pribylovaa/blog-service/internal/models"
	"github.com/pribylovaa/blog-service/internal/pkg/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// filterAll — все типы уведомлений.
const filterAll = "all"

// NotificationsInput — страница уведомлений.
// Filter: "all", "like", "comment" или "reply".
type NotificationsInput struct {
	Page            int64
	Filter          string
	DeletedDocCount int64
}

// LikeBlog переключает лайк: isLikedByUser=false ставит лайк, true — снимает.
// Возвращает итоговое состояние. Повтор операции ничего не меняет.
func (s *Service) LikeBlog(ctx context.Context, userID primitive.ObjectID, blogID string, isLikedByUser bool) (bool, error) {
	const op = "service/notifications/LikeBlog"

	lg := log.From(ctx).With("op", op, "user_id", userID.Hex(), "blog", blogID)

	id, err := parseID(blogID, "blog id")
	if err != nil {
		lg.Warn("invalid argument: blog id")

		return false, fmt.Errorf("%s: %w", op, err)
	}

	blog, err := s.storage.BlogByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, fromStorage(lg, err, blogAbsent))
	}

	liked := !isLikedByUser
	if liked {
		err = s.storage.LikeBlog(ctx, userID, blog.ID, blog.Author)
	} else {
		err = s.storage.UnlikeBlog(ctx, userID, blog.ID)
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, fromStorage(lg, err, blogAbsent))
	}

	s.invalidateTrending(ctx, lg)

	return liked, nil
}

// IsLikedByUser сообщает, лайкнул ли пользователь блог.
func (s *Service) IsLikedByUser(ctx context.Context, userID primitive.ObjectID, blogID string) (bool, error) {
	const op = "service/notifications/IsLikedByUser"

	lg := log.From(ctx).With("op", op, "user_id", userID.Hex(), "blog", blogID)

	id, err := parseID(blogID, "blog id")
	if err != nil {
		lg.Warn("invalid argument: blog id")

		return false, fmt.Errorf("%s: %w", op, err)
	}

	liked, err := s.storage.IsLiked(ctx, userID, id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, fromStorage(lg, err, blogAbsent))
	}

	return liked, nil
}

// NewNotification сообщает о непросмотренных уведомлениях.
func (s *Service) NewNotification(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	const op = "service/notifications/NewNotification"

	ok, err := s.storage.HasUnseen(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, fromStorage(log.From(ctx).With("op", op, "user_id", userID.Hex()), err, ""))
	}

	return ok, nil
}

// Notifications — страница уведомлений; выданные уведомления помечаются просмотренными.
func (s *Service) Notifications(ctx context.Context, userID primitive.ObjectID, in NotificationsInput) ([]models.Notification, error) {
	const op = "service/notifications/Notifications"

	lg := log.From(ctx).With("op", op, "user_id", userID.Hex(), "filter", in.Filter)

	typ, err := notificationType(in.Filter)
	if err != nil {
		lg.Warn("invalid argument: filter")

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	limit := s.cfg.Limits.Notifications
	out, err := s.storage.ListNotifications(ctx, models.NotificationQuery{
		For:   userID,
		Type:  typ,
		Skip:  pageSkip(in.Page, limit, in.DeletedDocCount),
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStorage(lg, err, ""))
	}

	return out, nil
}

// NotificationsCount — число уведомлений под фильтром.
func (s *Service) NotificationsCount(ctx context.Context, userID primitive.ObjectID, filter string) (int64, error) {
	const op = "service/notifications/NotificationsCount"

	lg := log.From(ctx).With("op", op, "user_id", userID.Hex(), "filter", filter)

	typ, err := notificationType(filter)
	if err != nil {
		lg.Warn("invalid argument: filter")

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := s.storage.CountNotifications(ctx, models.NotificationQuery{For: userID, Type: typ})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, fromStorage(lg, err, ""))
	}

	return n, nil
}

// notificationType: "" и "all" — без фильтра по типу.
func notificationType(filter string) (models.NotificationType, error) {
	if filter == "" || filter == filterAll {
		return "", nil
	}

	t := models.NotificationType(filter)
	if !t.Valid() {
		return "", newError(ErrInvalidArgument, "unknown notification filter")
	}

	return t, nil
}
