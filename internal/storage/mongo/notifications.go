package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pribylovaa/blog-service/internal/models"
	"github.com/pribylovaa/blog-service/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LikeBlog фиксирует лайк пользователя.
// Запись like уникальна по (user, blog): total_likes растёт только при её создании.
func (m *Mongo) LikeBlog(ctx context.Context, userID, blogID, blogAuthor primitive.ObjectID) error {
	const op = "storage/mongo/LikeBlog"

	var err error
	if m.cfg.DB.Transactions {
		err = m.withTx(ctx, func(ctx context.Context) error {
			return m.likeThenCount(ctx, userID, blogID, blogAuthor)
		})
	} else {
		err = m.countThenLike(ctx, userID, blogID, blogAuthor)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// likeThenCount — порядок для транзакции: откат уберёт запись, если блога нет.
func (m *Mongo) likeThenCount(ctx context.Context, userID, blogID, blogAuthor primitive.ObjectID) error {
	inserted, err := m.upsertLike(ctx, userID, blogID, blogAuthor)
	if err != nil || !inserted {
		return err
	}

	res, err := m.blogs.UpdateByID(ctx, blogID, incLikes(1))
	if err != nil {
		return fmt.Errorf("inc total_likes: %w", err)
	}

	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// countThenLike — порядок без транзакции: сначала счётчик (блог должен существовать),
// затем запись; если запись уже была или не сохранилась, счётчик возвращается.
func (m *Mongo) countThenLike(ctx context.Context, userID, blogID, blogAuthor primitive.ObjectID) error {
	res, err := m.blogs.UpdateByID(ctx, blogID, incLikes(1))
	if err != nil {
		return fmt.Errorf("inc total_likes: %w", err)
	}

	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}

	inserted, err := m.upsertLike(ctx, userID, blogID, blogAuthor)
	if err == nil && inserted {
		return nil
	}

	if _, undoErr := m.blogs.UpdateByID(ctx, blogID, clampedDec("activity.total_likes")); undoErr != nil {
		return errors.Join(err, fmt.Errorf("undo inc total_likes: %w", undoErr))
	}

	return err
}

// upsertLike создаёт like-уведомление, если его ещё нет.
// Upsert вместо insert: ошибка дубликата прервала бы транзакцию.
func (m *Mongo) upsertLike(ctx context.Context, userID, blogID, blogAuthor primitive.ObjectID) (bool, error) {
	up, err := m.notifications.UpdateOne(ctx,
		likeFilter(userID, blogID),
		bson.D{{Key: "$setOnInsert", Value: bson.D{
			{Key: "notification_for", Value: blogAuthor},
			{Key: "seen", Value: false},
			{Key: "createdAt", Value: toMS(time.Now())},
		}}},
		options.Update().SetUpsert(true),
	)
	if mongodriver.IsDuplicateKeyError(err) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("upsert like: %w", err)
	}

	return up.UpsertedCount > 0, nil
}

func incLikes(n int) bson.D {
	return bson.D{{Key: "$inc", Value: bson.D{{Key: "activity.total_likes", Value: n}}}}
}

// UnlikeBlog снимает лайк. total_likes уменьшается только если запись была удалена.
func (m *Mongo) UnlikeBlog(ctx context.Context, userID, blogID primitive.ObjectID) error {
	const op = "storage/mongo/UnlikeBlog"

	err := m.withTx(ctx, func(ctx context.Context) error {
		res, err := m.notifications.DeleteOne(ctx, likeFilter(userID, blogID))
		if err != nil {
			return fmt.Errorf("delete like: %w", err)
		}

		if res.DeletedCount == 0 {
			return nil
		}

		if _, err := m.blogs.UpdateByID(ctx, blogID, clampedDec("activity.total_likes")); err != nil {
			return fmt.Errorf("dec total_likes: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// IsLiked сообщает, есть ли лайк пользователя на блоге.
func (m *Mongo) IsLiked(ctx context.Context, userID, blogID primitive.ObjectID) (bool, error) {
	const op = "storage/mongo/IsLiked"

	n, err := m.notifications.CountDocuments(ctx, likeFilter(userID, blogID), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}

// HasUnseen сообщает о непросмотренных уведомлениях от других пользователей.
func (m *Mongo) HasUnseen(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	const op = "storage/mongo/HasUnseen"

	filter := notificationFilter(models.NotificationQuery{For: userID})
	filter = append(filter, bson.E{Key: "seen", Value: false})

	n, err := m.notifications.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}

// ListNotifications возвращает страницу уведомлений (сначала новые)
// и помечает её просмотренной. В ответе seen — состояние до пометки.
func (m *Mongo) ListNotifications(ctx context.Context, q models.NotificationQuery) ([]models.Notification, error) {
	const op = "storage/mongo/ListNotifications"

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}

	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cur, err := m.notifications.Find(ctx, notificationFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}

	out := []models.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	if len(out) == 0 {
		return out, nil
	}

	ids := make([]primitive.ObjectID, 0, len(out))
	for i := range out {
		out[i].CreatedAt = out[i].CreatedAt.UTC()
		ids = append(ids, out[i].ID)
	}

	if err := m.populateNotifications(ctx, out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = m.notifications.UpdateMany(ctx,
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "seen", Value: true}}}},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: mark seen: %w", op, err)
	}

	return out, nil
}

// CountNotifications возвращает число уведомлений по фильтру.
func (m *Mongo) CountNotifications(ctx context.Context, q models.NotificationQuery) (int64, error) {
	const op = "storage/mongo/CountNotifications"

	n, err := m.notifications.CountDocuments(ctx, notificationFilter(q))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

func likeFilter(userID, blogID primitive.ObjectID) bson.D {
	return bson.D{
		{Key: "user", Value: userID},
		{Key: "blog", Value: blogID},
		{Key: "type", Value: models.NotificationLike},
	}
}

// notificationFilter — уведомления получателя, кроме вызванных им самим.
func notificationFilter(q models.NotificationQuery) bson.D {
	filter := bson.D{
		{Key: "notification_for", Value: q.For},
		{Key: "user", Value: bson.D{{Key: "$ne", Value: q.For}}},
	}

	if q.Type != "" {
		filter = append(filter, bson.E{Key: "type", Value: q.Type})
	}

	return filter
}
