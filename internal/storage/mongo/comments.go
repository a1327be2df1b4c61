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

// CreateComment создаёт комментарий (корневой или ответ).
//   - Ответ допускается только на комментарий того же блога (иначе ErrParentNotFound).
//   - У блога: comments += id, total_comments+1, для корня total_parent_comments+1.
//   - У родителя: children += id.
//   - Уведомление получает автор блога (comment) или автор родителя (reply).
//   - NotificationID: к уведомлению получателя прикрепляется ответ (reply).
func (m *Mongo) CreateComment(ctx context.Context, nc models.NewComment) (*models.Comment, error) {
	const op = "storage/mongo/CreateComment"

	now := toMS(time.Now())
	comm := models.Comment{
		ID:          primitive.NewObjectID(),
		BlogID:      nc.BlogID,
		BlogAuthor:  nc.BlogAuthor,
		Comment:     nc.Comment,
		Children:    []primitive.ObjectID{},
		CommentedBy: nc.CommentedBy,
		IsReply:     nc.ReplyingTo != nil,
		Parent:      nc.ReplyingTo,
		CommentedAt: now,
	}

	err := m.withTx(ctx, func(ctx context.Context) error {
		notif := models.Notification{
			Type:            models.NotificationComment,
			Blog:            comm.BlogID,
			NotificationFor: comm.BlogAuthor,
			User:            comm.CommentedBy,
			Comment:         &comm.ID,
			CreatedAt:       now,
		}

		// Родитель проверяется до любых записей.
		if comm.Parent != nil {
			var parent models.Comment
			err := m.comments.FindOne(ctx, bson.D{
				{Key: "_id", Value: *comm.Parent},
				{Key: "blog_id", Value: comm.BlogID},
			}).Decode(&parent)
			if err != nil {
				if errors.Is(err, mongodriver.ErrNoDocuments) {
					return storage.ErrParentNotFound
				}

				return fmt.Errorf("find parent: %w", err)
			}

			notif.Type = models.NotificationReply
			notif.NotificationFor = parent.CommentedBy
			notif.RepliedOnComment = comm.Parent
		}

		inc := bson.D{{Key: "activity.total_comments", Value: 1}}
		if !comm.IsReply {
			inc = append(inc, bson.E{Key: "activity.total_parent_comments", Value: 1})
		}

		res, err := m.blogs.UpdateByID(ctx, comm.BlogID, bson.D{
			{Key: "$push", Value: bson.D{{Key: "comments", Value: comm.ID}}},
			{Key: "$inc", Value: inc},
		})
		if err != nil {
			return fmt.Errorf("update blog: %w", err)
		}

		if res.MatchedCount == 0 {
			return storage.ErrNotFound
		}

		if _, err := m.comments.InsertOne(ctx, comm); err != nil {
			return fmt.Errorf("insert: %w", err)
		}

		if comm.Parent != nil {
			_, err := m.comments.UpdateByID(ctx, *comm.Parent,
				bson.D{{Key: "$push", Value: bson.D{{Key: "children", Value: comm.ID}}}})
			if err != nil {
				return fmt.Errorf("push child: %w", err)
			}
		}

		if _, err := m.notifications.InsertOne(ctx, notif); err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}

		if nc.NotificationID != nil {
			_, err := m.notifications.UpdateOne(ctx,
				bson.D{{Key: "_id", Value: *nc.NotificationID}, {Key: "notification_for", Value: comm.CommentedBy}},
				bson.D{{Key: "$set", Value: bson.D{{Key: "reply", Value: comm.ID}}}},
			)
			if err != nil {
				return fmt.Errorf("attach reply: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &comm, nil
}

// CommentByID возвращает комментарий по идентификатору.
func (m *Mongo) CommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	const op = "storage/mongo/CommentByID"

	var out models.Comment
	if err := m.comments.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&out); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out.CommentedAt = out.CommentedAt.UTC()
	return &out, nil
}

// ListBlogComments возвращает корневые комментарии блога, сначала новые.
func (m *Mongo) ListBlogComments(ctx context.Context, blogID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	const op = "storage/mongo/ListBlogComments"

	filter := bson.D{
		{Key: "blog_id", Value: blogID},
		{Key: "isReply", Value: false},
	}

	out, err := m.listComments(ctx, filter, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// ListReplies возвращает прямые ответы на комментарий, сначала новые.
func (m *Mongo) ListReplies(ctx context.Context, parentID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	const op = "storage/mongo/ListReplies"

	out, err := m.listComments(ctx, bson.D{{Key: "parent", Value: parentID}}, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (m *Mongo) listComments(ctx context.Context, filter bson.D, skip, limit int64) ([]models.Comment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "commentedAt", Value: -1}, {Key: "_id", Value: -1}})
	if skip > 0 {
		opts.SetSkip(skip)
	}

	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := m.comments.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	out := []models.Comment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	for i := range out {
		out[i].CommentedAt = out[i].CommentedAt.UTC()
		if out[i].Children == nil {
			out[i].Children = []primitive.ObjectID{}
		}
	}

	if err := m.populateComments(ctx, out); err != nil {
		return nil, err
	}

	return out, nil
}

// DeleteCommentTree удаляет комментарий и всех его потомков.
// Для каждого узла: удаление документа, ссылка у родителя и у блога,
// уведомление о комментарии, поле reply у уведомлений, счётчики блога.
func (m *Mongo) DeleteCommentTree(ctx context.Context, id primitive.ObjectID) error {
	const op = "storage/mongo/DeleteCommentTree"

	err := m.withTx(ctx, func(ctx context.Context) error {
		n, err := walk(id, func(id primitive.ObjectID) ([]primitive.ObjectID, error) {
			return m.deleteCommentNode(ctx, id)
		})
		if err != nil {
			return err
		}

		if n == 0 {
			return storage.ErrNotFound
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// deleteCommentNode удаляет один комментарий и возвращает его прямых потомков.
// Если узла уже нет — errSkip.
func (m *Mongo) deleteCommentNode(ctx context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	var comm models.Comment
	if err := m.comments.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&comm); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, errSkip
		}

		return nil, fmt.Errorf("delete %s: %w", id.Hex(), err)
	}

	if comm.Parent != nil {
		_, err := m.comments.UpdateByID(ctx, *comm.Parent,
			bson.D{{Key: "$pull", Value: bson.D{{Key: "children", Value: id}}}})
		if err != nil {
			return nil, fmt.Errorf("pull from parent: %w", err)
		}
	}

	if _, err := m.blogs.UpdateByID(ctx, comm.BlogID,
		bson.D{{Key: "$pull", Value: bson.D{{Key: "comments", Value: id}}}}); err != nil {
		return nil, fmt.Errorf("pull from blog: %w", err)
	}

	counters := []string{"activity.total_comments"}
	if !comm.IsReply {
		counters = append(counters, "activity.total_parent_comments")
	}

	if _, err := m.blogs.UpdateByID(ctx, comm.BlogID, clampedDec(counters...)); err != nil {
		return nil, fmt.Errorf("dec counters: %w", err)
	}

	if _, err := m.notifications.DeleteMany(ctx, bson.D{{Key: "comment", Value: id}}); err != nil {
		return nil, fmt.Errorf("delete notification: %w", err)
	}

	if _, err := m.notifications.UpdateMany(ctx,
		bson.D{{Key: "reply", Value: id}},
		bson.D{{Key: "$unset", Value: bson.D{{Key: "reply", Value: ""}}}}); err != nil {
		return nil, fmt.Errorf("unset reply: %w", err)
	}

	// Потомки: children и (на случай рассинхрона) документы с parent == id.
	children := append([]primitive.ObjectID{}, comm.Children...)

	cur, err := m.comments.Find(ctx, bson.D{{Key: "parent", Value: id}},
		options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find children: %w", err)
	}

	var orphans []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &orphans); err != nil {
		return nil, fmt.Errorf("decode children: %w", err)
	}

	for _, o := range orphans {
		children = append(children, o.ID)
	}

	return uniqueIDs(children), nil
}
