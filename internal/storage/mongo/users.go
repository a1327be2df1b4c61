package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/pribylovaa/blog-service/internal/models"
	"github.com/pribylovaa/blog-service/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateUser сохраняет пользователя. Дубликат email/username — storage.ErrConflict.
func (m *Mongo) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage/mongo/CreateUser"

	now := toMS(time.Now())
	user.ID = primitive.NilObjectID
	user.JoinedAt = now
	user.UpdatedAt = now
	if user.Blogs == nil {
		user.Blogs = []primitive.ObjectID{}
	}

	res, err := m.users.InsertOne(ctx, user)
	if err != nil {
		return nil, conflictOr(op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("%s: inserted id type", op)
	}

	user.ID = oid
	return &user, nil
}

func (m *Mongo) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return m.findUser(ctx, "storage/mongo/UserByID", bson.D{{Key: "_id", Value: id}})
}

func (m *Mongo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findUser(ctx, "storage/mongo/UserByEmail", bson.D{{Key: "personal_info.email", Value: email}})
}

func (m *Mongo) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.findUser(ctx, "storage/mongo/UserByUsername", bson.D{{Key: "personal_info.username", Value: username}})
}

func (m *Mongo) findUser(ctx context.Context, op string, filter bson.D) (*models.User, error) {
	var out models.User
	if err := m.users.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out.JoinedAt = out.JoinedAt.UTC()
	out.UpdatedAt = out.UpdatedAt.UTC()

	return &out, nil
}

// UsernameExists сообщает, занят ли username.
func (m *Mongo) UsernameExists(ctx context.Context, username string) (bool, error) {
	const op = "storage/mongo/UsernameExists"

	n, err := m.users.CountDocuments(ctx,
		bson.D{{Key: "personal_info.username", Value: username}},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}

// UpdatePassword заменяет хэш пароля.
func (m *Mongo) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	const op = "storage/mongo/UpdatePassword"

	return m.updateUser(ctx, op, id, bson.D{{Key: "personal_info.password", Value: hash}})
}

// UpdateProfile обновляет username, bio и social_links. Занятый username — storage.ErrConflict.
func (m *Mongo) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) error {
	const op = "storage/mongo/UpdateProfile"

	return m.updateUser(ctx, op, id, bson.D{
		{Key: "personal_info.username", Value: update.Username},
		{Key: "personal_info.bio", Value: update.Bio},
		{Key: "social_links", Value: update.SocialLinks},
	})
}

// UpdateProfileImg заменяет ссылку на аватар.
func (m *Mongo) UpdateProfileImg(ctx context.Context, id primitive.ObjectID, url string) error {
	const op = "storage/mongo/UpdateProfileImg"

	return m.updateUser(ctx, op, id, bson.D{{Key: "personal_info.profile_img", Value: url}})
}

func (m *Mongo) updateUser(ctx context.Context, op string, id primitive.ObjectID, set bson.D) error {
	set = append(set, bson.E{Key: "updatedAt", Value: toMS(time.Now())})

	res, err := m.users.UpdateByID(ctx, id, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return conflictOr(op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// SearchUsers ищет пользователей по подстроке username без учёта регистра.
func (m *Mongo) SearchUsers(ctx context.Context, query string, limit int64) ([]models.AuthorRef, error) {
	const op = "storage/mongo/SearchUsers"

	filter := bson.D{{Key: "personal_info.username", Value: primitive.Regex{
		Pattern: regexp.QuoteMeta(query),
		Options: "i",
	}}}

	opts := options.Find().
		SetProjection(bson.D{
			{Key: "personal_info.fullname", Value: 1},
			{Key: "personal_info.username", Value: 1},
			{Key: "personal_info.profile_img", Value: 1},
		}).
		SetLimit(limit)

	cur, err := m.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}

	out := []models.AuthorRef{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	return out, nil
}
