// mongo предоставляет реализацию storage.Storage на базе MongoDB.
// mongo.go - подключение, индексы и общие помощники (транзакции, счётчики);
// users.go, blogs.go, comments.go, notifications.go - операции по коллекциям;
// populate.go - заполнение проекций связанных документов.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pribylovaa/blog-service/internal/config"
	"github.com/pribylovaa/blog-service/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection         = "users"
	blogsCollection         = "blogs"
	commentsCollection      = "comments"
	notificationsCollection = "notifications"
	defaultDBName           = "blog"
)

// Mongo - тонкий адаптер для подключения и коллекций MongoDB.
type Mongo struct {
	cfg           *config.Config
	client        *mongodriver.Client
	db            *mongodriver.Database
	users         *mongodriver.Collection
	blogs         *mongodriver.Collection
	comments      *mongodriver.Collection
	notifications *mongodriver.Collection
}

// New подключается к MongoDB, проверяет его, подготавливает коллекции и обеспечивает индексацию.
func New(ctx context.Context, cfg *config.Config) (*Mongo, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mongo: nil config")
	}

	if cfg.DB.URL == "" {
		return nil, fmt.Errorf("mongo: empty cfg.DB.URL")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(cfg.DB.URL))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := cli.Database(databaseFromURI(cfg.DB.URL))

	m := &Mongo{
		cfg:           cfg,
		client:        cli,
		db:            db,
		users:         db.Collection(usersCollection),
		blogs:         db.Collection(blogsCollection),
		comments:      db.Collection(commentsCollection),
		notifications: db.Collection(notificationsCollection),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}

	return m, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Ping проверяет доступность primary (для /healthz).
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// ensureIndexes создаёт индексы всех коллекций.
//   - users: уникальные email и username;
//   - blogs: уникальный blog_id, выдача по draft+publishedAt, по тегам и автору;
//   - comments: корневые по блогу (blog_id+isReply+commentedAt), ответы по parent;
//   - notifications: выдача получателю, уникальный like на пару (user, blog).
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	plan := []struct {
		coll   *mongodriver.Collection
		models []mongodriver.IndexModel
	}{
		{m.users, []mongodriver.IndexModel{
			{
				Keys:    bson.D{{Key: "personal_info.email", Value: 1}},
				Options: options.Index().SetName("uniq_email").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "personal_info.username", Value: 1}},
				Options: options.Index().SetName(indexUsername).SetUnique(true),
			},
		}},
		{m.blogs, []mongodriver.IndexModel{
			{
				Keys:    bson.D{{Key: "blog_id", Value: 1}},
				Options: options.Index().SetName("uniq_blog_id").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "draft", Value: 1}, {Key: "publishedAt", Value: -1}},
				Options: options.Index().SetName("draft_published_desc"),
			},
			{
				Keys:    bson.D{{Key: "tags", Value: 1}},
				Options: options.Index().SetName("tags"),
			},
			{
				Keys:    bson.D{{Key: "author", Value: 1}, {Key: "draft", Value: 1}},
				Options: options.Index().SetName("author_draft"),
			},
		}},
		{m.comments, []mongodriver.IndexModel{
			{
				Keys:    bson.D{{Key: "blog_id", Value: 1}, {Key: "isReply", Value: 1}, {Key: "commentedAt", Value: -1}},
				Options: options.Index().SetName("blog_root_commented_desc"),
			},
			{
				Keys:    bson.D{{Key: "parent", Value: 1}, {Key: "commentedAt", Value: -1}},
				Options: options.Index().SetName("parent_commented_desc"),
			},
		}},
		{m.notifications, []mongodriver.IndexModel{
			{
				Keys:    bson.D{{Key: "notification_for", Value: 1}, {Key: "seen", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("for_seen_created_desc"),
			},
			{
				Keys: bson.D{{Key: "user", Value: 1}, {Key: "blog", Value: 1}},
				Options: options.Index().SetName("uniq_like").SetUnique(true).
					SetPartialFilterExpression(bson.D{{Key: "type", Value: "like"}}),
			},
			{
				Keys:    bson.D{{Key: "blog", Value: 1}},
				Options: options.Index().SetName("blog"),
			},
			{
				Keys:    bson.D{{Key: "comment", Value: 1}},
				Options: options.Index().SetName("comment"),
			},
			{
				Keys:    bson.D{{Key: "reply", Value: 1}},
				Options: options.Index().SetName("reply"),
			},
		}},
	}

	for _, p := range plan {
		if _, err := p.coll.Indexes().CreateMany(ctx, p.models); err != nil {
			return fmt.Errorf("mongo ensure indexes (%s): %w", p.coll.Name(), err)
		}
	}

	return nil
}

// withTx выполняет fn в одной транзакции, если они включены (db.transactions).
// Иначе шаги выполняются последовательно и первая ошибка возвращается как есть.
func (m *Mongo) withTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !m.cfg.DB.Transactions {
		return fn(ctx)
	}

	sess, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongo start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongodriver.SessionContext) (any, error) {
		return nil, fn(sc)
	})

	return err
}

// clampedDec — pipeline-апдейт, уменьшающий каждое поле на 1, но не ниже нуля.
func clampedDec(fields ...string) mongodriver.Pipeline {
	set := make(bson.D, 0, len(fields))
	for _, f := range fields {
		set = append(set, bson.E{Key: f, Value: bson.D{{Key: "$max", Value: bson.A{
			0,
			bson.D{{Key: "$subtract", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$" + f, 0}}}, 1}}},
		}}}})
	}

	return mongodriver.Pipeline{{{Key: "$set", Value: set}}}
}

const indexUsername = "uniq_username"

// conflictOr приводит ошибку дубликата ключа к storage.ErrConflict.
// Дубликат по индексу username отдаётся как storage.ErrUsernameTaken.
func conflictOr(op string, err error) error {
	if !mongodriver.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var we mongodriver.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if strings.Contains(e.Message, "index: "+indexUsername+" ") {
				return fmt.Errorf("%s: %w", op, storage.ErrUsernameTaken)
			}
		}
	}

	return fmt.Errorf("%s: %w", op, storage.ErrConflict)
}

// toMS обрезает время до миллисекунд (точность BSON DateTime).
func toMS(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// databaseFromURI извлекает имя базы данных из URI-пути mongodb.
// Если оно отсутствует или не поддается расшифровке, возвращает значение по умолчанию.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}

	return defaultDBName
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.Storage = (*Mongo)(nil)
