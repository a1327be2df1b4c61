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

// CreateBlog сохраняет блог и привязывает его к автору.
// total_posts автора растёт только для опубликованного блога.
func (m *Mongo) CreateBlog(ctx context.Context, blog models.Blog) (*models.Blog, error) {
	const op = "storage/mongo/CreateBlog"

	now := toMS(time.Now())
	blog.ID = primitive.NewObjectID()
	blog.PublishedAt = now
	blog.UpdatedAt = now
	blog.Activity = models.Activity{}
	blog.Comments = []primitive.ObjectID{}
	if blog.Tags == nil {
		blog.Tags = []string{}
	}

	err := m.withTx(ctx, func(ctx context.Context) error {
		if _, err := m.blogs.InsertOne(ctx, blog); err != nil {
			return conflictOr("insert", err)
		}

		update := bson.D{{Key: "$push", Value: bson.D{{Key: "blogs", Value: blog.ID}}}}
		if !blog.Draft {
			update = append(update, bson.E{Key: "$inc", Value: bson.D{{Key: "account_info.total_posts", Value: 1}}})
		}

		res, err := m.users.UpdateByID(ctx, blog.Author, update)
		if err != nil {
			return fmt.Errorf("update author: %w", err)
		}

		if res.MatchedCount == 0 {
			return fmt.Errorf("author: %w", storage.ErrNotFound)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &blog, nil
}

// UpdateBlog заменяет редактируемые поля блога blog.BlogID.
// Смена draft -> published увеличивает total_posts автора, обратная — уменьшает.
func (m *Mongo) UpdateBlog(ctx context.Context, blog models.Blog) (*models.Blog, error) {
	const op = "storage/mongo/UpdateBlog"

	if blog.Tags == nil {
		blog.Tags = []string{}
	}

	var prev models.Blog
	err := m.withTx(ctx, func(ctx context.Context) error {
		set := bson.D{
			{Key: "title", Value: blog.Title},
			{Key: "banner", Value: blog.Banner},
			{Key: "des", Value: blog.Des},
			{Key: "content", Value: blog.Content},
			{Key: "tags", Value: blog.Tags},
			{Key: "draft", Value: blog.Draft},
			{Key: "updatedAt", Value: toMS(time.Now())},
		}

		err := m.blogs.FindOneAndUpdate(ctx,
			bson.D{{Key: "blog_id", Value: blog.BlogID}},
			bson.D{{Key: "$set", Value: set}},
			options.FindOneAndUpdate().SetReturnDocument(options.Before),
		).Decode(&prev)
		if err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				return storage.ErrNotFound
			}

			return fmt.Errorf("update blog: %w", err)
		}

		switch {
		case prev.Draft && !blog.Draft:
			_, err = m.users.UpdateByID(ctx, prev.Author,
				bson.D{{Key: "$inc", Value: bson.D{{Key: "account_info.total_posts", Value: 1}}}})
		case !prev.Draft && blog.Draft:
			_, err = m.users.UpdateByID(ctx, prev.Author, clampedDec("account_info.total_posts"))
		}
		if err != nil {
			return fmt.Errorf("update author: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := prev
	out.Title = blog.Title
	out.Banner = blog.Banner
	out.Des = blog.Des
	out.Content = blog.Content
	out.Tags = blog.Tags
	out.Draft = blog.Draft

	return &out, nil
}

// BlogByID возвращает блог по _id без заполнения автора.
func (m *Mongo) BlogByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	const op = "storage/mongo/BlogByID"

	var out models.Blog
	if err := m.blogs.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&out); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	normalizeBlog(&out)
	return &out, nil
}

// ReadBlog возвращает блог по slug с заполненным автором.
// При incReads total_reads растёт у опубликованного блога и у его автора;
// черновики читаются без изменения счётчиков.
func (m *Mongo) ReadBlog(ctx context.Context, blogID string, incReads bool) (*models.Blog, error) {
	const op = "storage/mongo/ReadBlog"

	filter := bson.D{{Key: "blog_id", Value: blogID}}

	var out models.Blog
	err := m.withTx(ctx, func(ctx context.Context) error {
		if incReads {
			err := m.blogs.FindOneAndUpdate(ctx,
				append(filter, bson.E{Key: "draft", Value: false}),
				bson.D{{Key: "$inc", Value: bson.D{{Key: "activity.total_reads", Value: 1}}}},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).Decode(&out)
			if err == nil {
				_, err = m.users.UpdateByID(ctx, out.Author,
					bson.D{{Key: "$inc", Value: bson.D{{Key: "account_info.total_reads", Value: 1}}}})

				return err
			}

			if !errors.Is(err, mongodriver.ErrNoDocuments) {
				return err
			}
		}

		return m.blogs.FindOne(ctx, filter).Decode(&out)
	})
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	normalizeBlog(&out)

	blogs := []models.Blog{out}
	if err := m.populateBlogs(ctx, blogs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &blogs[0], nil
}

// ListBlogs возвращает страницу блогов (без content) с заполненными авторами.
func (m *Mongo) ListBlogs(ctx context.Context, q models.BlogQuery) ([]models.Blog, error) {
	const op = "storage/mongo/ListBlogs"

	opts := options.Find().
		SetSort(blogSort(q.Sort)).
		SetProjection(bson.D{{Key: "content", Value: 0}, {Key: "comments", Value: 0}})
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}

	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cur, err := m.blogs.Find(ctx, blogFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}

	out := []models.Blog{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	for i := range out {
		normalizeBlog(&out[i])
	}

	if err := m.populateBlogs(ctx, out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// CountBlogs возвращает число блогов по фильтру (skip/limit игнорируются).
func (m *Mongo) CountBlogs(ctx context.Context, q models.BlogQuery) (int64, error) {
	const op = "storage/mongo/CountBlogs"

	n, err := m.blogs.CountDocuments(ctx, blogFilter(q))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

// DeleteBlog удаляет блог, его комментарии и уведомления, отвязывает блог от автора.
func (m *Mongo) DeleteBlog(ctx context.Context, blogID string) error {
	const op = "storage/mongo/DeleteBlog"

	err := m.withTx(ctx, func(ctx context.Context) error {
		var blog models.Blog
		err := m.blogs.FindOneAndDelete(ctx, bson.D{{Key: "blog_id", Value: blogID}}).Decode(&blog)
		if err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				return storage.ErrNotFound
			}

			return fmt.Errorf("delete blog: %w", err)
		}

		if _, err := m.comments.DeleteMany(ctx, bson.D{{Key: "blog_id", Value: blog.ID}}); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}

		if _, err := m.notifications.DeleteMany(ctx, bson.D{{Key: "blog", Value: blog.ID}}); err != nil {
			return fmt.Errorf("delete notifications: %w", err)
		}

		_, err = m.users.UpdateByID(ctx, blog.Author,
			bson.D{{Key: "$pull", Value: bson.D{{Key: "blogs", Value: blog.ID}}}})
		if err != nil {
			return fmt.Errorf("pull author ref: %w", err)
		}

		if !blog.Draft {
			if _, err := m.users.UpdateByID(ctx, blog.Author, clampedDec("account_info.total_posts")); err != nil {
				return fmt.Errorf("dec total_posts: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// blogFilter строит фильтр выдачи.
// «Свои» блоги: автор + опциональный поиск по заголовку.
// Иначе применяется не более одного условия: тег, затем заголовок, затем автор.
func blogFilter(q models.BlogQuery) bson.D {
	filter := bson.D{{Key: "draft", Value: q.Draft}}

	titleRegex := func(s string) bson.E {
		return bson.E{Key: "title", Value: primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}}
	}

	switch {
	case q.AuthorOnly:
		filter = append(filter, bson.E{Key: "author", Value: q.Author})
		if q.Query != "" {
			filter = append(filter, titleRegex(q.Query))
		}
	case q.Tag != "":
		filter = append(filter, bson.E{Key: "tags", Value: q.Tag})
	case q.Query != "":
		filter = append(filter, titleRegex(q.Query))
	case !q.Author.IsZero():
		filter = append(filter, bson.E{Key: "author", Value: q.Author})
	}

	if q.ExcludeBlogID != "" {
		filter = append(filter, bson.E{Key: "blog_id", Value: bson.D{{Key: "$ne", Value: q.ExcludeBlogID}}})
	}

	return filter
}

func blogSort(s models.BlogSort) bson.D {
	if s == models.SortTrending {
		return bson.D{
			{Key: "activity.total_reads", Value: -1},
			{Key: "activity.total_likes", Value: -1},
			{Key: "publishedAt", Value: -1},
		}
	}

	return bson.D{{Key: "publishedAt", Value: -1}, {Key: "_id", Value: -1}}
}

func normalizeBlog(b *models.Blog) {
	b.PublishedAt = b.PublishedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	if b.Tags == nil {
		b.Tags = []string{}
	}
}
