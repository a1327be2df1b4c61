package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pribylovaa/blog-service/internal/models"
	"github.com/pribylovaa/blog-service/internal/pkg/log"
	"github.com/pribylovaa/blog-service/internal/pkg/sanitize"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxDesLen  = 200
	maxTags    = 10
	editMode   = "edit"
	blogAbsent = "Blog not found"

	msgNoTitle       = "You must provide a title"
	msgNoDes         = "You must provide blog description under 200 characters"
	msgNoBanner      = "You must provide blog banner to publish it"
	msgNoContent     = "There must be some blog content to publish it"
	msgTags          = "Provide tags in order to publish the blog, Maximum 10"
	msgDraftAccess   = "you can not access draft blogs"
	msgEditForeign   = "You are not allowed to edit this blog"
	msgDeleteForeign = "You can not delete this blog"
)

var (
	nonAlnumRe = regexp.MustCompile(`[^a-zA-Z0-9]`)
	spacesRe   = regexp.MustCompile(`\s+`)
)

// CreateBlogInput — данные редактора. ID (slug) задан — редактирование существующего блога.
type CreateBlogInput struct {
	ID      string
	Title   string
	Des     string
	Banner  string
	Tags    []string
	Content []models.BlogContent
	Draft   bool
}

// SearchBlogsInput — поиск: применяется одно из Tag, Query, Author (в этом порядке).
type SearchBlogsInput struct {
	Tag           string
	Query         string
	Author        string
	Page          int64
	Limit         int64
	EliminateBlog string
}

// UserBlogsInput — выдача «своих» блогов (опубликованных или черновиков).
type UserBlogsInput struct {
	Page            int64
	Draft           bool
	Query           string
	DeletedDocCount int64
}

// CreateBlog создаёт или редактирует блог и возвращает его slug.
//
// Валидация:
//   - title обязателен всегда;
//   - для публикации: des (<= 200 символов), banner, хотя бы один блок, 1–10 тегов.
//
// Поведение:
//   - теги очищаются и приводятся к нижнему регистру;
//   - slug строится из заголовка и короткого случайного суффикса;
//   - редактировать блог может только его автор (иначе ErrForbidden).
func (s *Service) CreateBlog(ctx context.Context, authorID primitive.ObjectID, in CreateBlogInput) (string, error) {
	const op = "service/blogs/CreateBlog"

	lg := log.From(ctx).With("op", op, "user_id", authorID.Hex(), "blog_id", in.ID)

	in.Title = sanitize.Text(in.Title)
	in.Des = sanitize.Text(in.Des)
	in.Banner = strings.TrimSpace(in.Banner)
	in.Tags = sanitize.Tags(in.Tags)

	if err := validateBlog(in); err != nil {
		lg.Warn("invalid argument", "err", err)

		return "", fmt.Errorf("%s: %w", op, err)
	}

	blog := models.Blog{
		BlogID:  in.ID,
		Title:   in.Title,
		Banner:  in.Banner,
		Des:     in.Des,
		Content: in.Content,
		Tags:    in.Tags,
		Author:  authorID,
		Draft:   in.Draft,
	}

	if in.ID != "" {
		existing, err := s.storage.ReadBlog(ctx, in.ID, false)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, fromStorage(lg, err, blogAbsent))
		}

		if existing.Author != authorID {
			lg.Warn("edit of foreign blog")

			return "", fmt.Errorf("%s: %w", op, newError(ErrForbidden, msgEditForeign))
		}

		if _, err := s.storage.UpdateBlog(ctx, blog); err != nil {
			return "", fmt.Errorf("%s: %w", op, fromStorage(lg, err, blogAbsent))
		}

		s.invalidateTrending(ctx, lg)

		return in.ID, nil
	}

	blog.BlogID = slugify(in.Title)

	created, err := s.storage.CreateBlog(ctx, blog)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, fromStorage(lg, err, "Author not found"))
	}

	if !created.Draft {
		s.invalidateTrending(ctx, lg)
	}

	lg.Info("blog created", "blog_id", created.BlogID, "draft", created.Draft)

	return created.BlogID, nil
}

// GetBlog возвращает блог по slug.
//   - mode != "edit" увеличивает total_reads (только у опубликованных блогов);
//   - черновик доступен только автору и только при draft=true.
//
// viewer — нулевой ObjectID для анонимного запроса.
func (s *Service) GetBlog(ctx context.Context, viewer primitive.ObjectID, blogID string, draft bool, mode string) (*models.Blog, error) {
	const op = "service/blogs/GetBlog"

	lg := log.From(ctx).With("op", op, "blog_id", blogID)

	if strings.TrimSpace(blogID) == "" {
		lg.Warn("invalid argument: empty blog_id")

		return nil, fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, "blog_id is required"))
	}

	blog, err := s.storage.ReadBlog(ctx, blogID, mode != editMode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStorage(lg, err, blogAbsent))
	}

	if blog.Draft && (!draft || viewer.IsZero() || viewer != blog.Author) {
		lg.Warn("draft access denied")

		return nil, fmt.Errorf("%s: %w", op, newError(ErrForbidden, msgDraftAccess))
	}

	return blog, nil
}

// LatestBlogs — опубликованные блоги, сначала новые.
func (s *Service) LatestBlogs(ctx context.Context, page int64) ([]models.Blog, error) {
	const op = "service/blogs/LatestBlogs"

	lg := log.From(ctx).With("op", op, "page", page)

	limit := s.cfg.Limits.Blogs
	blogs, err := s.storage.ListBlogs(ctx, models.BlogQuery{
		Sort:  models.SortLatest,
		Skip:  pageSkip(page, limit, 0),
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStorage(lg, err, ""))
	}

	return blogs, nil
}

// LatestBlogsCount — число опубликованных блогов.
func (s *Service) LatestBlogsCount(ctx context.Context) (int64, error) {
	const op = "service/blogs/LatestBlogsCount"

	n, err := s.storage.CountBlogs(ctx, models.BlogQuery{})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, fromStorage(log.From(ctx).With("op", op), err, ""))
	}

	return n, nil
}

// TrendingBlogs — самые читаемые/лайкаемые блоги. Лента кэшируется в Redis (если настроен).
func (s *Service) TrendingBlogs(ctx context.Context) ([]models.Blog, error) {
	const op = "service/blogs/TrendingBlogs"

	lg := log.From(ctx).With("op", op)

	if s.trending != nil {
		blogs, ok, err := s.trending.Get(ctx)
		if err != nil {
			lg.Warn("trending cache get failed", "err", err)
		}

		if ok {
			return blogs, nil
		}
	}

	blogs, err := s.storage.ListBlogs(ctx, models.BlogQuery{
		Sort:  models.SortTrending,
		Limit: s.cfg.Limits.Blogs,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStorage(lg, err, ""))
	}

	if s.trending != nil {
		if err := s.trending.Set(ctx, blogs, s.cfg.Redis.TrendingTTL); err != nil {
			lg.Warn("trending cache set failed", "err", err)
		}
	}

	return blogs, nil
}

// SearchBlogs — поиск опубликованных блогов по тегу, заголовку или автору.
func (s *Service) SearchBlogs(ctx context.Context, in SearchBlogsInput) ([]models.Blog, error) {
	const op = "service/blogs/SearchBlogs"

	lg := log.From(ctx).With("op", op, "tag", in.Tag, "query", in.Query, "author", in.Author)

	q, err := searchQuery(in)
	if err != nil {
		lg.Warn("invalid argument", "err", err)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q.Limit = s.clampLimit(in.Limit, s.cfg.Limits.Search)
	q.Skip = pageSkip(in.Page, q.Limit, 0)

	blogs, err := s.storage.ListBlogs(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStorage(lg, err, ""))
	}

	return blogs, nil
}

// SearchBlogsCount — число блогов под тем же фильтром, что и SearchBlogs.
func (s *Service) SearchBlogsCount(ctx context.Context, in SearchBlogsInput) (int64, error) {
	const op = "service/blogs/SearchBlogsCount"

	lg := log.From(ctx).With("op", op)

	q, err := searchQuery(in)
	if err != nil {
		lg.Warn("invalid argument", "err", err)

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := s.storage.CountBlogs(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, fromStorage(lg, err, ""))
	}

	return n, nil
}

// UserWrittenBlogs — блоги пользователя (опубликованные или черновики) с поиском по заголовку.
func (s *Service) UserWrittenBlogs(ctx context.Context, userID primitive.ObjectID, in UserBlogsInput) ([]models.Blog, error) {
	const op = "service/blogs/UserWrittenBlogs"

	lg := log.From(ctx).With("op", op, "user_id", userID.Hex(), "draft", in.Draft)

	limit := s.cfg.Limits.Blogs
	blogs, err := s.storage.ListBlogs(ctx, models.BlogQuery{
		AuthorOnly: true,
		Author:     userID,
		Draft:      in.Draft,
		Query:      sanitize.Text(in.Query),
		Skip:       pageSkip(in.Page, limit, in.DeletedDocCount),
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStorage(lg, err, ""))
	}

	return blogs, nil
}

// UserWrittenBlogsCount — число блогов пользователя под тем же фильтром.
func (s *Service) UserWrittenBlogsCount(ctx context.Context, userID primitive.ObjectID, draft bool, query string) (int64, error) {
	const op = "service/blogs/UserWrittenBlogsCount"

	lg := log.From(ctx).With("op", op, "user_id", userID.Hex())

	n, err := s.storage.CountBlogs(ctx, models.BlogQuery{
		AuthorOnly: true,
		Author:     userID,
		Draft:      draft,
		Query:      sanitize.Text(query),
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, fromStorage(lg, err, ""))
	}

	return n, nil
}

// DeleteBlog удаляет блог автора вместе с комментариями и уведомлениями.
func (s *Service) DeleteBlog(ctx context.Context, userID primitive.ObjectID, blogID string) error {
	const op = "service/blogs/DeleteBlog"

	lg := log.From(ctx).With("op", op, "user_id", userID.Hex(), "blog_id", blogID)

	blog, err := s.storage.ReadBlog(ctx, blogID, false)
	if err != nil {
		return fmt.Errorf("%s: %w", op, fromStorage(lg, err, blogAbsent))
	}

	if blog.Author != userID {
		lg.Warn("delete of foreign blog")

		return fmt.Errorf("%s: %w", op, newError(ErrForbidden, msgDeleteForeign))
	}

	if err := s.storage.DeleteBlog(ctx, blogID); err != nil {
		return fmt.Errorf("%s: %w", op, fromStorage(lg, err, blogAbsent))
	}

	s.invalidateTrending(ctx, lg)
	lg.Info("blog deleted")

	return nil
}

// validateBlog проверяет поля редактора; для черновика обязателен только заголовок.
func validateBlog(in CreateBlogInput) error {
	if in.Title == "" {
		return newError(ErrInvalidArgument, msgNoTitle)
	}

	if in.Draft {
		return nil
	}

	if in.Des == "" || utf8.RuneCountInString(in.Des) > maxDesLen {
		return newError(ErrInvalidArgument, msgNoDes)
	}

	if in.Banner == "" {
		return newError(ErrInvalidArgument, msgNoBanner)
	}

	if !hasBlocks(in.Content) {
		return newError(ErrInvalidArgument, msgNoContent)
	}

	if len(in.Tags) == 0 || len(in.Tags) > maxTags {
		return newError(ErrInvalidArgument, msgTags)
	}

	return nil
}

func hasBlocks(content []models.BlogContent) bool {
	for _, c := range content {
		if len(c.Blocks) > 0 {
			return true
		}
	}

	return false
}

// slugify: не-алфавитно-цифровые символы -> пробел, пробелы -> "-", плюс короткий суффикс.
func slugify(title string) string {
	slug := spacesRe.ReplaceAllString(strings.TrimSpace(nonAlnumRe.ReplaceAllString(title, " ")), "-")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	if slug == "" {
		return suffix
	}

	return slug + "-" + suffix
}

func searchQuery(in SearchBlogsInput) (models.BlogQuery, error) {
	q := models.BlogQuery{
		Tag:           strings.ToLower(sanitize.Text(in.Tag)),
		Query:         sanitize.Text(in.Query),
		ExcludeBlogID: in.EliminateBlog,
	}

	if q.Tag == "" && q.Query == "" && in.Author != "" {
		author, err := parseID(in.Author, "author")
		if err != nil {
			return models.BlogQuery{}, err
		}

		q.Author = author
	}

	return q, nil
}
