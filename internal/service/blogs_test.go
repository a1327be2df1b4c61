package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/blog-service/internal/models"
	"github.com/pribylovaa/blog-service/internal/storage"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func publishable() CreateBlogInput {
	return CreateBlogInput{
		Title:  "Hello, World!",
		Des:    "short description",
		Banner: "https://cdn.local/images/banner.png",
		Tags:   []string{"Go", " go ", "<b>Mongo</b>"},
		Content: []models.BlogContent{{
			Blocks: []models.ContentBlock{{Type: "paragraph", Data: map[string]any{"text": "hi"}}},
		}},
	}
}

// Публикация с описанием длиннее 200 символов отклоняется без обращения к хранилищу.
func TestCreateBlog_LongDescriptionRejected(t *testing.T) {
	d := newServiceWithMocks(t)

	in := publishable()
	in.Des = strings.Repeat("x", 250)

	_, err := d.svc.CreateBlog(context.Background(), primitive.NewObjectID(), in)
	requireMessage(t, err, ErrInvalidArgument, msgNoDes)
}

func TestCreateBlog_Validation(t *testing.T) {
	d := newServiceWithMocks(t)
	ctx := context.Background()
	uid := primitive.NewObjectID()

	mutate := func(f func(*CreateBlogInput)) CreateBlogInput {
		in := publishable()
		f(&in)
		return in
	}

	cases := []struct {
		name string
		in   CreateBlogInput
		msg  string
	}{
		{"no title", mutate(func(in *CreateBlogInput) { in.Title = "  " }), msgNoTitle},
		{"no des", mutate(func(in *CreateBlogInput) { in.Des = "" }), msgNoDes},
		{"no banner", mutate(func(in *CreateBlogInput) { in.Banner = "" }), msgNoBanner},
		{"no blocks", mutate(func(in *CreateBlogInput) { in.Content = []models.BlogContent{{}} }), msgNoContent},
		{"no tags", mutate(func(in *CreateBlogInput) { in.Tags = []string{" "} }), msgTags},
		{"too many tags", mutate(func(in *CreateBlogInput) {
			in.Tags = strings.Split("a,b,c,d,e,f,g,h,i,j,k", ",")
		}), msgTags},
		{"draft without title", CreateBlogInput{Draft: true}, msgNoTitle},
	}
	for _, c := range cases {
		_, err := d.svc.CreateBlog(ctx, uid, c.in)
		requireMessage(t, err, ErrInvalidArgument, c.msg)
	}
}

func TestCreateBlog_PublishOK(t *testing.T) {
	d := newServiceWithMocks(t)
	uid := primitive.NewObjectID()

	d.storage.EXPECT().
		CreateBlog(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b models.Blog) (*models.Blog, error) {
			require.Equal(t, uid, b.Author)
			require.Equal(t, []string{"go", "mongo"}, b.Tags)
			require.Regexp(t, regexp.MustCompile(`^Hello-World-[0-9a-f]{10}$`), b.BlogID)
			require.False(t, b.Draft)
			return &b, nil
		})
	d.trending.EXPECT().Invalidate(gomock.Any()).Return(nil)

	slug, err := d.svc.CreateBlog(context.Background(), uid, publishable())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(slug, "Hello-World-"))
}

// Черновику нужен только заголовок; кэш трендов не трогаем.
func TestCreateBlog_DraftOK(t *testing.T) {
	d := newServiceWithMocks(t)

	d.storage.EXPECT().
		CreateBlog(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b models.Blog) (*models.Blog, error) {
			require.True(t, b.Draft)
			return &b, nil
		})

	_, err := d.svc.CreateBlog(context.Background(), primitive.NewObjectID(), CreateBlogInput{Title: "wip", Draft: true})
	require.NoError(t, err)
}

func TestCreateBlog_EditForeignForbidden(t *testing.T) {
	d := newServiceWithMocks(t)

	in := publishable()
	in.ID = "hello-abc"

	d.storage.EXPECT().ReadBlog(gomock.Any(), "hello-abc", false).Return(&models.Blog{Author: primitive.NewObjectID()}, nil)

	_, err := d.svc.CreateBlog(context.Background(), primitive.NewObjectID(), in)
	requireMessage(t, err, ErrForbidden, msgEditForeign)
}

func TestCreateBlog_EditOwn(t *testing.T) {
	d := newServiceWithMocks(t)
	uid := primitive.NewObjectID()

	in := publishable()
	in.ID = "hello-abc"

	d.storage.EXPECT().ReadBlog(gomock.Any(), "hello-abc", false).Return(&models.Blog{Author: uid}, nil)
	d.storage.EXPECT().
		UpdateBlog(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b models.Blog) (*models.Blog, error) {
			require.Equal(t, "hello-abc", b.BlogID)
			return &b, nil
		})
	d.trending.EXPECT().Invalidate(gomock.Any()).Return(errors.New("redis down"))

	slug, err := d.svc.CreateBlog(context.Background(), uid, in)
	require.NoError(t, err)
	require.Equal(t, "hello-abc", slug)
}

func TestGetBlog_DraftAccess(t *testing.T) {
	d := newServiceWithMocks(t)
	ctx := context.Background()
	author := primitive.NewObjectID()
	draft := &models.Blog{BlogID: "d-1", Author: author, Draft: true}

	d.storage.EXPECT().ReadBlog(gomock.Any(), "d-1", true).Return(draft, nil).Times(3)

	_, err := d.svc.GetBlog(ctx, primitive.NilObjectID, "d-1", true, "")
	requireMessage(t, err, ErrForbidden, msgDraftAccess)

	_, err = d.svc.GetBlog(ctx, primitive.NewObjectID(), "d-1", true, "")
	requireMessage(t, err, ErrForbidden, msgDraftAccess)

	_, err = d.svc.GetBlog(ctx, author, "d-1", false, "")
	requireMessage(t, err, ErrForbidden, msgDraftAccess)

	d.storage.EXPECT().ReadBlog(gomock.Any(), "d-1", false).Return(draft, nil)
	got, err := d.svc.GetBlog(ctx, author, "d-1", true, "edit")
	require.NoError(t, err)
	require.Equal(t, "d-1", got.BlogID)
}

func TestGetBlog_NotFound(t *testing.T) {
	d := newServiceWithMocks(t)

	d.storage.EXPECT().ReadBlog(gomock.Any(), "missing", true).Return(nil, storage.ErrNotFound)

	_, err := d.svc.GetBlog(context.Background(), primitive.NilObjectID, "missing", false, "")
	requireMessage(t, err, ErrNotFound, blogAbsent)

	_, err = d.svc.GetBlog(context.Background(), primitive.NilObjectID, " ", false, "")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTrendingBlogs_CacheHitAndMiss(t *testing.T) {
	d := newServiceWithMocks(t)
	ctx := context.Background()
	cached := []models.Blog{{BlogID: "cached"}}

	d.trending.EXPECT().Get(gomock.Any()).Return(cached, true, nil)
	got, err := d.svc.TrendingBlogs(ctx)
	require.NoError(t, err)
	require.Equal(t, cached, got)

	fresh := []models.Blog{{BlogID: "fresh"}}
	d.trending.EXPECT().Get(gomock.Any()).Return(nil, false, errors.New("redis down"))
	d.storage.EXPECT().
		ListBlogs(gomock.Any(), models.BlogQuery{Sort: models.SortTrending, Limit: 5}).
		Return(fresh, nil)
	d.trending.EXPECT().Set(gomock.Any(), fresh, d.svc.cfg.Redis.TrendingTTL).Return(nil)

	got, err = d.svc.TrendingBlogs(ctx)
	require.NoError(t, err)
	require.Equal(t, fresh, got)
}

func TestLatestBlogs_Paging(t *testing.T) {
	d := newServiceWithMocks(t)

	d.storage.EXPECT().
		ListBlogs(gomock.Any(), models.BlogQuery{Sort: models.SortLatest, Skip: 10, Limit: 5}).
		Return([]models.Blog{}, nil)

	_, err := d.svc.LatestBlogs(context.Background(), 3)
	require.NoError(t, err)
}

// Приоритет фильтров: tag, затем query, затем author.
func TestSearchBlogs_FilterPriority(t *testing.T) {
	d := newServiceWithMocks(t)
	ctx := context.Background()
	author := primitive.NewObjectID()

	d.storage.EXPECT().
		ListBlogs(gomock.Any(), models.BlogQuery{Tag: "go", Query: "mongo", ExcludeBlogID: "self", Skip: 2, Limit: 2}).
		Return(nil, nil)
	_, err := d.svc.SearchBlogs(ctx, SearchBlogsInput{Tag: "Go", Query: "mongo", Author: author.Hex(), Page: 2, EliminateBlog: "self"})
	require.NoError(t, err)

	d.storage.EXPECT().
		CountBlogs(gomock.Any(), models.BlogQuery{Author: author}).
		Return(int64(3), nil)
	n, err := d.svc.SearchBlogsCount(ctx, SearchBlogsInput{Author: author.Hex()})
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	_, err = d.svc.SearchBlogs(ctx, SearchBlogsInput{Author: "bad"})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestUserWrittenBlogs_DeletedDocCount(t *testing.T) {
	d := newServiceWithMocks(t)
	uid := primitive.NewObjectID()

	d.storage.EXPECT().
		ListBlogs(gomock.Any(), models.BlogQuery{AuthorOnly: true, Author: uid, Draft: true, Query: "go", Skip: 3, Limit: 5}).
		Return(nil, nil)

	_, err := d.svc.UserWrittenBlogs(context.Background(), uid, UserBlogsInput{Page: 2, Draft: true, Query: "go", DeletedDocCount: 2})
	require.NoError(t, err)
}

func TestDeleteBlog(t *testing.T) {
	d := newServiceWithMocks(t)
	ctx := context.Background()
	author := primitive.NewObjectID()

	d.storage.EXPECT().ReadBlog(gomock.Any(), "b-1", false).Return(&models.Blog{Author: author}, nil).Times(2)

	err := d.svc.DeleteBlog(ctx, primitive.NewObjectID(), "b-1")
	requireMessage(t, err, ErrForbidden, msgDeleteForeign)

	d.storage.EXPECT().DeleteBlog(gomock.Any(), "b-1").Return(nil)
	d.trending.EXPECT().Invalidate(gomock.Any()).Return(nil)
	require.NoError(t, d.svc.DeleteBlog(ctx, author, "b-1"))
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	require.Regexp(t, `^My-first-post-[0-9a-f]{10}$`, slugify("  My   first post!! "))
	require.Regexp(t, `^[0-9a-f]{10}$`, slugify("!!!"))
}
