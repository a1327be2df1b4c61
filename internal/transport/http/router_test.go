package http

// Тесты REST-слоя: реальный service.Service поверх gomock-хранилищ,
// запросы идут через полный роутер (мидлвары, auth, маппинг ошибок).

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/blog-service/internal/config"
	"github.com/pribylovaa/blog-service/internal/models"
	"github.com/pribylovaa/blog-service/internal/service"
	"github.com/pribylovaa/blog-service/internal/storage"
	"github.com/pribylovaa/blog-service/mocks"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:  "router-secret-0123456789",
			Issuer:     "blog-test",
			TokenTTL:   time.Hour,
			BcryptCost: 4,
		},
		Limits: config.LimitsConfig{Blogs: 5, Search: 2, Comments: 5, Notifications: 10, Users: 50, Max: 100},
	}
}

type testServer struct {
	handler http.Handler
	storage *mocks.MockStorage
	uploads *mocks.MockUploads
	cfg     *config.Config
}

func newTestServer(t *testing.T) testServer {
	t.Helper()

	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	up := mocks.NewMockUploads(ctrl)
	cfg := testConfig()

	h := NewRouter(service.New(st, up, cfg), Options{
		Logger:         slog.New(slog.DiscardHandler),
		Timeout:        time.Second,
		AllowedOrigins: []string{"*"},
	})

	return testServer{handler: h, storage: st, uploads: up, cfg: cfg}
}

// token подписывает access-токен так же, как это делает сервис.
func (ts testServer) token(t *testing.T, uid primitive.ObjectID) string {
	t.Helper()

	now := time.Now()
	claims := jwt.MapClaims{
		"id":  uid.Hex(),
		"iss": ts.cfg.Auth.Issuer,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(ts.cfg.Auth.JWTSecret))
	require.NoError(t, err)

	return signed
}

func (ts testServer) do(t *testing.T, method, path, body, token string) (int, map[string]any) {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	var out map[string]any
	if b := bytes.TrimSpace(rr.Body.Bytes()); len(b) > 0 && b[0] == '{' {
		require.NoError(t, json.Unmarshal(b, &out))
	}

	require.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	return rr.Code, out
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	code, body := ts.do(t, http.MethodPost, "/create-blog", `{}`, "")
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "No access token", body["error"])

	code, body = ts.do(t, http.MethodGet, "/new-notification", "", "garbage")
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "Access token is invalid", body["error"])
}

func TestRouter_SignUp_DuplicateEmail(t *testing.T) {
	ts := newTestServer(t)

	ts.storage.EXPECT().UsernameExists(gomock.Any(), "alice").Return(false, nil)
	ts.storage.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil, storage.ErrConflict)

	code, body := ts.do(t, http.MethodPost, "/signup",
		`{"fullname":"Alice","email":"alice@example.com","password":"Secret123"}`, "")
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, "Email already exists", body["error"])
}

func TestRouter_SignUp_SessionShape(t *testing.T) {
	ts := newTestServer(t)

	ts.storage.EXPECT().UsernameExists(gomock.Any(), "alice").Return(false, nil)
	ts.storage.EXPECT().
		CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u models.User) (*models.User, error) {
			u.ID = primitive.NewObjectID()
			return &u, nil
		})

	code, body := ts.do(t, http.MethodPost, "/signup",
		`{"fullname":"Alice","email":"alice@example.com","password":"Secret123"}`, "")
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, body["access_token"])
	require.Equal(t, "alice", body["username"])
	require.Equal(t, "Alice", body["fullname"])
	require.NotEmpty(t, body["profile_img"])
}

func TestRouter_ValidationIs403(t *testing.T) {
	ts := newTestServer(t)

	code, body := ts.do(t, http.MethodPost, "/signup", `{"fullname":"Al","email":"a@b.com","password":"Secret123"}`, "")
	require.Equal(t, http.StatusForbidden, code)
	require.Equal(t, "Fullname must be at least 3 letters long", body["error"])
}

func TestRouter_BadJSON(t *testing.T) {
	ts := newTestServer(t)

	code, _ := ts.do(t, http.MethodPost, "/signin", `{"email":`, "")
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = ts.do(t, http.MethodPost, "/signin", `{"unknown":1}`, "")
	require.Equal(t, http.StatusBadRequest, code)
}

// Пустой комментарий: 403 до обращения к хранилищу.
func TestRouter_AddComment_Empty(t *testing.T) {
	ts := newTestServer(t)
	uid := primitive.NewObjectID()

	code, body := ts.do(t, http.MethodPost, "/add-comment",
		`{"_id":"`+primitive.NewObjectID().Hex()+`","comment":"  ","blog_author":"x"}`, ts.token(t, uid))
	require.Equal(t, http.StatusForbidden, code)
	require.Equal(t, "Write something to leave a comment", body["error"])
}

func TestRouter_AddComment_ResponseShape(t *testing.T) {
	ts := newTestServer(t)
	uid := primitive.NewObjectID()
	blog := &models.Blog{ID: primitive.NewObjectID(), Author: primitive.NewObjectID()}
	cid := primitive.NewObjectID()

	ts.storage.EXPECT().BlogByID(gomock.Any(), blog.ID).Return(blog, nil)
	ts.storage.EXPECT().
		CreateComment(gomock.Any(), gomock.Any()).
		Return(&models.Comment{ID: cid, Comment: "hi", CommentedBy: uid, CommentedAt: time.Now()}, nil)

	code, body := ts.do(t, http.MethodPost, "/add-comment",
		`{"_id":"`+blog.ID.Hex()+`","comment":"hi"}`, ts.token(t, uid))
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, cid.Hex(), body["_id"])
	require.Equal(t, uid.Hex(), body["user_id"])
	require.Equal(t, []any{}, body["children"])
	require.Contains(t, body, "commentedAt")
}

func TestRouter_LikeBlog(t *testing.T) {
	ts := newTestServer(t)
	uid := primitive.NewObjectID()
	blog := &models.Blog{ID: primitive.NewObjectID(), Author: primitive.NewObjectID()}

	ts.storage.EXPECT().BlogByID(gomock.Any(), blog.ID).Return(blog, nil)
	ts.storage.EXPECT().LikeBlog(gomock.Any(), uid, blog.ID, blog.Author).Return(nil)

	code, body := ts.do(t, http.MethodPost, "/like-blog",
		`{"_id":"`+blog.ID.Hex()+`","islikedByUser":false}`, ts.token(t, uid))
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["liked_by_user"])
}

// Черновик отдаётся автору через OptionalAuth и скрыт от анонима.
func TestRouter_GetBlog_OptionalAuth(t *testing.T) {
	ts := newTestServer(t)
	author := primitive.NewObjectID()
	draft := &models.Blog{BlogID: "d-1", Title: "wip", Author: author, Draft: true}

	ts.storage.EXPECT().ReadBlog(gomock.Any(), "d-1", false).Return(draft, nil).Times(2)

	code, body := ts.do(t, http.MethodPost, "/get-blog", `{"blog_id":"d-1","draft":true,"mode":"edit"}`, "")
	require.Equal(t, http.StatusForbidden, code)
	require.Equal(t, "you can not access draft blogs", body["error"])

	code, body = ts.do(t, http.MethodPost, "/get-blog", `{"blog_id":"d-1","draft":true,"mode":"edit"}`, ts.token(t, author))
	require.Equal(t, http.StatusOK, code)
	blog, _ := body["blog"].(map[string]any)
	require.Equal(t, "wip", blog["title"])
}

func TestRouter_CreateBlog_ContentObject(t *testing.T) {
	ts := newTestServer(t)
	uid := primitive.NewObjectID()

	ts.storage.EXPECT().
		CreateBlog(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b models.Blog) (*models.Blog, error) {
			require.Len(t, b.Content, 1)
			require.Len(t, b.Content[0].Blocks, 1)
			return &b, nil
		})

	code, body := ts.do(t, http.MethodPost, "/create-blog", `{
		"title":"Hello","des":"d","banner":"https://cdn/b.png","tags":["go"],
		"content":{"time":1,"blocks":[{"type":"paragraph","data":{"text":"x"}}],"version":"2.0"},
		"draft":false}`, ts.token(t, uid))
	require.Equal(t, http.StatusOK, code)
	require.True(t, strings.HasPrefix(body["id"].(string), "Hello-"))
}

func TestRouter_CountsAndLists(t *testing.T) {
	ts := newTestServer(t)

	ts.storage.EXPECT().CountBlogs(gomock.Any(), models.BlogQuery{}).Return(int64(7), nil)
	code, body := ts.do(t, http.MethodPost, "/all-latest-blogs-count", "", "")
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 7, body["totalDocs"])

	ts.storage.EXPECT().ListBlogs(gomock.Any(), gomock.Any()).Return(nil, nil)
	code, body = ts.do(t, http.MethodGet, "/trending-blogs", "", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, []any{}, body["blogs"])
}

func TestRouter_GetUploadURL(t *testing.T) {
	ts := newTestServer(t)

	ts.uploads.EXPECT().
		ImageUploadURL(gomock.Any(), "image/png").
		Return(&storage.UploadInfo{UploadURL: "http://minio/images/x.png?sig"}, nil)

	code, body := ts.do(t, http.MethodGet, "/get-upload-url?content_type=image/png", "", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "http://minio/images/x.png?sig", body["uploadURL"])
}

func TestRouter_DeleteComment_Forbidden(t *testing.T) {
	ts := newTestServer(t)
	c := &models.Comment{ID: primitive.NewObjectID(), CommentedBy: primitive.NewObjectID(), BlogAuthor: primitive.NewObjectID()}

	ts.storage.EXPECT().CommentByID(gomock.Any(), c.ID).Return(c, nil)

	code, body := ts.do(t, http.MethodPost, "/delete-comment", `{"_id":"`+c.ID.Hex()+`"}`, ts.token(t, primitive.NewObjectID()))
	require.Equal(t, http.StatusForbidden, code)
	require.Equal(t, "You can not delete this comment", body["error"])
}

func TestRouter_GetProfile_HidesEmail(t *testing.T) {
	ts := newTestServer(t)

	user := &models.User{
		ID: primitive.NewObjectID(),
		PersonalInfo: models.PersonalInfo{
			Fullname: "Alice",
			Email:    "alice@example.com",
			Password: "hash",
			Username: "alice",
		},
	}
	ts.storage.EXPECT().UserByUsername(gomock.Any(), "alice").Return(user, nil)

	code, body := ts.do(t, http.MethodPost, "/get-profile", `{"username":"alice"}`, "")
	require.Equal(t, http.StatusOK, code)

	info, ok := body["personal_info"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "alice", info["username"])
	require.NotContains(t, info, "email")
	require.NotContains(t, info, "password")
}

func TestRouter_StorageFailureIs500(t *testing.T) {
	ts := newTestServer(t)

	ts.storage.EXPECT().HasUnseen(gomock.Any(), gomock.Any()).Return(false, io.ErrUnexpectedEOF)

	code, body := ts.do(t, http.MethodGet, "/new-notification", "", ts.token(t, primitive.NewObjectID()))
	require.Equal(t, http.StatusInternalServerError, code)
	require.Equal(t, "internal error", body["error"])
}
