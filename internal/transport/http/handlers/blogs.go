package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pribylovaa/blog-service/internal/models"
	"github.com/pribylovaa/blog-service/internal/service"
	apierrors "github.com/pribylovaa/blog-service/internal/transport/http/errors"
)

// blogContent принимает как объект редактора ({time, blocks, version}), так и массив таких объектов.
type blogContent []models.BlogContent

func (c *blogContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*c = nil
		return nil
	case data[0] == '[':
		var list []models.BlogContent
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*c = list
		return nil
	case data[0] == '{':
		var one models.BlogContent
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*c = blogContent{one}
		return nil
	default:
		return fmt.Errorf("content must be an object or an array")
	}
}

type createBlogRequest struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Des     string      `json:"des"`
	Banner  string      `json:"banner"`
	Tags    []string    `json:"tags"`
	Content blogContent `json:"content"`
	Draft   bool        `json:"draft"`
}

type getBlogRequest struct {
	BlogID string `json:"blog_id"`
	Draft  bool   `json:"draft"`
	Mode   string `json:"mode"`
}

type pageRequest struct {
	Page int64 `json:"page"`
}

type searchBlogsRequest struct {
	Tag           string `json:"tag"`
	Query         string `json:"query"`
	Author        string `json:"author"`
	Page          int64  `json:"page"`
	Limit         int64  `json:"limit"`
	EliminateBlog string `json:"eliminate_blog"`
}

func (in searchBlogsRequest) toInput() service.SearchBlogsInput {
	return service.SearchBlogsInput{
		Tag:           in.Tag,
		Query:         in.Query,
		Author:        in.Author,
		Page:          in.Page,
		Limit:         in.Limit,
		EliminateBlog: in.EliminateBlog,
	}
}

type userBlogsRequest struct {
	Page            int64  `json:"page"`
	Draft           bool   `json:"draft"`
	Query           string `json:"query"`
	DeletedDocCount int64  `json:"deletedDocCount"`
}

type blogIDRequest struct {
	BlogID string `json:"blog_id"`
}

type blogsResponse struct {
	Blogs []models.Blog `json:"blogs"`
}

type blogResponse struct {
	Blog *models.Blog `json:"blog"`
}

type createBlogResponse struct {
	ID string `json:"id"`
}

// nonNil — пустая выдача сериализуется как [], а не null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (h *Handlers) CreateBlog(w http.ResponseWriter, r *http.Request) {
	var in createBlogRequest
	if !decode(w, r, &in) {
		return
	}

	slug, err := h.svc.CreateBlog(r.Context(), userID(r), service.CreateBlogInput{
		ID:      in.ID,
		Title:   in.Title,
		Des:     in.Des,
		Banner:  in.Banner,
		Tags:    in.Tags,
		Content: in.Content,
		Draft:   in.Draft,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, createBlogResponse{ID: slug})
}

// GetBlog доступен анонимно; автор (через OptionalAuth) может запросить свой черновик.
func (h *Handlers) GetBlog(w http.ResponseWriter, r *http.Request) {
	var in getBlogRequest
	if !decode(w, r, &in) {
		return
	}

	blog, err := h.svc.GetBlog(r.Context(), userID(r), in.BlogID, in.Draft, in.Mode)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, blogResponse{Blog: blog})
}

func (h *Handlers) LatestBlogs(w http.ResponseWriter, r *http.Request) {
	var in pageRequest
	if !decode(w, r, &in) {
		return
	}

	blogs, err := h.svc.LatestBlogs(r.Context(), in.Page)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, blogsResponse{Blogs: nonNil(blogs)})
}

func (h *Handlers) LatestBlogsCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.LatestBlogsCount(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, countResponse{TotalDocs: n})
}

func (h *Handlers) TrendingBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.svc.TrendingBlogs(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, blogsResponse{Blogs: nonNil(blogs)})
}

func (h *Handlers) SearchBlogs(w http.ResponseWriter, r *http.Request) {
	var in searchBlogsRequest
	if !decode(w, r, &in) {
		return
	}

	blogs, err := h.svc.SearchBlogs(r.Context(), in.toInput())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, blogsResponse{Blogs: nonNil(blogs)})
}

func (h *Handlers) SearchBlogsCount(w http.ResponseWriter, r *http.Request) {
	var in searchBlogsRequest
	if !decode(w, r, &in) {
		return
	}

	n, err := h.svc.SearchBlogsCount(r.Context(), in.toInput())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, countResponse{TotalDocs: n})
}

func (h *Handlers) UserWrittenBlogs(w http.ResponseWriter, r *http.Request) {
	var in userBlogsRequest
	if !decode(w, r, &in) {
		return
	}

	blogs, err := h.svc.UserWrittenBlogs(r.Context(), userID(r), service.UserBlogsInput{
		Page:            in.Page,
		Draft:           in.Draft,
		Query:           in.Query,
		DeletedDocCount: in.DeletedDocCount,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, blogsResponse{Blogs: nonNil(blogs)})
}

func (h *Handlers) UserWrittenBlogsCount(w http.ResponseWriter, r *http.Request) {
	var in userBlogsRequest
	if !decode(w, r, &in) {
		return
	}

	n, err := h.svc.UserWrittenBlogsCount(r.Context(), userID(r), in.Draft, in.Query)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, countResponse{TotalDocs: n})
}

func (h *Handlers) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	var in blogIDRequest
	if !decode(w, r, &in) {
		return
	}

	if err := h.svc.DeleteBlog(r.Context(), userID(r), in.BlogID); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "done"})
}
