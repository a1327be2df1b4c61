package handlers

import (
	"net/http"
	"time"

	"github.com/pribylovaa/blog-service/internal/models"
	"github.com/pribylovaa/blog-service/internal/service"
	apierrors "github.com/pribylovaa/blog-service/internal/transport/http/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// addCommentRequest: _id — ObjectID блога. blog_author принимается для совместимости
// с клиентом, но автор всегда берётся из хранилища.
type addCommentRequest struct {
	ID             string `json:"_id"`
	Comment        string `json:"comment"`
	BlogAuthor     string `json:"blog_author"`
	ReplyingTo     string `json:"replying_to"`
	NotificationID string `json:"notification_id"`
}

type addCommentResponse struct {
	ID          primitive.ObjectID   `json:"_id"`
	Comment     string               `json:"comment"`
	CommentedAt time.Time            `json:"commentedAt"`
	UserID      primitive.ObjectID   `json:"user_id"`
	Children    []primitive.ObjectID `json:"children"`
}

type blogCommentsRequest struct {
	BlogID string `json:"blog_id"`
	Skip   int64  `json:"skip"`
}

type repliesRequest struct {
	ID   string `json:"_id"`
	Skip int64  `json:"skip"`
}

type commentIDRequest struct {
	ID string `json:"_id"`
}

type repliesResponse struct {
	Replies []models.Comment `json:"replies"`
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	var in addCommentRequest
	if !decode(w, r, &in) {
		return
	}

	c, err := h.svc.AddComment(r.Context(), userID(r), service.AddCommentInput{
		BlogID:         in.ID,
		Comment:        in.Comment,
		ReplyingTo:     in.ReplyingTo,
		NotificationID: in.NotificationID,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, addCommentResponse{
		ID:          c.ID,
		Comment:     c.Comment,
		CommentedAt: c.CommentedAt,
		UserID:      c.CommentedBy,
		Children:    nonNil(c.Children),
	})
}

func (h *Handlers) BlogComments(w http.ResponseWriter, r *http.Request) {
	var in blogCommentsRequest
	if !decode(w, r, &in) {
		return
	}

	comments, err := h.svc.BlogComments(r.Context(), in.BlogID, in.Skip)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(comments))
}

func (h *Handlers) Replies(w http.ResponseWriter, r *http.Request) {
	var in repliesRequest
	if !decode(w, r, &in) {
		return
	}

	replies, err := h.svc.Replies(r.Context(), in.ID, in.Skip)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, repliesResponse{Replies: nonNil(replies)})
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	var in commentIDRequest
	if !decode(w, r, &in) {
		return
	}

	if err := h.svc.DeleteComment(r.Context(), userID(r), in.ID); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "done"})
}
