package handlers

import (
	"net/http"

	"github.com/pribylovaa/blog-service/internal/models"
	"github.com/pribylovaa/blog-service/internal/service"
	apierrors "github.com/pribylovaa/blog-service/internal/transport/http/errors"
)

type likeBlogRequest struct {
	ID            string `json:"_id"`
	IsLikedByUser bool   `json:"islikedByUser"`
}

type likeBlogResponse struct {
	LikedByUser bool `json:"liked_by_user"`
}

type blogObjectIDRequest struct {
	ID string `json:"_id"`
}

type newNotificationResponse struct {
	NewNotificationAvailable bool `json:"new_notification_available"`
}

type notificationsRequest struct {
	Page            int64  `json:"page"`
	Filter          string `json:"filter"`
	DeletedDocCount int64  `json:"deletedDocCount"`
}

type notificationsResponse struct {
	Notifications []models.Notification `json:"notifications"`
}

func (h *Handlers) LikeBlog(w http.ResponseWriter, r *http.Request) {
	var in likeBlogRequest
	if !decode(w, r, &in) {
		return
	}

	liked, err := h.svc.LikeBlog(r.Context(), userID(r), in.ID, in.IsLikedByUser)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, likeBlogResponse{LikedByUser: liked})
}

// IsLikedByUser отвечает {"result": bool}.
func (h *Handlers) IsLikedByUser(w http.ResponseWriter, r *http.Request) {
	var in blogObjectIDRequest
	if !decode(w, r, &in) {
		return
	}

	liked, err := h.svc.IsLikedByUser(r.Context(), userID(r), in.ID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"result": liked})
}

func (h *Handlers) NewNotification(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.NewNotification(r.Context(), userID(r))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newNotificationResponse{NewNotificationAvailable: ok})
}

func (h *Handlers) Notifications(w http.ResponseWriter, r *http.Request) {
	var in notificationsRequest
	if !decode(w, r, &in) {
		return
	}

	list, err := h.svc.Notifications(r.Context(), userID(r), service.NotificationsInput{
		Page:            in.Page,
		Filter:          in.Filter,
		DeletedDocCount: in.DeletedDocCount,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, notificationsResponse{Notifications: nonNil(list)})
}

func (h *Handlers) NotificationsCount(w http.ResponseWriter, r *http.Request) {
	var in notificationsRequest
	if !decode(w, r, &in) {
		return
	}

	n, err := h.svc.NotificationsCount(r.Context(), userID(r), in.Filter)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, countResponse{TotalDocs: n})
}
