package handlers

import (
	"net/http"

	"github.com/pribylovaa/blog-service/internal/models"
	apierrors "github.com/pribylovaa/blog-service/internal/transport/http/errors"
)

type searchUsersRequest struct {
	Query string `json:"query"`
}

type usersResponse struct {
	Users []models.AuthorRef `json:"users"`
}

type profileRequest struct {
	Username string `json:"username"`
}

type profileImgRequest struct {
	URL string `json:"url"`
}

type profileImgResponse struct {
	ProfileImg string `json:"profile_img"`
}

type updateProfileRequest struct {
	Username    string             `json:"username"`
	Bio         string             `json:"bio"`
	SocialLinks models.SocialLinks `json:"social_links"`
}

type usernameResponse struct {
	Username string `json:"username"`
}

func (h *Handlers) SearchUsers(w http.ResponseWriter, r *http.Request) {
	var in searchUsersRequest
	if !decode(w, r, &in) {
		return
	}

	users, err := h.svc.SearchUsers(r.Context(), in.Query)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, usersResponse{Users: nonNil(users)})
}

func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	var in profileRequest
	if !decode(w, r, &in) {
		return
	}

	user, err := h.svc.Profile(r.Context(), in.Username)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *Handlers) UpdateProfileImg(w http.ResponseWriter, r *http.Request) {
	var in profileImgRequest
	if !decode(w, r, &in) {
		return
	}

	img, err := h.svc.UpdateProfileImg(r.Context(), userID(r), in.URL)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileImgResponse{ProfileImg: img})
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in updateProfileRequest
	if !decode(w, r, &in) {
		return
	}

	username, err := h.svc.UpdateProfile(r.Context(), userID(r), models.ProfileUpdate{
		Username:    in.Username,
		Bio:         in.Bio,
		SocialLinks: in.SocialLinks,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, usernameResponse{Username: username})
}
