package handlers

import (
	"net/http"

	"github.com/pribylovaa/blog-service/internal/service"
	apierrors "github.com/pribylovaa/blog-service/internal/transport/http/errors"
)

type signUpRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleAuthRequest struct {
	AccessToken string `json:"access_token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type sessionResponse struct {
	AccessToken string `json:"access_token"`
	ProfileImg  string `json:"profile_img"`
	Username    string `json:"username"`
	Fullname    string `json:"fullname"`
}

func toSession(s *service.Session) sessionResponse {
	return sessionResponse{
		AccessToken: s.AccessToken,
		ProfileImg:  s.User.PersonalInfo.ProfileImg,
		Username:    s.User.PersonalInfo.Username,
		Fullname:    s.User.PersonalInfo.Fullname,
	}
}

func (h *Handlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var in signUpRequest
	if !decode(w, r, &in) {
		return
	}

	sess, err := h.svc.SignUp(r.Context(), in.Fullname, in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSession(sess))
}

func (h *Handlers) SignIn(w http.ResponseWriter, r *http.Request) {
	var in signInRequest
	if !decode(w, r, &in) {
		return
	}

	sess, err := h.svc.SignIn(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSession(sess))
}

func (h *Handlers) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	var in googleAuthRequest
	if !decode(w, r, &in) {
		return
	}

	sess, err := h.svc.GoogleAuth(r.Context(), in.AccessToken)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSession(sess))
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in changePasswordRequest
	if !decode(w, r, &in) {
		return
	}

	if err := h.svc.ChangePassword(r.Context(), userID(r), in.CurrentPassword, in.NewPassword); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "password changed"})
}
