package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/blog-service/internal/transport/http/errors"
)

type uploadURLResponse struct {
	UploadURL string `json:"uploadURL"`
	PublicURL string `json:"publicURL,omitempty"`
}

// UploadURL — GET /get-upload-url[?content_type=image/png].
func (h *Handlers) UploadURL(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.UploadURL(r.Context(), r.URL.Query().Get("content_type"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadURLResponse{UploadURL: info.UploadURL, PublicURL: info.PublicURL})
}
