package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pribylovaa/blog-service/internal/service"
	"github.com/stretchr/testify/require"
)

func TestToHTTP_BaseMapping(t *testing.T) {
	tcs := []struct {
		name       string
		in         error
		wantStatus int
	}{
		{"bad_request", fmt.Errorf("decode: %w", ErrBadRequest), http.StatusBadRequest},
		{"invalid_argument", service.ErrInvalidArgument, http.StatusForbidden},
		{"unauth", service.ErrUnauthenticated, http.StatusUnauthorized},
		{"invalid_token", service.ErrInvalidToken, http.StatusUnauthorized},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"not_found", service.ErrNotFound, http.StatusNotFound},
		{"conflict", service.ErrConflict, http.StatusConflict},
		{"canceled", context.Canceled, StatusClientClosedRequest},
		{"deadline", fmt.Errorf("op: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"internal", service.ErrInternal, http.StatusInternalServerError},
		{"unknown", errors.New("mongo: connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			gotStatus, resp := ToHTTP(tc.in)
			require.Equal(t, tc.wantStatus, gotStatus)
			require.NotEmpty(t, resp.Error)
		})
	}
}

func TestToHTTP_UsesServiceMessage(t *testing.T) {
	err := fmt.Errorf("service/auth/SignUp: %w", &service.Error{Kind: service.ErrConflict, Message: "Email already exists"})

	gotStatus, resp := ToHTTP(err)
	require.Equal(t, http.StatusConflict, gotStatus)
	require.Equal(t, "Email already exists", resp.Error)
}

// Внутренние ошибки не раскрывают детали, даже если сообщение задано.
func TestToHTTP_InternalHidesDetails(t *testing.T) {
	gotStatus, resp := ToHTTP(&service.Error{Kind: errors.New("raw"), Message: "E11000 duplicate key"})
	require.Equal(t, http.StatusInternalServerError, gotStatus)
	require.Equal(t, "internal error", resp.Error)

	gotStatus, resp = ToHTTP(nil)
	require.Equal(t, http.StatusInternalServerError, gotStatus)
	require.Equal(t, "internal error", resp.Error)
}

func TestWriteError_Body(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", nil)

	WriteError(rr, req, &service.Error{Kind: service.ErrInvalidArgument, Message: "Enter Email"})

	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, map[string]string{"error": "Enter Email"}, body)
}
