package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pribylovaa/blog-service/internal/pkg/log"
	"github.com/pribylovaa/blog-service/internal/service"
	apierrors "github.com/pribylovaa/blog-service/internal/transport/http/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgNoToken      = "No access token"
	msgInvalidToken = "Access token is invalid"
)

// TokenValidator проверяет access-токен и возвращает id пользователя.
type TokenValidator interface {
	ValidateAccessToken(token string) (primitive.ObjectID, error)
}

type userKey struct{}

// UserFrom возвращает id аутентифицированного пользователя.
func UserFrom(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(userKey{}).(primitive.ObjectID)
	return id, ok && !id.IsZero()
}

// RequireAuth пропускает только запросы с валидным Bearer-токеном,
// иначе 401 {"error":"No access token"} / {"error":"Access token is invalid"}.
func RequireAuth(v TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				apierrors.WriteError(w, r, &service.Error{Kind: service.ErrUnauthenticated, Message: msgNoToken})
				return
			}

			uid, err := v.ValidateAccessToken(token)
			if err != nil {
				log.From(r.Context()).Warn("access token rejected", "err", err)
				apierrors.WriteError(w, r, &service.Error{Kind: service.ErrUnauthenticated, Message: msgInvalidToken})
				return
			}

			ctx := log.With(context.WithValue(r.Context(), userKey{}, uid), "user_id", uid.Hex())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth кладёт пользователя в контекст, если токен валиден; иначе запрос анонимный.
func OptionalAuth(v TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if uid, err := v.ValidateAccessToken(token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), userKey{}, uid))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "

	auth := r.Header.Get("Authorization")
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}

	return strings.TrimSpace(auth[len(prefix):])
}
