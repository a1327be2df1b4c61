// handlers — REST-эндпойнты blog-service поверх service.Service.
// Формат запросов и ответов совпадает с тем, что ожидает SPA-клиент
// (snake_case и исторические camelCase поля).
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pribylovaa/blog-service/internal/service"
	apierrors "github.com/pribylovaa/blog-service/internal/transport/http/errors"
	"github.com/pribylovaa/blog-service/internal/transport/http/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxBodyBytes — верхняя граница тела запроса (контент блога входит с запасом).
const maxBodyBytes = 4 << 20

// Handlers агрегирует зависимости хендлеров.
type Handlers struct {
	svc *service.Service
}

func New(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
// Пустое тело допустимо и оставляет value нулевым.
func decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(value); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", apierrors.ErrBadRequest, err)
	}

	return nil
}

// decode — decodeStrict с записью ошибки; false — ответ уже отправлен.
func decode(w http.ResponseWriter, r *http.Request, value any) bool {
	if err := decodeStrict(w, r, value); err != nil {
		apierrors.WriteError(w, r, err)
		return false
	}

	return true
}

// userID — id из RequireAuth; на публичных маршрутах — нулевой ObjectID.
func userID(r *http.Request) primitive.ObjectID {
	id, _ := middleware.UserFrom(r.Context())
	return id
}

type statusResponse struct {
	Status string `json:"status"`
}

type countResponse struct {
	TotalDocs int64 `json:"totalDocs"`
}
