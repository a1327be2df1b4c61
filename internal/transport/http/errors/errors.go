// errors стандартизирует ответы об ошибках HTTP-слоя blog-service.
// На вход принимает ошибку сервисного слоя, на выход даёт:
//   - HTTP-статус по виду ошибки (service.ErrXxx);
//   - безопасное сообщение: текст *service.Error или общий "internal error".
//
// Формат тела: {"error": "<message>"}; request id уходит в заголовке X-Request-Id.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/blog-service/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// ErrBadRequest — тело запроса не разобрано (битый JSON, неизвестные поля).
var ErrBadRequest = errors.New("invalid request body")

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ToHTTP конвертирует ошибку сервиса в HTTP-статус и тело ответа.
//
// Поведение:
//   - err == nil — программная ошибка вызова: 500/internal;
//   - ошибки валидации отдаются как 403 вместе с текстом для пользователя;
//   - нераспознанные ошибки — 500 без деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	internal := ErrorResponse{Error: "internal error"}

	if err == nil {
		return http.StatusInternalServerError, internal
	}

	code, msg := baseFromService(err)
	if code == http.StatusInternalServerError {
		return code, internal
	}

	var se *service.Error
	if errors.As(err, &se) && se.Message != "" {
		msg = se.Message
	}

	return code, ErrorResponse{Error: msg}
}

// WriteError — хелпер для HTTP-хендлеров и мидлваров.
func WriteError(w http.ResponseWriter, _ *http.Request, err error) {
	status, resp := ToHTTP(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// baseFromService — базовый маппинг вида ошибки в HTTP-статус и сообщение по умолчанию:
//   - ErrBadRequest -> 400
//   - ErrInvalidArgument -> 403 (так ожидает SPA-клиент)
//   - ErrUnauthenticated, service.ErrInvalidToken -> 401
//   - ErrForbidden -> 403
//   - ErrNotFound -> 404
//   - ErrConflict -> 409
//   - context.Canceled -> 499
//   - context.DeadlineExceeded -> 504
//   - прочее -> 500/internal
func baseFromService(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "invalid request body"
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusForbidden, "invalid argument"
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "already exists"
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline exceeded"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
