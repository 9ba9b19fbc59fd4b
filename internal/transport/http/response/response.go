package response

import (
	"errors"
	"net/http"

	"drivepro-backend/internal/domain"
)

// Body 所有错误统一为 {"message": "..."}
type Body struct {
	Message string `json:"message"`
}

func Message(msg string) Body { return Body{Message: msg} }

// Status 用默认文案构造错误体
func Status(code int) Body {
	if msg, ok := DefaultMsg[code]; ok {
		return Body{Message: msg}
	}
	return Body{Message: http.StatusText(code)}
}

func StatusFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// FromError 业务错误原样返回提示，其余错误不外泄细节
func FromError(err error) (int, Body) {
	code := StatusFromError(err)
	var de *domain.Error
	if code != http.StatusInternalServerError && errors.As(err, &de) {
		return code, Message(de.Msg)
	}
	return code, Status(code)
}
