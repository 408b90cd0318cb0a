package app

import (
	"errors"
	"net/http"

	"github.com/tempizhere/surl/internal/repository"
	"github.com/tempizhere/surl/internal/service"
)

// Коды ошибок в JSON ответах
const (
	CodeInvalidURL         = "invalid_url"
	CodeInvalidRequest     = "invalid_request"
	CodeSlugInvalid        = "slug_invalid"
	CodeSlugTaken          = "slug_taken"
	CodeSlugSpaceExhausted = "slug_space_exhausted"
	CodeStoreUnavailable   = "store_unavailable"
	CodeNotFound           = "not_found"
	CodeInternal           = "internal"
)

// errorStatus сопоставляет ошибку сервиса HTTP статусу и коду
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		return http.StatusBadRequest, CodeInvalidURL
	case errors.Is(err, service.ErrSlugInvalid):
		return http.StatusBadRequest, CodeSlugInvalid
	case errors.Is(err, service.ErrSlugTaken):
		return http.StatusConflict, CodeSlugTaken
	case errors.Is(err, service.ErrSlugSpaceExhausted):
		return http.StatusInternalServerError, CodeSlugSpaceExhausted
	case errors.Is(err, repository.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, CodeStoreUnavailable
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// errorMessage текст ошибки для клиента без подробностей хранилища
func errorMessage(status int, err error) string {
	if status >= http.StatusInternalServerError {
		return http.StatusText(status)
	}
	return err.Error()
}
