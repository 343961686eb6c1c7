package handlers

import (
	"Stockpile/internal/service"
	"Stockpile/internal/upload"
	"errors"
	"net/http"
)

const internalErrorMessage = "internal server error"

// errorStatus переводит ошибку сервиса или разбора формы в HTTP статус и текст ответа.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, upload.ErrUnsupportedMediaType):
		return http.StatusBadRequest, upload.ErrUnsupportedMediaType.Error()
	case errors.Is(err, upload.ErrPayloadTooLarge):
		return http.StatusBadRequest, upload.ErrPayloadTooLarge.Error()
	case errors.Is(err, upload.ErrBadRequest):
		return http.StatusBadRequest, upload.ErrBadRequest.Error()
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidItemID),
		errors.Is(err, service.ErrLoginTaken),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrItemNotFound), errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}
