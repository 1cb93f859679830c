package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/huangsam/contriboard/internal/contract"
)

// apiError is an error with the HTTP status and code it maps to.
type apiError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *apiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *apiError) Unwrap() error { return e.Err }

func badRequest(format string, args ...any) error {
	return &apiError{Status: http.StatusBadRequest, Code: "BAD_REQUEST", Message: fmt.Sprintf(format, args...)}
}

// toAPIError maps domain errors onto responses. Unknown errors never leak details.
func toAPIError(err error) *apiError {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, contract.ErrNotFound):
		return &apiError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "resource not found", Err: err}
	case errors.Is(err, contract.ErrInvalidInput):
		return &apiError{Status: http.StatusBadRequest, Code: "BAD_REQUEST", Message: err.Error(), Err: err}
	case errors.Is(err, contract.ErrUnauthenticated):
		return &apiError{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "unauthorized", Err: err}
	case errors.Is(err, contract.ErrStoreDisabled):
		return &apiError{Status: http.StatusServiceUnavailable, Code: "STORE_DISABLED", Message: "storage backend is disabled", Err: err}
	case errors.Is(err, contract.ErrConfig):
		return &apiError{Status: http.StatusInternalServerError, Code: "CONFIG", Message: err.Error(), Err: err}
	default:
		return &apiError{Status: http.StatusInternalServerError, Code: "INTERNAL", Message: "internal error", Err: err}
	}
}

func (h *Handler) writeError(w http.ResponseWriter, handlerName string, err error) {
	ae := toAPIError(err)
	level := slog.LevelWarn
	if ae.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.Log.Log(context.Background(), level, "handler error",
		slog.String("handler", handlerName),
		slog.String("code", ae.Code),
		slog.String("message", ae.Message),
		slog.Any("err", ae.Err),
	)

	resp := errorResponse{}
	resp.Error.Code = ae.Code
	resp.Error.Message = ae.Message
	h.writeJSON(w, ae.Status, resp)
}
