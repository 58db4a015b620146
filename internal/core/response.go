// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
)

type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"pages"`
}

type PaginatedData struct {
	Items      any            `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(body)
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Response{Success: true, Data: data})
}

func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Response{Success: true, Message: message})
}

func MessageWithData(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Response{Success: true, Message: message, Data: data})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Paginated(w http.ResponseWriter, items any, page, limit, total int) {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}

	OK(w, PaginatedData{
		Items: items,
		Pagination: PaginationMeta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: pages,
		},
	})
}

// JSONError is the single place errors become HTTP responses. Anything that
// is not an AppError or a known sentinel is logged and reported as a 500.
func JSONError(w http.ResponseWriter, err error) {
	if appErr, ok := AsAppError(err); ok {
		JSON(w, appErr.StatusCode, Response{
			Success: false,
			Message: appErr.Message,
			Code:    appErr.Code,
		})
		return
	}

	switch {
	case errors.Is(err, ErrNotFound):
		JSONError(w, NotFoundError("resource"))
	case errors.Is(err, ErrDuplicateKey), errors.Is(err, ErrConflict):
		JSONError(w, ConflictError("Resource already exists", "DUPLICATE"))
	case errors.Is(err, ErrUnauthorized):
		JSONError(w, UnauthorizedError(""))
	case errors.Is(err, ErrForbidden):
		JSONError(w, ForbiddenError(""))
	case errors.Is(err, ErrInvalidInput):
		JSONError(w, ValidationError("Invalid input"))
	case errors.Is(err, ErrTokenExpired):
		JSONError(w, TokenExpiredError())
	case errors.Is(err, ErrTokenInvalid):
		JSONError(w, TokenInvalidError())
	case errors.Is(err, ErrTokenRevoked):
		JSONError(w, TokenRevokedError())
	default:
		InternalServerError(w, err)
	}
}

func BadRequest(w http.ResponseWriter, message string) {
	JSONError(w, ValidationError(message))
}

func Unauthorized(w http.ResponseWriter, message string) {
	JSONError(w, UnauthorizedError(message))
}

func Forbidden(w http.ResponseWriter, message string) {
	JSONError(w, ForbiddenError(message))
}

func NotFound(w http.ResponseWriter, resource string) {
	JSONError(w, NotFoundError(resource))
}

func InternalServerError(w http.ResponseWriter, err error) {
	slog.Error("internal server error", "error", err)
	JSON(w, http.StatusInternalServerError, Response{
		Success: false,
		Message: "Internal server error",
		Code:    "INTERNAL_ERROR",
	})
}
