package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/julianstephens/habitline/internal/errors"
)

// APIError is the body of every error response
type APIError struct {
	Status  int         `json:"-"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func newError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

func badRequest(code, message string) *APIError {
	return newError(http.StatusBadRequest, code, message)
}

func unauthorized(message string) *APIError {
	if message == "" {
		message = "unauthorized"
	}
	return newError(http.StatusUnauthorized, "unauthorized", message)
}

func notFound(code, message string) *APIError {
	return newError(http.StatusNotFound, code, message)
}

// fromError maps tracker errors onto HTTP statuses
func fromError(err error) *APIError {
	switch {
	case errors.Is(err, apperrors.ErrHabitNotFound):
		return notFound("habit_not_found", err.Error())
	case errors.Is(err, apperrors.ErrCategoryNotFound):
		return notFound("category_not_found", err.Error())
	case errors.Is(err, apperrors.ErrLastCategory):
		return newError(http.StatusConflict, "last_category", err.Error())
	case errors.Is(err, apperrors.ErrInvalidHabit):
		return badRequest("invalid_habit", err.Error())
	case errors.Is(err, apperrors.ErrInvalidCategory):
		return badRequest("invalid_category", err.Error())
	case errors.Is(err, apperrors.ErrInvalidDate):
		return badRequest("invalid_date", err.Error())
	default:
		return newError(http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeError(c *gin.Context, apiErr *APIError) {
	if apiErr == nil {
		apiErr = newError(http.StatusInternalServerError, "internal_error", "internal server error")
	}
	body := gin.H{
		"code":    apiErr.Code,
		"message": apiErr.Message,
	}
	if apiErr.Details != nil {
		body["details"] = apiErr.Details
	}
	c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": body})
}

func invalidJSON(c *gin.Context) {
	writeError(c, badRequest("invalid_json", "invalid request body"))
}
