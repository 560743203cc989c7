package server

import (
	"errors"
	"net/http"

	"github.com/entrhq/sectionforge/pkg/types"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError aborts the request with {"error": message}.
func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// respondErr maps err to a status code and responds with its message.
func respondErr(c *gin.Context, err error) {
	_ = c.Error(err)
	respondError(c, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}

	switch types.KindOf(err) {
	case types.KindValidation:
		return http.StatusBadRequest
	case types.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
