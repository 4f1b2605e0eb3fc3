package handler

import (
	"net/http"

	"buildflow/pkg/apperr"
	"buildflow/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps service-layer error types onto HTTP status codes inside
// the standard response envelope.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperr.IsValidation(err):
		status = http.StatusBadRequest
	case apperr.IsNotFound(err):
		status = http.StatusNotFound
	case apperr.IsIllegalTransition(err):
		status = http.StatusConflict
	case apperr.IsConflict(err):
		status = http.StatusConflict
	}
	c.JSON(status, response.Error(status, err.Error()))
}
