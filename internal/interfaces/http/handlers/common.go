// Package handlers implements the REST endpoint handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/KeyIP-Chat/pkg/errors"
)

// errorResponse is the uniform error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps an application error to its HTTP status and envelope.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := http.StatusInternalServerError
	switch {
	case errors.IsNotFound(err):
		status = http.StatusNotFound
	case errors.IsValidation(err):
		status = http.StatusBadRequest
	case errors.IsCode(err, errors.ErrCodeServiceUnavailable):
		status = http.StatusServiceUnavailable
	case errors.IsCode(err, errors.ErrCodeTimeout), errors.IsCode(err, errors.ErrCodeModelTimeout):
		status = http.StatusGatewayTimeout
	}

	c.JSON(status, errorResponse{
		Code:    errors.GetCode(err).String(),
		Message: err.Error(),
	})
}

// respondBadRequest reports a malformed request body or parameter.
func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{
		Code:    errors.ErrCodeBadRequest.String(),
		Message: msg,
	})
}
