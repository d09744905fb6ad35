package api

import (
	"net/http"

	"example.com/fleetcontrol/internal/remote"
	"example.com/fleetcontrol/internal/validate"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrorResponse defines the structure of an error response
type ErrorResponse struct {
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

// Error represents an API error
type Error struct {
	Message    string
	StatusCode int
	Code       string
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Common API errors
var (
	ErrInvalidRequest = &Error{Message: "Invalid request", StatusCode: http.StatusBadRequest, Code: "INVALID_REQUEST"}
	ErrNotFound       = &Error{Message: "Resource not found", StatusCode: http.StatusNotFound, Code: "NOT_FOUND"}
	ErrInternalServer = &Error{Message: "Internal server error", StatusCode: http.StatusInternalServerError, Code: "INTERNAL_ERROR"}
)

// WriteError maps an error to the HTTP response the view layer expects:
// validation failures block submission with the offending field names, write
// failures keep the editing UI open with the propagated upstream message,
// and fetch failures render as a bad gateway.
func WriteError(c *gin.Context, err error) {
	var validationErr *validate.Error
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: validationErr.Message,
			Code:    "VALIDATION_ERROR",
			Fields:  validationErr.Fields,
		})
		return
	}

	var writeErr *remote.WriteError
	if errors.As(err, &writeErr) {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: writeErr.Error(),
			Code:    "REMOTE_WRITE_ERROR",
		})
		return
	}

	var fetchErr *remote.FetchError
	if errors.As(err, &fetchErr) {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: fetchErr.Error(),
			Code:    "REMOTE_FETCH_ERROR",
		})
		return
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.StatusCode, ErrorResponse{
			Message: apiErr.Message,
			Code:    apiErr.Code,
		})
		return
	}

	log.Error().Err(err).Msg("Unhandled error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Message: ErrInternalServer.Message,
		Code:    ErrInternalServer.Code,
	})
}
