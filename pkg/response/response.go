package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itemshare/service-booking/pkg/domain"
)

// envelope is the standard JSON body for all responses.
type envelope struct {
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// paginatedEnvelope adds pagination metadata to the standard body.
type paginatedEnvelope struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Data: data})
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, paginatedEnvelope{Data: items, Total: total, Page: page, Limit: limit})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{Error: message})
}

// Error maps a domain error to the appropriate HTTP status code.
// Unrecognized errors become 500 with a generic message.
func Error(c *gin.Context, err error) {
	var (
		notFound     *domain.NotFoundError
		validation   *domain.ValidationError
		forbidden    *domain.ForbiddenError
		conflict     *domain.ConflictError
		invalidState *domain.InvalidStateError
	)

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, envelope{Error: notFound.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, envelope{Error: validation.Error()})
	case errors.As(err, &invalidState):
		c.JSON(http.StatusBadRequest, envelope{Error: invalidState.Error()})
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, envelope{Error: forbidden.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, envelope{Error: conflict.Error()})
	default:
		c.JSON(http.StatusInternalServerError, envelope{Error: "internal server error"})
	}
}
