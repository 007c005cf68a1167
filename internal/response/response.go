package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EcoSphere-Campus/service-rewards/internal/domain"
)

// envelope is the uniform JSON wrapper for all responses.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Meta    *pageMeta   `json:"meta,omitempty"`
}

type pageMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Success writes a 200 with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes a 201 with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// Paginated writes a 200 with payload and pagination metadata.
func Paginated(c *gin.Context, data interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, envelope{
		Success: true,
		Data:    data,
		Meta:    &pageMeta{Total: total, Page: page, Limit: limit},
	})
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, envelope{Success: false, Error: msg})
}

// Error maps domain errors to HTTP statuses; anything unrecognized is a 500.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	case errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrExpired),
		errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, domain.ErrInsufficientPoints):
		status = http.StatusPaymentRequired
		msg = err.Error()
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
		msg = err.Error()
	}

	c.JSON(status, envelope{Success: false, Error: msg})
}
