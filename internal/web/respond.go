// Package web holds the response envelope shared by every handler.
package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
)

// OK writes {"success": true, "data": ...}.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// Created writes the envelope with a 201.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// Paginated writes a list payload with paging metadata.
func Paginated(c *gin.Context, items any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"pagination": gin.H{
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}

// Fail writes {"success": false, "error": {"message": ...}}.
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": gin.H{"message": message}})
}

// Error maps the domain error taxonomy onto HTTP statuses. Lifecycle
// failures keep their messages (they name the transition and current
// state); anything unrecognized is an infrastructure error and stays
// opaque.
func Error(c *gin.Context, err error) {
	var (
		invalid    *lifecycle.InvalidTransitionError
		denied     *lifecycle.PermissionDeniedError
		constraint *lifecycle.ConstraintViolationError
		notFound   *lifecycle.NotFoundError
	)
	switch {
	case errors.As(err, &invalid):
		Fail(c, http.StatusBadRequest, invalid.Error())
	case errors.As(err, &denied):
		Fail(c, http.StatusForbidden, denied.Error())
	case errors.As(err, &constraint):
		Fail(c, http.StatusConflict, constraint.Error())
	case errors.As(err, &notFound):
		Fail(c, http.StatusNotFound, notFound.Error())
	default:
		Fail(c, http.StatusInternalServerError, "internal error")
	}
}
