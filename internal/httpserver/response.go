package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/service/auth"
)

// Every endpoint answers with the same envelope: {"success": true, "data": ...}
// on the happy path, {"success": false, "message": ...} otherwise.

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": true, "message": msg})
}

func respondError(c *gin.Context, err error) {
	status, msg := errorStatus(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"success": false, "message": msg})
}

func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": msg})
}

func errorStatus(err error) (int, string) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, vErr.Error()
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "resource already exists"
	case errors.Is(err, domain.ErrDuplicateName):
		return http.StatusConflict, "name already in use"
	case errors.Is(err, domain.ErrHasDependents):
		return http.StatusConflict, "resource has dependent records"
	case errors.Is(err, domain.ErrParentInactive):
		return http.StatusBadRequest, "parent is inactive"
	case errors.Is(err, domain.ErrHierarchyMismatch):
		return http.StatusBadRequest, "subcategory does not belong to the category"
	case errors.Is(err, domain.ErrProductInactive):
		return http.StatusBadRequest, "product is not available"
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusBadRequest, "insufficient stock"
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest, "cart is empty"
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict, "invalid status transition"
	case errors.Is(err, domain.ErrNotCancellable):
		return http.StatusConflict, "order can no longer be cancelled"
	case errors.Is(err, domain.ErrDeleteNotAllowed):
		return http.StatusConflict, "only pending orders can be deleted"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid or expired token"
	}
	return http.StatusInternalServerError, "internal server error"
}
