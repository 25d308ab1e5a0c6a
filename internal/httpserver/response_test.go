package httpserver

import (
	"errors"
	"net/http"
	"testing"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/service/auth"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.NewValidationError("name", "too short"), http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrAlreadyExists, http.StatusConflict},
		{domain.ErrDuplicateName, http.StatusConflict},
		{domain.ErrHasDependents, http.StatusConflict},
		{domain.ErrParentInactive, http.StatusBadRequest},
		{domain.ErrHierarchyMismatch, http.StatusBadRequest},
		{domain.ErrProductInactive, http.StatusBadRequest},
		{domain.ErrInsufficientStock, http.StatusBadRequest},
		{domain.ErrEmptyCart, http.StatusBadRequest},
		{domain.ErrInvalidState, http.StatusConflict},
		{domain.ErrNotCancellable, http.StatusConflict},
		{domain.ErrDeleteNotAllowed, http.StatusConflict},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrInvalidToken, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got, _ := errorStatus(tc.err); got != tc.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestErrorStatus_WrappedErrors(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), domain.ErrInsufficientStock)
	if got, _ := errorStatus(wrapped); got != http.StatusBadRequest {
		t.Fatalf("expected wrapped sentinel to map to 400, got %d", got)
	}
}
