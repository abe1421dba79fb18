package handlers

import (
	"errors"
	"net/http"

	"github.com/dom/bookshelf/internal/api/respond"
	"github.com/dom/bookshelf/internal/domain"
	"github.com/sirupsen/logrus"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// writeServiceError maps service errors to responses. Storage and unexpected
// errors are logged and replaced with a generic message.
func writeServiceError(w http.ResponseWriter, log *logrus.Logger, op string, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		respond.FieldError(w, http.StatusBadRequest, vErr.Field, vErr.Message)
	case errors.Is(err, domain.ErrDuplicateEmail):
		respond.Error(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, domain.ErrInvalidCredentials):
		respond.Error(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, domain.ErrMissingToken):
		respond.Error(w, http.StatusUnauthorized, "Authorization required")
	case errors.Is(err, domain.ErrInvalidToken):
		respond.Error(w, http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, domain.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "Book not found")
	case errors.Is(err, domain.ErrUserNotFound):
		respond.Error(w, http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrStorageUnavailable):
		log.WithError(err).Errorf("[%s] storage unavailable", op)
		respond.Error(w, http.StatusServiceUnavailable, "Service unavailable")
	default:
		log.WithError(err).Errorf("[%s] unexpected error", op)
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
