package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dom/bookshelf/internal/api/respond"
	"github.com/dom/bookshelf/internal/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
)

// Authenticator resolves a raw bearer token to a user id.
type Authenticator interface {
	Authenticate(rawToken string) (uuid.UUID, error)
}

func Auth(authenticator Authenticator, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := bearerToken(r.Header.Get("Authorization"))
			if err == nil {
				var userID uuid.UUID
				userID, err = authenticator.Authenticate(rawToken)
				if err == nil {
					ctx := context.WithValue(r.Context(), UserIDKey, userID)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			log.WithError(err).WithField("path", r.URL.Path).Debug("[middleware.Auth] rejected request")
			if errors.Is(err, domain.ErrMissingToken) {
				respond.Error(w, http.StatusUnauthorized, "Authorization required")
				return
			}
			respond.Error(w, http.StatusUnauthorized, "Invalid or expired token")
		})
	}
}

// bearerToken extracts the credential from an Authorization header value.
// An absent header or a bare "Bearer" yields an empty token; any other scheme
// is invalid.
func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", nil
	}

	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", domain.ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}
