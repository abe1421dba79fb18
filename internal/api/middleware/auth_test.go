package middleware_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dom/bookshelf/internal/api/middleware"
	"github.com/dom/bookshelf/internal/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	tokens map[string]uuid.UUID
}

func (s stubAuthenticator) Authenticate(rawToken string) (uuid.UUID, error) {
	if rawToken == "" {
		return uuid.Nil, domain.ErrMissingToken
	}
	if id, ok := s.tokens[rawToken]; ok {
		return id, nil
	}
	return uuid.Nil, domain.ErrInvalidToken
}

func TestAuth(t *testing.T) {
	userID := uuid.New()
	log := logrus.New()
	log.SetOutput(io.Discard)

	authenticate := middleware.Auth(stubAuthenticator{tokens: map[string]uuid.UUID{"good": userID}}, log)
	handler := authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := middleware.GetUserID(r.Context())
		require.True(t, ok)
		w.Write([]byte(got.String()))
	}))

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedBody   string
		expectedError  string
	}{
		{name: "valid token", header: "Bearer good", expectedStatus: http.StatusOK, expectedBody: userID.String()},
		{name: "lowercase scheme", header: "bearer good", expectedStatus: http.StatusOK, expectedBody: userID.String()},
		{name: "missing header", header: "", expectedStatus: http.StatusUnauthorized, expectedError: "Authorization required"},
		{name: "scheme without token", header: "Bearer", expectedStatus: http.StatusUnauthorized, expectedError: "Authorization required"},
		{name: "scheme with blank token", header: "Bearer    ", expectedStatus: http.StatusUnauthorized, expectedError: "Authorization required"},
		{name: "basic scheme", header: "Basic Zm9vOmJhcg==", expectedStatus: http.StatusUnauthorized, expectedError: "Invalid or expired token"},
		{name: "bare token", header: "good", expectedStatus: http.StatusUnauthorized, expectedError: "Invalid or expired token"},
		{name: "unknown token", header: "Bearer bad", expectedStatus: http.StatusUnauthorized, expectedError: "Invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/books", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedError != "" {
				var body struct {
					Error string `json:"error"`
				}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, tt.expectedError, body.Error)
				return
			}
			assert.Equal(t, tt.expectedBody, strings.TrimSpace(rec.Body.String()))
		})
	}
}

func TestGetUserID_Absent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := middleware.GetUserID(req.Context())
	assert.False(t, ok)
}
