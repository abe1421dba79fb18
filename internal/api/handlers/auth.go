package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dom/bookshelf/internal/api/middleware"
	"github.com/dom/bookshelf/internal/api/respond"
	"github.com/dom/bookshelf/internal/domain"
	"github.com/dom/bookshelf/internal/service"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	authService *service.AuthService
	log         *logrus.Logger
}

func NewAuthHandler(authService *service.AuthService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RegisterResponse struct {
	User UserResponse `json:"user"`
}

type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
}

func newUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:    user.ID.String(),
		Name:  user.Name,
		Email: user.Email,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, h.log, "auth.Register", err)
		return
	}

	respond.JSON(w, http.StatusCreated, RegisterResponse{User: newUserResponse(user)})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, h.log, "auth.Login", err)
		return
	}

	respond.JSON(w, http.StatusOK, AuthResponse{
		User:        newUserResponse(result.User),
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt,
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, "auth.Me", err)
		return
	}

	respond.JSON(w, http.StatusOK, newUserResponse(user))
}
