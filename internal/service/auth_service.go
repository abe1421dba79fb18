package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/dom/bookshelf/internal/domain"
	"github.com/dom/bookshelf/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// bcrypt ignores input past this length, so longer passwords are rejected.
const maxPasswordBytes = 72

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *TokenCodec
	log      *logrus.Logger

	// dummyHash is compared against when the email is unknown so that both
	// login failure paths cost one bcrypt comparison.
	dummyHash []byte
}

func NewAuthService(userRepo repository.UserRepository, tokens *TokenCodec, log *logrus.Logger) *AuthService {
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)

	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		log:       log,
		dummyHash: dummyHash,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User        *domain.User
	AccessToken string
	ExpiresAt   time.Time
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)

	if err := validateRegistration(name, email, input.Password); err != nil {
		return nil, err
	}

	// Check if email exists
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, domain.ErrDuplicateEmail
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageError("look up email", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration for the same email.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, storageError("create user", err)
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(input.Password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, storageError("look up email", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	accessToken, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user logged in")
	return &AuthResult{
		User:        user,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	}, nil
}

// Authenticate resolves a raw bearer token to the identity it was issued for.
// It does not touch storage; callers trust the returned id without further
// checks.
func (s *AuthService) Authenticate(rawToken string) (uuid.UUID, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return uuid.Nil, domain.ErrMissingToken
	}
	return s.tokens.Verify(rawToken)
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storageError("get user", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(name, email, password string) error {
	if name == "" {
		return domain.NewValidationError("name", "name is required")
	}
	if email == "" {
		return domain.NewValidationError("email", "email is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return domain.NewValidationError("email", "email is not a valid address")
	}
	if password == "" {
		return domain.NewValidationError("password", "password is required")
	}
	if len(password) > maxPasswordBytes {
		return domain.NewValidationError("password", "password must be at most 72 bytes")
	}
	return nil
}
