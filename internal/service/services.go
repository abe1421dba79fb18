package service

import (
	"fmt"

	"github.com/dom/bookshelf/internal/config"
	"github.com/dom/bookshelf/internal/domain"
	"github.com/dom/bookshelf/internal/repository"
	"github.com/sirupsen/logrus"
)

type Services struct {
	Auth *AuthService
	Book *BookService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, log *logrus.Logger) *Services {
	tokens := NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL())

	return &Services{
		Auth: NewAuthService(repos.User, tokens, log),
		Book: NewBookService(repos.Book, log),
	}
}

// storageError marks an unexpected repository failure. The original error is
// kept in the chain for logging but is never shown to clients.
func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}
