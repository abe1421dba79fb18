package repository

import (
	"context"
	"time"

	"github.com/dom/bookshelf/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// BookRepository methods that address a single book take the owner as well as
// the book id. Implementations must apply both predicates in one statement and
// report a foreign book exactly like a missing one.
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Book, error)
	GetByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*domain.Book, error)
	UpdateForOwner(ctx context.Context, book *domain.Book) (int64, error)
	DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) (int64, error)
	// CountByOwner counts books created at or after since; a zero since counts all.
	CountByOwner(ctx context.Context, ownerID uuid.UUID, since time.Time) (int64, error)
}

type Repositories struct {
	User UserRepository
	Book BookRepository
}
