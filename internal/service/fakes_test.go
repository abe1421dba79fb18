package service_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/dom/bookshelf/internal/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const testSecret = "test-jwt-secret-key-for-testing-only"

var errStoreDown = errors.New("connection refused")

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeUserRepo mimics the postgres user repository, including the unique
// email index.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
	err   error
	// skipLookup hides existing users from GetByEmail to simulate a
	// registration race that only the unique index catches.
	skipLookup bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.skipLookup {
		return nil, gorm.ErrRecordNotFound
	}
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// fakeBookRepo mimics the postgres book repository's owner scoping.
type fakeBookRepo struct {
	mu    sync.Mutex
	books map[uuid.UUID]domain.Book
	err   error
	// beforeUpdate runs inside UpdateForOwner before the row is matched.
	beforeUpdate func(id uuid.UUID)
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: make(map[uuid.UUID]domain.Book)}
}

func (r *fakeBookRepo) Create(ctx context.Context, book *domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.books[book.ID] = *book
	return nil
}

func (r *fakeBookRepo) GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	books := []*domain.Book{}
	for _, b := range r.books {
		if b.OwnerID == ownerID {
			b := b
			books = append(books, &b)
		}
	}
	sort.Slice(books, func(i, j int) bool {
		return books[i].CreatedAt.After(books[j].CreatedAt)
	})
	return books, nil
}

func (r *fakeBookRepo) GetByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	b, ok := r.books[id]
	if !ok || b.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (r *fakeBookRepo) UpdateForOwner(ctx context.Context, book *domain.Book) (int64, error) {
	if r.beforeUpdate != nil {
		r.beforeUpdate(book.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	existing, ok := r.books[book.ID]
	if !ok || existing.OwnerID != book.OwnerID {
		return 0, nil
	}
	existing.Title = book.Title
	existing.Author = book.Author
	existing.Description = book.Description
	existing.ISBN = book.ISBN
	existing.Tags = book.Tags
	existing.UpdatedAt = book.UpdatedAt
	r.books[book.ID] = existing
	return 1, nil
}

func (r *fakeBookRepo) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	b, ok := r.books[id]
	if !ok || b.OwnerID != ownerID {
		return 0, nil
	}
	delete(r.books, id)
	return 1, nil
}

func (r *fakeBookRepo) CountByOwner(ctx context.Context, ownerID uuid.UUID, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var count int64
	for _, b := range r.books {
		if b.OwnerID == ownerID && !b.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// insert stores a book directly, bypassing the service.
func (r *fakeBookRepo) insert(book domain.Book) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.books[book.ID] = book
}
