package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dom/bookshelf/internal/domain"
	"github.com/dom/bookshelf/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RecentWindow is how far back Stats counts a book as recently added.
const RecentWindow = 7 * 24 * time.Hour

// BookService is the only path to the book store. Every method takes the
// caller's identity and scopes the query to it; a book owned by someone else
// is reported as ErrNotFound.
type BookService struct {
	bookRepo repository.BookRepository
	log      *logrus.Logger
}

func NewBookService(bookRepo repository.BookRepository, log *logrus.Logger) *BookService {
	return &BookService{
		bookRepo: bookRepo,
		log:      log,
	}
}

type CreateBookInput struct {
	Title       string
	Author      string
	Description string
	ISBN        string
	Tags        []string
}

// UpdateBookInput holds optional changes; nil fields are left untouched.
type UpdateBookInput struct {
	Title       *string
	Author      *string
	Description *string
	ISBN        *string
	Tags        *[]string
}

func (s *BookService) Create(ctx context.Context, ownerID uuid.UUID, input CreateBookInput) (*domain.Book, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.NewValidationError("title", "title is required")
	}
	author := strings.TrimSpace(input.Author)
	if author == "" {
		return nil, domain.NewValidationError("author", "author is required")
	}

	now := timestamp()
	book := &domain.Book{
		ID:          uuid.New(),
		Title:       title,
		Author:      author,
		Description: input.Description,
		ISBN:        strings.TrimSpace(input.ISBN),
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	book.SetTags(normalizeTags(input.Tags))

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, storageError("create book", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": ownerID, "book_id": book.ID}).Debug("book created")
	return book, nil
}

func (s *BookService) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Book, error) {
	books, err := s.bookRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, storageError("list books", err)
	}
	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

func (s *BookService) Get(ctx context.Context, ownerID, bookID uuid.UUID) (*domain.Book, error) {
	book, err := s.bookRepo.GetByIDForOwner(ctx, ownerID, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, storageError("get book", err)
	}
	return book, nil
}

func (s *BookService) Update(ctx context.Context, ownerID, bookID uuid.UUID, input UpdateBookInput) (*domain.Book, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, domain.NewValidationError("title", "title cannot be empty")
	}
	if input.Author != nil && strings.TrimSpace(*input.Author) == "" {
		return nil, domain.NewValidationError("author", "author cannot be empty")
	}

	book, err := s.Get(ctx, ownerID, bookID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		book.Title = strings.TrimSpace(*input.Title)
	}
	if input.Author != nil {
		book.Author = strings.TrimSpace(*input.Author)
	}
	if input.Description != nil {
		book.Description = *input.Description
	}
	if input.ISBN != nil {
		book.ISBN = strings.TrimSpace(*input.ISBN)
	}
	if input.Tags != nil {
		book.SetTags(normalizeTags(*input.Tags))
	}

	now := timestamp()
	if now.Before(book.CreatedAt) {
		now = book.CreatedAt
	}
	book.UpdatedAt = now

	rows, err := s.bookRepo.UpdateForOwner(ctx, book)
	if err != nil {
		return nil, storageError("update book", err)
	}
	// Deleted between the read and the write.
	if rows == 0 {
		return nil, domain.ErrNotFound
	}

	return book, nil
}

func (s *BookService) Delete(ctx context.Context, ownerID, bookID uuid.UUID) error {
	rows, err := s.bookRepo.DeleteForOwner(ctx, ownerID, bookID)
	if err != nil {
		return storageError("delete book", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	s.log.WithFields(logrus.Fields{"user_id": ownerID, "book_id": bookID}).Debug("book deleted")
	return nil
}

func (s *BookService) Stats(ctx context.Context, ownerID uuid.UUID) (*domain.BookStats, error) {
	total, err := s.bookRepo.CountByOwner(ctx, ownerID, time.Time{})
	if err != nil {
		return nil, storageError("count books", err)
	}

	recent, err := s.bookRepo.CountByOwner(ctx, ownerID, timestamp().Add(-RecentWindow))
	if err != nil {
		return nil, storageError("count recent books", err)
	}

	return &domain.BookStats{
		TotalBooks:    total,
		RecentlyAdded: recent,
	}, nil
}

// timestamp matches Postgres' microsecond precision so values returned to the
// caller equal what was stored.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
