package postgres

import (
	"context"
	"time"

	"github.com/dom/bookshelf/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) *bookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *bookRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Book, error) {
	books := []*domain.Book{}
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) GetByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*domain.Book, error) {
	var book domain.Book
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// UpdateForOwner writes the mutable columns of book, matched on both id and
// owner. It returns the number of rows changed.
func (r *bookRepository) UpdateForOwner(ctx context.Context, book *domain.Book) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Book{}).
		Where("id = ? AND owner_id = ?", book.ID, book.OwnerID).
		Updates(map[string]interface{}{
			"title":       book.Title,
			"author":      book.Author,
			"description": book.Description,
			"isbn":        book.ISBN,
			"tags":        book.Tags,
			"updated_at":  book.UpdatedAt,
		})
	return result.RowsAffected, result.Error
}

func (r *bookRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&domain.Book{})
	return result.RowsAffected, result.Error
}

func (r *bookRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&domain.Book{}).
		Where("owner_id = ?", ownerID)
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
