package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Book is a catalog entry owned by exactly one user. OwnerID never changes
// after creation.
type Book struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title       string         `json:"title" gorm:"not null"`
	Author      string         `json:"author" gorm:"not null"`
	Description string         `json:"description" gorm:"type:text"`
	ISBN        string         `json:"isbn"`
	Tags        datatypes.JSON `json:"tags" gorm:"type:jsonb"`
	OwnerID     uuid.UUID      `json:"userId" gorm:"type:uuid;not null;index"`
	Owner       *User          `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// TagList decodes the stored tags. A missing or malformed column yields an
// empty list.
func (b *Book) TagList() []string {
	tags := []string{}
	if len(b.Tags) == 0 {
		return tags
	}
	if err := json.Unmarshal(b.Tags, &tags); err != nil {
		return []string{}
	}
	return tags
}

// SetTags encodes tags into the jsonb column.
func (b *Book) SetTags(tags []string) {
	if tags == nil {
		tags = []string{}
	}
	encoded, _ := json.Marshal(tags)
	b.Tags = datatypes.JSON(encoded)
}

// BookStats summarizes one owner's catalog.
type BookStats struct {
	TotalBooks    int64 `json:"totalBooks"`
	RecentlyAdded int64 `json:"recentlyAdded"`
}
