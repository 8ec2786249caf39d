package models

import (
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"
)

// Tag represents a category label attachable to cultural objects
// Table: tags
// Unique by case-folded name and by slug; created by admins only
type Tag struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	NameFold    string    `gorm:"size:100;not null;uniqueIndex:uk_tags_name_fold" json:"-"`
	Slug        string    `gorm:"size:100;not null;uniqueIndex:uk_tags_slug" json:"slug"`
	Icon        string    `gorm:"size:10" json:"icon"`
	CreatedByID *uint     `gorm:"index:idx_tags_created_by" json:"created_by_id,omitempty"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_tags_created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Tag) TableName() string { return "tags" }

// BeforeSave keeps NameFold in sync with Name on every write, so the
// unique index on the folded column rejects case-variant duplicate
// labels no matter which path wrote the row.
func (t *Tag) BeforeSave(tx *gorm.DB) error {
	t.NameFold = strings.ToLower(t.Name)
	return nil
}

// Slugify derives a URL-friendly slug from a tag name.
// Non-alphanumeric runs collapse to a single hyphen.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// TagFilter represents filter criteria for tag queries
type TagFilter struct {
	ID            *uint
	Name          *string
	Slug          *string
	CreatedByID   *uint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
