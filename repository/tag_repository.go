package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/culturemap-ua/culturemap-api/models"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations
const uniqueViolation = "23505"

// ErrDuplicateTag is returned when a tag name or slug collides with an existing row
var ErrDuplicateTag = errors.New("tag already exists")

// isUniqueViolation recognizes unique index violations from the Postgres
// driver as well as drivers that translate to gorm.ErrDuplicatedKey
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// TagRepositoryImpl implements TagRepository interface
type TagRepositoryImpl struct {
	*BaseRepository[models.Tag, models.TagFilter]
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &TagRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Tag, models.TagFilter](db),
	}
}

// Save inserts a new tag, mapping unique violations to ErrDuplicateTag
// so label uniqueness is enforced at the storage boundary
func (r *TagRepositoryImpl) Save(ctx context.Context, tag *models.Tag) error {
	err := r.BaseRepository.Save(ctx, tag)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateTag
		}
		return err
	}
	return nil
}

// ByNameFold retrieves a tag by name, case-insensitively
func (r *TagRepositoryImpl) ByNameFold(ctx context.Context, name string) (*models.Tag, error) {
	db := r.getDB(ctx)
	var row models.Tag
	if err := db.Where("name_fold = ?", strings.ToLower(name)).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListByIDs retrieves tags for a list of IDs
func (r *TagRepositoryImpl) ListByIDs(ctx context.Context, ids []uint) ([]*models.Tag, error) {
	db := r.getDB(ctx)
	if len(ids) == 0 {
		return []*models.Tag{}, nil
	}
	var rows []*models.Tag
	if err := db.Model(&models.Tag{}).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists changes to an existing tag
func (r *TagRepositoryImpl) Update(ctx context.Context, tag *models.Tag) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Save(tag).Error
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateTag
		}
		return fmt.Errorf("failed to update tag: %w", err)
	}

	return nil
}

// Delete removes a tag and clears its object associations.
// Objects referencing the tag are never deleted.
func (r *TagRepositoryImpl) Delete(ctx context.Context, id uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Exec("DELETE FROM cultural_object_tags WHERE tag_id = ?", id).Error
	if err != nil {
		return fmt.Errorf("failed to detach tag %d: %w", id, err)
	}

	err = db.Delete(&models.Tag{}, id).Error
	if err != nil {
		return fmt.Errorf("failed to delete tag %d: %w", id, err)
	}

	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *TagRepositoryImpl) applyFilter(query *gorm.DB, filter models.TagFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Name != nil {
		query = query.Where("name_fold = ?", strings.ToLower(*filter.Name))
	}
	if filter.Slug != nil {
		query = query.Where("slug = ?", *filter.Slug)
	}
	if filter.CreatedByID != nil {
		query = query.Where("created_by_id = ?", *filter.CreatedByID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves tags based on filter criteria
func (r *TagRepositoryImpl) ByFilter(ctx context.Context, filter models.TagFilter, orderBy string, limit, offset int) ([]*models.Tag, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Tag{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "name ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Tag
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of tags matching the filter
func (r *TagRepositoryImpl) Count(ctx context.Context, filter models.TagFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Tag{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any tag matching the filter exists
func (r *TagRepositoryImpl) Exists(ctx context.Context, filter models.TagFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
