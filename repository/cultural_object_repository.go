package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/culturemap-ua/culturemap-api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CulturalObjectRepositoryImpl implements CulturalObjectRepository interface
type CulturalObjectRepositoryImpl struct {
	*BaseRepository[models.CulturalObject, models.ObjectFilter]
}

// NewCulturalObjectRepository creates a new cultural object repository
func NewCulturalObjectRepository(db *gorm.DB) CulturalObjectRepository {
	return &CulturalObjectRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CulturalObject, models.ObjectFilter](db),
	}
}

// ByID retrieves a cultural object with its tags preloaded
func (r *CulturalObjectRepositoryImpl) ByID(ctx context.Context, id uint) (*models.CulturalObject, error) {
	db := r.getDB(ctx)
	var row models.CulturalObject
	if err := db.Preload("Tags").Last(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ByUUID retrieves a cultural object by its public UUID
func (r *CulturalObjectRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.CulturalObject, error) {
	db := r.getDB(ctx)
	var row models.CulturalObject
	if err := db.Preload("Tags").Where("uuid = ?", id).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Update persists changes to an existing object (bumps updated_at)
func (r *CulturalObjectRepositoryImpl) Update(ctx context.Context, object *models.CulturalObject) error {
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

	// Omit associations; tag changes go through ReplaceTags
	err = db.Omit("Tags", "Author").Save(object).Error
	if err != nil {
		return fmt.Errorf("failed to update cultural object %d: %w", object.ID, err)
	}

	return nil
}

// ReplaceTags swaps the object's tag set for the given tags
func (r *CulturalObjectRepositoryImpl) ReplaceTags(ctx context.Context, object *models.CulturalObject, tags []models.Tag) error {
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

	err = db.Model(object).Association("Tags").Replace(tags)
	if err != nil {
		return fmt.Errorf("failed to replace tags on object %d: %w", object.ID, err)
	}
	object.Tags = tags

	return nil
}

// Delete hard-deletes an object and its tag associations
func (r *CulturalObjectRepositoryImpl) Delete(ctx context.Context, id uint) error {
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

	err = db.Exec("DELETE FROM cultural_object_tags WHERE cultural_object_id = ?", id).Error
	if err != nil {
		return fmt.Errorf("failed to detach tags from object %d: %w", id, err)
	}

	err = db.Delete(&models.CulturalObject{}, id).Error
	if err != nil {
		return fmt.Errorf("failed to delete cultural object %d: %w", id, err)
	}

	return nil
}

// applyFilter applies filter criteria to a GORM query.
// Visibility is part of the query itself: when VisibleToUserID is set the
// status restriction becomes (approved OR owned-by-user), so callers cannot
// bypass it by post-filtering.
func (r *CulturalObjectRepositoryImpl) applyFilter(query *gorm.DB, filter models.ObjectFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}

	if filter.VisibleToUserID != nil {
		if filter.Status != nil {
			query = query.Where("(status = ? AND (status = ? OR author_id = ?))",
				filter.Status.String(), models.ObjectStatusApproved.String(), *filter.VisibleToUserID)
		} else {
			query = query.Where("(status = ? OR author_id = ?)",
				models.ObjectStatusApproved.String(), *filter.VisibleToUserID)
		}
	} else if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}

	if filter.Title != nil {
		query = query.Where("title = ?", *filter.Title)
	}
	if len(filter.TagIDs) > 0 {
		query = query.Where(
			"id IN (SELECT cultural_object_id FROM cultural_object_tags WHERE tag_id IN ?)",
			filter.TagIDs)
	}
	if filter.MinLatitude != nil && filter.MaxLatitude != nil &&
		filter.MinLongitude != nil && filter.MaxLongitude != nil {
		query = query.Where("latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?",
			*filter.MinLatitude, *filter.MaxLatitude, *filter.MinLongitude, *filter.MaxLongitude)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves cultural objects based on filter criteria
func (r *CulturalObjectRepositoryImpl) ByFilter(ctx context.Context, filter models.ObjectFilter, orderBy string, limit, offset int) ([]*models.CulturalObject, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.CulturalObject{}).Preload("Tags")

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "created_at DESC, id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.CulturalObject
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of cultural objects matching the filter
func (r *CulturalObjectRepositoryImpl) Count(ctx context.Context, filter models.ObjectFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.CulturalObject{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any cultural object matching the filter exists
func (r *CulturalObjectRepositoryImpl) Exists(ctx context.Context, filter models.ObjectFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
