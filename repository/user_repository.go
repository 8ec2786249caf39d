package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/culturemap-ua/culturemap-api/models"
	"github.com/culturemap-ua/culturemap-api/utils"
	"gorm.io/gorm"
)

// UserRepositoryImpl implements UserRepository interface
type UserRepositoryImpl struct {
	*BaseRepository[models.User, models.UserFilter]
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{
		BaseRepository: NewBaseRepository[models.User, models.UserFilter](db),
	}
}

// ByUsername retrieves a user by username (exact match)
func (r *UserRepositoryImpl) ByUsername(ctx context.Context, username string) (*models.User, error) {
	db := r.getDB(ctx)
	var row models.User
	if err := db.Where("username = ?", username).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ByEmail retrieves a user by email (case-insensitive)
func (r *UserRepositoryImpl) ByEmail(ctx context.Context, email string) (*models.User, error) {
	db := r.getDB(ctx)
	var row models.User
	if err := db.Where("LOWER(email) = ?", strings.ToLower(email)).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// UpdateLastLogin stamps the user's last login time
func (r *UserRepositoryImpl) UpdateLastLogin(ctx context.Context, userID uint) error {
	db := r.getDB(ctx)
	return db.Model(&models.User{}).Where("id = ?", userID).
		Update("last_login_at", utils.UTCNow()).Error
}

// applyFilter applies filter criteria to a GORM query
func (r *UserRepositoryImpl) applyFilter(query *gorm.DB, filter models.UserFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Username != nil {
		query = query.Where("username = ?", *filter.Username)
	}
	if filter.Email != nil {
		query = query.Where("LOWER(email) = ?", strings.ToLower(*filter.Email))
	}
	if filter.Role != nil {
		query = query.Where("role = ?", filter.Role.String())
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves users based on filter criteria
func (r *UserRepositoryImpl) ByFilter(ctx context.Context, filter models.UserFilter, orderBy string, limit, offset int) ([]*models.User, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.User{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.User
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of users matching the filter
func (r *UserRepositoryImpl) Count(ctx context.Context, filter models.UserFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.User{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any user matching the filter exists
func (r *UserRepositoryImpl) Exists(ctx context.Context, filter models.UserFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
