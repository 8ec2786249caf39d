// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/culturemap-ua/culturemap-api/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// UserRepository defines operations for registered users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByUsername(ctx context.Context, username string) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID uint) error
}

// TagRepository defines operations for tags
type TagRepository interface {
	Repository[models.Tag, models.TagFilter]
	ByNameFold(ctx context.Context, name string) (*models.Tag, error)
	ListByIDs(ctx context.Context, ids []uint) ([]*models.Tag, error)
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id uint) error
}

// CulturalObjectRepository defines operations for cultural objects
type CulturalObjectRepository interface {
	Repository[models.CulturalObject, models.ObjectFilter]
	ByUUID(ctx context.Context, id uuid.UUID) (*models.CulturalObject, error)
	Update(ctx context.Context, object *models.CulturalObject) error
	ReplaceTags(ctx context.Context, object *models.CulturalObject, tags []models.Tag) error
	Delete(ctx context.Context, id uint) error
}
