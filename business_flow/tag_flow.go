package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/culturemap-ua/culturemap-api/app/dto"
	"github.com/culturemap-ua/culturemap-api/app/services"
	"github.com/culturemap-ua/culturemap-api/models"
	"github.com/culturemap-ua/culturemap-api/repository"
	"github.com/culturemap-ua/culturemap-api/utils"
	"gorm.io/gorm"
)

// TagFlow handles the tag registry. Reading is open to everyone; the
// registry itself is curated by admins.
type TagFlow interface {
	ListTags(ctx context.Context) (*dto.ListTagsResponse, error)
	CreateTag(ctx context.Context, caller Caller, request *dto.CreateTagRequest) (*dto.TagResponse, error)
	UpdateTag(ctx context.Context, caller Caller, tagID uint, request *dto.UpdateTagRequest) (*dto.TagResponse, error)
	DeleteTag(ctx context.Context, caller Caller, tagID uint) error
}

// TagFlowImpl implements the tag registry business flow
type TagFlowImpl struct {
	tagRepo repository.TagRepository
	cache   services.ListingCache
	db      *gorm.DB
}

// NewTagFlow creates a new tag flow instance
func NewTagFlow(tagRepo repository.TagRepository, cache services.ListingCache, db *gorm.DB) TagFlow {
	return &TagFlowImpl{
		tagRepo: tagRepo,
		cache:   cache,
		db:      db,
	}
}

// ListTags returns every tag ordered by name
func (tf *TagFlowImpl) ListTags(ctx context.Context) (*dto.ListTagsResponse, error) {
	tags, err := tf.tagRepo.ByFilter(ctx, models.TagFilter{}, "", 0, 0)
	if err != nil {
		return nil, NewBusinessError("LIST_TAGS_FAILED", "Tag listing failed", err)
	}

	items := make([]dto.TagDTO, 0, len(tags))
	for _, t := range tags {
		items = append(items, ToTagDTO(*t))
	}

	return &dto.ListTagsResponse{
		Message: "Tags retrieved",
		Items:   items,
	}, nil
}

// CreateTag registers a new tag. Labels differing only by case collide.
func (tf *TagFlowImpl) CreateTag(ctx context.Context, caller Caller, request *dto.CreateTagRequest) (*dto.TagResponse, error) {
	if !caller.IsAdmin() {
		return nil, NewBusinessError("CREATE_TAG_FORBIDDEN", "Tag creation requires the admin role", ErrForbidden)
	}

	name := strings.TrimSpace(request.Name)
	if err := validateTagName(name); err != nil {
		return nil, NewBusinessError("CREATE_TAG_VALIDATION_FAILED", "Tag validation failed", err)
	}

	var tag *models.Tag

	err := repository.WithTransaction(ctx, tf.db, func(ctx context.Context) error {
		existing, err := tf.tagRepo.ByNameFold(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrTagConflict
		}

		tag = &models.Tag{
			Name:        name,
			Slug:        models.Slugify(name),
			Icon:        strings.TrimSpace(request.Icon),
			CreatedByID: utils.ToPtr(caller.UserID),
			CreatedAt:   utils.UTCNow(),
			UpdatedAt:   utils.UTCNow(),
		}

		if err := tf.tagRepo.Save(ctx, tag); err != nil {
			if errors.Is(err, repository.ErrDuplicateTag) {
				return ErrTagConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("CREATE_TAG_FAILED", "Tag creation failed", err)
	}

	return &dto.TagResponse{
		Message: "Tag created",
		Tag:     ToTagDTO(*tag),
	}, nil
}

// UpdateTag renames a tag or changes its icon
func (tf *TagFlowImpl) UpdateTag(ctx context.Context, caller Caller, tagID uint, request *dto.UpdateTagRequest) (*dto.TagResponse, error) {
	if !caller.IsAdmin() {
		return nil, NewBusinessError("UPDATE_TAG_FORBIDDEN", "Tag updates require the admin role", ErrForbidden)
	}

	var tag *models.Tag

	err := repository.WithTransaction(ctx, tf.db, func(ctx context.Context) error {
		var err error
		tag, err = tf.tagRepo.ByID(ctx, tagID)
		if err != nil {
			return err
		}
		if tag == nil {
			return ErrTagNotFound
		}

		if request.Name != nil {
			name := strings.TrimSpace(*request.Name)
			if err := validateTagName(name); err != nil {
				return err
			}
			existing, err := tf.tagRepo.ByNameFold(ctx, name)
			if err != nil {
				return err
			}
			if existing != nil && existing.ID != tag.ID {
				return ErrTagConflict
			}
			tag.Name = name
			tag.Slug = models.Slugify(name)
		}
		if request.Icon != nil {
			tag.Icon = strings.TrimSpace(*request.Icon)
		}
		tag.UpdatedAt = utils.UTCNow()

		if err := tf.tagRepo.Update(ctx, tag); err != nil {
			if errors.Is(err, repository.ErrDuplicateTag) {
				return ErrTagConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("UPDATE_TAG_FAILED", "Tag update failed", err)
	}

	_ = tf.cache.Invalidate(ctx)

	return &dto.TagResponse{
		Message: "Tag updated",
		Tag:     ToTagDTO(*tag),
	}, nil
}

// DeleteTag removes a tag from the registry. Objects carrying the tag lose
// the association and are otherwise untouched.
func (tf *TagFlowImpl) DeleteTag(ctx context.Context, caller Caller, tagID uint) error {
	if !caller.IsAdmin() {
		return NewBusinessError("DELETE_TAG_FORBIDDEN", "Tag deletion requires the admin role", ErrForbidden)
	}

	err := repository.WithTransaction(ctx, tf.db, func(ctx context.Context) error {
		tag, err := tf.tagRepo.ByID(ctx, tagID)
		if err != nil {
			return err
		}
		if tag == nil {
			return ErrTagNotFound
		}
		return tf.tagRepo.Delete(ctx, tag.ID)
	})
	if err != nil {
		return NewBusinessError("DELETE_TAG_FAILED", "Tag deletion failed", err)
	}

	_ = tf.cache.Invalidate(ctx)
	return nil
}

func validateTagName(name string) error {
	if name == "" {
		return NewValidationError("name", "name is required")
	}
	if len(name) > utils.MaxTagNameLen {
		return NewValidationError("name", fmt.Sprintf("name must be at most %d characters", utils.MaxTagNameLen))
	}
	return nil
}
