package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/culturemap-ua/culturemap-api/app/dto"
	"github.com/culturemap-ua/culturemap-api/app/services"
	"github.com/culturemap-ua/culturemap-api/config"
	"github.com/culturemap-ua/culturemap-api/models"
	"github.com/culturemap-ua/culturemap-api/repository"
	"github.com/culturemap-ua/culturemap-api/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ObjectFlow handles submission, editing and browsing of cultural objects
type ObjectFlow interface {
	SubmitObject(ctx context.Context, caller Caller, request *dto.SubmitObjectRequest, metadata *ClientMetadata) (*dto.ObjectResponse, error)
	EditObject(ctx context.Context, caller Caller, objectUUID uuid.UUID, request *dto.EditObjectRequest) (*dto.ObjectResponse, error)
	GetObject(ctx context.Context, caller Caller, objectUUID uuid.UUID) (*dto.ObjectResponse, error)
	ListObjects(ctx context.Context, caller Caller, request *dto.ListObjectsRequest) (*dto.ListObjectsResponse, error)
}

// ObjectFlowImpl implements the object business flow
type ObjectFlowImpl struct {
	objectRepo repository.CulturalObjectRepository
	tagRepo    repository.TagRepository
	cache      services.ListingCache
	bounds     config.RegionBounds
	db         *gorm.DB
}

// NewObjectFlow creates a new object flow instance
func NewObjectFlow(
	objectRepo repository.CulturalObjectRepository,
	tagRepo repository.TagRepository,
	cache services.ListingCache,
	bounds config.RegionBounds,
	db *gorm.DB,
) ObjectFlow {
	return &ObjectFlowImpl{
		objectRepo: objectRepo,
		tagRepo:    tagRepo,
		cache:      cache,
		bounds:     bounds,
		db:         db,
	}
}

// SubmitObject creates a new cultural object in pending status.
// Admin submissions go through review like everyone else's.
func (of *ObjectFlowImpl) SubmitObject(ctx context.Context, caller Caller, request *dto.SubmitObjectRequest, metadata *ClientMetadata) (*dto.ObjectResponse, error) {
	if !caller.IsAuthenticated() {
		return nil, NewBusinessError("SUBMIT_OBJECT_FORBIDDEN", "Submission requires an account", ErrForbidden)
	}

	if err := of.validateSubmitRequest(request); err != nil {
		return nil, NewBusinessError("SUBMIT_OBJECT_VALIDATION_FAILED", "Object validation failed", err)
	}

	var object *models.CulturalObject

	err := repository.WithTransaction(ctx, of.db, func(ctx context.Context) error {
		tags, err := of.resolveTags(ctx, request.TagIDs)
		if err != nil {
			return err
		}

		object = &models.CulturalObject{
			UUID:            uuid.New(),
			Title:           strings.TrimSpace(request.Title),
			Description:     strings.TrimSpace(request.Description),
			Latitude:        request.Latitude,
			Longitude:       request.Longitude,
			AuthorID:        caller.UserID,
			Tags:            tags,
			Status:          models.ObjectStatusPending,
			WikipediaURL:    request.WikipediaURL,
			OfficialWebsite: request.OfficialWebsite,
			GoogleMapsURL:   request.GoogleMapsURL,
			CreatedAt:       utils.UTCNow(),
			UpdatedAt:       utils.UTCNow(),
		}

		return of.objectRepo.Save(ctx, object)
	})
	if err != nil {
		return nil, NewBusinessError("SUBMIT_OBJECT_FAILED", "Object submission failed", err)
	}

	_ = of.cache.Invalidate(ctx)

	return &dto.ObjectResponse{
		Message: "Object submitted for review",
		Object:  ToObjectDTO(*object),
	}, nil
}

// EditObject updates an existing object. The author may edit while the
// object is pending; admins may edit in any state.
func (of *ObjectFlowImpl) EditObject(ctx context.Context, caller Caller, objectUUID uuid.UUID, request *dto.EditObjectRequest) (*dto.ObjectResponse, error) {
	if !caller.IsAuthenticated() {
		return nil, NewBusinessError("EDIT_OBJECT_FORBIDDEN", "Editing requires an account", ErrForbidden)
	}

	if err := of.validateEditRequest(request); err != nil {
		return nil, NewBusinessError("EDIT_OBJECT_VALIDATION_FAILED", "Object validation failed", err)
	}

	var object *models.CulturalObject

	err := repository.WithTransaction(ctx, of.db, func(ctx context.Context) error {
		var err error
		object, err = of.objectRepo.ByUUID(ctx, objectUUID)
		if err != nil {
			return err
		}
		if object == nil {
			return ErrObjectNotFound
		}

		if !caller.IsAdmin() {
			if object.AuthorID != caller.UserID {
				return ErrForbidden
			}
			if object.Status != models.ObjectStatusPending {
				return ErrForbidden
			}
		}

		if request.Title != nil {
			object.Title = strings.TrimSpace(*request.Title)
		}
		if request.Description != nil {
			object.Description = strings.TrimSpace(*request.Description)
		}
		if request.Latitude != nil {
			object.Latitude = *request.Latitude
		}
		if request.Longitude != nil {
			object.Longitude = *request.Longitude
		}
		if !of.bounds.Contains(object.Latitude, object.Longitude) {
			return NewValidationError("coordinates", fmt.Sprintf("coordinates must fall inside the supported region (lat %.1f..%.1f, lng %.1f..%.1f)",
				of.bounds.MinLatitude, of.bounds.MaxLatitude, of.bounds.MinLongitude, of.bounds.MaxLongitude))
		}
		if request.WikipediaURL != nil {
			object.WikipediaURL = request.WikipediaURL
		}
		if request.OfficialWebsite != nil {
			object.OfficialWebsite = request.OfficialWebsite
		}
		if request.GoogleMapsURL != nil {
			object.GoogleMapsURL = request.GoogleMapsURL
		}
		object.UpdatedAt = utils.UTCNow()

		if err := of.objectRepo.Update(ctx, object); err != nil {
			return err
		}

		if request.TagIDs != nil {
			tags, err := of.resolveTags(ctx, request.TagIDs)
			if err != nil {
				return err
			}
			if err := of.objectRepo.ReplaceTags(ctx, object, tags); err != nil {
				return err
			}
			object.Tags = tags
		}

		return nil
	})
	if err != nil {
		return nil, NewBusinessError("EDIT_OBJECT_FAILED", "Object edit failed", err)
	}

	_ = of.cache.Invalidate(ctx)

	return &dto.ObjectResponse{
		Message: "Object updated",
		Object:  ToObjectDTO(*object),
	}, nil
}

// GetObject reads a single object. Invisible objects are reported as not
// found rather than forbidden, so their existence leaks nothing.
func (of *ObjectFlowImpl) GetObject(ctx context.Context, caller Caller, objectUUID uuid.UUID) (*dto.ObjectResponse, error) {
	object, err := of.objectRepo.ByUUID(ctx, objectUUID)
	if err != nil {
		return nil, NewBusinessError("GET_OBJECT_FAILED", "Object lookup failed", err)
	}
	if object == nil || !object.IsVisibleTo(caller.UserID, caller.Role) {
		return nil, NewBusinessError("OBJECT_NOT_FOUND", "Object not found", ErrObjectNotFound)
	}

	return &dto.ObjectResponse{
		Message: "Object retrieved",
		Object:  ToObjectDTO(*object),
	}, nil
}

// ListObjects returns the map listing with visibility enforced inside the
// query. Guest results are cached by filter signature.
func (of *ObjectFlowImpl) ListObjects(ctx context.Context, caller Caller, request *dto.ListObjectsRequest) (*dto.ListObjectsResponse, error) {
	page, pageSize, err := normalizePagination(request.Page, request.PageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_OBJECTS_VALIDATION_FAILED", "Listing validation failed", err)
	}

	cacheable := caller.Role == models.RoleGuest
	cacheKey := ""
	if cacheable {
		cacheKey = listingCacheKey(request, page, pageSize)
		if payload, ok, err := of.cache.GetListing(ctx, cacheKey); err == nil && ok {
			var resp dto.ListObjectsResponse
			if err := json.Unmarshal(payload, &resp); err == nil {
				return &resp, nil
			}
		}
	}

	filter := models.ObjectFilter{
		TagIDs:       request.TagIDs,
		MinLatitude:  request.MinLatitude,
		MaxLatitude:  request.MaxLatitude,
		MinLongitude: request.MinLongitude,
		MaxLongitude: request.MaxLongitude,
	}

	switch {
	case caller.IsAdmin():
		// Admins see every status and may narrow by one
		if request.Status != nil {
			status := models.ObjectStatus(*request.Status)
			if !status.Valid() {
				return nil, NewBusinessError("LIST_OBJECTS_VALIDATION_FAILED", "Listing validation failed",
					NewValidationError("status", "status must be one of pending, approved, archived"))
			}
			filter.Status = &status
		}
	case caller.IsAuthenticated():
		// (status = 'approved' OR author_id = caller) inside the query
		filter.VisibleToUserID = utils.ToPtr(caller.UserID)
	default:
		approved := models.ObjectStatusApproved
		filter.Status = &approved
	}

	total, err := of.objectRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_OBJECTS_FAILED", "Listing failed", err)
	}

	objects, err := of.objectRepo.ByFilter(ctx, filter, "", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_OBJECTS_FAILED", "Listing failed", err)
	}

	items := make([]dto.ObjectDTO, 0, len(objects))
	for _, o := range objects {
		items = append(items, ToObjectDTO(*o))
	}

	resp := &dto.ListObjectsResponse{
		Message: "Objects retrieved",
		Items:   items,
		Total:   total,
	}

	if cacheable {
		if payload, err := json.Marshal(resp); err == nil {
			_ = of.cache.SetListing(ctx, cacheKey, payload)
		}
	}

	return resp, nil
}

// resolveTags loads and validates the tag set for a create or edit
func (of *ObjectFlowImpl) resolveTags(ctx context.Context, tagIDs []uint) ([]models.Tag, error) {
	if len(tagIDs) < utils.MinObjectTags || len(tagIDs) > utils.MaxObjectTags {
		return nil, NewValidationError("tag_ids", fmt.Sprintf("objects carry between %d and %d tags", utils.MinObjectTags, utils.MaxObjectTags))
	}

	seen := make(map[uint]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, dup := seen[id]; dup {
			return nil, NewValidationError("tag_ids", "duplicate tag")
		}
		seen[id] = struct{}{}
	}

	found, err := of.tagRepo.ListByIDs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	if len(found) != len(tagIDs) {
		return nil, ErrTagNotFound
	}

	tags := make([]models.Tag, 0, len(found))
	for _, t := range found {
		tags = append(tags, *t)
	}
	return tags, nil
}

func (of *ObjectFlowImpl) validateSubmitRequest(request *dto.SubmitObjectRequest) error {
	title := strings.TrimSpace(request.Title)
	if title == "" {
		return NewValidationError("title", "title is required")
	}
	if len(title) > utils.MaxTitleLen {
		return NewValidationError("title", fmt.Sprintf("title must be at most %d characters", utils.MaxTitleLen))
	}
	if !of.bounds.Contains(request.Latitude, request.Longitude) {
		return NewValidationError("coordinates", fmt.Sprintf("coordinates must fall inside the supported region (lat %.1f..%.1f, lng %.1f..%.1f)",
			of.bounds.MinLatitude, of.bounds.MaxLatitude, of.bounds.MinLongitude, of.bounds.MaxLongitude))
	}
	return nil
}

func (of *ObjectFlowImpl) validateEditRequest(request *dto.EditObjectRequest) error {
	if request.Title != nil {
		title := strings.TrimSpace(*request.Title)
		if title == "" {
			return NewValidationError("title", "title must not be empty")
		}
		if len(title) > utils.MaxTitleLen {
			return NewValidationError("title", fmt.Sprintf("title must be at most %d characters", utils.MaxTitleLen))
		}
	}
	if (request.Latitude == nil) != (request.Longitude == nil) {
		return NewValidationError("coordinates", "latitude and longitude must be updated together")
	}
	return nil
}

// normalizePagination applies listing defaults and caps
func normalizePagination(page, pageSize uint) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = utils.DefaultPageSize
	}
	if pageSize > utils.MaxPageSize {
		return 0, 0, ErrInvalidPageSize
	}
	return int(page), int(pageSize), nil
}

// listingCacheKey derives a stable signature for a guest listing request
func listingCacheKey(request *dto.ListObjectsRequest, page, pageSize int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "p=%d:s=%d", page, pageSize)
	for _, id := range request.TagIDs {
		fmt.Fprintf(&b, ":t=%d", id)
	}
	if request.MinLatitude != nil && request.MaxLatitude != nil &&
		request.MinLongitude != nil && request.MaxLongitude != nil {
		fmt.Fprintf(&b, ":bb=%.5f,%.5f,%.5f,%.5f",
			*request.MinLatitude, *request.MaxLatitude, *request.MinLongitude, *request.MaxLongitude)
	}
	return b.String()
}
