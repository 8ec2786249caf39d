package businessflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/culturemap-ua/culturemap-api/app/dto"
	"github.com/culturemap-ua/culturemap-api/app/services"
	"github.com/culturemap-ua/culturemap-api/models"
	"github.com/culturemap-ua/culturemap-api/repository"
	"github.com/culturemap-ua/culturemap-api/utils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var moderationTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "culturemap_moderation_transitions_total",
		Help: "Moderation transitions applied, labeled by trigger name",
	},
	[]string{"trigger"},
)

// ModerationFlow handles admin review of cultural objects
type ModerationFlow interface {
	Transition(ctx context.Context, caller Caller, objectUUID uuid.UUID, target models.ObjectStatus) (*dto.ObjectResponse, error)
	DeleteObject(ctx context.Context, caller Caller, objectUUID uuid.UUID) error
	ExportObjectsExcel(ctx context.Context, caller Caller) (string, []byte, error)
}

// ModerationFlowImpl implements the moderation business flow
type ModerationFlowImpl struct {
	objectRepo repository.CulturalObjectRepository
	cache      services.ListingCache
	hardDelete bool
	db         *gorm.DB
}

// NewModerationFlow creates a new moderation flow instance
func NewModerationFlow(
	objectRepo repository.CulturalObjectRepository,
	cache services.ListingCache,
	hardDelete bool,
	db *gorm.DB,
) ModerationFlow {
	return &ModerationFlowImpl{
		objectRepo: objectRepo,
		cache:      cache,
		hardDelete: hardDelete,
		db:         db,
	}
}

// Transition moves an object to a new moderation status. The pair must be in
// the transition table; anything else is rejected with the current and
// requested states attached.
func (mf *ModerationFlowImpl) Transition(ctx context.Context, caller Caller, objectUUID uuid.UUID, target models.ObjectStatus) (*dto.ObjectResponse, error) {
	if !caller.IsAdmin() {
		return nil, NewBusinessError("TRANSITION_FORBIDDEN", "Moderation requires the admin role", ErrForbidden)
	}
	if !target.Valid() {
		return nil, NewBusinessError("TRANSITION_VALIDATION_FAILED", "Transition validation failed",
			NewValidationError("status", "status must be one of pending, approved, archived"))
	}

	var object *models.CulturalObject
	var trigger string

	err := repository.WithTransaction(ctx, mf.db, func(ctx context.Context) error {
		var err error
		object, err = mf.objectRepo.ByUUID(ctx, objectUUID)
		if err != nil {
			return err
		}
		if object == nil {
			return ErrObjectNotFound
		}

		var ok bool
		trigger, ok = object.Status.TransitionTrigger(target)
		if !ok {
			return NewInvalidTransitionError(object.Status, target)
		}

		object.Status = target
		if target == models.ObjectStatusArchived {
			object.ArchivedAt = utils.UTCNowPtr()
		} else {
			object.ArchivedAt = nil
		}
		object.UpdatedAt = utils.UTCNow()

		return mf.objectRepo.Update(ctx, object)
	})
	if err != nil {
		return nil, NewBusinessError("TRANSITION_FAILED", "Moderation transition failed", err)
	}

	moderationTransitionsTotal.WithLabelValues(trigger).Inc()
	_ = mf.cache.Invalidate(ctx)

	return &dto.ObjectResponse{
		Message: fmt.Sprintf("Transition applied: %s", trigger),
		Object:  ToObjectDTO(*object),
	}, nil
}

// DeleteObject removes an object from circulation. The default policy is a
// soft archive; a real DELETE happens only when configured.
func (mf *ModerationFlowImpl) DeleteObject(ctx context.Context, caller Caller, objectUUID uuid.UUID) error {
	if !caller.IsAdmin() {
		return NewBusinessError("DELETE_OBJECT_FORBIDDEN", "Deletion requires the admin role", ErrForbidden)
	}

	err := repository.WithTransaction(ctx, mf.db, func(ctx context.Context) error {
		object, err := mf.objectRepo.ByUUID(ctx, objectUUID)
		if err != nil {
			return err
		}
		if object == nil {
			return ErrObjectNotFound
		}

		if mf.hardDelete {
			return mf.objectRepo.Delete(ctx, object.ID)
		}

		if object.Status == models.ObjectStatusArchived {
			return nil
		}
		object.Status = models.ObjectStatusArchived
		object.ArchivedAt = utils.UTCNowPtr()
		object.UpdatedAt = utils.UTCNow()
		return mf.objectRepo.Update(ctx, object)
	})
	if err != nil {
		return NewBusinessError("DELETE_OBJECT_FAILED", "Object deletion failed", err)
	}

	_ = mf.cache.Invalidate(ctx)
	return nil
}

// ExportObjectsExcel builds an xlsx workbook of every object for admin review
func (mf *ModerationFlowImpl) ExportObjectsExcel(ctx context.Context, caller Caller) (string, []byte, error) {
	if !caller.IsAdmin() {
		return "", nil, NewBusinessError("EXPORT_FORBIDDEN", "Export requires the admin role", ErrForbidden)
	}

	objects, err := mf.objectRepo.ByFilter(ctx, models.ObjectFilter{}, "id ASC", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to fetch objects for export", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "objects"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"id", "uuid", "title", "status", "latitude", "longitude", "author_id", "tags", "created_at", "updated_at", "archived_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for i, o := range objects {
		tagNames := make([]string, 0, len(o.Tags))
		for _, t := range o.Tags {
			tagNames = append(tagNames, t.Name)
		}
		archivedAt := ""
		if o.ArchivedAt != nil {
			archivedAt = o.ArchivedAt.UTC().Format(time.RFC3339)
		}

		record := []any{
			o.ID,
			o.UUID.String(),
			o.Title,
			o.Status.String(),
			o.Latitude,
			o.Longitude,
			o.AuthorID,
			strings.Join(tagNames, ", "),
			o.CreatedAt.UTC().Format(time.RFC3339),
			o.UpdatedAt.UTC().Format(time.RFC3339),
			archivedAt,
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	return "cultural_objects.xlsx", buf.Bytes(), nil
}
