package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ObjectStatus represents the moderation status of a cultural object
type ObjectStatus string

const (
	ObjectStatusPending  ObjectStatus = "pending"
	ObjectStatusApproved ObjectStatus = "approved"
	ObjectStatusArchived ObjectStatus = "archived"
)

// AllObjectStatuses lists every valid status; status never takes any other value
var AllObjectStatuses = []ObjectStatus{
	ObjectStatusPending,
	ObjectStatusApproved,
	ObjectStatusArchived,
}

// String returns the string representation of the status
func (s ObjectStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s ObjectStatus) Valid() bool {
	switch s {
	case ObjectStatusPending, ObjectStatusApproved, ObjectStatusArchived:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ObjectStatus
func (s *ObjectStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = ObjectStatus(v)
	case []byte:
		*s = ObjectStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ObjectStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ObjectStatus
func (s ObjectStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ObjectStatus: %s", s)
	}
	return string(s), nil
}

// objectTransitions is the admin moderation table. Creation (nothing -> pending)
// is handled by SubmitObject and is not part of this table.
var objectTransitions = map[ObjectStatus]map[ObjectStatus]string{
	ObjectStatusPending: {
		ObjectStatusApproved: "approve",
		ObjectStatusArchived: "reject",
	},
	ObjectStatusApproved: {
		ObjectStatusArchived: "retract",
	},
	ObjectStatusArchived: {
		ObjectStatusApproved: "reinstate",
		ObjectStatusPending:  "send-back-for-review",
	},
}

// CanTransitionTo checks if the object status can transition to the new status
func (s ObjectStatus) CanTransitionTo(target ObjectStatus) bool {
	_, ok := objectTransitions[s][target]
	return ok
}

// TransitionTrigger returns the trigger name of a (from, to) pair,
// or false when the pair is not in the moderation table
func (s ObjectStatus) TransitionTrigger(target ObjectStatus) (string, bool) {
	trigger, ok := objectTransitions[s][target]
	return trigger, ok
}

// CulturalObject represents a cultural heritage site with geographic coordinates
// Table: cultural_objects
// New objects start as 'pending'; the author never changes after creation.
// Coordinates are always present and validated against the configured region.
type CulturalObject struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uk_cultural_objects_uuid" json:"uuid"`
	Title       string       `gorm:"size:200;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Latitude    float64      `gorm:"not null" json:"latitude"`
	Longitude   float64      `gorm:"not null" json:"longitude"`
	AuthorID    uint         `gorm:"not null;index:idx_cultural_objects_author" json:"author_id"`
	Author      *User        `gorm:"foreignKey:AuthorID" json:"-"`
	Tags        []Tag        `gorm:"many2many:cultural_object_tags;" json:"tags"`
	Status      ObjectStatus `gorm:"size:20;not null;default:'pending';index:idx_cultural_objects_status" json:"status"`

	WikipediaURL    *string `gorm:"size:500" json:"wikipedia_url,omitempty"`
	OfficialWebsite *string `gorm:"size:500" json:"official_website,omitempty"`
	GoogleMapsURL   *string `gorm:"size:500" json:"google_maps_url,omitempty"`

	CreatedAt  time.Time  `gorm:"default:CURRENT_TIMESTAMP;index:idx_cultural_objects_created_at" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
}

func (CulturalObject) TableName() string { return "cultural_objects" }

// IsVisibleTo reports whether the object may be read by the given caller.
// Approved objects are public; pending and archived ones are visible to
// their author and to admins only.
func (o *CulturalObject) IsVisibleTo(callerID uint, role UserRole) bool {
	if o.Status == ObjectStatusApproved {
		return true
	}
	if role == RoleAdmin {
		return true
	}
	return role == RoleUser && o.AuthorID == callerID
}

// ObjectFilter represents filter criteria for cultural object queries
type ObjectFilter struct {
	ID       *uint
	UUID     *uuid.UUID
	AuthorID *uint
	Status   *ObjectStatus
	Title    *string

	// TagIDs matches objects carrying at least one of the given tags
	TagIDs []uint

	// Bounding box; all four must be set to take effect
	MinLatitude  *float64
	MaxLatitude  *float64
	MinLongitude *float64
	MaxLongitude *float64

	// VisibleToUserID widens a status=approved restriction to also include
	// the given author's own objects in any status
	VisibleToUserID *uint

	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
