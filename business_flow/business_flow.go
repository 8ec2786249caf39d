// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/culturemap-ua/culturemap-api/app/dto"
	"github.com/culturemap-ua/culturemap-api/models"
)

// Caller is the identity and role attached to an incoming request after
// authentication. Guests carry a zero UserID and RoleGuest.
type Caller struct {
	UserID uint
	Role   models.UserRole
}

// GuestCaller returns the unauthenticated default caller
func GuestCaller() Caller {
	return Caller{Role: models.RoleGuest}
}

// IsAuthenticated reports whether the caller is a registered user or admin
func (c Caller) IsAuthenticated() bool {
	return c.Role == models.RoleUser || c.Role == models.RoleAdmin
}

// IsAdmin reports whether the caller carries the admin role
func (c Caller) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// ClientMetadata holds client-related information for request tracking
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToObjectDTO converts a cultural object model to its API representation
func ToObjectDTO(o models.CulturalObject) dto.ObjectDTO {
	tags := make([]dto.TagDTO, 0, len(o.Tags))
	for _, t := range o.Tags {
		tags = append(tags, ToTagDTO(t))
	}

	d := dto.ObjectDTO{
		ID:              o.ID,
		UUID:            o.UUID.String(),
		Title:           o.Title,
		Description:     o.Description,
		Latitude:        o.Latitude,
		Longitude:       o.Longitude,
		AuthorID:        o.AuthorID,
		Status:          o.Status.String(),
		Tags:            tags,
		WikipediaURL:    o.WikipediaURL,
		OfficialWebsite: o.OfficialWebsite,
		GoogleMapsURL:   o.GoogleMapsURL,
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       o.UpdatedAt.Format(time.RFC3339),
	}
	if o.ArchivedAt != nil {
		archived := o.ArchivedAt.Format(time.RFC3339)
		d.ArchivedAt = &archived
	}

	return d
}

// ToTagDTO converts a tag model to its API representation
func ToTagDTO(t models.Tag) dto.TagDTO {
	return dto.TagDTO{
		ID:   t.ID,
		Name: t.Name,
		Slug: t.Slug,
		Icon: t.Icon,
	}
}

// ToAuthUserDTO converts a user model to AuthUserDTO for authentication responses
func ToAuthUserDTO(u models.User) dto.AuthUserDTO {
	return dto.AuthUserDTO{
		ID:        u.ID,
		UUID:      u.UUID.String(),
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role.String(),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}
