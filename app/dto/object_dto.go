package dto

// SubmitObjectRequest represents the request to submit a new cultural object
type SubmitObjectRequest struct {
	Title           string  `json:"title" validate:"required,max=200"`
	Description     string  `json:"description" validate:"max=5000"`
	Latitude        float64 `json:"latitude" validate:"required"`
	Longitude       float64 `json:"longitude" validate:"required"`
	TagIDs          []uint  `json:"tag_ids" validate:"required,min=1,max=5"`
	WikipediaURL    *string `json:"wikipedia_url,omitempty" validate:"omitempty,url,max=500"`
	OfficialWebsite *string `json:"official_website,omitempty" validate:"omitempty,url,max=500"`
	GoogleMapsURL   *string `json:"google_maps_url,omitempty" validate:"omitempty,url,max=500"`
}

// EditObjectRequest represents the request to edit an existing object.
// Nil fields are left unchanged.
type EditObjectRequest struct {
	Title           *string  `json:"title,omitempty" validate:"omitempty,max=200"`
	Description     *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	TagIDs          []uint   `json:"tag_ids,omitempty" validate:"omitempty,min=1,max=5"`
	WikipediaURL    *string  `json:"wikipedia_url,omitempty" validate:"omitempty,url,max=500"`
	OfficialWebsite *string  `json:"official_website,omitempty" validate:"omitempty,url,max=500"`
	GoogleMapsURL   *string  `json:"google_maps_url,omitempty" validate:"omitempty,url,max=500"`
}

// TransitionRequest represents an admin moderation transition
type TransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved archived"`
}

// ListObjectsRequest represents list filters for the map view
type ListObjectsRequest struct {
	TagIDs []uint `json:"tag_ids,omitempty"`

	// Bounding box; all four must be present to take effect
	MinLatitude  *float64 `json:"min_latitude,omitempty"`
	MaxLatitude  *float64 `json:"max_latitude,omitempty"`
	MinLongitude *float64 `json:"min_longitude,omitempty"`
	MaxLongitude *float64 `json:"max_longitude,omitempty"`

	// Admin-only status filter; ignored for other callers
	Status *string `json:"status,omitempty"`

	Page     uint `json:"page,omitempty"`
	PageSize uint `json:"page_size,omitempty"`
}

// ObjectDTO represents a cultural object in API responses
type ObjectDTO struct {
	ID              uint     `json:"id"`
	UUID            string   `json:"uuid"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	AuthorID        uint     `json:"author_id"`
	Status          string   `json:"status"`
	Tags            []TagDTO `json:"tags"`
	WikipediaURL    *string  `json:"wikipedia_url,omitempty"`
	OfficialWebsite *string  `json:"official_website,omitempty"`
	GoogleMapsURL   *string  `json:"google_maps_url,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
	ArchivedAt      *string  `json:"archived_at,omitempty"`
}

// ObjectResponse wraps a single object with a message
type ObjectResponse struct {
	Message string    `json:"message"`
	Object  ObjectDTO `json:"object"`
}

// ListObjectsResponse represents the map listing response
type ListObjectsResponse struct {
	Message string      `json:"message"`
	Items   []ObjectDTO `json:"items"`
	Total   int64       `json:"total"`
}
