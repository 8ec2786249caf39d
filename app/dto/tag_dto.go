package dto

// CreateTagRequest represents the admin request to create a tag
type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Icon string `json:"icon" validate:"max=10"`
}

// UpdateTagRequest represents the admin request to update a tag.
// Nil fields are left unchanged.
type UpdateTagRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Icon *string `json:"icon,omitempty" validate:"omitempty,max=10"`
}

// TagDTO represents a tag in API responses
type TagDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Icon string `json:"icon"`
}

// TagResponse wraps a single tag with a message
type TagResponse struct {
	Message string `json:"message"`
	Tag     TagDTO `json:"tag"`
}

// ListTagsResponse represents the tag listing response
type ListTagsResponse struct {
	Message string   `json:"message"`
	Items   []TagDTO `json:"items"`
}
