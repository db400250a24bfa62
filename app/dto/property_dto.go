// Package dto contains Data Transfer Objects for API request and response structures
package dto

// CreatePropertyRequest represents the property creation form
type CreatePropertyRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Nickname     *string `json:"nickname,omitempty" validate:"omitempty,max=60"`
	Address      *string `json:"address,omitempty" validate:"omitempty,max=255"`
	PropertyType string  `json:"property_type" validate:"required,oneof=house apartment condo cabin office other"`
}

// UpdatePropertyRequest represents the property update form
type UpdatePropertyRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Nickname     *string `json:"nickname,omitempty" validate:"omitempty,max=60"`
	Address      *string `json:"address,omitempty" validate:"omitempty,max=255"`
	PropertyType *string `json:"property_type,omitempty" validate:"omitempty,oneof=house apartment condo cabin office other"`
}

// PropertyDTO represents a property for API responses
type PropertyDTO struct {
	ID           uint    `json:"id"`
	UUID         string  `json:"uuid"`
	Name         string  `json:"name"`
	Nickname     *string `json:"nickname,omitempty"`
	Address      *string `json:"address,omitempty"`
	PropertyType string  `json:"property_type"`
	ItemCount    int64   `json:"item_count"`
	CreatedAt    string  `json:"created_at"`
}

// PropertyResponse wraps a single property
type PropertyResponse struct {
	Message  string      `json:"message"`
	Property PropertyDTO `json:"property"`
}

// PropertyListRequest paginates the property list
type PropertyListRequest struct {
	Page     int `json:"page" query:"page" validate:"omitempty,min=1"`
	PageSize int `json:"page_size" query:"page_size" validate:"omitempty,min=1,max=100"`
}

// PropertyListResponse is the paginated property list
type PropertyListResponse struct {
	Message  string        `json:"message"`
	Items    []PropertyDTO `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}
