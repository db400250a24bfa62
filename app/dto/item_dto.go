// Package dto contains Data Transfer Objects for API request and response structures
package dto

// ResourceLinkInput represents one resource link in an item create/update form
type ResourceLinkInput struct {
	LinkType     string  `json:"link_type" validate:"required,oneof=youtube pdf image text link"`
	Title        string  `json:"title" validate:"required,max=255"`
	URL          string  `json:"url" validate:"required,url,max=2000"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty" validate:"omitempty,url,max=2000"`
	DisplayOrder int     `json:"display_order" validate:"omitempty,min=0"`
}

// CreateItemRequest represents the item creation form
type CreateItemRequest struct {
	Name          string              `json:"name" validate:"required,max=100"`
	Description   *string             `json:"description,omitempty" validate:"omitempty,max=5000"`
	DisplayOrder  int                 `json:"display_order" validate:"omitempty,min=0"`
	ResourceLinks []ResourceLinkInput `json:"resource_links,omitempty" validate:"omitempty,dive"`
}

// UpdateItemRequest represents the item update form. A non-nil ResourceLinks
// replaces the full link set.
type UpdateItemRequest struct {
	Name          *string              `json:"name,omitempty" validate:"omitempty,max=100"`
	Description   *string              `json:"description,omitempty" validate:"omitempty,max=5000"`
	DisplayOrder  *int                 `json:"display_order,omitempty" validate:"omitempty,min=0"`
	ResourceLinks *[]ResourceLinkInput `json:"resource_links,omitempty" validate:"omitempty,dive"`
}

// ResourceLinkDTO represents a resource link for API responses
type ResourceLinkDTO struct {
	ID           uint    `json:"id"`
	LinkType     string  `json:"link_type"`
	Title        string  `json:"title"`
	URL          string  `json:"url"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
	DisplayOrder int     `json:"display_order"`
}

// ItemDTO represents an item for API responses
type ItemDTO struct {
	ID            uint              `json:"id"`
	PublicID      string            `json:"public_id"`
	PropertyID    uint              `json:"property_id"`
	Name          string            `json:"name"`
	Description   *string           `json:"description,omitempty"`
	QRCodeURL     *string           `json:"qr_code_url,omitempty"`
	DisplayOrder  int               `json:"display_order"`
	ResourceLinks []ResourceLinkDTO `json:"resource_links,omitempty"`
	CreatedAt     string            `json:"created_at"`
}

// ItemResponse wraps a single item
type ItemResponse struct {
	Message string  `json:"message"`
	Item    ItemDTO `json:"item"`
}

// ItemListResponse lists a property's items
type ItemListResponse struct {
	Message string    `json:"message"`
	Items   []ItemDTO `json:"items"`
}

// PublicItemResponse is the unauthenticated item view behind a QR scan.
// It deliberately exposes nothing about the owning property or account
// beyond the item content itself.
type PublicItemResponse struct {
	PublicID      string            `json:"public_id"`
	Name          string            `json:"name"`
	Description   *string           `json:"description,omitempty"`
	ResourceLinks []ResourceLinkDTO `json:"resource_links,omitempty"`
	Reactions     map[string]int64  `json:"reactions"`
}

// ReactionRequest toggles an anonymous reaction on a public item
type ReactionRequest struct {
	SessionID    string `json:"session_id" validate:"required,max=64"`
	ReactionType string `json:"reaction_type" validate:"required,oneof=like dislike love confused"`
}

// ReactionResponse returns the updated reaction counts
type ReactionResponse struct {
	Message   string           `json:"message"`
	Reactions map[string]int64 `json:"reactions"`
}
