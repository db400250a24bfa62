// Package models contains domain entities and business models for the property management system
package models

import (
	"time"

	"github.com/google/uuid"
)

// Resource link type constants
const (
	LinkTypeYouTube = "youtube"
	LinkTypePDF     = "pdf"
	LinkTypeImage   = "image"
	LinkTypeText    = "text"
	LinkTypeLink    = "link"
)

// Item represents a QR-coded object inside a property.
// PublicID is the UUID embedded in the printed QR code and is the only
// identifier exposed on unauthenticated routes.
type Item struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PublicID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_items_public_id;index:idx_items_public_id" json:"public_id"`
	PropertyID uint      `gorm:"not null;index:idx_items_property_id" json:"property_id"`
	Property   Property  `gorm:"foreignKey:PropertyID;references:ID" json:"property,omitempty"`

	Name         string  `gorm:"size:100;not null" json:"name"`
	Description  *string `gorm:"type:text" json:"description,omitempty"`
	QRCodeURL    *string `gorm:"type:text" json:"qr_code_url,omitempty"`
	DisplayOrder int     `gorm:"default:0" json:"display_order"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_items_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	ResourceLinks []ItemResourceLink `gorm:"foreignKey:ItemID" json:"resource_links,omitempty"`
	Visits        []ItemVisit        `gorm:"foreignKey:ItemID" json:"-"`
	Reactions     []ItemReaction     `gorm:"foreignKey:ItemID" json:"-"`
}

func (Item) TableName() string {
	return "items"
}

// ItemResourceLink is a typed link (manual, video, ...) attached to an item.
type ItemResourceLink struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ItemID       uint      `gorm:"not null;index:idx_resource_links_item_id" json:"item_id"`
	LinkType     string    `gorm:"type:link_type_enum;not null" json:"link_type"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	URL          string    `gorm:"type:text;not null" json:"url"`
	ThumbnailURL *string   `gorm:"type:text" json:"thumbnail_url,omitempty"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	CreatedAt    time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (ItemResourceLink) TableName() string {
	return "item_resource_links"
}

// ItemFilter represents filter criteria for item queries
type ItemFilter struct {
	ID            *uint
	PublicID      *uuid.UUID
	PropertyID    *uint
	Name          *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func IsValidLinkType(t string) bool {
	switch t {
	case LinkTypeYouTube, LinkTypePDF, LinkTypeImage, LinkTypeText, LinkTypeLink:
		return true
	}
	return false
}
