// Package models contains domain entities and business models for the property management system
package models

import (
	"time"

	"github.com/google/uuid"
)

// Property type constants
const (
	PropertyTypeHouse     = "house"
	PropertyTypeApartment = "apartment"
	PropertyTypeCondo     = "condo"
	PropertyTypeCabin     = "cabin"
	PropertyTypeOffice    = "office"
	PropertyTypeOther     = "other"
)

type Property struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_properties_uuid" json:"uuid"`
	AccountID uint      `gorm:"not null;index:idx_properties_account_id" json:"account_id"`
	Account   Account   `gorm:"foreignKey:AccountID;references:ID" json:"account,omitempty"`

	Name         string  `gorm:"size:100;not null" json:"name"`
	Nickname     *string `gorm:"size:60" json:"nickname,omitempty"`
	Address      *string `gorm:"size:255" json:"address,omitempty"`
	PropertyType string  `gorm:"type:property_type_enum;default:other;index:idx_properties_type" json:"property_type"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_properties_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Items []Item `gorm:"foreignKey:PropertyID" json:"items,omitempty"`
}

func (Property) TableName() string {
	return "properties"
}

// PropertyFilter represents filter criteria for property queries
type PropertyFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	AccountID     *uint
	Name          *string
	PropertyType  *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func IsValidPropertyType(t string) bool {
	switch t {
	case PropertyTypeHouse, PropertyTypeApartment, PropertyTypeCondo,
		PropertyTypeCabin, PropertyTypeOffice, PropertyTypeOther:
		return true
	}
	return false
}
