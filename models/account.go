// Package models contains domain entities and business models for the property management system
package models

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UUID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_accounts_uuid" json:"uuid"`
	Name     string    `gorm:"size:100;not null" json:"name"`
	OwnerID  *uint     `gorm:"index:idx_accounts_owner_id" json:"owner_id,omitempty"`
	Owner    *User     `gorm:"foreignKey:OwnerID;references:ID" json:"owner,omitempty"`
	Settings []byte    `gorm:"type:jsonb" json:"settings,omitempty"`
	IsActive *bool     `gorm:"default:true;index:idx_accounts_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_accounts_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Users      []User     `gorm:"foreignKey:AccountID" json:"-"`
	Properties []Property `gorm:"foreignKey:AccountID" json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}

// AccountFilter represents filter criteria for account queries
type AccountFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Name          *string
	OwnerID       *uint
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
