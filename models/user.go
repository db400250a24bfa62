// Package models contains domain entities and business models for the property management system
package models

import (
	"time"

	"github.com/google/uuid"
)

// User role constants
const (
	UserRoleAdmin = "admin"
	UserRoleUser  = "user"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`
	AccountID *uint     `gorm:"index:idx_users_account_id" json:"account_id,omitempty"`
	Account   *Account  `gorm:"foreignKey:AccountID;references:ID" json:"account,omitempty"`

	Email        string `gorm:"size:255;not null;uniqueIndex:uk_users_email" json:"email"`
	FullName     string `gorm:"size:255;not null" json:"full_name"`
	PasswordHash string `gorm:"size:255;not null" json:"-"` // Never serialize password hash
	Role         string `gorm:"type:user_role_enum;default:user;index:idx_users_role" json:"role"`

	IsActive        *bool `gorm:"default:true;index:idx_users_is_active" json:"is_active"`
	IsEmailVerified *bool `gorm:"default:false" json:"is_email_verified"`

	CreatedAt       time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_users_created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	LastLoginAt     *time.Time `gorm:"index:idx_users_last_login_at" json:"last_login_at,omitempty"`

	// Relations
	Sessions  []UserSession `gorm:"foreignKey:UserID" json:"-"`
	AuditLogs []AuditLog    `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID              *uint
	UUID            *uuid.UUID
	AccountID       *uint
	Email           *string
	Role            *string
	IsActive        *bool
	IsEmailVerified *bool
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
	LastLoginAfter  *time.Time
	LastLoginBefore *time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
