// Package models contains domain entities and business models for the property management system
package models

import (
	"fmt"

	"gorm.io/gorm"
)

// enumDDL creates the Postgres enum types the models reference. Each
// statement is idempotent so Migrate can run against an existing schema.
var enumDDL = []string{
	`DO $$ BEGIN CREATE TYPE user_role_enum AS ENUM ('admin', 'user'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN CREATE TYPE property_type_enum AS ENUM ('house', 'apartment', 'condo', 'cabin', 'office', 'other'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN CREATE TYPE link_type_enum AS ENUM ('youtube', 'pdf', 'image', 'text', 'link'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN CREATE TYPE reaction_type_enum AS ENUM ('like', 'dislike', 'love', 'confused'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN CREATE TYPE access_request_status_enum AS ENUM ('pending', 'approved', 'denied', 'registered'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN CREATE TYPE access_request_source_enum AS ENUM ('admin_created', 'beta_waitlist', 'public_form', 'direct_request'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN CREATE TYPE audit_action_enum AS ENUM (
		'registration_completed', 'registration_failed',
		'login_success', 'login_failed', 'logout', 'token_refreshed',
		'access_requested', 'access_approved', 'access_denied', 'access_code_consumed',
		'approval_email_failed',
		'property_created', 'property_deleted', 'item_created', 'item_deleted',
		'session_created', 'session_expired'
	); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
}

// AllModels lists every persisted model in foreign-key order.
func AllModels() []any {
	return []any{
		&Account{},
		&User{},
		&UserSession{},
		&Property{},
		&Item{},
		&ItemResourceLink{},
		&ItemVisit{},
		&ItemReaction{},
		&AccessRequest{},
		&MailingListSubscriber{},
		&AuditLog{},
	}
}

// Migrate creates the enum types and brings the schema up to date.
func Migrate(db *gorm.DB) error {
	for _, ddl := range enumDDL {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("failed to create enum type: %w", err)
		}
	}

	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return nil
}
