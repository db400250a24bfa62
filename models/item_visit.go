// Package models contains domain entities and business models for the property management system
package models

import "time"

// ItemVisit records a single public lookup of an item (a QR scan or page view).
// SessionID is an anonymous browser session identifier, not a UserSession.
type ItemVisit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ItemID    uint      `gorm:"not null;index:idx_item_visits_item_id" json:"item_id"`
	SessionID *string   `gorm:"size:64;index:idx_item_visits_session_id" json:"session_id,omitempty"`
	IPAddress *string   `gorm:"size:64" json:"ip_address,omitempty"`
	UserAgent *string   `gorm:"type:text" json:"user_agent,omitempty"`
	Referrer  *string   `gorm:"type:text" json:"referrer,omitempty"`
	VisitedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_item_visits_visited_at" json:"visited_at"`
}

func (ItemVisit) TableName() string {
	return "item_visits"
}

// ItemVisitFilter represents filter criteria for visit queries
type ItemVisitFilter struct {
	ID            *uint
	ItemID        *uint
	SessionID     *string
	VisitedAfter  *time.Time
	VisitedBefore *time.Time
}
