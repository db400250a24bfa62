// Package models contains domain entities and business models for the property management system
package models

import "time"

// Reaction type constants
const (
	ReactionTypeLike     = "like"
	ReactionTypeDislike  = "dislike"
	ReactionTypeLove     = "love"
	ReactionTypeConfused = "confused"
)

// ItemReaction records a single anonymous reaction on an item.
// A session can hold at most one reaction of each type per item.
type ItemReaction struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ItemID       uint      `gorm:"not null;index:idx_item_reactions_item_id;uniqueIndex:uk_item_reactions_item_session_type" json:"item_id"`
	SessionID    string    `gorm:"size:64;not null;uniqueIndex:uk_item_reactions_item_session_type" json:"session_id"`
	ReactionType string    `gorm:"type:reaction_type_enum;not null;uniqueIndex:uk_item_reactions_item_session_type" json:"reaction_type"`
	CreatedAt    time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_item_reactions_created_at" json:"created_at"`
}

func (ItemReaction) TableName() string {
	return "item_reactions"
}

// ItemReactionFilter represents filter criteria for reaction queries
type ItemReactionFilter struct {
	ID            *uint
	ItemID        *uint
	SessionID     *string
	ReactionType  *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func IsValidReactionType(t string) bool {
	switch t {
	case ReactionTypeLike, ReactionTypeDislike, ReactionTypeLove, ReactionTypeConfused:
		return true
	}
	return false
}
