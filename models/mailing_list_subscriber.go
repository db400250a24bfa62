// Package models contains domain entities and business models for the property management system
package models

import "time"

type MailingListSubscriber struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Email          string     `gorm:"size:255;not null;uniqueIndex:uk_mailing_list_email" json:"email"`
	Source         string     `gorm:"size:60;default:website" json:"source"`
	SubscribedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_mailing_list_subscribed_at" json:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at,omitempty"`
}

func (MailingListSubscriber) TableName() string {
	return "mailing_list_subscribers"
}

// MailingListSubscriberFilter represents filter criteria for subscriber queries
type MailingListSubscriberFilter struct {
	ID               *uint
	Email            *string
	Source           *string
	SubscribedAfter  *time.Time
	SubscribedBefore *time.Time
	IsSubscribed     *bool // Helper to filter currently subscribed addresses
}

func (s *MailingListSubscriber) IsSubscribed() bool {
	return s.UnsubscribedAt == nil
}
