// Package models contains domain entities and business models for the property management system
package models

import "time"

// Access request status constants
const (
	AccessRequestStatusPending    = "pending"
	AccessRequestStatusApproved   = "approved"
	AccessRequestStatusDenied     = "denied"
	AccessRequestStatusRegistered = "registered"
)

// Access request source constants
const (
	AccessRequestSourceAdminCreated  = "admin_created"
	AccessRequestSourceBetaWaitlist  = "beta_waitlist"
	AccessRequestSourcePublicForm    = "public_form"
	AccessRequestSourceDirectRequest = "direct_request"
)

// AccessRequest represents a request for system access. It moves through
// pending -> approved -> registered, or pending -> denied (terminal).
// AccessCode is set exactly when the request is approved and is a one-time
// credential: consuming it flips the row to registered via a conditional
// update, so a code can be redeemed at most once.
type AccessRequest struct {
	ID             uint     `gorm:"primaryKey" json:"id"`
	RequesterEmail string   `gorm:"size:255;not null;index:idx_access_requests_email" json:"requester_email"`
	RequesterName  *string  `gorm:"size:255" json:"requester_name,omitempty"`
	AccountID      *uint    `gorm:"index:idx_access_requests_account_id" json:"account_id,omitempty"`
	Account        *Account `gorm:"foreignKey:AccountID;references:ID" json:"account,omitempty"`
	UserID         *uint    `gorm:"index:idx_access_requests_user_id" json:"user_id,omitempty"`

	Status     string  `gorm:"type:access_request_status_enum;default:pending;index:idx_access_requests_status" json:"status"`
	Source     string  `gorm:"type:access_request_source_enum;not null;index:idx_access_requests_source" json:"source"`
	AccessCode *string `gorm:"size:12;uniqueIndex:uk_access_requests_access_code" json:"access_code,omitempty"`
	Notes      *string `gorm:"type:text" json:"notes,omitempty"`

	RequestDate      time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_access_requests_request_date" json:"request_date"`
	ApprovalDate     *time.Time `json:"approval_date,omitempty"`
	RegistrationDate *time.Time `json:"registration_date,omitempty"`
	UpdatedAt        time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (AccessRequest) TableName() string {
	return "access_requests"
}

// AccessRequestFilter represents filter criteria for access request queries
type AccessRequestFilter struct {
	ID              *uint
	RequesterEmail  *string
	AccountID       *uint
	Status          *string
	Source          *string
	AccessCode      *string
	RequestedAfter  *time.Time
	RequestedBefore *time.Time
}

func (r *AccessRequest) IsPending() bool {
	return r.Status == AccessRequestStatusPending
}

func (r *AccessRequest) IsApproved() bool {
	return r.Status == AccessRequestStatusApproved
}

func (r *AccessRequest) IsRegistered() bool {
	return r.Status == AccessRequestStatusRegistered
}

func (r *AccessRequest) IsDenied() bool {
	return r.Status == AccessRequestStatusDenied
}

// IsLive reports whether the request still occupies its email slot:
// a denied or registered request does not block a new one.
func (r *AccessRequest) IsLive() bool {
	return r.IsPending() || r.IsApproved()
}

func IsValidAccessRequestSource(s string) bool {
	switch s {
	case AccessRequestSourceAdminCreated, AccessRequestSourceBetaWaitlist,
		AccessRequestSourcePublicForm, AccessRequestSourceDirectRequest:
		return true
	}
	return false
}

func IsValidAccessRequestStatus(s string) bool {
	switch s {
	case AccessRequestStatusPending, AccessRequestStatusApproved,
		AccessRequestStatusDenied, AccessRequestStatusRegistered:
		return true
	}
	return false
}
