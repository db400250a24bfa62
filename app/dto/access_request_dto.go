// Package dto contains Data Transfer Objects for API request and response structures
package dto

// AccessRequestCreateRequest is the public access request form. Source is
// fixed server-side depending on which endpoint received the request.
type AccessRequestCreateRequest struct {
	Email string  `json:"email" validate:"required,email,max=255"`
	Name  *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// AccessRequestCreateResponse acknowledges a submitted access request
type AccessRequestCreateResponse struct {
	Message   string `json:"message"`
	RequestID uint   `json:"request_id"`
	Status    string `json:"status"`
}

// AdminCreateAccessRequestRequest lets an admin enter a request directly,
// optionally approving it in the same call.
type AdminCreateAccessRequestRequest struct {
	Email       string  `json:"email" validate:"required,email,max=255"`
	Name        *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	AutoApprove bool    `json:"auto_approve"`
}

// AccessRequestDTO represents an access request for admin responses.
// AccessCode is only populated for approved requests.
type AccessRequestDTO struct {
	ID               uint    `json:"id"`
	RequesterEmail   string  `json:"requester_email"`
	RequesterName    *string `json:"requester_name,omitempty"`
	Status           string  `json:"status"`
	Source           string  `json:"source"`
	AccessCode       *string `json:"access_code,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	RequestDate      string  `json:"request_date"`
	ApprovalDate     *string `json:"approval_date,omitempty"`
	RegistrationDate *string `json:"registration_date,omitempty"`
}

// AccessRequestListRequest filters the admin request list
type AccessRequestListRequest struct {
	Status   *string `json:"status,omitempty" query:"status" validate:"omitempty,oneof=pending approved denied registered"`
	Source   *string `json:"source,omitempty" query:"source" validate:"omitempty,oneof=admin_created beta_waitlist public_form direct_request"`
	Page     int     `json:"page" query:"page" validate:"omitempty,min=1"`
	PageSize int     `json:"page_size" query:"page_size" validate:"omitempty,min=1,max=100"`
}

// AccessRequestListResponse is the paginated admin request list
type AccessRequestListResponse struct {
	Message  string             `json:"message"`
	Items    []AccessRequestDTO `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// AccessRequestDecisionRequest carries the optional admin notes for an
// approve or deny decision.
type AccessRequestDecisionRequest struct {
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// AccessRequestDecisionResponse reports the outcome of an admin decision
type AccessRequestDecisionResponse struct {
	Message string           `json:"message"`
	Request AccessRequestDTO `json:"request"`
}

// AccessRequestNotesRequest updates the admin notes on a request
type AccessRequestNotesRequest struct {
	Notes string `json:"notes" validate:"required,max=1000"`
}

// AccessRequestStatsResponse aggregates request counts per status
type AccessRequestStatsResponse struct {
	Message string           `json:"message"`
	Counts  map[string]int64 `json:"counts"`
}
