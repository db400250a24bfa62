// Package dto contains Data Transfer Objects for API request and response structures
package dto

// ProfileResponse returns the authenticated user and their account
type ProfileResponse struct {
	Message string      `json:"message"`
	User    AuthUserDTO `json:"user"`
	Account *AccountDTO `json:"account,omitempty"`
}

// AccountDTO represents an account for admin responses
type AccountDTO struct {
	ID            uint    `json:"id"`
	UUID          string  `json:"uuid"`
	Name          string  `json:"name"`
	OwnerEmail    *string `json:"owner_email,omitempty"`
	IsActive      *bool   `json:"is_active"`
	PropertyCount int64   `json:"property_count"`
	CreatedAt     string  `json:"created_at"`
}

// AccountListRequest paginates the admin account list
type AccountListRequest struct {
	OnlyActive bool `json:"only_active" query:"only_active"`
	Page       int  `json:"page" query:"page" validate:"omitempty,min=1"`
	PageSize   int  `json:"page_size" query:"page_size" validate:"omitempty,min=1,max=100"`
}

// AccountListResponse is the paginated account list
type AccountListResponse struct {
	Message  string       `json:"message"`
	Items    []AccountDTO `json:"items"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}
