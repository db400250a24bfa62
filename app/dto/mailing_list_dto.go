// Package dto contains Data Transfer Objects for API request and response structures
package dto

// SubscribeRequest joins the mailing list
type SubscribeRequest struct {
	Email  string  `json:"email" validate:"required,email,max=255"`
	Source *string `json:"source,omitempty" validate:"omitempty,max=60"`
}

// SubscribeResponse acknowledges a subscription
type SubscribeResponse struct {
	Message    string `json:"message"`
	Subscribed bool   `json:"subscribed"`
}

// UnsubscribeRequest leaves the mailing list
type UnsubscribeRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// UnsubscribeResponse acknowledges an unsubscription
type UnsubscribeResponse struct {
	Message string `json:"message"`
}

// SubscriberDTO represents a mailing list subscriber for admin responses
type SubscriberDTO struct {
	ID             uint    `json:"id"`
	Email          string  `json:"email"`
	Source         string  `json:"source"`
	SubscribedAt   string  `json:"subscribed_at"`
	UnsubscribedAt *string `json:"unsubscribed_at,omitempty"`
}

// SubscriberListRequest paginates the admin subscriber list
type SubscriberListRequest struct {
	OnlyActive bool `json:"only_active" query:"only_active"`
	Page       int  `json:"page" query:"page" validate:"omitempty,min=1"`
	PageSize   int  `json:"page_size" query:"page_size" validate:"omitempty,min=1,max=100"`
}

// SubscriberListResponse is the paginated subscriber list
type SubscriberListResponse struct {
	Message  string          `json:"message"`
	Items    []SubscriberDTO `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}
