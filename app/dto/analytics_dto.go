// Package dto contains Data Transfer Objects for API request and response structures
package dto

// DashboardStatsResponse summarizes an account for the user dashboard
type DashboardStatsResponse struct {
	Message         string           `json:"message"`
	PropertyCount   int64            `json:"property_count"`
	ItemCount       int64            `json:"item_count"`
	VisitsLast7d    int64            `json:"visits_last_7d"`
	VisitsLast30d   int64            `json:"visits_last_30d"`
	TopItems        []TopItemDTO     `json:"top_items"`
	ReactionsByType map[string]int64 `json:"reactions_by_type"`
}

// TopItemDTO ranks an item by visit volume
type TopItemDTO struct {
	ItemID   uint   `json:"item_id"`
	PublicID string `json:"public_id"`
	Name     string `json:"name"`
	Visits   int64  `json:"visits"`
}

// ItemAnalyticsResponse carries per-item analytics
type ItemAnalyticsResponse struct {
	Message        string           `json:"message"`
	ItemID         uint             `json:"item_id"`
	Name           string           `json:"name"`
	VisitsLast24h  int64            `json:"visits_last_24h"`
	VisitsLast7d   int64            `json:"visits_last_7d"`
	VisitsLast30d  int64            `json:"visits_last_30d"`
	VisitsAllTime  int64            `json:"visits_all_time"`
	UniqueSessions int64            `json:"unique_sessions"`
	Reactions      map[string]int64 `json:"reactions"`
}

// AdminSystemStatsResponse summarizes the whole system for the admin dashboard
type AdminSystemStatsResponse struct {
	Message             string           `json:"message"`
	AccountCount        int64            `json:"account_count"`
	UserCount           int64            `json:"user_count"`
	PropertyCount       int64            `json:"property_count"`
	ItemCount           int64            `json:"item_count"`
	AccessRequestCounts map[string]int64 `json:"access_request_counts"`
	SubscriberCount     int64            `json:"subscriber_count"`
}
