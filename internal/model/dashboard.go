package model

import "time"

// DashboardStats is the headline view for the admin dashboard
type DashboardStats struct {
	TotalContent     int             `json:"total_content"`
	PublishedContent int             `json:"published_content"`
	DraftContent     int             `json:"draft_content"`
	TotalUsers       int             `json:"total_users"`
	ActiveModules    int             `json:"active_modules"`
	RecentActivity   []ActivityEntry `json:"recent_activity"`
}

// ActivityEntry is one row of recent content activity
type ActivityEntry struct {
	ContentID   string    `json:"content_id"`
	Title       string    `json:"title"`
	ContentType string    `json:"content_type"`
	Action      string    `json:"action"` // created or updated
	Timestamp   time.Time `json:"timestamp"`
}

// QuickAction is one dashboard shortcut
type QuickAction struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Path        string `json:"path"`
	Icon        string `json:"icon"`
}

// ContentAnalytics is the content-over-time view
type ContentAnalytics struct {
	Days      int             `json:"days"`
	Timeline  []TimelinePoint `json:"timeline"` // content created per day
	ByType    map[string]int  `json:"by_type"`
	Summary   AnalyticsSummary `json:"summary"`
}

// AnalyticsSummary condenses a ContentAnalytics window
type AnalyticsSummary struct {
	TotalCreated    int    `json:"total_created"`
	MostPopularType string `json:"most_popular_type"`
}
