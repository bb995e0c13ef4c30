package service

import (
	"context"
	"time"

	"github.com/stitch/cms/internal/model"
)

// DashboardContentRepository is the slice of content storage the dashboard reads
type DashboardContentRepository interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
	CountByType(ctx context.Context) (map[string]int, error)
	RecentlyUpdated(ctx context.Context, limit int) ([]*model.Content, error)
	CreatedSince(ctx context.Context, cutoff string) ([]*model.Content, error)
}

// UserCounter counts registered users
type UserCounter interface {
	Count(ctx context.Context) (int, error)
}

// ModuleCounter counts active modules
type ModuleCounter interface {
	CountActive(ctx context.Context) (int, error)
}

// DashboardService aggregates stats for the admin dashboard
type DashboardService struct {
	contentRepo DashboardContentRepository
	userRepo    UserCounter
	moduleRepo  ModuleCounter
}

// DashboardServiceConfig holds configuration for the dashboard service
type DashboardServiceConfig struct {
	ContentRepo DashboardContentRepository
	UserRepo    UserCounter
	ModuleRepo  ModuleCounter
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(cfg DashboardServiceConfig) *DashboardService {
	return &DashboardService{
		contentRepo: cfg.ContentRepo,
		userRepo:    cfg.UserRepo,
		moduleRepo:  cfg.ModuleRepo,
	}
}

// GetStats builds the headline dashboard view
func (s *DashboardService) GetStats(ctx context.Context) (*model.DashboardStats, error) {
	byStatus, err := s.contentRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, count := range byStatus {
		total += count
	}

	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	modules, err := s.moduleRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.contentRepo.RecentlyUpdated(ctx, 10)
	if err != nil {
		return nil, err
	}

	activity := make([]model.ActivityEntry, 0, len(recent))
	for _, item := range recent {
		entry := model.ActivityEntry{
			ContentID:   item.ID,
			Title:       item.Title,
			ContentType: item.ContentType,
			Action:      "updated",
			Timestamp:   item.UpdatedOn,
		}
		// A record touched only at creation reads as created
		if !item.UpdatedOn.After(item.CreatedOn) {
			entry.Action = "created"
			entry.Timestamp = item.CreatedOn
		}
		activity = append(activity, entry)
	}

	return &model.DashboardStats{
		TotalContent:     total,
		PublishedContent: byStatus[model.ContentStatusPublished],
		DraftContent:     byStatus[model.ContentStatusDraft],
		TotalUsers:       users,
		ActiveModules:    modules,
		RecentActivity:   activity,
	}, nil
}

// GetQuickActions returns the static dashboard shortcuts
func (s *DashboardService) GetQuickActions() []model.QuickAction {
	return []model.QuickAction{
		{Label: "New Post", Description: "Write a new blog post", Path: "/content/new?type=post", Icon: "edit"},
		{Label: "New Page", Description: "Create a static page", Path: "/content/new?type=page", Icon: "file"},
		{Label: "New Event", Description: "Schedule an event with RSVPs", Path: "/events/new", Icon: "calendar"},
		{Label: "Manage Users", Description: "Invite or update users", Path: "/users", Icon: "users"},
		{Label: "Site Settings", Description: "Update site configuration", Path: "/settings", Icon: "settings"},
	}
}

// GetContentAnalytics builds the content-created-per-day view over a window
func (s *DashboardService) GetContentAnalytics(ctx context.Context, days int) (*model.ContentAnalytics, error) {
	if days <= 0 {
		days = 30
	}
	if days > 365 {
		days = 365
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	created, err := s.contentRepo.CreatedSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	byDay := map[string]int{}
	for _, item := range created {
		byDay[item.CreatedOn.UTC().Format("2006-01-02")]++
	}

	timeline := make([]model.TimelinePoint, 0, days)
	for d := days - 1; d >= 0; d-- {
		date := time.Now().UTC().AddDate(0, 0, -d).Format("2006-01-02")
		timeline = append(timeline, model.TimelinePoint{Date: date, Count: byDay[date]})
	}

	byType, err := s.contentRepo.CountByType(ctx)
	if err != nil {
		return nil, err
	}

	mostPopular := ""
	best := 0
	for contentType, count := range byType {
		if count > best || (count == best && contentType < mostPopular) {
			mostPopular = contentType
			best = count
		}
	}

	return &model.ContentAnalytics{
		Days:     days,
		Timeline: timeline,
		ByType:   byType,
		Summary: model.AnalyticsSummary{
			TotalCreated:    len(created),
			MostPopularType: mostPopular,
		},
	}, nil
}
