package service

import (
	"context"
	"testing"
	"time"

	"github.com/stitch/cms/internal/model"
)

// Helper functions

func newTestDashboardService(contentRepo *mockContentRepo, userRepo *mockUserRepo, moduleRepo *mockModuleRepo) *DashboardService {
	return NewDashboardService(DashboardServiceConfig{
		ContentRepo: contentRepo,
		UserRepo:    userRepo,
		ModuleRepo:  moduleRepo,
	})
}

// GetStats Tests

func TestDashboardStats_Aggregates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Now().UTC()
	contentRepo := &mockContentRepo{
		countByStatusFunc: func(ctx context.Context) (map[string]int, error) {
			return map[string]int{
				model.ContentStatusPublished: 7,
				model.ContentStatusDraft:     3,
				model.ContentStatusArchived:  2,
			}, nil
		},
		recentlyUpdatedFunc: func(ctx context.Context, limit int) ([]*model.Content, error) {
			return []*model.Content{
				{ID: "content:1", Title: "Edited Post", ContentType: model.ContentTypeBlogPost,
					CreatedOn: now.Add(-48 * time.Hour), UpdatedOn: now},
				{ID: "content:2", Title: "Fresh Post", ContentType: model.ContentTypeArticle,
					CreatedOn: now, UpdatedOn: now},
			}, nil
		},
	}

	userRepo := newMockUserRepo()
	userRepo.users["user:1"] = &model.User{ID: "user:1"}
	userRepo.users["user:2"] = &model.User{ID: "user:2"}

	moduleRepo := &mockModuleRepo{
		countActiveFunc: func(ctx context.Context) (int, error) {
			return 4, nil
		},
	}

	svc := newTestDashboardService(contentRepo, userRepo, moduleRepo)

	stats, err := svc.GetStats(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.TotalContent != 12 {
		t.Errorf("expected total 12, got %d", stats.TotalContent)
	}
	if stats.PublishedContent != 7 || stats.DraftContent != 3 {
		t.Errorf("unexpected status breakdown: %+v", stats)
	}
	if stats.TotalUsers != 2 {
		t.Errorf("expected 2 users, got %d", stats.TotalUsers)
	}
	if stats.ActiveModules != 4 {
		t.Errorf("expected 4 active modules, got %d", stats.ActiveModules)
	}

	if len(stats.RecentActivity) != 2 {
		t.Fatalf("expected 2 activity entries, got %d", len(stats.RecentActivity))
	}
	if stats.RecentActivity[0].Action != "updated" {
		t.Errorf("expected edited record to read as updated, got %s", stats.RecentActivity[0].Action)
	}
	if stats.RecentActivity[1].Action != "created" {
		t.Errorf("expected untouched record to read as created, got %s", stats.RecentActivity[1].Action)
	}
}

// GetQuickActions Tests

func TestDashboardQuickActions(t *testing.T) {
	t.Parallel()

	svc := newTestDashboardService(&mockContentRepo{}, newMockUserRepo(), &mockModuleRepo{})

	actions := svc.GetQuickActions()
	if len(actions) == 0 {
		t.Fatal("expected quick actions")
	}
	for _, action := range actions {
		if action.Label == "" || action.Path == "" {
			t.Errorf("incomplete quick action: %+v", action)
		}
	}
}

// GetContentAnalytics Tests

func TestContentAnalytics_TimelineAndSummary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	today := time.Now().UTC()
	contentRepo := &mockContentRepo{
		createdSinceFunc: func(ctx context.Context, cutoff string) ([]*model.Content, error) {
			return []*model.Content{
				{ID: "content:1", CreatedOn: today},
				{ID: "content:2", CreatedOn: today},
				{ID: "content:3", CreatedOn: today.AddDate(0, 0, -2)},
			}, nil
		},
		countByTypeFunc: func(ctx context.Context) (map[string]int, error) {
			return map[string]int{
				model.ContentTypeArticle:  5,
				model.ContentTypeBlogPost: 5,
				model.ContentTypePage:     1,
			}, nil
		},
	}
	svc := newTestDashboardService(contentRepo, newMockUserRepo(), &mockModuleRepo{})

	analytics, err := svc.GetContentAnalytics(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if analytics.Days != 7 || len(analytics.Timeline) != 7 {
		t.Fatalf("expected 7 day window, got %d points", len(analytics.Timeline))
	}
	if analytics.Summary.TotalCreated != 3 {
		t.Errorf("expected 3 created, got %d", analytics.Summary.TotalCreated)
	}

	last := analytics.Timeline[len(analytics.Timeline)-1]
	if last.Count != 2 {
		t.Errorf("expected 2 created today, got %+v", last)
	}

	// Tie between article and blog_post resolves alphabetically
	if analytics.Summary.MostPopularType != model.ContentTypeArticle {
		t.Errorf("expected deterministic tie-break, got %q", analytics.Summary.MostPopularType)
	}
}

func TestContentAnalytics_ClampsWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestDashboardService(&mockContentRepo{}, newMockUserRepo(), &mockModuleRepo{})

	analytics, err := svc.GetContentAnalytics(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analytics.Days != 30 {
		t.Errorf("expected default 30 days, got %d", analytics.Days)
	}

	analytics, err = svc.GetContentAnalytics(ctx, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analytics.Days != 365 {
		t.Errorf("expected clamp to 365, got %d", analytics.Days)
	}
}
