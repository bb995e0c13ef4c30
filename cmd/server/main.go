package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stitch/cms/internal/config"
	"github.com/stitch/cms/internal/database"
	"github.com/stitch/cms/internal/handler"
	"github.com/stitch/cms/internal/jobs"
	"github.com/stitch/cms/internal/middleware"
	"github.com/stitch/cms/internal/repository"
	"github.com/stitch/cms/internal/service"
	"github.com/stitch/cms/pkg/jwt"
	"github.com/stitch/cms/pkg/secrets"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Initialize JWT service
	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize secrets cipher for AI provider keys and module config.
	// A nil cipher is tolerated in development; secrets are stored as-is.
	var secretsCipher *secrets.Cipher
	if cfg.Secrets.EncryptionKey != "" {
		secretsCipher, err = secrets.NewCipher(cfg.Secrets.EncryptionKey)
		if err != nil {
			slog.Error("failed to initialize secrets cipher", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		slog.Warn("SECRETS_ENCRYPTION_KEY not set, storing secrets unencrypted")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	contentRepo := repository.NewContentRepository(db)
	eventRepo := repository.NewEventRepository(db)
	rsvpRepo := repository.NewRSVPRepository(db)
	commRepo := repository.NewCommunicationRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	providerRepo := repository.NewAIProviderRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)
	errorRepo := repository.NewErrorRepository(db)

	// Initialize services
	tokenService := service.NewTokenService(service.TokenServiceConfig{
		JWTService:      jwtService,
		TokenRepo:       tokenRepo,
		RefreshDuration: time.Duration(cfg.JWT.RefreshDays) * 24 * time.Hour,
	})

	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:     userRepo,
		TokenService: tokenService,
	})

	contentService := service.NewContentService(service.ContentServiceConfig{
		ContentRepo: contentRepo,
	})

	notificationService := service.NewNotificationService(service.NotificationServiceConfig{
		CommRepo:  commRepo,
		EventRepo: eventRepo,
		RSVPRepo:  rsvpRepo,
		SMTP:      cfg.SMTP,
		BaseURL:   cfg.Server.BaseURL,
	})

	eventService := service.NewEventService(service.EventServiceConfig{
		EventRepo: eventRepo,
		RSVPRepo:  rsvpRepo,
		Sender:    notificationService,
	})

	aiService := service.NewAIService(service.AIServiceConfig{
		ProviderRepo: providerRepo,
		Cipher:       secretsCipher,
	})

	moduleService := service.NewModuleService(service.ModuleServiceConfig{
		ModuleRepo: moduleRepo,
		Cipher:     secretsCipher,
	})

	settingService := service.NewSettingService(service.SettingServiceConfig{
		SettingRepo: settingRepo,
	})

	portfolioService := service.NewPortfolioService(service.PortfolioServiceConfig{
		PortfolioRepo: portfolioRepo,
	})

	dashboardService := service.NewDashboardService(service.DashboardServiceConfig{
		ContentRepo: contentRepo,
		UserRepo:    userRepo,
		ModuleRepo:  moduleRepo,
	})

	errorTrackingService := service.NewErrorTrackingService(service.ErrorTrackingServiceConfig{
		ErrorRepo:     errorRepo,
		RetentionDays: cfg.Jobs.ErrorRetentionDays,
	})

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   100, // 100 requests per minute
		Window: time.Minute,
		Burst:  20, // Allow bursts up to 20
	})
	defer rateLimiter.Stop()

	// Initialize idempotency store
	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{
		TTL:     24 * time.Hour,
		Cleanup: time.Hour,
	})
	defer idempotencyStore.Stop()

	// Initialize event reminder processor
	reminderProcessor := jobs.NewReminderProcessor(eventService, notificationService, cfg.Jobs.ReminderInterval)
	reminderProcessor.Start()
	defer reminderProcessor.Stop()

	// Initialize error log cleanup job
	errorCleanup := jobs.NewErrorCleanupJob(errorTrackingService, cfg.Jobs.CleanupInterval)
	errorCleanup.Start()
	defer errorCleanup.Stop()

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(db)
	authHandler := handler.NewAuthHandler(authService)
	contentHandler := handler.NewContentHandler(contentService)
	eventHandler := handler.NewEventHandler(eventService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	moduleHandler := handler.NewModuleHandler(moduleService)
	aiHandler := handler.NewAIHandler(aiService, contentService)
	settingHandler := handler.NewSettingHandler(settingService)
	portfolioHandler := handler.NewPortfolioPublicHandler(portfolioService)
	portfolioAdminHandler := handler.NewPortfolioAdminHandler(portfolioService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	errorHandler := handler.NewErrorTrackingHandler(errorTrackingService)

	// Create router and register routes
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", healthHandler.Check)
	mux.HandleFunc("GET /v1/health", healthHandler.Detailed)
	mux.HandleFunc("GET /v1/health/database", healthHandler.Database)

	// Auth endpoints (public)
	mux.HandleFunc("POST /v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /v1/auth/refresh", authHandler.Refresh)

	// Middleware chains. Logout uses optional auth so a bare refresh
	// token in the body still revokes without an access token.
	authMiddleware := middleware.Auth(authService)
	optionalAuthMiddleware := middleware.OptionalAuth(authService)
	editorMiddleware := func(h http.Handler) http.Handler {
		return authMiddleware(middleware.RequireEditor()(h))
	}
	adminMiddleware := func(h http.Handler) http.Handler {
		return authMiddleware(middleware.RequireAdmin()(h))
	}

	// Auth endpoints (protected)
	mux.Handle("POST /v1/auth/logout", optionalAuthMiddleware(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /v1/auth/me", authMiddleware(http.HandlerFunc(authHandler.Me)))
	mux.Handle("POST /v1/auth/password", authMiddleware(http.HandlerFunc(authHandler.ChangePassword)))

	// User management endpoints - requires admin role
	mux.Handle("GET /v1/users", adminMiddleware(http.HandlerFunc(authHandler.ListUsers)))
	mux.Handle("GET /v1/users/{userId}", adminMiddleware(http.HandlerFunc(authHandler.GetUser)))
	mux.Handle("PATCH /v1/users/{userId}", adminMiddleware(http.HandlerFunc(authHandler.UpdateUser)))
	mux.Handle("DELETE /v1/users/{userId}", adminMiddleware(http.HandlerFunc(authHandler.DeleteUser)))

	// Content endpoints. Slug lookup is public so the site can render
	// published pages; everything else requires editor role.
	mux.Handle("GET /v1/content/slug/{slug}", optionalAuthMiddleware(http.HandlerFunc(contentHandler.GetBySlug)))
	mux.Handle("GET /v1/content", editorMiddleware(http.HandlerFunc(contentHandler.List)))
	mux.Handle("POST /v1/content", editorMiddleware(http.HandlerFunc(contentHandler.Create)))
	mux.Handle("GET /v1/content/{contentId}", editorMiddleware(http.HandlerFunc(contentHandler.Get)))
	mux.Handle("PATCH /v1/content/{contentId}", editorMiddleware(http.HandlerFunc(contentHandler.Update)))
	mux.Handle("DELETE /v1/content/{contentId}", editorMiddleware(http.HandlerFunc(contentHandler.Delete)))
	mux.Handle("GET /v1/content/{contentId}/render", editorMiddleware(http.HandlerFunc(contentHandler.Render)))

	// Event endpoints (public read, editor write)
	mux.HandleFunc("GET /v1/events", eventHandler.List)
	mux.Handle("GET /v1/events/{eventId}", optionalAuthMiddleware(http.HandlerFunc(eventHandler.Get)))
	mux.Handle("POST /v1/events", editorMiddleware(http.HandlerFunc(eventHandler.Create)))
	mux.Handle("PATCH /v1/events/{eventId}", editorMiddleware(http.HandlerFunc(eventHandler.Update)))
	mux.Handle("DELETE /v1/events/{eventId}", editorMiddleware(http.HandlerFunc(eventHandler.Delete)))
	mux.Handle("GET /v1/events/{eventId}/analytics", editorMiddleware(http.HandlerFunc(eventHandler.Analytics)))
	mux.Handle("POST /v1/events/{eventId}/invite", editorMiddleware(http.HandlerFunc(eventHandler.BulkInvite)))

	// RSVP endpoints. Creation and responding stay open for the public
	// event form, since invitees are not CMS users; reminder links point
	// anonymous invitees straight at the respond endpoint. Authenticated
	// editors get the manual source which bypasses the deadline and
	// approval gates.
	mux.Handle("POST /v1/events/{eventId}/rsvps", optionalAuthMiddleware(http.HandlerFunc(eventHandler.CreateRSVP)))
	mux.Handle("GET /v1/events/{eventId}/rsvps", editorMiddleware(http.HandlerFunc(eventHandler.ListRSVPs)))
	mux.Handle("PATCH /v1/events/{eventId}/rsvps/{rsvpId}", optionalAuthMiddleware(http.HandlerFunc(eventHandler.UpdateRSVP)))
	mux.Handle("DELETE /v1/events/{eventId}/rsvps/{rsvpId}", editorMiddleware(http.HandlerFunc(eventHandler.DeleteRSVP)))

	// Notification endpoints. Reminder triggers, the communication log
	// and delivery stats are all scoped to one event.
	mux.Handle("POST /v1/events/{eventId}/reminders", editorMiddleware(http.HandlerFunc(notificationHandler.SendReminders)))
	mux.Handle("GET /v1/events/{eventId}/communications", editorMiddleware(http.HandlerFunc(notificationHandler.ListCommunications)))
	mux.Handle("GET /v1/events/{eventId}/notifications/stats", editorMiddleware(http.HandlerFunc(notificationHandler.Stats)))
	mux.Handle("GET /v1/notifications/templates", editorMiddleware(http.HandlerFunc(notificationHandler.ListTemplates)))
	mux.Handle("POST /v1/notifications/test", adminMiddleware(http.HandlerFunc(notificationHandler.SendTest)))

	// Module endpoints - requires admin role
	mux.Handle("GET /v1/modules/available", adminMiddleware(http.HandlerFunc(moduleHandler.ListAvailable)))
	mux.Handle("GET /v1/modules", adminMiddleware(http.HandlerFunc(moduleHandler.ListInstalled)))
	mux.Handle("POST /v1/modules", adminMiddleware(http.HandlerFunc(moduleHandler.Install)))
	mux.Handle("GET /v1/modules/{moduleId}", adminMiddleware(http.HandlerFunc(moduleHandler.Get)))
	mux.Handle("PATCH /v1/modules/{moduleId}", adminMiddleware(http.HandlerFunc(moduleHandler.Update)))
	mux.Handle("POST /v1/modules/{moduleId}/activate", adminMiddleware(http.HandlerFunc(moduleHandler.Activate)))
	mux.Handle("POST /v1/modules/{moduleId}/deactivate", adminMiddleware(http.HandlerFunc(moduleHandler.Deactivate)))
	mux.Handle("DELETE /v1/modules/{moduleId}", adminMiddleware(http.HandlerFunc(moduleHandler.Uninstall)))

	// AI endpoints. Provider management is admin, generation is editor.
	mux.Handle("GET /v1/ai/providers", adminMiddleware(http.HandlerFunc(aiHandler.ListProviders)))
	mux.Handle("PUT /v1/ai/providers", adminMiddleware(http.HandlerFunc(aiHandler.UpsertProvider)))
	mux.Handle("POST /v1/ai/providers/{name}/activate", adminMiddleware(http.HandlerFunc(aiHandler.ActivateProvider)))
	mux.Handle("DELETE /v1/ai/providers/{name}", adminMiddleware(http.HandlerFunc(aiHandler.DeleteProvider)))
	mux.Handle("POST /v1/ai/generate", editorMiddleware(http.HandlerFunc(aiHandler.Generate)))
	mux.Handle("POST /v1/ai/suggest", editorMiddleware(http.HandlerFunc(aiHandler.Suggest)))

	// Settings endpoints - requires admin role
	mux.Handle("GET /v1/settings", adminMiddleware(http.HandlerFunc(settingHandler.List)))
	mux.Handle("POST /v1/settings", adminMiddleware(http.HandlerFunc(settingHandler.Create)))
	mux.Handle("POST /v1/settings/defaults", adminMiddleware(http.HandlerFunc(settingHandler.InitializeDefaults)))
	mux.Handle("GET /v1/settings/{key}", adminMiddleware(http.HandlerFunc(settingHandler.Get)))
	mux.Handle("PUT /v1/settings/{key}", adminMiddleware(http.HandlerFunc(settingHandler.Update)))
	mux.Handle("DELETE /v1/settings/{key}", adminMiddleware(http.HandlerFunc(settingHandler.Delete)))

	// Site configuration (public read, admin write)
	mux.HandleFunc("GET /v1/site-config", settingHandler.GetSiteConfig)
	mux.Handle("PUT /v1/site-config", adminMiddleware(http.HandlerFunc(settingHandler.UpdateSiteConfig)))

	// Portfolio endpoints (public)
	mux.HandleFunc("GET /v1/portfolio", portfolioHandler.Homepage)
	mux.HandleFunc("GET /v1/portfolio/profile", portfolioHandler.Profile)
	mux.HandleFunc("GET /v1/portfolio/skills", portfolioHandler.Skills)
	mux.HandleFunc("GET /v1/portfolio/projects", portfolioHandler.Projects)
	mux.HandleFunc("GET /v1/portfolio/projects/{projectId}", portfolioHandler.Project)
	mux.HandleFunc("GET /v1/portfolio/categories", portfolioHandler.Categories)
	mux.HandleFunc("GET /v1/portfolio/experience", portfolioHandler.Experience)
	mux.HandleFunc("GET /v1/portfolio/testimonials", portfolioHandler.Testimonials)
	mux.HandleFunc("GET /v1/portfolio/stats", portfolioHandler.Stats)

	// Portfolio management endpoints - requires admin role
	mux.Handle("PUT /v1/admin/portfolio/profile", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.UpsertProfile)))
	mux.Handle("GET /v1/admin/portfolio/stats", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.ListStats)))
	mux.Handle("POST /v1/admin/portfolio/stats", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.CreateStat)))
	mux.Handle("PATCH /v1/admin/portfolio/stats/{statId}", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.UpdateStat)))
	mux.Handle("DELETE /v1/admin/portfolio/stats/{statId}", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.DeleteStat)))
	mux.Handle("GET /v1/admin/portfolio/skills", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.ListSkills)))
	mux.Handle("POST /v1/admin/portfolio/skills", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.CreateSkill)))
	mux.Handle("PATCH /v1/admin/portfolio/skills/{skillId}", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.UpdateSkill)))
	mux.Handle("DELETE /v1/admin/portfolio/skills/{skillId}", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.DeleteSkill)))
	mux.Handle("POST /v1/admin/portfolio/categories", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.CreateCategory)))
	mux.Handle("DELETE /v1/admin/portfolio/categories/{categoryId}", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.DeleteCategory)))
	mux.Handle("GET /v1/admin/portfolio/projects", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.ListProjects)))
	mux.Handle("POST /v1/admin/portfolio/projects", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.CreateProject)))
	mux.Handle("PATCH /v1/admin/portfolio/projects/{projectId}", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.UpdateProject)))
	mux.Handle("DELETE /v1/admin/portfolio/projects/{projectId}", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.DeleteProject)))
	mux.Handle("POST /v1/admin/portfolio/experience", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.CreateExperience)))
	mux.Handle("PATCH /v1/admin/portfolio/experience/{experienceId}", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.UpdateExperience)))
	mux.Handle("DELETE /v1/admin/portfolio/experience/{experienceId}", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.DeleteExperience)))
	mux.Handle("GET /v1/admin/portfolio/testimonials", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.ListTestimonials)))
	mux.Handle("POST /v1/admin/portfolio/testimonials", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.CreateTestimonial)))
	mux.Handle("PATCH /v1/admin/portfolio/testimonials/{testimonialId}", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.UpdateTestimonial)))
	mux.Handle("DELETE /v1/admin/portfolio/testimonials/{testimonialId}", adminMiddleware(http.HandlerFunc(portfolioAdminHandler.DeleteTestimonial)))

	// Dashboard endpoints
	mux.Handle("GET /v1/dashboard/stats", editorMiddleware(http.HandlerFunc(dashboardHandler.Stats)))
	mux.Handle("GET /v1/dashboard/quick-actions", editorMiddleware(http.HandlerFunc(dashboardHandler.QuickActions)))
	mux.Handle("GET /v1/dashboard/analytics", editorMiddleware(http.HandlerFunc(dashboardHandler.ContentAnalytics)))

	// Error tracking endpoints. Intake is public so browser clients can
	// report without a session; everything else requires admin role.
	mux.HandleFunc("POST /v1/errors", errorHandler.Report)
	mux.Handle("GET /v1/errors", adminMiddleware(http.HandlerFunc(errorHandler.List)))
	mux.Handle("GET /v1/errors/summary", adminMiddleware(http.HandlerFunc(errorHandler.Summary)))
	mux.Handle("POST /v1/errors/cleanup", adminMiddleware(http.HandlerFunc(errorHandler.Cleanup)))
	mux.Handle("GET /v1/errors/cleanup/history", adminMiddleware(http.HandlerFunc(errorHandler.CleanupHistory)))
	mux.Handle("GET /v1/errors/{errorId}", adminMiddleware(http.HandlerFunc(errorHandler.Get)))
	mux.Handle("POST /v1/errors/{errorId}/resolve", adminMiddleware(http.HandlerFunc(errorHandler.Resolve)))

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.RateLimit(rateLimiter),
		middleware.Idempotency(idempotencyStore),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
