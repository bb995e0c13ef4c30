// Package middleware provides HTTP middleware for the Stitch CMS API.
//
// The middleware package contains reusable middleware components for
// authentication, authorization, rate limiting, and request processing.
//
// # Available Middleware
//
// Core middleware components:
//
//   - Auth: JWT token validation and user extraction
//   - RequireRole: Role-based authorization (viewer, editor, admin)
//   - RateLimit: Request rate limiting per user/IP
//   - Idempotency: Idempotent request handling
//
// # Authentication
//
// The auth middleware validates JWT tokens and extracts user information:
//
//	protected := middleware.Auth(authService)
//
// After authentication, handlers can access user info:
//
//	userID := middleware.GetUserID(r.Context())
//
// # Rate Limiting
//
// Rate limiting protects against abuse:
//
//	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
//	    Rate:   100,
//	    Window: time.Minute,
//	})
//
// # Context Values
//
// Middleware sets context values accessible via helper functions:
//
//   - GetUserID(r.Context()): Returns authenticated user ID
//   - GetUserRole(r.Context()): Returns authenticated user role
//   - GetRequestID(r.Context()): Returns unique request identifier
package middleware
