// Package model defines domain entities and data structures for the Stitch CMS API.
//
// The model package contains all struct definitions for domain objects, request/response
// types, and error definitions. Models are used across all layers of the application.
//
// # Domain Entities
//
// Core domain entities include:
//
//   - User: CMS account with role-based access (viewer, editor, admin)
//   - Content: Articles, pages and blog posts with SEO metadata
//   - Event: Scheduled events collecting RSVPs and sending reminders
//   - RSVP: One invitee's response to an event
//   - Module: Installed plugin instance from the static catalog
//   - AIProvider: Credentials and configuration for one upstream AI service
//   - SiteSetting: Key/value site configuration
//
// # JSON Serialization
//
// All models use json struct tags for API serialization:
//
//	type Content struct {
//	    ID    string `json:"id"`
//	    Title string `json:"title"`
//	    Slug  string `json:"slug"`
//	}
//
// # Validation Constants
//
// The package defines validation constants:
//
//	const (
//	    MaxContentTitleLength    = 200
//	    MaxMetaDescriptionLength = 160
//	    MaxGuestCount            = 10
//	)
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go:
//
//	type ProblemDetails struct {
//	    Type    string    `json:"type"`
//	    Title   string    `json:"title"`
//	    Status  int       `json:"status"`
//	    Detail  string    `json:"detail"`
//	}
package model
