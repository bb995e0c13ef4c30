package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("account is deactivated")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 128 characters")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidRole        = errors.New("invalid user role")
	ErrCannotDemoteSelf   = errors.New("cannot change your own role")
)

// ===== Token Errors =====
var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrRefreshTokenRevoked = errors.New("refresh token revoked")
)

// ===== Content Errors =====
var (
	ErrContentNotFound       = errors.New("content not found")
	ErrContentTitleRequired  = errors.New("title is required")
	ErrContentTitleTooLong   = errors.New("title exceeds maximum length")
	ErrInvalidContentType    = errors.New("invalid content type")
	ErrInvalidContentStatus  = errors.New("invalid content status")
	ErrContentBodyEmpty      = errors.New("content has no body to render")
	ErrSlugAlreadyExists     = errors.New("slug already in use")
	ErrMetaDescriptionTooLong = errors.New("meta description exceeds maximum length")
)

// ===== Event Errors =====
var (
	ErrEventNotFound        = errors.New("event not found")
	ErrEventTitleRequired   = errors.New("event title is required")
	ErrInvalidEventType     = errors.New("invalid event type")
	ErrInvalidEventStatus   = errors.New("invalid event status")
	ErrInvalidDateRange     = errors.New("end date must be after start date")
	ErrRSVPNotFound         = errors.New("RSVP not found")
	ErrRSVPClosed           = errors.New("RSVPs are closed for this event")
	ErrAlreadyRSVPd         = errors.New("an RSVP already exists for this email")
	ErrEventFull            = errors.New("event is at capacity")
	ErrGuestsNotAllowed     = errors.New("guests are not allowed for this event")
	ErrInvalidRSVPStatus    = errors.New("invalid RSVP status")
	ErrBulkInviteTooLarge   = errors.New("too many addresses in one bulk invitation")
	ErrBulkInviteEmpty      = errors.New("bulk invitation has no addresses")
)

// ===== Notification Errors =====
var (
	ErrSMTPDisabled       = errors.New("SMTP delivery is not configured")
	ErrTemplateNotFound   = errors.New("email template not found")
	ErrRecipientRequired  = errors.New("recipient is required")
)

// ===== Module Errors =====
var (
	ErrModuleNotFound         = errors.New("module not found in catalog")
	ErrModuleNotInstalled     = errors.New("module is not installed")
	ErrModuleAlreadyInstalled = errors.New("module is already installed")
	ErrModuleConfigIncomplete = errors.New("module configuration is incomplete")
)

// ===== AI Errors =====
var (
	ErrAIProviderNotFound   = errors.New("AI provider not found")
	ErrNoActiveAIProvider   = errors.New("no active AI provider configured")
	ErrUnknownAIProvider    = errors.New("unknown AI provider")
	ErrAIKeyMissing         = errors.New("AI provider has no API key")
	ErrAIUpstreamFailed     = errors.New("AI provider request failed")
	ErrPromptRequired       = errors.New("prompt is required")
)

// ===== Settings Errors =====
var (
	ErrSettingNotFound     = errors.New("setting not found")
	ErrSettingKeyRequired  = errors.New("setting key is required")
	ErrSettingKeyTooLong   = errors.New("setting key exceeds maximum length")
	ErrSettingKeyExists    = errors.New("setting key already exists")
)

// ===== Portfolio Errors =====
var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrProjectNotFound     = errors.New("project not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategorySlugExists  = errors.New("category slug already exists")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrTestimonialNotFound = errors.New("testimonial not found")
)

// ===== Error Tracking Errors =====
var (
	ErrErrorRecordNotFound = errors.New("error record not found")
	ErrInvalidSeverity     = errors.New("invalid severity")
	ErrInvalidErrorFilter  = errors.New("invalid error filter")
)
