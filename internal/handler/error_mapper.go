package handler

import (
	"errors"

	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	// ===== Authentication Errors → 401 =====
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return model.NewUnauthorizedError(err.Error())
	case errors.Is(err, service.ErrInvalidRefreshToken),
		errors.Is(err, service.ErrRefreshTokenExpired),
		errors.Is(err, service.ErrRefreshTokenRevoked):
		return model.NewUnauthorizedError(err.Error())

	// ===== Authorization Errors → 403 =====
	case errors.Is(err, service.ErrUserInactive):
		return model.NewForbiddenError(err.Error())

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("user")
	case errors.Is(err, service.ErrContentNotFound):
		return model.NewNotFoundError("content")
	case errors.Is(err, service.ErrEventNotFound):
		return model.NewNotFoundError("event")
	case errors.Is(err, service.ErrRSVPNotFound):
		return model.NewNotFoundError("RSVP")
	case errors.Is(err, service.ErrModuleNotFound):
		return model.NewNotFoundError("module")
	case errors.Is(err, service.ErrModuleNotInstalled):
		return model.NewNotFoundError("installed module")
	case errors.Is(err, service.ErrAIProviderNotFound):
		return model.NewNotFoundError("AI provider")
	case errors.Is(err, service.ErrSettingNotFound):
		return model.NewNotFoundError("setting")
	case errors.Is(err, service.ErrTemplateNotFound):
		return model.NewNotFoundError("email template")
	case errors.Is(err, service.ErrProfileNotFound):
		return model.NewNotFoundError("profile")
	case errors.Is(err, service.ErrProjectNotFound):
		return model.NewNotFoundError("project")
	case errors.Is(err, service.ErrCategoryNotFound):
		return model.NewNotFoundError("category")
	case errors.Is(err, service.ErrTestimonialNotFound):
		return model.NewNotFoundError("testimonial")
	case errors.Is(err, service.ErrErrorRecordNotFound):
		return model.NewNotFoundError("error record")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrEmailAlreadyExists),
		errors.Is(err, service.ErrSlugAlreadyExists),
		errors.Is(err, service.ErrAlreadyRSVPd),
		errors.Is(err, service.ErrModuleAlreadyInstalled),
		errors.Is(err, service.ErrSettingKeyExists),
		errors.Is(err, service.ErrCategorySlugExists):
		return model.NewConflictError(err.Error())

	// ===== Validation Errors → 422 =====
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrPasswordTooLong):
		return model.NewValidationError([]model.FieldError{{Field: "credentials", Message: err.Error()}})

	case errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrCannotDemoteSelf):
		return model.NewValidationError([]model.FieldError{{Field: "role", Message: err.Error()}})

	case errors.Is(err, service.ErrContentTitleRequired),
		errors.Is(err, service.ErrContentTitleTooLong),
		errors.Is(err, service.ErrInvalidContentType),
		errors.Is(err, service.ErrInvalidContentStatus),
		errors.Is(err, service.ErrContentBodyEmpty),
		errors.Is(err, service.ErrMetaDescriptionTooLong):
		return model.NewValidationError([]model.FieldError{{Field: "content", Message: err.Error()}})

	case errors.Is(err, service.ErrEventTitleRequired),
		errors.Is(err, service.ErrInvalidEventType),
		errors.Is(err, service.ErrInvalidEventStatus),
		errors.Is(err, service.ErrInvalidDateRange):
		return model.NewValidationError([]model.FieldError{{Field: "event", Message: err.Error()}})

	case errors.Is(err, service.ErrInvalidRSVPStatus),
		errors.Is(err, service.ErrRSVPClosed),
		errors.Is(err, service.ErrGuestsNotAllowed),
		errors.Is(err, service.ErrBulkInviteEmpty),
		errors.Is(err, service.ErrBulkInviteTooLarge):
		return model.NewValidationError([]model.FieldError{{Field: "rsvp", Message: err.Error()}})

	case errors.Is(err, service.ErrEventFull):
		return model.NewValidationError([]model.FieldError{{Field: "limit", Message: err.Error()}})

	case errors.Is(err, service.ErrModuleConfigIncomplete):
		return model.NewValidationError([]model.FieldError{{Field: "configuration", Message: err.Error()}})

	case errors.Is(err, service.ErrSettingKeyRequired),
		errors.Is(err, service.ErrSettingKeyTooLong):
		return model.NewValidationError([]model.FieldError{{Field: "key", Message: err.Error()}})

	case errors.Is(err, service.ErrInvalidRating):
		return model.NewValidationError([]model.FieldError{{Field: "rating", Message: err.Error()}})

	case errors.Is(err, service.ErrInvalidSeverity),
		errors.Is(err, service.ErrInvalidErrorFilter):
		return model.NewValidationError([]model.FieldError{{Field: "error", Message: err.Error()}})

	case errors.Is(err, service.ErrPromptRequired),
		errors.Is(err, service.ErrUnknownAIProvider):
		return model.NewValidationError([]model.FieldError{{Field: "generation", Message: err.Error()}})

	// ===== Precondition Errors → 400 =====
	case errors.Is(err, service.ErrSMTPDisabled),
		errors.Is(err, service.ErrRecipientRequired),
		errors.Is(err, service.ErrNoActiveAIProvider),
		errors.Is(err, service.ErrAIKeyMissing):
		return model.NewBadRequestError(err.Error())

	// ===== Provider/External Errors → 502 =====
	case errors.Is(err, service.ErrAIUpstreamFailed):
		return model.NewBadGatewayError(err.Error())

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}

// MapServiceErrorWithContext converts a service error to a ProblemDetails response
// with additional context about the operation that failed.
func MapServiceErrorWithContext(err error, operation string) *model.ProblemDetails {
	pd := MapServiceError(err)
	if pd != nil && pd.Status == 500 {
		pd.Detail = operation + ": an unexpected error occurred"
	}
	return pd
}
