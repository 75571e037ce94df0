package rental

import "github.com/webdevsha/permitak/internal/domain/shared"

var (
	errNegativeRate = shared.NewValidationError("Rates cannot be negative")

	ErrLocationNotFound   = shared.NewNotFoundError("Location")
	ErrTenantNotFound     = shared.NewNotFoundError("Tenant")
	ErrAssignmentNotFound = shared.NewNotFoundError("Tenant location")
	ErrAccountNotActive   = shared.NewDomainError("NOT_FOUND", "Tenant account has not been activated")
)
