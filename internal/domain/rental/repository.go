package rental

import (
	"context"

	"github.com/google/uuid"
	"github.com/webdevsha/permitak/internal/domain/shared"
)

// LocationFilter defines filtering options for location queries
type LocationFilter struct {
	shared.Filter
	OrganizerID *uuid.UUID // Restrict to locations run by this organizer
	Type        *LocationType
}

// LocationRepository defines the interface for location persistence
type LocationRepository interface {
	// FindByID returns nil, nil when the location does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Location, error)

	// FindAll lists locations with their tenant counts
	FindAll(ctx context.Context, filter LocationFilter) ([]LocationSummary, error)

	// Save creates or updates a location
	Save(ctx context.Context, loc *Location) error

	// Delete removes a location
	Delete(ctx context.Context, id uuid.UUID) error
}

// TenantFilter defines filtering options for tenant queries
type TenantFilter struct {
	shared.Filter
	Status *TenantStatus
}

// TenantRepository defines the interface for tenant persistence
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindByProfileID(ctx context.Context, profileID string) (*Tenant, error)
	FindByEmail(ctx context.Context, email string) (*Tenant, error)
	FindAll(ctx context.Context, filter TenantFilter) ([]Tenant, int64, error)
	CountByStatus(ctx context.Context, status TenantStatus) (int64, error)
	Save(ctx context.Context, tenant *Tenant) error
}

// AssignmentRepository defines the interface for tenant-location persistence.
// Returned assignments carry their Location.
type AssignmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Assignment, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]Assignment, error)
	FindByLocation(ctx context.Context, locationID uuid.UUID) ([]Assignment, error)
	// FindAll returns every assignment ordered by creation time
	FindAll(ctx context.Context) ([]Assignment, error)
	Save(ctx context.Context, a *Assignment) error
}
