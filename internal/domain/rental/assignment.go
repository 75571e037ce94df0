package rental

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webdevsha/permitak/internal/domain/shared"
)

// AssignmentStatus represents whether a stall assignment is in use
type AssignmentStatus string

const (
	AssignmentStatusActive   AssignmentStatus = "active"
	AssignmentStatusInactive AssignmentStatus = "inactive"
)

// Assignment links a tenant to a stall at a location.
// RateType is fixed at creation.
type Assignment struct {
	shared.BaseEntity
	TenantID    uuid.UUID        `json:"tenant_id"`
	LocationID  uuid.UUID        `json:"location_id"`
	RateType    RateType         `json:"rate_type"`
	StallNumber string           `json:"stall_number"`
	Status      AssignmentStatus `json:"status"`

	// Location is populated by repositories that join the location row
	Location *Location `json:"location,omitempty"`
}

// NewAssignment creates an active assignment
func NewAssignment(tenantID, locationID uuid.UUID, rateType RateType, stallNumber string) (*Assignment, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("Tenant ID is required")
	}
	if locationID == uuid.Nil {
		return nil, shared.NewValidationError("Location ID is required")
	}
	if !rateType.IsValid() {
		return nil, shared.NewValidationError("Rate type must be khemah, cbs or monthly")
	}
	return &Assignment{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		LocationID:  locationID,
		RateType:    rateType,
		StallNumber: strings.TrimSpace(stallNumber),
		Status:      AssignmentStatusActive,
	}, nil
}

// ToggleStatus flips between active and inactive
func (a *Assignment) ToggleStatus() {
	if a.Status == AssignmentStatusActive {
		a.Status = AssignmentStatusInactive
	} else {
		a.Status = AssignmentStatusActive
	}
	a.Touch()
}

// SetStallNumber changes the stall number
func (a *Assignment) SetStallNumber(stall string) error {
	stall = strings.TrimSpace(stall)
	if len(stall) > 50 {
		return shared.NewValidationError("Stall number cannot exceed 50 characters")
	}
	a.StallNumber = stall
	a.Touch()
	return nil
}

// IsActive returns true if the assignment is active
func (a *Assignment) IsActive() bool {
	return a.Status == AssignmentStatusActive
}

// Rate resolves the periodic rate from the joined location
func (a *Assignment) Rate() decimal.Decimal {
	return ResolveRate(a.RateType, a.Location)
}

// LocationName returns the joined location name, or empty
func (a *Assignment) LocationName() string {
	if a.Location == nil {
		return ""
	}
	return a.Location.Name
}

// RentDescription is the ledger description for a rent payment on this stall
func (a *Assignment) RentDescription() string {
	return fmt.Sprintf("Bayaran Sewa - %s (%s)", a.LocationName(), a.StallNumber)
}
