package rental

import (
	"strings"

	"github.com/google/uuid"
	"github.com/webdevsha/permitak/internal/domain/shared"
)

// LocationType is the operating schedule of a location
type LocationType string

const (
	LocationTypeWeekly  LocationType = "weekly"
	LocationTypeMonthly LocationType = "monthly"
)

// IsValid checks if the location type is valid
func (t LocationType) IsValid() bool {
	return t == LocationTypeWeekly || t == LocationTypeMonthly
}

// ParseLocationType parses a location type. "daily" is accepted as weekly
// since older records stored weekly markets under that name.
func ParseLocationType(s string) (LocationType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekly", "daily", "":
		return LocationTypeWeekly, nil
	case "monthly":
		return LocationTypeMonthly, nil
	}
	return "", shared.NewValidationError("Location type must be weekly or monthly")
}

// Location is a market or program site with its own rate table
type Location struct {
	shared.BaseEntity
	Name          string       `json:"name"`
	Type          LocationType `json:"type"`
	OperatingDays string       `json:"operating_days"`
	Description   string       `json:"description"`
	Rates         Rates        `json:"rates"`
	OrganizerID   *uuid.UUID   `json:"organizer_id,omitempty"`
}

// LocationDetails carries the editable fields of a location
type LocationDetails struct {
	Name          string
	Type          LocationType
	OperatingDays string
	Description   string
	Rates         Rates
	OrganizerID   *uuid.UUID
}

func (d LocationDetails) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return shared.NewValidationError("Location name is required")
	}
	if len(d.Name) > 200 {
		return shared.NewValidationError("Location name cannot exceed 200 characters")
	}
	if !d.Type.IsValid() {
		return shared.NewValidationError("Location type must be weekly or monthly")
	}
	return d.Rates.Validate()
}

// NewLocation creates a new location
func NewLocation(details LocationDetails) (*Location, error) {
	if err := details.validate(); err != nil {
		return nil, err
	}
	loc := &Location{BaseEntity: shared.NewBaseEntity()}
	loc.apply(details)
	return loc, nil
}

// Update replaces the editable fields of the location
func (l *Location) Update(details LocationDetails) error {
	if err := details.validate(); err != nil {
		return err
	}
	l.apply(details)
	l.Touch()
	return nil
}

func (l *Location) apply(d LocationDetails) {
	l.Name = strings.TrimSpace(d.Name)
	l.Type = d.Type
	l.OperatingDays = d.OperatingDays
	l.Description = d.Description
	l.Rates = d.Rates
	l.OrganizerID = d.OrganizerID
}

// IsOrganizedBy reports whether userID is the organizer assigned to the location
func (l *Location) IsOrganizedBy(userID uuid.UUID) bool {
	return l.OrganizerID != nil && *l.OrganizerID == userID
}

// LocationSummary is a location with its assignment count
type LocationSummary struct {
	Location
	TenantCount int64 `json:"tenant_count"`
}
