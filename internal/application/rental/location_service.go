// Package rental holds the location, tenant, assignment and arrears use cases.
package rental

import (
	"context"

	"github.com/google/uuid"
	"github.com/webdevsha/permitak/internal/domain/rental"
	"github.com/webdevsha/permitak/internal/domain/shared"
	"go.uber.org/zap"
)

// LocationService manages market locations and their rate tables
type LocationService struct {
	repo   rental.LocationRepository
	logger *zap.Logger
}

// NewLocationService creates a new LocationService
func NewLocationService(repo rental.LocationRepository, logger *zap.Logger) *LocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationService{repo: repo, logger: logger.Named("location")}
}

// Create adds a location
func (s *LocationService) Create(ctx context.Context, req LocationRequest) (*LocationResponse, error) {
	details, err := req.toDetails()
	if err != nil {
		return nil, err
	}
	loc, err := rental.NewLocation(details)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, loc); err != nil {
		return nil, err
	}

	s.logger.Info("Location created", zap.String("location_id", loc.ID.String()), zap.String("name", loc.Name))
	resp := ToLocationResponse(loc)
	return &resp, nil
}

// Update replaces a location's details and rates
func (s *LocationService) Update(ctx context.Context, id uuid.UUID, req LocationRequest) (*LocationResponse, error) {
	loc, err := s.find(ctx, id, Unrestricted)
	if err != nil {
		return nil, err
	}
	details, err := req.toDetails()
	if err != nil {
		return nil, err
	}
	if err := loc.Update(details); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, loc); err != nil {
		return nil, err
	}

	resp := ToLocationResponse(loc)
	return &resp, nil
}

// Delete removes a location together with its assignments
func (s *LocationService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Location deleted", zap.String("location_id", id.String()))
	return nil
}

// Get returns one location visible in scope
func (s *LocationService) Get(ctx context.Context, id uuid.UUID, scope Scope) (*LocationResponse, error) {
	loc, err := s.find(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	resp := ToLocationResponse(loc)
	return &resp, nil
}

// List returns the locations visible in scope with their tenant counts
func (s *LocationService) List(ctx context.Context, f LocationListFilter, scope Scope) ([]LocationResponse, error) {
	filter := rental.LocationFilter{
		Filter:      shared.DefaultFilter(),
		OrganizerID: scope.OrganizerID,
	}
	filter.PageSize = 0
	filter.OrderBy = "name"
	filter.OrderDir = "asc"
	filter.Search = f.Search
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	if f.Type != "" {
		t, err := rental.ParseLocationType(f.Type)
		if err != nil {
			return nil, err
		}
		filter.Type = &t
	}

	summaries, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]LocationResponse, len(summaries))
	for i := range summaries {
		out[i] = ToLocationResponse(&summaries[i].Location)
		out[i].TenantCount = summaries[i].TenantCount
	}
	return out, nil
}

// find loads a location; one outside scope reads as missing
func (s *LocationService) find(ctx context.Context, id uuid.UUID, scope Scope) (*rental.Location, error) {
	loc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil || !scope.allows(loc) {
		return nil, rental.ErrLocationNotFound
	}
	return loc, nil
}
