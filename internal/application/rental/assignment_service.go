package rental

import (
	"context"

	"github.com/google/uuid"
	"github.com/webdevsha/permitak/internal/domain/rental"
	"go.uber.org/zap"
)

// AssignmentService assigns tenants to stalls
type AssignmentService struct {
	assignments rental.AssignmentRepository
	tenants     rental.TenantRepository
	locations   rental.LocationRepository
	logger      *zap.Logger
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(
	assignments rental.AssignmentRepository,
	tenants rental.TenantRepository,
	locations rental.LocationRepository,
	logger *zap.Logger,
) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		assignments: assignments,
		tenants:     tenants,
		locations:   locations,
		logger:      logger.Named("assignment"),
	}
}

// Assign gives a tenant a stall at a location. The rate class cannot be
// changed afterwards.
func (s *AssignmentService) Assign(ctx context.Context, tenantID uuid.UUID, req AssignRequest) (*AssignmentResponse, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, rental.ErrTenantNotFound
	}
	loc, err := s.locations.FindByID(ctx, req.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, rental.ErrLocationNotFound
	}

	a, err := rental.NewAssignment(tenant.ID, loc.ID, rental.RateType(req.RateType), req.StallNumber)
	if err != nil {
		return nil, err
	}
	if err := s.assignments.Save(ctx, a); err != nil {
		return nil, err
	}
	a.Location = loc

	s.logger.Info("Tenant assigned",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("location_id", loc.ID.String()),
		zap.String("rate_type", req.RateType))
	resp := ToAssignmentResponse(a)
	return &resp, nil
}

// ToggleStatus flips an assignment between active and inactive
func (s *AssignmentService) ToggleStatus(ctx context.Context, id uuid.UUID) (*AssignmentResponse, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	a.ToggleStatus()
	if err := s.assignments.Save(ctx, a); err != nil {
		return nil, err
	}
	resp := ToAssignmentResponse(a)
	return &resp, nil
}

// UpdateStallNumber changes an assignment's stall number
func (s *AssignmentService) UpdateStallNumber(ctx context.Context, id uuid.UUID, stall string) (*AssignmentResponse, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.SetStallNumber(stall); err != nil {
		return nil, err
	}
	if err := s.assignments.Save(ctx, a); err != nil {
		return nil, err
	}
	resp := ToAssignmentResponse(a)
	return &resp, nil
}

// ListByTenant returns a tenant's stalls with their resolved display price
func (s *AssignmentService) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]AssignmentResponse, error) {
	list, err := s.assignments.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]AssignmentResponse, len(list))
	for i := range list {
		out[i] = ToAssignmentResponse(&list[i])
	}
	return out, nil
}

// ListByLocation returns the tenants trading at a location visible in scope
func (s *AssignmentService) ListByLocation(ctx context.Context, locationID uuid.UUID, scope Scope) ([]AssignmentResponse, error) {
	loc, err := s.locations.FindByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil || !scope.allows(loc) {
		return nil, rental.ErrLocationNotFound
	}

	list, err := s.assignments.FindByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	out := make([]AssignmentResponse, 0, len(list))
	for i := range list {
		a := &list[i]
		if a.Location == nil {
			a.Location = loc
		}
		resp := ToAssignmentResponse(a)
		tenant, err := s.tenants.FindByID(ctx, a.TenantID)
		if err != nil {
			return nil, err
		}
		if tenant != nil {
			resp.TenantName = tenant.FullName
			resp.BusinessName = tenant.BusinessName
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *AssignmentService) find(ctx context.Context, id uuid.UUID) (*rental.Assignment, error) {
	a, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, rental.ErrAssignmentNotFound
	}
	return a, nil
}
