package rental

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/webdevsha/permitak/internal/domain/rental"
	"github.com/webdevsha/permitak/internal/domain/shared"
	"go.uber.org/zap"
)

// TenantService manages tenant profiles
type TenantService struct {
	repo   rental.TenantRepository
	logger *zap.Logger
}

// NewTenantService creates a new TenantService
func NewTenantService(repo rental.TenantRepository, logger *zap.Logger) *TenantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantService{repo: repo, logger: logger.Named("tenant")}
}

// Create registers a tenant. Email addresses are unique among tenants.
func (s *TenantService) Create(ctx context.Context, req TenantRequest) (*TenantResponse, error) {
	t, err := rental.NewTenant(req.toProfile())
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, t.Email, uuid.Nil); err != nil {
		return nil, err
	}
	if req.Status != "" {
		if err := t.SetStatus(rental.TenantStatus(req.Status)); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("Tenant created", zap.String("tenant_id", t.ID.String()))
	resp := ToTenantResponse(t)
	return &resp, nil
}

// Update replaces a tenant's profile
func (s *TenantService) Update(ctx context.Context, id uuid.UUID, req TenantRequest) (*TenantResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.UpdateProfile(req.toProfile()); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, t.Email, t.ID); err != nil {
		return nil, err
	}
	if req.Status != "" {
		if err := t.SetStatus(rental.TenantStatus(req.Status)); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}

	resp := ToTenantResponse(t)
	return &resp, nil
}

// Get returns one tenant
func (s *TenantService) Get(ctx context.Context, id uuid.UUID) (*TenantResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTenantResponse(t)
	return &resp, nil
}

// List lists tenants, paginated
func (s *TenantService) List(ctx context.Context, f TenantListFilter) (*shared.Paginated[TenantResponse], error) {
	filter := f.toDomain()
	tenants, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]TenantResponse, len(tenants))
	for i := range tenants {
		items[i] = ToTenantResponse(&tenants[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ResolveForUser finds the tenant record of a signed-in user: by profile id
// first, then by email. A user with neither has no activated tenant account.
func (s *TenantService) ResolveForUser(ctx context.Context, profileID, email string) (*rental.Tenant, error) {
	if profileID != "" {
		t, err := s.repo.FindByProfileID(ctx, profileID)
		if err != nil {
			return nil, err
		}
		if t != nil {
			return t, nil
		}
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		t, err := s.repo.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if t != nil {
			s.logger.Debug("Tenant resolved by email fallback",
				zap.String("tenant_id", t.ID.String()),
				zap.String("profile_id", profileID))
			return t, nil
		}
	}
	return nil, rental.ErrAccountNotActive
}

func (s *TenantService) find(ctx context.Context, id uuid.UUID) (*rental.Tenant, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, rental.ErrTenantNotFound
	}
	return t, nil
}

func (s *TenantService) ensureEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	if email == "" {
		return nil
	}
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return shared.NewDomainError(shared.ErrAlreadyExists.Code, "A tenant with this email already exists")
	}
	return nil
}
