package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/webdevsha/permitak/internal/domain/rental"
	"github.com/webdevsha/permitak/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTenantRepository implements rental.TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

func (r *GormTenantRepository) findOne(ctx context.Context, query string, args ...any) (*rental.Tenant, error) {
	var model models.TenantModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds a tenant by ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Tenant, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByProfileID finds the tenant linked to an auth subject
func (r *GormTenantRepository) FindByProfileID(ctx context.Context, profileID string) (*rental.Tenant, error) {
	if profileID == "" {
		return nil, nil
	}
	return r.findOne(ctx, "profile_id = ?", profileID)
}

// FindByEmail finds a tenant by email, case-insensitively
func (r *GormTenantRepository) FindByEmail(ctx context.Context, email string) (*rental.Tenant, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	return r.findOne(ctx, "LOWER(email) = ?", email)
}

// FindAll lists tenants matching the filter and the total match count
func (r *GormTenantRepository) FindAll(ctx context.Context, filter rental.TenantFilter) ([]rental.Tenant, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TenantModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where(
			"LOWER(full_name) LIKE ? OR LOWER(business_name) LIKE ? OR LOWER(email) LIKE ? OR phone_number LIKE ?",
			like, like, like, "%"+s+"%",
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.TenantModel
	if err := applyListFilter(query, filter.Filter, TenantSortFields, "full_name").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	tenants := make([]rental.Tenant, len(rows))
	for i := range rows {
		tenants[i] = *rows[i].ToDomain()
	}
	return tenants, total, nil
}

// CountByStatus counts tenants with the given status
func (r *GormTenantRepository) CountByStatus(ctx context.Context, status rental.TenantStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.TenantModel{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

// Save creates or updates a tenant
func (r *GormTenantRepository) Save(ctx context.Context, tenant *rental.Tenant) error {
	return r.db.WithContext(ctx).Save(models.TenantFromDomain(tenant)).Error
}
