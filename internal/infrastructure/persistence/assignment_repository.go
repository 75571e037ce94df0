package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/webdevsha/permitak/internal/domain/rental"
	"github.com/webdevsha/permitak/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAssignmentRepository implements rental.AssignmentRepository using GORM.
// Every read preloads the assignment's location.
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewGormAssignmentRepository creates a new GormAssignmentRepository
func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

func (r *GormAssignmentRepository) base(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Location")
}

func (r *GormAssignmentRepository) list(q *gorm.DB) ([]rental.Assignment, error) {
	var rows []models.AssignmentModel
	if err := q.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]rental.Assignment, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// FindByID finds an assignment by ID
func (r *GormAssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Assignment, error) {
	var model models.AssignmentModel
	if err := r.base(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTenant lists a tenant's assignments, oldest first
func (r *GormAssignmentRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]rental.Assignment, error) {
	return r.list(r.base(ctx).Where("tenant_id = ?", tenantID))
}

// FindByLocation lists the assignments at a location, oldest first
func (r *GormAssignmentRepository) FindByLocation(ctx context.Context, locationID uuid.UUID) ([]rental.Assignment, error) {
	return r.list(r.base(ctx).Where("location_id = ?", locationID))
}

// FindAll returns every assignment, oldest first
func (r *GormAssignmentRepository) FindAll(ctx context.Context) ([]rental.Assignment, error) {
	return r.list(r.base(ctx))
}

// Save creates or updates an assignment
func (r *GormAssignmentRepository) Save(ctx context.Context, a *rental.Assignment) error {
	return r.db.WithContext(ctx).Omit("Location").Save(models.AssignmentFromDomain(a)).Error
}
