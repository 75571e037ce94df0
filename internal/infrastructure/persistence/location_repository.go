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

// GormLocationRepository implements rental.LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// FindByID finds a location by ID
func (r *GormLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Location, error) {
	var model models.LocationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

type locationWithCount struct {
	models.LocationModel
	TenantCount int64
}

// FindAll lists locations with the number of assignments at each
func (r *GormLocationRepository) FindAll(ctx context.Context, filter rental.LocationFilter) ([]rental.LocationSummary, error) {
	query := r.db.WithContext(ctx).
		Table("locations").
		Select("locations.*, (SELECT COUNT(*) FROM tenant_locations tl WHERE tl.location_id = locations.id) AS tenant_count")

	if filter.OrganizerID != nil {
		query = query.Where("locations.organizer_id = ?", *filter.OrganizerID)
	}
	if filter.Type != nil {
		query = query.Where("locations.type = ?", *filter.Type)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		query = query.Where("LOWER(locations.name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	query = applyListFilter(query, filter.Filter, LocationSortFields, "name")

	var rows []locationWithCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]rental.LocationSummary, len(rows))
	for i := range rows {
		out[i] = rental.LocationSummary{
			Location:    *rows[i].LocationModel.ToDomain(),
			TenantCount: rows[i].TenantCount,
		}
	}
	return out, nil
}

// Save creates or updates a location
func (r *GormLocationRepository) Save(ctx context.Context, loc *rental.Location) error {
	return r.db.WithContext(ctx).Save(models.LocationFromDomain(loc)).Error
}

// Delete removes a location. Its assignments are removed by the foreign key cascade.
func (r *GormLocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.LocationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return rental.ErrLocationNotFound
	}
	return nil
}
