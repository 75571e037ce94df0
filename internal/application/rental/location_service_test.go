package rental

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/webdevsha/permitak/internal/domain/rental"
	"github.com/webdevsha/permitak/internal/domain/shared"
)

func TestLocationService_Create(t *testing.T) {
	repo := new(MockLocationRepository)
	svc := NewLocationService(repo, nil)

	repo.On("Save", mock.Anything, mock.MatchedBy(func(l *rental.Location) bool {
		return l.Type == rental.LocationTypeWeekly && l.Rates.Khemah.Equal(decimal.NewFromInt(50))
	})).Return(nil)

	resp, err := svc.Create(context.Background(), LocationRequest{
		Name:          "Pasar Tani Seksyen 7",
		Type:          "daily",
		OperatingDays: "Sabtu & Ahad",
		RateKhemah:    decimal.NewFromInt(50),
		RateCBS:       decimal.NewFromInt(70),
	})

	require.NoError(t, err)
	assert.Equal(t, "weekly", resp.Type)
	repo.AssertExpectations(t)
}

func TestLocationService_Create_NegativeRate(t *testing.T) {
	repo := new(MockLocationRepository)
	svc := NewLocationService(repo, nil)

	_, err := svc.Create(context.Background(), LocationRequest{
		Name:        "Tapak",
		Type:        "monthly",
		RateMonthly: decimal.NewFromInt(-1),
	})

	assert.ErrorIs(t, err, shared.ErrValidation)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLocationService_List_OrganizerScope(t *testing.T) {
	repo := new(MockLocationRepository)
	svc := NewLocationService(repo, nil)
	organizer := uuid.New()
	loc, err := rental.NewLocation(rental.LocationDetails{Name: "Bangi", Type: rental.LocationTypeWeekly, OrganizerID: &organizer})
	require.NoError(t, err)

	repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f rental.LocationFilter) bool {
		return f.OrganizerID != nil && *f.OrganizerID == organizer && f.PageSize == 0 && f.OrderBy == "name"
	})).Return([]rental.LocationSummary{{Location: *loc, TenantCount: 12}}, nil)

	list, err := svc.List(context.Background(), LocationListFilter{}, OrganizerScope(organizer))

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.EqualValues(t, 12, list[0].TenantCount)
}

func TestLocationService_Get_OutsideScope(t *testing.T) {
	repo := new(MockLocationRepository)
	svc := NewLocationService(repo, nil)
	loc, err := rental.NewLocation(rental.LocationDetails{Name: "Kajang", Type: rental.LocationTypeMonthly})
	require.NoError(t, err)
	repo.On("FindByID", mock.Anything, loc.ID).Return(loc, nil)

	_, err = svc.Get(context.Background(), loc.ID, OrganizerScope(uuid.New()))
	assert.ErrorIs(t, err, rental.ErrLocationNotFound)

	resp, err := svc.Get(context.Background(), loc.ID, Unrestricted)
	require.NoError(t, err)
	assert.Equal(t, "Kajang", resp.Name)
}

func TestLocationService_Update(t *testing.T) {
	repo := new(MockLocationRepository)
	svc := NewLocationService(repo, nil)
	loc, err := rental.NewLocation(rental.LocationDetails{Name: "Kajang", Type: rental.LocationTypeMonthly})
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, loc.ID).Return(loc, nil)
	repo.On("Save", mock.Anything, loc).Return(nil)

	resp, err := svc.Update(context.Background(), loc.ID, LocationRequest{
		Name:        "Tapak Kajang",
		Type:        "monthly",
		RateMonthly: decimal.NewFromInt(220),
	})

	require.NoError(t, err)
	assert.Equal(t, "Tapak Kajang", resp.Name)
	assert.True(t, resp.RateMonthly.Equal(decimal.NewFromInt(220)))
}

func TestLocationService_Delete(t *testing.T) {
	repo := new(MockLocationRepository)
	svc := NewLocationService(repo, nil)
	id := uuid.New()
	repo.On("Delete", mock.Anything, id).Return(rental.ErrLocationNotFound)

	err := svc.Delete(context.Background(), id)

	assert.ErrorIs(t, err, shared.ErrNotFound)
}
