package rental

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocationType(t *testing.T) {
	tests := []struct {
		in      string
		want    LocationType
		wantErr bool
	}{
		{"weekly", LocationTypeWeekly, false},
		{"daily", LocationTypeWeekly, false},
		{"Monthly", LocationTypeMonthly, false},
		{"yearly", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocationType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLocation(t *testing.T) {
	organizer := uuid.New()
	loc, err := NewLocation(LocationDetails{
		Name:          "  Uptown Danau Kota ",
		Type:          LocationTypeWeekly,
		OperatingDays: "Sabtu & Ahad",
		Rates:         Rates{Khemah: decimal.NewFromInt(45), CBS: decimal.NewFromInt(35)},
		OrganizerID:   &organizer,
	})
	require.NoError(t, err)
	assert.Equal(t, "Uptown Danau Kota", loc.Name)
	assert.True(t, loc.IsOrganizedBy(organizer))
	assert.False(t, loc.IsOrganizedBy(uuid.New()))

	_, err = NewLocation(LocationDetails{Name: "", Type: LocationTypeWeekly})
	assert.Error(t, err)

	_, err = NewLocation(LocationDetails{Name: "X", Type: LocationTypeMonthly, Rates: Rates{Monthly: decimal.NewFromInt(-600)}})
	assert.Error(t, err)
}

func TestLocation_Update(t *testing.T) {
	loc, err := NewLocation(LocationDetails{Name: "Pasar Malam", Type: LocationTypeWeekly})
	require.NoError(t, err)

	err = loc.Update(LocationDetails{Name: "Pasar Malam Baru", Type: LocationTypeMonthly, Rates: Rates{Monthly: decimal.NewFromInt(650)}})
	require.NoError(t, err)
	assert.Equal(t, LocationTypeMonthly, loc.Type)
	assert.Nil(t, loc.OrganizerID)
	assert.True(t, decimal.NewFromInt(650).Equal(loc.Rates.Monthly))
}
