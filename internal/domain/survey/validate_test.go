package survey

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSurvey() *Survey {
	return &Survey{
		ClientID:        "c1",
		DeviceID:        "d1",
		FarmerName:      "Maria",
		Island:          "Efate",
		Latitude:        ptr(-17.73),
		Longitude:       ptr(168.32),
		FarmSize:        ptr(2.5),
		Crops:           []string{"taro"},
		ClientTimestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(s *Survey)
		wantField string
		wantCoord bool
	}{
		{name: "valid survey", mutate: func(*Survey) {}},
		{name: "no position is fine", mutate: func(s *Survey) { s.Latitude, s.Longitude = nil, nil }},
		{name: "missing client id", mutate: func(s *Survey) { s.ClientID = "" }, wantField: "client_id"},
		{name: "missing device id", mutate: func(s *Survey) { s.DeviceID = "" }, wantField: "device_id"},
		{name: "missing timestamp", mutate: func(s *Survey) { s.ClientTimestamp = time.Time{} }, wantField: "client_timestamp"},
		{name: "missing farmer name", mutate: func(s *Survey) { s.FarmerName = "" }, wantField: "farmer_name"},
		{name: "farmer name too long", mutate: func(s *Survey) { s.FarmerName = strings.Repeat("a", 201) }, wantField: "farmer_name"},
		{name: "household size zero", mutate: func(s *Survey) { s.HouseholdSize = ptr(0) }, wantField: "household_size"},
		{name: "unknown island", mutate: func(s *Survey) { s.Island = "Atlantis" }, wantField: "island"},
		{name: "latitude out of range", mutate: func(s *Survey) { s.Latitude = ptr(91.0) }, wantField: "latitude", wantCoord: true},
		{name: "longitude out of range", mutate: func(s *Survey) { s.Longitude = ptr(-180.5) }, wantField: "longitude", wantCoord: true},
		{name: "latitude NaN", mutate: func(s *Survey) { s.Latitude = ptr(math.NaN()) }, wantField: "latitude", wantCoord: true},
		{name: "only latitude", mutate: func(s *Survey) { s.Longitude = nil }, wantField: "position", wantCoord: true},
		{name: "negative accuracy", mutate: func(s *Survey) { s.GPSAccuracy = ptr(-1.0) }, wantField: "gps_accuracy"},
		{name: "farm too small", mutate: func(s *Survey) { s.FarmSize = ptr(0.01) }, wantField: "farm_size"},
		{name: "farm too large", mutate: func(s *Survey) { s.FarmSize = ptr(10001.0) }, wantField: "farm_size"},
		{name: "negative livestock", mutate: func(s *Survey) { s.Livestock.Goats = -1 }, wantField: "livestock"},
		{name: "unknown severity", mutate: func(s *Survey) { s.PestSeverity = "extreme" }, wantField: "pest_severity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSurvey()
			tt.mutate(s)

			err := Validate(s)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Field)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, tt.wantCoord, errors.Is(err, ErrInvalidCoordinates))
		})
	}
}

func TestNormalize(t *testing.T) {
	harvest := time.Date(2024, 6, 1, 15, 30, 0, 0, time.FixedZone("VUT", 11*3600))
	s := &Survey{
		ClientID:        "  c1 ",
		FarmerName:      " Maria ",
		PestSeverity:    " High",
		Crops:           []string{" taro", "", "  "},
		HarvestDate:     &harvest,
		ClientTimestamp: time.Date(2024, 5, 1, 10, 0, 0, 123456789, time.FixedZone("VUT", 11*3600)),
	}

	Normalize(s)

	assert.Equal(t, "c1", s.ClientID)
	assert.Equal(t, "Maria", s.FarmerName)
	assert.Equal(t, "high", s.PestSeverity)
	assert.Equal(t, []string{"taro"}, s.Crops)
	assert.Equal(t, time.UTC, s.ClientTimestamp.Location())
	assert.Equal(t, 123000000, s.ClientTimestamp.Nanosecond())
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *s.HarvestDate)
}

func TestNormalize_NilCrops(t *testing.T) {
	s := &Survey{}
	Normalize(s)
	assert.NotNil(t, s.Crops)
	assert.Empty(t, s.Crops)
}
