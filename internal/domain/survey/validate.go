package survey

import (
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxFarmerNameLen = 200
	maxHouseholdSize = 100
	minFarmSize      = 0.1
	maxFarmSize      = 10000
	maxNotesLen      = 5000
	maxCrops         = 50
)

// Islands допустимые значения поля island
var Islands = []string{
	"Efate", "Tanna", "Malekula", "Espiritu Santo", "Pentecost", "Ambrym", "Epi", "Other",
}

// Severities допустимые значения степени поражения вредителями
var Severities = []string{"none", "low", "medium", "high"}

// NormalizeTime приводит время к UTC с точностью до миллисекунды.
// Все сравнения clientTimestamp выполняются над нормализованными значениями.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// Normalize убирает пробелы и приводит временные метки к единому виду
func Normalize(s *Survey) {
	s.ClientID = strings.TrimSpace(s.ClientID)
	s.DeviceID = strings.TrimSpace(s.DeviceID)
	s.FarmerName = strings.TrimSpace(s.FarmerName)
	s.Village = strings.TrimSpace(s.Village)
	s.Island = strings.TrimSpace(s.Island)
	s.Phone = strings.TrimSpace(s.Phone)
	s.PestSeverity = strings.ToLower(strings.TrimSpace(s.PestSeverity))
	s.ClientTimestamp = NormalizeTime(s.ClientTimestamp)
	if s.HarvestDate != nil {
		d := s.HarvestDate.UTC().Truncate(24 * time.Hour)
		s.HarvestDate = &d
	}

	crops := s.Crops[:0]
	for _, c := range s.Crops {
		if c = strings.TrimSpace(c); c != "" {
			crops = append(crops, c)
		}
	}
	if crops == nil {
		crops = []string{}
	}
	s.Crops = crops
}

// Validate проверяет запись на границе системы, до любой записи в хранилище
func Validate(s *Survey) error {
	if s.ClientID == "" {
		return invalid("client_id", "is required")
	}
	if s.DeviceID == "" {
		return invalid("device_id", "is required")
	}
	if s.ClientTimestamp.IsZero() {
		return invalid("client_timestamp", "is required")
	}
	if s.FarmerName == "" {
		return invalid("farmer_name", "is required")
	}
	if utf8.RuneCountInString(s.FarmerName) > maxFarmerNameLen {
		return invalid("farmer_name", "is too long")
	}
	if s.HouseholdSize != nil && (*s.HouseholdSize < 1 || *s.HouseholdSize > maxHouseholdSize) {
		return invalid("household_size", "must be between 1 and 100")
	}
	if s.Island != "" && !slices.Contains(Islands, s.Island) {
		return invalid("island", "unknown island")
	}
	if err := ValidatePosition(s.Latitude, s.Longitude); err != nil {
		return err
	}
	if s.GPSAccuracy != nil && (*s.GPSAccuracy < 0 || math.IsNaN(*s.GPSAccuracy)) {
		return invalid("gps_accuracy", "must not be negative")
	}
	if s.FarmSize != nil && (*s.FarmSize < minFarmSize || *s.FarmSize > maxFarmSize || math.IsNaN(*s.FarmSize)) {
		return invalid("farm_size", "must be between 0.1 and 10000 hectares")
	}
	if len(s.Crops) > maxCrops {
		return invalid("crops", "too many crops")
	}
	l := s.Livestock
	if l.Cattle < 0 || l.Pigs < 0 || l.Poultry < 0 || l.Goats < 0 {
		return invalid("livestock", "counts must not be negative")
	}
	if s.PestSeverity != "" && !slices.Contains(Severities, s.PestSeverity) {
		return invalid("pest_severity", "must be one of none, low, medium, high")
	}
	if utf8.RuneCountInString(s.Notes) > maxNotesLen {
		return invalid("notes", "is too long")
	}

	return nil
}

// ValidatePosition проверяет пару координат: обе заданы и в допустимых пределах, либо обе отсутствуют
func ValidatePosition(lat, lng *float64) error {
	if lat == nil && lng == nil {
		return nil
	}
	if lat == nil || lng == nil {
		return invalidCoordinate("position", "latitude and longitude must be set together")
	}
	if math.IsNaN(*lat) || *lat < -90 || *lat > 90 {
		return invalidCoordinate("latitude", "must be between -90 and 90")
	}
	if math.IsNaN(*lng) || *lng < -180 || *lng > 180 {
		return invalidCoordinate("longitude", "must be between -180 and 180")
	}

	return nil
}
