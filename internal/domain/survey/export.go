package survey

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var csvHeader = []string{
	"id", "client_id", "device_id", "user_id", "farmer_name", "household_size", "phone",
	"village", "island", "latitude", "longitude", "gps_accuracy", "farm_size", "crops",
	"cattle", "pigs", "poultry", "goats", "pest_issues", "pest_severity", "treatment_used",
	"harvest_date", "notes", "client_timestamp", "server_timestamp", "created_at",
}

// ExportCSV выгружает все записи, подходящие под фильтр, постранично
func (s *Service) ExportCSV(ctx context.Context, filter Filter, w io.Writer) (int, error) {
	filter.Page = 1
	filter.Limit = MaxLimit
	if err := NormalizeFilter(&filter); err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}

	written := 0
	for {
		page, err := s.repo.List(ctx, filter)
		if err != nil {
			return written, err
		}

		for i := range page.Surveys {
			if err := cw.Write(csvRow(&page.Surveys[i])); err != nil {
				return written, fmt.Errorf("write csv row: %w", err)
			}
			written++
		}

		if filter.Page >= page.TotalPages || len(page.Surveys) == 0 {
			break
		}
		filter.Page++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, fmt.Errorf("flush csv: %w", err)
	}

	s.log.Debug("csv export finished", "rows", written)
	return written, nil
}

func csvRow(s *Survey) []string {
	return []string{
		strconv.FormatInt(s.ID, 10),
		s.ClientID,
		s.DeviceID,
		s.UserID,
		s.FarmerName,
		optInt(s.HouseholdSize),
		s.Phone,
		s.Village,
		s.Island,
		optFloat(s.Latitude),
		optFloat(s.Longitude),
		optFloat(s.GPSAccuracy),
		optFloat(s.FarmSize),
		strings.Join(s.Crops, ";"),
		strconv.Itoa(s.Livestock.Cattle),
		strconv.Itoa(s.Livestock.Pigs),
		strconv.Itoa(s.Livestock.Poultry),
		strconv.Itoa(s.Livestock.Goats),
		s.PestIssues,
		s.PestSeverity,
		s.TreatmentUsed,
		optDate(s.HarvestDate),
		s.Notes,
		s.ClientTimestamp.Format(time.RFC3339Nano),
		s.ServerTimestamp.Format(time.RFC3339Nano),
		s.CreatedAt.Format(time.RFC3339Nano),
	}
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func optDate(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format(time.DateOnly)
}
