package sync

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"farmsurvey/internal/domain/survey"
)

const maxPhotoBytes = 8 << 20

// toSurvey переводит входящую запись в доменную модель; device подставляется,
// если у записи нет собственного device_id
func (p *SurveyPayload) toSurvey(device, actor string) (*survey.Survey, error) {
	deviceID := p.DeviceID
	if deviceID == "" {
		deviceID = device
	}

	s := &survey.Survey{
		ClientID:        p.ClientID,
		DeviceID:        deviceID,
		UserID:          actor,
		FarmerName:      p.FarmerName,
		HouseholdSize:   p.HouseholdSize,
		Phone:           p.Phone,
		Village:         p.Village,
		Island:          p.Island,
		Latitude:        p.Latitude,
		Longitude:       p.Longitude,
		GPSAccuracy:     p.GPSAccuracy,
		FarmSize:        p.FarmSize,
		Crops:           append([]string(nil), p.Crops...),
		Livestock:       p.Livestock,
		PestIssues:      p.PestIssues,
		PestSeverity:    p.PestSeverity,
		PestDescription: p.PestDescription,
		TreatmentUsed:   p.TreatmentUsed,
		HarvestDate:     p.HarvestDate,
		Notes:           p.Notes,
		ClientTimestamp: p.ClientTimestamp,
	}

	for i, ph := range p.Photos {
		if len(ph.Data) == 0 {
			return nil, &survey.ValidationError{Field: fmt.Sprintf("photos[%d]", i), Reason: "empty data"}
		}
		if len(ph.Data) > maxPhotoBytes {
			return nil, &survey.ValidationError{Field: fmt.Sprintf("photos[%d]", i), Reason: "photo is too large"}
		}

		photoType := strings.TrimSpace(ph.Type)
		if photoType == "" {
			photoType = DefaultPhotoType
		}
		sum := sha256.Sum256(ph.Data)
		s.Photos = append(s.Photos, survey.Photo{
			Type:     photoType,
			Caption:  ph.Caption,
			Data:     ph.Data,
			Checksum: hex.EncodeToString(sum[:]),
		})
	}

	survey.Normalize(s)
	return s, nil
}

// FromSurvey формирует полезную нагрузку из доменной записи; используется клиентом
func FromSurvey(s *survey.Survey) SurveyPayload {
	p := SurveyPayload{
		ClientID:        s.ClientID,
		DeviceID:        s.DeviceID,
		ClientTimestamp: s.ClientTimestamp,
		FarmerName:      s.FarmerName,
		HouseholdSize:   s.HouseholdSize,
		Phone:           s.Phone,
		Village:         s.Village,
		Island:          s.Island,
		Latitude:        s.Latitude,
		Longitude:       s.Longitude,
		GPSAccuracy:     s.GPSAccuracy,
		FarmSize:        s.FarmSize,
		Crops:           s.Crops,
		Livestock:       s.Livestock,
		PestIssues:      s.PestIssues,
		PestSeverity:    s.PestSeverity,
		PestDescription: s.PestDescription,
		TreatmentUsed:   s.TreatmentUsed,
		HarvestDate:     s.HarvestDate,
		Notes:           s.Notes,
	}
	for _, ph := range s.Photos {
		p.Photos = append(p.Photos, PhotoPayload{Data: ph.Data, Type: ph.Type, Caption: ph.Caption})
	}
	return p
}
