package sync

import (
	"time"

	"farmsurvey/internal/domain/survey"
)

// BatchRequest пакет записей от одного устройства
type BatchRequest struct {
	DeviceID string          `json:"device_id,omitempty" doc:"Идентификатор устройства-источника"`
	ActorID  string          `json:"actor_id,omitempty" doc:"Идентификатор пользователя; без него используется anonymous"`
	Surveys  []SurveyPayload `json:"surveys" required:"false" nullable:"true" doc:"Все неотправленные записи устройства"`
}

// SurveyPayload запись в том виде, в котором ее передает клиент
type SurveyPayload struct {
	ClientID        string    `json:"client_id,omitempty"`
	DeviceID        string    `json:"device_id,omitempty"`
	ClientTimestamp time.Time `json:"client_timestamp,omitempty"`

	FarmerName      string           `json:"farmer_name,omitempty"`
	HouseholdSize   *int             `json:"household_size,omitempty"`
	Phone           string           `json:"phone,omitempty"`
	Village         string           `json:"village,omitempty"`
	Island          string           `json:"island,omitempty"`
	Latitude        *float64         `json:"latitude,omitempty"`
	Longitude       *float64         `json:"longitude,omitempty"`
	GPSAccuracy     *float64         `json:"gps_accuracy,omitempty"`
	FarmSize        *float64         `json:"farm_size,omitempty"`
	Crops           []string         `json:"crops,omitempty"`
	Livestock       survey.Livestock `json:"livestock,omitempty"`
	PestIssues      string           `json:"pest_issues,omitempty"`
	PestSeverity    string           `json:"pest_severity,omitempty"`
	PestDescription string           `json:"pest_description,omitempty"`
	TreatmentUsed   string           `json:"treatment_used,omitempty"`
	HarvestDate     *time.Time       `json:"harvest_date,omitempty"`
	Notes           string           `json:"notes,omitempty"`

	Photos []PhotoPayload `json:"photos,omitempty"`
}

// PhotoPayload фотография в base64
type PhotoPayload struct {
	Data    []byte `json:"data"`
	Type    string `json:"photo_type,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// BatchResponse итог синхронизации пакета
type BatchResponse struct {
	Status        string               `json:"status"`
	Success       bool                 `json:"success"`
	SyncedCount   int                  `json:"synced_count"`
	ConflictCount int                  `json:"conflict_count"`
	FailedCount   int                  `json:"failed_count"`
	Conflicts     []ConflictDescriptor `json:"conflicts"`
	Results       []ItemResult         `json:"results"`
	Message       string               `json:"message,omitempty"`
	Error         string               `json:"error,omitempty"`
}

// ConflictDescriptor запись, идентичность которой уже существовала на сервере
type ConflictDescriptor struct {
	ClientID   string         `json:"client_id"`
	DeviceID   string         `json:"device_id"`
	ServerID   int64          `json:"server_id"`
	FarmerName string         `json:"farmer_name"`
	Resolution survey.Outcome `json:"resolution"`
}

// ItemResult исход для одной записи пакета
type ItemResult struct {
	ClientID string         `json:"client_id"`
	DeviceID string         `json:"device_id"`
	Outcome  survey.Outcome `json:"outcome"`
	ServerID int64          `json:"server_id,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// RequestMeta сведения о запросе, которые приходят не из тела
type RequestMeta struct {
	// Actor логин аутентифицированного пользователя, пусто для анонимного запроса
	Actor          string
	RemoteAddr     string
	HeaderDeviceID string
}
