package survey

import "time"

// Outcome результат применения входящей записи к репозиторию
type Outcome string

const (
	OutcomeInserted Outcome = "inserted"
	OutcomeUpdated  Outcome = "updated"
	OutcomeRejected Outcome = "rejected"
	// OutcomeFailed запись не применена из-за ошибки валидации или хранилища
	OutcomeFailed Outcome = "failed"
)

// Conflict true для исходов, при которых запись с такой идентичностью уже существовала
func (o Outcome) Conflict() bool {
	return o == OutcomeUpdated || o == OutcomeRejected
}

// Survey каноническая запись интервью с фермером
type Survey struct {
	ID       int64  `json:"id"`
	ClientID string `json:"client_id"`
	DeviceID string `json:"device_id"`
	UserID   string `json:"user_id"`

	FarmerName      string     `json:"farmer_name"`
	HouseholdSize   *int       `json:"household_size,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Village         string     `json:"village,omitempty"`
	Island          string     `json:"island,omitempty"`
	Latitude        *float64   `json:"latitude,omitempty"`
	Longitude       *float64   `json:"longitude,omitempty"`
	GPSAccuracy     *float64   `json:"gps_accuracy,omitempty"`
	FarmSize        *float64   `json:"farm_size,omitempty"`
	Crops           []string   `json:"crops"`
	Livestock       Livestock  `json:"livestock"`
	PestIssues      string     `json:"pest_issues,omitempty"`
	PestSeverity    string     `json:"pest_severity,omitempty"`
	PestDescription string     `json:"pest_description,omitempty"`
	TreatmentUsed   string     `json:"treatment_used,omitempty"`
	HarvestDate     *time.Time `json:"harvest_date,omitempty"`
	Notes           string     `json:"notes,omitempty"`

	ClientTimestamp time.Time  `json:"client_timestamp"`
	ServerTimestamp time.Time  `json:"server_timestamp"`
	CreatedAt       time.Time  `json:"created_at"`
	SyncedAt        *time.Time `json:"synced_at,omitempty"`
	SyncedBy        string     `json:"synced_by,omitempty"`

	Photos []Photo `json:"photos,omitempty"`
}

// Livestock количество скота по видам
type Livestock struct {
	Cattle  int `json:"cattle"`
	Pigs    int `json:"pigs"`
	Poultry int `json:"poultry"`
	Goats   int `json:"goats"`
}

// Total общее поголовье
func (l Livestock) Total() int {
	return l.Cattle + l.Pigs + l.Poultry + l.Goats
}

// HasPosition true если заданы обе координаты
func (s *Survey) HasPosition() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// Photo фотография, принадлежащая ровно одной записи
type Photo struct {
	ID        int64     `json:"id"`
	SurveyID  int64     `json:"survey_id"`
	Type      string    `json:"photo_type"`
	Caption   string    `json:"caption,omitempty"`
	Data      []byte    `json:"-"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// UpsertResult сохраненная запись и классификация исхода
type UpsertResult struct {
	Survey        *Survey
	Outcome       Outcome
	PhotosAdded   int
	PhotosSkipped int
}

// Filter параметры выборки списка записей
type Filter struct {
	Search    string
	Island    string
	Village   string
	UserID    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// Page страница результатов со служебными полями
type Page struct {
	Surveys    []Survey `json:"surveys"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"total_pages"`
}

// Nearby запись с расстоянием до точки поиска
type Nearby struct {
	Survey
	DistanceKm float64 `json:"distance_km"`
}

// Statistics агрегаты по всему репозиторию
type Statistics struct {
	TotalSurveys      int     `json:"total_surveys"`
	TotalFarmArea     float64 `json:"total_farm_area"`
	ActiveEnumerators int     `json:"active_enumerators"`
	AvgFarmSize       float64 `json:"avg_farm_size"`
	IslandsCovered    int     `json:"islands_covered"`
	VillagesCovered   int     `json:"villages_covered"`
	SurveysWithPests  int     `json:"surveys_with_pests"`

	Crops     []Count     `json:"crops"`
	Islands   []Count     `json:"islands"`
	Villages  []Count     `json:"villages"`
	Livestock Livestock   `json:"livestock"`
	Pests     []PestCount `json:"pests"`
}

// Count количество записей для одного значения
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PestCount разбивка вредителей по типу и степени
type PestCount struct {
	Issue    string `json:"issue"`
	Severity string `json:"severity"`
	Count    int    `json:"count"`
}
