package auditlog

import "time"

const EventSync = "sync"

// Entry запись журнала об одной попытке синхронизации (не об отдельной записи)
type Entry struct {
	ID             int64     `json:"id"`
	EventType      string    `json:"event_type"`
	UserID         string    `json:"user_id"`
	DeviceID       string    `json:"device_id"`
	SurveyCount    int       `json:"survey_count"`
	InsertedCount  int       `json:"inserted_count"`
	ConflictCount  int       `json:"conflict_count"`
	FailedCount    int       `json:"failed_count"`
	Success        bool      `json:"success"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	IPAddress      string    `json:"ip_address,omitempty"`
	DurationMillis int64     `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}
