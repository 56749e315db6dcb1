package client

import (
	"time"

	"farmsurvey/internal/domain/survey"
)

// LocalSurvey запись в локальной очереди устройства
type LocalSurvey struct {
	survey.Survey
	Synced    bool      `json:"synced"`
	UpdatedAt time.Time `json:"updated_at"`
	// Revision растет с каждым локальным сохранением
	Revision int64 `json:"-"`
}

// ListFilter выборка локальных записей
type ListFilter struct {
	PendingOnly bool
	Limit       int
}

// LocalStats сводка по локальной базе
type LocalStats struct {
	Total     int     `json:"total"`
	Pending   int     `json:"pending"`
	TotalArea float64 `json:"total_area"`
	TopCrop   string  `json:"top_crop,omitempty"`
}

// SyncedMark запись, подтвержденная сервером; Revision фиксирует сохранение,
// которое было отправлено
type SyncedMark struct {
	ClientID string
	Revision int64
}

// SyncResult итог одной попытки синхронизации
type SyncResult struct {
	Submitted int           `json:"submitted"`
	Synced    int           `json:"synced"`
	Conflicts int           `json:"conflicts"`
	Failed    int           `json:"failed"`
	Marked    int           `json:"marked"`
	Message   string        `json:"message,omitempty"`
	Items     []SyncItem    `json:"items,omitempty"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
}

// SyncItem исход для одной отправленной записи
type SyncItem struct {
	ClientID string         `json:"client_id"`
	Outcome  survey.Outcome `json:"outcome"`
	ServerID int64          `json:"server_id,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// SyncStatus состояние очереди и последней попытки
type SyncStatus struct {
	DeviceID    string    `json:"device_id"`
	Actor       string    `json:"actor"`
	Pending     int       `json:"pending"`
	LastAttempt time.Time `json:"last_attempt,omitempty"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}
