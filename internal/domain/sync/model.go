package sync

import (
	"time"

	"farmsurvey/internal/domain/survey"
)

const (
	AnonymousActor   = "anonymous"
	DefaultPhotoType = "field"

	EventTypeSync = "sync.completed"
	EventTypeFail = "sync.failed"
)

// Event уведомление о завершенной попытке синхронизации
type Event struct {
	Type      string    `json:"type"`
	DeviceID  string    `json:"device_id"`
	UserID    string    `json:"user_id"`
	Submitted int       `json:"submitted"`
	Inserted  int       `json:"inserted"`
	Updated   int       `json:"updated"`
	Rejected  int       `json:"rejected"`
	Failed    int       `json:"failed"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

type tally struct {
	inserted, updated, rejected, failed int
}

func (t *tally) add(o survey.Outcome) {
	switch o {
	case survey.OutcomeInserted:
		t.inserted++
	case survey.OutcomeUpdated:
		t.updated++
	case survey.OutcomeRejected:
		t.rejected++
	default:
		t.failed++
	}
}

func (t *tally) synced() int    { return t.inserted + t.updated + t.rejected }
func (t *tally) conflicts() int { return t.updated + t.rejected }
func (t *tally) wrote() bool    { return t.inserted+t.updated > 0 }
