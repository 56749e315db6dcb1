package sync

import (
	"context"
	"time"

	"farmsurvey/internal/domain/survey"
)

// Upserter часть репозитория записей, нужная синхронизации
type Upserter interface {
	Upsert(ctx context.Context, s *survey.Survey, actor string) (*survey.UpsertResult, error)
}

// Publisher рассылает события синхронизации наблюдателям
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Metrics счетчики синхронизации
type Metrics interface {
	ObserveTransaction(success bool, d time.Duration)
	ObserveOutcome(o survey.Outcome)
}

// StatsInvalidator сбрасывает закешированные агрегаты
type StatsInvalidator interface {
	InvalidateStatistics()
}

type nopMetrics struct{}

func (nopMetrics) ObserveTransaction(bool, time.Duration) {}
func (nopMetrics) ObserveOutcome(survey.Outcome)          {}
