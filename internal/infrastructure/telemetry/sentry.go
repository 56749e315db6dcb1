// Package telemetry отчеты об ошибках (Sentry) и трассировка (OpenTelemetry)
package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"farmsurvey/internal/app/server/config"
	"farmsurvey/internal/domain/auditlog"

	"github.com/getsentry/sentry-go"
	"golang.org/x/exp/slog"
)

const flushTimeout = 2 * time.Second

// InitSentry включает отправку событий, если задан DSN; возвращает функцию сброса буфера
func InitSentry(cfg config.Telemetry, env string) (enabled bool, flush func(), err error) {
	if cfg.SentryDSN == "" {
		return false, func() {}, nil
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: env,
		Release:     cfg.Release,
	})
	if err != nil {
		return false, func() {}, fmt.Errorf("sentry init: %w", err)
	}

	return true, func() { sentry.Flush(flushTimeout) }, nil
}

// FailureCounter счетчик неудачных записей журнала
type FailureCounter interface {
	AuditFailure()
}

// AuditReporter сообщает о потерянных записях журнала синхронизации
type AuditReporter struct {
	sentry  bool
	counter FailureCounter
	log     *slog.Logger
}

// NewAuditReporter создает репортер; counter может быть nil
func NewAuditReporter(sentryEnabled bool, counter FailureCounter, log *slog.Logger) *AuditReporter {
	return &AuditReporter{
		sentry:  sentryEnabled,
		counter: counter,
		log:     log.With("component", "audit_reporter"),
	}
}

func (r *AuditReporter) ReportAuditFailure(ctx context.Context, err error, e auditlog.Entry) {
	if r.counter != nil {
		r.counter.AuditFailure()
	}
	if !r.sentry {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		scope.SetTag("component", "sync_audit")
		scope.SetTag("device_id", e.DeviceID)
		scope.SetTag("user_id", e.UserID)
		scope.SetTag("survey_count", strconv.Itoa(e.SurveyCount))
		scope.SetTag("success", strconv.FormatBool(e.Success))
		hub.CaptureException(err)
	})

	r.log.Debug("audit failure reported", "device_id", e.DeviceID)
}
