package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/exp/slog"

	"farmsurvey/internal/domain/auditlog"
	"farmsurvey/internal/domain/survey"
)

var tracer = otel.Tracer("sync")

// Servicer интерфейс сервиса синхронизации
type Servicer interface {
	// Submit обрабатывает один пакет как одну транзакцию синхронизации
	Submit(ctx context.Context, req BatchRequest, meta RequestMeta) (*BatchResponse, error)

	// SubmitRaw разбирает JSON-тело пакета и передает его в Submit
	SubmitRaw(ctx context.Context, body []byte, meta RequestMeta) (*BatchResponse, error)

	// RecentLogs возвращает последние записи журнала синхронизации
	RecentLogs(ctx context.Context, limit int) ([]auditlog.Entry, error)
}

// ServiceConfig настройки сервиса синхронизации
type ServiceConfig struct {
	MaxBatchSize int
}

// Option подключает необязательных участников
type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithStatsInvalidator(i StatsInvalidator) Option {
	return func(s *Service) { s.stats = i }
}

// Service реализация сервиса синхронизации
type Service struct {
	surveys Upserter
	audit   auditlog.Servicer
	events  Publisher
	metrics Metrics
	stats   StatsInvalidator
	log     *slog.Logger
	config  *ServiceConfig
	now     func() time.Time
}

// NewService создает новый сервис синхронизации
func NewService(surveys Upserter, audit auditlog.Servicer, log *slog.Logger, config *ServiceConfig, opts ...Option) *Service {
	if config == nil {
		config = &ServiceConfig{MaxBatchSize: 500}
	}

	s := &Service{
		surveys: surveys,
		audit:   audit,
		metrics: nopMetrics{},
		log:     log.With("component", "sync_service"),
		config:  config,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit применяет записи пакета по одной в порядке поступления.
//
// Ошибки структуры пакета отклоняют его целиком до обработки записей.
// Ошибка отдельной записи помечает ее как failed и не прерывает пакет.
// Каждая попытка попадает в журнал, даже неудачная.
func (s *Service) Submit(ctx context.Context, req BatchRequest, meta RequestMeta) (*BatchResponse, error) {
	start := s.now()
	ctx, span := tracer.Start(ctx, "sync.Submit")
	defer span.End()

	actor := resolveActor(meta.Actor, req.ActorID)
	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		deviceID = strings.TrimSpace(meta.HeaderDeviceID)
	}

	span.SetAttributes(
		attribute.String("sync.device_id", deviceID),
		attribute.String("sync.actor", actor),
		attribute.Int("sync.submitted", len(req.Surveys)),
	)

	entry := auditlog.Entry{
		EventType:   auditlog.EventSync,
		UserID:      actor,
		DeviceID:    deviceID,
		SurveyCount: len(req.Surveys),
		IPAddress:   meta.RemoteAddr,
	}

	if err := s.validateBatch(&req, deviceID); err != nil {
		s.log.Warn("sync batch rejected", "device_id", deviceID, "actor", actor, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed batch")

		entry.ErrorMessage = err.Error()
		s.finish(ctx, entry, start, tally{})
		return nil, err
	}

	resp := &BatchResponse{
		Conflicts: []ConflictDescriptor{},
		Results:   make([]ItemResult, 0, len(req.Surveys)),
	}
	var t tally

	for i := range req.Surveys {
		item, stored := s.apply(ctx, &req.Surveys[i], deviceID, actor)
		t.add(item.Outcome)
		s.metrics.ObserveOutcome(item.Outcome)
		resp.Results = append(resp.Results, item)

		if item.Outcome.Conflict() {
			resp.Conflicts = append(resp.Conflicts, ConflictDescriptor{
				ClientID:   item.ClientID,
				DeviceID:   item.DeviceID,
				ServerID:   item.ServerID,
				FarmerName: stored.FarmerName,
				Resolution: item.Outcome,
			})
		}
	}

	resp.Status = "Ok"
	resp.Success = true
	resp.SyncedCount = t.synced()
	resp.ConflictCount = t.conflicts()
	resp.FailedCount = t.failed
	resp.Message = fmt.Sprintf("Successfully synced %d surveys", resp.SyncedCount)
	if t.failed > 0 {
		resp.Message += fmt.Sprintf(", %d failed", t.failed)
	}

	if t.wrote() && s.stats != nil {
		s.stats.InvalidateStatistics()
	}

	entry.Success = true
	entry.InsertedCount = t.inserted
	entry.ConflictCount = t.conflicts()
	entry.FailedCount = t.failed
	s.finish(ctx, entry, start, t)

	span.SetAttributes(
		attribute.Int("sync.inserted", t.inserted),
		attribute.Int("sync.updated", t.updated),
		attribute.Int("sync.rejected", t.rejected),
		attribute.Int("sync.failed", t.failed),
	)

	s.log.Info("sync completed",
		"device_id", deviceID,
		"actor", actor,
		"submitted", len(req.Surveys),
		"inserted", t.inserted,
		"updated", t.updated,
		"rejected", t.rejected,
		"failed", t.failed,
	)

	return resp, nil
}

// SubmitRaw разбирает тело запроса и передает пакет в Submit.
// Тело, которое не разбирается, отклоняется как неверный пакет и тоже попадает в журнал.
func (s *Service) SubmitRaw(ctx context.Context, body []byte, meta RequestMeta) (*BatchResponse, error) {
	req, err := DecodeBatch(body)
	if err == nil {
		return s.Submit(ctx, req, meta)
	}

	start := s.now()
	actor := resolveActor(meta.Actor, req.ActorID)
	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		deviceID = strings.TrimSpace(meta.HeaderDeviceID)
	}

	s.log.Warn("sync batch rejected", "device_id", deviceID, "actor", actor, "error", err)

	s.finish(ctx, auditlog.Entry{
		EventType:    auditlog.EventSync,
		UserID:       actor,
		DeviceID:     deviceID,
		SurveyCount:  len(req.Surveys),
		IPAddress:    meta.RemoteAddr,
		ErrorMessage: err.Error(),
	}, start, tally{})

	return nil, err
}

func (s *Service) RecentLogs(ctx context.Context, limit int) ([]auditlog.Entry, error) {
	return s.audit.Recent(ctx, limit)
}

func (s *Service) validateBatch(req *BatchRequest, deviceID string) error {
	if req.Surveys == nil {
		return fmt.Errorf("%w: surveys must be a list", ErrMalformedBatch)
	}
	if deviceID == "" {
		return fmt.Errorf("%w: device_id is required", ErrMalformedBatch)
	}
	if s.config.MaxBatchSize > 0 && len(req.Surveys) > s.config.MaxBatchSize {
		return fmt.Errorf("%w: %w: %d records, limit %d",
			ErrMalformedBatch, ErrBatchTooLarge, len(req.Surveys), s.config.MaxBatchSize)
	}

	for i := range req.Surveys {
		p := &req.Surveys[i]
		if strings.TrimSpace(p.ClientID) == "" {
			return fmt.Errorf("%w: surveys[%d].client_id is required", ErrMalformedBatch, i)
		}
		if p.ClientTimestamp.IsZero() {
			return fmt.Errorf("%w: surveys[%d].client_timestamp is required", ErrMalformedBatch, i)
		}
	}

	return nil
}

// apply прогоняет одну запись через валидацию и разрешение конфликта
func (s *Service) apply(ctx context.Context, p *SurveyPayload, deviceID, actor string) (ItemResult, *survey.Survey) {
	item := ItemResult{ClientID: strings.TrimSpace(p.ClientID), DeviceID: deviceID}
	if p.DeviceID != "" {
		item.DeviceID = strings.TrimSpace(p.DeviceID)
	}

	fail := func(err error) (ItemResult, *survey.Survey) {
		s.log.Warn("failed to apply survey",
			"client_id", item.ClientID, "device_id", item.DeviceID, "error", err)
		item.Outcome = survey.OutcomeFailed
		item.Error = err.Error()
		return item, nil
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	rec, err := p.toSurvey(deviceID, actor)
	if err != nil {
		return fail(err)
	}
	if err := survey.Validate(rec); err != nil {
		return fail(err)
	}

	res, err := s.surveys.Upsert(ctx, rec, actor)
	if err != nil {
		return fail(err)
	}

	item.Outcome = res.Outcome
	item.ServerID = res.Survey.ID
	return item, res.Survey
}

// finish пишет журнал, метрики и событие; сбои здесь не влияют на результат
func (s *Service) finish(ctx context.Context, entry auditlog.Entry, start time.Time, t tally) {
	elapsed := s.now().Sub(start)
	entry.DurationMillis = elapsed.Milliseconds()

	// запись в журнал должна состояться даже если клиент уже отключился
	bg := context.WithoutCancel(ctx)

	if err := s.audit.Record(bg, entry); err != nil {
		s.log.Warn("sync audit entry not written", "device_id", entry.DeviceID, "error", err)
	}

	s.metrics.ObserveTransaction(entry.Success, elapsed)

	if s.events == nil {
		return
	}

	ev := Event{
		Type:      EventTypeSync,
		DeviceID:  entry.DeviceID,
		UserID:    entry.UserID,
		Submitted: entry.SurveyCount,
		Inserted:  t.inserted,
		Updated:   t.updated,
		Rejected:  t.rejected,
		Failed:    t.failed,
		Success:   entry.Success,
		Error:     entry.ErrorMessage,
		At:        s.now().UTC(),
	}
	if !entry.Success {
		ev.Type = EventTypeFail
	}
	if err := s.events.Publish(bg, ev); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("failed to publish sync event", "error", err)
	}
}

func resolveActor(authenticated, claimed string) string {
	if a := strings.TrimSpace(authenticated); a != "" {
		return a
	}
	if c := strings.TrimSpace(claimed); c != "" {
		return c
	}
	return AnonymousActor
}
