package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"farmsurvey/internal/domain/survey"
	syncdomain "farmsurvey/internal/domain/sync"

	"golang.org/x/exp/slog"
)

// BatchSubmitter транспорт, доставляющий пакет на сервер
type BatchSubmitter interface {
	SubmitBatch(ctx context.Context, req syncdomain.BatchRequest) (*syncdomain.BatchResponse, error)
}

// Syncer отправляет локальную очередь на сервер.
// Одновременно выполняется не больше одной синхронизации.
type Syncer struct {
	storage Storage
	api     BatchSubmitter
	actor   func() string
	timeout time.Duration
	log     *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	inFlight bool
}

// NewSyncer создает синхронизатор; actor возвращает логин или пустую строку
func NewSyncer(storage Storage, api BatchSubmitter, actor func() string, timeout time.Duration, log *slog.Logger) *Syncer {
	return &Syncer{
		storage: storage,
		api:     api,
		actor:   actor,
		timeout: timeout,
		log:     log.With("component", "syncer"),
		now:     time.Now,
	}
}

// Sync отправляет все неотправленные записи одним пакетом.
// При любой ошибке очередь остается без изменений.
func (s *Syncer) Sync(ctx context.Context) (*SyncResult, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrSyncInProgress
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	result := &SyncResult{StartTime: s.now()}
	defer func() { result.Duration = s.now().Sub(result.StartTime) }()

	pending, err := s.storage.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения очереди: %w", err)
	}
	result.Submitted = len(pending)

	if len(pending) == 0 {
		s.log.Debug("Очередь пуста, синхронизация не требуется")
		s.remember(ctx, result.StartTime, nil)
		return result, nil
	}

	deviceID, err := s.storage.DeviceID(ctx)
	if err != nil {
		return nil, err
	}

	req := syncdomain.BatchRequest{
		DeviceID: deviceID,
		ActorID:  s.actorID(),
		Surveys:  make([]syncdomain.SurveyPayload, 0, len(pending)),
	}
	marks := make([]SyncedMark, 0, len(pending))
	for i := range pending {
		req.Surveys = append(req.Surveys, syncdomain.FromSurvey(&pending[i].Survey))
		marks = append(marks, SyncedMark{ClientID: pending[i].ClientID, Revision: pending[i].Revision})
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.log.Info("Начало синхронизации", "device_id", deviceID, "records", len(pending))

	resp, err := s.api.SubmitBatch(callCtx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !isConnectivity(err) {
			err = fmt.Errorf("%w: %w", ErrConnectivity, err)
		}
		s.log.Warn("Синхронизация не удалась", "error", err)
		s.remember(ctx, result.StartTime, err)
		return result, err
	}

	marked, err := s.storage.MarkSynced(ctx, marks)
	if err != nil {
		// сервер уже принял пакет; повторная отправка безопасна
		s.log.Error("Ошибка отметки отправленных записей", "error", err)
		s.remember(ctx, result.StartTime, err)
		return result, fmt.Errorf("ошибка обновления очереди: %w", err)
	}

	result.Synced = resp.SyncedCount
	result.Conflicts = resp.ConflictCount
	result.Failed = resp.FailedCount
	result.Marked = marked
	result.Message = resp.Message
	for _, r := range resp.Results {
		result.Items = append(result.Items, SyncItem{
			ClientID: r.ClientID,
			Outcome:  r.Outcome,
			ServerID: r.ServerID,
			Error:    r.Error,
		})
	}

	s.remember(ctx, result.StartTime, nil)
	s.log.Info("Синхронизация завершена",
		"synced", result.Synced,
		"conflicts", result.Conflicts,
		"failed", result.Failed,
		"marked", marked,
	)

	return result, nil
}

// Watch синхронизирует очередь с заданным интервалом до отмены ctx
func (s *Syncer) Watch(ctx context.Context, interval time.Duration, onResult func(*SyncResult, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		res, err := s.Sync(ctx)
		if onResult != nil && !errors.Is(err, ErrSyncInProgress) {
			onResult(res, err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Status состояние очереди и последней попытки
func (s *Syncer) Status(ctx context.Context) (*SyncStatus, error) {
	deviceID, err := s.storage.DeviceID(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.storage.Stats(ctx)
	if err != nil {
		return nil, err
	}

	st := &SyncStatus{
		DeviceID: deviceID,
		Actor:    s.actorID(),
		Pending:  stats.Pending,
	}
	st.LastAttempt = s.metaTime(ctx, metaLastAttempt)
	st.LastSuccess = s.metaTime(ctx, metaLastSuccess)
	st.LastError, _ = s.storage.GetMeta(ctx, metaLastError)
	return st, nil
}

func (s *Syncer) actorID() string {
	if s.actor != nil {
		if a := s.actor(); a != "" {
			return a
		}
	}
	return syncdomain.AnonymousActor
}

// remember сохраняет итог попытки; сбой записи только логируется
func (s *Syncer) remember(ctx context.Context, at time.Time, syncErr error) {
	stamp := survey.NormalizeTime(at).Format(time.RFC3339Nano)
	values := map[string]string{metaLastAttempt: stamp, metaLastError: ""}
	if syncErr != nil {
		values[metaLastError] = syncErr.Error()
	} else {
		values[metaLastSuccess] = stamp
	}

	for k, v := range values {
		if err := s.storage.SetMeta(context.WithoutCancel(ctx), k, v); err != nil {
			s.log.Warn("Не удалось сохранить состояние синхронизации", "key", k, "error", err)
		}
	}
}

func (s *Syncer) metaTime(ctx context.Context, key string) time.Time {
	v, err := s.storage.GetMeta(ctx, key)
	if err != nil || v == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
