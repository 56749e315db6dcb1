package auditlog

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"
)

const (
	DefaultRecentLimit = 100
	MaxRecentLimit     = 1000
)

type Servicer interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

type Service struct {
	repo     Repository
	reporter Reporter
	log      *slog.Logger
}

// NewService создает сервис журнала; reporter может быть nil
func NewService(repo Repository, reporter Reporter, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		reporter: reporter,
		log:      log.With("component", "auditlog"),
	}
}

// Record добавляет запись в журнал.
// Ошибка хранилища логируется и уходит в операционный канал; вызывающий
// получает ее, но не должен превращать в ошибку синхронизации.
func (s *Service) Record(ctx context.Context, e Entry) error {
	if e.EventType == "" {
		e.EventType = EventSync
	}
	if e.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidEntry)
	}

	if err := s.repo.Append(ctx, &e); err != nil {
		s.log.Error("failed to write audit entry",
			"device_id", e.DeviceID, "user_id", e.UserID, "success", e.Success, "error", err)
		if s.reporter != nil {
			s.reporter.ReportAuditFailure(ctx, err, e)
		}
		return fmt.Errorf("append audit entry: %w", err)
	}

	return nil
}

// Recent последние записи журнала, новые первыми
func (s *Service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	entries, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent audit entries: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}
