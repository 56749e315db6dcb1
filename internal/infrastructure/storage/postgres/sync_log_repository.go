package postgres

import (
	"context"
	"fmt"

	"farmsurvey/internal/domain/auditlog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"
)

// SyncLogRepository журнал синхронизаций; таблица только дописывается
type SyncLogRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewSyncLogRepository(pool *pgxpool.Pool, log *slog.Logger) *SyncLogRepository {
	return &SyncLogRepository{
		pool: pool,
		log:  log.With("component", "sync_log_repository"),
	}
}

func (r *SyncLogRepository) Append(ctx context.Context, e *auditlog.Entry) error {
	const query = `
		INSERT INTO sync_logs (
			event_type, user_id, device_id, survey_count, inserted_count, conflict_count,
			failed_count, success, error_message, ip_address, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), $11)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		e.EventType, e.UserID, e.DeviceID, e.SurveyCount, e.InsertedCount, e.ConflictCount,
		e.FailedCount, e.Success, e.ErrorMessage, e.IPAddress, e.DurationMillis,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("append sync log: %w", err)
	}
	return nil
}

// Recent последние записи журнала, новые первыми
func (r *SyncLogRepository) Recent(ctx context.Context, limit int) ([]auditlog.Entry, error) {
	const query = `
		SELECT id, event_type, user_id, device_id, survey_count, inserted_count, conflict_count,
			failed_count, success, COALESCE(error_message, ''), COALESCE(ip_address, ''),
			duration_ms, created_at
		FROM sync_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		r.log.Error("failed to read sync logs", "error", err)
		return nil, fmt.Errorf("recent sync logs: %w", err)
	}

	entries, err := pgx.CollectRows(rows, pgx.RowToStructByPos[auditlog.Entry])
	if err != nil {
		return nil, fmt.Errorf("scan sync logs: %w", err)
	}
	return entries, nil
}
