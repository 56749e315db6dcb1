package auditlog

import "context"

// Repository хранилище журнала; только добавление и чтение
type Repository interface {
	Append(ctx context.Context, e *Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Reporter операционный канал для сбоев записи журнала
type Reporter interface {
	ReportAuditFailure(ctx context.Context, err error, e Entry)
}
