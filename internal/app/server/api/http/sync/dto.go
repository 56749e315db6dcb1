package sync

import (
	"farmsurvey/internal/domain/auditlog"
	syncdomain "farmsurvey/internal/domain/sync"

	"github.com/danielgtaylor/huma/v2"
)

type submitInput struct {
	DeviceID   string `header:"X-Device-ID" doc:"Идентификатор устройства, если его нет в теле"`
	RemoteAddr string
	// тело разбирается сервисом, чтобы неверный пакет тоже попал в журнал
	RawBody []byte
}

// Resolve сохраняет адрес клиента для журнала синхронизации
func (i *submitInput) Resolve(ctx huma.Context) []error {
	i.RemoteAddr = ctx.RemoteAddr()
	return nil
}

type submitOutput struct {
	Status int
	Body   syncdomain.BatchResponse
}

type logsInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"1000" default:"100" doc:"Сколько последних записей вернуть"`
}

type logsOutput struct {
	Body LogsResponse
}

type LogsResponse struct {
	Status string           `json:"status"`
	Error  string           `json:"error,omitempty"`
	Logs   []auditlog.Entry `json:"logs"`
}
