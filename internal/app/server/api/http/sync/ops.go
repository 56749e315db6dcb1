package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) submitOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-submit",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync",
		Summary:     "Пакетная синхронизация записей",
		Description: "Принимает все неотправленные записи устройства. Каждая запись применяется " +
			"по паре (client_id, device_id): новая вставляется, более свежая заменяет сохраненную, " +
			"прочие отклоняются. Ошибка одной записи не прерывает пакет. " +
			"Тело вида {device_id, actor_id, surveys: [...]}; неверный пакет отклоняется целиком с кодом 400.",
		Tags:          []string{"sync"},
		Middlewares:   h.middleware,
		MaxBodyBytes:  64 << 20,
		DefaultStatus: http.StatusOK,
	}
}

func (h *Handler) logsOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-logs",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/logs",
		Summary:     "Журнал синхронизаций",
		Description: "Последние записи журнала, новые первыми",
		Tags:        []string{"sync"},
		Middlewares: h.readMiddleware,
		Security:    []map[string][]string{{"bearer": {}}},
	}
}
