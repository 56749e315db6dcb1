package survey

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "survey-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/surveys",
		Summary:     "Список записей",
		Description: "Постраничный список с фильтрами, новые первыми",
		Tags:        []string{"surveys"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) nearbyOp() huma.Operation {
	return huma.Operation{
		OperationID: "survey-nearby",
		Method:      http.MethodGet,
		Path:        "/api/v1/surveys/nearby",
		Summary:     "Записи рядом с точкой",
		Description: "Записи с координатами в радиусе radius км, по возрастанию расстояния",
		Tags:        []string{"surveys"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) statsOp() huma.Operation {
	return huma.Operation{
		OperationID: "survey-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/surveys/stats",
		Summary:     "Сводная статистика",
		Tags:        []string{"surveys"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) exportOp() huma.Operation {
	return huma.Operation{
		OperationID: "survey-export",
		Method:      http.MethodGet,
		Path:        "/api/v1/surveys/export.csv",
		Summary:     "Выгрузка записей в CSV",
		Tags:        []string{"surveys"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) getOp() huma.Operation {
	return huma.Operation{
		OperationID: "survey-get",
		Method:      http.MethodGet,
		Path:        "/api/v1/surveys/{id}",
		Summary:     "Запись с фотографиями",
		Tags:        []string{"surveys"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "survey-delete",
		Method:      http.MethodDelete,
		Path:        "/api/v1/surveys/{id}",
		Summary:     "Удаление записи",
		Description: "Удаляет запись вместе со всеми ее фотографиями",
		Tags:        []string{"surveys"},
		Middlewares: h.writeMiddleware,
		Security:    []map[string][]string{{"bearer": {}}},
	}
}
