package sync

import (
	"context"
	"errors"
	"net/http"

	"farmsurvey/internal/app/server/api/http/middleware/auth"
	syncdomain "farmsurvey/internal/domain/sync"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

type Handler struct {
	service        syncdomain.Servicer
	log            *slog.Logger
	middleware     huma.Middlewares
	readMiddleware huma.Middlewares
}

// NewHandler middleware применяется к приему пакетов, readMiddleware к чтению журнала
func NewHandler(service syncdomain.Servicer, log *slog.Logger, middleware, readMiddleware huma.Middlewares) *Handler {
	return &Handler{
		service:        service,
		log:            log.With("component", "sync_handler"),
		middleware:     middleware,
		readMiddleware: readMiddleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.submitOp(), h.submit)
	huma.Register(api, h.logsOp(), h.logs)
}

func (h *Handler) submit(ctx context.Context, input *submitInput) (*submitOutput, error) {
	meta := syncdomain.RequestMeta{
		Actor:          auth.Actor(ctx),
		RemoteAddr:     input.RemoteAddr,
		HeaderDeviceID: input.DeviceID,
	}

	response, err := h.service.SubmitRaw(ctx, input.RawBody, meta)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, syncdomain.ErrBatchTooLarge):
			status = http.StatusRequestEntityTooLarge
		case errors.Is(err, syncdomain.ErrMalformedBatch):
			status = http.StatusBadRequest
		default:
			h.log.Error("sync batch failed", "error", err)
		}

		return &submitOutput{
			Status: status,
			Body: syncdomain.BatchResponse{
				Status:    "Error",
				Success:   false,
				Conflicts: []syncdomain.ConflictDescriptor{},
				Results:   []syncdomain.ItemResult{},
				Error:     err.Error(),
			},
		}, nil
	}

	return &submitOutput{
		Status: http.StatusOK,
		Body:   *response,
	}, nil
}

func (h *Handler) logs(ctx context.Context, input *logsInput) (*logsOutput, error) {
	entries, err := h.service.RecentLogs(ctx, input.Limit)
	if err != nil {
		h.log.Error("failed to read sync logs", "error", err)
		return &logsOutput{
			Body: LogsResponse{Status: "Error", Error: err.Error(), Logs: nil},
		}, nil
	}

	return &logsOutput{
		Body: LogsResponse{Status: "Ok", Logs: entries},
	}, nil
}
