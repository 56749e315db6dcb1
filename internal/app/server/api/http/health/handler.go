package health

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

const pingTimeout = 2 * time.Second

// Pinger проверка соединения с базой
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	db         Pinger
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(db Pinger, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		db:         db,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(ctx context.Context, _ *Input) (*Output, error) {
	h.log.Debug("health check request received")

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.Warn("health check: database unavailable", "error", err)
		return &Output{
			Status: http.StatusServiceUnavailable,
			Body: Response{
				Status:   "Error",
				Database: "disconnected",
				Time:     time.Now().UTC(),
				Error:    err.Error(),
			},
		}, nil
	}

	return &Output{
		Status: http.StatusOK,
		Body: Response{
			Status:   "OK",
			Database: "connected",
			Time:     time.Now().UTC(),
		},
	}, nil
}
