package user

import (
	"context"
	"errors"

	"farmsurvey/internal/domain/session"
	"farmsurvey/internal/domain/user"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

type Handler struct {
	service    user.Servicer
	session    session.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service user.Servicer, session session.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		session:    session,
		log:        log.With("component", "user_handler"),
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.loginOp(), h.login)
}

func (h *Handler) register(ctx context.Context, input *registerInput) (*registerOutput, error) {
	userID, err := h.service.Register(ctx, input.Body.Login, input.Body.Password)
	if err != nil {
		msg := err.Error()
		if !errors.Is(err, user.ErrInvalidInput) && !errors.Is(err, user.ErrLoginTaken) {
			h.log.Error("register failed", "login", input.Body.Login, "error", err)
			msg = "registration failed"
		}
		return &registerOutput{
			Body: RegisterResponse{Status: "Error", Error: msg},
		}, nil
	}

	return &registerOutput{
		Body: RegisterResponse{ID: userID, Status: "Ok"},
	}, nil
}

func (h *Handler) login(ctx context.Context, input *loginInput) (*loginOutput, error) {
	u, err := h.service.Authenticate(ctx, input.Body.Login, input.Body.Password)
	if err != nil {
		if !errors.Is(err, user.ErrInvalidAuth) {
			h.log.Error("authenticate failed", "login", input.Body.Login, "error", err)
		}
		return &loginOutput{
			Body: LoginResponse{Status: "Error", Error: "Invalid credentials"},
		}, nil
	}

	token, err := h.session.Create(ctx, u.ID)
	if err != nil {
		h.log.Error("create session failed", "user_id", u.ID, "error", err)
		return &loginOutput{
			Body: LoginResponse{Status: "Error", Error: "create session failed"},
		}, nil
	}

	return &loginOutput{
		Body: LoginResponse{
			Token:     token,
			Login:     u.Login,
			ExpiresIn: int(session.TTL.Seconds()),
			Status:    "Ok",
		},
	}, nil
}
