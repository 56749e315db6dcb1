package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"farmsurvey/internal/domain/session"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

type Auth struct {
	session session.Servicer
	log     *slog.Logger
}

func New(session session.Servicer, log *slog.Logger) *Auth {
	return &Auth{
		session: session,
		log:     log.With("component", "auth_middleware"),
	}
}

type contextKey string

const identityKey contextKey = "identity"

// Required пропускает только запросы с действующим Bearer-токеном
func (a *Auth) Required() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		token, ok := bearer(ctx.Header("Authorization"))
		if !ok {
			a.log.Debug("missing bearer token", "path", ctx.URL().Path)
			unauthorized(ctx)
			return
		}

		identity, err := a.session.Validate(ctx.Context(), token)
		if err != nil {
			a.logValidation(err)
			unauthorized(ctx)
			return
		}

		next(huma.WithContext(ctx, WithIdentity(ctx.Context(), identity)))
	}
}

// Optional проверяет токен, если он есть; без токена запрос идет дальше анонимно.
// Недействительный токен все равно отклоняется.
func (a *Auth) Optional() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		header := ctx.Header("Authorization")
		if header == "" {
			next(ctx)
			return
		}

		token, ok := bearer(header)
		if !ok {
			unauthorized(ctx)
			return
		}

		identity, err := a.session.Validate(ctx.Context(), token)
		if err != nil {
			a.logValidation(err)
			unauthorized(ctx)
			return
		}

		next(huma.WithContext(ctx, WithIdentity(ctx.Context(), identity)))
	}
}

func (a *Auth) logValidation(err error) {
	if errors.Is(err, session.ErrInvalidSession) {
		a.log.Debug("invalid session token")
		return
	}
	a.log.Error("validate session", "error", err)
}

func bearer(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

func unauthorized(ctx huma.Context) {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.SetStatus(http.StatusUnauthorized)
	_ = json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{
		"status": "Error",
		"error":  "Unauthorized",
	})
}

func WithIdentity(ctx context.Context, identity session.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity пользователь запроса; ok=false для анонимного запроса
func GetIdentity(ctx context.Context) (session.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(session.Identity)
	return identity, ok
}

// Actor логин пользователя запроса или пустая строка
func Actor(ctx context.Context) string {
	if identity, ok := GetIdentity(ctx); ok {
		return identity.Login
	}
	return ""
}
