package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farmsurvey/internal/domain/session"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"
)

type SessionRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewSessionRepository(pool *pgxpool.Pool, log *slog.Logger) *SessionRepository {
	return &SessionRepository{
		pool: pool,
		log:  log.With("component", "session_repository"),
	}
}

func (r *SessionRepository) Create(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (user_id, token_hash, expires_at)
         VALUES ($1, decode($2, 'hex'), $3)`,
		userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Validate(ctx context.Context, tokenHash string) (session.Identity, error) {
	var id session.Identity
	err := r.pool.QueryRow(ctx,
		`SELECT u.id, u.login
         FROM sessions s
         JOIN users u ON u.id = s.user_id
         WHERE s.token_hash = decode($1, 'hex') AND s.expires_at > NOW()`,
		tokenHash).Scan(&id.UserID, &id.Login)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return id, session.ErrInvalidSession
		}
		r.log.Error("failed to validate session", "error", err)
		return id, fmt.Errorf("validate session: %w", err)
	}
	return id, nil
}
