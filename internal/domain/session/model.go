package session

import (
	"errors"
	"time"
)

// TTL срок жизни токена сессии
const TTL = 24 * time.Hour

var ErrInvalidSession = errors.New("invalid session")

// Identity пользователь, которому принадлежит действующая сессия
type Identity struct {
	UserID int
	Login  string
}
