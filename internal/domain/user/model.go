package user

import "time"

// User учетная запись счетчика (enumerator), проводящего интервью
type User struct {
	ID        int
	Login     string
	Password  string // bcrypt-хэш
	CreatedAt time.Time
}
