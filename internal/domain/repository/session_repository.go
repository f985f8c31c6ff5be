package repository

import (
	"foodhub/internal/domain/entity"
)

// SessionRepository holds the bearer token and user profile written by the
// login flow. An empty token means the principal is anonymous.
type SessionRepository interface {
	Token() (string, error)
	User() (*entity.User, error)
	Save(token string, user *entity.User) error
	Clear() error
}
