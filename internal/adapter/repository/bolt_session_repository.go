package repository

import (
	"encoding/json"

	bolt "go.etcd.io/bbolt"

	"foodhub/internal/domain/entity"
	"foodhub/internal/domain/repository"
	"foodhub/pkg/logger"
)

const (
	tokenKey = "token"
	userKey  = "user"
)

// BoltSessionRepository keeps the bearer token and serialized user profile
// written by the login flow. Both subsystems consult it to decide
// authenticated vs anonymous behavior.
type BoltSessionRepository struct {
	store *Store
}

func NewBoltSessionRepository(store *Store) repository.SessionRepository {
	return &BoltSessionRepository{store: store}
}

func (r *BoltSessionRepository) Token() (string, error) {
	var token string
	err := r.store.db.View(func(tx *bolt.Tx) error {
		if data := tx.Bucket(bucketSession).Get([]byte(tokenKey)); data != nil {
			token = string(data)
		}
		return nil
	})
	return token, err
}

func (r *BoltSessionRepository) User() (*entity.User, error) {
	var raw []byte
	err := r.store.db.View(func(tx *bolt.Tx) error {
		if data := tx.Bucket(bucketSession).Get([]byte(userKey)); data != nil {
			raw = append(raw, data...)
		}
		return nil
	})
	if err != nil || raw == nil {
		return nil, err
	}

	var user entity.User
	if err := json.Unmarshal(raw, &user); err != nil {
		logger.Warn("failed to parse stored user profile: %v", err)
		return nil, nil
	}
	return &user, nil
}

func (r *BoltSessionRepository) Save(token string, user *entity.User) error {
	return r.store.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if err := b.Put([]byte(tokenKey), []byte(token)); err != nil {
			return err
		}
		if user == nil {
			return b.Delete([]byte(userKey))
		}
		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		return b.Put([]byte(userKey), data)
	})
}

func (r *BoltSessionRepository) Clear() error {
	return r.store.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if err := b.Delete([]byte(tokenKey)); err != nil {
			return err
		}
		return b.Delete([]byte(userKey))
	})
}
