package repository

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"foodhub/internal/domain/entity"
	"foodhub/internal/domain/repository"
	"foodhub/pkg/logger"
)

var (
	bucketCart    = []byte("cart")
	bucketSession = []byte("session")
)

const cartKey = "foodhub-cart"

// Store is the bbolt-backed client-side key/value storage shared by the
// cart and session repositories. One file per profile; concurrent processes
// sharing the file are last-writer-wins, same as browser tabs.
type Store struct {
	db *bolt.DB
}

func NewStore(dataDir string) (*Store, error) {
	dbPath := filepath.Join(dataDir, "foodhub.db")

	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketCart, bucketSession} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// BoltCartRepository persists the fallback cart as a single JSON array under
// a fixed key, mirroring the remote cart's item shape.
type BoltCartRepository struct {
	store *Store
}

func NewBoltCartRepository(store *Store) repository.LocalCartRepository {
	return &BoltCartRepository{store: store}
}

func (r *BoltCartRepository) Load() ([]entity.CartItem, error) {
	var raw []byte
	err := r.store.db.View(func(tx *bolt.Tx) error {
		if data := tx.Bucket(bucketCart).Get([]byte(cartKey)); data != nil {
			raw = append(raw, data...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []entity.CartItem{}, nil
	}

	var items []entity.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		// Corrupt data degrades to an empty cart, never an error.
		logger.Warn("failed to parse persisted cart, starting empty: %v", err)
		return []entity.CartItem{}, nil
	}
	return items, nil
}

func (r *BoltCartRepository) Save(items []entity.CartItem) error {
	if items == nil {
		items = []entity.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCart).Put([]byte(cartKey), data)
	})
}

func (r *BoltCartRepository) Exists() (bool, error) {
	var exists bool
	err := r.store.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(bucketCart).Get([]byte(cartKey)) != nil
		return nil
	})
	return exists, err
}

func (r *BoltCartRepository) Delete() error {
	return r.store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCart).Delete([]byte(cartKey))
	})
}
