package session

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	sessionBucket = []byte("session")
	tokenKey      = []byte("token")
)

// BoltStore is a file-backed Store, durable across process restarts.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create session bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(_ context.Context) (string, error) {
	var token string
	err := s.db.View(func(tx *bbolt.Tx) error {
		if val := tx.Bucket(sessionBucket).Get(tokenKey); val != nil {
			token = string(val)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("read session token: %w", err)
	}
	return token, nil
}

func (s *BoltStore) Set(_ context.Context, token string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Put(tokenKey, []byte(token))
	})
	if err != nil {
		return fmt.Errorf("store session token: %w", err)
	}
	return nil
}

func (s *BoltStore) Clear(_ context.Context) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete(tokenKey)
	})
	if err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
