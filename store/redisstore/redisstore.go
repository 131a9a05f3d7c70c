// Package redisstore persists account documents in Redis as JSON values.
// Create relies on SETNX and Update on SETXX, so both carry the atomic
// create-if-absent / update-if-present semantics CredentialStore requires.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	authgate "github.com/kesparza-dev/authgate"
)

const userKeyPrefix = "ag:user:"

// Store is a Redis-backed credential store. Documents never expire.
type Store struct {
	redis redis.UniversalClient
}

// New creates a store on top of the given client. The store never closes
// the client.
func New(client redis.UniversalClient) *Store {
	return &Store{redis: client}
}

func key(email string) string {
	return userKeyPrefix + email
}

func (s *Store) Get(ctx context.Context, email string) (authgate.UserRecord, error) {
	data, err := s.redis.Get(ctx, key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return authgate.UserRecord{}, authgate.ErrUserNotFound
		}
		return authgate.UserRecord{}, fmt.Errorf("%w: %v", authgate.ErrStoreUnavailable, err)
	}

	var record authgate.UserRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return authgate.UserRecord{}, fmt.Errorf("%w: %v", authgate.ErrStoreUnavailable, err)
	}
	return record, nil
}

func (s *Store) Create(ctx context.Context, record authgate.UserRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: %v", authgate.ErrStoreUnavailable, err)
	}

	created, err := s.redis.SetNX(ctx, key(record.Email), data, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", authgate.ErrStoreUnavailable, err)
	}
	if !created {
		return authgate.ErrAccountExists
	}
	return nil
}

func (s *Store) Update(ctx context.Context, record authgate.UserRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: %v", authgate.ErrStoreUnavailable, err)
	}

	updated, err := s.redis.SetXX(ctx, key(record.Email), data, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", authgate.ErrStoreUnavailable, err)
	}
	if !updated {
		return authgate.ErrUserNotFound
	}
	return nil
}
