package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"EdgarPull/internal/domain/repository"
	"EdgarPull/pkg/cache"
)

// storedFiling is the envelope persisted per cache slot. Credits are kept
// with the payload so a later read can tell what the entry cost.
type storedFiling struct {
	Payload        []byte    `json:"payload"`
	StoredAt       time.Time `json:"storedAt"`
	CreditsCharged int       `json:"creditsCharged"`
}

// CacheFilingStore implements FilingStore on top of a cache.Service, which
// covers both the in-memory and the Redis backend.
type CacheFilingStore struct {
	cache  cache.Service
	closer func() error
}

// NewCacheFilingStore creates a new CacheFilingStore instance. closer may be
// nil for backends without a connection to release.
func NewCacheFilingStore(c cache.Service, closer func() error) repository.FilingStore {
	return &CacheFilingStore{cache: c, closer: closer}
}

func (s *CacheFilingStore) Get(ctx context.Context, userID, dataType, key string) ([]byte, error) {
	var raw string
	if err := s.cache.Get(ctx, filingKey(userID, dataType, key), &raw); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, repository.ErrFilingNotCached
		}
		return nil, fmt.Errorf("filing store get: %w", err)
	}
	var env storedFiling
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, fmt.Errorf("filing store decode: %w", err)
	}
	return env.Payload, nil
}

func (s *CacheFilingStore) Put(ctx context.Context, userID, dataType, key string, payload []byte, ttl time.Duration, creditsCharged int) error {
	env := storedFiling{
		Payload:        payload,
		StoredAt:       time.Now(),
		CreditsCharged: creditsCharged,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("filing store marshal: %w", err)
	}
	if err := s.cache.Set(ctx, filingKey(userID, dataType, key), string(data), ttl); err != nil {
		return fmt.Errorf("filing store put: %w", err)
	}
	return nil
}

func (s *CacheFilingStore) Health(ctx context.Context) error {
	_, err := s.cache.Exists(ctx, filingKey("health", "probe", "probe"))
	return err
}

func (s *CacheFilingStore) Close() error {
	if s.closer != nil {
		return s.closer()
	}
	return nil
}

func filingKey(userID, dataType, key string) string {
	return cache.GenerateKeyWithParams("filings", userID, dataType, key)
}
