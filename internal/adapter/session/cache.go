package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/appinventor-skill/internal/domain"
	"github.com/seu-repo/appinventor-skill/internal/ports"
)

const keyPrefix = "appinventor:session:"

// CacheStore keeps state as JSON in a ports.Cache keyed by session ID.
type CacheStore struct {
	cache ports.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewCacheStore(cache ports.Cache, ttl time.Duration, log *zap.Logger) *CacheStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CacheStore{
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

func (s *CacheStore) key(env *domain.RequestEnvelope) (string, error) {
	id := env.SessionID()
	if id == "" {
		return "", domain.ErrMissingSession
	}
	return keyPrefix + id, nil
}

func (s *CacheStore) Load(ctx context.Context, env *domain.RequestEnvelope) (domain.SessionState, error) {
	key, err := s.key(env)
	if err != nil {
		return domain.SessionState{}, err
	}

	raw, err := s.cache.Get(ctx, key)
	if errors.Is(err, ports.ErrCacheMiss) {
		return domain.SessionState{}, nil
	}
	if err != nil {
		return domain.SessionState{}, fmt.Errorf("load session %s: %w", env.SessionID(), err)
	}

	var state domain.SessionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return domain.SessionState{}, fmt.Errorf("decode session %s: %w", env.SessionID(), err)
	}
	return state, nil
}

func (s *CacheStore) Save(ctx context.Context, env *domain.RequestEnvelope, state domain.SessionState) error {
	key, err := s.key(env)
	if err != nil {
		return err
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", env.SessionID(), err)
	}
	if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
		return fmt.Errorf("save session %s: %w", env.SessionID(), err)
	}
	return nil
}

func (s *CacheStore) Delete(ctx context.Context, env *domain.RequestEnvelope) error {
	key, err := s.key(env)
	if err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete session %s: %w", env.SessionID(), err)
	}
	s.log.Debug("Session state deleted", zap.String("session_id", env.SessionID()))
	return nil
}
