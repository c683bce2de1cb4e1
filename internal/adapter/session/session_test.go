package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/appinventor-skill/internal/domain"
	"github.com/seu-repo/appinventor-skill/internal/mocks"
)

func envelope(sessionID string, attrs map[string]json.RawMessage) *domain.RequestEnvelope {
	return &domain.RequestEnvelope{
		Session: &domain.Session{SessionID: sessionID, Attributes: attrs},
		Request: domain.Request{Type: domain.RequestTypeIntent},
	}
}

func TestEnvelopeStore_LoadsAttributes(t *testing.T) {
	env := envelope("s-1", map[string]json.RawMessage{
		"app_name":    json.RawMessage(`"Weather Tracker"`),
		"description": json.RawMessage(`"create an app with maps"`),
		"unrelated":   json.RawMessage(`42`),
	})

	state, err := NewEnvelopeStore().Load(context.Background(), env)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if state.Name != "Weather Tracker" || state.Description != "create an app with maps" {
		t.Errorf("unexpected state %+v", state)
	}
}

func TestEnvelopeStore_NoSessionIsEmpty(t *testing.T) {
	state, err := NewEnvelopeStore().Load(context.Background(), &domain.RequestEnvelope{})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if state != (domain.SessionState{}) {
		t.Errorf("expected empty state, got %+v", state)
	}
}

func TestEnvelopeStore_MalformedAttribute(t *testing.T) {
	env := envelope("s-1", map[string]json.RawMessage{"app_name": json.RawMessage(`{"x":1}`)})

	if _, err := NewEnvelopeStore().Load(context.Background(), env); err == nil {
		t.Error("expected decode error")
	}
}

func TestCacheStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := mocks.NewMockCache()
	store := NewCacheStore(cache, 10*time.Minute, zap.NewNop())
	env := envelope("s-42", nil)

	state, err := store.Load(ctx, env)
	if err != nil {
		t.Fatalf("expected no error on miss, got %v", err)
	}
	if state != (domain.SessionState{}) {
		t.Fatalf("expected empty state on miss, got %+v", state)
	}

	want := domain.SessionState{Name: "Weather Tracker"}
	if err := store.Save(ctx, env, want); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cache.TTLs["appinventor:session:s-42"] != 10*time.Minute {
		t.Errorf("expected ttl to be applied, got %v", cache.TTLs["appinventor:session:s-42"])
	}

	got, err := store.Load(ctx, env)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	if err := store.Delete(ctx, env); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cache.Has("appinventor:session:s-42") {
		t.Error("expected session key to be deleted")
	}
}

func TestCacheStore_RequiresSessionID(t *testing.T) {
	store := NewCacheStore(mocks.NewMockCache(), time.Minute, zap.NewNop())

	_, err := store.Load(context.Background(), &domain.RequestEnvelope{})
	if !errors.Is(err, domain.ErrMissingSession) {
		t.Errorf("expected ErrMissingSession, got %v", err)
	}
}

func TestCacheStore_CacheFailure(t *testing.T) {
	cache := mocks.NewMockCache()
	cache.GetFunc = func(ctx context.Context, key string) (string, error) {
		return "", errors.New("connection refused")
	}
	store := NewCacheStore(cache, time.Minute, zap.NewNop())

	if _, err := store.Load(context.Background(), envelope("s-1", nil)); err == nil {
		t.Error("expected error when cache fails")
	}
}
