package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/appinventor-skill/internal/ports"
)

func TestLocalCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(time.Hour, zap.NewNop())
	defer c.Close()

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("expected 'v', got '%s' (%v)", got, err)
	}

	c.Delete(ctx, "k")
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ports.ErrCacheMiss) {
		t.Errorf("expected cache miss after delete, got %v", err)
	}
}

func TestLocalCache_MarshalsStructs(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(time.Hour, zap.NewNop())
	defer c.Close()

	c.Set(ctx, "s", struct {
		Name string `json:"name"`
	}{Name: "x"}, 0)
	c.Set(ctx, "b", []byte("raw"), 0)

	if got, _ := c.Get(ctx, "s"); got != `{"name":"x"}` {
		t.Errorf("unexpected struct encoding: %s", got)
	}
	if got, _ := c.Get(ctx, "b"); got != "raw" {
		t.Errorf("unexpected bytes value: %s", got)
	}
}

func TestLocalCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(time.Hour, zap.NewNop())
	defer c.Close()

	c.Set(ctx, "short", "v", 10*time.Millisecond)
	c.Set(ctx, "forever", "v", 0)

	time.Sleep(20 * time.Millisecond)

	if _, err := c.Get(ctx, "short"); !errors.Is(err, ports.ErrCacheMiss) {
		t.Errorf("expected expired key to miss, got %v", err)
	}
	if n := c.evictExpired(time.Now()); n != 1 {
		t.Errorf("expected 1 eviction, got %d", n)
	}
	if _, err := c.Get(ctx, "forever"); err != nil {
		t.Errorf("expected key without ttl to stay, got %v", err)
	}
}

func TestLocalCache_CloseTwice(t *testing.T) {
	c := NewLocalCache(time.Hour, zap.NewNop())
	c.Close()
	c.Close()
}
