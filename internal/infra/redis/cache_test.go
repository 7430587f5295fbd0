package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	cache := NewCache(client)

	cache.Set(ctx, "quiz:detail:1", []byte("payload"), time.Minute)
	if !mr.Exists("quiz:detail:1") {
		t.Fatalf("expected redis key to be set")
	}
	got, ok := cache.Get(ctx, "quiz:detail:1")
	if !ok || string(got) != "payload" {
		t.Fatalf("expected cached payload, got ok=%v %q", ok, got)
	}

	// Jittered TTL stays within [ttl, 1.1*ttl].
	mr.FastForward(70 * time.Second)
	if _, ok := cache.Get(ctx, "quiz:detail:1"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestCacheDeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	cache := NewCache(client)

	cache.Set(ctx, "quiz:detail:1", []byte("a"), time.Minute)
	cache.Set(ctx, "quiz:detail:2", []byte("b"), time.Minute)
	cache.Set(ctx, "quiz:list:approved", []byte("c"), time.Minute)

	cache.DeleteByPrefix(ctx, "quiz:detail:")
	if mr.Exists("quiz:detail:1") || mr.Exists("quiz:detail:2") {
		t.Fatalf("expected detail keys removed")
	}
	if !mr.Exists("quiz:list:approved") {
		t.Fatalf("expected list key untouched")
	}
}
