package kv

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return NewRedisStoreFromClient(client)
}

func TestRedisStore_SetGetRemove(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	if err := store.SetItem(ctx, "search_cache", `[{"query":"cafe"}]`); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, ok, err := store.GetItem(ctx, "search_cache")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected key to be present")
	}
	if value != `[{"query":"cafe"}]` {
		t.Fatalf("unexpected value: %s", value)
	}

	if err := store.RemoveItem(ctx, "search_cache"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	_, ok, err = store.GetItem(ctx, "search_cache")
	if err != nil {
		t.Fatalf("get after remove: %v", err)
	}
	if ok {
		t.Fatal("expected key to be gone")
	}
}

func TestRedisStore_GetMissingKey(t *testing.T) {
	store := newTestRedisStore(t)

	_, ok, err := store.GetItem(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected miss for absent key")
	}
}

func TestRedisStore_RemoveAbsentKeyIsNoop(t *testing.T) {
	store := newTestRedisStore(t)

	if err := store.RemoveItem(context.Background(), "absent"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
}

func TestNamespacedStore_IsolatesSessions(t *testing.T) {
	backend := NewMemoryStore()
	ctx := context.Background()

	a := Namespaced(backend, "session-a")
	b := Namespaced(backend, "session-b")

	if err := a.SetItem(ctx, "search_history", "a-data"); err != nil {
		t.Fatalf("set: %v", err)
	}

	if _, ok, _ := b.GetItem(ctx, "search_history"); ok {
		t.Fatal("expected other namespace to miss")
	}

	value, ok, _ := a.GetItem(ctx, "search_history")
	if !ok || value != "a-data" {
		t.Fatalf("expected a-data, got %q (present=%v)", value, ok)
	}

	if err := b.RemoveItem(ctx, "search_history"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := a.GetItem(ctx, "search_history"); !ok {
		t.Fatal("remove in one namespace must not touch another")
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.SetItem(ctx, "k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.SetItem(ctx, "k", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	value, ok, _ := store.GetItem(ctx, "k")
	if !ok || value != "v2" {
		t.Fatalf("expected v2, got %q (present=%v)", value, ok)
	}

	if err := store.RemoveItem(ctx, "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := store.GetItem(ctx, "k"); ok {
		t.Fatal("expected key removed")
	}
}
