package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis failed: %v", err)
	}
	UseClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	t.Cleanup(func() {
		_ = Close()
		mr.Close()
	})
	return mr
}

func TestDisabledCacheIsNoop(t *testing.T) {
	_ = Close()
	var dest map[string]string
	hit, err := GetJSON(context.Background(), "k", &dest)
	if err != nil || hit {
		t.Fatalf("disabled get want miss got hit=%v err=%v", hit, err)
	}
	if err := SetJSON(context.Background(), "k", "v", time.Minute); err != nil {
		t.Fatalf("disabled set should be noop: %v", err)
	}
	if err := Ping(context.Background()); err != nil {
		t.Fatalf("disabled ping should be nil: %v", err)
	}
}

func TestJSONRoundTripWithPrefix(t *testing.T) {
	mr := setupTestRedis(t)
	ctx := context.Background()
	type snapshot struct {
		Name  string `json:"name"`
		Stock int    `json:"stock"`
	}
	if err := SetJSON(ctx, "catalog:product:1", snapshot{Name: "A", Stock: 3}, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if !mr.Exists("mb:catalog:product:1") {
		t.Fatalf("key should carry default prefix, keys=%v", mr.Keys())
	}
	var got snapshot
	hit, err := GetJSON(ctx, "catalog:product:1", &got)
	if err != nil || !hit || got.Name != "A" || got.Stock != 3 {
		t.Fatalf("get unexpected hit=%v got=%+v err=%v", hit, got, err)
	}
	if err := Del(ctx, "catalog:product:1"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	hit, _ = GetJSON(ctx, "catalog:product:1", &got)
	if hit {
		t.Fatalf("deleted key should miss")
	}
	if err := Ping(ctx); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}
