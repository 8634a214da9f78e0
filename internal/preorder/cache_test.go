package preorder

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestCacheServesFromMemoryInsideTTL(t *testing.T) {
	var loads int32
	load := func(_ context.Context, shop string) ([]Setting, error) {
		atomic.AddInt32(&loads, 1)
		return []Setting{{ID: "a1", ShopDomain: shop}}, nil
	}
	c := NewCache(load, time.Minute, 8)

	for i := 0; i < 3; i++ {
		records, err := c.Get(context.Background(), "test.myshopify.com")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("got %d records", len(records))
		}
	}
	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Errorf("expected 1 load, got %d", n)
	}
}

func TestCacheInvalidateForcesReload(t *testing.T) {
	var loads int32
	load := func(_ context.Context, shop string) ([]Setting, error) {
		atomic.AddInt32(&loads, 1)
		return nil, nil
	}
	c := NewCache(load, time.Minute, 8)

	_, _ = c.Get(context.Background(), "test.myshopify.com")
	c.Invalidate("test.myshopify.com")
	_, _ = c.Get(context.Background(), "test.myshopify.com")

	if n := atomic.LoadInt32(&loads); n != 2 {
		t.Errorf("expected 2 loads, got %d", n)
	}
}

func TestCacheErrorNotCached(t *testing.T) {
	var loads int32
	load := func(_ context.Context, _ string) ([]Setting, error) {
		if atomic.AddInt32(&loads, 1) == 1 {
			return nil, errors.New("db down")
		}
		return []Setting{{ID: "a1"}}, nil
	}
	c := NewCache(load, time.Minute, 8)

	if _, err := c.Get(context.Background(), "test.myshopify.com"); err == nil {
		t.Fatal("expected first Get to fail")
	}
	records, err := c.Get(context.Background(), "test.myshopify.com")
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records", len(records))
	}
}

func TestCacheEvictsLeastRecentShop(t *testing.T) {
	var loads int32
	load := func(_ context.Context, _ string) ([]Setting, error) {
		atomic.AddInt32(&loads, 1)
		return nil, nil
	}
	c := NewCache(load, time.Minute, 2)

	_, _ = c.Get(context.Background(), "a.myshopify.com")
	_, _ = c.Get(context.Background(), "b.myshopify.com")
	_, _ = c.Get(context.Background(), "c.myshopify.com") // evicts a
	_, _ = c.Get(context.Background(), "a.myshopify.com") // reload

	if n := atomic.LoadInt32(&loads); n != 4 {
		t.Errorf("expected 4 loads, got %d", n)
	}
}
