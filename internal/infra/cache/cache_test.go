package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	val, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "value1" {
		t.Errorf("expected 'value1', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)
	defer c.Close()

	c.Set("key1", "value1")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	c.Delete("key1")

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestCache_GetOrLoad(t *testing.T) {
	c := cache.New[[]domain.SupportProgram](5 * time.Minute)
	defer c.Close()

	var loads atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) ([]domain.SupportProgram, error) {
		loads.Add(1)
		<-release
		return []domain.SupportProgram{{ID: "mock-1"}}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, err := c.GetOrLoad(context.Background(), "programs", load)
			if err != nil || len(v) != 1 {
				t.Errorf("unexpected result %v, %v", v, err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := loads.Load(); n != 1 {
		t.Errorf("expected a single load, got %d", n)
	}

	_, hit, err := c.GetOrLoad(context.Background(), "programs", load)
	if err != nil || !hit {
		t.Errorf("expected cache hit, got hit=%v err=%v", hit, err)
	}
}

func TestCache_GetOrLoadErrorNotCached(t *testing.T) {
	c := cache.New[int](5 * time.Minute)
	defer c.Close()

	_, _, err := c.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) {
		return 0, errors.New("down")
	})
	if err == nil {
		t.Fatal("expected load error")
	}
	if _, ok := c.Get("k"); ok {
		t.Error("errors must not be cached")
	}
}
