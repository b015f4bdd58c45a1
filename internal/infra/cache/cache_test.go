package cache_test

import (
	"testing"
	"time"

	"github.com/estetavision/esteta-bff-go/internal/domain"
	"github.com/estetavision/esteta-bff-go/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

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

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)

	c.Set("key1", "value1")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("key1", "value1")
	c.Delete("key1")

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestCache_EvaluationSlices(t *testing.T) {
	c := cache.New[[]domain.Evaluation](5 * time.Minute)

	feed := []domain.Evaluation{
		{ID: "eval-1", AreaFocus: "Facial"},
		{ID: "eval-2", AreaFocus: "Capilar"},
	}
	c.Set("evaluations:latest", feed)

	got, ok := c.Get("evaluations:latest")
	if !ok {
		t.Fatal("expected feed to be cached")
	}
	if len(got) != 2 || got[0].ID != "eval-1" {
		t.Errorf("unexpected cached feed: %+v", got)
	}
}
