package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRUCache_BasicOperations(t *testing.T) {
	cache := NewLRUCache[string, int](Config{MaxSize: 3})

	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Put("c", 3)

	for key, want := range map[string]int{"a": 1, "b": 2, "c": 3} {
		if v, ok := cache.Get(key); !ok || v != want {
			t.Errorf("Get(%s) = %d, %v; want %d, true", key, v, ok, want)
		}
	}
	if _, ok := cache.Get("d"); ok {
		t.Error("Get(d) should return false")
	}
	if n := cache.Len(); n != 3 {
		t.Errorf("Len() = %d; want 3", n)
	}

	cache.Put("a", 10)
	if v, _ := cache.Get("a"); v != 10 {
		t.Errorf("Get(a) after update = %d; want 10", v)
	}
	cache.Remove("a")
	if _, ok := cache.Get("a"); ok {
		t.Error("Get(a) should return false after Remove")
	}
}

func TestLRUCache_Eviction(t *testing.T) {
	var evicted []string
	cache := NewLRUCache[string, int](Config{
		MaxSize: 2,
		OnEvict: func(key, _ any) { evicted = append(evicted, key.(string)) },
	})

	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Put("c", 3) // evicts a

	if _, ok := cache.Get("a"); ok {
		t.Error("Get(a) should return false after eviction")
	}

	cache.Get("b")    // b is now most recent
	cache.Put("d", 4) // evicts c

	if _, ok := cache.Get("c"); ok {
		t.Error("Get(c) should return false after eviction")
	}
	if v, ok := cache.Get("b"); !ok || v != 2 {
		t.Errorf("Get(b) = %d, %v; want 2, true", v, ok)
	}
	if fmt.Sprint(evicted) != "[a c]" {
		t.Errorf("evicted = %v; want [a c]", evicted)
	}
	if s := cache.Stats(); s.Evictions != 2 || s.Size != 2 || s.MaxSize != 2 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestLRUCache_TTL(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache := newLRU[string, int](Config{TTL: time.Minute}, func() time.Time { return now })

	cache.Put("a", 1)
	if _, ok := cache.Get("a"); !ok {
		t.Fatal("Get(a) before expiry should hit")
	}
	now = now.Add(time.Minute)
	if _, ok := cache.Get("a"); ok {
		t.Error("Get(a) at expiry should miss")
	}
	if cache.Len() != 0 {
		t.Errorf("expired entry kept, Len() = %d", cache.Len())
	}
}

func TestLRUCache_RemoveIfAndClear(t *testing.T) {
	cache := NewLRUCache[string, int](DefaultConfig())
	for i, k := range []string{"rose/Ludwig", "rose/Douce195", "roman/Harley"} {
		cache.Put(k, i)
	}
	n := cache.RemoveIf(func(k string) bool { return k[:5] == "rose/" })
	if n != 2 || cache.Len() != 1 {
		t.Errorf("RemoveIf() = %d, Len() = %d; want 2, 1", n, cache.Len())
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len() after Clear = %d", cache.Len())
	}
}

func TestLRUCache_Stats(t *testing.T) {
	cache := NewLRUCache[string, int](Config{MaxSize: 4})
	if rate := cache.Stats().HitRate(); rate != 0 {
		t.Errorf("HitRate() before lookups = %v", rate)
	}
	cache.Put("a", 1)
	cache.Get("a")
	cache.Get("a")
	cache.Get("a")
	cache.Get("b")
	s := cache.Stats()
	if s.Hits != 3 || s.Misses != 1 || s.HitRate() != 0.75 {
		t.Errorf("Stats() = %+v, HitRate() = %v", s, s.HitRate())
	}
}

func TestLRUCache_Concurrent(t *testing.T) {
	cache := NewLRUCache[int, int](Config{MaxSize: 50})
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				cache.Put(g*1000+i, i)
				cache.Get(g*1000 + i/2)
			}
		}(g)
	}
	wg.Wait()
	if cache.Len() > 50 {
		t.Errorf("Len() = %d exceeds MaxSize", cache.Len())
	}
}
