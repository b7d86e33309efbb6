package highlight

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"
)

func TestCacheGetAdd(t *testing.T) {
	c := NewCache(4, slog.New(slog.DiscardHandler))

	if _, ok := c.Get("javascript", "x"); ok {
		t.Fatal("Get on empty cache should miss")
	}

	runs := []Run{{Start: 0, End: 1, Text: "x", Category: NoCategory}}
	c.Add("javascript", "x", runs)

	got, ok := c.Get("javascript", "x")
	if !ok || len(got) != 1 || got[0].Text != "x" {
		t.Fatalf("Get() = %+v, %v", got, ok)
	}
	if _, ok := c.Get("typescript", "x"); ok {
		t.Error("different language should miss")
	}
	if _, ok := c.Get("javascript", "x "); ok {
		t.Error("different text should miss")
	}

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 3 || s.Entries != 1 {
		t.Errorf("Stats() = %+v", s)
	}
	if s.HitRate() != 0.25 {
		t.Errorf("HitRate() = %v, want 0.25", s.HitRate())
	}
	if s.Bytes <= 0 {
		t.Errorf("Bytes = %d, want > 0", s.Bytes)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2, slog.New(slog.DiscardHandler))

	c.Add("js", "a", nil)
	c.Add("js", "b", nil)
	c.Get("js", "a")
	c.Add("js", "c", nil)

	if _, ok := c.Get("js", "b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("js", "a"); !ok {
		t.Error("a should still be cached")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestCacheBytesTracksEntries(t *testing.T) {
	c := NewCache(8, nil)

	c.Add("js", "hello", []Run{{}, {}})
	c.Add("js", "hello", []Run{{}})
	want := entrySize(cacheKey{"js", "hello"}, []Run{{}, {}})
	if got := c.Stats().Bytes; got != want {
		t.Errorf("Bytes = %d, want %d", got, want)
	}

	c.Purge()
	s := c.Stats()
	if s.Bytes != 0 || s.Entries != 0 {
		t.Errorf("after Purge Stats() = %+v", s)
	}
}

func TestCacheDefaultSize(t *testing.T) {
	c := NewCache(0, nil)
	for i := 0; i < DefaultCacheSize+10; i++ {
		c.Add("js", fmt.Sprint(i), nil)
	}
	if c.Len() != DefaultCacheSize {
		t.Errorf("Len() = %d, want %d", c.Len(), DefaultCacheSize)
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := NewCache(16, nil)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprint(i % 32)
				if _, ok := c.Get("js", key); !ok {
					c.Add("js", key, []Run{{Text: key}})
				}
			}
		}(g)
	}
	wg.Wait()

	s := c.Stats()
	if s.Hits+s.Misses != 8*200 {
		t.Errorf("lookups = %d, want %d", s.Hits+s.Misses, 8*200)
	}
	if s.Entries > 16 {
		t.Errorf("Entries = %d, want <= 16", s.Entries)
	}
}
