package fallbackcache

import (
	"testing"
	"time"
)

type testLogger struct {
	debugCalls int
}

func (l *testLogger) Debug(msg string, args ...any) {
	l.debugCalls++
}

func newTestCache(t *testing.T, maxSize int, ttl time.Duration) (*Cache, *testLogger) {
	t.Helper()
	logger := &testLogger{}
	c, err := New("test-service", logger, maxSize, ttl)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c, logger
}

func TestNewValidation(t *testing.T) {
	logger := &testLogger{}

	t.Run("rejects empty service name", func(t *testing.T) {
		if _, err := New("  ", logger, 10, time.Second); err == nil {
			t.Error("want error for blank serviceName")
		}
	})

	t.Run("rejects nil logger", func(t *testing.T) {
		if _, err := New("svc", nil, 10, time.Second); err == nil {
			t.Error("want error for nil logger")
		}
	})

	t.Run("rejects out-of-bounds maxSize", func(t *testing.T) {
		if _, err := New("svc", logger, 0, time.Second); err == nil {
			t.Error("want error for maxSize 0")
		}
		if _, err := New("svc", logger, 100001, time.Second); err == nil {
			t.Error("want error for maxSize above 100000")
		}
	})

	t.Run("rejects out-of-bounds ttl", func(t *testing.T) {
		if _, err := New("svc", logger, 10, 5*time.Millisecond); err == nil {
			t.Error("want error for ttl below 10ms")
		}
		if _, err := New("svc", logger, 10, 90000*time.Hour); err == nil {
			t.Error("want error for ttl above 86400000ms")
		}
	})

	t.Run("accepts boundary values", func(t *testing.T) {
		if _, err := New("svc", logger, 1, 10*time.Millisecond); err != nil {
			t.Errorf("boundary values rejected: %v", err)
		}
	})
}

func TestSetGet(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Minute)

	if err := c.Set("k1", []byte("v1"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	v, ok := c.Get("k1")
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if string(v) != "v1" {
		t.Errorf("Get() = %s, want v1", v)
	}
}

func TestGetMissing(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() ok = true for absent key, want false")
	}
}

// P4: stale-allow — get() past TTL still returns the value, not a miss.
func TestGetReturnsStaleValue(t *testing.T) {
	c, logger := newTestCache(t, 10, time.Minute)

	if err := c.Set("k1", []byte("v1"), 5*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	v, ok := c.Get("k1")
	if !ok {
		t.Fatal("Get() ok = false for stale entry, want true")
	}
	if string(v) != "v1" {
		t.Errorf("Get() = %s, want v1", v)
	}
	if logger.debugCalls == 0 {
		t.Error("expected a debug log on stale read")
	}

	// Stale entry must still be present afterward — get() does not delete.
	if !c.Has("k1") {
		t.Error("stale entry was removed by Get()")
	}
}

func TestSetRefreshesRecencyAndTimestamp(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Minute)

	if err := c.Set("k1", []byte("v1"), 5*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if err := c.Set("k1", []byte("v2"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	v, ok := c.Get("k1")
	if !ok || string(v) != "v2" {
		t.Fatalf("Get() = %s, %v, want v2, true", v, ok)
	}
}

// P3: LRU bound — size after set never exceeds maxSize, oldest evicted first.
func TestLRUEviction(t *testing.T) {
	c, _ := newTestCache(t, 3, time.Minute)

	c.Set("a", []byte("1"), 0)
	c.Set("b", []byte("2"), 0)
	c.Set("c", []byte("3"), 0)

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}

	// Touch "a" so "b" becomes the least-recently-used entry.
	c.Get("a")
	c.Set("d", []byte("4"), 0)

	if c.Len() > 3 {
		t.Fatalf("Len() = %d, exceeds maxSize 3", c.Len())
	}
	if c.Has("b") {
		t.Error("expected b to be evicted as least-recently-used")
	}
	if !c.Has("a") {
		t.Error("expected a to survive eviction after being touched")
	}
	if !c.Has("d") {
		t.Error("expected d to be present after insertion")
	}
}

func TestHas(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Minute)
	c.Set("k1", []byte("v1"), 5*time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	if !c.Has("k1") {
		t.Error("Has() = false for expired-but-present key, want true")
	}
	if c.Has("missing") {
		t.Error("Has() = true for absent key, want false")
	}
}

func TestDelete(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Minute)
	c.Set("k1", []byte("v1"), 0)

	if !c.Delete("k1") {
		t.Error("Delete() = false for present key, want true")
	}
	if c.Delete("k1") {
		t.Error("Delete() = true for already-deleted key, want false")
	}
	if c.Has("k1") {
		t.Error("key still present after Delete()")
	}
}

func TestClear(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Minute)
	c.Set("a", []byte("1"), 0)
	c.Set("b", []byte("2"), 0)

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear(), want 0", c.Len())
	}
}

func TestCleanup(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Minute)
	c.Set("expired", []byte("1"), 5*time.Millisecond)
	c.Set("fresh", []byte("2"), time.Minute)
	time.Sleep(10 * time.Millisecond)

	removed := c.Cleanup()
	if removed != 1 {
		t.Errorf("Cleanup() = %d, want 1", removed)
	}
	if c.Has("expired") {
		t.Error("expired entry survived Cleanup()")
	}
	if !c.Has("fresh") {
		t.Error("fresh entry removed by Cleanup()")
	}
}

func TestSetRejectsInvalidKey(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Minute)

	if err := c.Set("", []byte("v"), 0); err == nil {
		t.Error("Set() with empty key should fail validation")
	}
}

func TestSetRejectsNegativeTTL(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Minute)

	if err := c.Set("k", []byte("v"), -time.Second); err == nil {
		t.Error("Set() with negative ttl should be rejected")
	}
}
