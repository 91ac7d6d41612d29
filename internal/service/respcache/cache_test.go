package respcache

import (
	"testing"
	"time"
)

func TestGetRespectsMaxAge(t *testing.T) {
	c := New(10, 0, 0)
	c.Put("k", []byte("v"), false)

	if _, ok := c.Get("k", time.Minute); !ok {
		t.Fatalf("fresh entry should hit")
	}
	if _, ok := c.Get("k", 0); ok {
		t.Fatalf("zero maxAge should miss")
	}
}

func TestGetAnyIgnoresAgeButNotErrors(t *testing.T) {
	c := New(10, 0, 0)
	c.Put("ok", []byte("v"), false)
	c.Put("bad", []byte("e"), true)

	if _, ok := c.GetAny("ok"); !ok {
		t.Fatalf("stale fallback should return cached value")
	}
	if _, ok := c.GetAny("bad"); ok {
		t.Fatalf("error entries must not serve as stale fallback")
	}
}

func TestEvictionOldestFirst(t *testing.T) {
	c := New(2, 0, 0)
	c.Put("a", []byte("1"), false)
	c.Put("b", []byte("2"), false)
	c.Put("c", []byte("3"), false)

	if c.Len() != 2 {
		t.Fatalf("bound not enforced: %d entries", c.Len())
	}
	if _, ok := c.GetAny("a"); ok {
		t.Fatalf("oldest entry should have been evicted")
	}
	if _, ok := c.GetAny("c"); !ok {
		t.Fatalf("newest entry missing")
	}
}

func TestPutSameKeyDoesNotGrow(t *testing.T) {
	c := New(2, 0, 0)
	c.Put("a", []byte("1"), false)
	c.Put("a", []byte("2"), false)
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}
	b, _ := c.GetAny("a")
	if string(b) != "2" {
		t.Fatalf("overwrite lost: %q", b)
	}
}

func TestSweepPurgesPastCeiling(t *testing.T) {
	c := New(10, time.Millisecond, 0)
	c.Put("a", []byte("1"), false)
	c.sweep(time.Now().Add(time.Second))
	if c.Len() != 0 {
		t.Fatalf("sweep should purge entries past the ceiling")
	}
}

func TestKeyDeterministic(t *testing.T) {
	s := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	e := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	k1 := Key("form4", s, e, 100, 2)
	k2 := Key("form4", s, e, 100, 2)
	if k1 != k2 {
		t.Fatalf("keys differ: %s vs %s", k1, k2)
	}
	if k1 == Key("form4", s, e, 100, 3) {
		t.Fatalf("batch index must differentiate keys")
	}
}
