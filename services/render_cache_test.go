package services

import (
	"testing"
	"time"
)

func TestRenderCache(t *testing.T) {
	c := NewRenderCache(2, time.Minute)
	defer c.Close()

	c.Set("topo:1:render:0", []byte("a"))
	c.Set("topo:1:render:640", []byte("b"))
	if got, ok := c.Get("topo:1:render:0"); !ok || string(got) != "a" {
		t.Fatalf("Get = %q, %v", got, ok)
	}

	// 覆盖已有键不淘汰
	c.Set("topo:1:render:640", []byte("b2"))
	if c.Size() != 2 {
		t.Fatalf("size after overwrite = %d, want 2", c.Size())
	}

	// 满了之后丢弃最早写入的
	c.Set("topo:2:render:0", []byte("c"))
	if c.Size() != 2 {
		t.Errorf("size = %d, want 2", c.Size())
	}
	if _, ok := c.Get("topo:1:render:0"); ok {
		t.Error("earliest entry not evicted")
	}
	if got, ok := c.Get("topo:1:render:640"); !ok || string(got) != "b2" {
		t.Errorf("overwritten entry = %q, %v", got, ok)
	}

	if n := c.InvalidatePrefix("topo:1:"); n != 1 {
		t.Errorf("invalidated %d, want 1", n)
	}
	if _, ok := c.Get("topo:2:render:0"); !ok {
		t.Error("other topo invalidated")
	}
}

func TestRenderCacheExpiry(t *testing.T) {
	c := NewRenderCache(4, time.Millisecond)
	defer c.Close()

	c.Set("k", []byte("v"))
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry returned")
	}
	c.sweep(time.Now())
	if c.Size() != 0 {
		t.Errorf("size after sweep = %d", c.Size())
	}
}

func TestRenderCacheCloseTwice(t *testing.T) {
	c := NewRenderCache(1, time.Minute)
	c.Close()
	c.Close()
}
