package services

import (
	"strings"
	"sync"
	"time"
)

// renderEntry 一张已编码的渲染图
type renderEntry struct {
	png     []byte
	expires time.Time
	seq     uint64
}

// RenderCache 渲染图缓存。键形如 "topo:<id>:render:<width>"，
// 线条或位置变更后按 "topo:<id>:" 前缀整体失效；容量满时丢弃最早写入的一张
type RenderCache struct {
	mu       sync.RWMutex
	entries  map[string]*renderEntry
	capacity int
	ttl      time.Duration
	seq      uint64
	stop     chan struct{}
	once     sync.Once
}

// NewRenderCache capacity 为最多缓存的渲染图数量
func NewRenderCache(capacity int, ttl time.Duration) *RenderCache {
	if capacity <= 0 {
		capacity = 256
	}
	c := &RenderCache{
		entries:  make(map[string]*renderEntry),
		capacity: capacity,
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	go c.sweepLoop(sweepInterval(ttl))
	return c
}

func sweepInterval(ttl time.Duration) time.Duration {
	if ttl < time.Second {
		return time.Second
	}
	return min(ttl, time.Minute)
}

// Get 命中且未过期时返回 PNG 字节
func (c *RenderCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.png, true
}

// Set 写入或覆盖一张渲染图，覆盖已有键不触发淘汰
func (c *RenderCache) Set(key string, png []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.capacity {
		c.dropEarliestLocked()
	}
	c.seq++
	c.entries[key] = &renderEntry{png: png, expires: time.Now().Add(c.ttl), seq: c.seq}
}

// InvalidatePrefix 丢弃一张拓扑图的全部渲染结果，返回丢弃数量
func (c *RenderCache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			n++
		}
	}
	return n
}

func (c *RenderCache) dropEarliestLocked() {
	var victim string
	var seq uint64
	for key, e := range c.entries {
		if victim == "" || e.seq < seq {
			victim, seq = key, e.seq
		}
	}
	delete(c.entries, victim)
}

func (c *RenderCache) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.sweep(now)
		}
	}
}

// sweep 删除在 now 之前过期的渲染图
func (c *RenderCache) sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, key)
		}
	}
}

// Size 当前缓存的渲染图数量，含已过期未清扫的
func (c *RenderCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close 停止后台清扫，可重复调用
func (c *RenderCache) Close() {
	c.once.Do(func() { close(c.stop) })
}
