package cache

import (
	"container/list"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
)

// 按字节预算的严格 LRU 缓存：键为语义参数摘要，值为任意带尺寸的内容
//（通常是一段已烘焙的动画帧序列）。并发访问由内部互斥锁保护。

// DefaultMaxBytes 为默认字节预算（100 MiB）。
const DefaultMaxBytes = 100 << 20

// Cache 是一个内容寻址、按最久未触达顺序逐出的缓存。
// sizeOf 由调用方提供，返回一个值占用的字节数。
type Cache[V any] struct {
	mu       sync.Mutex
	maxBytes int
	curBytes int
	entries  map[string]*list.Element
	order    *list.List // 队首为最近触达，队尾为最久未触达
	hits     int
	misses   int

	sizeOf func(V) int
}

type entry[V any] struct {
	key   string
	value V
	size  int
}

// Stats 汇总缓存当前状态。HitRate 为百分比。
type Stats struct {
	Size    int     `json:"size"`
	MaxSize int     `json:"maxSize"`
	HitRate float64 `json:"hitRate"`
}

// New 创建一个预算为 maxBytes 的缓存；maxBytes <= 0 时取默认值。
func New[V any](maxBytes int, sizeOf func(V) int) *Cache[V] {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if sizeOf == nil {
		panic("cache: sizeOf 不能为空")
	}
	return &Cache[V]{
		maxBytes: maxBytes,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		sizeOf:   sizeOf,
	}
}

// Get 返回键对应的值并刷新其触达时间；未命中计入 miss。
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.MoveToFront(el)
	return el.Value.(*entry[V]).value, true
}

// Set 存入键值。若插入会超出字节预算，则按最久未触达顺序反复逐出，
// 直到腾出空间；正在插入的条目自身绝不会被逐出。超过整个预算的单个
// 值不入缓存。
func (c *Cache[V]) Set(key string, value V) {
	size := c.sizeOf(value)
	c.mu.Lock()
	defer c.mu.Unlock()

	if size > c.maxBytes {
		return
	}
	if el, ok := c.entries[key]; ok {
		old := el.Value.(*entry[V])
		c.curBytes -= old.size
		c.order.Remove(el)
		delete(c.entries, key)
	}
	c.evictUntil(c.maxBytes - size)
	el := c.order.PushFront(&entry[V]{key: key, value: value, size: size})
	c.entries[key] = el
	c.curBytes += size
}

// SetMaxSize 调整字节预算；当前占用超出新预算时立即触发逐出。
func (c *Cache[V]) SetMaxSize(maxBytes int) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxBytes = maxBytes
	c.evictUntil(c.maxBytes)
}

// evictUntil 从队尾逐出条目直到 curBytes <= limit。调用方须持锁。
func (c *Cache[V]) evictUntil(limit int) {
	for c.curBytes > limit {
		el := c.order.Back()
		if el == nil {
			return
		}
		e := el.Value.(*entry[V])
		c.order.Remove(el)
		delete(c.entries, e.key)
		c.curBytes -= e.size
	}
}

// Stats 返回当前字节占用、预算与命中率（百分比）。
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{Size: c.curBytes, MaxSize: c.maxBytes}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total) * 100
	}
	return s
}

// Len 返回当前条目数。
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear 清空全部条目并重置命中计数。
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.curBytes = 0
	c.hits = 0
	c.misses = 0
}

// Digest computes a stable key over the given semantic fields using FNV-1a.
// Each field is length-prefixed so the encoding is injective: no two
// distinct field sequences share a key by shifting bytes across a boundary.
func Digest(parts ...string) string {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(strconv.Itoa(len(p))))
		h.Write([]byte{':'})
		h.Write([]byte(p))
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
