package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// TopoEvent 拓扑图线条变更通知
type TopoEvent struct {
	TopoID    uint   `json:"topo_id"`
	Action    string `json:"action"`
	LineLabel int    `json:"line_label"`
	Username  string `json:"username,omitempty"`
	At        int64  `json:"at"`
}

// EventHub 变更通知的发布订阅
type EventHub interface {
	Publish(ctx context.Context, ev TopoEvent) error
	// Subscribe 返回事件通道和取消函数，取消后通道关闭
	Subscribe(topoID uint) (<-chan TopoEvent, func())
}

const subscriberBuffer = 16

type subscriber struct {
	ch chan TopoEvent
}

// MemoryHub 进程内实现
type MemoryHub struct {
	mu   sync.RWMutex
	subs map[uint]map[*subscriber]struct{}
}

func NewMemoryHub() *MemoryHub {
	return &MemoryHub{subs: make(map[uint]map[*subscriber]struct{})}
}

func (h *MemoryHub) Publish(_ context.Context, ev TopoEvent) error {
	h.dispatch(ev)
	return nil
}

// dispatch 投递给订阅者，订阅者处理不过来时丢弃
func (h *MemoryHub) dispatch(ev TopoEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[ev.TopoID] {
		select {
		case sub.ch <- ev:
		default:
			log.Printf("拓扑图 %d 的订阅者处理过慢，丢弃事件 %s", ev.TopoID, ev.Action)
		}
	}
}

func (h *MemoryHub) Subscribe(topoID uint) (<-chan TopoEvent, func()) {
	sub := &subscriber{ch: make(chan TopoEvent, subscriberBuffer)}
	h.mu.Lock()
	if h.subs[topoID] == nil {
		h.subs[topoID] = make(map[*subscriber]struct{})
	}
	h.subs[topoID][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[topoID], sub)
			if len(h.subs[topoID]) == 0 {
				delete(h.subs, topoID)
			}
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Subscribers 当前订阅数
func (h *MemoryHub) Subscribers(topoID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topoID])
}

const redisChannelPrefix = "cragtopo:topo:"

// RedisHub 多实例部署时通过 redis 频道转发事件，本地订阅仍由 MemoryHub 管理
type RedisHub struct {
	client *redis.Client
	local  *MemoryHub
	pubsub *redis.PubSub
	cancel context.CancelFunc
}

// NewRedisHub 连接 redis 并开始监听所有拓扑图频道
func NewRedisHub(ctx context.Context, addr string) (*RedisHub, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("连接 redis 失败: %w", err)
	}
	return newRedisHub(client), nil
}

func newRedisHub(client *redis.Client) *RedisHub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &RedisHub{
		client: client,
		local:  NewMemoryHub(),
		pubsub: client.PSubscribe(ctx, redisChannelPrefix+"*"),
		cancel: cancel,
	}
	go h.relay()
	return h
}

func (h *RedisHub) relay() {
	for msg := range h.pubsub.Channel() {
		var ev TopoEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Printf("解析 redis 事件失败: %v", err)
			continue
		}
		if ev.TopoID == 0 {
			ev.TopoID = topoIDFromChannel(msg.Channel)
		}
		h.local.dispatch(ev)
	}
}

func (h *RedisHub) Publish(ctx context.Context, ev TopoEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return h.client.Publish(ctx, topoChannel(ev.TopoID), payload).Err()
}

func (h *RedisHub) Subscribe(topoID uint) (<-chan TopoEvent, func()) {
	return h.local.Subscribe(topoID)
}

// Close 关闭订阅和连接
func (h *RedisHub) Close() error {
	h.cancel()
	if err := h.pubsub.Close(); err != nil {
		log.Printf("关闭 redis 订阅失败: %v", err)
	}
	return h.client.Close()
}

func topoChannel(topoID uint) string {
	return redisChannelPrefix + strconv.FormatUint(uint64(topoID), 10)
}

func topoIDFromChannel(channel string) uint {
	id, err := strconv.ParseUint(strings.TrimPrefix(channel, redisChannelPrefix), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
