package ws

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/fleet-service/internal/config"
)

// Hub fans notification messages published on per-user redis channels out
// to the websocket connections bound to that user.
type Hub struct {
	client *redis.Client
	prefix string
	logger *zap.Logger

	mu          sync.RWMutex
	subscribers map[int64]map[chan []byte]struct{}
}

// NewHub builds a hub over the shared redis client.
func NewHub(client *redis.Client, cfg config.NotificationConfig, logger *zap.Logger) *Hub {
	return &Hub{
		client:      client,
		prefix:      cfg.ChannelPrefix,
		logger:      logger,
		subscribers: make(map[int64]map[chan []byte]struct{}),
	}
}

// Subscribe registers a delivery channel for one user's notifications.
func (h *Hub) Subscribe(userID int64) chan []byte {
	ch := make(chan []byte, 16)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan []byte]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}
	return ch
}

// Unsubscribe removes a delivery channel.
func (h *Hub) Unsubscribe(userID int64, ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subscribers[userID]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(h.subscribers, userID)
		}
	}
}

// Run consumes the redis pattern subscription until the context ends.
func (h *Hub) Run(ctx context.Context) error {
	if h.client == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	pubsub := h.client.PSubscribe(ctx, h.prefix+"*")
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return nil
			}
			userID, err := strconv.ParseInt(strings.TrimPrefix(msg.Channel, h.prefix), 10, 64)
			if err != nil {
				h.logger.Warn("unparsable notification channel", zap.String("channel", msg.Channel))
				continue
			}
			h.broadcast(userID, []byte(msg.Payload))
		}
	}
}

// broadcast delivers to every connection bound to the user. Slow consumers
// with a full buffer are skipped rather than blocking the hub loop.
func (h *Hub) broadcast(userID int64, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers[userID] {
		select {
		case ch <- payload:
		default:
		}
	}
}
