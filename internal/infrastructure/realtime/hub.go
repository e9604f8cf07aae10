package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/provider"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/metrics"
	"github.com/ptiporki19/pxv-pay-app-sub003/pkg/messaging"
)

// ErrHubClosed is returned by Subscribe after Close.
var ErrHubClosed = errors.New("realtime hub closed")

// Options configure a Hub
type Options struct {
	// Buffer is the per-subscriber queue length.
	Buffer int
	// ChannelPrefix names redis channels as <prefix>:<userID>.
	ChannelPrefix string
	// Redis bridges instances; nil keeps delivery in-process.
	Redis   messaging.RedisClient
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

type subscriber struct {
	id      uint64
	userID  uuid.UUID
	ch      chan entity.NotificationEvent
	onEvent func(entity.NotificationEvent)
	once    sync.Once
}

// Hub fans notification events out to per-user subscribers. Every subscriber
// has its own queue and goroutine so a slow consumer only loses its own events.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[uint64]*subscriber
	nextID uint64
	closed bool

	buffer  int
	prefix  string
	redis   messaging.RedisClient
	metrics *metrics.Metrics
	logger  *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ provider.NotificationBroker = (*Hub)(nil)

func NewHub(opts Options) *Hub {
	if opts.Buffer <= 0 {
		opts.Buffer = 32
	}
	if opts.ChannelPrefix == "" {
		opts.ChannelPrefix = "notifications"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Hub{
		subs:    make(map[uuid.UUID]map[uint64]*subscriber),
		buffer:  opts.Buffer,
		prefix:  opts.ChannelPrefix,
		redis:   opts.Redis,
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}
}

// Start attaches the redis bridge. It is a no-op without redis.
func (h *Hub) Start(ctx context.Context) error {
	if h.redis == nil {
		h.logger.Info("Realtime hub running in-process only")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	messages, err := h.redis.PSubscribe(ctx, h.prefix+":*")
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to notification channels: %w", err)
	}
	h.cancel = cancel

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for msg := range messages {
			var event entity.NotificationEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				h.logger.Warn("Dropping malformed notification message",
					zap.String("channel", msg.Channel),
					zap.Error(err))
				continue
			}
			if userID, ok := h.userIDFromChannel(msg.Channel); !ok || userID != event.UserID {
				h.logger.Warn("Dropping notification published on a foreign channel",
					zap.String("channel", msg.Channel))
				continue
			}
			h.deliver(event)
		}
	}()

	h.logger.Info("Realtime hub bridged to redis", zap.String("pattern", h.prefix+":*"))
	return nil
}

// Channel returns the redis channel for userID.
func (h *Hub) Channel(userID uuid.UUID) string {
	return h.prefix + ":" + userID.String()
}

// Publish sends event to the user's subscribers on every instance. When the
// redis publish fails the event is still delivered locally.
func (h *Hub) Publish(ctx context.Context, event entity.NotificationEvent) error {
	if h.redis == nil {
		h.deliver(event)
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}
	if err := h.redis.Publish(ctx, h.Channel(event.UserID), payload); err != nil {
		h.deliver(event)
		return fmt.Errorf("failed to publish notification event: %w", err)
	}
	return nil
}

// Subscribe registers onEvent for userID's notifications. onEvent runs on the
// subscription's own goroutine.
func (h *Hub) Subscribe(userID uuid.UUID, onEvent func(entity.NotificationEvent)) (provider.Unsubscribe, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	h.nextID++
	sub := &subscriber{
		id:      h.nextID,
		userID:  userID,
		ch:      make(chan entity.NotificationEvent, h.buffer),
		onEvent: onEvent,
	}
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[uint64]*subscriber)
	}
	h.subs[userID][sub.id] = sub
	h.wg.Add(1)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.RealtimeSubscribers.Inc()
	}

	go h.run(sub)

	return func() { h.remove(sub) }, nil
}

func (h *Hub) run(sub *subscriber) {
	defer h.wg.Done()
	for event := range sub.ch {
		h.dispatch(sub, event)
	}
}

func (h *Hub) dispatch(sub *subscriber, event entity.NotificationEvent) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Notification subscriber panicked",
				zap.String("user_id", sub.userID.String()),
				zap.Any("panic", r))
		}
	}()
	sub.onEvent(event)
}

func (h *Hub) remove(sub *subscriber) {
	sub.once.Do(func() {
		h.mu.Lock()
		if byID, ok := h.subs[sub.userID]; ok {
			delete(byID, sub.id)
			if len(byID) == 0 {
				delete(h.subs, sub.userID)
			}
		}
		close(sub.ch)
		h.mu.Unlock()

		if h.metrics != nil {
			h.metrics.RealtimeSubscribers.Dec()
		}
	})
}

func (h *Hub) deliver(event entity.NotificationEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs[event.UserID] {
		select {
		case sub.ch <- event:
			h.count("delivered")
		default:
			h.count("dropped")
			h.logger.Warn("Subscriber queue full, dropping notification",
				zap.String("user_id", event.UserID.String()),
				zap.String("notification_id", event.ID.String()))
		}
	}
}

func (h *Hub) count(result string) {
	if h.metrics != nil {
		h.metrics.NotificationsDispatch.WithLabelValues("push", result).Inc()
	}
}

// SubscriberCount reports open subscriptions for userID.
func (h *Hub) SubscriberCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Close detaches every subscriber and stops the redis bridge.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	var all []*subscriber
	for _, byID := range h.subs {
		for _, sub := range byID {
			all = append(all, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range all {
		h.remove(sub)
	}
	if h.cancel != nil {
		h.cancel()
	}
	h.wg.Wait()

	h.logger.Info("Realtime hub closed", zap.Int("subscribers_detached", len(all)))
	return nil
}

// userIDFromChannel parses <prefix>:<uuid>.
func (h *Hub) userIDFromChannel(channel string) (uuid.UUID, bool) {
	id, ok := strings.CutPrefix(channel, h.prefix+":")
	if !ok {
		return uuid.Nil, false
	}
	parsed, err := uuid.Parse(id)
	return parsed, err == nil
}
