// Package realtime fans Postgres NOTIFY payloads out to in-process
// subscribers. Triggers on the synced tables call pg_notify with the row
// as JSON, so every connected instance observes remote writes without
// polling.
package realtime

import (
	"context"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/lib/pq"

	"github.com/bringolino/bringolino/internal/platform/logging"
)

// Channel names raised by the migration-installed triggers.
const (
	ChannelDepartmentData = "department_data_changed"
	ChannelDECTLocks      = "dect_locks_changed"
)

const (
	minReconnectInterval = time.Second
	maxReconnectInterval = 30 * time.Second
	pingInterval         = 90 * time.Second
)

// Handler receives the raw NOTIFY payload. Handlers run on the hub's
// dispatch goroutine and must not block.
type Handler func(payload string)

type subscriber struct {
	id      int
	channel string
	fn      Handler
}

// listenConn is the subset of pq.Listener the hub drives.
type listenConn interface {
	Listen(channel string) error
	Unlisten(channel string) error
	Ping() error
	Close() error
	NotificationChannel() <-chan *pq.Notification
}

// Hub owns one LISTEN connection and dispatches notifications to
// subscribers. A lost connection degrades silently: pq reconnects with
// backoff and subscribers simply see a gap, which the sync monitor covers
// by re-reading state when connectivity returns.
type Hub struct {
	listener listenConn
	logger   *logging.Logger

	mu     sync.Mutex
	nextID int
	subs   map[string][]subscriber
	active map[string]bool
}

func NewHub(dsn string, logger *logging.Logger) (*Hub, error) {
	if dsn == "" {
		return nil, crerr.New("realtime dsn is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	h := &Hub{
		logger: logger,
		subs:   make(map[string][]subscriber),
		active: make(map[string]bool),
	}
	h.listener = pq.NewListener(dsn, minReconnectInterval, maxReconnectInterval, h.onListenerEvent)

	return h, nil
}

// Subscribe registers fn for a channel and returns its unsubscribe
// function. The LISTEN command is issued on the first subscriber of a
// channel and UNLISTEN when the last one leaves; a LISTEN failure is
// logged and retried implicitly when pq reconnects.
func (h *Hub) Subscribe(channel string, fn func(payload string)) (func(), error) {
	if channel == "" {
		return nil, crerr.New("realtime channel is required")
	}
	if fn == nil {
		return nil, crerr.New("realtime handler is required")
	}

	h.mu.Lock()
	h.nextID++
	sub := subscriber{id: h.nextID, channel: channel, fn: fn}
	h.subs[channel] = append(h.subs[channel], sub)
	needListen := !h.active[channel]
	h.active[channel] = true
	h.mu.Unlock()

	if needListen {
		if err := h.listener.Listen(channel); err != nil && err != pq.ErrChannelAlreadyOpen {
			h.logger.Warn("realtime listen failed", "channel", channel, "error", err)
		}
	}

	return func() { h.unsubscribe(sub) }, nil
}

func (h *Hub) unsubscribe(sub subscriber) {
	h.mu.Lock()
	remaining := h.subs[sub.channel][:0]
	for _, s := range h.subs[sub.channel] {
		if s.id != sub.id {
			remaining = append(remaining, s)
		}
	}
	h.subs[sub.channel] = remaining
	lastGone := len(remaining) == 0 && h.active[sub.channel]
	if lastGone {
		h.active[sub.channel] = false
	}
	h.mu.Unlock()

	if lastGone {
		if err := h.listener.Unlisten(sub.channel); err != nil && err != pq.ErrChannelNotOpen {
			h.logger.Warn("realtime unlisten failed", "channel", sub.channel, "error", err)
		}
	}
}

// Run dispatches notifications until ctx is cancelled. It pings the
// listener periodically so dead connections are detected even on quiet
// channels.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case notification := <-h.listener.NotificationChannel():
			if notification == nil {
				// nil marks a reconnect; state may have changed meanwhile.
				h.logger.Info("realtime listener reconnected")
				continue
			}
			h.dispatch(notification.Channel, notification.Extra)
		case <-ticker.C:
			if err := h.listener.Ping(); err != nil {
				h.logger.Warn("realtime listener ping failed", "error", err)
			}
		}
	}
}

func (h *Hub) dispatch(channel, payload string) {
	h.mu.Lock()
	subs := append([]subscriber(nil), h.subs[channel]...)
	h.mu.Unlock()

	for _, s := range subs {
		s.fn(payload)
	}
}

func (h *Hub) Close() error {
	if err := h.listener.Close(); err != nil {
		return crerr.Wrap(err, "close realtime listener")
	}
	return nil
}

func (h *Hub) onListenerEvent(event pq.ListenerEventType, err error) {
	switch event {
	case pq.ListenerEventConnected:
		h.logger.Info("realtime listener connected")
	case pq.ListenerEventDisconnected:
		h.logger.Warn("realtime listener disconnected", "error", err)
	case pq.ListenerEventReconnected:
		h.logger.Info("realtime listener reconnected")
	case pq.ListenerEventConnectionAttemptFailed:
		h.logger.Warn("realtime listener connection attempt failed", "error", err)
	}
}
