package window

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TargetName is the fixed window name. Re-registering under the same name
// replaces the previous window instead of spawning a duplicate.
const TargetName = "JukeboxPlayer"

// ErrPopupBlocked is returned when no player window registers within the
// open timeout. The platform refused or blocked window creation.
var ErrPopupBlocked = errors.New("player window did not register (popups blocked?)")

// Hub owns the lifetime of the single player window. The window is a
// separate browser context that registers over WebSocket; it never mutates
// controller state, it only receives command payloads.
type Hub struct {
	openTimeout time.Duration

	mu      sync.Mutex
	active  *Client
	waiters []chan struct{}
}

func NewHub(openTimeout time.Duration) *Hub {
	if openTimeout <= 0 {
		openTimeout = 5 * time.Second
	}
	return &Hub{openTimeout: openTimeout}
}

// Open waits for a live player window, reusing one that is already
// registered. It fails with ErrPopupBlocked when none appears in time.
func (h *Hub) Open(ctx context.Context) error {
	h.mu.Lock()
	if h.active != nil {
		h.mu.Unlock()
		return nil
	}
	waiter := make(chan struct{})
	h.waiters = append(h.waiters, waiter)
	h.mu.Unlock()

	select {
	case <-waiter:
		return nil
	case <-time.After(h.openTimeout):
		h.dropWaiter(waiter)
		return ErrPopupBlocked
	case <-ctx.Done():
		h.dropWaiter(waiter)
		return ctx.Err()
	}
}

// dropWaiter removes an abandoned waiter so repeated blocked opens do not
// accumulate. A registration may have already claimed and closed it.
func (h *Hub) dropWaiter(waiter chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, w := range h.waiters {
		if w == waiter {
			h.waiters = append(h.waiters[:i], h.waiters[i+1:]...)
			return
		}
	}
}

// Alive reports whether the tracked window is still registered. It must be
// re-checked before every command write: the user can close the window
// out-of-band at any moment.
func (h *Hub) Alive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active != nil
}

// Close tears down the tracked window. The controller owns the window's
// lifetime for as long as the controller session exists.
func (h *Hub) Close() {
	h.mu.Lock()
	c := h.active
	h.active = nil
	h.mu.Unlock()

	if c != nil {
		c.shutdown()
	}
}

// Forward pushes a serialized command to the active window. It reports
// whether a window was attached; a false result means the write was lost,
// which callers must treat as possible under the fire-and-forget protocol.
func (h *Hub) Forward(payload []byte) bool {
	h.mu.Lock()
	c := h.active
	h.mu.Unlock()

	if c == nil {
		return false
	}
	if !c.trySend(payload) {
		// Window gone or no longer draining; treat it as dead.
		h.unregisterClient(c)
		c.shutdown()
		return false
	}
	return true
}

// RunForwarder subscribes to the command notification channel and relays
// payloads to the registered window. Blocks until ctx is done.
func (h *Hub) RunForwarder(ctx context.Context, rdb *redis.Client, channel string) {
	sub := rdb.Subscribe(ctx, channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !h.Forward([]byte(msg.Payload)) {
				log.Printf("jukebox-service: command dropped, no player window attached")
			}
		}
	}
}

func (h *Hub) registerClient(c *Client) {
	h.mu.Lock()
	prev := h.active
	h.active = c
	waiters := h.waiters
	h.waiters = nil
	h.mu.Unlock()

	if prev != nil {
		prev.shutdown()
	}
	for _, w := range waiters {
		close(w)
	}
}

func (h *Hub) unregisterClient(c *Client) {
	h.mu.Lock()
	if h.active == c {
		h.active = nil
	}
	h.mu.Unlock()
}
