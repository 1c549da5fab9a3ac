// Package strategy drives a kernel.Handle one tick at a time. The kernel
// is single-threaded and non-suspending, so a strategy call happens
// synchronously inside the caller's step_tick loop rather than under its
// own ticker or goroutine.
package strategy

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	"backtestkernel/kernel"
)

// Client wraps a kernel.Handle with order-ownership bookkeeping and an
// order-ID allocator for strategies to place and cancel orders against.
type Client struct {
	h     *kernel.Handle
	owned map[uint64]struct{}
}

// NewClient wraps a kernel handle for strategy use.
func NewClient(h *kernel.Handle) *Client {
	return &Client{h: h, owned: make(map[uint64]struct{})}
}

// NextID allocates a fresh order ID derived from a random UUID, folded into
// the uint64 space the kernel's order_id contract expects.
func (c *Client) NextID() uint64 {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[:8])
}

// PlaceOrder submits an order and records ownership on success.
func (c *Client) PlaceOrder(o kernel.Order) error {
	if err := c.h.PlaceOrder(o); err != nil {
		return fmt.Errorf("place order %d: %w", o.OrderID, err)
	}
	c.owned[o.OrderID] = struct{}{}
	return nil
}

// CancelOrder cancels an order and forgets it regardless of outcome; a
// cancel that returns kernel.ErrNotFound means it already filled or was
// never placed, either way it is no longer live.
func (c *Client) CancelOrder(id uint64) error {
	err := c.h.CancelOrder(id)
	delete(c.owned, id)
	if err != nil {
		return fmt.Errorf("cancel order %d: %w", id, err)
	}
	return nil
}

// OwnsOrder reports whether this client placed the given order ID.
func (c *Client) OwnsOrder(id uint64) bool {
	_, ok := c.owned[id]
	return ok
}

// Handle exposes the underlying kernel handle for snapshot reads.
func (c *Client) Handle() *kernel.Handle {
	return c.h
}
