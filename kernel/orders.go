package kernel

import "math"

// PlaceOrder validates and appends order to the open-order set. It
// becomes eligible for fill consideration starting with the next
// StepTick/StepBatch call.
func (h *Handle) PlaceOrder(o Order) error {
	if h.destroyed {
		return ErrDestroyed
	}
	if _, exists := h.live[o.OrderID]; exists {
		return ErrDuplicateID
	}
	if err := validateOrder(o); err != nil {
		return err
	}
	if len(h.live) >= h.cfg.Capacity {
		return ErrOrderBookFull
	}

	h.orders = append(h.orders, order{
		id:        o.OrderID,
		kind:      o.Kind,
		side:      o.Side,
		qtyMicro:  toMicro(o.Qty),
		priceTick: o.PriceTick,
		active:    true,
	})
	h.live[o.OrderID] = len(h.orders) - 1
	return nil
}

func validateOrder(o Order) error {
	if math.IsNaN(o.Qty) || math.IsInf(o.Qty, 0) || o.Qty <= 0 {
		return ErrInvalidOrder
	}
	switch o.Kind {
	case Market:
	case Limit:
		if o.PriceTick <= 0 {
			return ErrInvalidOrder
		}
	default:
		return ErrInvalidOrder
	}
	switch o.Side {
	case Buy, Sell:
	default:
		return ErrInvalidOrder
	}
	return nil
}

// CancelOrder marks the matching live order inactive. The open-order
// set is compacted lazily, at the next tick step.
func (h *Handle) CancelOrder(orderID uint64) error {
	if h.destroyed {
		return ErrDestroyed
	}
	idx, exists := h.live[orderID]
	if !exists {
		return ErrNotFound
	}
	h.orders[idx].active = false
	delete(h.live, orderID)
	return nil
}

// compactOrders drops inactive orders, preserving insertion order
// among survivors, and refreshes the live index. Called at the end
// of every tick step.
func (h *Handle) compactOrders() {
	write := 0
	for read := range h.orders {
		if !h.orders[read].active {
			continue
		}
		if write != read {
			h.orders[write] = h.orders[read]
		}
		write++
	}
	h.orders = h.orders[:write]

	for id := range h.live {
		delete(h.live, id)
	}
	for i := range h.orders {
		h.live[h.orders[i].id] = i
	}
}
