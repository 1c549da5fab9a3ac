package kernel

import "math"

// StepTick advances simulated time, scans the open-order set in
// insertion order, fills every order whose condition is satisfied,
// and compacts the set. Orders observe the
// effects of earlier fills within the same tick (notably
// avgEntryPrice and position sign).
func (h *Handle) StepTick(t Tick) error {
	if h.destroyed {
		return ErrDestroyed
	}
	if err := validateTick(t); err != nil {
		return err
	}

	h.acc.currentTsMs = t.TsMs
	h.acc.lastTickPrice = t.PriceTick

	for i := range h.orders {
		o := &h.orders[i]
		if !o.active {
			continue
		}
		if !eligible(o, t.PriceTick) {
			continue
		}

		base := t.PriceTick
		if o.kind == Limit {
			base = o.priceTick
		}
		ft := fillTick(base, o.side, h.cfg.SpreadBps)
		h.executeFill(o, ft)
		o.active = false
	}

	h.compactOrders()
	return nil
}

func validateTick(t Tick) error {
	if math.IsNaN(t.Qty) || math.IsInf(t.Qty, 0) {
		return ErrInvalidTick
	}
	switch t.Side {
	case Buy, Sell:
	default:
		return ErrInvalidTick
	}
	return nil
}

// eligible decides fill eligibility for an active order at the
// observed tick price.
func eligible(o *order, tickPrice int64) bool {
	if o.kind == Market {
		return true
	}
	if o.side == Buy {
		return tickPrice <= o.priceTick
	}
	return tickPrice >= o.priceTick
}
