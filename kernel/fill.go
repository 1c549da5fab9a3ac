package kernel

import "math"

// spreadOffsetTicks computes the ceiling-rounded absolute offset
// applied against the taker.
func spreadOffsetTicks(priceTick int64, spreadBps float64) int64 {
	if spreadBps == 0 {
		return 0
	}
	s := spreadBps / 10000
	abs := priceTick
	if abs < 0 {
		abs = -abs
	}
	offset := math.Ceil(float64(abs) * s)
	return int64(offset)
}

// fillTick applies spread symmetrically: buyers pay more, sellers
// receive less. basePriceTick is the tick.PriceTick for
// a market order, or the order's own PriceTick for a limit order.
func fillTick(basePriceTick int64, side Side, spreadBps float64) int64 {
	offset := spreadOffsetTicks(basePriceTick, spreadBps)
	if side == Buy {
		return basePriceTick + offset
	}
	return basePriceTick - offset
}

// executeFill applies one fill to the account: updates cash (notional
// plus taker fee), the signed position, and realized P&L, following
// the open/add/reduce/flip case split.
func (h *Handle) executeFill(o *order, fillPriceTick int64) {
	acc := &h.acc
	qtyMicro := o.qtyMicro
	p := float64(fillPriceTick) * h.cfg.TickSize
	notional := p * fromMicro(qtyMicro)
	fee := notional * (h.cfg.TakerFeeBps / 10000)

	var delta int64
	if o.side == Buy {
		delta = qtyMicro
		acc.cash -= notional + fee
	} else {
		delta = -qtyMicro
		acc.cash += notional - fee
	}

	old := acc.positionMicro
	next := old + delta

	switch {
	case old == 0:
		// Opening: no realized P&L, entry price set from scratch.
		acc.avgEntryPrice = float64(fillPriceTick)

	case sameSign(old, delta):
		// Adding to an existing directional exposure: weighted average.
		acc.avgEntryPrice = (float64(old)*acc.avgEntryPrice + float64(delta)*float64(fillPriceTick)) / float64(next)

	case absMicro(delta) <= absMicro(old):
		// Reducing (possibly to exactly flat), never flipping.
		h.realizeReduction(absMicro(delta), fillPriceTick, old > 0)
		if next == 0 {
			acc.avgEntryPrice = 0
		}

	default:
		// Flipping: realize the full old exposure, then open the residual.
		h.realizeReduction(absMicro(old), fillPriceTick, old > 0)
		acc.avgEntryPrice = float64(fillPriceTick)
	}

	acc.positionMicro = next
}

// realizeReduction adds the gross realized P&L for closing r
// micro-units of an existing position at fillPriceTick, reused by the
// full-reduction leg of a flip. wasLong
// indicates the sign of the position being reduced.
func (h *Handle) realizeReduction(r int64, fillPriceTick int64, wasLong bool) {
	qty := fromMicro(r)
	exitValue := qty * float64(fillPriceTick) * h.cfg.TickSize
	entryValue := qty * h.acc.avgEntryPrice * h.cfg.TickSize
	if wasLong {
		h.acc.realizedPnL += exitValue - entryValue
	} else {
		h.acc.realizedPnL += entryValue - exitValue
	}
}

func sameSign(old, delta int64) bool {
	return (old > 0 && delta > 0) || (old < 0 && delta < 0)
}
