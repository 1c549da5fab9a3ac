package kernel

// StepBatch submits len(tsMs) ticks in one call. It is exactly
// equivalent to invoking StepTick on each index in order with the
// same account effects: the contract is observational equivalence, not a
// distinct code path, so this loops the same per-tick logic rather than
// special-casing batched accounting.
func (h *Handle) StepBatch(tsMs []int64, priceTicks []int64, qtys []float64, sides []Side) error {
	if h.destroyed {
		return ErrDestroyed
	}
	n := len(tsMs)
	if len(priceTicks) != n || len(qtys) != n || len(sides) != n {
		return ErrLengthMismatch
	}

	// Validate the whole batch before mutating anything: every kernel
	// operation is total, so a single invalid tick anywhere in the batch
	// must leave state untouched rather than partially applying the
	// ticks before it.
	ticks := make([]Tick, n)
	for i := 0; i < n; i++ {
		ticks[i] = Tick{TsMs: tsMs[i], PriceTick: priceTicks[i], Qty: qtys[i], Side: sides[i]}
		if err := validateTick(ticks[i]); err != nil {
			return err
		}
	}

	for i := range ticks {
		// StepTick re-validates, which is redundant but keeps the
		// per-tick and batch paths byte-identical, satisfying the
		// equivalence contract rather than duplicating its fill logic here.
		if err := h.StepTick(ticks[i]); err != nil {
			return err
		}
	}
	return nil
}
