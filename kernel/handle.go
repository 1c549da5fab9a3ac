package kernel

import "math"

// New validates cfg and returns a freshly zeroed handle with
// cash = cfg.InitialCash, empty open-order set, and zeroed account
// state.
func New(cfg Config) (*Handle, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = defaultCapacity
	}

	h := &Handle{cfg: cfg}
	h.resetState()
	return h, nil
}

func validateConfig(cfg Config) error {
	if !(cfg.TickSize > 0) {
		return ErrInvalidConfig
	}
	for _, v := range []float64{cfg.MakerFeeBps, cfg.TakerFeeBps, cfg.SpreadBps, cfg.InitialCash} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidConfig
		}
	}
	if cfg.MakerFeeBps < 0 || cfg.TakerFeeBps < 0 || cfg.SpreadBps < 0 {
		return ErrInvalidConfig
	}
	return nil
}

func (h *Handle) resetState() {
	h.acc = account{cash: h.cfg.InitialCash}
	h.orders = make([]order, 0, h.cfg.Capacity)
	h.live = make(map[uint64]int, h.cfg.Capacity)
	h.destroyed = false
}

// Reset restores the handle to its just-created state, preserving Config.
// It has no effect on a destroyed handle.
func (h *Handle) Reset() {
	if h.destroyed {
		return
	}
	h.resetState()
}

// Destroy releases the handle's resources. Any subsequent PlaceOrder,
// CancelOrder, StepTick or StepBatch on h returns ErrDestroyed, and
// Reset leaves it destroyed. There is nothing to free explicitly in
// Go beyond letting the garbage collector reclaim h.orders/h.live,
// but Destroy exists to make use-after-destroy a checked error.
func (h *Handle) Destroy() {
	h.destroyed = true
	h.orders = nil
	h.live = nil
}
