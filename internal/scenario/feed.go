package scenario

import (
	"math/rand"

	"backtestkernel/kernel"
)

// TickEvent is one synthetic market tick fed into the kernel.
type TickEvent struct {
	TsMs      int64
	PriceTick int64
	Qty       float64
	Side      kernel.Side
}

// Feeder generates a deterministic random-walk tick stream from a seed.
type Feeder struct {
	cfg  Feed
	rng  *rand.Rand
	last int64
}

// NewFeeder builds a Feeder from the given feed configuration.
func NewFeeder(cfg Feed) *Feeder {
	return &Feeder{
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
		last: cfg.BasePrice,
	}
}

// Generate produces cfg.Ticks synthetic ticks as a deterministic sequence.
func (f *Feeder) Generate() []TickEvent {
	events := make([]TickEvent, f.cfg.Ticks)
	for i := 0; i < f.cfg.Ticks; i++ {
		events[i] = f.next(int64(i) + 1)
	}
	return events
}

func (f *Feeder) next(seq int64) TickEvent {
	width := f.cfg.VolTicks
	if width <= 0 {
		width = 1
	}
	step := f.rng.Int63n(2*width+1) - width
	f.last += step
	if f.last < 1 {
		f.last = 1
	}

	qtySpan := f.cfg.MaxQty - f.cfg.MinQty
	qty := f.cfg.MinQty
	if qtySpan > 0 {
		qty += f.rng.Float64() * qtySpan
	}

	// The generator only ever produces the wire encoding kernel.SideFromInt
	// understands (0 or 1), so the ok result is always true here.
	side, _ := kernel.SideFromInt(f.rng.Int63n(2))

	return TickEvent{
		TsMs:      seq * f.cfg.TickMs,
		PriceTick: f.last,
		Qty:       qty,
		Side:      side,
	}
}
