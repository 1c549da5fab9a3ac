package scenario

import (
	"fmt"

	"github.com/rs/zerolog"

	"backtestkernel/internal/metrics"
	"backtestkernel/kernel"
	"backtestkernel/strategy"
)

// Report summarizes a completed scenario run with a single end-of-run
// snapshot, since a backtest run has a beginning and end rather than a
// live-forever process.
type Report struct {
	Name          string
	TicksApplied  int
	EquityCurve   []float64
	FinalSnapshot kernel.Snapshot
}

// Runner drives a kernel.Handle through a synthetic feed under a strategy,
// synchronously: the kernel is non-suspending, so every call happens in
// program order on the caller's own goroutine, with no per-strategy
// goroutine required.
type Runner struct {
	cfg    Config
	logger zerolog.Logger
	onTick func(kernel.Snapshot)
	client *strategy.Client
}

// NewRunner builds a Runner and its underlying kernel handle from scenario
// configuration.
func NewRunner(cfg Config, logger zerolog.Logger) (*Runner, error) {
	h, err := kernel.New(kernel.Config{
		MakerFeeBps: cfg.Kernel.MakerFeeBps,
		TakerFeeBps: cfg.Kernel.TakerFeeBps,
		SpreadBps:   cfg.Kernel.SpreadBps,
		InitialCash: cfg.Kernel.InitialCash,
		TickSize:    cfg.Kernel.TickSize,
		Capacity:    cfg.Kernel.Capacity,
	})
	if err != nil {
		return nil, fmt.Errorf("build kernel: %w", err)
	}
	return &Runner{cfg: cfg, logger: logger, client: strategy.NewClient(h)}, nil
}

// Client exposes the runner's strategy client, e.g. to wire an HTTP server
// against the same kernel handle the run drives.
func (r *Runner) Client() *strategy.Client {
	return r.client
}

// OnTick registers a callback invoked with the kernel snapshot after every
// applied tick, used to feed a live server.Server.
func (r *Runner) OnTick(fn func(kernel.Snapshot)) {
	r.onTick = fn
}

// Run executes the configured feed against the runner's kernel handle
// driven by strat, and returns a summary report.
func (r *Runner) Run(strat strategy.Strategy) (Report, error) {
	client := r.client
	h := client.Handle()
	events := NewFeeder(r.cfg.Feed).Generate()

	r.logger.Info().Str("scenario", r.cfg.App.Name).Int("ticks", len(events)).Msg("scenario starting")

	equityCurve := make([]float64, 0, len(events))
	for _, ev := range events {
		tick := kernel.Tick{TsMs: ev.TsMs, PriceTick: ev.PriceTick, Qty: ev.Qty, Side: ev.Side}
		snap := h.Snapshot()
		if strat != nil {
			strat.OnTick(client, tick, snap)
		}

		if err := h.StepTick(tick); err != nil {
			metrics.KernelErrorsTotal.WithLabelValues(r.cfg.App.Name, "step_tick").Inc()
			return Report{}, fmt.Errorf("step tick at ts_ms=%d: %w", ev.TsMs, err)
		}
		metrics.TicksTotal.WithLabelValues(r.cfg.App.Name).Inc()

		newSnap := h.Snapshot()
		equityCurve = append(equityCurve, newSnap.Equity)
		if r.onTick != nil {
			r.onTick(newSnap)
		}
		r.logger.Debug().
			Int64("ts_ms", ev.TsMs).
			Str("tick_side", tick.Side.String()).
			Float64("position", newSnap.Position).
			Float64("equity", newSnap.Equity).
			Msg("tick applied")
	}

	final := h.Snapshot()
	r.logger.Info().
		Str("scenario", r.cfg.App.Name).
		Float64("final_equity", final.Equity).
		Float64("realized_pnl", final.RealizedPnL).
		Msg("scenario complete")

	return Report{Name: r.cfg.App.Name, TicksApplied: len(events), EquityCurve: equityCurve, FinalSnapshot: final}, nil
}
