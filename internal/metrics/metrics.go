// Package metrics exposes Prometheus counters for a running backtest scenario.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtest_ticks_total", Help: "Ticks applied to the kernel"},
		[]string{"scenario"},
	)
	OrdersPlacedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtest_orders_placed_total", Help: "Orders accepted by place_order"},
		[]string{"scenario", "side"},
	)
	OrdersCancelledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtest_orders_cancelled_total", Help: "Orders accepted by cancel_order"},
		[]string{"scenario"},
	)
	FillsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtest_fills_total", Help: "Orders filled during step_tick"},
		[]string{"scenario", "side"},
	)
	KernelErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtest_kernel_errors_total", Help: "Kernel calls that returned an error"},
		[]string{"scenario", "op"},
	)
	AuthRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtest_auth_rejections_total", Help: "HTTP requests rejected for a missing or invalid token"},
		[]string{"path"},
	)
)

func init() {
	prometheus.MustRegister(TicksTotal, OrdersPlacedTotal, OrdersCancelledTotal, FillsTotal, KernelErrorsTotal, AuthRejectionsTotal)
}

// Serve starts a background HTTP server exposing /metrics and returns it
// so the caller can shut it down.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
