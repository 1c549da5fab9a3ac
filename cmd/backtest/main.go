package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"backtestkernel/internal/metrics"
	"backtestkernel/internal/scenario"
	"backtestkernel/internal/util"
	"backtestkernel/server"
	"backtestkernel/strategy"
)

func main() {
	configPath := flag.String("config", "", "path to a scenario YAML config; if empty, flags below are used")
	seed := flag.Int64("seed", time.Now().UnixNano(), "seed for the synthetic tick feed")
	ticks := flag.Int("ticks", 100000, "number of synthetic ticks to generate")
	basePrice := flag.Int64("base-price", 10000, "starting price tick for the synthetic feed")
	volTicks := flag.Int64("vol-ticks", 4, "per-tick random-walk step bound")
	initialCash := flag.Float64("initial-cash", 100000, "starting account cash")
	tickSize := flag.Float64("tick-size", 1, "monetary value of one price tick")
	takerFeeBps := flag.Float64("taker-fee-bps", 5, "taker fee in basis points")
	spreadBps := flag.Float64("spread-bps", 0, "synthetic spread in basis points")
	strategyMode := flag.String("strategy", "random_quoter", "random_quoter or spread_follower")
	listenAddr := flag.String("listen", getEnv("LISTEN_ADDR", ":8080"), "HTTP listen address for live snapshot streaming")
	metricsAddr := flag.String("metrics", getEnv("METRICS_ADDR", ":9090"), "Prometheus metrics listen address")
	logLevel := flag.String("log-level", getEnv("LOG_LEVEL", "info"), "zerolog level")
	serve := flag.Bool("serve", false, "keep the HTTP server up after the run completes")
	flag.Parse()

	logger := util.NewLogger(*logLevel)

	cfg, err := loadOrBuildConfig(*configPath, scenario.Config{
		App:    scenario.App{Name: "backtest", LogLevel: *logLevel, MetricsAddr: *metricsAddr, ServerAddr: *listenAddr},
		Kernel: scenario.Kernel{TakerFeeBps: *takerFeeBps, SpreadBps: *spreadBps, InitialCash: *initialCash, TickSize: *tickSize, Capacity: 4096},
		Feed:   scenario.Feed{Seed: *seed, Ticks: *ticks, BasePrice: *basePrice, VolTicks: *volTicks, MinQty: 0.1, MaxQty: 2, TickMs: 100},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	metricsSrv := metrics.Serve(cfg.App.MetricsAddr)
	defer metricsSrv.Close()

	strat := buildStrategy(*strategyMode)

	runner, err := scenario.NewRunner(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build kernel")
	}
	corsOrigins := strings.Split(getEnv("CORS_ORIGIN", "*"), ",")
	srv := server.New(runner.Client(), os.Getenv("AUTH_TOKEN"), corsOrigins, logger)
	runner.OnTick(srv.PublishSnapshot)

	var httpSrv *http.Server
	if *serve {
		httpSrv = &http.Server{Addr: cfg.App.ServerAddr, Handler: srv.Routes()}
		go func() {
			logger.Info().Str("addr", cfg.App.ServerAddr).Msg("streaming server listening")
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("streaming server stopped")
			}
		}()
	}

	report, err := runner.Run(strat)
	if err != nil {
		logger.Fatal().Err(err).Msg("scenario run failed")
	}

	fmt.Printf("scenario %q: %d ticks applied\n", report.Name, report.TicksApplied)
	fmt.Printf("final equity=%.2f cash=%.2f position=%.6f realized_pnl=%.2f\n",
		report.FinalSnapshot.Equity, report.FinalSnapshot.Cash, report.FinalSnapshot.Position, report.FinalSnapshot.RealizedPnL)
	if n := len(report.EquityCurve); n > 0 {
		start := 0
		if n > 5 {
			start = n - 5
		}
		fmt.Printf("equity curve tail (%d of %d points): %.2f\n", n-start, n, report.EquityCurve[start:])
	}

	if *serve && httpSrv != nil {
		select {}
	}
}

func loadOrBuildConfig(path string, fallback scenario.Config) (scenario.Config, error) {
	if path == "" {
		return fallback, nil
	}
	cfg, err := scenario.Load(path)
	if err != nil {
		return scenario.Config{}, err
	}
	return *cfg, nil
}

func buildStrategy(mode string) strategy.Strategy {
	switch mode {
	case "spread_follower":
		return strategy.NewSpreadFollower(1, 5, 2)
	case "random_quoter":
		return strategy.NewRandomQuoter(time.Now().UnixNano(), 1, 5, 10)
	case "none":
		return nil
	default:
		log.Printf("unknown strategy %q, defaulting to random_quoter", mode)
		return strategy.NewRandomQuoter(time.Now().UnixNano(), 1, 5, 10)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
