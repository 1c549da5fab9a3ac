package kernel

import "testing"

// Property 1: conservation — equity = cash + unrealized_pnl, and
// unrealized_pnl = 0 whenever position = 0.
func TestPropertyConservation(t *testing.T) {
	h, _ := New(baseConfig())
	must(t, h.PlaceOrder(Order{OrderID: 1, Kind: Market, Side: Buy, Qty: 2}))
	must(t, h.StepTick(Tick{TsMs: 1, PriceTick: 100, Side: Buy}))
	must(t, h.StepTick(Tick{TsMs: 2, PriceTick: 130, Side: Buy}))

	snap := h.Snapshot()
	if !almostEqual(snap.Equity, snap.Cash+snap.UnrealizedPnL) {
		t.Fatalf("equity != cash + unrealized: %+v", snap)
	}

	must(t, h.PlaceOrder(Order{OrderID: 2, Kind: Market, Side: Sell, Qty: 2}))
	must(t, h.StepTick(Tick{TsMs: 3, PriceTick: 140, Side: Sell}))
	flat := h.Snapshot()
	if flat.Position != 0 || flat.UnrealizedPnL != 0 {
		t.Fatalf("flat position must carry zero unrealized pnl: %+v", flat)
	}
}

// Property 2: scaling transparency — scaling every qty by k scales
// position, realized_pnl, unrealized_pnl, and cash-initial_cash by k.
func TestPropertyScalingTransparency(t *testing.T) {
	run := func(scale float64) Snapshot {
		h, _ := New(baseConfig())
		must(t, h.PlaceOrder(Order{OrderID: 1, Kind: Market, Side: Buy, Qty: 1 * scale}))
		must(t, h.StepTick(Tick{TsMs: 1, PriceTick: 100, Side: Buy}))
		must(t, h.PlaceOrder(Order{OrderID: 2, Kind: Market, Side: Buy, Qty: 3 * scale}))
		must(t, h.StepTick(Tick{TsMs: 2, PriceTick: 120, Side: Buy}))
		must(t, h.PlaceOrder(Order{OrderID: 3, Kind: Market, Side: Sell, Qty: 2 * scale}))
		must(t, h.StepTick(Tick{TsMs: 3, PriceTick: 130, Side: Sell}))
		return h.Snapshot()
	}

	base := run(1)
	scaled := run(4)

	if !almostEqual(scaled.Position, base.Position*4) {
		t.Fatalf("position did not scale: base %v scaled %v", base.Position, scaled.Position)
	}
	if !almostEqual(scaled.RealizedPnL, base.RealizedPnL*4) {
		t.Fatalf("realized_pnl did not scale: base %v scaled %v", base.RealizedPnL, scaled.RealizedPnL)
	}
	if !almostEqual(scaled.UnrealizedPnL, base.UnrealizedPnL*4) {
		t.Fatalf("unrealized_pnl did not scale: base %v scaled %v", base.UnrealizedPnL, scaled.UnrealizedPnL)
	}
	baseCashDelta := base.Cash - 100_000
	scaledCashDelta := scaled.Cash - 100_000
	if !almostEqual(scaledCashDelta, baseCashDelta*4) {
		t.Fatalf("cash delta did not scale: base %v scaled %v", baseCashDelta, scaledCashDelta)
	}
}

// Property 4: round-trip neutrality at zero spread/fees.
func TestPropertyRoundTripNeutrality(t *testing.T) {
	h, _ := New(baseConfig())
	must(t, h.PlaceOrder(Order{OrderID: 1, Kind: Market, Side: Buy, Qty: 2.5}))
	must(t, h.StepTick(Tick{TsMs: 1, PriceTick: 100, Side: Buy}))
	must(t, h.PlaceOrder(Order{OrderID: 2, Kind: Market, Side: Sell, Qty: 2.5}))
	must(t, h.StepTick(Tick{TsMs: 2, PriceTick: 100, Side: Sell}))

	snap := h.Snapshot()
	if !almostEqual(snap.RealizedPnL, 0) {
		t.Fatalf("realized_pnl = %v, want 0", snap.RealizedPnL)
	}
	if snap.Position != 0 {
		t.Fatalf("position = %v, want 0", snap.Position)
	}
	if !almostEqual(snap.Cash, 100_000) {
		t.Fatalf("cash = %v, want initial_cash", snap.Cash)
	}
}

// Property 5: weighted-average correctness (also covered by S2, kept
// here as a direct property statement over arbitrary sizes/prices).
func TestPropertyWeightedAverageCorrectness(t *testing.T) {
	cases := []struct{ q1, p1, q2, p2 float64 }{
		{1, 100, 3, 120},
		{2.5, 50, 1.5, 90},
		{10, 200, 1, 205},
	}
	for _, c := range cases {
		h, _ := New(baseConfig())
		must(t, h.PlaceOrder(Order{OrderID: 1, Kind: Market, Side: Buy, Qty: c.q1}))
		must(t, h.StepTick(Tick{TsMs: 1, PriceTick: int64(c.p1), Side: Buy}))
		must(t, h.PlaceOrder(Order{OrderID: 2, Kind: Market, Side: Buy, Qty: c.q2}))
		must(t, h.StepTick(Tick{TsMs: 2, PriceTick: int64(c.p2), Side: Buy}))

		want := (c.q1*c.p1 + c.q2*c.p2) / (c.q1 + c.q2)
		got := h.Snapshot().AvgEntryPrice
		if !almostEqual(got, want) {
			t.Errorf("case %+v: avg_entry_price = %v, want %v", c, got, want)
		}
	}
}

// Property 6: fee isolation — realized_pnl is independent of fees;
// cash deltas vary exactly by the sum of applied fees.
func TestPropertyFeeIsolation(t *testing.T) {
	run := func(feeBps float64) Snapshot {
		cfg := baseConfig()
		cfg.TakerFeeBps = feeBps
		h, _ := New(cfg)
		must(t, h.PlaceOrder(Order{OrderID: 1, Kind: Market, Side: Buy, Qty: 2}))
		must(t, h.StepTick(Tick{TsMs: 1, PriceTick: 100, Side: Buy}))
		must(t, h.PlaceOrder(Order{OrderID: 2, Kind: Market, Side: Sell, Qty: 2}))
		must(t, h.StepTick(Tick{TsMs: 2, PriceTick: 110, Side: Sell}))
		return h.Snapshot()
	}

	noFee := run(0)
	withFee := run(25) // 0.25%

	if !almostEqual(noFee.RealizedPnL, withFee.RealizedPnL) {
		t.Fatalf("realized_pnl depends on fees: %v vs %v", noFee.RealizedPnL, withFee.RealizedPnL)
	}

	buyFee := 100.0 * 2 * (25.0 / 10000)
	sellFee := 110.0 * 2 * (25.0 / 10000)
	wantDelta := buyFee + sellFee
	gotDelta := noFee.Cash - withFee.Cash
	if !almostEqual(gotDelta, wantDelta) {
		t.Fatalf("cash delta from fees = %v, want %v", gotDelta, wantDelta)
	}
}

// Property 7: order-set bound.
func TestPropertyOrderSetBound(t *testing.T) {
	cfg := baseConfig()
	cfg.Capacity = 3
	h, _ := New(cfg)

	for i := uint64(1); i <= 3; i++ {
		must(t, h.PlaceOrder(Order{OrderID: i, Kind: Limit, Side: Buy, Qty: 1, PriceTick: int64(i)}))
	}
	before := h.Snapshot()
	if err := h.PlaceOrder(Order{OrderID: 4, Kind: Limit, Side: Buy, Qty: 1, PriceTick: 4}); err == nil {
		t.Fatalf("expected order_book_full at capacity")
	}
	if after := h.Snapshot(); after != before {
		t.Fatalf("rejected placement mutated state")
	}
}
