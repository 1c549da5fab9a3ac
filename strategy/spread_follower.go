package strategy

import "backtestkernel/kernel"

func absTicks(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// SpreadFollower maintains a paired bid/ask around the last tick price and
// re-quotes whenever the price has drifted past a threshold, replacing
// spread_capture_bot's book-view mid tracking with the tick price itself
// since this kernel has no resting book to read a best bid/ask from.
type SpreadFollower struct {
	Qty            float64
	ThresholdTicks int64
	HalfSpreadTk   int64

	bidID, askID uint64
	haveQuotes   bool
	anchor       int64
}

// NewSpreadFollower builds a spread-following quoter.
func NewSpreadFollower(qty float64, thresholdTicks, halfSpreadTicks int64) *SpreadFollower {
	return &SpreadFollower{Qty: qty, ThresholdTicks: thresholdTicks, HalfSpreadTk: halfSpreadTicks}
}

func (s *SpreadFollower) OnTick(client *Client, tick kernel.Tick, snap kernel.Snapshot) {
	if s.haveQuotes && absTicks(tick.PriceTick-s.anchor) < s.ThresholdTicks {
		return
	}
	s.cancelPair(client)

	half := s.HalfSpreadTk
	if half <= 0 {
		half = 1
	}
	bidPrice := tick.PriceTick - half
	if bidPrice <= 0 {
		bidPrice = 1
	}
	askPrice := tick.PriceTick + half

	bidID := client.NextID()
	if err := client.PlaceOrder(kernel.Order{OrderID: bidID, Kind: kernel.Limit, Side: kernel.Buy, Qty: s.Qty, PriceTick: bidPrice}); err != nil {
		return
	}
	askID := client.NextID()
	if err := client.PlaceOrder(kernel.Order{OrderID: askID, Kind: kernel.Limit, Side: kernel.Sell, Qty: s.Qty, PriceTick: askPrice}); err != nil {
		_ = client.CancelOrder(bidID)
		return
	}

	s.bidID, s.askID, s.anchor, s.haveQuotes = bidID, askID, tick.PriceTick, true
}

func (s *SpreadFollower) cancelPair(client *Client) {
	if !s.haveQuotes {
		return
	}
	_ = client.CancelOrder(s.bidID)
	_ = client.CancelOrder(s.askID)
	s.haveQuotes = false
}
