package strategy

import (
	"math/rand"

	"backtestkernel/kernel"
)

type liveQuote struct {
	orderID  uint64
	placedAt int64
}

// RandomQuoter places short-lived limit bids and asks around the last tick
// price, in the spirit of random_bid_bot/random_ask_bot but replacing their
// interval tickers and cancel-after timers with a tick-count lifetime,
// since the kernel driving it never suspends between calls.
type RandomQuoter struct {
	Qty         float64
	RangeTicks  int64
	LifetimeTk  int64
	rng         *rand.Rand
	bids, asks  []liveQuote
	tickCounter int64
}

// NewRandomQuoter builds a quoter seeded for reproducible scenario runs.
func NewRandomQuoter(seed int64, qty float64, rangeTicks, lifetimeTicks int64) *RandomQuoter {
	return &RandomQuoter{
		Qty:        qty,
		RangeTicks: rangeTicks,
		LifetimeTk: lifetimeTicks,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

func (q *RandomQuoter) OnTick(client *Client, tick kernel.Tick, snap kernel.Snapshot) {
	q.tickCounter++
	q.expire(client, &q.bids)
	q.expire(client, &q.asks)

	if q.RangeTicks <= 0 {
		q.RangeTicks = 1
	}
	bidDelta := q.rng.Int63n(q.RangeTicks + 1)
	askDelta := q.rng.Int63n(q.RangeTicks + 1)

	bidPrice := tick.PriceTick - bidDelta
	if bidPrice <= 0 {
		bidPrice = 1
	}
	askPrice := tick.PriceTick + askDelta

	bidID := client.NextID()
	if err := client.PlaceOrder(kernel.Order{OrderID: bidID, Kind: kernel.Limit, Side: kernel.Buy, Qty: q.Qty, PriceTick: bidPrice}); err == nil {
		q.bids = append(q.bids, liveQuote{orderID: bidID, placedAt: q.tickCounter})
	}

	askID := client.NextID()
	if err := client.PlaceOrder(kernel.Order{OrderID: askID, Kind: kernel.Limit, Side: kernel.Sell, Qty: q.Qty, PriceTick: askPrice}); err == nil {
		q.asks = append(q.asks, liveQuote{orderID: askID, placedAt: q.tickCounter})
	}
}

func (q *RandomQuoter) expire(client *Client, quotes *[]liveQuote) {
	if q.LifetimeTk <= 0 {
		return
	}
	kept := (*quotes)[:0]
	for _, quote := range *quotes {
		if q.tickCounter-quote.placedAt >= q.LifetimeTk {
			_ = client.CancelOrder(quote.orderID)
			continue
		}
		kept = append(kept, quote)
	}
	*quotes = kept
}
