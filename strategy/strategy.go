package strategy

import "backtestkernel/kernel"

// Strategy reacts to each tick synchronously, placing or cancelling orders
// through the client before the caller advances to the next tick.
type Strategy interface {
	OnTick(client *Client, tick kernel.Tick, snap kernel.Snapshot)
}
