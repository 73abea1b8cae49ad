// Package depth aggregates a book.Book's resting liquidity into
// granularity-bucketed level snapshots (spec §4.4). Projection never
// mutates the book; callers take a read lock around Project for the
// duration of the walk (see engine.Engine.View) so the result reflects a
// single consistent instant.
package depth

import "gemmy/internal/book"

// Granularity names a price-bucket width. The numeric values match the
// wire protocol's bit-exact enum (spec §6): P00=0, P0=1, P=2, P10=3,
// P100=4.
type Granularity int

const (
	P00  Granularity = iota // 0.01 price units
	P0                      // 0.1 price units
	P                       // 1 price unit
	P10                     // 10 price units
	P100                    // 100 price units
)

// bucketSize returns the integer bucket width for a granularity. Prices
// are unsigned integers with no sub-unit tick (spec §3), so P00 and P0
// cannot subdivide a price any finer than P does; both collapse to a
// bucket width of 1 (DESIGN.md Open Question 3).
func (g Granularity) bucketSize() uint64 {
	switch g {
	case P10:
		return 10
	case P100:
		return 100
	default:
		return 1
	}
}

// Level is one aggregated price bucket: Price is the bucket's floor
// price, Quantity is the sum of every resting level's quantity that maps
// into it.
type Level struct {
	Price    uint64
	Quantity uint64
}

// Snapshot is a full depth projection: best prices, the last trade
// price, and bucketed levels for both sides, best-first.
type Snapshot struct {
	MaxBid         uint64
	HasMaxBid      bool
	MinAsk         uint64
	HasMinAsk      bool
	LastTradePrice uint64
	HasLastTrade   bool
	Bids           []Level
	Asks           []Level
}

// Project builds a Snapshot from b at the given granularity, capping each
// side to maxLevels buckets (0 means unbounded, i.e. "all buckets").
func Project(b *book.Book, gran Granularity, maxLevels int) Snapshot {
	snap := Snapshot{}
	snap.MaxBid, snap.HasMaxBid = b.BestBid()
	snap.MinAsk, snap.HasMinAsk = b.BestAsk()
	snap.LastTradePrice, snap.HasLastTrade = b.LastTradePrice()

	g := gran.bucketSize()
	snap.Bids = bucketSide(b.Bids, g, maxLevels)
	snap.Asks = bucketSide(b.Asks, g, maxLevels)
	return snap
}

// bucketSide walks side best-first, aggregating consecutive price levels
// into the same bucket. floor(p/g)*g is monotonic in p, so levels that
// share a bucket are always contiguous in best-first scan order: once the
// bucket changes, the previous one is finished and can be emitted.
func bucketSide(side *book.BookSide, g uint64, maxLevels int) []Level {
	var out []Level
	var current *Level

	side.Levels(func(lvl *book.PriceLevel) bool {
		bucketPrice := (lvl.Price / g) * g

		if current != nil && current.Price == bucketPrice {
			current.Quantity += lvl.Quantity()
			return true
		}

		if current != nil {
			out = append(out, *current)
			if maxLevels > 0 && len(out) >= maxLevels {
				current = nil
				return false
			}
		}
		current = &Level{Price: bucketPrice, Quantity: lvl.Quantity()}
		return true
	})

	if current != nil {
		out = append(out, *current)
	}
	return out
}
