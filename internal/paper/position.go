package paper

import (
	"math"

	"tradesim/internal/model"
)

// ComputePosition folds an order sequence into the net position for symbol.
// Orders for other symbols are skipped; order of the sequence is significant.
//
// A BUY increases the net quantity and recomputes the weighted-average entry
// price. A SELL decreases it and realizes pnl against the current average
// entry without moving it. A sale that flips the sign instead establishes
// a new entry for the remaining quantity at the flip price. This is
// the same fill discipline the backtest engine applies to its own signals,
// applied here to externally-submitted orders.
func ComputePosition(symbol string, orders []model.Order) model.Position {
	pos := model.Position{Symbol: symbol}

	for _, o := range orders {
		if o.Symbol != symbol || o.Qty == 0 {
			continue
		}

		delta := o.Qty
		if o.Side == model.SideSell {
			delta = -delta
		}
		newQty := pos.Qty + delta

		switch {
		case pos.Qty == 0 || sameSign(pos.Qty, delta):
			// Extending exposure: weighted-average entry.
			total := pos.AvgEntry*math.Abs(pos.Qty) + o.Price*math.Abs(delta)
			pos.AvgEntry = total / math.Abs(newQty)
		case math.Abs(delta) <= math.Abs(pos.Qty):
			// Reducing: realize against the average entry, entry unchanged.
			pos.RealizedPnL += realized(pos.Qty, pos.AvgEntry, o.Price, math.Abs(delta))
			if newQty == 0 {
				pos.AvgEntry = 0
			}
		default:
			// Sign flip: close the whole old side, remainder re-enters at
			// the fill price.
			pos.RealizedPnL += realized(pos.Qty, pos.AvgEntry, o.Price, math.Abs(pos.Qty))
			pos.AvgEntry = o.Price
		}

		pos.Qty = newQty
		pos.Orders++
	}
	return pos
}

func sameSign(a, b float64) bool {
	return (a > 0) == (b > 0)
}

// realized computes the closed-out pnl for qty units against avgEntry,
// from the perspective of the held side.
func realized(heldQty, avgEntry, fill, qty float64) float64 {
	if heldQty > 0 {
		return (fill - avgEntry) * qty
	}
	return (avgEntry - fill) * qty
}
