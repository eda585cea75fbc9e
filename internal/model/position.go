package model

// Position is the net exposure reconstructed from an order history.
type Position struct {
	Symbol      string  `json:"symbol"`
	Qty         float64 `json:"qty"`       // signed net quantity (positive = long)
	AvgEntry    float64 `json:"avg_entry"` // weighted-average entry price, 0 when flat
	RealizedPnL float64 `json:"realized_pnl"`
	Orders      int     `json:"orders"` // orders folded into this view
}

// UnrealizedPnL computes open profit/loss against a mark price.
func (p *Position) UnrealizedPnL(mark float64) float64 {
	if p.Qty == 0 {
		return 0
	}
	return (mark - p.AvgEntry) * p.Qty
}
