package backtest

// Trade is one completed round trip (one open plus one close).
type Trade struct {
	EntryTS int64   `json:"entry_ts"`
	Entry   float64 `json:"entry"` // entry fill price
	ExitTS  int64   `json:"exit_ts"`
	Exit    float64 `json:"exit"` // exit fill price
	Qty     float64 `json:"qty"`
	PnL     float64 `json:"pnl"`
}

// EquityPoint is one mark-to-market sample of account value.
type EquityPoint struct {
	TS     int64   `json:"ts"`
	Equity float64 `json:"equity"`
}

// Result is the output of a single backtest run.
type Result struct {
	Strategy    string        `json:"strategy"`
	Trades      []Trade       `json:"trades"`
	EquityCurve []EquityPoint `json:"equity_curve"`
	TotalPnL    float64       `json:"total_pnl"`
	WinRate     float64       `json:"win_rate"` // percent of trades with pnl > 0
	FinalEquity float64       `json:"final_equity"`
}

// finalize fills the aggregate fields from the trade ledger.
func (r *Result) finalize() {
	wins := 0
	for _, t := range r.Trades {
		r.TotalPnL += t.PnL
		if t.PnL > 0 {
			wins++
		}
	}
	if len(r.Trades) > 0 {
		r.WinRate = 100 * float64(wins) / float64(len(r.Trades))
	}
}
