package backtest

import (
	"math"
	"testing"

	"tradesim/internal/model"
	"tradesim/internal/strategy"
)

// scripted replays a fixed signal per index; out-of-range indices hold.
type scripted struct {
	strategy.NopInit
	signals []strategy.Signal
}

func (s *scripted) Name() string { return "scripted" }

func (s *scripted) OnCandle(ctx strategy.Context, _ []model.Candle) strategy.Signal {
	if ctx.Index < len(s.signals) {
		return s.signals[ctx.Index]
	}
	return strategy.SignalHold
}

func candles(closes ...float64) []model.Candle {
	out := make([]model.Candle, len(closes))
	for i, c := range closes {
		out[i] = model.Candle{Symbol: "TESTUSDT", TS: int64(i + 1), Open: c, High: c, Low: c, Close: c}
	}
	return out
}

func assertClose(t *testing.T, label string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: got %.10f, want %.10f", label, got, want)
	}
}

func mustRun(t *testing.T, cs []model.Candle, strat strategy.Strategy, opts Options) Result {
	t.Helper()
	res, err := Run(cs, strat, opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return res
}

func TestRun_SimpleRoundTrip(t *testing.T) {
	// 1000 equity, no fee/slip, buy at 100 then sell at 110:
	// qty = 1000/100 = 10, pnl = (110-100)*10 = 100, final equity 1100.
	cs := candles(100, 110)
	res := mustRun(t, cs, &scripted{signals: []strategy.Signal{strategy.SignalBuy, strategy.SignalSell}},
		Options{InitialEquity: 1000})

	if len(res.Trades) != 1 {
		t.Fatalf("trades: got %d, want 1", len(res.Trades))
	}
	tr := res.Trades[0]
	assertClose(t, "entry", tr.Entry, 100)
	assertClose(t, "exit", tr.Exit, 110)
	assertClose(t, "qty", tr.Qty, 10)
	assertClose(t, "pnl", tr.PnL, 100)
	assertClose(t, "total pnl", res.TotalPnL, 100)
	assertClose(t, "win rate", res.WinRate, 100)
	assertClose(t, "final curve point", res.EquityCurve[len(res.EquityCurve)-1].Equity, 1100)
	assertClose(t, "final equity", res.FinalEquity, 1100)
	if tr.EntryTS != 1 || tr.ExitTS != 2 {
		t.Errorf("trade timestamps: got %d→%d, want 1→2", tr.EntryTS, tr.ExitTS)
	}
}

func TestRun_EquityIdentityEveryStep(t *testing.T) {
	// Replay with interleaved signals and verify the recorded curve equals
	// cash + position*close at every step, recomputed independently.
	cs := candles(100, 105, 95, 102, 98, 110, 90)
	sigs := []strategy.Signal{
		strategy.SignalBuy, strategy.SignalHold, strategy.SignalSell,
		strategy.SignalBuy, strategy.SignalHold, strategy.SignalSell,
		strategy.SignalBuy,
	}
	res := mustRun(t, cs, &scripted{signals: sigs}, Options{InitialEquity: 500})

	if len(res.EquityCurve) != len(cs) {
		t.Fatalf("curve length: got %d, want %d", len(res.EquityCurve), len(cs))
	}

	// Shadow replay.
	equity, position := 500.0, 0.0
	for i, c := range cs {
		switch sigs[i] {
		case strategy.SignalBuy:
			if position == 0 {
				position = equity / c.Close
				equity = 0
			}
		case strategy.SignalSell:
			if position > 0 {
				equity += position * c.Close
				position = 0
			}
		}
		want := equity + position*c.Close
		if i == len(cs)-1 && position > 0 {
			// Force-close overwrites the last point with liquidation equity.
			want = equity + position*c.Close
		}
		assertClose(t, "curve point", res.EquityCurve[i].Equity, want)
	}
}

func TestRun_FeeAndSlippage(t *testing.T) {
	// fee 10 bps, slip 20 bps, one round trip at close 100 then 100:
	// buy fill  = 100 * 1.002 = 100.2
	// qty       = 1000 * 0.999 / 100.2
	// sell fill = 100 * 0.998 = 99.8
	// pnl       = (99.8 - 100.2) * qty
	cs := candles(100, 100)
	res := mustRun(t, cs, &scripted{signals: []strategy.Signal{strategy.SignalBuy, strategy.SignalSell}},
		Options{InitialEquity: 1000, FeeBps: 10, SlippageBps: 20})

	qty := 1000 * 0.999 / 100.2
	if len(res.Trades) != 1 {
		t.Fatalf("trades: got %d, want 1", len(res.Trades))
	}
	assertClose(t, "entry fill", res.Trades[0].Entry, 100.2)
	assertClose(t, "exit fill", res.Trades[0].Exit, 99.8)
	assertClose(t, "qty", res.Trades[0].Qty, qty)
	assertClose(t, "pnl", res.Trades[0].PnL, (99.8-100.2)*qty)
	assertClose(t, "final equity", res.FinalEquity, qty*99.8*0.999)
	if res.WinRate != 0 {
		t.Errorf("win rate: got %v, want 0 (losing trade)", res.WinRate)
	}
}

func TestRun_BuyWhileLongIgnored(t *testing.T) {
	cs := candles(100, 120, 140, 130)
	sigs := []strategy.Signal{strategy.SignalBuy, strategy.SignalBuy, strategy.SignalBuy, strategy.SignalSell}
	res := mustRun(t, cs, &scripted{signals: sigs}, Options{InitialEquity: 1000})

	// Only the first buy acts: one position of 10 opened at 100, closed at 130.
	if len(res.Trades) != 1 {
		t.Fatalf("trades: got %d, want 1", len(res.Trades))
	}
	assertClose(t, "entry", res.Trades[0].Entry, 100)
	assertClose(t, "qty", res.Trades[0].Qty, 10)
}

func TestRun_SellWhileFlatIgnored(t *testing.T) {
	cs := candles(100, 90, 80)
	sigs := []strategy.Signal{strategy.SignalSell, strategy.SignalSell, strategy.SignalSell}
	res := mustRun(t, cs, &scripted{signals: sigs}, Options{InitialEquity: 1000})

	if len(res.Trades) != 0 {
		t.Fatalf("trades: got %d, want 0", len(res.Trades))
	}
	assertClose(t, "final equity", res.FinalEquity, 1000)
	for _, p := range res.EquityCurve {
		assertClose(t, "flat curve", p.Equity, 1000)
	}
}

func TestRun_ForceCloseAtSeriesEnd(t *testing.T) {
	// Open at 100, never sell; series ends at 120 → liquidated there.
	cs := candles(100, 110, 120)
	res := mustRun(t, cs, &scripted{signals: []strategy.Signal{strategy.SignalBuy}},
		Options{InitialEquity: 1000})

	if len(res.Trades) != 1 {
		t.Fatalf("trades: got %d, want 1", len(res.Trades))
	}
	assertClose(t, "exit", res.Trades[0].Exit, 120)
	assertClose(t, "pnl", res.Trades[0].PnL, 200)
	// Final curve point is the post-liquidation equity, not double-counted.
	assertClose(t, "final curve point", res.EquityCurve[2].Equity, 1200)
	assertClose(t, "final equity", res.FinalEquity, 1200)
	if res.Trades[0].ExitTS != 3 {
		t.Errorf("force-close ts: got %d, want 3", res.Trades[0].ExitTS)
	}
}

func TestRun_UnrecognizedSignalTreatedAsHold(t *testing.T) {
	cs := candles(100, 110)
	res := mustRun(t, cs, &scripted{signals: []strategy.Signal{strategy.Signal(99), strategy.Signal(-1)}},
		Options{InitialEquity: 1000})

	if len(res.Trades) != 0 {
		t.Fatalf("trades: got %d, want 0", len(res.Trades))
	}
	assertClose(t, "final equity", res.FinalEquity, 1000)
}

func TestRun_EmptySeries(t *testing.T) {
	res := mustRun(t, nil, &scripted{}, Options{InitialEquity: 1000})
	if len(res.Trades) != 0 || len(res.EquityCurve) != 0 {
		t.Fatalf("empty series: got %d trades, %d curve points", len(res.Trades), len(res.EquityCurve))
	}
	assertClose(t, "final equity", res.FinalEquity, 1000)
	if res.WinRate != 0 {
		t.Errorf("win rate with no trades: got %v, want 0", res.WinRate)
	}
}

func TestRun_Deterministic(t *testing.T) {
	cs := candles(100, 104, 98, 107, 95, 111, 103, 99, 115, 92)
	mk := func() strategy.Strategy { return strategy.NewSMACrossover(2, 3) }

	a := mustRun(t, cs, mk(), Options{InitialEquity: 1000, FeeBps: 5, SlippageBps: 5})
	b := mustRun(t, cs, mk(), Options{InitialEquity: 1000, FeeBps: 5, SlippageBps: 5})

	if len(a.Trades) != len(b.Trades) {
		t.Fatalf("trade counts differ: %d vs %d", len(a.Trades), len(b.Trades))
	}
	for i := range a.Trades {
		if a.Trades[i] != b.Trades[i] {
			t.Errorf("trade %d differs: %+v vs %+v", i, a.Trades[i], b.Trades[i])
		}
	}
	assertClose(t, "total pnl", a.TotalPnL, b.TotalPnL)
	assertClose(t, "final equity", a.FinalEquity, b.FinalEquity)
}

func TestRun_WithRealStrategy_EquityConserved(t *testing.T) {
	// V-shaped series through an SMA crossover; the identity
	// curve == cash + position*close must hold at every step, which we
	// check indirectly: the curve never jumps except through fills, and the
	// final equity equals initial + total pnl when fees are zero.
	cs := candles(100, 98, 96, 94, 92, 94, 96, 98, 100, 102, 104, 102, 100, 98, 96)
	res := mustRun(t, cs, strategy.NewSMACrossover(2, 4), Options{InitialEquity: 1000})

	assertClose(t, "conservation", res.FinalEquity, 1000+res.TotalPnL)
}

// panicAt emits scripted signals until it blows up at a fixed index.
type panicAt struct {
	strategy.NopInit
	signals []strategy.Signal
	index   int
}

func (p *panicAt) Name() string { return "panic_at" }

func (p *panicAt) OnCandle(ctx strategy.Context, _ []model.Candle) strategy.Signal {
	if ctx.Index == p.index {
		panic("bad lookup")
	}
	if ctx.Index < len(p.signals) {
		return p.signals[ctx.Index]
	}
	return strategy.SignalHold
}

func TestRun_StrategyPanicPreservesPartialLedger(t *testing.T) {
	// Round trip over the first two candles, then the strategy fails at
	// index 3. The completed trade and the curve points recorded before the
	// failure must still come back to the caller.
	cs := candles(100, 110, 105, 107, 109)
	res, err := Run(cs, &panicAt{
		signals: []strategy.Signal{strategy.SignalBuy, strategy.SignalSell, strategy.SignalHold},
		index:   3,
	}, Options{InitialEquity: 1000})

	if err == nil {
		t.Fatal("expected an error from a failing strategy")
	}
	if len(res.Trades) != 1 {
		t.Fatalf("trades: got %d, want 1", len(res.Trades))
	}
	assertClose(t, "pnl", res.Trades[0].PnL, 100)
	if len(res.EquityCurve) != 3 {
		t.Fatalf("curve: got %d points, want 3", len(res.EquityCurve))
	}
	assertClose(t, "last marked equity", res.EquityCurve[2].Equity, 1100)
	assertClose(t, "final equity", res.FinalEquity, 1100)
	assertClose(t, "total pnl", res.TotalPnL, 100)
	assertClose(t, "win rate", res.WinRate, 100)
}

type initPanics struct{}

func (initPanics) Name() string        { return "init_panics" }
func (initPanics) Init([]model.Candle) { panic("bad precompute") }

func (initPanics) OnCandle(strategy.Context, []model.Candle) strategy.Signal {
	return strategy.SignalHold
}

func TestRun_StrategyPanicInInit(t *testing.T) {
	res, err := Run(candles(100, 110), initPanics{}, Options{InitialEquity: 1000})

	if err == nil {
		t.Fatal("expected an error from a failing Init")
	}
	if len(res.Trades) != 0 || len(res.EquityCurve) != 0 {
		t.Fatalf("ledger before first candle: got %d trades, %d curve points",
			len(res.Trades), len(res.EquityCurve))
	}
}
