package strategy

import (
	"testing"

	"tradesim/internal/model"
)

func candles(closes ...float64) []model.Candle {
	out := make([]model.Candle, len(closes))
	for i, c := range closes {
		out[i] = model.Candle{Symbol: "TESTUSDT", TS: int64(i + 1), Open: c, High: c, Low: c, Close: c}
	}
	return out
}

func signalsFor(s Strategy, cs []model.Candle) []Signal {
	s.Init(cs)
	out := make([]Signal, len(cs))
	for i, c := range cs {
		out[i] = s.OnCandle(Context{Index: i, Candle: c}, cs)
	}
	return out
}

func TestParseSignal_Total(t *testing.T) {
	cases := map[string]Signal{
		"buy":       SignalBuy,
		"BUY":       SignalBuy,
		" Sell ":    SignalSell,
		"hold":      SignalHold,
		"":          SignalHold,
		"HODL":      SignalHold,
		"liquidate": SignalHold,
	}
	for raw, want := range cases {
		if got := ParseSignal(raw); got != want {
			t.Errorf("ParseSignal(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestSMACrossover_GoldenAndDeathCross(t *testing.T) {
	// Downtrend long enough to warm up both SMAs with fast < slow, then a
	// sharp reversal up (fast crosses above slow), then a reversal back down.
	cs := candles(20, 19, 18, 17, 16, 15, 30, 31, 32, 10, 9, 8)
	sigs := signalsFor(NewSMACrossover(2, 4), cs)

	var buys, sells int
	firstBuy, firstSell := -1, -1
	for i, s := range sigs {
		switch s {
		case SignalBuy:
			buys++
			if firstBuy == -1 {
				firstBuy = i
			}
		case SignalSell:
			sells++
			if firstSell == -1 {
				firstSell = i
			}
		}
	}

	if buys == 0 {
		t.Fatal("expected at least one buy on the upward reversal")
	}
	if sells == 0 {
		t.Fatal("expected at least one sell on the downward reversal")
	}
	if firstBuy >= firstSell {
		t.Errorf("buy at %d should precede sell at %d", firstBuy, firstSell)
	}
}

func TestSMACrossover_HoldDuringWarmup(t *testing.T) {
	cs := candles(1, 2, 3, 4, 5)
	sigs := signalsFor(NewSMACrossover(2, 4), cs)
	// Slow SMA(4) is undefined until index 3, so indices 0..3 must hold
	// (crossover also needs the previous value, defined from index 4).
	for i := 0; i <= 3; i++ {
		if sigs[i] != SignalHold {
			t.Errorf("warmup index %d: got %v, want hold", i, sigs[i])
		}
	}
}

func TestRSIReversion_BuysOversold_SellsOverbought(t *testing.T) {
	// Straight drop then straight climb: RSI pins to 0 on the way down
	// and 100 on the way up.
	cs := candles(50, 48, 46, 44, 42, 44, 46, 48, 50, 52)
	sigs := signalsFor(NewRSIReversion(3, 30, 70), cs)

	if sigs[3] != SignalBuy {
		t.Errorf("index 3 (RSI 0): got %v, want buy", sigs[3])
	}
	last := len(sigs) - 1
	if sigs[last] != SignalSell {
		t.Errorf("index %d (RSI 100): got %v, want sell", last, sigs[last])
	}
	// Warm-up indices hold.
	for i := 0; i < 3; i++ {
		if sigs[i] != SignalHold {
			t.Errorf("warmup index %d: got %v, want hold", i, sigs[i])
		}
	}
}

func TestStrategies_Deterministic(t *testing.T) {
	cs := candles(10, 11, 9, 12, 8, 13, 7, 14, 6, 15)
	a := signalsFor(NewSMACrossover(2, 4), cs)
	b := signalsFor(NewSMACrossover(2, 4), cs)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("signal mismatch at %d: %v vs %v", i, a[i], b[i])
		}
	}
}
