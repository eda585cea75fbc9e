// cmd/backtest replays historical candles from SQLite through a strategy and
// prints the resulting trade ledger and equity summary.
//
// Usage:
//
//	go run ./cmd/backtest --db=data/candles.db --symbol=BTCUSDT \
//	    --strategy=sma_cross --fast=9 --slow=21 --equity=10000 --fee=10
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"tradesim/config"
	"tradesim/internal/backtest"
	"tradesim/internal/logger"
	"tradesim/internal/model"
	"tradesim/internal/strategy"
	sqlitestore "tradesim/internal/store/sqlite"
)

func main() {
	logger.Init("backtest", slog.LevelInfo)

	dbPath := flag.String("db", "data/candles.db", "Path to SQLite candle database")
	symbol := flag.String("symbol", "BTCUSDT", "Symbol to replay")
	fromTS := flag.Int64("from", 0, "Unix timestamp to start replay from (0=all)")
	stratName := flag.String("strategy", "sma_cross", "Strategy: sma_cross | rsi_rev")
	fast := flag.Int("fast", 9, "Fast SMA period (sma_cross)")
	slow := flag.Int("slow", 21, "Slow SMA period (sma_cross)")
	period := flag.Int("period", 14, "RSI period (rsi_rev)")
	equity := flag.Float64("equity", 10000, "Initial equity")
	feeBps := flag.Float64("fee", 0, "Fee in basis points")
	slipBps := flag.Float64("slip", 0, "Slippage in basis points")
	maxTrades := flag.Int("max-trades", 25, "Max trades to print (0=all)")
	stratFile := flag.String("strategy-file", "", "YAML strategy spec; overrides the strategy flags")
	flag.Parse()

	spec := strategy.Spec{
		Name:   *stratName,
		Fast:   *fast,
		Slow:   *slow,
		Period: *period,
	}
	if *stratFile != "" {
		var err error
		spec, err = config.LoadStrategy(*stratFile)
		if err != nil {
			log.Fatalf("[backtest] %v", err)
		}
	}

	strat, err := strategy.FromSpec(spec)
	if err != nil {
		log.Fatalf("[backtest] %v", err)
	}

	store, err := sqlitestore.Open(*dbPath)
	if err != nil {
		log.Fatalf("[backtest] sqlite open failed: %v", err)
	}
	defer store.Close()

	candles, err := store.ReadCandles(*symbol, *fromTS)
	if err != nil {
		log.Fatalf("[backtest] read candles: %v", err)
	}
	if len(candles) == 0 {
		log.Fatalf("[backtest] no candles for %s in %s", *symbol, *dbPath)
	}

	start := time.Now()
	result, err := backtest.Run(candles, strat, backtest.Options{
		InitialEquity: *equity,
		FeeBps:        *feeBps,
		SlippageBps:   *slipBps,
	})
	if err != nil {
		log.Fatalf("[backtest] %v", err)
	}
	elapsed := time.Since(start)

	printTrades(result, *maxTrades)
	printSummary(result, *symbol, candles, *equity, elapsed)
}

func printTrades(res backtest.Result, max int) {
	if len(res.Trades) == 0 {
		fmt.Println("\nno trades")
		return
	}

	trades := res.Trades
	if max > 0 && len(trades) > max {
		fmt.Printf("\nshowing last %d of %d trades\n", max, len(trades))
		trades = trades[len(trades)-max:]
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("#", "Entry", "Exit", "Qty", "Entry Px", "Exit Px", "PnL")
	for i, tr := range trades {
		table.Append(
			fmt.Sprintf("%d", i+1),
			time.Unix(tr.EntryTS, 0).UTC().Format("01-02 15:04"),
			time.Unix(tr.ExitTS, 0).UTC().Format("01-02 15:04"),
			fmt.Sprintf("%.6f", tr.Qty),
			fmt.Sprintf("%.2f", tr.Entry),
			fmt.Sprintf("%.2f", tr.Exit),
			fmt.Sprintf("%+.2f", tr.PnL),
		)
	}
	table.Render()
}

func printSummary(res backtest.Result, symbol string, candles []model.Candle, initial float64, elapsed time.Duration) {
	ret := 0.0
	if initial > 0 {
		ret = 100 * (res.FinalEquity - initial) / initial
	}

	first := candles[0].Time().Format(time.RFC3339)
	last := candles[len(candles)-1].Time().Format(time.RFC3339)

	fmt.Printf("\n%s / %s\n", symbol, res.Strategy)
	fmt.Printf("  period:        %s .. %s\n", first, last)
	fmt.Printf("  candles:       %d\n", len(candles))
	fmt.Printf("  trades:        %d\n", len(res.Trades))
	fmt.Printf("  win rate:      %.1f%%\n", res.WinRate)
	fmt.Printf("  total pnl:     %+.2f\n", res.TotalPnL)
	fmt.Printf("  final equity:  %.2f (%+.2f%%)\n", res.FinalEquity, ret)
	fmt.Printf("  elapsed:       %s\n", elapsed)
}
