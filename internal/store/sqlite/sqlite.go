// Package sqlite persists candle history for backtests. The paper order
// ledger itself stays in memory; only market data goes to disk.
package sqlite

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"

	"tradesim/internal/model"
)

// Store provides candle read/write access backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the candle database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)

	schema := `
	CREATE TABLE IF NOT EXISTS candles (
		symbol  TEXT NOT NULL,
		ts      INTEGER NOT NULL,
		open    REAL NOT NULL,
		high    REAL NOT NULL,
		low     REAL NOT NULL,
		close   REAL NOT NULL,
		volume  REAL NOT NULL,
		PRIMARY KEY (symbol, ts)
	);
	CREATE INDEX IF NOT EXISTS idx_candles_symbol_ts ON candles(symbol, ts);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened %s", path)
	return &Store{db: db}, nil
}

// WriteCandle upserts one candle. Re-delivered candles for the same
// (symbol, ts) bucket overwrite the previous row.
func (s *Store) WriteCandle(c model.Candle) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO candles (symbol, ts, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.Symbol, c.TS, c.Open, c.High, c.Low, c.Close, c.Volume)
	if err != nil {
		return fmt.Errorf("sqlite write candle: %w", err)
	}
	return nil
}

// ReadCandles reads candles for a symbol with ts > afterTS, ordered by
// timestamp ascending for correct replay order.
func (s *Store) ReadCandles(symbol string, afterTS int64) ([]model.Candle, error) {
	rows, err := s.db.Query(`
		SELECT symbol, ts, open, high, low, close, volume
		FROM candles
		WHERE symbol = ? AND ts > ?
		ORDER BY ts ASC
	`, symbol, afterTS)
	if err != nil {
		return nil, fmt.Errorf("sqlite query candles: %w", err)
	}
	defer rows.Close()

	var candles []model.Candle
	for rows.Next() {
		var c model.Candle
		if err := rows.Scan(&c.Symbol, &c.TS, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("sqlite scan candle: %w", err)
		}
		candles = append(candles, c)
	}
	return candles, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
