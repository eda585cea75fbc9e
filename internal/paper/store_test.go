package paper

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradesim/internal/model"
)

func testStore() *Store {
	seq := 0
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return NewStoreWithClock(
		func() time.Time {
			seq++
			return base.Add(time.Duration(seq) * time.Second)
		},
		func() string {
			return fmt.Sprintf("order-%d", seq+1)
		},
	)
}

func TestStore_PlaceAssignsIDAndTimestamp(t *testing.T) {
	s := testStore()
	o := s.Place("BTCUSDT", model.SideBuy, 0.5, 50000)

	assert.Equal(t, "order-1", o.ID)
	assert.Equal(t, "BTCUSDT", o.Symbol)
	assert.Equal(t, model.SideBuy, o.Side)
	assert.Equal(t, 0.5, o.Qty)
	assert.Equal(t, 50000.0, o.Price)
	assert.False(t, o.TS.IsZero())
}

func TestStore_RealIDsAreUnique(t *testing.T) {
	s := NewStore()
	a := s.Place("BTCUSDT", model.SideBuy, 1, 100)
	b := s.Place("BTCUSDT", model.SideBuy, 1, 100)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestStore_OrdersFilterAndInsertionOrder(t *testing.T) {
	s := testStore()
	s.Place("BTCUSDT", model.SideBuy, 1, 100)
	s.Place("ETHUSDT", model.SideBuy, 2, 50)
	s.Place("BTCUSDT", model.SideSell, 1, 110)

	btc := s.Orders("BTCUSDT")
	require.Len(t, btc, 2)
	assert.Equal(t, model.SideBuy, btc[0].Side)
	assert.Equal(t, model.SideSell, btc[1].Side)

	all := s.Orders("")
	require.Len(t, all, 3)
	assert.Equal(t, "ETHUSDT", all[1].Symbol)

	assert.Empty(t, s.Orders("DOGEUSDT"))
}

func TestStore_OrdersReturnsCopy(t *testing.T) {
	s := testStore()
	s.Place("BTCUSDT", model.SideBuy, 1, 100)

	got := s.Orders("")
	got[0].Qty = 999

	assert.Equal(t, 1.0, s.Orders("")[0].Qty)
}

func TestStore_Reset(t *testing.T) {
	s := testStore()
	s.Place("BTCUSDT", model.SideBuy, 1, 100)
	s.Reset()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Orders(""))
}
