package orderbookv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustOrder(t *testing.T, id string, side Side, price, quantity float64) *Order {
	t.Helper()
	order, err := NewOrder(id, side, price, quantity)
	require.NoError(t, err)
	return order
}

func TestNewLevel(t *testing.T) {
	level := NewLevel(100.0)

	assert.NotNil(t, level)
	assert.Equal(t, 100.0, level.Price)
	assert.Equal(t, 0.0, level.TotalVolume)
	assert.Empty(t, level.Orders)
	assert.True(t, level.IsEmpty())
}

func TestLevel_Add(t *testing.T) {
	t.Run("valid order", func(t *testing.T) {
		level := NewLevel(100.0)
		err := level.Add(mustOrder(t, "o1", SideBuy, 100.0, 10.0))

		require.NoError(t, err)
		assert.Equal(t, 1, level.OrderCount())
		assert.Equal(t, 10.0, level.TotalVolume)
		assert.False(t, level.IsEmpty())
	})

	t.Run("nil order", func(t *testing.T) {
		level := NewLevel(100.0)
		assert.ErrorIs(t, level.Add(nil), ErrNilOrder)
	})

	t.Run("zero quantity rejected for resting", func(t *testing.T) {
		level := NewLevel(100.0)
		err := level.Add(mustOrder(t, "o1", SideBuy, 100.0, 0))
		assert.ErrorIs(t, err, ErrInvalidOrder)
	})

	t.Run("arrival order preserved", func(t *testing.T) {
		level := NewLevel(100.0)
		require.NoError(t, level.Add(mustOrder(t, "o1", SideBuy, 100.0, 1)))
		require.NoError(t, level.Add(mustOrder(t, "o2", SideBuy, 100.0, 2)))
		require.NoError(t, level.Add(mustOrder(t, "o3", SideBuy, 100.0, 3)))

		assert.Equal(t, 6.0, level.TotalVolume)
		assert.Equal(t, "o1", level.Orders[0].ID)
		assert.Equal(t, "o2", level.Orders[1].ID)
		assert.Equal(t, "o3", level.Orders[2].ID)
	})
}

func TestLevel_Remove(t *testing.T) {
	level := NewLevel(100.0)
	require.NoError(t, level.Add(mustOrder(t, "o1", SideBuy, 100.0, 10.0)))
	require.NoError(t, level.Add(mustOrder(t, "o2", SideBuy, 100.0, 5.0)))

	t.Run("existing order", func(t *testing.T) {
		order, err := level.Remove("o1")

		require.NoError(t, err)
		assert.Equal(t, "o1", order.ID)
		assert.Equal(t, 1, level.OrderCount())
		assert.Equal(t, 5.0, level.TotalVolume)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := level.Remove("nope")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestLevel_Fill(t *testing.T) {
	t.Run("partial fill leaves maker resting", func(t *testing.T) {
		level := NewLevel(100.0)
		maker := mustOrder(t, "s1", SideSell, 100.0, 10.0)
		require.NoError(t, level.Add(maker))

		taker := mustOrder(t, "b1", SideBuy, 100.0, 4.0)
		fills := level.Fill(taker)

		require.Len(t, fills, 1)
		assert.Equal(t, Fill{MakerOrderID: "s1", TakerOrderID: "b1", Price: 100.0, Quantity: 4.0}, fills[0])
		assert.Equal(t, 0.0, taker.Quantity)
		assert.Equal(t, 6.0, maker.Quantity)
		assert.Equal(t, 6.0, level.TotalVolume)
		assert.Equal(t, 1, level.OrderCount())
	})

	t.Run("consumes makers in arrival order", func(t *testing.T) {
		level := NewLevel(100.0)
		first := mustOrder(t, "s1", SideSell, 100.0, 2.0)
		second := mustOrder(t, "s2", SideSell, 100.0, 4.0)
		require.NoError(t, level.Add(first))
		require.NoError(t, level.Add(second))

		taker := mustOrder(t, "b1", SideBuy, 100.0, 3.0)
		fills := level.Fill(taker)

		require.Len(t, fills, 2)
		assert.Equal(t, "s1", fills[0].MakerOrderID)
		assert.Equal(t, 2.0, fills[0].Quantity)
		assert.Equal(t, "s2", fills[1].MakerOrderID)
		assert.Equal(t, 1.0, fills[1].Quantity)

		// s1 fully filled and removed, s2 keeps the remainder.
		assert.Equal(t, 1, level.OrderCount())
		assert.Equal(t, "s2", level.Orders[0].ID)
		assert.Equal(t, 3.0, second.Quantity)
		assert.Equal(t, 3.0, level.TotalVolume)
		assert.True(t, taker.IsFilled())
	})

	t.Run("level volume equals sum of order quantities", func(t *testing.T) {
		level := NewLevel(100.0)
		require.NoError(t, level.Add(mustOrder(t, "s1", SideSell, 100.0, 2.0)))
		require.NoError(t, level.Add(mustOrder(t, "s2", SideSell, 100.0, 4.0)))
		require.NoError(t, level.Add(mustOrder(t, "s3", SideSell, 100.0, 6.0)))

		level.Fill(mustOrder(t, "b1", SideBuy, 100.0, 5.0))

		sum := 0.0
		for _, o := range level.Orders {
			assert.Greater(t, o.Quantity, 0.0)
			sum += o.Quantity
		}
		assert.Equal(t, sum, level.TotalVolume)
	})
}
