package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func TestWeightedCost(t *testing.T) {
	got := WeightedCost(decimal.NewFromInt(10), decimal.NewFromInt(100), decimal.NewFromInt(10), decimal.NewFromInt(200))
	assert.True(t, got.Equal(decimal.NewFromInt(150)), got.String())

	assert.True(t, WeightedCost(decimal.Zero, decimal.Zero, decimal.Zero, decimal.NewFromInt(5)).IsZero())
}

func TestAverageCost(t *testing.T) {
	c100, c130 := decimal.NewFromInt(100), decimal.NewFromInt(130)
	movs := []*entity.StockMovement{
		{Type: entity.MovementTypeIN, Quantity: 10, PreviousStock: 0, NewStock: 10, UnitCost: &c100},
		{Type: entity.MovementTypeOUT, Quantity: 5, PreviousStock: 10, NewStock: 5},
		{Type: entity.MovementTypeIN, Quantity: 10, PreviousStock: 5, NewStock: 15, UnitCost: &c130},
		{Type: entity.MovementTypeIN, Quantity: 3, PreviousStock: 15, NewStock: 18}, // sin costo
	}
	avg := AverageCost(movs)
	require.NotNil(t, avg)
	// (5*100 + 10*130) / 15 = 120
	assert.Equal(t, "120", avg.String())

	assert.Nil(t, AverageCost(movs[1:2]))
}
