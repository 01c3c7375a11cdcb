package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newProduct(stock int) *entity.Product {
	return &entity.Product{ID: "p-1", Name: "Tornillo", Reference: "TOR-01", StockQuantity: stock}
}

func TestApply_IN_SumaCantidad(t *testing.T) {
	p := newProduct(10)
	cost := decimal.NewFromFloat(2.5)
	mov, err := NewEngine().Apply(p, entity.MovementTypeIN, 5, Metadata{UnitCost: &cost, Actor: "u-1", Reason: "compra"}, testNow)
	require.NoError(t, err)

	assert.Equal(t, 15, p.StockQuantity)
	assert.Equal(t, testNow, p.UpdatedAt)
	assert.Equal(t, 10, mov.PreviousStock)
	assert.Equal(t, 15, mov.NewStock)
	assert.Equal(t, 5, mov.Quantity)
	assert.Equal(t, "u-1", mov.CreatedBy)
	assert.True(t, mov.UnitCost.Equal(cost))
	assert.NotEmpty(t, mov.ID)
}

func TestApply_RETURN_MismaAritmeticaQueIN(t *testing.T) {
	p := newProduct(3)
	mov, err := NewEngine().Apply(p, entity.MovementTypeRETURN, 4, Metadata{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 7, p.StockQuantity)
	assert.Equal(t, 4, mov.Quantity)
}

func TestApply_OUT_Insuficiente_NoModificaProducto(t *testing.T) {
	p := newProduct(2)
	mov, err := NewEngine().Apply(p, entity.MovementTypeOUT, 3, Metadata{}, testNow)
	require.Error(t, err)
	assert.Nil(t, mov)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "p-1", insufficient.ProductID)
	assert.Equal(t, 2, insufficient.Available)
	assert.Equal(t, 3, insufficient.Requested)

	assert.Equal(t, 2, p.StockQuantity, "el stock no debe cambiar")
	assert.True(t, p.UpdatedAt.IsZero())
}

func TestApply_OUT_HastaCero(t *testing.T) {
	p := newProduct(3)
	mov, err := NewEngine().Apply(p, entity.MovementTypeOUT, 3, Metadata{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 0, p.StockQuantity)
	assert.Equal(t, 3, mov.Quantity)
}

func TestApply_ADJUSTMENT_NivelAbsoluto(t *testing.T) {
	cases := []struct {
		name     string
		current  int
		target   int
		magnitud int
	}{
		{"baja", 20, 12, 8},
		{"sube", 5, 30, 25},
		{"igual", 7, 7, 0},
		{"a cero", 9, 0, 9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newProduct(tc.current)
			mov, err := NewEngine().Apply(p, entity.MovementTypeADJUSTMENT, tc.target, Metadata{}, testNow)
			require.NoError(t, err)
			assert.Equal(t, tc.target, p.StockQuantity)
			assert.Equal(t, tc.target, mov.NewStock)
			assert.Equal(t, tc.current, mov.PreviousStock)
			assert.Equal(t, tc.magnitud, mov.Quantity)
		})
	}
}

func TestApply_CantidadCeroSeRegistra(t *testing.T) {
	p := newProduct(4)
	mov, err := NewEngine().Apply(p, entity.MovementTypeIN, 0, Metadata{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 4, mov.NewStock)
	assert.Equal(t, 0, mov.Quantity)
}

func TestApply_CantidadNegativaEsValidacion(t *testing.T) {
	for _, mt := range entity.MovementTypes {
		p := newProduct(10)
		_, err := NewEngine().Apply(p, mt, -1, Metadata{}, testNow)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, mt.String())
		assert.Equal(t, 10, p.StockQuantity)
	}
}

func TestApply_TipoDesconocido(t *testing.T) {
	_, err := NewEngine().Apply(newProduct(1), entity.MovementType(0), 1, Metadata{}, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// El stock tras cada paso debe ser reconstruible desde el ledger.
func TestApply_SecuenciaReconstruibleDesdeLedger(t *testing.T) {
	engine := NewEngine()
	p := newProduct(0)
	steps := []struct {
		t   entity.MovementType
		qty int
	}{
		{entity.MovementTypeIN, 50},
		{entity.MovementTypeOUT, 20},
		{entity.MovementTypeRETURN, 3},
		{entity.MovementTypeADJUSTMENT, 40},
		{entity.MovementTypeOUT, 40},
		{entity.MovementTypeADJUSTMENT, 6},
		{entity.MovementTypeIN, 0},
	}
	var movements []*entity.StockMovement
	for _, s := range steps {
		mov, err := engine.Apply(p, s.t, s.qty, Metadata{}, testNow)
		require.NoError(t, err)
		movements = append(movements, mov)

		sum := movements[0].PreviousStock
		for _, m := range movements {
			sum += m.Delta()
		}
		assert.Equal(t, p.StockQuantity, sum)

		replayed, err := Replay(movements[0].PreviousStock, movements)
		require.NoError(t, err)
		assert.Equal(t, p.StockQuantity, replayed)
	}
	assert.Equal(t, 6, p.StockQuantity)
}

func TestReplay_DetectaCadenaRota(t *testing.T) {
	movements := []*entity.StockMovement{
		{ID: "m1", Type: entity.MovementTypeIN, Quantity: 5, PreviousStock: 0, NewStock: 5},
		{ID: "m2", Type: entity.MovementTypeOUT, Quantity: 2, PreviousStock: 4, NewStock: 2},
	}
	_, err := Replay(0, movements)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestReplay_DetectaMagnitudIncoherente(t *testing.T) {
	movements := []*entity.StockMovement{
		{ID: "m1", Type: entity.MovementTypeADJUSTMENT, Quantity: 1, PreviousStock: 10, NewStock: 4},
	}
	_, err := Replay(10, movements)
	assert.ErrorIs(t, err, domain.ErrConflict)
}
