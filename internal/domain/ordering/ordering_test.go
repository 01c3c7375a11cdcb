package ordering

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func TestRecomputeTotal(t *testing.T) {
	order := &entity.Order{Items: []*entity.OrderItem{
		{ID: "a", Quantity: 2, UnitPrice: decimal.NewFromFloat(10.0)},
		{ID: "b", Quantity: 1, UnitPrice: decimal.NewFromFloat(5.0)},
	}}
	total := RecomputeTotal(order)
	assert.True(t, total.Equal(decimal.NewFromFloat(25.0)), total.String())
	assert.True(t, order.TotalAmount.Equal(total))
	assert.True(t, order.Items[0].TotalPrice.Equal(decimal.NewFromInt(20)))

	order.Items = order.Items[:1]
	total = RecomputeTotal(order)
	assert.True(t, total.Equal(decimal.NewFromFloat(20.0)), total.String())
}

func TestRecomputeTotal_SinItems(t *testing.T) {
	order := &entity.Order{TotalAmount: decimal.NewFromInt(99)}
	assert.True(t, RecomputeTotal(order).IsZero())
	assert.True(t, order.TotalAmount.IsZero())
}

func TestCheckTransition_DesdeNoTerminalCualquierDestino(t *testing.T) {
	for _, from := range []entity.OrderStatus{entity.OrderStatusPENDING, entity.OrderStatusCONFIRMED, entity.OrderStatusSHIPPED} {
		for _, to := range entity.OrderStatuses {
			assert.NoError(t, CheckTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCheckTransition_TerminalRechaza(t *testing.T) {
	for _, from := range []entity.OrderStatus{entity.OrderStatusDELIVERED, entity.OrderStatusCANCELLED} {
		for _, to := range entity.OrderStatuses {
			err := CheckTransition(from, to)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		}
	}
}

func TestCheckTransition_DestinoInvalido(t *testing.T) {
	assert.ErrorIs(t, CheckTransition(entity.OrderStatusPENDING, entity.OrderStatus(42)), domain.ErrInvalidInput)
}

func TestCheckDeletable(t *testing.T) {
	assert.ErrorIs(t, CheckDeletable(&entity.Order{Status: entity.OrderStatusDELIVERED}), domain.ErrConflict)
	assert.NoError(t, CheckDeletable(&entity.Order{Status: entity.OrderStatusCANCELLED}))
	assert.NoError(t, CheckDeletable(&entity.Order{Status: entity.OrderStatusPENDING}))
}

func TestFulfillmentMovement(t *testing.T) {
	mt, err := FulfillmentMovement(entity.OrderTypePURCHASE)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeIN, mt)

	mt, err = FulfillmentMovement(entity.OrderTypeSALE)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeOUT, mt)

	_, err = FulfillmentMovement(entity.OrderType(0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFulfillmentReason(t *testing.T) {
	assert.Equal(t, "receipt of order ACH-1", FulfillmentReason(&entity.Order{Type: entity.OrderTypePURCHASE, OrderNumber: "ACH-1"}))
	assert.Equal(t, "sale of order VTE-9", FulfillmentReason(&entity.Order{Type: entity.OrderTypeSALE, OrderNumber: "VTE-9"}))
}
