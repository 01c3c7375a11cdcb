package pdf

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/ordering"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func TestOrderPDF(t *testing.T) {
	g := NewMarotoOrderGenerator("stock-ledger-api")
	expected := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	doc := ordering.OrderDocument{
		Order: &entity.Order{
			OrderNumber: "ACH-20260301120000-AB12", Type: entity.OrderTypePURCHASE, Status: entity.OrderStatusCONFIRMED,
			OrderDate: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), ExpectedDeliveryDate: &expected,
			TotalAmount: decimal.NewFromInt(2500), Notes: "Entregar en bodega 2",
		},
		Supplier: &entity.Supplier{Name: "Aceros del Norte", Email: "ventas@aceros.test"},
		Lines: []ordering.DocumentLine{
			{Reference: "TOR-1", ProductName: "Tornillo", Quantity: 100, UnitPrice: decimal.NewFromInt(25), TotalPrice: decimal.NewFromInt(2500)},
		},
	}
	out, err := g.OrderPDF(context.Background(), doc)
	require.NoError(t, err)
	require.Greater(t, len(out), 4)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestOrderPDF_SinPedido(t *testing.T) {
	_, err := NewMarotoOrderGenerator("x").OrderPDF(context.Background(), ordering.OrderDocument{})
	assert.Error(t, err)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "25,00", formatMoney(decimal.NewFromInt(25)))
	assert.Equal(t, "1.234.567,50", formatMoney(decimal.NewFromFloat(1234567.5)))
	assert.Equal(t, "-1.000,00", formatMoney(decimal.NewFromInt(-1000)))
}
