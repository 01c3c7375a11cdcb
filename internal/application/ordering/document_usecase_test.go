package ordering_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/ordering"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

type captureGenerator struct{ doc ordering.OrderDocument }

func (g *captureGenerator) OrderPDF(_ context.Context, doc ordering.OrderDocument) ([]byte, error) {
	g.doc = doc
	return []byte("%PDF-1.3"), nil
}

func TestOrderPDF_ResuelveProductosYProveedor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.uc.CreateOrder(ctx, ordering.CreateOrderInput{
		Type: entity.OrderTypePURCHASE, SupplierID: supplier(),
		Items: []ordering.ItemInput{{ProductID: "A", Quantity: 2}},
	})
	require.NoError(t, err)

	gen := &captureGenerator{}
	docs := ordering.NewDocumentUseCase(f.store.Orders(), f.store.Suppliers(), f.store.Products(), gen)
	out, name, err := docs.OrderPDF(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(out))
	assert.Equal(t, order.OrderNumber+".pdf", name)

	require.NotNil(t, gen.doc.Supplier)
	assert.Equal(t, "Ferretería Central", gen.doc.Supplier.Name)
	require.Len(t, gen.doc.Lines, 1)
	assert.Equal(t, "MAR-1", gen.doc.Lines[0].Reference)
	assert.Equal(t, "20", gen.doc.Lines[0].TotalPrice.String())

	_, _, err = docs.OrderPDF(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
