package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/catalog"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

type env struct {
	store     *memory.Store
	products  *catalog.ProductUseCase
	suppliers *catalog.SupplierUseCase
	movements *inventory.MovementUseCase
}

func newEnv() *env {
	store := memory.NewStore()
	movements := inventory.NewMovementUseCase(store, store.Movements(), store.Products(), nil)
	return &env{
		store:     store,
		products:  catalog.NewProductUseCase(store, store.Products(), store.Suppliers(), movements, nil),
		suppliers: catalog.NewSupplierUseCase(store.Suppliers(), store.Products()),
		movements: movements,
	}
}

func TestCreateProduct_StockInicialComoMovimiento(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p, err := e.products.Create(ctx, "admin-1", dto.CreateProductRequest{
		Name: "Taladro", Reference: "TAL-01", UnitPrice: decimal.NewFromInt(120), StockQuantity: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, p.StockQuantity)
	assert.Equal(t, entity.DefaultMinStockLevel, p.MinStockLevel)
	assert.True(t, p.IsLowStock)

	movs, err := e.store.Movements().ListChronological(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeIN, movs[0].Type)
	assert.Equal(t, 0, movs[0].PreviousStock)
	assert.Equal(t, 7, movs[0].NewStock)
	assert.Equal(t, catalog.InitialStockReason, movs[0].Reason)
	assert.Equal(t, "admin-1", movs[0].CreatedBy)
}

func TestCreateProduct_SinStockNoCreaMovimiento(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p, err := e.products.Create(ctx, "u", dto.CreateProductRequest{Name: "Lija", Reference: "LIJ-1"})
	require.NoError(t, err)
	movs, err := e.store.Movements().ListChronological(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestCreateProduct_Errores(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, err := e.products.Create(ctx, "u", dto.CreateProductRequest{Name: "A", Reference: "R-1"})
	require.NoError(t, err)

	_, err = e.products.Create(ctx, "u", dto.CreateProductRequest{Name: "B", Reference: "R-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = e.products.Create(ctx, "u", dto.CreateProductRequest{Name: "C", Reference: "R-2", UnitPrice: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	missing := "sup-404"
	_, err = e.products.Create(ctx, "u", dto.CreateProductRequest{Name: "D", Reference: "R-3", SupplierID: &missing})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateProduct_NoTocaStock(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p, err := e.products.Create(ctx, "u", dto.CreateProductRequest{Name: "Sierra", Reference: "SIE-1", StockQuantity: 4})
	require.NoError(t, err)

	name := "Sierra circular"
	price := decimal.NewFromFloat(89.9)
	updated, err := e.products.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &name, UnitPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, "Sierra circular", updated.Name)
	assert.Equal(t, 4, updated.StockQuantity)

	_, err = e.products.Create(ctx, "u", dto.CreateProductRequest{Name: "Otra", Reference: "OTR-1"})
	require.NoError(t, err)
	dup := "OTR-1"
	_, err = e.products.Update(ctx, p.ID, dto.UpdateProductRequest{Reference: &dup})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestListProducts_FiltrosYTotal(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	for i, ref := range []string{"A-1", "A-2", "B-1"} {
		cat := "Herramientas"
		if ref == "B-1" {
			cat = "Fijaciones"
		}
		_, err := e.products.Create(ctx, "u", dto.CreateProductRequest{Name: ref, Reference: ref, Category: cat, StockQuantity: i * 20})
		require.NoError(t, err)
	}
	res, err := e.products.List(ctx, dto.ProductQuery{Category: "Herramientas"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, 2, res.Page.Total)

	low, err := e.products.List(ctx, dto.ProductQuery{LowStock: true})
	require.NoError(t, err)
	require.Len(t, low.Items, 1)
	assert.Equal(t, "A-1", low.Items[0].Reference)

	cats, err := e.products.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fijaciones", "Herramientas"}, cats)
}

func TestDeleteProduct_EnPedidoSeRechaza(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p, err := e.products.Create(ctx, "u", dto.CreateProductRequest{Name: "Broca", Reference: "BRO-1"})
	require.NoError(t, err)
	require.NoError(t, e.store.Orders().Create(ctx, &entity.Order{
		ID: "o-1", OrderNumber: "VTE-1", Type: entity.OrderTypeSALE, Status: entity.OrderStatusPENDING, OrderDate: time.Now(),
		Items: []*entity.OrderItem{{ID: "i-1", OrderID: "o-1", ProductID: p.ID, Quantity: 1}},
	}))
	assert.ErrorIs(t, e.products.Delete(ctx, p.ID), domain.ErrConflict)

	require.NoError(t, e.store.Orders().Delete(ctx, "o-1"))
	require.NoError(t, e.products.Delete(ctx, p.ID))
	_, err = e.products.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// El ledger es append-only: un producto con movimientos no se borra y su historial queda intacto.
func TestDeleteProduct_ConMovimientosSeRechaza(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p, err := e.products.Create(ctx, "u", dto.CreateProductRequest{Name: "Lija", Reference: "LIJ-1", StockQuantity: 5})
	require.NoError(t, err)
	_, err = e.movements.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Type: entity.MovementTypeOUT, Quantity: 2})
	require.NoError(t, err)

	assert.ErrorIs(t, e.products.Delete(ctx, p.ID), domain.ErrConflict)

	got, err := e.products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.StockQuantity)
	movs, err := e.store.Movements().ListChronological(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 2)

	// El repositorio tampoco lo permite aunque se salte el caso de uso.
	assert.ErrorIs(t, e.store.Products().Delete(ctx, p.ID), domain.ErrConflict)
	movs, err = e.store.Movements().ListChronological(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 2)
}

func TestSuppliers_CicloDeVida(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	s, err := e.suppliers.Create(ctx, dto.CreateSupplierRequest{Name: "Aceros del Norte", Email: "ventas@aceros.test"})
	require.NoError(t, err)
	assert.True(t, s.IsActive)

	toggled, err := e.suppliers.ToggleStatus(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	active, err := e.suppliers.List(ctx, dto.SupplierQuery{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, active.Items)

	sid := s.ID
	p, err := e.products.Create(ctx, "u", dto.CreateProductRequest{Name: "Varilla", Reference: "VAR-1", SupplierID: &sid})
	require.NoError(t, err)

	prods, err := e.suppliers.Products(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, prods, 1)
	assert.Equal(t, p.ID, prods[0].ID)

	assert.ErrorIs(t, e.suppliers.Delete(ctx, s.ID), domain.ErrConflict)

	require.NoError(t, e.products.Delete(ctx, p.ID))
	require.NoError(t, e.suppliers.Delete(ctx, s.ID))
	_, err = e.suppliers.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSuppliers_ConPedidosNoSeBorra(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	s, err := e.suppliers.Create(ctx, dto.CreateSupplierRequest{Name: "Maderas SA"})
	require.NoError(t, err)
	sid := s.ID
	require.NoError(t, e.store.Orders().Create(ctx, &entity.Order{ID: "o-1", OrderNumber: "ACH-1",
		Type: entity.OrderTypePURCHASE, SupplierID: &sid, OrderDate: time.Now()}))
	assert.ErrorIs(t, e.suppliers.Delete(ctx, s.ID), domain.ErrConflict)
}
