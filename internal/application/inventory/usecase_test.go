package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

type recordingObserver struct {
	mu    sync.Mutex
	moves []*entity.StockMovement
}

func (o *recordingObserver) MovementCommitted(_ context.Context, m *entity.StockMovement) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.moves = append(o.moves, m)
}

func setup(t *testing.T, stock int) (*inventory.MovementUseCase, *memory.Store, *recordingObserver) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Products().Create(context.Background(), &entity.Product{
		ID: "p-1", Name: "Tornillo", Reference: "TOR-01", UnitPrice: decimal.NewFromInt(1), StockQuantity: stock,
	}))
	uc := inventory.NewMovementUseCase(store, store.Movements(), store.Products(), nil)
	obs := &recordingObserver{}
	uc.AddObserver(obs)
	return uc, store, obs
}

func stockOf(t *testing.T, store *memory.Store) int {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), "p-1")
	require.NoError(t, err)
	return p.StockQuantity
}

func TestApplyMovement_IN(t *testing.T) {
	uc, store, obs := setup(t, 0)
	cost := decimal.NewFromFloat(1.25)

	mov, err := uc.ApplyMovement(context.Background(), inventory.MovementInput{
		ProductID: "p-1", Type: entity.MovementTypeIN, Quantity: 12, UnitCost: &cost, Reason: "compra", Actor: "user-7",
	})
	require.NoError(t, err)
	assert.Equal(t, 12, stockOf(t, store))
	assert.Equal(t, "user-7", mov.CreatedBy)
	require.Len(t, obs.moves, 1)
	assert.Equal(t, mov.ID, obs.moves[0].ID)
}

func TestApplyMovement_OUTInsuficiente_NoEscribeFila(t *testing.T) {
	uc, store, obs := setup(t, 2)

	_, err := uc.ApplyMovement(context.Background(), inventory.MovementInput{
		ProductID: "p-1", Type: entity.MovementTypeOUT, Quantity: 3,
	})
	require.Error(t, err)
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "p-1", insufficient.ProductID)

	assert.Equal(t, 2, stockOf(t, store))
	movs, err := store.Movements().ListChronological(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Empty(t, movs, "no debe quedar movimiento en el ledger")
	assert.Empty(t, obs.moves)
}

func TestApplyMovement_ADJUSTMENT(t *testing.T) {
	uc, store, _ := setup(t, 20)
	mov, err := uc.ApplyMovement(context.Background(), inventory.MovementInput{
		ProductID: "p-1", Type: entity.MovementTypeADJUSTMENT, Quantity: 12, Reason: "conteo físico",
	})
	require.NoError(t, err)
	assert.Equal(t, 12, stockOf(t, store))
	assert.Equal(t, 8, mov.Quantity)
	assert.Equal(t, 20, mov.PreviousStock)
}

func TestApplyMovement_ProductoInexistente(t *testing.T) {
	uc, _, _ := setup(t, 0)
	_, err := uc.ApplyMovement(context.Background(), inventory.MovementInput{
		ProductID: "nope", Type: entity.MovementTypeIN, Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyMovement_Validaciones(t *testing.T) {
	uc, _, _ := setup(t, 0)
	neg := decimal.NewFromInt(-1)
	cases := map[string]inventory.MovementInput{
		"sin producto":   {Type: entity.MovementTypeIN, Quantity: 1},
		"tipo inválido":  {ProductID: "p-1", Quantity: 1},
		"costo negativo": {ProductID: "p-1", Type: entity.MovementTypeIN, Quantity: 1, UnitCost: &neg},
		"cantidad < 0":   {ProductID: "p-1", Type: entity.MovementTypeIN, Quantity: -4},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.ApplyMovement(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestApplyMovement_FalloDeCommit(t *testing.T) {
	uc, store, obs := setup(t, 5)
	store.FailNextCommit(errors.New("conexión perdida"))

	_, err := uc.ApplyMovement(context.Background(), inventory.MovementInput{
		ProductID: "p-1", Type: entity.MovementTypeIN, Quantity: 5,
	})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, 5, stockOf(t, store))
	assert.Empty(t, obs.moves)
}

// Salidas concurrentes: la suma nunca puede pasar del stock disponible.
func TestApplyMovement_OUTConcurrentes(t *testing.T) {
	uc, store, _ := setup(t, 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, rejected := 0, 0
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.ApplyMovement(context.Background(), inventory.MovementInput{
				ProductID: "p-1", Type: entity.MovementTypeOUT, Quantity: 1,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, ok)
	assert.Equal(t, 5, rejected)
	assert.Equal(t, 0, stockOf(t, store))
}

func TestListMovements_MasRecientePrimero(t *testing.T) {
	uc, _, _ := setup(t, 0)
	ctx := context.Background()
	for _, q := range []int{3, 4} {
		_, err := uc.ApplyMovement(ctx, inventory.MovementInput{ProductID: "p-1", Type: entity.MovementTypeIN, Quantity: q})
		require.NoError(t, err)
	}
	list, err := uc.ListMovements(ctx, "p-1", repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 7, list[0].NewStock)

	_, err = uc.ListMovements(ctx, "nope", repository.MovementFilter{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReconcile(t *testing.T) {
	uc, store, _ := setup(t, 0)
	ctx := context.Background()
	steps := []inventory.MovementInput{
		{ProductID: "p-1", Type: entity.MovementTypeIN, Quantity: 30},
		{ProductID: "p-1", Type: entity.MovementTypeOUT, Quantity: 12},
		{ProductID: "p-1", Type: entity.MovementTypeADJUSTMENT, Quantity: 15},
		{ProductID: "p-1", Type: entity.MovementTypeRETURN, Quantity: 2},
	}
	for _, in := range steps {
		_, err := uc.ApplyMovement(ctx, in)
		require.NoError(t, err)
	}
	rec, err := uc.Reconcile(ctx, "p-1")
	require.NoError(t, err)
	assert.True(t, rec.Consistent, rec.Issue)
	assert.Equal(t, 17, rec.LedgerStock)
	assert.Equal(t, 17, rec.CurrentStock)
	assert.Equal(t, 4, rec.Movements)
	assert.Nil(t, rec.AverageCost, "sin costos en las entradas")

	// Deriva fuera del ledger: alguien tocó el stock sin movimiento.
	p, _ := store.Products().GetByID(ctx, "p-1")
	p.StockQuantity = 99
	require.NoError(t, store.Products().UpdateStock(ctx, p))

	rec, err = uc.Reconcile(ctx, "p-1")
	require.NoError(t, err)
	assert.False(t, rec.Consistent)
	assert.Equal(t, 17, rec.LedgerStock)
}

func TestReconcile_CostoPromedio(t *testing.T) {
	uc, _, _ := setup(t, 0)
	ctx := context.Background()
	c2, c5 := decimal.NewFromInt(2), decimal.NewFromInt(5)
	for _, in := range []inventory.MovementInput{
		{ProductID: "p-1", Type: entity.MovementTypeIN, Quantity: 10, UnitCost: &c2},
		{ProductID: "p-1", Type: entity.MovementTypeIN, Quantity: 5, UnitCost: &c5},
	} {
		_, err := uc.ApplyMovement(ctx, in)
		require.NoError(t, err)
	}
	rec, err := uc.Reconcile(ctx, "p-1")
	require.NoError(t, err)
	require.NotNil(t, rec.AverageCost)
	assert.Equal(t, "3", rec.AverageCost.String())
}
