package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

const defaultHistoryLimit = 100

// MovementInput entrada de ApplyMovement. Para ADJUSTMENT, Quantity es el nuevo nivel absoluto.
type MovementInput struct {
	ProductID     string
	Type          entity.MovementType
	Quantity      int
	Reason        string
	ReferenceType string
	ReferenceID   string
	UnitCost      *decimal.Decimal
	Notes         string
	Actor         string
}

// MovementUseCase registra movimientos del ledger: bloquea la fila del producto
// (SELECT FOR UPDATE), aplica el motor e inserta movimiento y stock en la misma transacción.
type MovementUseCase struct {
	txRunner    TxRunner
	movRepo     repository.StockMovementRepository
	productRepo repository.ProductRepository
	engine      *ledger.Engine
	log         *logger.Logger
	observers   []StockObserver
	now         func() time.Time
}

// NewMovementUseCase construye el caso de uso. movRepo y productRepo se usan solo para lecturas.
func NewMovementUseCase(
	txRunner TxRunner,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	log *logger.Logger,
) *MovementUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &MovementUseCase{
		txRunner:    txRunner,
		movRepo:     movRepo,
		productRepo: productRepo,
		engine:      ledger.NewEngine(),
		log:         log.Component("ledger"),
		now:         time.Now,
	}
}

// AddObserver registra un observador de movimientos confirmados.
func (uc *MovementUseCase) AddObserver(o StockObserver) {
	uc.observers = append(uc.observers, o)
}

// ApplyMovement aplica un movimiento sobre el stock actual del producto y lo deja en el ledger.
// Con error no se escribe nada: ni movimiento ni cambio de stock.
func (uc *MovementUseCase) ApplyMovement(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	if in.ProductID == "" {
		return nil, domain.NewValidationError("product_id", "requerido")
	}
	if !in.Type.Valid() {
		return nil, domain.NewValidationError("movement_type", "debe ser in, out, adjustment o return")
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return nil, domain.NewValidationError("unit_cost", "no puede ser negativo")
	}

	now := uc.now()
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		m, err := uc.ApplyInTx(ctx, movRepo, productRepo, in, now)
		if err != nil {
			return err
		}
		mov = m
		return nil
	})
	if err != nil {
		uc.logFailure(err, in)
		return nil, err
	}

	uc.log.Info().
		Str("product_id", mov.ProductID).
		Str("type", mov.Type.String()).
		Int("previous_stock", mov.PreviousStock).
		Int("new_stock", mov.NewStock).
		Str("actor", mov.CreatedBy).
		Msg("movimiento registrado")
	uc.Notify(ctx, mov)
	return mov, nil
}

// ApplyInTx aplica el movimiento con los repositorios de la transacción del caller
// (entrega de pedidos, alta de producto). Relee el producto con bloqueo de fila.
// No notifica observadores: el caller lo hace tras el commit con Notify.
func (uc *MovementUseCase) ApplyInTx(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	in MovementInput,
	now time.Time,
) (*entity.StockMovement, error) {
	product, err := productRepo.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("producto", in.ProductID)
	}

	mov, err := uc.engine.Apply(product, in.Type, in.Quantity, ledger.Metadata{
		UnitCost:      in.UnitCost,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Reason:        in.Reason,
		Notes:         in.Notes,
		Actor:         in.Actor,
	}, now)
	if err != nil {
		return nil, err
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	if err := productRepo.UpdateStock(ctx, product); err != nil {
		return nil, err
	}
	return mov, nil
}

// Notify entrega a los observadores movimientos ya confirmados.
func (uc *MovementUseCase) Notify(ctx context.Context, movements ...*entity.StockMovement) {
	for _, m := range movements {
		for _, o := range uc.observers {
			o.MovementCommitted(ctx, m)
		}
	}
}

// ListMovements historial del producto, del más reciente al más antiguo.
func (uc *MovementUseCase) ListMovements(ctx context.Context, productID string, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("producto", productID)
	}
	filter.ProductID = productID
	if filter.Limit <= 0 {
		filter.Limit = defaultHistoryLimit
	}
	return uc.movRepo.List(ctx, filter)
}

// Reconciliation resultado de comparar el stock del producto con el que deriva del ledger.
type Reconciliation struct {
	ProductID    string
	CurrentStock int
	LedgerStock  int
	Movements    int
	Consistent   bool
	Issue        string
	AverageCost  *decimal.Decimal // costo promedio ponderado según el ledger; nil sin costos
}

// Reconcile reconstruye el stock desde cero con el ledger completo del producto.
func (uc *MovementUseCase) Reconcile(ctx context.Context, productID string) (*Reconciliation, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("producto", productID)
	}
	movements, err := uc.movRepo.ListChronological(ctx, productID)
	if err != nil {
		return nil, err
	}

	rec := &Reconciliation{
		ProductID:    productID,
		CurrentStock: product.StockQuantity,
		Movements:    len(movements),
		AverageCost:  ledger.AverageCost(movements),
	}
	derived, err := ledger.Replay(0, movements)
	rec.LedgerStock = derived
	switch {
	case err != nil:
		rec.Issue = err.Error()
	case derived != product.StockQuantity:
		rec.Issue = "el stock del producto no coincide con el ledger"
	default:
		rec.Consistent = true
	}
	if !rec.Consistent {
		uc.log.Warn().Str("product_id", productID).Int("stock", rec.CurrentStock).
			Int("ledger", rec.LedgerStock).Str("issue", rec.Issue).Msg("ledger inconsistente")
	}
	return rec, nil
}

func (uc *MovementUseCase) logFailure(err error, in MovementInput) {
	ev := uc.log.Warn()
	if errors.Is(err, domain.ErrPersistence) {
		ev = uc.log.Error()
	}
	ev.Err(err).
		Str("product_id", in.ProductID).
		Str("type", in.Type.String()).
		Int("quantity", in.Quantity).
		Msg("movimiento rechazado")
}
