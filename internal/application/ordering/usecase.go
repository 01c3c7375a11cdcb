// Package ordering orquesta el ciclo de vida de los pedidos: alta, edición de ítems,
// cambios de estado y el cumplimiento en el ledger al marcar un pedido como entregado.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domainordering "github.com/jhoicas/stock-ledger-api/internal/domain/ordering"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

const defaultListLimit = 50

// ItemInput línea de pedido. UnitPrice nil toma el precio actual del producto.
type ItemInput struct {
	ProductID string
	Quantity  int
	UnitPrice *decimal.Decimal
}

// CreateOrderInput datos de alta. SupplierID es obligatorio en compras.
type CreateOrderInput struct {
	Type                 entity.OrderType
	SupplierID           *string
	CustomerName         string
	CustomerEmail        string
	CustomerPhone        string
	ExpectedDeliveryDate *time.Time
	Notes                string
	Items                []ItemInput
}

// UpdateOrderInput campos editables mientras el pedido no es terminal. nil = sin cambio.
type UpdateOrderInput struct {
	CustomerName         *string
	CustomerEmail        *string
	CustomerPhone        *string
	ExpectedDeliveryDate *time.Time
	Notes                *string
}

// ItemUpdate cambios sobre una línea existente. nil = sin cambio.
type ItemUpdate struct {
	Quantity  *int
	UnitPrice *decimal.Decimal
}

// OrderUseCase flujo de pedidos.
type OrderUseCase struct {
	txRunner     TxRunner
	orderRepo    repository.OrderRepository
	supplierRepo repository.SupplierRepository
	movements    *inventory.MovementUseCase
	log          *logger.Logger
	observers    []StatusObserver
	now          func() time.Time
	newID        func() string
}

// NewOrderUseCase construye el caso de uso. movements aplica los movimientos de la entrega
// dentro de la transacción del pedido.
func NewOrderUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	supplierRepo repository.SupplierRepository,
	movements *inventory.MovementUseCase,
	log *logger.Logger,
) *OrderUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &OrderUseCase{
		txRunner:     txRunner,
		orderRepo:    orderRepo,
		supplierRepo: supplierRepo,
		movements:    movements,
		log:          log.Component("orders"),
		now:          time.Now,
		newID:        func() string { return uuid.New().String() },
	}
}

// AddObserver registra un observador de cambios de estado.
func (uc *OrderUseCase) AddObserver(o StatusObserver) {
	uc.observers = append(uc.observers, o)
}

// CreateOrder crea el pedido en PENDING con sus ítems y el total calculado.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, in CreateOrderInput) (*entity.Order, error) {
	if !in.Type.Valid() {
		return nil, domain.NewValidationError("order_type", "debe ser purchase o sale")
	}
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("items", "se requiere al menos un ítem")
	}
	for i, it := range in.Items {
		if err := validateItem(it.ProductID, it.Quantity, it.UnitPrice); err != nil {
			return nil, fmt.Errorf("ítem %d: %w", i, err)
		}
	}
	if in.Type == entity.OrderTypePURCHASE {
		if in.SupplierID == nil || *in.SupplierID == "" {
			return nil, domain.NewValidationError("supplier_id", "requerido en pedidos de compra")
		}
		supplier, err := uc.supplierRepo.GetByID(ctx, *in.SupplierID)
		if err != nil {
			return nil, err
		}
		if supplier == nil {
			return nil, domain.NewNotFoundError("proveedor", *in.SupplierID)
		}
	}

	now := uc.now()
	order := &entity.Order{
		ID:                   uc.newID(),
		OrderNumber:          uc.orderNumber(in.Type, now),
		Type:                 in.Type,
		Status:               entity.OrderStatusPENDING,
		SupplierID:           in.SupplierID,
		CustomerName:         strings.TrimSpace(in.CustomerName),
		CustomerEmail:        strings.TrimSpace(in.CustomerEmail),
		CustomerPhone:        strings.TrimSpace(in.CustomerPhone),
		OrderDate:            now,
		ExpectedDeliveryDate: in.ExpectedDeliveryDate,
		Notes:                in.Notes,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if in.Type == entity.OrderTypeSALE {
		order.SupplierID = nil
	}

	err := uc.txRunner.RunOrders(ctx, func(
		_ repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		for _, it := range in.Items {
			item, err := uc.buildItem(ctx, productRepo, order, it.ProductID, it.Quantity, it.UnitPrice)
			if err != nil {
				return err
			}
			order.Items = append(order.Items, item)
		}
		domainordering.RecomputeTotal(order)
		return orderRepo.Create(ctx, order)
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("order_type", in.Type.String()).Msg("alta de pedido rechazada")
		return nil, err
	}
	uc.log.Info().Str("order_number", order.OrderNumber).Int("items", len(order.Items)).
		Str("total", order.TotalAmount.String()).Msg("pedido creado")
	return order, nil
}

// GetOrder pedido con sus ítems.
func (uc *OrderUseCase) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NewNotFoundError("pedido", id)
	}
	return order, nil
}

// ListOrders pedidos sin ítems, del más reciente al más antiguo.
func (uc *OrderUseCase) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	return uc.orderRepo.List(ctx, filter)
}

// UpdateOrder modifica los datos de cliente, la fecha prevista y las notas.
func (uc *OrderUseCase) UpdateOrder(ctx context.Context, id string, in UpdateOrderInput) (*entity.Order, error) {
	var updated *entity.Order
	err := uc.txRunner.RunOrders(ctx, func(
		_ repository.StockMovementRepository,
		_ repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		order, err := lockOrder(ctx, orderRepo, id)
		if err != nil {
			return err
		}
		if err := domainordering.CheckMutable(order); err != nil {
			return err
		}
		if in.CustomerName != nil {
			order.CustomerName = strings.TrimSpace(*in.CustomerName)
		}
		if in.CustomerEmail != nil {
			order.CustomerEmail = strings.TrimSpace(*in.CustomerEmail)
		}
		if in.CustomerPhone != nil {
			order.CustomerPhone = strings.TrimSpace(*in.CustomerPhone)
		}
		if in.ExpectedDeliveryDate != nil {
			order.ExpectedDeliveryDate = in.ExpectedDeliveryDate
		}
		if in.Notes != nil {
			order.Notes = *in.Notes
		}
		order.UpdatedAt = uc.now()
		updated = order
		return orderRepo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetStatus cambia el estado del pedido. Pasar a DELIVERED fija la fecha de entrega y aplica
// un movimiento por ítem (IN en compras, OUT en ventas) en la misma transacción; si uno falla
// no queda nada aplicado. actor queda registrado en cada movimiento.
func (uc *OrderUseCase) SetStatus(ctx context.Context, id string, status entity.OrderStatus, actor string) (*entity.Order, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status", "estado desconocido")
	}

	var (
		result   *entity.Order
		previous entity.OrderStatus
		applied  []*entity.StockMovement
	)
	err := uc.txRunner.RunOrders(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		applied = nil
		order, err := lockOrder(ctx, orderRepo, id)
		if err != nil {
			return err
		}
		if err := domainordering.CheckTransition(order.Status, status); err != nil {
			return err
		}
		previous = order.Status
		now := uc.now()
		order.Status = status
		order.UpdatedAt = now

		if status == entity.OrderStatusDELIVERED {
			order.ActualDeliveryDate = &now
			movs, err := uc.fulfill(ctx, movRepo, productRepo, order, actor, now)
			if err != nil {
				return err
			}
			applied = movs
		}
		result = order
		return orderRepo.Update(ctx, order)
	})
	if err != nil {
		ev := uc.log.Warn()
		if errors.Is(err, domain.ErrPersistence) {
			ev = uc.log.Error()
		}
		ev.Err(err).Str("order_id", id).Str("status", status.String()).Msg("cambio de estado rechazado")
		return nil, err
	}

	uc.log.Info().Str("order_number", result.OrderNumber).Str("from", previous.String()).
		Str("to", result.Status.String()).Int("movements", len(applied)).Str("actor", actor).
		Msg("estado de pedido actualizado")
	if uc.movements != nil {
		uc.movements.Notify(ctx, applied...)
	}
	for _, o := range uc.observers {
		o.StatusChanged(ctx, result, previous)
	}
	return result, nil
}

// fulfill bloquea los productos en orden de ID (evita interbloqueos entre entregas que
// comparten productos) y aplica un movimiento por línea.
func (uc *OrderUseCase) fulfill(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	order *entity.Order,
	actor string,
	now time.Time,
) ([]*entity.StockMovement, error) {
	movementType, err := domainordering.FulfillmentMovement(order.Type)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(order.Items))
	seen := make(map[string]bool, len(order.Items))
	for _, it := range order.Items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	sort.Strings(ids)
	for _, pid := range ids {
		p, err := productRepo.GetForUpdate(ctx, pid)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.NewNotFoundError("producto", pid)
		}
	}

	reason := domainordering.FulfillmentReason(order)
	movements := make([]*entity.StockMovement, 0, len(order.Items))
	for _, it := range order.Items {
		in := inventory.MovementInput{
			ProductID:     it.ProductID,
			Type:          movementType,
			Quantity:      it.Quantity,
			Reason:        reason,
			ReferenceType: entity.ReferenceTypeOrder,
			ReferenceID:   order.ID,
			Actor:         actor,
		}
		if order.Type == entity.OrderTypePURCHASE {
			cost := it.UnitPrice
			in.UnitCost = &cost
		}
		mov, err := uc.movements.ApplyInTx(ctx, movRepo, productRepo, in, now)
		if err != nil {
			return nil, err
		}
		movements = append(movements, mov)
	}
	return movements, nil
}

// AddItem agrega una línea a un pedido no terminal y recalcula el total.
func (uc *OrderUseCase) AddItem(ctx context.Context, orderID string, in ItemInput) (*entity.Order, error) {
	if err := validateItem(in.ProductID, in.Quantity, in.UnitPrice); err != nil {
		return nil, err
	}
	return uc.mutateItems(ctx, orderID, func(productRepo repository.ProductRepository, orderRepo repository.OrderRepository, order *entity.Order) error {
		item, err := uc.buildItem(ctx, productRepo, order, in.ProductID, in.Quantity, in.UnitPrice)
		if err != nil {
			return err
		}
		if err := orderRepo.AddItem(ctx, item); err != nil {
			return err
		}
		order.Items = append(order.Items, item)
		return nil
	})
}

// UpdateItem cambia cantidad y/o precio de una línea. En ventas, subir la cantidad
// vuelve a verificar el stock disponible.
func (uc *OrderUseCase) UpdateItem(ctx context.Context, orderID, itemID string, in ItemUpdate) (*entity.Order, error) {
	if in.Quantity != nil && *in.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return nil, domain.NewValidationError("unit_price", "no puede ser negativo")
	}
	return uc.mutateItems(ctx, orderID, func(productRepo repository.ProductRepository, orderRepo repository.OrderRepository, order *entity.Order) error {
		item, ok := order.Item(itemID)
		if !ok {
			return domain.NewNotFoundError("ítem", itemID)
		}
		if in.Quantity != nil {
			if order.Type == entity.OrderTypeSALE && *in.Quantity > item.Quantity {
				if err := checkAvailable(ctx, productRepo, item.ProductID, *in.Quantity); err != nil {
					return err
				}
			}
			item.Quantity = *in.Quantity
		}
		if in.UnitPrice != nil {
			item.UnitPrice = *in.UnitPrice
		}
		item.CalculateTotalPrice()
		return orderRepo.UpdateItem(ctx, item)
	})
}

// RemoveItem elimina una línea de un pedido no terminal y recalcula el total.
func (uc *OrderUseCase) RemoveItem(ctx context.Context, orderID, itemID string) (*entity.Order, error) {
	return uc.mutateItems(ctx, orderID, func(_ repository.ProductRepository, orderRepo repository.OrderRepository, order *entity.Order) error {
		if _, ok := order.Item(itemID); !ok {
			return domain.NewNotFoundError("ítem", itemID)
		}
		if err := orderRepo.DeleteItem(ctx, order.ID, itemID); err != nil {
			return err
		}
		kept := order.Items[:0:0]
		for _, it := range order.Items {
			if it.ID != itemID {
				kept = append(kept, it)
			}
		}
		order.Items = kept
		return nil
	})
}

// RecomputeOrderTotal recalcula y persiste el total. En pedidos terminales solo lo devuelve.
func (uc *OrderUseCase) RecomputeOrderTotal(ctx context.Context, orderID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := uc.txRunner.RunOrders(ctx, func(
		_ repository.StockMovementRepository,
		_ repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		order, err := lockOrder(ctx, orderRepo, orderID)
		if err != nil {
			return err
		}
		previous := order.TotalAmount
		total = domainordering.RecomputeTotal(order)
		if order.Status.IsTerminal() || previous.Equal(total) {
			return nil
		}
		order.UpdatedAt = uc.now()
		return orderRepo.Update(ctx, order)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// DeleteOrder borra el pedido y sus ítems. Los pedidos entregados no se pueden borrar.
func (uc *OrderUseCase) DeleteOrder(ctx context.Context, orderID string) error {
	err := uc.txRunner.RunOrders(ctx, func(
		_ repository.StockMovementRepository,
		_ repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		order, err := lockOrder(ctx, orderRepo, orderID)
		if err != nil {
			return err
		}
		if err := domainordering.CheckDeletable(order); err != nil {
			return err
		}
		return orderRepo.Delete(ctx, order.ID)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("order_id", orderID).Msg("pedido eliminado")
	return nil
}

// mutateItems envoltorio común de las operaciones sobre ítems: bloquea el pedido, exige
// estado no terminal, aplica fn y persiste el total recalculado en la misma transacción.
func (uc *OrderUseCase) mutateItems(
	ctx context.Context,
	orderID string,
	fn func(productRepo repository.ProductRepository, orderRepo repository.OrderRepository, order *entity.Order) error,
) (*entity.Order, error) {
	var result *entity.Order
	err := uc.txRunner.RunOrders(ctx, func(
		_ repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		order, err := lockOrder(ctx, orderRepo, orderID)
		if err != nil {
			return err
		}
		if err := domainordering.CheckMutable(order); err != nil {
			return err
		}
		if err := fn(productRepo, orderRepo, order); err != nil {
			return err
		}
		domainordering.RecomputeTotal(order)
		order.UpdatedAt = uc.now()
		result = order
		return orderRepo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *OrderUseCase) buildItem(
	ctx context.Context,
	productRepo repository.ProductRepository,
	order *entity.Order,
	productID string,
	quantity int,
	unitPrice *decimal.Decimal,
) (*entity.OrderItem, error) {
	product, err := productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("producto", productID)
	}
	// Verificación blanda: no reserva stock, solo se descuenta al entregar.
	if order.Type == entity.OrderTypeSALE && product.StockQuantity < quantity {
		return nil, &domain.InsufficientStockError{ProductID: productID, Available: product.StockQuantity, Requested: quantity}
	}
	price := product.UnitPrice
	if unitPrice != nil {
		price = *unitPrice
	}
	item := &entity.OrderItem{
		ID:        uc.newID(),
		OrderID:   order.ID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: price,
	}
	item.CalculateTotalPrice()
	return item, nil
}

// orderNumber ACH-/VTE- + fecha y hora + sufijo aleatorio corto.
func (uc *OrderUseCase) orderNumber(t entity.OrderType, now time.Time) string {
	prefix := "VTE"
	if t == entity.OrderTypePURCHASE {
		prefix = "ACH"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:4])
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102150405"), suffix)
}

func lockOrder(ctx context.Context, orderRepo repository.OrderRepository, id string) (*entity.Order, error) {
	order, err := orderRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NewNotFoundError("pedido", id)
	}
	return order, nil
}

func checkAvailable(ctx context.Context, productRepo repository.ProductRepository, productID string, requested int) error {
	product, err := productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.NewNotFoundError("producto", productID)
	}
	if product.StockQuantity < requested {
		return &domain.InsufficientStockError{ProductID: productID, Available: product.StockQuantity, Requested: requested}
	}
	return nil
}

func validateItem(productID string, quantity int, unitPrice *decimal.Decimal) error {
	if productID == "" {
		return domain.NewValidationError("product_id", "requerido")
	}
	if quantity <= 0 {
		return domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	if unitPrice != nil && unitPrice.IsNegative() {
		return domain.NewValidationError("unit_price", "no puede ser negativo")
	}
	return nil
}
