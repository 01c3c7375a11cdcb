// Package catalog casos de uso CRUD de productos y proveedores. El stock nunca se edita
// aquí: el alta registra el stock inicial como movimiento y el resto pasa por el ledger.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// InitialStockReason motivo del movimiento que registra el stock de alta.
const InitialStockReason = "initial stock"

// ProductUseCase casos de uso de productos.
type ProductUseCase struct {
	txRunner     inventory.TxRunner
	repo         repository.ProductRepository
	supplierRepo repository.SupplierRepository
	movements    *inventory.MovementUseCase
	log          *logger.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner inventory.TxRunner,
	repo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	movements *inventory.MovementUseCase,
	log *logger.Logger,
) *ProductUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{
		txRunner:     txRunner,
		repo:         repo,
		supplierRepo: supplierRepo,
		movements:    movements,
		log:          log.Component("catalog"),
	}
}

// Create crea el producto con stock 0 y, si trae stock inicial, aplica un IN en la misma transacción.
func (uc *ProductUseCase) Create(ctx context.Context, actor string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Reference = strings.TrimSpace(in.Reference)
	if in.Name == "" {
		return nil, domain.NewValidationError("name", "requerido")
	}
	if in.Reference == "" {
		return nil, domain.NewValidationError("reference", "requerida")
	}
	if in.UnitPrice.IsNegative() {
		return nil, domain.NewValidationError("unit_price", "no puede ser negativo")
	}
	if in.StockQuantity < 0 {
		return nil, domain.NewValidationError("stock_quantity", "no puede ser negativo")
	}
	existing, err := uc.repo.GetByReference(ctx, in.Reference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: ya existe un producto con referencia %s", domain.ErrDuplicate, in.Reference)
	}
	supplierID, err := uc.resolveSupplier(ctx, in.SupplierID)
	if err != nil {
		return nil, err
	}

	minStock := entity.DefaultMinStockLevel
	if in.MinStockLevel != nil {
		minStock = *in.MinStockLevel
	}
	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		Name:          in.Name,
		Description:   in.Description,
		Category:      strings.TrimSpace(in.Category),
		Reference:     in.Reference,
		UnitPrice:     in.UnitPrice,
		MinStockLevel: minStock,
		SupplierID:    supplierID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var initial *entity.StockMovement
	err = uc.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		if in.StockQuantity == 0 {
			return nil
		}
		mov, err := uc.movements.ApplyInTx(ctx, movRepo, productRepo, inventory.MovementInput{
			ProductID: product.ID,
			Type:      entity.MovementTypeIN,
			Quantity:  in.StockQuantity,
			Reason:    InitialStockReason,
			Actor:     actor,
		}, now)
		if err != nil {
			return err
		}
		initial = mov
		product.StockQuantity = mov.NewStock
		return nil
	})
	if err != nil {
		return nil, err
	}
	if initial != nil {
		uc.movements.Notify(ctx, initial)
	}
	uc.log.Info().Str("product_id", product.ID).Str("reference", product.Reference).
		Int("initial_stock", product.StockQuantity).Msg("producto creado")
	return dto.NewProductResponse(product), nil
}

// GetByID obtiene un producto.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewProductResponse(product), nil
}

// List lista productos con filtros y total para la paginación.
func (uc *ProductUseCase) List(ctx context.Context, q dto.ProductQuery) (*dto.ProductListResponse, error) {
	q.DefaultPage()
	filter := repository.ProductFilter{
		Category:   q.Category,
		SupplierID: q.SupplierID,
		Search:     strings.TrimSpace(q.Search),
		LowStock:   q.LowStock,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewProductList(list, dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total}), nil
}

// Update modifica los campos de catálogo. El stock no se toca.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if in.Reference != nil {
		ref := strings.TrimSpace(*in.Reference)
		if ref != product.Reference {
			other, err := uc.repo.GetByReference(ctx, ref)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != product.ID {
				return nil, fmt.Errorf("%w: ya existe un producto con referencia %s", domain.ErrDuplicate, ref)
			}
		}
		product.Reference = ref
	}
	if in.UnitPrice != nil {
		if in.UnitPrice.IsNegative() {
			return nil, domain.NewValidationError("unit_price", "no puede ser negativo")
		}
		product.UnitPrice = *in.UnitPrice
	}
	if in.MinStockLevel != nil {
		product.MinStockLevel = *in.MinStockLevel
	}
	if in.SupplierID != nil {
		if *in.SupplierID == "" {
			product.SupplierID = nil
		} else {
			supplierID, err := uc.resolveSupplier(ctx, in.SupplierID)
			if err != nil {
				return nil, err
			}
			product.SupplierID = supplierID
		}
	}
	if product.Name == "" || product.Reference == "" {
		return nil, domain.NewValidationError("name", "nombre y referencia son obligatorios")
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return dto.NewProductResponse(product), nil
}

// Categories categorías distintas en uso.
func (uc *ProductUseCase) Categories(ctx context.Context) ([]string, error) {
	cats, err := uc.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}

// Delete elimina un producto sin líneas de pedido ni movimientos de stock.
// El ledger es append-only: un producto con historial no se puede borrar.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	used, err := uc.repo.HasOrderItems(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("%w: el producto está en pedidos", domain.ErrConflict)
	}
	moved, err := uc.repo.HasMovements(ctx, id)
	if err != nil {
		return err
	}
	if moved {
		return fmt.Errorf("%w: el producto tiene movimientos de stock", domain.ErrConflict)
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("product_id", id).Msg("producto eliminado")
	return nil
}

func (uc *ProductUseCase) get(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("producto", id)
	}
	return product, nil
}

func (uc *ProductUseCase) resolveSupplier(ctx context.Context, id *string) (*string, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	supplier, err := uc.supplierRepo.GetByID(ctx, *id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.NewNotFoundError("proveedor", *id)
	}
	sid := supplier.ID
	return &sid, nil
}
