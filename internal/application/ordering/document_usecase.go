package ordering

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// DocumentUseCase genera el documento PDF de un pedido (orden de compra o nota de venta).
type DocumentUseCase struct {
	orderRepo    repository.OrderRepository
	supplierRepo repository.SupplierRepository
	productRepo  repository.ProductRepository
	generator    DocumentGenerator
}

// NewDocumentUseCase construye el caso de uso.
func NewDocumentUseCase(
	orderRepo repository.OrderRepository,
	supplierRepo repository.SupplierRepository,
	productRepo repository.ProductRepository,
	generator DocumentGenerator,
) *DocumentUseCase {
	return &DocumentUseCase{
		orderRepo:    orderRepo,
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
		generator:    generator,
	}
}

// OrderPDF devuelve los bytes del PDF y el nombre de archivo sugerido.
// Un producto borrado después de crear el pedido aparece como "(producto eliminado)".
func (uc *DocumentUseCase) OrderPDF(ctx context.Context, orderID string) ([]byte, string, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener pedido: %w", err)
	}
	if order == nil {
		return nil, "", domain.NewNotFoundError("pedido", orderID)
	}

	doc := OrderDocument{Order: order, Lines: make([]DocumentLine, 0, len(order.Items))}
	if order.SupplierID != nil {
		if doc.Supplier, err = uc.supplierRepo.GetByID(ctx, *order.SupplierID); err != nil {
			return nil, "", fmt.Errorf("pdf: obtener proveedor: %w", err)
		}
	}
	for _, it := range order.Items {
		line := DocumentLine{
			ProductName: "(producto eliminado)",
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))),
		}
		p, err := uc.productRepo.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, "", fmt.Errorf("pdf: obtener producto %s: %w", it.ProductID, err)
		}
		if p != nil {
			line.ProductName = p.Name
			line.Reference = p.Reference
		}
		doc.Lines = append(doc.Lines, line)
	}

	pdfBytes, err := uc.generator.OrderPDF(ctx, doc)
	if err != nil {
		return nil, "", err
	}
	return pdfBytes, order.OrderNumber + ".pdf", nil
}
