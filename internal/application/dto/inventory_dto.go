package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// RegisterMovementRequest body de POST /api/products/:id/stock.
// Para adjustment, quantity es el nuevo nivel absoluto.
type RegisterMovementRequest struct {
	MovementType  string           `json:"movement_type" validate:"required"`
	Quantity      *int             `json:"quantity" validate:"required,min=0"`
	Reason        string           `json:"reason" validate:"max=200"`
	ReferenceType string           `json:"reference_type" validate:"max=50"`
	ReferenceID   string           `json:"reference_id" validate:"max=64"`
	UnitCost      *decimal.Decimal `json:"unit_cost"`
	Notes         string           `json:"notes"`
}

// MovementQuery filtros de GET /api/products/:id/movements.
type MovementQuery struct {
	PageRequest
	MovementType string `query:"movement_type"`
	From         string `query:"from"` // YYYY-MM-DD
	To           string `query:"to"`
}

// StockMovementResponse salida de un movimiento del ledger.
type StockMovementResponse struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"product_id"`
	MovementType  string           `json:"movement_type"`
	Quantity      int              `json:"quantity"`
	PreviousStock int              `json:"previous_stock"`
	NewStock      int              `json:"new_stock"`
	UnitCost      *decimal.Decimal `json:"unit_cost"`
	ReferenceType string           `json:"reference_type,omitempty"`
	ReferenceID   string           `json:"reference_id,omitempty"`
	Reason        string           `json:"reason"`
	Notes         string           `json:"notes"`
	CreatedBy     string           `json:"created_by"`
	CreatedAt     time.Time        `json:"created_at"`
}

// MovementListResponse historial paginado.
type MovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// ReconciliationResponse comparación entre el stock del producto y el ledger.
type ReconciliationResponse struct {
	ProductID    string           `json:"product_id"`
	CurrentStock int              `json:"current_stock"`
	LedgerStock  int              `json:"ledger_stock"`
	Movements    int              `json:"movements"`
	Consistent   bool             `json:"consistent"`
	Issue        string           `json:"issue,omitempty"`
	AverageCost  *decimal.Decimal `json:"average_cost"`
}

// NewStockMovementResponse mapea un movimiento.
func NewStockMovementResponse(m *entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		MovementType:  m.Type.String(),
		Quantity:      m.Quantity,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		UnitCost:      m.UnitCost,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Reason:        m.Reason,
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// NewMovementList mapea una página de movimientos.
func NewMovementList(list []*entity.StockMovement, page PageResponse) *MovementListResponse {
	items := make([]StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, NewStockMovementResponse(m))
	}
	return &MovementListResponse{Items: items, Page: page}
}
