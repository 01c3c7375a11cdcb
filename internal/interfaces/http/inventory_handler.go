package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// InventoryHandler endpoints del ledger de stock de un producto.
type InventoryHandler struct {
	uc *inventory.MovementUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.MovementUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de stock
// @Description  in/return suman, out resta (409 si no alcanza), adjustment fija el nivel absoluto.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.RegisterMovementRequest  true  "Movimiento"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	productID, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.RegisterMovementRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	movType, err := entity.ParseMovementType(in.MovementType)
	if err != nil {
		return writeError(c, domain.NewValidationError("movement_type", "debe ser in, out, adjustment o return"))
	}
	mov, err := h.uc.ApplyMovement(c.UserContext(), inventory.MovementInput{
		ProductID:     productID,
		Type:          movType,
		Quantity:      *in.Quantity,
		Reason:        in.Reason,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		UnitCost:      in.UnitCost,
		Notes:         in.Notes,
		Actor:         GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewStockMovementResponse(mov))
}

// ListMovements godoc
// @Summary      Historial de movimientos del producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id             path   string  true   "ID del producto"
// @Param        movement_type  query  string  false  "in | out | adjustment | return"
// @Param        from           query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to             query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit          query  int     false  "Límite"  default(20)
// @Param        offset         query  int     false  "Offset"  default(0)
// @Success      200            {object}  dto.MovementListResponse
// @Failure      404            {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	productID, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var q dto.MovementQuery
	if err := bindQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	filter := repository.MovementFilter{Limit: q.Limit, Offset: q.Offset}
	if q.MovementType != "" {
		if filter.Type, err = entity.ParseMovementType(q.MovementType); err != nil {
			return writeError(c, domain.NewValidationError("movement_type", "tipo desconocido"))
		}
	}
	if filter.From, filter.To, err = dto.ParseDateRange(q.From, q.To); err != nil {
		return writeError(c, err)
	}
	list, err := h.uc.ListMovements(c.UserContext(), productID, filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewMovementList(list, dto.PageResponse{Limit: q.Limit, Offset: q.Offset}))
}

// Reconcile godoc
// @Summary      Conciliar stock contra el ledger
// @Description  Reconstruye el stock desde cero con todos los movimientos y lo compara con el actual.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	productID, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	rec, err := h.uc.Reconcile(c.UserContext(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReconciliationResponse{
		ProductID:    rec.ProductID,
		CurrentStock: rec.CurrentStock,
		LedgerStock:  rec.LedgerStock,
		Movements:    rec.Movements,
		Consistent:   rec.Consistent,
		Issue:        rec.Issue,
		AverageCost:  rec.AverageCost,
	})
}
