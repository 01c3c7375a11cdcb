package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/ordering"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// OrderHandler endpoints de pedidos de compra y venta.
type OrderHandler struct {
	uc   *ordering.OrderUseCase
	docs *ordering.DocumentUseCase
}

// NewOrderHandler construye el handler. docs puede ser nil si no hay generador de PDF.
func NewOrderHandler(uc *ordering.OrderUseCase, docs *ordering.DocumentUseCase) *OrderHandler {
	return &OrderHandler{uc: uc, docs: docs}
}

// Create godoc
// @Summary      Crear pedido
// @Description  Crea el pedido en pending. Las ventas verifican stock disponible sin reservarlo.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Pedido"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	orderType, err := entity.ParseOrderType(in.OrderType)
	if err != nil {
		return writeError(c, domain.NewValidationError("order_type", "debe ser purchase o sale"))
	}
	items := make([]ordering.ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, ordering.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	order, err := h.uc.CreateOrder(c.UserContext(), ordering.CreateOrderInput{
		Type:                 orderType,
		SupplierID:           in.SupplierID,
		CustomerName:         in.CustomerName,
		CustomerEmail:        in.CustomerEmail,
		CustomerPhone:        in.CustomerPhone,
		ExpectedDeliveryDate: in.ExpectedDeliveryDate,
		Notes:                in.Notes,
		Items:                items,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewOrderResponse(order))
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        order_type   query  string  false  "purchase | sale"
// @Param        status       query  string  false  "pending | confirmed | shipped | delivered | cancelled"
// @Param        supplier_id  query  string  false  "Proveedor"
// @Param        search       query  string  false  "Número de pedido o cliente"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200          {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var q dto.OrderQuery
	if err := bindQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	filter := repository.OrderFilter{SupplierID: q.SupplierID, Search: q.Search, Limit: q.Limit, Offset: q.Offset}
	var err error
	if q.OrderType != "" {
		if filter.Type, err = entity.ParseOrderType(q.OrderType); err != nil {
			return writeError(c, domain.NewValidationError("order_type", "tipo desconocido"))
		}
	}
	if q.Status != "" {
		if filter.Status, err = entity.ParseOrderStatus(q.Status); err != nil {
			return writeError(c, domain.NewValidationError("status", "estado desconocido"))
		}
	}
	list, err := h.uc.ListOrders(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderList(list, dto.PageResponse{Limit: q.Limit, Offset: q.Offset}))
}

// GetByID godoc
// @Summary      Obtener pedido con sus ítems
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	order, err := h.uc.GetOrder(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// Update godoc
// @Summary      Actualizar datos del pedido
// @Description  Cliente, fecha prevista y notas. Los pedidos terminados no se editan.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.OrderResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateOrderRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	order, err := h.uc.UpdateOrder(c.UserContext(), id, ordering.UpdateOrderInput{
		CustomerName:         in.CustomerName,
		CustomerEmail:        in.CustomerEmail,
		CustomerPhone:        in.CustomerPhone,
		ExpectedDeliveryDate: in.ExpectedDeliveryDate,
		Notes:                in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// UpdateStatus godoc
// @Summary      Cambiar estado del pedido
// @Description  delivered aplica un movimiento por ítem (in en compras, out en ventas) de forma atómica.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateOrderStatusRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	status, err := entity.ParseOrderStatus(in.Status)
	if err != nil {
		return writeError(c, domain.NewValidationError("status", "estado desconocido"))
	}
	order, err := h.uc.SetStatus(c.UserContext(), id, status, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// AddItem godoc
// @Summary      Agregar ítem al pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del pedido"
// @Param        body  body  dto.OrderItemRequest  true  "Ítem"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items [post]
func (h *OrderHandler) AddItem(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.OrderItemRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	order, err := h.uc.AddItem(c.UserContext(), id, ordering.ItemInput{
		ProductID: in.ProductID, Quantity: in.Quantity, UnitPrice: in.UnitPrice,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewOrderResponse(order))
}

// UpdateItem godoc
// @Summary      Modificar ítem del pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string  true  "ID del pedido"
// @Param        itemId  path  string  true  "ID del ítem"
// @Param        body    body  dto.UpdateOrderItemRequest  true  "Cantidad y/o precio"
// @Success      200     {object}  dto.OrderResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items/{itemId} [put]
func (h *OrderHandler) UpdateItem(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	itemID, err := pathID(c, "itemId")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateOrderItemRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	order, err := h.uc.UpdateItem(c.UserContext(), id, itemID, ordering.ItemUpdate{Quantity: in.Quantity, UnitPrice: in.UnitPrice})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// RemoveItem godoc
// @Summary      Quitar ítem del pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID del pedido"
// @Param        itemId  path  string  true  "ID del ítem"
// @Success      200     {object}  dto.OrderResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items/{itemId} [delete]
func (h *OrderHandler) RemoveItem(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	itemID, err := pathID(c, "itemId")
	if err != nil {
		return writeError(c, err)
	}
	order, err := h.uc.RemoveItem(c.UserContext(), id, itemID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// Recompute godoc
// @Summary      Recalcular total del pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderTotalResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/recompute [post]
func (h *OrderHandler) Recompute(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	total, err := h.uc.RecomputeOrderTotal(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OrderTotalResponse{OrderID: id, TotalAmount: total})
}

// Delete godoc
// @Summary      Eliminar pedido
// @Description  Los pedidos entregados no se eliminan: sus movimientos ya están en el ledger. Requiere rol admin.
// @Tags         orders
// @Security     Bearer
// @Param        id   path  string  true  "ID del pedido"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.DeleteOrder(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PDF godoc
// @Summary      Descargar pedido en PDF
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/pdf [get]
func (h *OrderHandler) PDF(c *fiber.Ctx) error {
	if h.docs == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "PDF_DISABLED", Message: "generación de PDF no configurada"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	data, filename, err := h.docs.OrderPDF(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
