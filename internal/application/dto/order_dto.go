package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// OrderItemRequest línea en el alta de pedido o en POST /api/orders/:id/items.
// Sin unit_price se usa el precio actual del producto.
type OrderItemRequest struct {
	ProductID string           `json:"product_id" validate:"required,uuid"`
	Quantity  int              `json:"quantity" validate:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CreateOrderRequest body de POST /api/orders.
type CreateOrderRequest struct {
	OrderType            string             `json:"order_type" validate:"required,oneof=purchase sale"`
	SupplierID           *string            `json:"supplier_id" validate:"omitempty,uuid"`
	CustomerName         string             `json:"customer_name" validate:"max=100"`
	CustomerEmail        string             `json:"customer_email" validate:"omitempty,email,max=120"`
	CustomerPhone        string             `json:"customer_phone" validate:"max=20"`
	ExpectedDeliveryDate *time.Time         `json:"expected_delivery_date"`
	Notes                string             `json:"notes"`
	Items                []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderRequest body de PUT /api/orders/:id.
type UpdateOrderRequest struct {
	CustomerName         *string    `json:"customer_name" validate:"omitempty,max=100"`
	CustomerEmail        *string    `json:"customer_email" validate:"omitempty,email,max=120"`
	CustomerPhone        *string    `json:"customer_phone" validate:"omitempty,max=20"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date"`
	Notes                *string    `json:"notes"`
}

// UpdateOrderStatusRequest body de PUT /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateOrderItemRequest body de PUT /api/orders/:id/items/:itemId.
type UpdateOrderItemRequest struct {
	Quantity  *int             `json:"quantity" validate:"omitempty,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// OrderQuery filtros de GET /api/orders.
type OrderQuery struct {
	PageRequest
	OrderType  string `query:"order_type"`
	Status     string `query:"status"`
	SupplierID string `query:"supplier_id"`
	Search     string `query:"search"`
}

// OrderItemResponse línea del pedido.
type OrderItemResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// OrderResponse salida de un pedido. Items se omite en listados.
type OrderResponse struct {
	ID                   string              `json:"id"`
	OrderNumber          string              `json:"order_number"`
	OrderType            string              `json:"order_type"`
	Status               string              `json:"status"`
	SupplierID           *string             `json:"supplier_id"`
	CustomerName         string              `json:"customer_name"`
	CustomerEmail        string              `json:"customer_email"`
	CustomerPhone        string              `json:"customer_phone"`
	OrderDate            time.Time           `json:"order_date"`
	ExpectedDeliveryDate *time.Time          `json:"expected_delivery_date"`
	ActualDeliveryDate   *time.Time          `json:"actual_delivery_date"`
	TotalAmount          decimal.Decimal     `json:"total_amount"`
	Notes                string              `json:"notes"`
	Items                []OrderItemResponse `json:"items,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// OrderTotalResponse salida de POST /api/orders/:id/recompute.
type OrderTotalResponse struct {
	OrderID     string          `json:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderResponse mapea el pedido con sus ítems.
func NewOrderResponse(o *entity.Order) *OrderResponse {
	if o == nil {
		return nil
	}
	out := &OrderResponse{
		ID:                   o.ID,
		OrderNumber:          o.OrderNumber,
		OrderType:            o.Type.String(),
		Status:               o.Status.String(),
		SupplierID:           o.SupplierID,
		CustomerName:         o.CustomerName,
		CustomerEmail:        o.CustomerEmail,
		CustomerPhone:        o.CustomerPhone,
		OrderDate:            o.OrderDate,
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
		ActualDeliveryDate:   o.ActualDeliveryDate,
		TotalAmount:          o.TotalAmount,
		Notes:                o.Notes,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, OrderItemResponse{
			ID:         it.ID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		})
	}
	return out
}

// NewOrderList mapea una página de pedidos.
func NewOrderList(list []*entity.Order, page PageResponse) *OrderListResponse {
	items := make([]OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *NewOrderResponse(o))
	}
	return &OrderListResponse{Items: items, Page: page}
}
