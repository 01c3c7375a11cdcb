package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderType compra (a proveedor) o venta (a cliente).
type OrderType uint8

const (
	OrderTypePURCHASE OrderType = iota + 1
	OrderTypeSALE
)

var OrderTypes = []OrderType{OrderTypePURCHASE, OrderTypeSALE}

func (t OrderType) String() string {
	switch t {
	case OrderTypePURCHASE:
		return "purchase"
	case OrderTypeSALE:
		return "sale"
	}
	return fmt.Sprintf("OrderType(%d)", uint8(t))
}

func (t OrderType) Valid() bool {
	return t == OrderTypePURCHASE || t == OrderTypeSALE
}

// ParseOrderType acepta "purchase"/"sale" sin distinguir mayúsculas.
func ParseOrderType(s string) (OrderType, error) {
	for _, t := range OrderTypes {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("tipo de pedido desconocido: %q", s)
}

func (t OrderType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("tipo de pedido inválido: %d", uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *OrderType) UnmarshalText(b []byte) error {
	parsed, err := ParseOrderType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// OrderStatus estado del pedido. DELIVERED y CANCELLED son terminales.
type OrderStatus uint8

const (
	OrderStatusPENDING OrderStatus = iota + 1
	OrderStatusCONFIRMED
	OrderStatusSHIPPED
	OrderStatusDELIVERED
	OrderStatusCANCELLED
)

var OrderStatuses = []OrderStatus{
	OrderStatusPENDING, OrderStatusCONFIRMED, OrderStatusSHIPPED, OrderStatusDELIVERED, OrderStatusCANCELLED,
}

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPENDING:
		return "pending"
	case OrderStatusCONFIRMED:
		return "confirmed"
	case OrderStatusSHIPPED:
		return "shipped"
	case OrderStatusDELIVERED:
		return "delivered"
	case OrderStatusCANCELLED:
		return "cancelled"
	}
	return fmt.Sprintf("OrderStatus(%d)", uint8(s))
}

func (s OrderStatus) Valid() bool {
	return s >= OrderStatusPENDING && s <= OrderStatusCANCELLED
}

// IsTerminal no admite más transiciones ni ediciones.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDELIVERED, OrderStatusCANCELLED:
		return true
	case OrderStatusPENDING, OrderStatusCONFIRMED, OrderStatusSHIPPED:
		return false
	}
	return false
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range OrderStatuses {
		if strings.EqualFold(s, st.String()) {
			return st, nil
		}
	}
	return 0, fmt.Errorf("estado de pedido desconocido: %q", s)
}

func (s OrderStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("estado de pedido inválido: %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *OrderStatus) UnmarshalText(b []byte) error {
	parsed, err := ParseOrderStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Order pedido de compra o venta. Es el único dueño de sus ítems: al borrar el pedido
// se borran sus ítems en la misma transacción.
type Order struct {
	ID                   string
	OrderNumber          string
	Type                 OrderType
	Status               OrderStatus
	SupplierID           *string // solo compras
	CustomerName         string  // solo ventas
	CustomerEmail        string
	CustomerPhone        string
	OrderDate            time.Time
	ExpectedDeliveryDate *time.Time
	ActualDeliveryDate   *time.Time
	TotalAmount          decimal.Decimal // derivado de Items, ver ordering.RecomputeTotal
	Notes                string
	Items                []*OrderItem
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Item busca un ítem del pedido por ID.
func (o *Order) Item(id string) (*OrderItem, bool) {
	for _, it := range o.Items {
		if it.ID == id {
			return it, true
		}
	}
	return nil, false
}

// OrderItem línea del pedido. UnitPrice se copia al crear la línea y no sigue
// los cambios posteriores del precio del producto.
type OrderItem struct {
	ID         string
	OrderID    string
	ProductID  string
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// CalculateTotalPrice TotalPrice = Quantity * UnitPrice.
func (it *OrderItem) CalculateTotalPrice() decimal.Decimal {
	it.TotalPrice = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
	return it.TotalPrice
}
