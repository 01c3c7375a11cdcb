package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementType clasificación cerrada de un cambio de stock.
type MovementType uint8

// Tipos de movimiento. El valor cero no es un tipo válido.
const (
	MovementTypeIN MovementType = iota + 1
	MovementTypeOUT
	MovementTypeADJUSTMENT
	MovementTypeRETURN
)

// MovementTypes lista los tipos válidos en orden estable.
var MovementTypes = []MovementType{MovementTypeIN, MovementTypeOUT, MovementTypeADJUSTMENT, MovementTypeRETURN}

func (t MovementType) String() string {
	switch t {
	case MovementTypeIN:
		return "in"
	case MovementTypeOUT:
		return "out"
	case MovementTypeADJUSTMENT:
		return "adjustment"
	case MovementTypeRETURN:
		return "return"
	}
	return fmt.Sprintf("MovementType(%d)", uint8(t))
}

// Valid indica si t es uno de los cuatro tipos conocidos.
func (t MovementType) Valid() bool {
	return t >= MovementTypeIN && t <= MovementTypeRETURN
}

// ParseMovementType acepta el nombre en minúsculas o mayúsculas ("in", "OUT", ...).
func ParseMovementType(s string) (MovementType, error) {
	for _, t := range MovementTypes {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("tipo de movimiento desconocido: %q", s)
}

// MarshalText serializa el tipo como texto (JSON, columnas TEXT).
func (t MovementType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("tipo de movimiento inválido: %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText interpreta el tipo desde texto.
func (t *MovementType) UnmarshalText(b []byte) error {
	parsed, err := ParseMovementType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Tipos de referencia conocidos para StockMovement.ReferenceType.
const (
	ReferenceTypeOrder      = "order"
	ReferenceTypeAdjustment = "adjustment"
)

// StockMovement registro inmutable del ledger: un cambio de stock con sus instantáneas
// antes/después. Solo se inserta; nunca se actualiza ni se borra.
type StockMovement struct {
	ID            string
	ProductID     string
	Type          MovementType
	Quantity      int // magnitud, siempre >= 0
	PreviousStock int
	NewStock      int
	UnitCost      *decimal.Decimal
	ReferenceType string
	ReferenceID   string
	Reason        string
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
}

// Delta variación con signo implicada por el movimiento.
func (m *StockMovement) Delta() int {
	return m.NewStock - m.PreviousStock
}
