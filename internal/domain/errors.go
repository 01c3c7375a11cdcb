package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Los tipos de error concretos de abajo responden a errors.Is con estos sentinelas,
// así los adaptadores (HTTP, CLI) deciden por categoría y leen el detalle con errors.As.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidTransition = errors.New("transición de estado inválida")
	ErrPersistence       = errors.New("error de persistencia")
)

// ValidationError entrada mal formada o incompleta (culpa del llamador).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError atajo para construir un ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError el recurso referenciado (producto, pedido, ítem, proveedor) no existe.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError atajo para construir un NotFoundError.
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// InsufficientStockError una salida (o verificación de venta) dejaría el stock en negativo.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %s (disponible: %d, solicitado: %d)",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvalidTransitionError cambio de estado pedido sobre un pedido en estado terminal.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("no se puede pasar de %s a %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// PersistenceError fallo al confirmar la unidad atómica; la transacción ya fue revertida.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// IsKnown indica si err ya pertenece a la taxonomía de dominio.
// El TxRunner lo usa para envolver solo los errores de infraestructura.
func IsKnown(err error) bool {
	for _, kind := range []error{
		ErrNotFound, ErrInvalidInput, ErrDuplicate, ErrUnauthorized, ErrConflict,
		ErrInsufficientStock, ErrInvalidTransition, ErrPersistence,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// WrapPersistence deja pasar los errores de dominio y envuelve el resto como PersistenceError.
func WrapPersistence(op string, err error) error {
	if err == nil || IsKnown(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
