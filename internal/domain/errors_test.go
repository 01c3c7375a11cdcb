package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTiposDeError_RespondenASuSentinela(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{NewValidationError("quantity", "x"), ErrInvalidInput},
		{NewNotFoundError("producto", "p-1"), ErrNotFound},
		{&InsufficientStockError{ProductID: "p", Available: 1, Requested: 2}, ErrInsufficientStock},
		{&InvalidTransitionError{From: "delivered", To: "pending"}, ErrInvalidTransition},
		{&PersistenceError{Op: "commit", Err: errors.New("boom")}, ErrPersistence},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("contexto: %w", tc.err)
		assert.ErrorIs(t, wrapped, tc.kind, tc.err.Error())
		assert.True(t, IsKnown(wrapped))
	}
}

func TestInsufficientStockError_DetalleConAs(t *testing.T) {
	err := fmt.Errorf("entrega: %w", &InsufficientStockError{ProductID: "p-9", Available: 2, Requested: 5})
	var detail *InsufficientStockError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, 2, detail.Available)
	assert.Equal(t, 5, detail.Requested)
}

func TestWrapPersistence(t *testing.T) {
	assert.NoError(t, WrapPersistence("tx", nil))

	domainErr := NewNotFoundError("pedido", "o-1")
	assert.Same(t, domainErr, WrapPersistence("tx", domainErr))

	raw := errors.New("connection reset")
	wrapped := WrapPersistence("commit", raw)
	assert.ErrorIs(t, wrapped, ErrPersistence)
	assert.ErrorIs(t, wrapped, raw)
}
