package dto

import (
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// CreateSupplierRequest entrada para crear un proveedor.
type CreateSupplierRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=200"`
	ContactPerson string `json:"contact_person" validate:"max=100"`
	Email         string `json:"email" validate:"omitempty,email,max=120"`
	Phone         string `json:"phone" validate:"max=20"`
	Address       string `json:"address"`
	City          string `json:"city" validate:"max=100"`
	PostalCode    string `json:"postal_code" validate:"max=10"`
	Country       string `json:"country" validate:"max=100"`
	PaymentTerms  string `json:"payment_terms" validate:"max=100"`
	Notes         string `json:"notes"`
	IsActive      *bool  `json:"is_active"`
}

// UpdateSupplierRequest actualización parcial de un proveedor.
type UpdateSupplierRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=200"`
	ContactPerson *string `json:"contact_person" validate:"omitempty,max=100"`
	Email         *string `json:"email" validate:"omitempty,email,max=120"`
	Phone         *string `json:"phone" validate:"omitempty,max=20"`
	Address       *string `json:"address"`
	City          *string `json:"city" validate:"omitempty,max=100"`
	PostalCode    *string `json:"postal_code" validate:"omitempty,max=10"`
	Country       *string `json:"country" validate:"omitempty,max=100"`
	PaymentTerms  *string `json:"payment_terms" validate:"omitempty,max=100"`
	Notes         *string `json:"notes"`
	IsActive      *bool   `json:"is_active"`
}

// SupplierQuery filtros de GET /api/suppliers.
type SupplierQuery struct {
	PageRequest
	ActiveOnly bool   `query:"active_only"`
	Search     string `query:"search"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	PostalCode    string    `json:"postal_code"`
	Country       string    `json:"country"`
	PaymentTerms  string    `json:"payment_terms"`
	Notes         string    `json:"notes"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SupplierListResponse lista paginada de proveedores.
type SupplierListResponse struct {
	Items []SupplierResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// NewSupplierResponse mapea la entidad a la salida HTTP.
func NewSupplierResponse(s *entity.Supplier) *SupplierResponse {
	if s == nil {
		return nil
	}
	return &SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
		City:          s.City,
		PostalCode:    s.PostalCode,
		Country:       s.Country,
		PaymentTerms:  s.PaymentTerms,
		Notes:         s.Notes,
		IsActive:      s.IsActive,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
