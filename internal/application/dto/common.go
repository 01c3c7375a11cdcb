package dto

import (
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseDateRange interpreta los filtros from/to (YYYY-MM-DD o RFC3339). Vacío = sin límite.
// Una fecha sin hora en "to" cubre el día completo.
func ParseDateRange(from, to string) (*time.Time, *time.Time, error) {
	f, err := parseDate("from", from, false)
	if err != nil {
		return nil, nil, err
	}
	t, err := parseDate("to", to, true)
	if err != nil {
		return nil, nil, err
	}
	if f != nil && t != nil && t.Before(*f) {
		return nil, nil, domain.NewValidationError("to", "debe ser posterior a from")
	}
	return f, t, nil
}

func parseDate(field, s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, domain.NewValidationError(field, "fecha inválida, use YYYY-MM-DD")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
