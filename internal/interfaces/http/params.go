package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// pathID lee un parámetro de ruta que debe ser un UUID.
func pathID(c *fiber.Ctx, name string) (string, error) {
	raw := c.Params(name)
	if raw == "" {
		return "", domain.NewValidationError(name, "es requerido")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", domain.NewValidationError(name, "id inválido")
	}
	return id.String(), nil
}
