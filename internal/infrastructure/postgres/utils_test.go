package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhere(t *testing.T) {
	w := &where{}
	assert.Empty(t, w.String())

	w.add("category = ?", "Herramientas")
	w.add("(name ILIKE ? OR reference ILIKE ?)", "%a%", "%a%")
	w.add("stock_quantity <= min_stock_level")
	assert.Equal(t, " WHERE category = $1 AND (name ILIKE $2 OR reference ILIKE $3) AND stock_quantity <= min_stock_level", w.String())

	assert.Equal(t, " LIMIT $4 OFFSET $5", w.page(20, 40))
	assert.Equal(t, []any{"Herramientas", "%a%", "%a%", 20, 40}, w.args)
}

func TestWhere_PageSinLimite(t *testing.T) {
	w := &where{}
	assert.Empty(t, w.page(0, 0))
	assert.Empty(t, w.args)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}

func TestPgCodes(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, isUniqueViolation(wrapped))
	assert.False(t, isForeignKeyViolation(wrapped))
	assert.True(t, isCheckViolation(&pgconn.PgError{Code: "23514"}))
	assert.False(t, isUniqueViolation(errors.New("23505 en el texto no cuenta")))
}

func TestMigrateURL(t *testing.T) {
	u, err := migrateURL("postgres://u:p@localhost:5432/stock_ledger?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "pgx5://u:p@localhost:5432/stock_ledger?sslmode=disable", u)

	_, err = migrateURL("mysql://localhost/db")
	assert.Error(t, err)
}
