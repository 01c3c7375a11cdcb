package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// csvRow fila del catálogo con su número de línea para los mensajes.
type csvRow struct {
	line int
	req  dto.CreateProductRequest
}

var requiredColumns = []string{"reference", "name"}

// parseProductsCSV lee el catálogo. La primera fila es la cabecera; columnas reconocidas:
// reference, name, category, description, unit_price, stock_quantity, min_stock_level.
func parseProductsCSV(r io.Reader, latin1 bool, sep rune) ([]csvRow, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cabecera: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("falta la columna %q", name)
		}
	}

	var rows []csvRow
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if get("reference") == "" && get("name") == "" {
			continue
		}
		req := dto.CreateProductRequest{
			Reference:   get("reference"),
			Name:        get("name"),
			Category:    get("category"),
			Description: get("description"),
			UnitPrice:   decimal.Zero,
		}
		if s := get("unit_price"); s != "" {
			if req.UnitPrice, err = parseAmount(s); err != nil {
				return nil, fmt.Errorf("línea %d: unit_price %q inválido", line, s)
			}
		}
		if s := get("stock_quantity"); s != "" {
			if req.StockQuantity, err = strconv.Atoi(s); err != nil {
				return nil, fmt.Errorf("línea %d: stock_quantity %q inválido", line, s)
			}
		}
		if s := get("min_stock_level"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("línea %d: min_stock_level %q inválido", line, s)
			}
			req.MinStockLevel = &n
		}
		rows = append(rows, csvRow{line: line, req: req})
	}
	return rows, nil
}

// parseAmount acepta "1234.5", "1234,5" y "1.234,50".
func parseAmount(s string) (decimal.Decimal, error) {
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

// importProducts crea cada fila; referencias repetidas o inválidas se omiten con un aviso.
func importProducts(ctx context.Context, products productCreator, rows []csvRow, log *logger.Logger) (imported, skipped int) {
	for _, row := range rows {
		_, err := products.Create(ctx, seedActor, row.req)
		switch {
		case err == nil:
			imported++
		case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrInvalidInput):
			skipped++
			log.Warn().Err(err).Int("linea", row.line).Str("reference", row.req.Reference).Msg("fila omitida")
		default:
			skipped++
			log.Error().Err(err).Int("linea", row.line).Msg("error importando fila")
		}
	}
	return imported, skipped
}
