// Package pdf genera el documento imprimible de un pedido: orden de compra para
// proveedores o nota de venta para clientes.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tipo de documento   │  N° Pedido + Fecha + Estado  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONTRAPARTE: Proveedor o cliente + contacto                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Ref | Producto | Cant | P.Unit | Subtotal           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL + entrega prevista / real + notas                    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/ordering"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ ordering.DocumentGenerator = (*MarotoOrderGenerator)(nil)

// MarotoOrderGenerator implementa ordering.DocumentGenerator usando Maroto v2.
type MarotoOrderGenerator struct {
	issuer string
}

// NewMarotoOrderGenerator construye el generador. issuer aparece como autor del documento.
func NewMarotoOrderGenerator(issuer string) *MarotoOrderGenerator {
	return &MarotoOrderGenerator{issuer: issuer}
}

// OrderPDF genera el PDF y devuelve sus bytes.
func (g *MarotoOrderGenerator) OrderPDF(_ context.Context, doc ordering.OrderDocument) ([]byte, error) {
	if doc.Order == nil {
		return nil, fmt.Errorf("pdf: pedido requerido")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(documentTitle(doc.Order.Type)+" "+doc.Order.OrderNumber, true).
		WithAuthor(g.issuer, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc.Order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(counterpartRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(doc.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(doc.Order.TotalAmount))
	m.AddRows(footerRows(doc.Order)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

func documentTitle(t entity.OrderType) string {
	if t == entity.OrderTypePURCHASE {
		return "ORDEN DE COMPRA"
	}
	return "NOTA DE VENTA"
}

func headerRow(o *entity.Order) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(documentTitle(o.Type), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New(o.OrderNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+o.OrderDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Estado: "+strings.ToUpper(o.Status.String()), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

// counterpartRow proveedor en compras, cliente en ventas.
func counterpartRow(doc ordering.OrderDocument) core.Row {
	title, name, contact := "CLIENTE", nonEmpty(doc.Order.CustomerName, "Consumidor final"),
		fmt.Sprintf("Email: %s   |   Tel: %s", nonEmpty(doc.Order.CustomerEmail, "-"), nonEmpty(doc.Order.CustomerPhone, "-"))
	if doc.Order.Type == entity.OrderTypePURCHASE {
		title, name, contact = "PROVEEDOR", "-", ""
		if s := doc.Supplier; s != nil {
			name = s.Name
			contact = fmt.Sprintf("Contacto: %s   |   Email: %s   |   Tel: %s",
				nonEmpty(s.ContactPerson, "-"), nonEmpty(s.Email, "-"), nonEmpty(s.Phone, "-"))
		}
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(contact, props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Ref.", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Cant.", 1, align.Center),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

func tableRows(lines []ordering.DocumentLine) []core.Row {
	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, row.New(7).Add(
			col.New(2).Add(text.New(l.Reference, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(l.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(fmt.Sprint(l.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New("$"+formatMoney(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New("$"+formatMoney(l.TotalPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func totalRow(total decimal.Decimal) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New("$"+formatMoney(total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

func footerRows(o *entity.Order) []core.Row {
	var parts []string
	if o.ExpectedDeliveryDate != nil {
		parts = append(parts, "Entrega prevista: "+o.ExpectedDeliveryDate.Format("02/01/2006"))
	}
	if o.ActualDeliveryDate != nil {
		parts = append(parts, "Entregado: "+o.ActualDeliveryDate.Format("02/01/2006"))
	}
	rows := []core.Row{row.New(3)}
	if len(parts) > 0 {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New(strings.Join(parts, "   |   "), props.Text{Size: 8, Color: colorGray}),
		)))
	}
	if o.Notes != "" {
		rows = append(rows, row.New(12).Add(col.New(12).Add(
			text.New("Notas: "+o.Notes, props.Text{Size: 8, Top: 2}),
		)))
	}
	return rows
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney dos decimales y puntos de miles: 1234567.5 → "1.234.567,50".
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + string(buf) + "," + frac
}
