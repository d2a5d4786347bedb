// Package pdf genera el comprobante de custodia de una entrada del libro de movimientos.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + tipo de movimiento │  N° (seq) + Fecha    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ACTIVO: Tag / Nombre / Categoría / Serie / Costo            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  MOVIMIENTO: Origen → Destino | Asignado a | Condición       │
//	│  Observaciones                                               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FIRMAS: Registrado por │ Recibido por  + QR con el ID       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var txTitles = map[string]string{
	entity.TxTypeCheckout: "ENTREGA EN CUSTODIA",
	entity.TxTypeReturn:   "DEVOLUCIÓN",
	entity.TxTypeTransfer: "TRASLADO",
	entity.TxTypeRepair:   "ENVÍO A REPARACIÓN",
	entity.TxTypeRetire:   "BAJA DEL ACTIVO",
}

var conditionLabels = map[string]string{
	entity.ConditionGood:         "Buen estado",
	entity.ConditionDamaged:      "Dañado",
	entity.ConditionMissingParts: "Faltan partes",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReceiptGenerator implementa ports.ReceiptGenerator usando Maroto v2.
type MarotoReceiptGenerator struct {
	printer *message.Printer
}

var _ ports.ReceiptGenerator = (*MarotoReceiptGenerator)(nil)

// NewMarotoReceiptGenerator construye el generador; los montos se formatean en español.
func NewMarotoReceiptGenerator() *MarotoReceiptGenerator {
	return &MarotoReceiptGenerator{printer: message.NewPrinter(language.Spanish)}
}

// Generate genera el PDF y devuelve sus bytes.
func (g *MarotoReceiptGenerator) Generate(data ports.ReceiptData) ([]byte, error) {
	if data.Transaction == nil {
		return nil, fmt.Errorf("pdf: comprobante sin movimiento")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de custodia", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data.Transaction))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.assetRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(movementRows(data)...)
	m.AddRows(line.NewRow(6))
	m.AddRows(signatureRow(data))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título y tipo (izq), número de secuencia y fecha (der).
func headerRow(tx *entity.Transaction) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("COMPROBANTE DE CUSTODIA", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(txTitles[tx.Type], tx.Type), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(fmt.Sprintf("N° %06d", tx.Seq), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+tx.CreatedAt.UTC().Format("02/01/2006 15:04 UTC"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// assetRow: datos del activo. Si el activo ya no existe se usa la copia del libro.
func (g *MarotoReceiptGenerator) assetRow(data ports.ReceiptData) core.Row {
	tx := data.Transaction
	detail := "Activo eliminado del inventario"
	if a := data.Asset; a != nil {
		detail = fmt.Sprintf("Categoría: %s   |   Serie: %s   |   Marca/Modelo: %s   |   Costo: %s",
			nonEmpty(data.CategoryName, "-"),
			nonEmpty(deref(a.SerialNo), "-"),
			nonEmpty(joinNonEmpty(a.Brand, a.Model), "-"),
			g.money(a.UnitCost),
		)
	}
	return row.New(16).Add(
		col.New(12).Add(
			text.New("ACTIVO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(tx.AssetTag+"  ·  "+tx.AssetName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(detail, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// movementRows: origen, destino, custodio, condición y observaciones.
func movementRows(data ports.ReceiptData) []core.Row {
	tx := data.Transaction
	field := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(value, "-"), props.Text{Size: 9, Top: 6}),
		)
	}
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("MOVIMIENTO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
		row.New(12).Add(
			field("Origen", data.FromLocation),
			field("Destino", data.ToLocation),
			field("Asignado a", data.AssignedTo),
			field("Condición", conditionLabels[deref(tx.ConditionOnReturn)]),
		),
	}
	if tx.Remarks != "" {
		rows = append(rows, row.New(14).Add(col.New(12).Add(
			text.New("Observaciones", props.Text{Style: fontstyle.Bold, Size: 7, Color: colorPrimary, Top: 1}),
			text.New(tx.Remarks, props.Text{Size: 8, Top: 6}),
		)))
	}
	return rows
}

// signatureRow: líneas de firma y QR con el ID de la entrada para verificarla contra el libro.
func signatureRow(data ports.ReceiptData) core.Row {
	sign := func(label, who string) core.Col {
		return col.New(4).Add(
			text.New("______________________________", props.Text{Size: 9, Top: 14, Align: align.Center}),
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Top: 20, Align: align.Center}),
			text.New(nonEmpty(who, " "), props.Text{Size: 8, Top: 25, Align: align.Center, Color: colorGray}),
		)
	}
	return row.New(40).Add(
		sign("Registrado por", data.PerformedBy),
		sign("Recibido por", data.AssignedTo),
		col.New(4).Add(code.NewQr(data.Transaction.ID, props.Rect{Percent: 80, Center: true})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// money ej. "$ 1.250,00" según el locale del printer.
func (g *MarotoReceiptGenerator) money(d decimal.Decimal) string {
	return g.printer.Sprintf("$ %.2f", d.InexactFloat64())
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}
