package pdf

import (
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
)

// QuotePDF renders a quote as a PDF file.
func QuotePDF(doc QuoteDoc, theme Theme) ([]byte, error) {
	return generate(quoteView(doc, theme))
}

// InvoicePDF renders an invoice or credit note as a PDF file.
func InvoicePDF(doc InvoiceDoc, theme Theme) ([]byte, error) {
	return generate(invoiceView(doc, theme))
}

// DeliveryNotePDF renders a delivery note as a PDF file.
func DeliveryNotePDF(doc DeliveryNoteDoc, theme Theme) ([]byte, error) {
	return generate(deliveryNoteView(doc, theme))
}

func color(hex string) *props.Color {
	r, g, b := rgb(hex)
	return &props.Color{Red: r, Green: g, Blue: b}
}

var (
	white = &props.Color{Red: 255, Green: 255, Blue: 255}
	muted = &props.Color{Red: 107, Green: 114, Blue: 128}
	zebra = &props.Color{Red: 243, Green: 244, Blue: 246}
)

func generate(v view) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		Build()
	m := maroto.New(cfg)

	primary, accent := color(v.Theme.Primary), color(v.Theme.Accent)
	m.AddRows(headerRows(v, primary, accent)...)
	m.AddRows(partyRows(v)...)
	if v.RAL != "" {
		m.AddRow(8, text.NewCol(12, v.t("doc.ral")+" : "+v.RAL, props.Text{Size: 9, Style: fontstyle.Bold, Top: 2}))
	}
	m.AddRows(lineRows(v, primary, accent)...)
	m.AddRows(totalRows(v, primary, accent)...)

	if v.Notes != "" {
		m.AddRow(12, text.NewCol(12, v.Notes, props.Text{Size: 9, Top: 4}))
	}
	if v.Signature != "" {
		m.AddRow(22, col.New(7), text.NewCol(5, v.Signature, props.Text{Size: 8, Top: 2, Color: muted}))
	}
	for _, line := range v.Footer {
		m.AddRow(5, text.NewCol(12, line, props.Text{Size: 7, Align: align.Center, Color: muted}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate pdf")
	}
	return doc.GetBytes(), nil
}

func headerRows(v view, primary, accent *props.Color) []core.Row {
	title := v.Title + " " + v.t("doc.number") + " " + v.Number
	var rows []core.Row
	switch v.Theme.Template {
	case enums.PDFTemplateModern:
		rows = append(rows, row.New(14).
			Add(text.NewCol(12, title, props.Text{Size: 16, Style: fontstyle.Bold, Color: white, Top: 3, Left: 3})).
			WithStyle(&props.Cell{BackgroundColor: primary}))
	case enums.PDFTemplateMinimal:
		rows = append(rows, text.NewRow(12, title, props.Text{Size: 14, Color: primary, Top: 2}))
	default:
		rows = append(rows,
			text.NewRow(12, title, props.Text{Size: 15, Style: fontstyle.Bold, Color: primary, Top: 2}),
			row.New(1).Add(col.New(12)).WithStyle(&props.Cell{BackgroundColor: accent}),
		)
	}
	if v.Subtitle != "" {
		rows = append(rows, text.NewRow(6, v.Subtitle, props.Text{Size: 9, Top: 1}))
	}
	for _, d := range v.Dates {
		rows = append(rows, text.NewRow(5, d.Label+" : "+d.Value, props.Text{Size: 8}))
	}
	return rows
}

func partyRows(v view) []core.Row {
	left := []string{v.Company.Address, v.Company.Phone, v.Company.Email}
	right := append([]string{v.Client.Contact}, v.Client.Lines...)
	if v.Client.VATNumber != "" {
		right = append(right, v.t("doc.vat_number")+" "+v.Client.VATNumber)
	}
	rows := []core.Row{
		row.New(8).Add(
			text.NewCol(6, v.Company.Name, props.Text{Size: 10, Style: fontstyle.Bold, Top: 3}),
			text.NewCol(6, v.Client.Name, props.Text{Size: 10, Style: fontstyle.Bold, Top: 3}),
		),
	}
	left, right = compact(left), compact(right)
	for i := 0; i < len(left) || i < len(right); i++ {
		rows = append(rows, row.New(4.5).Add(
			text.NewCol(6, at(left, i), props.Text{Size: 8}),
			text.NewCol(6, at(right, i), props.Text{Size: 8}),
		))
	}
	return rows
}

func lineRows(v view, primary, accent *props.Color) []core.Row {
	head := props.Text{Size: 8, Style: fontstyle.Bold, Top: 1.5, Left: 1}
	headNum := head
	headNum.Align = align.Right
	headBg := primary
	switch v.Theme.Template {
	case enums.PDFTemplateModern:
		headBg = accent
		head.Color, headNum.Color = white, white
	case enums.PDFTemplateMinimal:
		headBg = nil
		head.Color, headNum.Color = accent, accent
	default:
		head.Color, headNum.Color = white, white
	}

	designation := 6
	cols := []core.Col{text.NewCol(designation, v.t("doc.designation"), head)}
	if v.ShowPrices {
		cols = append(cols,
			text.NewCol(1, v.t("doc.quantity"), headNum),
			text.NewCol(1, v.t("doc.area"), headNum),
			text.NewCol(2, v.t("doc.unit_price"), headNum),
			text.NewCol(2, v.t("doc.amount"), headNum))
	} else {
		designation = 8
		cols = []core.Col{
			text.NewCol(designation, v.t("doc.designation"), head),
			text.NewCol(2, v.t("doc.quantity"), headNum),
			text.NewCol(2, v.t("doc.area"), headNum),
		}
	}
	header := row.New(7).Add(cols...)
	if headBg != nil {
		header = header.WithStyle(&props.Cell{BackgroundColor: headBg})
	}
	rows := []core.Row{row.New(4).Add(col.New(12)), header}

	cell := props.Text{Size: 8, Top: 1.5, Left: 1}
	num := props.Text{Size: 8, Top: 1.5, Align: align.Right}
	detail := props.Text{Size: 7, Top: 5.5, Left: 1, Color: muted}
	for i, l := range v.Lines {
		height := 7.0
		desc := text.New(l.Designation, cell)
		first := col.New(designation).Add(desc)
		if l.Detail != "" {
			height = 10
			first = col.New(designation).Add(desc, text.New(l.Detail, detail))
		}
		cols := []core.Col{first}
		if v.ShowPrices {
			cols = append(cols,
				text.NewCol(1, l.Quantity, num),
				text.NewCol(1, l.Area, num),
				text.NewCol(2, l.UnitPrice, num),
				text.NewCol(2, l.Amount, num))
		} else {
			cols = append(cols, text.NewCol(2, l.Quantity, num), text.NewCol(2, l.Area, num))
		}
		r := row.New(height).Add(cols...)
		if i%2 == 1 && v.Theme.Template == enums.PDFTemplateModern {
			r = r.WithStyle(&props.Cell{BackgroundColor: zebra})
		}
		rows = append(rows, r)
	}
	return rows
}

func totalRows(v view, primary, accent *props.Color) []core.Row {
	label := props.Text{Size: 9, Top: 1.5}
	value := props.Text{Size: 9, Top: 1.5, Align: align.Right}
	rows := []core.Row{row.New(4).Add(col.New(12))}
	for _, t := range v.Totals {
		rows = append(rows, row.New(6).Add(col.New(6), text.NewCol(3, t.Label, label), text.NewCol(3, t.Value, value)))
	}

	grandLabel := props.Text{Size: 10, Style: fontstyle.Bold, Top: 2, Left: 1}
	grandValue := props.Text{Size: 10, Style: fontstyle.Bold, Top: 2, Align: align.Right}
	var bg *props.Color
	switch v.Theme.Template {
	case enums.PDFTemplateModern:
		grandLabel.Color, grandValue.Color = primary, primary
	case enums.PDFTemplateMinimal:
	default:
		grandLabel.Color, grandValue.Color = white, white
		bg = accent
	}
	grand := row.New(8).Add(col.New(6),
		text.NewCol(3, v.GrandTotal.Label, grandLabel),
		text.NewCol(3, v.GrandTotal.Value, grandValue))
	if bg != nil {
		grand = grand.WithStyle(&props.Cell{BackgroundColor: bg})
	}
	return append(rows, grand)
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
