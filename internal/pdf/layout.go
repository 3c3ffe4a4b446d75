package pdf

import (
	"fmt"

	"github.com/diewo77/crm-documents/i18n"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type palette struct {
	primary props.Color
	stripe  props.Color
}

var (
	proposalPalette = palette{primary: props.Color{Red: 99, Green: 102, Blue: 241}, stripe: props.Color{Red: 245, Green: 245, Blue: 250}}
	invoicePalette  = palette{primary: props.Color{Red: 16, Green: 185, Blue: 129}, stripe: props.Color{Red: 240, Green: 253, Blue: 244}}

	white = props.Color{Red: 255, Green: 255, Blue: 255}
	gray  = props.Color{Red: 107, Green: 114, Blue: 128}
	light = props.Color{Red: 209, Green: 213, Blue: 219}
	dark  = props.Color{Red: 31, Green: 41, Blue: 55}

	badgeColors = map[string]props.Color{
		"draft":     {Red: 156, Green: 163, Blue: 175},
		"sent":      {Red: 59, Green: 130, Blue: 246},
		"paid":      {Red: 16, Green: 185, Blue: 129},
		"overdue":   {Red: 239, Green: 68, Blue: 68},
		"cancelled": {Red: 107, Green: 114, Blue: 128},
	}
)

// Render lays out doc. Sections always come in the same order: heading,
// issuer, client and dates, title, items table, totals, notes, footer.
func Render(doc Document, opts Options) ([]byte, error) {
	lang := opts.Lang
	if !i18n.Supported(lang) {
		lang = i18n.Default
	}
	l := layout{doc: doc, opts: opts, lang: lang, num: newFormatter(lang), colors: proposalPalette}
	if doc.Kind == KindInvoice {
		l.colors = invoicePalette
	}

	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)
	if err := m.RegisterFooter(l.footer()...); err != nil {
		return nil, fmt.Errorf("register footer: %w", err)
	}
	m.AddRows(l.header()...)
	m.AddRows(l.parties()...)
	m.AddRows(l.title()...)
	m.AddRows(l.table()...)
	m.AddRows(l.totals()...)
	m.AddRows(l.notes()...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate %s %s: %w", doc.Kind, doc.Number, err)
	}
	return out.GetBytes(), nil
}

type layout struct {
	doc    Document
	opts   Options
	lang   string
	num    formatter
	colors palette
}

func (l layout) t(code string) string { return i18n.T(l.lang, code) }

func (l layout) header() []core.Row {
	heading := l.t("proposal_heading")
	if l.doc.Kind == KindInvoice {
		heading = l.t("invoice_heading")
	}
	rows := []core.Row{
		row.New(22).Add(
			col.New(8).Add(
				text.New(heading, props.Text{Size: 22, Style: fontstyle.Bold, Color: &l.colors.primary}),
				text.New(l.doc.Number, props.Text{Top: 11, Size: 11, Color: &gray}),
			),
			col.New(4).Add(
				text.New(l.opts.IssuerName, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right, Color: &dark}),
				text.New(l.opts.IssuerTagline, props.Text{Top: 7, Size: 9, Align: align.Right, Color: &gray}),
			),
		),
	}
	if l.doc.Kind == KindInvoice {
		rows = append(rows, l.badge())
	}
	return append(rows, line.NewRow(6, props.Line{Color: &light, Thickness: 0.4}))
}

// badge renders the invoice status as white text on a colored cell.
func (l layout) badge() core.Row {
	bg, ok := badgeColors[l.doc.Status]
	if !ok {
		bg = gray
	}
	label := l.t("status_" + l.doc.Status)
	return row.New(7).Add(
		col.New(9),
		col.New(3).Add(
			text.New(label, props.Text{Top: 1.5, Size: 9, Style: fontstyle.Bold, Align: align.Center, Color: &white}),
		).WithStyle(&props.Cell{BackgroundColor: &bg}),
	)
}

func (l layout) parties() []core.Row {
	client := col.New(7)
	if c := l.doc.Client; c != nil {
		client.Add(
			text.New(l.t("client"), props.Text{Size: 9, Style: fontstyle.Bold, Color: &gray}),
			text.New(c.Name, props.Text{Top: 5, Size: 11, Style: fontstyle.Bold, Color: &dark}),
			text.New(c.Email, props.Text{Top: 11, Size: 9, Color: &gray}),
		)
	}

	issuedLabel, dueLabel := l.t("date"), l.t("valid_until")
	if l.doc.Kind == KindInvoice {
		issuedLabel, dueLabel = l.t("issue_date"), l.t("due_date")
	}
	dates := col.New(5).Add(
		text.New(issuedLabel+" "+i18n.LongDate(l.lang, l.doc.IssuedAt), props.Text{Size: 9, Align: align.Right, Color: &dark}),
	)
	if l.doc.DueAt != nil {
		dates.Add(text.New(dueLabel+" "+i18n.LongDate(l.lang, *l.doc.DueAt), props.Text{Top: 5, Size: 9, Align: align.Right, Color: &dark}))
	}
	return []core.Row{row.New(20).Add(client, dates)}
}

func (l layout) title() []core.Row {
	return []core.Row{
		text.NewRow(12, l.doc.Title, props.Text{Top: 2, Size: 13, Style: fontstyle.Bold, Color: &dark}),
	}
}

func (l layout) table() []core.Row {
	head := props.Text{Top: 2, Size: 9, Style: fontstyle.Bold, Color: &white}
	headRight := head
	headRight.Align = align.Right
	headCenter := head
	headCenter.Align = align.Center

	rows := []core.Row{
		row.New(8).Add(
			text.NewCol(6, l.t("col_description"), head),
			text.NewCol(2, l.t("col_quantity"), headCenter),
			text.NewCol(2, l.t("col_unit_price"), headRight),
			text.NewCol(2, l.t("col_total"), headRight),
		).WithStyle(&props.Cell{BackgroundColor: &l.colors.primary}),
	}

	cell := props.Text{Top: 1.5, Size: 9, Color: &dark}
	right := cell
	right.Align = align.Right
	center := cell
	center.Align = align.Center
	for i, it := range l.doc.Lines {
		r := row.New(7).Add(
			text.NewCol(6, it.Description, cell),
			text.NewCol(2, fmt.Sprintf("%d", it.Quantity), center),
			text.NewCol(2, l.num.money(it.UnitPrice), right),
			text.NewCol(2, l.num.money(it.Total), right),
		)
		if i%2 == 1 {
			r = r.WithStyle(&props.Cell{BackgroundColor: &l.colors.stripe})
		}
		rows = append(rows, r)
	}
	return rows
}

func (l layout) totals() []core.Row {
	label := props.Text{Size: 10, Align: align.Right, Color: &gray}
	value := props.Text{Size: 10, Align: align.Right, Color: &dark}
	entry := func(name, amount string) core.Row {
		return row.New(6).Add(col.New(6), text.NewCol(4, name, label), text.NewCol(2, amount, value))
	}

	rows := []core.Row{row.New(4), entry(l.t("subtotal"), l.num.money(l.doc.Subtotal))}
	if l.doc.Kind == KindInvoice {
		rows = append(rows, entry(fmt.Sprintf("%s (%s):", l.t("tax"), l.num.percent(l.doc.TaxRate)), l.num.money(l.doc.Tax)))
	}
	if !l.doc.Discount.IsZero() {
		rows = append(rows, entry(l.t("discount"), "-"+l.num.money(l.doc.Discount)))
	}
	total := props.Text{Top: 1, Size: 12, Style: fontstyle.Bold, Align: align.Right, Color: &l.colors.primary}
	rows = append(rows,
		line.NewRow(3, props.Line{Color: &light, Thickness: 0.3}),
		row.New(9).Add(col.New(6), text.NewCol(4, l.t("total"), total), text.NewCol(2, l.num.money(l.doc.Total), total)),
	)
	return rows
}

func (l layout) notes() []core.Row {
	if l.doc.Notes == "" {
		return nil
	}
	return []core.Row{
		row.New(6),
		text.NewRow(6, l.t("notes"), props.Text{Size: 10, Style: fontstyle.Bold, Color: &dark}),
		row.New().Add(text.NewCol(12, l.doc.Notes, props.Text{Size: 9, Color: &gray})),
	}
}

func (l layout) footer() []core.Row {
	caption := l.t("footer") + " " + l.opts.IssuerName
	return []core.Row{
		text.NewRow(8, caption, props.Text{Size: 8, Align: align.Center, Color: &gray}),
	}
}
