package levyreceipt

import (
	"fmt"
	"time"

	"github.com/nappsnasarawa/levyreceipt/doctpl"
	"github.com/nappsnasarawa/levyreceipt/fonts"
	"github.com/nappsnasarawa/levyreceipt/table"
)

// Fixed receipt wording.
const (
	AssociationName = "NAPPS Nasarawa State Secretariat"
	AssociationFull = "National Association of Proprietors of Private Schools"
	ReceiptTitle    = "LEVY PAYMENT RECEIPT"
	TotalLabel      = "TOTAL AMOUNT PAID"

	headerTitle  = "NAPPS NASARAWA STATE"
	logoInitials = "NAPPS"
	thankYouLine = "Thank you for your payment!"
	footerNote   = "This receipt is proof of payment of the NAPPS Nasarawa State building levy."
	contactNote  = "For enquiries, contact the NAPPS Nasarawa State Secretariat, Lafia."
)

var (
	brandColor = doctpl.Color{R: 0, G: 104, B: 55}
	panelColor = doctpl.Color{R: 232, G: 245, B: 238}
	labelColor = doctpl.Color{R: 100, G: 100, B: 100}
	textColor  = doctpl.Color{R: 33, G: 33, B: 33}
	whiteColor = doctpl.Color{R: 255, G: 255, B: 255}
	ruleColor  = doctpl.Color{R: 200, G: 200, B: 200}
	markColor  = doctpl.Color{R: 200, G: 60, B: 60}
)

func rgb(c doctpl.Color) *doctpl.Color { return &c }

type field struct {
	label string
	value string
	wrap  bool
}

// receiptLayout lays out one receipt. Every step takes the cursor and
// returns the advanced cursor; steps only append elements to the page under
// construction.
type receiptLayout struct {
	box         pageBox
	m           doctpl.Measurer
	record      PaymentRecord
	paidAt      time.Time
	generatedAt time.Time
	overflow    OverflowPolicy
	logo        bool
	watermark   string
	symbology   string
	code        string

	pages []doctpl.Page
	elems []doctpl.Element
}

func (l *receiptLayout) run() ([]doctpl.Page, error) {
	p := l.record
	y := l.header(0)

	y, err := l.infoBox(y)
	if err != nil {
		return nil, err
	}
	y, err = l.section(y, "Payer Information", []field{
		{label: "Name", value: p.MemberName},
		{label: "Email", value: p.Email},
		{label: "Phone", value: p.Phone},
	})
	if err != nil {
		return nil, err
	}
	y, err = l.section(y, "School Information", []field{
		{label: "School", value: p.SchoolName},
		{label: "Chapter", value: p.Chapter},
		{label: "Wards", value: JoinWards(p.Wards), wrap: true},
	})
	if err != nil {
		return nil, err
	}
	if _, err := l.paymentDetails(y); err != nil {
		return nil, err
	}

	l.finishPage()
	total := len(l.pages)
	for i := range l.pages {
		l.pages[i].Elements = append(l.pages[i].Elements, l.footer(i+1, total)...)
		if l.watermark != "" {
			l.pages[i].Elements = append(l.pages[i].Elements, l.watermarkElement())
		}
	}
	return l.pages, nil
}

func (l *receiptLayout) add(elems ...doctpl.Element) {
	l.elems = append(l.elems, elems...)
}

func (l *receiptLayout) finishPage() {
	l.pages = append(l.pages, doctpl.Page{Elements: l.elems})
	l.elems = nil
}

func font(style string, size float64) *doctpl.Font {
	return &doctpl.Font{Family: fonts.Family, Style: style, Size: size}
}

func (l *receiptLayout) text(x, y, w, h float64, s, align string, f *doctpl.Font, c doctpl.Color) {
	l.add(doctpl.Element{Type: doctpl.TypeCell, X: x, Y: y, W: w, H: h, Text: s, Align: align, Font: f, Color: rgb(c)})
}

func (l *receiptLayout) divider(y float64) {
	b := l.box
	l.add(doctpl.Element{
		Type: doctpl.TypeLine, X: b.Margin, Y: y, X2: b.Margin + b.contentWidth(), Y2: y,
		DrawColor: rgb(ruleColor), LineWidth: 0.3,
	})
}

// ensure returns the cursor at which a block of height h may start. When the
// block would cross into the footer zone it either fails or, when
// paginating, closes the page and continues below a continuation header.
func (l *receiptLayout) ensure(y, h float64, what string) (float64, error) {
	limit := l.box.footerTop()
	if y+h <= limit {
		return y, nil
	}
	if l.overflow != OverflowPaginate {
		return y, fmt.Errorf("%w: %s ends at %.1fmm, footer starts at %.1fmm", ErrOverflow, what, y+h, limit)
	}
	l.finishPage()
	top := l.continuationHeader()
	if top+h > limit {
		return top, fmt.Errorf("%w: %s is %.1fmm tall, taller than a page body", ErrOverflow, what, h)
	}
	return top, nil
}

func (l *receiptLayout) header(y float64) float64 {
	b := l.box
	l.add(doctpl.Element{Type: doctpl.TypeRect, X: 0, Y: y, W: b.Width, H: b.HeaderHeight, FillColor: rgb(brandColor)})

	r := b.LogoRadius
	cx, cy := b.Margin+r, y+b.HeaderHeight/2
	l.add(doctpl.Element{Type: doctpl.TypeCircle, X: cx, Y: cy, R: r, FillColor: rgb(whiteColor)})
	if l.logo {
		l.add(doctpl.Element{Type: doctpl.TypeImage, X: cx - r, Y: cy - r, W: 2 * r, H: 2 * r, Src: logoImageName, Clip: "circle"})
	} else {
		l.text(cx-r, cy-b.LineHeight/2, 2*r, b.LineHeight, logoInitials, "C", font("B", b.BodyFontSize), brandColor)
	}

	titleX := cx + r + b.TitleGap
	titleW := b.Width - titleX - b.Margin
	ty := cy - 1.5*b.LineHeight
	l.text(titleX, ty, titleW, b.LineHeight, headerTitle, "L", font("B", b.TitleFontSize), whiteColor)
	l.text(titleX, ty+b.LineHeight, titleW, b.LineHeight, AssociationFull, "L", font("", b.BodyFontSize), whiteColor)
	l.text(titleX, ty+2*b.LineHeight, titleW, b.LineHeight, ReceiptTitle, "L", font("B", b.SectionFontSize), whiteColor)

	return y + b.HeaderHeight + b.SectionGap
}

// continuationHeader starts a follow-on page and returns its first body cursor.
func (l *receiptLayout) continuationHeader() float64 {
	b := l.box
	l.add(doctpl.Element{Type: doctpl.TypeRect, X: 0, Y: 0, W: b.Width, H: b.ContinuationHeight, FillColor: rgb(brandColor)})
	l.text(b.Margin, (b.ContinuationHeight-b.LineHeight)/2, b.contentWidth(), b.LineHeight,
		ReceiptTitle+" "+l.record.ReceiptNumber+" (continued)", "L", font("B", b.BodyFontSize), whiteColor)
	return b.ContinuationHeight + b.SectionGap
}

func (l *receiptLayout) codeSize() (w, h float64) {
	switch l.symbology {
	case CodeQR:
		return l.box.CodeSize, l.box.CodeSize
	case CodePDF417:
		return 2 * l.box.CodeSize, l.box.CodeSize / 2
	}
	return 0, 0
}

func (l *receiptLayout) infoEntry(x, y, w float64, label, value string) {
	b := l.box
	l.text(x, y, w, b.InfoLabelHeight, label, "L", font("", b.LabelFontSize), labelColor)
	l.text(x, y+b.InfoLabelHeight, w, b.InfoValueHeight, value, "L", font("B", b.BodyFontSize), textColor)
}

func (l *receiptLayout) infoBox(y float64) (float64, error) {
	b := l.box
	y, err := l.ensure(y, b.InfoBoxHeight, "receipt info box")
	if err != nil {
		return y, err
	}
	l.add(doctpl.Element{
		Type: doctpl.TypeRoundRect, X: b.Margin, Y: y, W: b.contentWidth(), H: b.InfoBoxHeight, R: b.InfoBoxRadius,
		FillColor: rgb(panelColor), DrawColor: rgb(brandColor), LineWidth: 0.3,
	})

	pad := b.InfoBoxPadding
	entry := b.InfoLabelHeight + b.InfoValueHeight
	left := b.Margin + pad
	right := b.Margin + b.InfoColumnOffset
	leftW := b.InfoColumnOffset - 2*pad
	rightW := b.contentWidth() - b.InfoColumnOffset - pad

	codeW, codeH := l.codeSize()
	if l.code != "" {
		rightW -= codeW + pad
		l.add(doctpl.Element{
			Type: doctpl.TypeBarcode, X: b.Margin + b.contentWidth() - pad - codeW, Y: y + (b.InfoBoxHeight-codeH)/2,
			W: codeW, H: codeH, Code: l.code, Symbology: l.symbology,
		})
	}

	l.infoEntry(left, y+pad, leftW, "Receipt No.", l.record.ReceiptNumber)
	l.infoEntry(left, y+pad+entry, leftW, "Date", FormatDate(l.paidAt))
	l.infoEntry(right, y+pad, rightW, "Reference", l.record.Reference)
	l.infoEntry(right, y+pad+entry, rightW, "Status", l.record.ReceiptStatus())

	return y + b.InfoBoxHeight + b.SectionGap, nil
}

// sectionTitle keeps the title together with the first row below it.
func (l *receiptLayout) sectionTitle(y float64, title string) (float64, error) {
	b := l.box
	y, err := l.ensure(y, 2*b.LineHeight+b.DividerGap, title)
	if err != nil {
		return y, err
	}
	l.text(b.Margin, y, b.contentWidth(), b.LineHeight, title, "L", font("B", b.SectionFontSize), brandColor)
	l.divider(y + b.LineHeight)
	return y + b.LineHeight + b.DividerGap, nil
}

func (l *receiptLayout) section(y float64, title string, fields []field) (float64, error) {
	y, err := l.sectionTitle(y, title)
	if err != nil {
		return y, err
	}
	for _, f := range fields {
		if y, err = l.fieldRow(y, f); err != nil {
			return y, err
		}
	}
	return y + l.box.SectionGap, nil
}

// wrapValue splits s to the value column width. An empty value still
// occupies one line.
func (l *receiptLayout) wrapValue(s string) []string {
	b := l.box
	l.m.SetFont(fonts.Family, "", b.BodyFontSize)
	lines := l.m.SplitText(s, b.contentWidth()-b.ValueIndent)
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// fieldRow keeps a value together on one page. When paginating, a wrapped
// value taller than a continuation page body is carried over line by line.
func (l *receiptLayout) fieldRow(y float64, f field) (float64, error) {
	b := l.box
	lines := []string{f.value}
	if f.wrap {
		lines = l.wrapValue(f.value)
	}
	h := float64(len(lines)) * b.LineHeight
	if l.overflow == OverflowPaginate && h > l.bodyHeight() {
		return l.splitFieldRow(y, f, lines)
	}
	y, err := l.ensure(y, h, f.label)
	if err != nil {
		return y, err
	}

	l.fieldLabel(y, f.label)
	for i, line := range lines {
		l.fieldLine(y+float64(i)*b.LineHeight, line)
	}
	return y + h, nil
}

func (l *receiptLayout) splitFieldRow(y float64, f field, lines []string) (float64, error) {
	b := l.box
	var err error
	for i, line := range lines {
		top := y
		if y, err = l.ensure(y, b.LineHeight, f.label); err != nil {
			return y, err
		}
		if i == 0 || y != top {
			l.fieldLabel(y, f.label)
		}
		l.fieldLine(y, line)
		y += b.LineHeight
	}
	return y, nil
}

// bodyHeight is the room between a continuation header and the footer.
func (l *receiptLayout) bodyHeight() float64 {
	b := l.box
	return b.footerTop() - b.ContinuationHeight - b.SectionGap
}

func (l *receiptLayout) fieldLabel(y float64, label string) {
	b := l.box
	l.text(b.Margin, y, b.ValueIndent, b.LineHeight, label+":", "L", font("", b.BodyFontSize), labelColor)
}

func (l *receiptLayout) fieldLine(y float64, line string) {
	b := l.box
	l.text(b.Margin+b.ValueIndent, y, b.contentWidth()-b.ValueIndent, b.LineHeight, line, "L", font("", b.BodyFontSize), textColor)
}

func (l *receiptLayout) lineItems() *table.Table {
	b := l.box
	tbl := table.New(l.m, b.Margin, b.contentWidth())
	tbl.SetColumns(table.ColumnDef{}, table.ColumnDef{Width: b.AmountColumnWidth, Align: "R"})
	tbl.SetStyle(table.TableStyle{
		CellFont:   table.FontSpec{Family: fonts.Family, Size: b.BodyFontSize},
		LineHeight: b.LineHeight,
		HeaderStyle: &table.CellStyle{
			Font:      &table.FontSpec{Family: fonts.Family, Style: "B", Size: b.LabelFontSize},
			TextColor: &table.RGBColor{R: labelColor.R, G: labelColor.G, B: labelColor.B},
		},
	})

	head := tbl.AddHeaderRow()
	head.AddCell("Description")
	head.AddCell("Amount")
	for _, item := range l.record.LineItems() {
		row := tbl.AddRow()
		row.AddCell(item.Description)
		row.AddCell(FormatNaira(item.Amount))
	}
	return tbl
}

// lineItemRows places the table row by row so rows can move to a
// continuation page.
func (l *receiptLayout) lineItemRows(tbl *table.Table, y float64) (float64, error) {
	var err error
	for i := 0; i < tbl.RowCount(); i++ {
		h := tbl.RowHeight(i)
		if y, err = l.ensure(y, h, "line item"); err != nil {
			return y, err
		}
		l.add(tbl.LayoutRow(i, y)...)
		y += h
	}

	return y, nil
}

func (l *receiptLayout) paymentDetails(y float64) (float64, error) {
	b := l.box
	y, err := l.sectionTitle(y, "Payment Details")
	if err != nil {
		return y, err
	}

	tbl := l.lineItems()
	if y+tbl.Height() <= b.footerTop() {
		var elems []doctpl.Element
		elems, y = tbl.Layout(y)
		l.add(elems...)
	} else if y, err = l.lineItemRows(tbl, y); err != nil {
		return y, err
	}

	if y, err = l.ensure(y, b.DividerGap+b.TotalBannerHeight, "total banner"); err != nil {
		return y, err
	}
	l.divider(y + b.DividerGap/2)
	y += b.DividerGap

	l.add(doctpl.Element{Type: doctpl.TypeRect, X: b.Margin, Y: y, W: b.contentWidth(), H: b.TotalBannerHeight, FillColor: rgb(brandColor)})
	inset := b.InfoBoxPadding
	innerW := b.contentWidth() - 2*inset
	total := FormatNaira(Total(l.record.LineItems()))
	l.text(b.Margin+inset, y, innerW, b.TotalBannerHeight, TotalLabel, "L", font("B", b.BodyFontSize), whiteColor)
	l.text(b.Margin+inset, y, innerW, b.TotalBannerHeight, total, "R", font("B", b.TotalFontSize), whiteColor)
	y += b.TotalBannerHeight

	if l.record.PaymentMethod != "" {
		return l.fieldRow(y+b.DividerGap, field{label: "Payment Method", value: l.record.PaymentMethod})
	}
	return y, nil
}

// footer is anchored to the page bottom, independent of the body cursor.
func (l *receiptLayout) footer(page, pages int) []doctpl.Element {
	b := l.box
	saved := l.elems
	l.elems = nil
	defer func() { l.elems = saved }()

	x, w, y := b.Margin, b.contentWidth(), b.footerTop()
	l.text(x, y, w, b.LineHeight, thankYouLine, "C", font("B", b.BodyFontSize), brandColor)
	y += b.LineHeight
	l.text(x, y, w, b.LineHeight, footerNote, "C", font("I", b.FooterFontSize), labelColor)
	y += b.LineHeight
	l.text(x, y, w, b.LineHeight, contactNote, "C", font("I", b.FooterFontSize), labelColor)
	y += b.LineHeight
	l.divider(y + b.DividerGap/2)
	y += b.DividerGap

	generated := "Generated on " + FormatGeneratedAt(l.generatedAt)
	if pages > 1 {
		generated += fmt.Sprintf("  |  Page %d of %d", page, pages)
	}
	l.text(x, y, w, b.LineHeight, generated, "C", font("", b.FooterFontSize), labelColor)
	return l.elems
}

func (l *receiptLayout) watermarkElement() doctpl.Element {
	return doctpl.Element{
		Type:    doctpl.TypeWatermark,
		X:       l.box.Width / 2,
		Y:       l.box.Height / 2,
		Text:    l.watermark,
		Font:    font("B", 60),
		Color:   rgb(markColor),
		Opacity: 0.2,
		Angle:   45,
	}
}
