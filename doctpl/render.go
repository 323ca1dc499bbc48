package doctpl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/boombuler/barcode/qr"
	"github.com/go-pdf/fpdf"
	fpdfbarcode "github.com/go-pdf/fpdf/contrib/barcode"
)

// ErrInvalidGeometry is returned when an element has a degenerate size.
var ErrInvalidGeometry = errors.New("doctpl: invalid geometry")

// Measurer is the subset of the engine needed to measure text while laying
// out a page. *fpdf.Fpdf satisfies it.
type Measurer interface {
	SetFont(familyStr, styleStr string, size float64)
	SplitText(txt string, w float64) []string
	GetStringWidth(s string) float64
}

var defaultFont = Font{Family: "Helvetica", Style: "", Size: 10}

// Render parses a JSON document and writes the resulting PDF to w.
func Render(w io.Writer, jsonDocument []byte) error {
	var doc Document
	if err := json.Unmarshal(jsonDocument, &doc); err != nil {
		return fmt.Errorf("doctpl: parsing document: %w", err)
	}
	return RenderDocument(w, &doc)
}

// RenderDocument draws doc on a fresh engine and writes the PDF to w.
func RenderDocument(w io.Writer, doc *Document) error {
	pdf := NewEngine(doc)
	if err := Draw(pdf, doc); err != nil {
		return err
	}
	return Output(pdf, w)
}

// NewEngine returns an engine configured for doc: page format, metadata and
// the document's fonts and images registered. No page is added yet, so the
// engine can be used as a Measurer before Draw is called.
func NewEngine(doc *Document) *fpdf.Fpdf {
	pageSize := doc.PageSize
	if pageSize == "" {
		pageSize = "A4"
	}
	unit := doc.Unit
	if unit == "" {
		unit = "mm"
	}

	pdf := fpdf.New("P", unit, pageSize, "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)

	if !doc.CreatedAt.IsZero() {
		pdf.SetCreationDate(doc.CreatedAt)
		pdf.SetModificationDate(doc.CreatedAt)
	}
	if doc.Title != "" {
		pdf.SetTitle(doc.Title, true)
	}
	if doc.Author != "" {
		pdf.SetAuthor(doc.Author, true)
	}
	if doc.Subject != "" {
		pdf.SetSubject(doc.Subject, true)
	}
	if doc.Creator != "" {
		pdf.SetCreator(doc.Creator, true)
	}
	if doc.Keywords != "" {
		pdf.SetKeywords(doc.Keywords, true)
	}

	for _, face := range doc.Fonts {
		pdf.AddUTF8FontFromBytes(face.Family, face.Style, face.Data)
	}
	for _, img := range doc.Images {
		pdf.RegisterImageOptionsReader(img.Name, fpdf.ImageOptions{ImageType: img.Type}, bytes.NewReader(img.Data))
	}

	font := documentFont(doc)
	pdf.SetFont(font.Family, font.Style, font.Size)
	return pdf
}

// Draw adds every page of doc to pdf in order.
func Draw(pdf *fpdf.Fpdf, doc *Document) error {
	if pdf.Err() {
		return fmt.Errorf("doctpl: %w", pdf.Error())
	}
	font := documentFont(doc)

	for pageIdx, page := range doc.Pages {
		pdf.AddPage()
		pdf.SetFont(font.Family, font.Style, font.Size)

		if err := DrawElements(pdf, font, page.Elements...); err != nil {
			return fmt.Errorf("doctpl: page %d %w", pageIdx+1, err)
		}
	}

	// An empty document still needs one page to be a valid PDF.
	if len(doc.Pages) == 0 {
		pdf.AddPage()
	}

	if pdf.Err() {
		return fmt.Errorf("doctpl: %w", pdf.Error())
	}
	return nil
}

// DrawElements draws elems on the current page of pdf. base is the font
// restored after elements that set their own.
func DrawElements(pdf *fpdf.Fpdf, base Font, elems ...Element) error {
	for i, elem := range elems {
		if err := drawElement(pdf, elem, base); err != nil {
			return fmt.Errorf("element %d (%s): %w", i+1, elem.Type, err)
		}
		if pdf.Err() {
			return fmt.Errorf("element %d (%s): %w", i+1, elem.Type, pdf.Error())
		}
	}
	return nil
}

// Output serialises the engine's document to w.
func Output(pdf *fpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("doctpl: writing PDF: %w", err)
	}
	return nil
}

func documentFont(doc *Document) Font {
	font := defaultFont
	if doc.Font != nil {
		if doc.Font.Family != "" {
			font.Family = doc.Font.Family
		}
		if doc.Font.Size > 0 {
			font.Size = doc.Font.Size
		}
		font.Style = doc.Font.Style
	}
	return font
}

func drawElement(pdf *fpdf.Fpdf, elem Element, base Font) error {
	if err := checkGeometry(elem); err != nil {
		return err
	}
	switch elem.Type {
	case TypeCell:
		drawCell(pdf, elem, base)
	case TypeText:
		drawText(pdf, elem, base)
	case TypeRect:
		drawRect(pdf, elem)
	case TypeRoundRect:
		drawRoundRect(pdf, elem)
	case TypeCircle:
		drawCircle(pdf, elem)
	case TypeLine:
		drawLine(pdf, elem)
	case TypeImage:
		drawImage(pdf, elem)
	case TypeBarcode:
		return drawBarcode(pdf, elem)
	case TypeWatermark:
		drawWatermark(pdf, elem, base)
	default:
		return fmt.Errorf("unknown element type %q", elem.Type)
	}
	return nil
}

func checkGeometry(elem Element) error {
	switch elem.Type {
	case TypeRect, TypeRoundRect, TypeBarcode:
		if elem.W <= 0 || elem.H <= 0 {
			return fmt.Errorf("%w: %s needs a positive size, got %gx%g", ErrInvalidGeometry, elem.Type, elem.W, elem.H)
		}
		if elem.R < 0 || elem.R*2 > elem.W || elem.R*2 > elem.H {
			return fmt.Errorf("%w: corner radius %g does not fit %gx%g", ErrInvalidGeometry, elem.R, elem.W, elem.H)
		}
	case TypeCircle:
		if elem.R <= 0 {
			return fmt.Errorf("%w: circle needs a positive radius, got %g", ErrInvalidGeometry, elem.R)
		}
	case TypeCell:
		if elem.W < 0 || elem.H <= 0 {
			return fmt.Errorf("%w: cell needs a positive height, got %gx%g", ErrInvalidGeometry, elem.W, elem.H)
		}
	case TypeImage:
		if elem.W <= 0 && elem.H <= 0 {
			return fmt.Errorf("%w: image needs a width or a height", ErrInvalidGeometry)
		}
	}
	return nil
}

// applyFont sets the element font over base, returning a func that restores base.
func applyFont(pdf *fpdf.Fpdf, f *Font, base Font) func() {
	if f == nil {
		return func() {}
	}
	font := base
	if f.Family != "" {
		font.Family = f.Family
	}
	if f.Size > 0 {
		font.Size = f.Size
	}
	font.Style = f.Style
	pdf.SetFont(font.Family, font.Style, font.Size)
	return func() { pdf.SetFont(base.Family, base.Style, base.Size) }
}

func drawCell(pdf *fpdf.Fpdf, elem Element, base Font) {
	restore := applyFont(pdf, elem.Font, base)
	defer restore()

	if elem.Color != nil {
		pdf.SetTextColor(elem.Color.R, elem.Color.G, elem.Color.B)
		defer pdf.SetTextColor(0, 0, 0)
	}
	fill := false
	if elem.FillColor != nil {
		pdf.SetFillColor(elem.FillColor.R, elem.FillColor.G, elem.FillColor.B)
		fill = true
		defer pdf.SetFillColor(255, 255, 255)
	}
	border := ""
	if elem.Border {
		border = "1"
	}
	align := "L"
	if elem.Align != "" {
		align = strings.ToUpper(elem.Align)
	}

	pdf.SetXY(elem.X, elem.Y)
	pdf.CellFormat(elem.W, elem.H, elem.Text, border, 0, align+"M", fill, 0, "")
}

func drawText(pdf *fpdf.Fpdf, elem Element, base Font) {
	restore := applyFont(pdf, elem.Font, base)
	defer restore()

	if elem.Color != nil {
		pdf.SetTextColor(elem.Color.R, elem.Color.G, elem.Color.B)
		defer pdf.SetTextColor(0, 0, 0)
	}
	x := elem.X
	switch strings.ToUpper(elem.Align) {
	case "C":
		x -= pdf.GetStringWidth(elem.Text) / 2
	case "R":
		x -= pdf.GetStringWidth(elem.Text)
	}
	pdf.Text(x, elem.Y, elem.Text)
}

// paintStyle sets fill and draw colors and returns the fpdf style string.
func paintStyle(pdf *fpdf.Fpdf, elem Element) string {
	style := ""
	if elem.FillColor != nil {
		pdf.SetFillColor(elem.FillColor.R, elem.FillColor.G, elem.FillColor.B)
		style = "F"
	}
	if elem.Border || elem.DrawColor != nil {
		if elem.DrawColor != nil {
			pdf.SetDrawColor(elem.DrawColor.R, elem.DrawColor.G, elem.DrawColor.B)
		}
		if elem.LineWidth > 0 {
			pdf.SetLineWidth(elem.LineWidth)
		}
		style += "D"
	}
	if style == "" {
		style = "D"
	}
	return style
}

func resetPaint(pdf *fpdf.Fpdf) {
	pdf.SetFillColor(255, 255, 255)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
}

func drawRect(pdf *fpdf.Fpdf, elem Element) {
	pdf.Rect(elem.X, elem.Y, elem.W, elem.H, paintStyle(pdf, elem))
	resetPaint(pdf)
}

func drawRoundRect(pdf *fpdf.Fpdf, elem Element) {
	pdf.RoundedRect(elem.X, elem.Y, elem.W, elem.H, elem.R, "1234", paintStyle(pdf, elem))
	resetPaint(pdf)
}

func drawCircle(pdf *fpdf.Fpdf, elem Element) {
	pdf.Circle(elem.X, elem.Y, elem.R, paintStyle(pdf, elem))
	resetPaint(pdf)
}

func drawLine(pdf *fpdf.Fpdf, elem Element) {
	if elem.LineWidth > 0 {
		pdf.SetLineWidth(elem.LineWidth)
	}
	if elem.DrawColor != nil {
		pdf.SetDrawColor(elem.DrawColor.R, elem.DrawColor.G, elem.DrawColor.B)
	}
	pdf.Line(elem.X, elem.Y, elem.X2, elem.Y2)
	resetPaint(pdf)
}

func drawImage(pdf *fpdf.Fpdf, elem Element) {
	if elem.Clip == "circle" {
		r := elem.W / 2
		if elem.H > 0 && elem.H < elem.W {
			r = elem.H / 2
		}
		pdf.ClipCircle(elem.X+elem.W/2, elem.Y+elem.H/2, r, false)
		defer pdf.ClipEnd()
	}
	pdf.ImageOptions(elem.Src, elem.X, elem.Y, elem.W, elem.H, false, fpdf.ImageOptions{}, 0, "")
}

func drawBarcode(pdf *fpdf.Fpdf, elem Element) error {
	if elem.Code == "" {
		return fmt.Errorf("barcode element requires 'code'")
	}
	var key string
	switch strings.ToLower(elem.Symbology) {
	case "", SymbologyQR:
		key = fpdfbarcode.RegisterQR(pdf, elem.Code, qr.M, qr.Auto)
	case SymbologyPDF417:
		key = fpdfbarcode.RegisterPdf417(pdf, elem.Code, 6, 2)
	default:
		return fmt.Errorf("unknown barcode symbology %q", elem.Symbology)
	}
	fpdfbarcode.Barcode(pdf, key, elem.X, elem.Y, elem.W, elem.H, false)
	return nil
}

// drawWatermark renders translucent text rotated around its centre point.
func drawWatermark(pdf *fpdf.Fpdf, elem Element, base Font) {
	font := Font{Family: base.Family, Style: "B", Size: 60}
	if elem.Font != nil {
		font.Style = elem.Font.Style
		if elem.Font.Family != "" {
			font.Family = elem.Font.Family
		}
		if elem.Font.Size > 0 {
			font.Size = elem.Font.Size
		}
	}
	color := Color{R: 200, G: 200, B: 200}
	if elem.Color != nil {
		color = *elem.Color
	}
	opacity := elem.Opacity
	if opacity == 0 {
		opacity = 0.3
	}
	angle := elem.Angle
	if angle == 0 {
		angle = 45
	}

	pdf.SetFont(font.Family, font.Style, font.Size)
	pdf.SetTextColor(color.R, color.G, color.B)
	pdf.SetAlpha(opacity, "Normal")

	textW := pdf.GetStringWidth(elem.Text)
	_, fontH := pdf.GetFontSize()

	pdf.TransformBegin()
	pdf.TransformRotate(angle, elem.X, elem.Y)
	pdf.Text(elem.X-textW/2, elem.Y+fontH/3, elem.Text)
	pdf.TransformEnd()

	pdf.SetAlpha(1.0, "Normal")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(base.Family, base.Style, base.Size)
}
