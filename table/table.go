package table

import (
	"github.com/nappsnasarawa/levyreceipt/doctpl"
)

// ColumnDef defines the properties of a table column.
type ColumnDef struct {
	Width    float64 // Fixed width. 0 means auto/fill.
	MinWidth float64 // Minimum width for auto columns.
	MaxWidth float64 // Maximum width for auto columns. 0 means unlimited.
	Align    string  // Default alignment for this column ("L", "C", "R").
}

// Table is a row/column builder that lays out as doctpl elements.
type Table struct {
	m          doctpl.Measurer
	columns    []ColumnDef
	rows       []*Row
	headerRows int
	style      TableStyle
	x          float64
	tableWidth float64
}

// New creates a table whose left edge is at x and whose total width is width.
// m is used to measure wrapped text.
func New(m doctpl.Measurer, x, width float64) *Table {
	return &Table{
		m:          m,
		x:          x,
		tableWidth: width,
		style: TableStyle{
			CellPadding: UniformPadding(1),
			CellFont:    FontSpec{Family: "Helvetica", Size: 10},
			LineHeight:  6,
		},
	}
}

// SetColumns sets column definitions for the table.
func (t *Table) SetColumns(cols ...ColumnDef) *Table {
	t.columns = cols
	return t
}

// SetStyle sets the table-wide style.
func (t *Table) SetStyle(s TableStyle) *Table {
	if s.LineHeight <= 0 {
		s.LineHeight = t.style.LineHeight
	}
	if s.CellFont.Family == "" {
		s.CellFont = t.style.CellFont
	}
	t.style = s
	return t
}

// AddRow adds a new data row to the table and returns it for chaining.
func (t *Table) AddRow() *Row {
	r := &Row{}
	t.rows = append(t.rows, r)
	return r
}

// AddHeaderRow adds a new header row and returns it for chaining.
// Header rows always precede data rows.
func (t *Table) AddHeaderRow() *Row {
	r := &Row{isHeader: true}
	insertIdx := 0
	for i, existing := range t.rows {
		if !existing.isHeader {
			insertIdx = i
			break
		}
		insertIdx = i + 1
	}
	t.rows = append(t.rows, nil)
	copy(t.rows[insertIdx+1:], t.rows[insertIdx:])
	t.rows[insertIdx] = r
	t.headerRows++
	return r
}

// RowCount returns the number of rows, header rows included.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// HeaderRows returns the number of header rows.
func (t *Table) HeaderRows() int {
	return t.headerRows
}

// Height returns the total height of all rows.
func (t *Table) Height() float64 {
	h := 0.0
	for i := range t.rows {
		h += t.RowHeight(i)
	}
	return h
}

// Layout places every row starting at y and returns the elements together
// with the y just below the last row.
func (t *Table) Layout(y float64) ([]doctpl.Element, float64) {
	var elems []doctpl.Element
	for i := range t.rows {
		elems = append(elems, t.LayoutRow(i, y)...)
		y += t.RowHeight(i)
	}
	return elems, y
}

// Widths computes final column widths based on definitions and available space.
func (t *Table) Widths() []float64 {
	numCols := len(t.columns)
	if numCols == 0 {
		if len(t.rows) > 0 {
			numCols = len(t.rows[0].cells)
		}
		if numCols == 0 {
			return nil
		}
		t.columns = make([]ColumnDef, numCols)
	}

	widths := make([]float64, numCols)
	fixedTotal := 0.0
	autoCount := 0

	for i, col := range t.columns {
		if col.Width > 0 {
			widths[i] = col.Width
			fixedTotal += col.Width
		} else {
			autoCount++
		}
	}

	if autoCount > 0 {
		remaining := t.tableWidth - fixedTotal
		if remaining < 0 {
			remaining = 0
		}
		autoWidth := remaining / float64(autoCount)
		for i, col := range t.columns {
			if col.Width == 0 {
				w := autoWidth
				if col.MinWidth > 0 && w < col.MinWidth {
					w = col.MinWidth
				}
				if col.MaxWidth > 0 && w > col.MaxWidth {
					w = col.MaxWidth
				}
				widths[i] = w
			}
		}
	}

	return widths
}

// cellLines wraps the cell text with the cell's effective font. An empty
// text still occupies one line.
func (t *Table) cellLines(cell *Cell, style CellStyle, contentW float64) []string {
	font := t.style.CellFont
	if style.Font != nil {
		font = *style.Font
	}
	t.m.SetFont(font.Family, font.Style, font.Size)
	lines := t.m.SplitText(cell.text, contentW)
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// RowHeight computes the height needed for row i based on its wrapped text.
func (t *Table) RowHeight(i int) float64 {
	r := t.rows[i]
	widths := t.Widths()
	padding := t.style.CellPadding
	maxH := t.style.LineHeight + padding.Top + padding.Bottom
	if r.minH > maxH {
		maxH = r.minH
	}

	for col, cell := range r.cells {
		if col >= len(widths) {
			break
		}
		style := t.resolveCellStyle(cell, r, t.bodyIndex(i))
		contentW := widths[col] - padding.Left - padding.Right
		if contentW < 1 {
			contentW = 1
		}
		lines := t.cellLines(cell, style, contentW)
		cellH := float64(len(lines))*t.style.LineHeight + padding.Top + padding.Bottom
		if cellH > maxH {
			maxH = cellH
		}
	}
	return maxH
}

// bodyIndex returns the position of row i among the data rows, or -1 for a header row.
func (t *Table) bodyIndex(i int) int {
	if t.rows[i].isHeader {
		return -1
	}
	idx := 0
	for j := 0; j < i; j++ {
		if !t.rows[j].isHeader {
			idx++
		}
	}
	return idx
}

// LayoutRow places row i with its top edge at y.
func (t *Table) LayoutRow(i int, y float64) []doctpl.Element {
	r := t.rows[i]
	widths := t.Widths()
	rowH := t.RowHeight(i)
	padding := t.style.CellPadding
	bodyIdx := t.bodyIndex(i)

	var elems []doctpl.Element
	x := t.x
	for col, cell := range r.cells {
		if col >= len(widths) {
			break
		}
		cellW := widths[col]
		style := t.resolveCellStyle(cell, r, bodyIdx)

		if style.FillColor != nil {
			elems = append(elems, doctpl.Element{
				Type: doctpl.TypeRect, X: x, Y: y, W: cellW, H: rowH,
				FillColor: style.FillColor.color(),
			})
		}
		if t.style.Border != nil {
			bc := t.style.Border.Color
			elems = append(elems, doctpl.Element{
				Type: doctpl.TypeRect, X: x, Y: y, W: cellW, H: rowH,
				DrawColor: &doctpl.Color{R: bc.R, G: bc.G, B: bc.B},
				LineWidth: t.style.Border.Width,
			})
		}

		align := "L"
		if style.Align != "" {
			align = style.Align
		} else if col < len(t.columns) && t.columns[col].Align != "" {
			align = t.columns[col].Align
		}

		contentW := cellW - padding.Left - padding.Right
		if contentW < 1 {
			contentW = 1
		}
		font := t.style.CellFont
		if style.Font != nil {
			font = *style.Font
		}
		lineY := y + padding.Top
		for _, line := range t.cellLines(cell, style, contentW) {
			elems = append(elems, doctpl.Element{
				Type:  doctpl.TypeCell,
				X:     x + padding.Left,
				Y:     lineY,
				W:     contentW,
				H:     t.style.LineHeight,
				Text:  line,
				Align: align,
				Font:  font.font(),
				Color: style.TextColor.color(),
			})
			lineY += t.style.LineHeight
		}

		x += cellW
	}
	return elems
}

// resolveCellStyle determines the effective style for a cell by merging
// header, alternate row, row, and cell-level styles.
func (t *Table) resolveCellStyle(cell *Cell, row *Row, bodyIdx int) CellStyle {
	var result CellStyle

	if row.isHeader && t.style.HeaderStyle != nil {
		mergeStyle(&result, t.style.HeaderStyle)
	}

	if !row.isHeader && t.style.AlternateRows != nil && bodyIdx >= 0 {
		if bodyIdx%2 == 0 {
			mergeStyle(&result, &t.style.AlternateRows.Even)
		} else {
			mergeStyle(&result, &t.style.AlternateRows.Odd)
		}
	}

	if row.style != nil {
		mergeStyle(&result, row.style)
	}

	if cell.style != nil {
		mergeStyle(&result, cell.style)
	}

	return result
}

// mergeStyle copies non-nil fields from src to dst.
func mergeStyle(dst, src *CellStyle) {
	if src.FillColor != nil {
		dst.FillColor = src.FillColor
	}
	if src.TextColor != nil {
		dst.TextColor = src.TextColor
	}
	if src.Font != nil {
		dst.Font = src.Font
	}
	if src.Align != "" {
		dst.Align = src.Align
	}
}
