// Package table lays out rows of text cells as positioned doctpl elements.
//
// Column widths are fixed or shared out of the remaining table width, cell
// text wraps with the engine's font metrics, and styles merge from table to
// alternate row to row to cell. The table never draws by itself; callers
// place the returned elements on a page.
package table

import "github.com/nappsnasarawa/levyreceipt/doctpl"

// RGBColor represents an RGB color value.
type RGBColor struct {
	R, G, B int
}

func (c *RGBColor) color() *doctpl.Color {
	if c == nil {
		return nil
	}
	return &doctpl.Color{R: c.R, G: c.G, B: c.B}
}

// FontSpec defines font properties for text rendering.
type FontSpec struct {
	Family string
	Style  string  // "", "B", "I", "BI"
	Size   float64 // in points
}

func (f *FontSpec) font() *doctpl.Font {
	if f == nil {
		return nil
	}
	return &doctpl.Font{Family: f.Family, Style: f.Style, Size: f.Size}
}

// Padding defines spacing inside a cell.
type Padding struct {
	Top, Right, Bottom, Left float64
}

// UniformPadding creates a Padding with the same value on all sides.
func UniformPadding(v float64) Padding {
	return Padding{Top: v, Right: v, Bottom: v, Left: v}
}

// BorderStyle defines the appearance of cell borders.
type BorderStyle struct {
	Width float64
	Color RGBColor
}

// CellStyle defines the visual appearance of a cell.
type CellStyle struct {
	FillColor *RGBColor
	TextColor *RGBColor
	Font      *FontSpec
	Align     string // "L", "C", "R"
}

// AlternateStyle defines alternating row colors.
type AlternateStyle struct {
	Even CellStyle
	Odd  CellStyle
}

// TableStyle defines the overall appearance of a table.
type TableStyle struct {
	Border        *BorderStyle
	AlternateRows *AlternateStyle
	HeaderStyle   *CellStyle
	CellPadding   Padding
	CellFont      FontSpec // required: used for measuring
	LineHeight    float64  // height of one wrapped text line
}
