// Package doctpl describes a PDF as pages of absolutely positioned elements
// and draws that description onto the fpdf engine.
//
// Every element carries its own coordinates in document units (mm by
// default), so a layout computed elsewhere can be inspected, serialised to
// JSON and replayed without re-running the layout.
//
// Example JSON:
//
//	{
//	  "title": "Receipt",
//	  "pageSize": "A4",
//	  "pages": [{
//	    "elements": [
//	      {"type": "rect", "x": 0, "y": 0, "w": 210, "h": 50, "fillColor": {"r": 0, "g": 102, "b": 51}},
//	      {"type": "cell", "x": 20, "y": 60, "w": 170, "h": 7, "text": "Hello"}
//	    ]
//	  }]
//	}
package doctpl

import "time"

// Element types understood by Draw.
const (
	TypeCell      = "cell"      // text inside a box anchored at its top-left corner
	TypeText      = "text"      // text drawn on a baseline
	TypeRect      = "rect"      // rectangle
	TypeRoundRect = "roundrect" // rectangle with rounded corners
	TypeCircle    = "circle"    // circle centred on X, Y
	TypeLine      = "line"      // line from X, Y to X2, Y2
	TypeImage     = "image"     // registered image, optionally clipped to a circle
	TypeBarcode   = "barcode"   // QR or PDF417 code
	TypeWatermark = "watermark" // rotated translucent text centred on X, Y
)

// Barcode symbologies.
const (
	SymbologyQR     = "qr"
	SymbologyPDF417 = "pdf417"
)

// Document is the top-level description of an entire PDF.
type Document struct {
	Title     string    `json:"title,omitempty"`
	Author    string    `json:"author,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Creator   string    `json:"creator,omitempty"`
	Keywords  string    `json:"keywords,omitempty"`
	PageSize  string    `json:"pageSize,omitempty"` // A4, A5, Letter, Legal (default: A4)
	Unit      string    `json:"unit,omitempty"`     // mm, cm, in, pt (default: mm)
	Font      *Font     `json:"font,omitempty"`     // default font at the start of every page
	CreatedAt time.Time `json:"createdAt,omitempty"`
	Pages     []Page    `json:"pages"`

	// Fonts and Images are registered with the engine before drawing. They
	// are not part of the JSON form.
	Fonts  []FontFace `json:"-"`
	Images []Image    `json:"-"`
}

// FontFace is a UTF-8 TrueType face registered under Family and Style.
type FontFace struct {
	Family string
	Style  string // "", "B", "I", "BI"
	Data   []byte
}

// Image is raster data registered under Name and referenced by image elements.
type Image struct {
	Name string
	Type string // PNG, JPG, GIF
	Data []byte
}

// Font specifies a font face.
type Font struct {
	Family string  `json:"family"`
	Style  string  `json:"style"` // "" (regular), "B" (bold), "I" (italic), "BI"
	Size   float64 `json:"size"`
}

// Color is an RGB color.
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Page holds the elements of one page in drawing order.
type Page struct {
	Elements []Element `json:"elements"`
}

// Element is a single visual element within a page.
// The Type field determines which other fields are relevant.
type Element struct {
	Type string `json:"type"`

	// Geometry
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	W  float64 `json:"w,omitempty"`
	H  float64 `json:"h,omitempty"`
	R  float64 `json:"r,omitempty"`  // circle radius, rounded corner radius
	X2 float64 `json:"x2,omitempty"` // line end
	Y2 float64 `json:"y2,omitempty"`

	// Text (cell, text, watermark)
	Text  string `json:"text,omitempty"`
	Align string `json:"align,omitempty"` // L, C, R (default: L)
	Font  *Font  `json:"font,omitempty"`
	Color *Color `json:"color,omitempty"`

	// Painting
	FillColor *Color  `json:"fillColor,omitempty"`
	DrawColor *Color  `json:"drawColor,omitempty"`
	LineWidth float64 `json:"lineWidth,omitempty"`
	Border    bool    `json:"border,omitempty"`

	// Image
	Src  string `json:"src,omitempty"`  // registered image name
	Clip string `json:"clip,omitempty"` // "circle" clips the image to the inscribed circle

	// Barcode
	Code      string `json:"code,omitempty"`
	Symbology string `json:"symbology,omitempty"`

	// Watermark
	Angle   float64 `json:"angle,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
}
