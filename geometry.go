package levyreceipt

import "fmt"

// Geometry holds every measurement the receipt layout is derived from.
// Lengths are in millimetres, font sizes in points.
type Geometry struct {
	PageSize string

	Margin       float64
	HeaderHeight float64
	SectionGap   float64
	LineHeight   float64
	ValueIndent  float64
	DividerGap   float64
	FooterOffset float64

	LogoRadius float64
	TitleGap   float64

	InfoBoxHeight    float64
	InfoBoxRadius    float64
	InfoBoxPadding   float64
	InfoColumnOffset float64
	InfoLabelHeight  float64
	InfoValueHeight  float64
	CodeSize         float64

	AmountColumnWidth  float64
	TotalBannerHeight  float64
	ContinuationHeight float64

	BodyFontSize    float64
	LabelFontSize   float64
	SectionFontSize float64
	TitleFontSize   float64
	TotalFontSize   float64
	FooterFontSize  float64
}

// DefaultGeometry is the A4 receipt layout.
func DefaultGeometry() Geometry {
	return Geometry{
		PageSize: "A4",

		Margin:       20,
		HeaderHeight: 50,
		SectionGap:   8,
		LineHeight:   7,
		ValueIndent:  55,
		DividerGap:   3,
		FooterOffset: 45,

		LogoRadius: 15,
		TitleGap:   8,

		InfoBoxHeight:    28,
		InfoBoxRadius:    3,
		InfoBoxPadding:   4,
		InfoColumnOffset: 70,
		InfoLabelHeight:  4,
		InfoValueHeight:  6,
		CodeSize:         22,

		AmountColumnWidth:  45,
		TotalBannerHeight:  12,
		ContinuationHeight: 20,

		BodyFontSize:    10,
		LabelFontSize:   8,
		SectionFontSize: 12,
		TitleFontSize:   16,
		TotalFontSize:   14,
		FooterFontSize:  8,
	}
}

func (g Geometry) validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"Margin", g.Margin},
		{"HeaderHeight", g.HeaderHeight},
		{"LineHeight", g.LineHeight},
		{"ValueIndent", g.ValueIndent},
		{"FooterOffset", g.FooterOffset},
		{"LogoRadius", g.LogoRadius},
		{"InfoBoxHeight", g.InfoBoxHeight},
		{"InfoColumnOffset", g.InfoColumnOffset},
		{"InfoLabelHeight", g.InfoLabelHeight},
		{"InfoValueHeight", g.InfoValueHeight},
		{"CodeSize", g.CodeSize},
		{"AmountColumnWidth", g.AmountColumnWidth},
		{"TotalBannerHeight", g.TotalBannerHeight},
		{"ContinuationHeight", g.ContinuationHeight},
		{"BodyFontSize", g.BodyFontSize},
		{"LabelFontSize", g.LabelFontSize},
		{"SectionFontSize", g.SectionFontSize},
		{"TitleFontSize", g.TitleFontSize},
		{"TotalFontSize", g.TotalFontSize},
		{"FooterFontSize", g.FooterFontSize},
	}
	for _, f := range positive {
		if f.v <= 0 {
			return fmt.Errorf("%w: geometry %s must be positive, got %g", ErrInvalidInput, f.name, f.v)
		}
	}
	if g.PageSize == "" {
		return fmt.Errorf("%w: geometry PageSize is empty", ErrInvalidInput)
	}
	if g.LogoRadius*2 > g.HeaderHeight {
		return fmt.Errorf("%w: logo diameter %g exceeds header height %g", ErrInvalidInput, g.LogoRadius*2, g.HeaderHeight)
	}
	if g.InfoBoxRadius*2 > g.InfoBoxHeight {
		return fmt.Errorf("%w: info box radius %g too large", ErrInvalidInput, g.InfoBoxRadius)
	}
	if need := 2 * (g.InfoLabelHeight + g.InfoValueHeight); need+g.InfoBoxPadding*2 > g.InfoBoxHeight {
		return fmt.Errorf("%w: info box height %g cannot hold two entries of %g", ErrInvalidInput, g.InfoBoxHeight, need/2)
	}
	if g.CodeSize > g.InfoBoxHeight-g.InfoBoxPadding {
		return fmt.Errorf("%w: code size %g does not fit the info box", ErrInvalidInput, g.CodeSize)
	}
	return nil
}

// pageBox is the engine-reported page size together with the geometry.
type pageBox struct {
	Geometry
	Width, Height float64
}

func (b pageBox) contentWidth() float64 { return b.Width - 2*b.Margin }

func (b pageBox) footerTop() float64 { return b.Height - b.FooterOffset }

func (b pageBox) validate() error {
	if b.contentWidth() <= b.ValueIndent {
		return fmt.Errorf("%w: page width %g leaves no room for values", ErrInvalidInput, b.Width)
	}
	if b.contentWidth() <= b.InfoColumnOffset+b.CodeSize {
		return fmt.Errorf("%w: page width %g cannot hold the info box columns", ErrInvalidInput, b.Width)
	}
	if b.footerTop() <= b.HeaderHeight+b.SectionGap {
		return fmt.Errorf("%w: page height %g leaves no body area", ErrInvalidInput, b.Height)
	}
	return nil
}
