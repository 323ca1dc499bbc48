// Package fonts embeds the DejaVu Sans Condensed faces used on receipts.
// The PDF core fonts are limited to cp1252, which has no naira sign.
package fonts

import (
	_ "embed"

	"github.com/nappsnasarawa/levyreceipt/doctpl"
)

// Family is the font family name the faces are registered under.
const Family = "DejaVu"

var (
	//go:embed DejaVuSansCondensed.ttf
	regular []byte
	//go:embed DejaVuSansCondensed-Bold.ttf
	bold []byte
	//go:embed DejaVuSansCondensed-Oblique.ttf
	italic []byte
	//go:embed DejaVuSansCondensed-BoldOblique.ttf
	boldItalic []byte
)

// Faces returns the four styles of Family ready for doctpl.Document.Fonts.
func Faces() []doctpl.FontFace {
	return []doctpl.FontFace{
		{Family: Family, Style: "", Data: regular},
		{Family: Family, Style: "B", Data: bold},
		{Family: Family, Style: "I", Data: italic},
		{Family: Family, Style: "BI", Data: boldItalic},
	}
}
