package pageops

import (
	"fmt"
	"io"
	"os"

	"github.com/nappsnasarawa/levyreceipt/doctpl"
)

// TextWatermark defines a text-based watermark.
type TextWatermark struct {
	Text     string       // watermark text
	FontSize float64      // font size in points (default: 60)
	Color    doctpl.Color // text color (default: light gray)
	Opacity  float64      // 0.0 to 1.0 (default: 0.3)
	Angle    float64      // rotation angle in degrees (default: 45)
}

func (wm TextWatermark) element(pageW, pageH float64) doctpl.Element {
	e := doctpl.Element{
		Type:    doctpl.TypeWatermark,
		X:       pageW / 2,
		Y:       pageH / 2,
		Text:    wm.Text,
		Opacity: wm.Opacity,
		Angle:   wm.Angle,
		Font:    &doctpl.Font{Family: "Helvetica", Style: "B", Size: wm.FontSize},
	}
	if wm.Color != (doctpl.Color{}) {
		c := wm.Color
		e.Color = &c
	}
	return e
}

// Stamp copies every page of src to w with wm drawn across it.
func Stamp(w io.Writer, src io.ReadSeeker, wm TextWatermark) error {
	if wm.Text == "" {
		return fmt.Errorf("pageops: watermark text is empty")
	}
	im := newImporter()
	base := doctpl.Font{Family: "Helvetica", Size: 10}
	_, err := im.appendSource(src, func(pageW, pageH float64) error {
		return doctpl.DrawElements(im.pdf, base, wm.element(pageW, pageH))
	})
	if err != nil {
		return fmt.Errorf("pageops: stamping: %w", err)
	}
	return im.output(w)
}

// StampFile watermarks the PDF at inputPath and writes it to outputPath.
func StampFile(inputPath, outputPath string, wm TextWatermark) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("pageops: opening %s: %w", inputPath, err)
	}
	defer in.Close()
	return writeFile(outputPath, func(w io.Writer) error {
		return Stamp(w, in, wm)
	})
}
