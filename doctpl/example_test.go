package doctpl_test

import (
	"bytes"
	"fmt"

	"github.com/nappsnasarawa/levyreceipt/doctpl"
)

func ExampleRender() {
	template := `{
		"title": "Levy Receipt NAPPS-0001",
		"author": "NAPPS Nasarawa State Secretariat",
		"pageSize": "A4",
		"font": {"family": "Helvetica", "size": 10},
		"pages": [{
			"elements": [
				{"type": "rect", "x": 0, "y": 0, "w": 210, "h": 50, "fillColor": {"r": 0, "g": 104, "b": 55}},
				{"type": "cell", "x": 58, "y": 21, "w": 130, "h": 7, "text": "LEVY PAYMENT RECEIPT",
				 "font": {"style": "B", "size": 14}, "color": {"r": 255, "g": 255, "b": 255}},
				{"type": "roundrect", "x": 20, "y": 58, "w": 170, "h": 28, "r": 3, "fillColor": {"r": 232, "g": 245, "b": 238}},
				{"type": "cell", "x": 24, "y": 62, "w": 60, "h": 6, "text": "Receipt No. NAPPS-0001"},
				{"type": "barcode", "x": 164, "y": 61, "w": 22, "h": 22, "code": "NAPPS-0001"},
				{"type": "line", "x": 20, "y": 100, "x2": 190, "y2": 100},
				{"type": "cell", "x": 20, "y": 252, "w": 170, "h": 7, "text": "Thank you for your payment!", "align": "C"}
			]
		}]
	}`

	var buf bytes.Buffer
	if err := doctpl.Render(&buf, []byte(template)); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println(bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	// Output: true
}

func ExampleNewEngine() {
	doc := &doctpl.Document{
		Font: &doctpl.Font{Family: "Helvetica", Size: 10},
	}
	// The engine measures text before any page exists.
	pdf := doctpl.NewEngine(doc)
	lines := pdf.SplitText("Lafia East, Lafia North, Akwanga South, Keffi Central", 40)
	doc.Pages = []doctpl.Page{{}}
	for i, line := range lines {
		doc.Pages[0].Elements = append(doc.Pages[0].Elements, doctpl.Element{
			Type: doctpl.TypeCell, X: 75, Y: 150 + float64(i)*7, W: 40, H: 7, Text: line,
		})
	}

	if err := doctpl.Draw(pdf, doc); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(len(lines) > 1, pdf.PageCount())
	// Output: true 1
}
