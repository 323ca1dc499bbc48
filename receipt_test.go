package levyreceipt_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/nappsnasarawa/levyreceipt"
	"github.com/nappsnasarawa/levyreceipt/doctpl"
)

var fixedNow = time.Date(2024, 3, 16, 14, 5, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newRenderer(t *testing.T, opts ...levyreceipt.Option) *levyreceipt.Renderer {
	t.Helper()
	r, err := levyreceipt.NewRenderer(append([]levyreceipt.Option{levyreceipt.WithClock(fixedClock)}, opts...)...)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func cellTexts(doc *doctpl.Document) []string {
	var out []string
	for _, page := range doc.Pages {
		for _, e := range page.Elements {
			if e.Type == doctpl.TypeCell {
				out = append(out, e.Text)
			}
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestBuild(t *testing.T) {
	r := newRenderer(t)
	doc, err := r.Build(samplePayment())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if doc.Name != "NAPPS_Levy_Receipt_NAPPS-0001.pdf" {
		t.Errorf("Name = %q", doc.Name)
	}
	if doc.Pages != 1 {
		t.Errorf("Pages = %d, want 1", doc.Pages)
	}
	if !doc.GeneratedAt.Equal(fixedNow) {
		t.Errorf("GeneratedAt = %v", doc.GeneratedAt)
	}
	if !bytes.HasPrefix(doc.Data, []byte("%PDF-")) {
		t.Errorf("output is not a PDF")
	}
}

func TestBuildIsByteIdenticalWithFixedClock(t *testing.T) {
	r := newRenderer(t, levyreceipt.WithVerificationCode(levyreceipt.CodeQR, "https://nappsnasarawa.org/verify"))
	first, err := r.Build(samplePayment())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := r.Build(samplePayment())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Fatal("two builds of the same record differ")
	}
}

func TestLayoutIsIdempotentApartFromTimestamp(t *testing.T) {
	now := fixedNow
	r := newRenderer(t, levyreceipt.WithClock(func() time.Time {
		now = now.Add(time.Minute)
		return now
	}))
	first, err := r.Layout(samplePayment())
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	second, err := r.Layout(samplePayment())
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	a, b := first.Pages[0].Elements, second.Pages[0].Elements
	if len(a) != len(b) {
		t.Fatalf("element counts differ: %d vs %d", len(a), len(b))
	}
	diffs := 0
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			diffs++
			if !strings.HasPrefix(a[i].Text, "Generated on ") {
				t.Errorf("element %d differs: %+v vs %+v", i, a[i], b[i])
			}
		}
	}
	if diffs != 1 {
		t.Errorf("expected only the timestamp to differ, got %d differences", diffs)
	}
}

func TestLayoutContent(t *testing.T) {
	r := newRenderer(t)
	doc, err := r.Layout(samplePayment())
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	texts := cellTexts(doc)
	for _, want := range []string{
		"NAPPS-0001",
		"PSK-7f3a9c21",
		"SUCCESS",
		"March 15, 2024",
		"Lafia East, Lafia North",
		levyreceipt.LevyDescription,
		"₦25,000",
		levyreceipt.TotalLabel,
		"Card",
		"Generated on March 16, 2024 2:05 PM",
	} {
		if !contains(texts, want) {
			t.Errorf("layout has no cell %q", want)
		}
	}
	// Amount appears in the line item and in the total banner.
	n := 0
	for _, s := range texts {
		if s == "₦25,000" {
			n++
		}
	}
	if n != 2 {
		t.Errorf("amount shown %d times, want 2", n)
	}
}

func TestPaymentMethodOmittedWhenEmpty(t *testing.T) {
	r := newRenderer(t)
	p := samplePayment()
	p.PaymentMethod = ""
	doc, err := r.Layout(p)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	withMethod, err := r.Layout(samplePayment())
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	if contains(cellTexts(doc), "Payment Method:") {
		t.Error("payment method label rendered for an empty method")
	}
	// Exactly the label and value cells go away, nothing else.
	if got, want := len(doc.Pages[0].Elements), len(withMethod.Pages[0].Elements)-2; got != want {
		t.Errorf("element count = %d, want %d", got, want)
	}
}

func TestRenderSavesOnce(t *testing.T) {
	r := newRenderer(t)
	var names []string
	saver := levyreceipt.SaverFunc(func(ctx context.Context, name string, data []byte) error {
		names = append(names, name)
		if !bytes.HasPrefix(data, []byte("%PDF-")) {
			t.Errorf("saved data is not a PDF")
		}
		return nil
	})
	if err := r.Render(context.Background(), samplePayment(), saver); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(names) != 1 || names[0] != "NAPPS_Levy_Receipt_NAPPS-0001.pdf" {
		t.Fatalf("saved %v", names)
	}
}

func TestRenderNeverSavesInvalidRecord(t *testing.T) {
	r := newRenderer(t)
	p := samplePayment()
	p.PaidAt = "not a date"
	called := false
	saver := levyreceipt.SaverFunc(func(context.Context, string, []byte) error {
		called = true
		return nil
	})
	err := r.Render(context.Background(), p, saver)
	if !errors.Is(err, levyreceipt.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if called {
		t.Fatal("saver called for an invalid record")
	}
}

func TestRenderWrapsSaverError(t *testing.T) {
	r := newRenderer(t)
	boom := errors.New("disk full")
	err := r.Render(context.Background(), samplePayment(), levyreceipt.SaverFunc(func(context.Context, string, []byte) error {
		return boom
	}))
	var rerr *levyreceipt.ReceiptError
	if !errors.As(err, &rerr) || rerr.Op != "save" || !errors.Is(err, boom) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestEngineFailure(t *testing.T) {
	r := newRenderer(t, levyreceipt.WithLogo(doctpl.Image{Type: "PNG", Data: []byte("not a png")}))
	_, err := r.Build(samplePayment())
	if !errors.Is(err, levyreceipt.ErrEngineFailure) {
		t.Fatalf("expected ErrEngineFailure, got %v", err)
	}
}

func manyWards(n int) []string {
	wards := make([]string, n)
	for i := range wards {
		wards[i] = fmt.Sprintf("Ward %02d", i+1)
	}
	return wards
}

func TestOverflowFails(t *testing.T) {
	r := newRenderer(t)
	p := samplePayment()
	p.Wards = manyWards(80)
	_, err := r.Build(p)
	if !errors.Is(err, levyreceipt.ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestOverflowPaginates(t *testing.T) {
	r := newRenderer(t, levyreceipt.WithOverflowPolicy(levyreceipt.OverflowPaginate))
	p := samplePayment()
	p.Wards = manyWards(80)

	layout, err := r.Layout(p)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(layout.Pages) < 2 {
		t.Fatalf("expected a second page, got %d", len(layout.Pages))
	}
	for i, page := range layout.Pages {
		want := fmt.Sprintf("Generated on March 16, 2024 2:05 PM  |  Page %d of %d", i+1, len(layout.Pages))
		found := false
		for _, e := range page.Elements {
			if e.Text == want {
				found = true
			}
		}
		if !found {
			t.Errorf("page %d has no footer %q", i+1, want)
		}
	}

	doc, err := r.Build(p)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if doc.Pages != len(layout.Pages) {
		t.Errorf("Pages = %d, want %d", doc.Pages, len(layout.Pages))
	}
}

func TestOverflowPaginatesWardsTallerThanAPage(t *testing.T) {
	r := newRenderer(t, levyreceipt.WithOverflowPolicy(levyreceipt.OverflowPaginate))
	p := samplePayment()
	p.Wards = make([]string, 200)
	for i := range p.Wards {
		p.Wards[i] = fmt.Sprintf("Federal Low Cost Housing Estate Ward %03d", i+1)
	}

	doc, err := r.Build(p)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if doc.Pages < 3 {
		t.Errorf("Pages = %d, want the wards spread over at least 3", doc.Pages)
	}
}

func TestVerificationCode(t *testing.T) {
	r := newRenderer(t, levyreceipt.WithVerificationCode(levyreceipt.CodePDF417, "https://nappsnasarawa.org/verify"))
	doc, err := r.Layout(samplePayment())
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	want := levyreceipt.VerificationPayload("https://nappsnasarawa.org/verify", samplePayment())
	found := false
	for _, e := range doc.Pages[0].Elements {
		if e.Type == doctpl.TypeBarcode {
			found = e.Code == want && e.Symbology == levyreceipt.CodePDF417
		}
	}
	if !found {
		t.Fatalf("no PDF417 element carrying %q", want)
	}
	if _, err := r.Build(samplePayment()); err != nil {
		t.Fatalf("Build: %v", err)
	}
}

func TestVerificationPayload(t *testing.T) {
	p := samplePayment()
	got := levyreceipt.VerificationPayload("https://nappsnasarawa.org/verify", p)
	want := "https://nappsnasarawa.org/verify?receipt=NAPPS-0001&ref=PSK-7f3a9c21&id=" + levyreceipt.VerificationID(p).String()
	if got != want {
		t.Fatalf("payload = %q, want %q", got, want)
	}
	if levyreceipt.VerificationID(p) != levyreceipt.VerificationID(samplePayment()) {
		t.Error("verification ID is not stable")
	}
	other := samplePayment()
	other.Reference = "PSK-other"
	if levyreceipt.VerificationID(p) == levyreceipt.VerificationID(other) {
		t.Error("different references share an ID")
	}
}

func TestWatermark(t *testing.T) {
	r := newRenderer(t, levyreceipt.WithWatermark("DUPLICATE"))
	doc, err := r.Layout(samplePayment())
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	elems := doc.Pages[0].Elements
	last := elems[len(elems)-1]
	if last.Type != doctpl.TypeWatermark || last.Text != "DUPLICATE" {
		t.Fatalf("last element = %+v", last)
	}
}

func TestNewRendererRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  levyreceipt.Option
	}{
		{"code without url", levyreceipt.WithVerificationCode(levyreceipt.CodeQR, "")},
		{"unknown code", levyreceipt.WithVerificationCode("aztec", "https://x")},
		{"zero line height", levyreceipt.WithGeometry(func() levyreceipt.Geometry {
			g := levyreceipt.DefaultGeometry()
			g.LineHeight = 0
			return g
		}())},
		{"unknown overflow", levyreceipt.WithOverflowPolicy(levyreceipt.OverflowPolicy(7))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := levyreceipt.NewRenderer(tt.opt); !errors.Is(err, levyreceipt.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestParseOverflowPolicy(t *testing.T) {
	if p, err := levyreceipt.ParseOverflowPolicy("Paginate"); err != nil || p != levyreceipt.OverflowPaginate {
		t.Fatalf("got %v, %v", p, err)
	}
	if p, err := levyreceipt.ParseOverflowPolicy(""); err != nil || p != levyreceipt.OverflowFail {
		t.Fatalf("got %v, %v", p, err)
	}
	if _, err := levyreceipt.ParseOverflowPolicy("shrink"); err == nil {
		t.Fatal("expected an error")
	}
}
