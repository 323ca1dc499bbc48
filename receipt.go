// Package levyreceipt renders NAPPS Nasarawa building levy payments as
// single-page PDF receipts.
//
// A receipt is laid out in one forward pass over an explicit vertical
// cursor, producing a doctpl.Document of absolutely positioned elements.
// The document is then drawn on a fresh fpdf engine and serialised. Building
// the bytes and saving them are separate steps, so a record that fails
// validation, layout or drawing never reaches a Saver.
package levyreceipt

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/nappsnasarawa/levyreceipt/doctpl"
	"github.com/nappsnasarawa/levyreceipt/fonts"
	"github.com/rs/zerolog"
)

const logoImageName = "logo"

// verificationNamespace scopes the name-based receipt IDs.
var verificationNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://nappsnasarawa.org/levy-receipts"))

// Saver persists a finished receipt under name.
type Saver interface {
	Save(ctx context.Context, name string, data []byte) error
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(ctx context.Context, name string, data []byte) error

// Save calls f(ctx, name, data).
func (f SaverFunc) Save(ctx context.Context, name string, data []byte) error {
	return f(ctx, name, data)
}

// Document is a finished receipt.
type Document struct {
	Name          string
	ReceiptNumber string
	Data          []byte
	Pages         int
	GeneratedAt   time.Time
}

// Renderer builds receipts. It is immutable after NewRenderer and safe for
// concurrent use; every build owns its engine and cursor.
type Renderer struct {
	clock     func() time.Time
	geometry  Geometry
	overflow  OverflowPolicy
	symbology string
	verifyURL string
	logo      *doctpl.Image
	watermark string
	log       zerolog.Logger
	interval  time.Duration
	pacer     Pacer
}

// NewRenderer creates a Renderer with the default A4 geometry, a QR
// verification code disabled, and the OverflowFail policy.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		clock:     time.Now,
		geometry:  DefaultGeometry(),
		overflow:  OverflowFail,
		symbology: CodeNone,
		log:       zerolog.Nop(),
		interval:  DefaultBulkInterval,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.geometry.validate(); err != nil {
		return nil, err
	}
	switch r.symbology {
	case "", CodeNone:
		r.symbology = CodeNone
	case CodeQR, CodePDF417:
		if r.verifyURL == "" {
			return nil, fmt.Errorf("%w: a %s verification code needs a base URL", ErrInvalidInput, r.symbology)
		}
		if _, err := url.Parse(r.verifyURL); err != nil {
			return nil, fmt.Errorf("%w: verification URL: %v", ErrInvalidInput, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown verification code %q", ErrInvalidInput, r.symbology)
	}
	if r.overflow != OverflowFail && r.overflow != OverflowPaginate {
		return nil, fmt.Errorf("%w: unknown overflow policy %v", ErrInvalidInput, r.overflow)
	}
	if r.clock == nil {
		r.clock = time.Now
	}
	if r.interval < 0 {
		r.interval = 0
	}
	return r, nil
}

// Layout validates p and returns the positioned elements of its receipt
// without drawing them.
func (r *Renderer) Layout(p PaymentRecord) (*doctpl.Document, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	doc, _, err := r.compose(p, r.clock())
	return doc, err
}

// Build validates, lays out, draws and serialises the receipt for p.
func (r *Renderer) Build(p PaymentRecord) (*Document, error) {
	start := time.Now()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	generatedAt := r.clock()
	doc, pdf, err := r.compose(p, generatedAt)
	if err != nil {
		return nil, err
	}
	if err := doctpl.Draw(pdf, doc); err != nil {
		return nil, newReceiptError("draw", p.ReceiptNumber, fmt.Errorf("%w: %w", ErrEngineFailure, err))
	}
	var buf bytes.Buffer
	if err := doctpl.Output(pdf, &buf); err != nil {
		return nil, newReceiptError("output", p.ReceiptNumber, fmt.Errorf("%w: %w", ErrEngineFailure, err))
	}

	r.log.Debug().
		Str("receipt", p.ReceiptNumber).
		Int("pages", len(doc.Pages)).
		Int("bytes", buf.Len()).
		Dur("took", time.Since(start)).
		Msg("receipt built")

	return &Document{
		Name:          Filename(p.ReceiptNumber),
		ReceiptNumber: p.ReceiptNumber,
		Data:          buf.Bytes(),
		Pages:         len(doc.Pages),
		GeneratedAt:   generatedAt,
	}, nil
}

// Render builds the receipt for p and hands it to saver. The saver is only
// called with a complete document.
func (r *Renderer) Render(ctx context.Context, p PaymentRecord, saver Saver) error {
	doc, err := r.Build(p)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return newReceiptError("save", p.ReceiptNumber, err)
	}
	if err := saver.Save(ctx, doc.Name, doc.Data); err != nil {
		return newReceiptError("save", p.ReceiptNumber, err)
	}
	return nil
}

// compose creates the engine used for measuring and lays out the receipt on it.
func (r *Renderer) compose(p PaymentRecord, generatedAt time.Time) (*doctpl.Document, *fpdf.Fpdf, error) {
	paidAt, err := ParsePaidAt(p.PaidAt)
	if err != nil {
		return nil, nil, newReceiptError("layout", p.ReceiptNumber, fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}

	doc := &doctpl.Document{
		Title:     "NAPPS Levy Receipt " + p.ReceiptNumber,
		Author:    AssociationName,
		Subject:   "Building levy payment receipt",
		Creator:   "levyreceipt",
		Keywords:  strings.Join([]string{p.ReceiptNumber, p.Reference}, " "),
		PageSize:  r.geometry.PageSize,
		Unit:      "mm",
		Font:      &doctpl.Font{Family: fonts.Family, Size: r.geometry.BodyFontSize},
		CreatedAt: generatedAt,
		Fonts:     fonts.Faces(),
	}
	if r.logo != nil {
		doc.Images = []doctpl.Image{*r.logo}
	}

	pdf := doctpl.NewEngine(doc)
	if pdf.Err() {
		return nil, nil, newReceiptError("layout", p.ReceiptNumber, fmt.Errorf("%w: %w", ErrEngineFailure, pdf.Error()))
	}
	w, h := pdf.GetPageSize()
	box := pageBox{Geometry: r.geometry, Width: w, Height: h}
	if err := box.validate(); err != nil {
		return nil, nil, newReceiptError("layout", p.ReceiptNumber, err)
	}

	l := &receiptLayout{
		box:         box,
		m:           pdf,
		record:      p,
		paidAt:      paidAt,
		generatedAt: generatedAt,
		overflow:    r.overflow,
		logo:        r.logo != nil,
		watermark:   r.watermark,
	}
	if r.symbology != CodeNone {
		l.symbology = r.symbology
		l.code = VerificationPayload(r.verifyURL, p)
	}
	pages, err := l.run()
	if err != nil {
		return nil, nil, newReceiptError("layout", p.ReceiptNumber, err)
	}
	doc.Pages = pages
	return doc, pdf, nil
}

// VerificationID is the stable name-based UUID of a receipt.
func VerificationID(p PaymentRecord) uuid.UUID {
	return uuid.NewSHA1(verificationNamespace, []byte(p.ReceiptNumber+"\x00"+p.Reference))
}

// VerificationPayload is the text encoded in the receipt's verification code:
// <baseURL>?receipt=<n>&ref=<r>&id=<uuid>.
func VerificationPayload(baseURL string, p PaymentRecord) string {
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep +
		"receipt=" + url.QueryEscape(p.ReceiptNumber) +
		"&ref=" + url.QueryEscape(p.Reference) +
		"&id=" + VerificationID(p).String()
}
