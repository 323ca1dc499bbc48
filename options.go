package levyreceipt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nappsnasarawa/levyreceipt/doctpl"
	"github.com/rs/zerolog"
)

// OverflowPolicy selects what happens when body content would run into the
// footer zone.
type OverflowPolicy int

const (
	// OverflowFail rejects the record with ErrOverflow.
	OverflowFail OverflowPolicy = iota
	// OverflowPaginate continues on a new page under a compact header.
	OverflowPaginate
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowFail:
		return "fail"
	case OverflowPaginate:
		return "paginate"
	default:
		return fmt.Sprintf("OverflowPolicy(%d)", int(p))
	}
}

// ParseOverflowPolicy parses "fail" or "paginate".
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail":
		return OverflowFail, nil
	case "paginate":
		return OverflowPaginate, nil
	}
	return OverflowFail, fmt.Errorf("%w: unknown overflow policy %q", ErrInvalidInput, s)
}

// Verification code symbologies accepted by WithVerificationCode.
const (
	CodeNone   = "none"
	CodeQR     = doctpl.SymbologyQR
	CodePDF417 = doctpl.SymbologyPDF417
)

// DefaultBulkInterval is the pause between consecutive renders in RenderAll.
const DefaultBulkInterval = 500 * time.Millisecond

// Pacer blocks for the pause between two records of a batch. RenderAll
// calls it after each completed record except the last.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Option is a functional option for configuring a Renderer.
type Option func(*Renderer)

// WithClock sets the source of the "Generated on" timestamp.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.clock = now
	}
}

// WithGeometry replaces the default A4 layout measurements.
func WithGeometry(g Geometry) Option {
	return func(r *Renderer) {
		r.geometry = g
	}
}

// WithOverflowPolicy sets how body content crossing into the footer zone is handled.
func WithOverflowPolicy(p OverflowPolicy) Option {
	return func(r *Renderer) {
		r.overflow = p
	}
}

// WithVerificationCode draws a QR or PDF417 code in the info box linking to
// baseURL. CodeNone or an empty symbology disables the code.
func WithVerificationCode(symbology, baseURL string) Option {
	return func(r *Renderer) {
		r.symbology = strings.ToLower(strings.TrimSpace(symbology))
		r.verifyURL = baseURL
	}
}

// WithLogo places img inside the header circle instead of the initials.
func WithLogo(img doctpl.Image) Option {
	return func(r *Renderer) {
		img.Name = logoImageName
		r.logo = &img
	}
}

// WithWatermark stamps text diagonally across every page, e.g. "DUPLICATE".
func WithWatermark(text string) Option {
	return func(r *Renderer) {
		r.watermark = text
	}
}

// WithLogger sets the logger used for build timings and batch failures.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Renderer) {
		r.log = l
	}
}

// WithBulkInterval sets the pause between consecutive renders in RenderAll.
// Zero disables pacing.
func WithBulkInterval(d time.Duration) Option {
	return func(r *Renderer) {
		r.interval = d
	}
}

// WithPacer overrides the pause RenderAll waits on between records.
func WithPacer(p Pacer) Option {
	return func(r *Renderer) {
		r.pacer = p
	}
}
