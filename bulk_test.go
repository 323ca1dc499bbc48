package levyreceipt_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nappsnasarawa/levyreceipt"
)

// recordingPacer counts waits and can cancel the batch after a number of them.
type recordingPacer struct {
	mu       sync.Mutex
	waits    int
	cancelAt int
	cancel   context.CancelFunc
}

func (p *recordingPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	p.waits++
	if p.cancel != nil && p.waits == p.cancelAt {
		p.cancel()
	}
	p.mu.Unlock()
	return ctx.Err()
}

type memorySaver struct {
	delay time.Duration
	names []string
	began []time.Time
	ended []time.Time
}

func (s *memorySaver) Save(_ context.Context, name string, _ []byte) error {
	s.began = append(s.began, time.Now())
	time.Sleep(s.delay)
	s.names = append(s.names, name)
	s.ended = append(s.ended, time.Now())
	return nil
}

func payments(numbers ...string) []levyreceipt.PaymentRecord {
	out := make([]levyreceipt.PaymentRecord, len(numbers))
	for i, n := range numbers {
		p := samplePayment()
		p.ReceiptNumber = n
		out[i] = p
	}
	return out
}

func TestRenderAllInOrderWithPause(t *testing.T) {
	const interval = 60 * time.Millisecond
	r := newRenderer(t, levyreceipt.WithBulkInterval(interval))
	// Saving takes longer than the interval; the pause must still follow it.
	saver := &memorySaver{delay: 2 * interval}

	res, err := r.RenderAll(context.Background(), payments("NAPPS-0001", "NAPPS-0002"), saver)
	if err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	want := []string{"NAPPS_Levy_Receipt_NAPPS-0001.pdf", "NAPPS_Levy_Receipt_NAPPS-0002.pdf"}
	if len(saver.names) != 2 || saver.names[0] != want[0] || saver.names[1] != want[1] {
		t.Fatalf("saved %v, want %v", saver.names, want)
	}
	if len(res.Saved) != 2 || res.Total != 2 || len(res.Failures) != 0 {
		t.Errorf("result = %+v", res)
	}
	if gap := saver.began[1].Sub(saver.ended[0]); gap < interval {
		t.Errorf("second save began %v after the first ended, want at least %v", gap, interval)
	}
}

func TestRenderAllWaitsBetweenRecords(t *testing.T) {
	pacer := &recordingPacer{}
	r := newRenderer(t, levyreceipt.WithPacer(pacer))
	if _, err := r.RenderAll(context.Background(), payments("A", "B", "C"), &memorySaver{}); err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	if pacer.waits != 2 {
		t.Errorf("pacer waited %d times, want 2", pacer.waits)
	}
}

func TestRenderAllCollectsFailures(t *testing.T) {
	r := newRenderer(t, levyreceipt.WithPacer(&recordingPacer{}))
	batch := payments("NAPPS-0001", "NAPPS-0002", "NAPPS-0003")
	batch[1].MemberName = ""
	saver := &memorySaver{}

	res, err := r.RenderAll(context.Background(), batch, saver)
	var berr *levyreceipt.BatchError
	if !errors.As(err, &berr) {
		t.Fatalf("expected *BatchError, got %v", err)
	}
	if len(berr.Failures) != 1 || berr.Failures[0].ReceiptNumber != "NAPPS-0002" {
		t.Fatalf("failures = %+v", berr.Failures)
	}
	if !errors.Is(err, levyreceipt.ErrInvalidInput) {
		t.Error("batch error does not unwrap to ErrInvalidInput")
	}
	if len(saver.names) != 2 || len(res.Saved) != 2 {
		t.Errorf("saved %v, result %v", saver.names, res.Saved)
	}
}

func TestRenderAllStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pacer := &recordingPacer{cancelAt: 1, cancel: cancel}
	r := newRenderer(t, levyreceipt.WithPacer(pacer))
	saver := &memorySaver{}

	res, err := r.RenderAll(ctx, payments("A", "B", "C"), saver)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(saver.names) != 1 || len(res.Saved) != 1 {
		t.Errorf("saved %v before cancellation", saver.names)
	}
}

func TestRenderAllCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	saver := &memorySaver{}
	_, err := newRenderer(t).RenderAll(ctx, payments("A"), saver)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(saver.names) != 0 {
		t.Errorf("saved %v after cancellation", saver.names)
	}
}

func TestRenderAllEmpty(t *testing.T) {
	r := newRenderer(t)
	if _, err := r.RenderAll(context.Background(), nil, &memorySaver{}); !errors.Is(err, levyreceipt.ErrNoPayments) {
		t.Fatalf("expected ErrNoPayments, got %v", err)
	}
}
