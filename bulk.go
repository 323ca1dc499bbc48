package levyreceipt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BatchResult summarises a RenderAll run.
type BatchResult struct {
	ID       uuid.UUID
	Total    int
	Saved    []string
	Failures []*ReceiptError
}

// pause is the default Pacer: every Wait blocks for the full interval.
type pause time.Duration

func (p pause) Wait(ctx context.Context) error {
	if p <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(time.Duration(p))
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RenderAll renders payments one after another in input order, pausing
// after every completed record except the last. A failing record is collected and the batch
// moves on; the returned error is then a *BatchError naming every failure.
// Cancelling ctx stops the batch before the next record.
func (r *Renderer) RenderAll(ctx context.Context, payments []PaymentRecord, saver Saver) (*BatchResult, error) {
	if len(payments) == 0 {
		return nil, ErrNoPayments
	}
	pacer := r.pacer
	if pacer == nil {
		pacer = pause(r.interval)
	}

	res := &BatchResult{ID: uuid.New(), Total: len(payments)}
	log := r.log.With().Str("batch", res.ID.String()).Logger()
	log.Info().Int("payments", len(payments)).Msg("batch started")

	for i, p := range payments {
		if i > 0 {
			if err := pacer.Wait(ctx); err != nil {
				return res, fmt.Errorf("levyreceipt: batch stopped after %d of %d receipts: %w", i, len(payments), err)
			}
		}
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("levyreceipt: batch stopped after %d of %d receipts: %w", i, len(payments), err)
		}
		if err := r.Render(ctx, p, saver); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, fmt.Errorf("levyreceipt: batch stopped after %d of %d receipts: %w", i, len(payments), ctxErr)
			}
			var rerr *ReceiptError
			if !errors.As(err, &rerr) {
				rerr = newReceiptError("render", p.ReceiptNumber, err)
			}
			res.Failures = append(res.Failures, rerr)
			log.Warn().Err(err).Int("index", i).Str("receipt", p.ReceiptNumber).Msg("receipt failed")
			continue
		}
		res.Saved = append(res.Saved, Filename(p.ReceiptNumber))
	}

	log.Info().Int("saved", len(res.Saved)).Int("failed", len(res.Failures)).Msg("batch finished")
	if len(res.Failures) > 0 {
		return res, &BatchError{Failures: res.Failures}
	}
	return res, nil
}
