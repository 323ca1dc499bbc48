package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nappsnasarawa/levyreceipt"
	"github.com/nappsnasarawa/levyreceipt/internal/logger"
	"github.com/nappsnasarawa/levyreceipt/pageops"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [payment.json]",
	Short: "Render the receipt for one payment record",
	Long: `Render the receipt for the PaymentRecord in payment.json ("-" reads stdin)
and save it as NAPPS_Levy_Receipt_<receiptNumber>.pdf.`,
	Example: `  levyreceipt render payment.json
  levyreceipt render payment.json --out ./receipts --watermark DUPLICATE`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var renderAllCmd = &cobra.Command{
	Use:   "render-all [payments.json]",
	Short: "Render receipts for every payment in a JSON array",
	Long: `Render receipts one after another, pausing RECEIPT_BULK_INTERVAL between
records. A failing record is reported and the batch continues.`,
	Example: `  levyreceipt render-all payments.json
  levyreceipt render-all payments.json --combined all-receipts.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runRenderAll,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(renderAllCmd)

	for _, c := range []*cobra.Command{renderCmd, renderAllCmd} {
		c.Flags().StringP("out", "o", "", "output directory (default RECEIPT_OUTPUT_DIR)")
	}
	renderAllCmd.Flags().String("combined", "", "also merge every saved receipt into this PDF file")
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runRender(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("render")
	ctx, cancel := signalContext()
	defer cancel()

	payments, err := readPayments(args[0])
	if err != nil {
		return err
	}
	if len(payments) != 1 {
		return fmt.Errorf("%s holds %d payments; use render-all", args[0], len(payments))
	}
	r, err := newRenderer(cmd)
	if err != nil {
		return err
	}
	dir, _ := cmd.Flags().GetString("out")
	saver, dest, err := newSaver(ctx, dir)
	if err != nil {
		return err
	}

	p := payments[0]
	if err := r.Render(ctx, p, saver); err != nil {
		return err
	}
	log.Info().
		Str("receipt", p.ReceiptNumber).
		Str("file", levyreceipt.Filename(p.ReceiptNumber)).
		Str("destination", dest).
		Msg("Receipt saved")
	fmt.Fprintln(cmd.OutOrStdout(), levyreceipt.Filename(p.ReceiptNumber))
	return nil
}

func runRenderAll(cmd *cobra.Command, args []string) error {
	payments, err := readPayments(args[0])
	if err != nil {
		return err
	}
	return renderBatch(cmd, payments)
}

// renderBatch renders payments through RenderAll and optionally merges the
// saved receipts into one file.
func renderBatch(cmd *cobra.Command, payments []levyreceipt.PaymentRecord) error {
	log := logger.WithComponent("render-all")
	ctx, cancel := signalContext()
	defer cancel()

	r, err := newRenderer(cmd)
	if err != nil {
		return err
	}
	dir, _ := cmd.Flags().GetString("out")
	saver, dest, err := newSaver(ctx, dir)
	if err != nil {
		return err
	}

	combined, _ := cmd.Flags().GetString("combined")
	var docs [][]byte
	if combined != "" {
		inner := saver
		saver = levyreceipt.SaverFunc(func(ctx context.Context, name string, data []byte) error {
			if err := inner.Save(ctx, name, data); err != nil {
				return err
			}
			docs = append(docs, data)
			return nil
		})
	}

	res, err := r.RenderAll(ctx, payments, saver)
	var batchErr *levyreceipt.BatchError
	if err != nil && !errors.As(err, &batchErr) {
		return err
	}
	for _, name := range res.Saved {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	log.Info().
		Str("batch", res.ID.String()).
		Int("saved", len(res.Saved)).
		Int("failed", len(res.Failures)).
		Str("destination", dest).
		Msg("Batch finished")

	if combined != "" && len(docs) > 0 {
		merged, mergeErr := pageops.MergeBytes(docs...)
		if mergeErr != nil {
			return fmt.Errorf("merging receipts: %w", mergeErr)
		}
		if mergeErr := os.WriteFile(combined, merged, 0o644); mergeErr != nil {
			return mergeErr
		}
		log.Info().Str("file", combined).Int("receipts", len(docs)).Msg("Combined receipt written")
	}
	return err
}
