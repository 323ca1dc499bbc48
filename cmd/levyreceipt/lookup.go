package main

import (
	"github.com/nappsnasarawa/levyreceipt/internal/logger"
	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [query]",
	Short: "Search the member portal for levy payments",
	Long: `Search PORTAL_BASE_URL for payments matching a receipt number, payment
reference, email or phone. Matches are printed as JSON; with --render their
receipts are rendered as in render-all.`,
	Example: `  levyreceipt lookup NAPPS-0001
  levyreceipt lookup aisha@example.com --render --combined aisha.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().Bool("render", false, "render receipts for the matching payments")
	lookupCmd.Flags().StringP("out", "o", "", "output directory (default RECEIPT_OUTPUT_DIR)")
	lookupCmd.Flags().String("combined", "", "with --render, also merge the receipts into this PDF file")
}

func runLookup(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("lookup")
	ctx, cancel := signalContext()
	defer cancel()

	client, closeFn, err := newPortal(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	records, err := client.Search(ctx, args[0])
	if err != nil {
		return err
	}
	log.Info().Str("query", args[0]).Int("matches", len(records)).Msg("Portal search finished")

	if render, _ := cmd.Flags().GetBool("render"); render && len(records) > 0 {
		return renderBatch(cmd, records)
	}
	return writeJSON(cmd.OutOrStdout(), records)
}
