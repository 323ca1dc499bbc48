package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [payment.json]",
	Short: "Print the positioned elements of a receipt as JSON",
	Long: `Lay out the receipt for one payment record without drawing it and print
the resulting document template. The output can be rendered unchanged by
any doctpl consumer.`,
	Args: cobra.ExactArgs(1),
	RunE: runLayout,
}

func init() {
	rootCmd.AddCommand(layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	payments, err := readPayments(args[0])
	if err != nil {
		return err
	}
	if len(payments) != 1 {
		return fmt.Errorf("%s holds %d payments; layout takes one", args[0], len(payments))
	}
	r, err := newRenderer(cmd)
	if err != nil {
		return err
	}
	doc, err := r.Layout(payments[0])
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), doc)
}
