package main

import (
	"github.com/nappsnasarawa/levyreceipt/internal/logger"
	"github.com/nappsnasarawa/levyreceipt/pageops"
	"github.com/spf13/cobra"
)

var stampCmd = &cobra.Command{
	Use:     "stamp [input.pdf] [output.pdf]",
	Short:   "Watermark an existing receipt PDF",
	Example: `  levyreceipt stamp NAPPS_Levy_Receipt_NAPPS-0001.pdf copy.pdf --text DUPLICATE`,
	Args:    cobra.ExactArgs(2),
	RunE:    runStamp,
}

func init() {
	rootCmd.AddCommand(stampCmd)

	stampCmd.Flags().String("text", "DUPLICATE", "watermark text")
	stampCmd.Flags().Float64("font-size", 60, "font size in points")
	stampCmd.Flags().Float64("opacity", 0.3, "opacity from 0.0 to 1.0")
	stampCmd.Flags().Float64("angle", 45, "rotation in degrees")
}

func runStamp(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("stamp")

	wm := pageops.TextWatermark{}
	wm.Text, _ = cmd.Flags().GetString("text")
	wm.FontSize, _ = cmd.Flags().GetFloat64("font-size")
	wm.Opacity, _ = cmd.Flags().GetFloat64("opacity")
	wm.Angle, _ = cmd.Flags().GetFloat64("angle")

	if err := pageops.StampFile(args[0], args[1], wm); err != nil {
		return err
	}
	log.Info().Str("input", args[0]).Str("output", args[1]).Str("text", wm.Text).Msg("Receipt stamped")
	return nil
}
