// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	applog "algcore/internal/log"
	"algcore/internal/signal"
	"algcore/internal/source"
)

func newConvertCommand() *cobra.Command {
	var (
		in, out  string
		columns  []string
		rate     int
		bitDepth int
	)

	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert CSV signal columns into a multi-channel WAV recording",
		Example: `  algcore convert --in night.csv --columns eeg --out eeg.wav
  algcore convert --in night.csv --columns ir --rate 25 --out ir.wav`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			chans := make([][]int32, 0, len(columns))
			for _, col := range columns {
				src, err := csvColumn[int32](in, col)
				if err != nil {
					return err
				}
				chans = append(chans, src.Values())
			}

			if err := source.WriteWAV(out, rate, bitDepth, chans...); err != nil {
				return err
			}
			applog.Infof("Wrote %d channels at %d Hz to %s", len(chans), rate, out)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d channels, %d samples each\n", out, len(chans), len(chans[0]))
			return nil
		},
	}

	flags := convertCmd.Flags()
	flags.StringVarP(&in, "in", "i", "", "CSV file to read")
	flags.StringVarP(&out, "out", "o", "", "WAV file to write")
	flags.StringSliceVar(&columns, "columns", []string{"eeg"},
		"Columns to record, one channel each. Numbers select headerless columns")
	flags.IntVarP(&rate, "rate", "r", int(signal.EEG.Spec().Rate), "Sample rate written to the header, in Hz")
	flags.IntVar(&bitDepth, "bit-depth", 32, "Bits per sample (16 or 32)")
	_ = convertCmd.MarkFlagRequired("in")
	_ = convertCmd.MarkFlagRequired("out")

	return convertCmd
}
