// SPDX-License-Identifier: MIT
package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"algcore/internal/frame"
)

func newDecodeCommand(global *globalOptions) *cobra.Command {
	var stream string

	decodeCmd := &cobra.Command{
		Use:   "decode HEX...",
		Short: "Decode one raw frame given as hex",
		Example: `  algcore decode --stream eeg 000003e8 0001 0002 0003 0004 0005 0006 0007 0008
  algcore decode --stream aux --byte-order little e8030000640000000000000001000200030019fe`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loaded()
			if err != nil {
				return err
			}

			s, err := parseStream(stream)
			if err != nil {
				return err
			}
			b, err := parseHex(args)
			if err != nil {
				return err
			}

			f, err := frame.Decode(frame.RawFrame{Stream: s, Bytes: b, Order: cfg.Order()})
			if err != nil {
				return err
			}
			printFrame(cmd.OutOrStdout(), cfg.Order(), f)
			return nil
		},
	}

	decodeCmd.Flags().StringVarP(&stream, "stream", "s", "eeg", "Stream the frame arrived on (eeg, aux)")
	return decodeCmd
}

func parseStream(s string) (frame.Stream, error) {
	switch strings.ToLower(s) {
	case "eeg", "0", "stream0":
		return frame.StreamEEG, nil
	case "aux", "pat", "1", "stream1":
		return frame.StreamAux, nil
	default:
		return 0, fmt.Errorf("%w: %q", frame.ErrUnknownStream, s)
	}
}

// parseHex joins args and drops common separators before decoding.
func parseHex(args []string) ([]byte, error) {
	s := strings.Join(args, "")
	s = strings.NewReplacer(" ", "", ":", "", "-", "", "0x", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex frame: %w", err)
	}
	return b, nil
}

func printFrame(w io.Writer, order frame.ByteOrder, f frame.Typed) {
	fmt.Fprintf(w, "stream:      %s\n", f.Stream())
	fmt.Fprintf(w, "byte order:  %s\n", order)

	switch f := f.(type) {
	case frame.EEG:
		fmt.Fprintf(w, "timestamp:   %d\n", f.Timestamp)
		fmt.Fprintf(w, "samples:     %v\n", f.Samples)
		if len(f.Tail) > 0 {
			fmt.Fprintf(w, "tail:        %x\n", f.Tail)
		}
	case frame.PAT:
		fmt.Fprintf(w, "timestamp:   %d\n", f.Timestamp)
		fmt.Fprintf(w, "ir led:      %d\n", f.IRLed)
		fmt.Fprintf(w, "accel:       x=%d y=%d z=%d\n", f.Accel.X, f.Accel.Y, f.Accel.Z)
		fmt.Fprintf(w, "temperature: %d %d\n", f.Temperature[0], f.Temperature[1])
		fmt.Fprintf(w, "reserved:    %x\n", f.Reserved)
	}
}
