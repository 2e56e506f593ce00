package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"tinygo.org/x/bluetooth"

	"github.com/tanmay-maloo/catprint/internal/ble"
	"github.com/tanmay-maloo/catprint/internal/bitmap"
	"github.com/tanmay-maloo/catprint/internal/protocol"
)

type printFlags struct {
	deviceName string
	energy     uint16
	feed       uint8
	invert     bool
	outPath    string
}

func (f *printFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.deviceName, "name", "GB01", "advertised name of the printer")
	cmd.Flags().Uint16Var(&f.energy, "energy", protocol.DefaultEnergy, "thermal energy level")
	cmd.Flags().Uint8Var(&f.feed, "feed", protocol.DefaultFeedAmount, "paper feed after the image")
	cmd.Flags().BoolVar(&f.invert, "invert", false, "swap dark and blank pixels")
	cmd.Flags().StringVarP(&f.outPath, "out", "o", "", "write the encoded job to a file instead of printing")
}

func printCmd() *cobra.Command {
	var flags printFlags

	cmd := &cobra.Command{
		Use:   "print <image>",
		Short: "Print an image over Bluetooth",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("could not open image: %w", err)
			}
			defer f.Close()
			img, err := bitmap.Decode(f)
			if err != nil {
				return fmt.Errorf("could not decode image: %w", err)
			}

			rows, err := bitmap.Quantize(img, bitmap.Options{Invert: flags.invert})
			if err != nil {
				return err
			}
			job := protocol.NewBuilder(
				protocol.WithEnergy(flags.energy),
				protocol.WithFeedAmount(flags.feed),
			).FromRows(rows)

			return deliver(job, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func deliver(job []byte, flags printFlags) error {
	if flags.outPath != "" {
		if err := os.WriteFile(flags.outPath, job, 0o644); err != nil {
			return fmt.Errorf("could not write job: %w", err)
		}
		fmt.Printf("wrote %s (%d bytes)\n", flags.outPath, len(job))
		return nil
	}

	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return fmt.Errorf("could not enable bluetooth adapter: %w", err)
	}
	t, err := ble.Connect(adapter, flags.deviceName, 30*time.Second)
	if err != nil {
		return err
	}
	defer t.Close()
	return t.Send(job)
}
