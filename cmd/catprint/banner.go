package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/tanmay-maloo/catprint/internal/banner"
	"github.com/tanmay-maloo/catprint/internal/bitmap"
	"github.com/tanmay-maloo/catprint/internal/protocol"
)

func bannerCmd() *cobra.Command {
	var (
		flags    printFlags
		fontName string
		fontSize float64
	)

	cmd := &cobra.Command{
		Use:   "banner <text>...",
		Short: "Print a line of text over Bluetooth",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := banner.Render(strings.Join(args, " "), banner.Options{
				Font: fontName,
				Size: fontSize,
			})
			if err != nil {
				return err
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
	cmd.Flags().StringVar(&fontName, "font", "goregular", "font to render with (goregular or gomono)")
	cmd.Flags().Float64Var(&fontSize, "size", 24, "font size in points")
	return cmd
}
