package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tanmay-maloo/catprint/internal/bitmap"
	"github.com/tanmay-maloo/catprint/internal/protocol"
)

func visualizeCmd() *cobra.Command {
	var (
		widthBytes int
		invert     bool
	)

	cmd := &cobra.Command{
		Use:   "visualize <raw file>",
		Short: "Render a raw 1-bit buffer as a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVisualize(args[0], widthBytes, invert)
		},
	}
	cmd.Flags().IntVar(&widthBytes, "width-bytes", protocol.RowBytes, "row stride in bytes")
	cmd.Flags().BoolVar(&invert, "invert", false, "render set bits as white instead of black")
	return cmd
}

func runVisualize(path string, widthBytes int, invert bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read raw buffer: %w", err)
	}
	if widthBytes <= 0 {
		return fmt.Errorf("row stride must be positive, got %d", widthBytes)
	}
	rows := len(raw) / widthBytes
	if rows == 0 {
		return fmt.Errorf("buffer of %d bytes holds no complete %d-byte rows", len(raw), widthBytes)
	}
	if rem := len(raw) % widthBytes; rem != 0 {
		fmt.Fprintf(os.Stderr, "warning: ignoring %d trailing bytes\n", rem)
	}

	width := widthBytes * 8
	img := image.NewGray(image.Rect(0, 0, width, rows))
	for y := range rows {
		row := bitmap.UnpackRow(raw[y*widthBytes:(y+1)*widthBytes], width, bitmap.MSBFirst)
		for x, set := range row {
			if set != invert {
				img.SetGray(x, y, color.Gray{Y: 0x00})
			} else {
				img.SetGray(x, y, color.Gray{Y: 0xFF})
			}
		}
	}

	outPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("could not create output: %w", err)
	}
	defer out.Close()
	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("could not encode PNG: %w", err)
	}

	fmt.Printf("wrote %s (%dx%d)\n", outPath, width, rows)
	return nil
}
