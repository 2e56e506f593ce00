package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/tanmay-maloo/catprint/internal/bitmap"
	"github.com/tanmay-maloo/catprint/internal/protocol"
)

func reduceCmd() *cobra.Command {
	var (
		width       int
		rows        int
		targetBytes int
		threshold   int
	)

	cmd := &cobra.Command{
		Use:   "reduce <image>",
		Short: "Convert an image to a raw 1-bit buffer for offline use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReduce(args[0], width, rows, targetBytes, threshold)
		},
	}
	cmd.Flags().IntVar(&width, "width", protocol.RowWidth, "output width in pixels")
	cmd.Flags().IntVar(&rows, "rows", 0, "output height in rows (0 keeps aspect ratio)")
	cmd.Flags().IntVar(&targetBytes, "target-bytes", 0, "shrink until the buffer fits this many bytes (0 disables)")
	cmd.Flags().IntVar(&threshold, "threshold", 128, "gray level below which a pixel is dark")
	return cmd
}

func runReduce(path string, width, rows, targetBytes, threshold int) error {
	src, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("could not open image: %w", err)
	}

	if rows == 0 {
		bounds := src.Bounds()
		rows = bounds.Dy() * width / bounds.Dx()
	}

	var resized *image.NRGBA
	for {
		resized = imaging.Resize(src, width, rows, imaging.Lanczos)
		size := rows * ((width + 7) / 8)
		if targetBytes == 0 || size <= targetBytes {
			break
		}
		// Shrink both dimensions by a tenth until the buffer fits.
		width = width * 9 / 10
		rows = rows * 9 / 10
		if width == 0 || rows == 0 {
			return fmt.Errorf("target of %d bytes is too small for any image", targetBytes)
		}
	}

	gray := imaging.Grayscale(resized)
	raw := make([]byte, 0, rows*((width+7)/8))
	preview := image.NewGray(image.Rect(0, 0, width, rows))
	for y := range rows {
		row := make([]bool, width)
		for x := range width {
			dark := gray.NRGBAAt(x, y).R < uint8(threshold)
			row[x] = dark
			if !dark {
				preview.SetGray(x, y, color.Gray{Y: 0xFF})
			}
		}
		raw = append(raw, bitmap.PackRow(row, bitmap.MSBFirst)...)
	}

	base := strings.TrimSuffix(path, filepath.Ext(path))
	if err := os.WriteFile(base+"_reduced.bin", raw, 0o644); err != nil {
		return fmt.Errorf("could not write raw buffer: %w", err)
	}
	out, err := os.Create(base + "_reduced.png")
	if err != nil {
		return fmt.Errorf("could not write preview: %w", err)
	}
	defer out.Close()
	if err := png.Encode(out, preview); err != nil {
		return fmt.Errorf("could not encode preview: %w", err)
	}

	fmt.Printf("wrote %s_reduced.bin (%d bytes, %dx%d)\n", base, len(raw), width, rows)
	return nil
}
