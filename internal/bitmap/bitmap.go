// Package bitmap converts arbitrary raster images into the 1-bit pixel rows
// the printer protocol consumes, and packs or unpacks the raw row buffers
// exchanged with embedded clients.
package bitmap

import "errors"

// ErrInvalidImage is returned when a source image cannot be decoded or has a
// non-positive dimension.
var ErrInvalidImage = errors.New("bitmap: invalid source image")

// BitOrder selects which end of each byte holds the leftmost pixel of its
// 8-pixel group.
type BitOrder int

const (
	// LSBFirst is the printer-native order: bit 0 is the leftmost pixel.
	LSBFirst BitOrder = iota
	// MSBFirst is the order used by the offline inspection tools.
	MSBFirst
)

// Options configures quantization and packing.
type Options struct {
	// Width is the output width in pixels. Zero means DefaultWidth.
	Width int
	// Order is the bit order used when packing rows.
	Order BitOrder
	// Invert flips the dark/light polarity of emitted pixels. The firmware
	// treats a set bit as printable; some transport paths expect the
	// opposite.
	Invert bool
}

// DefaultWidth is the printable width of the device in pixels.
const DefaultWidth = 384

func (o Options) width() int {
	if o.Width <= 0 {
		return DefaultWidth
	}
	return o.Width
}
