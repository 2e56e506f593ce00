package bitmap

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makeworld-the-better-one/dither/v2"
	"golang.org/x/image/draw"
)

// RowStream yields the 1-bit rows of a quantized image top to bottom. It is
// finite and not restartable: once Next reports false the stream is spent.
type RowStream struct {
	img     *image.Paletted
	darkIdx uint8
	invert  bool
	width   int
	height  int
	y       int
}

// Width is the pixel width of every emitted row.
func (s *RowStream) Width() int { return s.width }

// Height is the total number of rows the stream emits.
func (s *RowStream) Height() int { return s.height }

// Next returns the next pixel row, or ok == false once all rows have been
// emitted. A true pixel is printable.
func (s *RowStream) Next() ([]bool, bool) {
	if s.y >= s.height {
		return nil, false
	}
	row := make([]bool, s.width)
	for x := range row {
		dark := s.img.ColorIndexAt(x, s.y) == s.darkIdx
		row[x] = dark != s.invert
	}
	s.y++
	return row, true
}

// Quantize converts src into a stream of 1-bit rows at the configured output
// width: scale preserving aspect ratio, convert to luminance, then
// Floyd-Steinberg dither down to two levels. The stream emits exactly
// round(srcHeight * width / srcWidth) rows (at least one), each exactly width
// pixels wide.
func Quantize(src image.Image, opts Options) (*RowStream, error) {
	srcW, srcH := src.Bounds().Dx(), src.Bounds().Dy()
	if srcW <= 0 || srcH <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidImage, srcW, srcH)
	}

	width := opts.width()
	height := int(math.Round(float64(srcH) * float64(width) / float64(srcW)))
	if height < 1 {
		height = 1
	}

	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Over, nil)

	gray := image.NewGray(scaled.Bounds())
	draw.Draw(gray, gray.Bounds(), scaled, image.Point{}, draw.Src)

	palette := []color.Color{color.Black, color.White}
	ditherer := dither.NewDitherer(palette)
	ditherer.Matrix = dither.FloydSteinberg
	dithered := ditherer.DitherPaletted(gray)

	// The ditherer keeps the palette in the order given, but resolve the dark
	// index from the palette itself rather than assuming.
	darkIdx := uint8(dithered.Palette.Index(color.Black))

	return &RowStream{
		img:     dithered,
		darkIdx: darkIdx,
		invert:  opts.Invert,
		width:   width,
		height:  height,
	}, nil
}

// Decode reads and decodes an image, mapping decode failures to
// ErrInvalidImage.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}
