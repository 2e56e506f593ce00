// Package banner renders short text onto a printer-width canvas so it can be
// sent through the normal image print path.
package banner

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	// Width matches the printable width of the device.
	Width = 384

	margin = 8
)

// Options selects the typeface and size of a rendered banner.
type Options struct {
	// Font is a builtin font name: "goregular" (default) or "gomono".
	Font string
	// Size is the point size, default 24.
	Size float64
}

func loadFace(opts Options) (font.Face, error) {
	var data []byte
	switch opts.Font {
	case "", "goregular":
		data = goregular.TTF
	case "gomono":
		data = gomono.TTF
	default:
		return nil, fmt.Errorf(`unrecognised builtin font "%s"`, opts.Font)
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse builtin font:\n%w", err)
	}
	size := opts.Size
	if size <= 0 {
		size = 24
	}
	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// wrap breaks text into lines no wider than maxWidth.
func wrap(text string, maxWidth int, face font.Face) []string {
	var lines []string
	words := strings.Fields(text)
	if len(words) == 0 {
		return lines
	}

	var line string
	for _, word := range words {
		testLine := line
		if len(line) > 0 {
			testLine += " "
		}
		testLine += word

		if font.MeasureString(face, testLine).Ceil() > maxWidth && len(line) > 0 {
			lines = append(lines, line)
			line = word
		} else {
			line = testLine
		}
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}
	return lines
}

// Render draws text black-on-white onto a Width-wide canvas tall enough to
// hold every wrapped line. The result feeds straight into the quantizer.
func Render(text string, opts Options) (image.Image, error) {
	face, err := loadFace(opts)
	if err != nil {
		return nil, err
	}

	lines := wrap(text, Width-2*margin, face)
	if len(lines) == 0 {
		return nil, fmt.Errorf("nothing to render")
	}

	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	height := lineHeight*len(lines) + 2*margin

	canvas := image.NewGray(image.Rect(0, 0, Width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	y := margin + metrics.Ascent.Ceil()
	for _, line := range lines {
		d.Dot = fixed.Point26_6{X: fixed.I(margin), Y: fixed.I(y)}
		d.DrawString(line)
		y += lineHeight
	}
	return canvas, nil
}
