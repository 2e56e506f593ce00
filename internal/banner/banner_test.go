package banner

import (
	"image/color"
	"testing"
)

func TestRenderProducesPrinterWidthCanvas(t *testing.T) {
	img, err := Render("hello printer", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != Width {
		t.Errorf("canvas width %d, want %d", img.Bounds().Dx(), Width)
	}
	if img.Bounds().Dy() <= 0 {
		t.Error("canvas has no height")
	}

	// The text must have left some dark pixels behind.
	dark := 0
	for y := range img.Bounds().Dy() {
		for x := range img.Bounds().Dx() {
			if c := color.GrayModel.Convert(img.At(x, y)).(color.Gray); c.Y < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("rendered banner contains no dark pixels")
	}
}

func TestRenderWrapsLongText(t *testing.T) {
	short, err := Render("hi", Options{})
	if err != nil {
		t.Fatal(err)
	}
	long, err := Render("a reasonably long sentence that cannot possibly fit on a single three hundred and eighty four pixel line", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if long.Bounds().Dy() <= short.Bounds().Dy() {
		t.Errorf("long text (%d px tall) did not wrap past short text (%d px tall)",
			long.Bounds().Dy(), short.Bounds().Dy())
	}
}

func TestRenderRejectsEmptyText(t *testing.T) {
	if _, err := Render("   ", Options{}); err == nil {
		t.Error("expected an error for whitespace-only text")
	}
}

func TestRenderUnknownFont(t *testing.T) {
	if _, err := Render("hi", Options{Font: "comic-sans"}); err == nil {
		t.Error("expected an error for an unknown builtin font")
	}
}

func TestRenderMonoFont(t *testing.T) {
	if _, err := Render("fixed width", Options{Font: "gomono", Size: 16}); err != nil {
		t.Fatal(err)
	}
}
