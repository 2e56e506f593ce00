package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/tanmay-maloo/catprint/internal/bitmap"
	"github.com/tanmay-maloo/catprint/internal/job"
)

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return f.text, f.err
}

type fakeGenerator struct {
	data []byte
	err  error
}

func (f *fakeGenerator) Generate(ctx context.Context, subject string) ([]byte, error) {
	return f.data, f.err
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if (x/4+y/4)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testPipeline(t *testing.T, tr *fakeTranscriber, gen *fakeGenerator) (*Pipeline, *job.Repository) {
	t.Helper()
	repo, err := job.Open("file:" + filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { repo.Close() })

	return &Pipeline{
		Repo:        repo,
		Transcriber: tr,
		Generator:   gen,
		MediaDir:    t.TempDir(),
		Log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, repo
}

func TestProcessCompletesJob(t *testing.T) {
	p, repo := testPipeline(t,
		&fakeTranscriber{text: "a dog on a skateboard"},
		&fakeGenerator{data: testPNG(t, 64, 64)},
	)

	j := job.New("note.wav", "note.wav")
	if err := repo.Create(j); err != nil {
		t.Fatal(err)
	}
	p.Process(context.Background(), j)

	got, err := repo.Get(j.Uuid)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != job.StatusCompleted {
		t.Fatalf("job status %q (%s), want completed", got.Status, got.ErrorMessage)
	}
	if got.Text != "a dog on a skateboard" {
		t.Errorf("job text %q", got.Text)
	}

	raw, err := os.ReadFile(got.RawPath)
	if err != nil {
		t.Fatalf("raw buffer not written: %v", err)
	}
	widthBytes := bitmap.DefaultWidth / 8
	if len(raw)%widthBytes != 0 {
		t.Errorf("raw buffer length %d is not a whole number of %d-byte rows", len(raw), widthBytes)
	}
	// 64x64 source at 384 wide keeps its square aspect ratio.
	if len(raw)/widthBytes != 384 {
		t.Errorf("raw buffer holds %d rows, want 384", len(raw)/widthBytes)
	}

	if _, err := os.Stat(got.ImagePath); err != nil {
		t.Errorf("generated image not written: %v", err)
	}
}

func TestProcessRecordsTranscriptionFailure(t *testing.T) {
	p, repo := testPipeline(t,
		&fakeTranscriber{err: fmt.Errorf("api down")},
		&fakeGenerator{},
	)

	j := job.New("note.wav", "note.wav")
	if err := repo.Create(j); err != nil {
		t.Fatal(err)
	}
	p.Process(context.Background(), j)

	got, _ := repo.Get(j.Uuid)
	if got.Status != job.StatusFailed {
		t.Fatalf("job status %q, want failed", got.Status)
	}
	if got.ErrorMessage == "" {
		t.Error("failure left no error message")
	}
}

func TestProcessRecordsBadImage(t *testing.T) {
	p, repo := testPipeline(t,
		&fakeTranscriber{text: "something"},
		&fakeGenerator{data: []byte("not a png")},
	)

	j := job.New("note.wav", "note.wav")
	if err := repo.Create(j); err != nil {
		t.Fatal(err)
	}
	p.Process(context.Background(), j)

	got, _ := repo.Get(j.Uuid)
	if got.Status != job.StatusFailed {
		t.Fatalf("job status %q, want failed", got.Status)
	}
}

func TestProcessRejectsEmptyTranscription(t *testing.T) {
	p, repo := testPipeline(t,
		&fakeTranscriber{text: ""},
		&fakeGenerator{data: testPNG(t, 16, 16)},
	)

	j := job.New("note.wav", "note.wav")
	if err := repo.Create(j); err != nil {
		t.Fatal(err)
	}
	p.Process(context.Background(), j)

	got, _ := repo.Get(j.Uuid)
	if got.Status != job.StatusFailed {
		t.Fatalf("job status %q, want failed", got.Status)
	}
}
