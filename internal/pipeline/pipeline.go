// Package pipeline runs an uploaded voice note through transcription, image
// generation and quantization, recording progress in the job repository.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tanmay-maloo/catprint/internal/bitmap"
	"github.com/tanmay-maloo/catprint/internal/imagegen"
	"github.com/tanmay-maloo/catprint/internal/job"
	"github.com/tanmay-maloo/catprint/internal/transcriber"
)

type Pipeline struct {
	Repo        *job.Repository
	Transcriber transcriber.Transcriber
	Generator   imagegen.Generator
	MediaDir    string
	Bitmap      bitmap.Options
	Log         *slog.Logger
}

// Process runs one job end to end. It is normally invoked in its own
// goroutine per upload; failures are recorded against the job, never
// returned to the HTTP layer that spawned it.
func (p *Pipeline) Process(ctx context.Context, j *job.Job) {
	if err := p.run(ctx, j); err != nil {
		p.Log.Error("pipeline failed",
			"uuid", j.Uuid,
			"err", err,
		)
		if dbErr := p.Repo.SetError(j.Uuid, err.Error()); dbErr != nil {
			p.Log.Error("couldn't record job failure", "uuid", j.Uuid, "err", dbErr)
		}
	}
}

func (p *Pipeline) run(ctx context.Context, j *job.Job) error {
	if err := p.Repo.SetStatus(j.Uuid, job.StatusProcessing); err != nil {
		return err
	}

	text, err := p.Transcriber.Transcribe(ctx, j.AudioPath)
	if err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("transcription produced no text")
	}

	imageData, err := p.Generator.Generate(ctx, text)
	if err != nil {
		return err
	}

	imagePath := filepath.Join(p.MediaDir, "image", j.Uuid.String()+".png")
	if err := writeFile(imagePath, imageData); err != nil {
		return err
	}

	rawPath := filepath.Join(p.MediaDir, "raw", j.Uuid.String()+".bin")
	raw, err := p.rasterize(imageData)
	if err != nil {
		return err
	}
	if err := writeFile(rawPath, raw); err != nil {
		return err
	}

	p.Log.Info("job completed",
		"uuid", j.Uuid,
		"text", text,
		"rawBytes", len(raw),
	)
	return p.Repo.SetResult(j.Uuid, text, imagePath, rawPath)
}

// rasterize decodes the generated image and packs it into the raw 1-bit
// buffer served to the embedded client.
func (p *Pipeline) rasterize(imageData []byte) ([]byte, error) {
	img, err := bitmap.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, err
	}
	rows, err := bitmap.Quantize(img, p.Bitmap)
	if err != nil {
		return nil, err
	}
	return bitmap.Pack(rows, p.Bitmap.Order), nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("couldn't create %s:\n%w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("couldn't write %s:\n%w", path, err)
	}
	return nil
}
