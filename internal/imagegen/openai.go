// Package imagegen produces printable line-art images from transcribed text
// via the OpenAI image API.
package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Generator is anything that can turn a text subject into encoded image bytes.
type Generator interface {
	Generate(ctx context.Context, subject string) ([]byte, error)
}

type OpenAI struct {
	client *openai.Client
	model  string
	log    *slog.Logger
}

func NewOpenAI(apiKey, model string, log *slog.Logger) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key required")
	}
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	return &OpenAI{
		client: openai.NewClient(apiKey),
		model:  model,
		log:    log,
	}, nil
}

// prompt frames the subject so the result survives 1-bit quantization: bold
// black outlines on a white background, no shading or grayscale.
func prompt(subject string) string {
	return fmt.Sprintf(
		"A cheerful, kid-friendly cartoon-style pure black line art drawing of %s. "+
			"Subject is large and fills the canvas well, with an expressive face and dynamic pose. "+
			"Bold, clean outlines on a stark white background, resembling a simple coloring book page. "+
			"No grayscale, no shading, no color fill whatsoever.",
		subject)
}

func (g *OpenAI) Generate(ctx context.Context, subject string) ([]byte, error) {
	req := openai.ImageRequest{
		Prompt:         prompt(subject),
		Model:          g.model,
		Size:           openai.CreateImageSize1024x1792,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		N:              1,
	}

	start := time.Now()
	resp, err := g.client.CreateImage(ctx, req)
	duration := time.Since(start)

	if err != nil {
		g.log.Error("image API call failed",
			"subject", subject,
			"duration", duration,
			"err", err,
		)
		return nil, fmt.Errorf("image generation failed:\n%w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("image API returned no data")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("couldn't decode image data:\n%w", err)
	}

	g.log.Info("image generated",
		"subject", subject,
		"duration", duration,
		"bytes", len(data),
	)
	return data, nil
}
