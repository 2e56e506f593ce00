// Package transcriber turns uploaded audio into text via the OpenAI
// transcription API.
package transcriber

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Transcriber is anything that can turn an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
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
		model = openai.Whisper1
	}
	return &OpenAI{
		client: openai.NewClient(apiKey),
		model:  model,
		log:    log,
	}, nil
}

func (t *OpenAI) Transcribe(ctx context.Context, audioPath string) (string, error) {
	req := openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
	}

	start := time.Now()
	resp, err := t.client.CreateTranscription(ctx, req)
	duration := time.Since(start)

	if err != nil {
		t.log.Error("transcription API call failed",
			"path", audioPath,
			"duration", duration,
			"err", err,
		)
		return "", fmt.Errorf("transcription failed:\n%w", err)
	}

	t.log.Info("transcription completed",
		"path", audioPath,
		"duration", duration,
		"text", resp.Text,
	)
	return resp.Text, nil
}
