// Package job persists the lifecycle of transcription/print jobs.
package job

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job tracks one audio upload from receipt through transcription, image
// generation and raw-buffer output.
type Job struct {
	Uuid          uuid.UUID
	AudioFilename string
	AudioPath     string
	Status        Status
	Text          string
	ImagePath     string
	RawPath       string
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func New(audioFilename, audioPath string) *Job {
	now := time.Now().UTC()
	return &Job{
		Uuid:          uuid.New(),
		AudioFilename: audioFilename,
		AudioPath:     audioPath,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
