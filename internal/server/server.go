// Package server exposes the HTTP surface: audio upload, job status, raw
// row-buffer download and the device-facing debug endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tanmay-maloo/catprint/internal/bitmap"
	"github.com/tanmay-maloo/catprint/internal/devicelog"
	"github.com/tanmay-maloo/catprint/internal/job"
	"github.com/tanmay-maloo/catprint/internal/pipeline"
)

const maxUploadBytes = 32 << 20

type Server struct {
	repo     *job.Repository
	pipeline *pipeline.Pipeline
	sink     *devicelog.Sink
	mediaDir string
	log      *slog.Logger
}

func New(repo *job.Repository, p *pipeline.Pipeline, sink *devicelog.Sink, mediaDir string, log *slog.Logger) *Server {
	return &Server{
		repo:     repo,
		pipeline: p,
		sink:     sink,
		mediaDir: mediaDir,
		log:      log,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/transcribe", s.handleTranscribe)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("/api/test", s.handleTest)
	mux.HandleFunc("GET /api/jobs/{uuid}", s.handleJobStatus)
	mux.HandleFunc("GET /api/jobs/{uuid}/raw", s.handleJobRaw)
	mux.Handle("/ws/esp32", devicelog.WSHandler(s.sink, s.log.With("src", "ws")))
	return mux
}

// audioConfig is the client-supplied metadata accompanying an upload.
type audioConfig struct {
	Encoding          string `json:"encoding"`
	SampleRateHz      int    `json:"sampleRateHz"`
	LanguageCode      string `json:"languageCode"`
	AudioChannelCount int    `json:"audioChannelCount"`
}

func (c *audioConfig) validate() error {
	switch {
	case c.Encoding == "":
		return fmt.Errorf("missing required config field: encoding")
	case c.SampleRateHz <= 0:
		return fmt.Errorf("missing required config field: sampleRateHz")
	case c.LanguageCode == "":
		return fmt.Errorf("missing required config field: languageCode")
	case c.AudioChannelCount <= 0:
		return fmt.Errorf("missing required config field: audioChannelCount")
	}
	return nil
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	configData := r.FormValue("config")
	if configData == "" {
		writeError(w, http.StatusBadRequest, "missing config parameter")
		return
	}
	var cfg audioConfig
	if err := json.Unmarshal([]byte(configData), &cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON in config parameter")
		return
	}
	if err := cfg.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, header, err := r.FormFile("audio_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing audio_file parameter")
		return
	}
	defer file.Close()

	j := job.New(header.Filename, "")
	j.AudioPath = filepath.Join(s.mediaDir, "audio", j.Uuid.String()+filepath.Ext(header.Filename))
	if err := s.saveUpload(j.AudioPath, file); err != nil {
		s.log.Error("couldn't save upload", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to store audio file")
		return
	}

	if err := s.repo.Create(j); err != nil {
		s.log.Error("couldn't create job record", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to record job")
		return
	}

	s.log.Info("received audio upload",
		"uuid", j.Uuid,
		"filename", header.Filename,
		"size", header.Size,
		"encoding", cfg.Encoding,
		"sampleRateHz", cfg.SampleRateHz,
	)

	go s.pipeline.Process(context.Background(), j)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"uuid":   j.Uuid.String(),
		"status": j.Status,
	})
}

func (s *Server) saveUpload(path string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("couldn't create upload directory:\n%w", err)
	}
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("couldn't create %s:\n%w", path, err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("couldn't write %s:\n%w", path, err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "audio processor API is running",
	})
}

// handleTest echoes request details back; embedded clients use it to verify
// their network stack.
func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"method":      r.Method,
		"path":        r.URL.Path,
		"clientIp":    clientIP(r),
		"contentType": r.Header.Get("Content-Type"),
		"queryParams": r.URL.Query(),
	}
	s.log.Info("test endpoint hit",
		"method", r.Method,
		"clientIp", clientIP(r),
		"contentType", r.Header.Get("Content-Type"),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"message":     "test endpoint hit successfully",
		"requestInfo": info,
	})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) *job.Job {
	u, err := uuid.Parse(r.PathValue("uuid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job uuid")
		return nil
	}
	j, err := s.repo.Get(u)
	if err != nil {
		s.log.Error("couldn't read job", "uuid", u, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to read job")
		return nil
	}
	if j == nil {
		writeError(w, http.StatusNotFound, "no such job")
		return nil
	}
	return j
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	j := s.getJob(w, r)
	if j == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"uuid":      j.Uuid.String(),
		"status":    j.Status,
		"text":      j.Text,
		"error":     j.ErrorMessage,
		"createdAt": j.CreatedAt,
		"updatedAt": j.UpdatedAt,
	})
}

// handleJobRaw serves the packed 1-bit buffer for a completed job. Row
// geometry travels in informational headers so the embedded client can size
// its print without parsing the body.
func (s *Server) handleJobRaw(w http.ResponseWriter, r *http.Request) {
	j := s.getJob(w, r)
	if j == nil {
		return
	}
	if j.Status != job.StatusCompleted || j.RawPath == "" {
		writeError(w, http.StatusConflict, fmt.Sprintf("job is %s, not completed", j.Status))
		return
	}

	data, err := os.ReadFile(j.RawPath)
	if err != nil {
		s.log.Error("couldn't read raw buffer", "uuid", j.Uuid, "path", j.RawPath, "err", err)
		writeError(w, http.StatusInternalServerError, "raw buffer unavailable")
		return
	}

	widthBytes := bitmap.DefaultWidth / 8
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("X-Width-Bytes", fmt.Sprintf("%d", widthBytes))
	w.Header().Set("X-Row-Count", fmt.Sprintf("%d", len(data)/widthBytes))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
