// Package devicelog collects debug messages from embedded clients, arriving
// over UDP datagrams or a WebSocket, into a shared append-only log file.
package devicelog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Sink appends timestamped device messages to a log file. Safe for use from
// multiple listener goroutines.
type Sink struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewSink(path string) (*Sink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("couldn't create log directory:\n%w", err)
		}
	}
	return &Sink{path: path, now: time.Now}, nil
}

// WriteText appends one text message from addr.
func (s *Sink) WriteText(addr, message string) error {
	return s.append(fmt.Sprintf("%s %s %s\n", s.timestamp(), addr, message))
}

// WriteBinary appends a hex preview (first 64 bytes) of a binary message.
func (s *Sink) WriteBinary(addr string, data []byte) error {
	preview := data
	if len(preview) > 64 {
		preview = preview[:64]
	}
	return s.append(fmt.Sprintf("%s %s <binary:%x>\n", s.timestamp(), addr, preview))
}

func (s *Sink) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *Sink) append(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("couldn't open device log:\n%w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("couldn't append to device log:\n%w", err)
	}
	return nil
}
