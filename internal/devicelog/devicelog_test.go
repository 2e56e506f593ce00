package devicelog

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSink(t *testing.T) (*Sink, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "esp32_log.txt")
	sink, err := NewSink(path)
	if err != nil {
		t.Fatal(err)
	}
	return sink, path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	return string(data)
}

func TestSinkWritesTimestampedLines(t *testing.T) {
	sink, path := testSink(t)
	sink.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	if err := sink.WriteText("10.0.0.5:4242", "boot ok"); err != nil {
		t.Fatal(err)
	}
	got := readLog(t, path)
	want := "2025-03-01T12:00:00Z 10.0.0.5:4242 boot ok\n"
	if got != want {
		t.Errorf("log line %q, want %q", got, want)
	}
}

func TestSinkBinaryPreview(t *testing.T) {
	sink, path := testSink(t)
	if err := sink.WriteBinary("addr", []byte{0xDE, 0xAD, 0xBE, 0xEF}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(readLog(t, path), "<binary:deadbeef>") {
		t.Errorf("binary preview missing from log: %q", readLog(t, path))
	}
}

func TestSinkTruncatesLongBinary(t *testing.T) {
	sink, path := testSink(t)
	if err := sink.WriteBinary("addr", make([]byte, 200)); err != nil {
		t.Fatal(err)
	}
	line := readLog(t, path)
	// a 64-byte preview is 128 hex characters; 200 bytes unabridged would be 400
	if len(line) > 200 {
		t.Errorf("binary preview not truncated to 64 bytes: %d chars", len(line))
	}
}

func TestUDPListenerLogsDatagrams(t *testing.T) {
	sink, path := testSink(t)
	l, err := ListenUDP("127.0.0.1:0", sink, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	conn, err := net.Dial("udp", l.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte("temp=42")); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if data, err := os.ReadFile(path); err == nil && strings.Contains(string(data), "temp=42") {
			break
		}
		select {
		case <-deadline:
			t.Fatal("datagram never reached the log file")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop on context cancellation")
	}
}

func TestWSHandlerLogsAndAcks(t *testing.T) {
	sink, path := testSink(t)
	srv := httptest.NewServer(WSHandler(sink, discardLogger()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("hello from esp32")); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, reply, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if string(reply) != "ACK" {
		t.Errorf("reply %q, want ACK", reply)
	}

	if !strings.Contains(readLog(t, path), "hello from esp32") {
		t.Errorf("message missing from log: %q", readLog(t, path))
	}
}
