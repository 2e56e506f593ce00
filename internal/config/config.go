// Package config loads the server configuration from a TOML file, applying
// defaults for anything left unset.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	UDP     UDPConfig     `toml:"udp"`
	OpenAI  OpenAIConfig  `toml:"openai"`
	Printer PrinterConfig `toml:"printer"`
	Media   MediaConfig   `toml:"media"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type UDPConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

type OpenAIConfig struct {
	// APIKey may be left empty in the file and supplied via the
	// OPENAI_API_KEY environment variable instead.
	APIKey             string `toml:"api_key"`
	TranscriptionModel string `toml:"transcription_model"`
	ImageModel         string `toml:"image_model"`
}

type PrinterConfig struct {
	// Energy is the thermal intensity written at the start of each job.
	Energy uint16 `toml:"energy"`
	// Feed is the paper advance emitted after each job.
	Feed byte `toml:"feed"`
	// Invert flips the dark/light polarity of quantized pixels.
	Invert bool `toml:"invert"`
	// Name is the advertised Bluetooth name used by the print transport.
	Name string `toml:"name"`
}

type MediaConfig struct {
	// Dir is where uploaded audio, generated images and packed row buffers
	// are stored.
	Dir string `toml:"dir"`
	// Database is the sqlite file tracking job records.
	Database string `toml:"database"`
	// DeviceLog is the file UDP and WebSocket device messages are appended to.
	DeviceLog string `toml:"device_log"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		UDP:    UDPConfig{Enabled: true, Addr: ":12345"},
		OpenAI: OpenAIConfig{
			TranscriptionModel: "whisper-1",
			ImageModel:         "dall-e-3",
		},
		Printer: PrinterConfig{
			Energy: 0xFFFF,
			Feed:   25,
			Name:   "GB01",
		},
		Media: MediaConfig{
			Dir:       "media",
			Database:  "app.db",
			DeviceLog: "esp32_log.txt",
		},
	}
}

// Load reads path into a Config on top of the defaults. A missing file is not
// an error: the defaults are returned so the server can run without any
// configuration at all.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	return cfg, nil
}
