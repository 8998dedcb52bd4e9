// Package config loads process settings from the environment, after an
// optional .env file.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds settings shared by the CLI, the HTTP API and watch mode.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPAddr    string `env:"HTTP_ADDR"     envDefault:":8081"`
	JWTSecret   string `env:"JWT_SECRET"`
	UploadDir   string `env:"UPLOAD_DIR"    envDefault:"uploads"`
	MaxUploadMB int64  `env:"MAX_UPLOAD_MB" envDefault:"200"`

	FFmpegPath    string `env:"FFMPEG_PATH"     envDefault:"ffmpeg"`
	FFprobePath   string `env:"FFPROBE_PATH"    envDefault:"ffprobe"`
	OCRLanguage   string `env:"OCR_LANGUAGE"    envDefault:"eng"`
	FrameFileName string `env:"FRAME_FILE_NAME" envDefault:"last_frame_extracted.png"`

	WatchDir        string `env:"WATCH_DIR"         envDefault:"incoming"`
	WatchDebounceMs int    `env:"WATCH_DEBOUNCE_MS" envDefault:"300"`
}

// Load reads ./.env (if present) and then parses the environment.
func Load() (*Config, error) {
	loadDotEnv(".env")
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}
	return cfg, nil
}

// loadDotEnv loads key=value pairs from path into the environment without
// overwriting variables that are already set. Lines starting with # are ignored.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if eq := strings.IndexByte(line, '='); eq > 0 {
			key := strings.TrimSpace(line[:eq])
			val := strings.TrimSpace(line[eq+1:])
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
	}
}
