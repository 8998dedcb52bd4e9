package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"

	"dragyocr/pkg/config"
	"dragyocr/pkg/dragy"
	"dragyocr/pkg/logger"
	"dragyocr/pkg/pipeline"

	"go.uber.org/zap"
)

const usage = "usage: dragy <video_path>"

// runner is the part of the pipeline the CLI needs.
type runner interface {
	Run(ctx context.Context, videoPath string, opts ...pipeline.Option) (*dragy.Record, error)
}

func main() {
	if os.Getenv("LOG_LEVEL") == "" {
		// keep stderr quiet unless asked; stdout carries the record
		_ = os.Setenv("LOG_LEVEL", "warn")
	}
	cfg, err := config.Load()
	if err != nil {
		writeError(os.Stdout, err.Error())
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		writeError(os.Stdout, err.Error())
		os.Exit(1)
	}

	code := run(context.Background(), os.Args[1:], pipeline.NewFromConfig(cfg, log), os.Stdout, log)
	_ = log.Sync()
	os.Exit(code)
}

// run extracts one video and writes a single JSON line to stdout. It returns
// the process exit code.
func run(ctx context.Context, args []string, p runner, stdout io.Writer, log *zap.Logger) int {
	if len(args) < 1 || args[0] == "" {
		writeError(stdout, usage)
		return 1
	}
	rec, err := p.Run(ctx, args[0])
	if err != nil {
		if errors.Is(err, pipeline.ErrUsage) {
			writeError(stdout, usage)
		} else {
			writeError(stdout, err.Error())
		}
		return 1
	}
	if err := json.NewEncoder(stdout).Encode(rec); err != nil {
		log.Error("encode record", zap.Error(err))
		return 1
	}
	return 0
}

func writeError(w io.Writer, msg string) {
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
