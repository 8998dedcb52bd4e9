package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dragyocr/pkg/config"
	"dragyocr/pkg/logger"
	"dragyocr/pkg/pipeline"
	"dragyocr/process/watch"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	dir := flag.String("dir", cfg.WatchDir, "directory to watch for new videos")
	scan := flag.Bool("scan", false, "process videos already in the directory first")
	flag.Parse()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := watch.New(*dir, time.Duration(cfg.WatchDebounceMs)*time.Millisecond, pipeline.NewFromConfig(cfg, log), os.Stdout, log)
	if *scan {
		if err := w.Scan(ctx); err != nil {
			log.Error("initial scan failed", zap.Error(err))
		}
	}
	if err := w.Run(ctx); err != nil {
		log.Error("watch failed", zap.Error(err))
		os.Exit(1)
	}
}
