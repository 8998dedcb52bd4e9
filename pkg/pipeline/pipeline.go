// Package pipeline runs one extraction: frame grab, text recognition, field
// extraction and record assembly.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"dragyocr/pkg/config"
	"dragyocr/pkg/dragy"
	"dragyocr/pkg/frame"
	"dragyocr/pkg/metrics"
	"dragyocr/pkg/ocr"

	"go.uber.org/zap"
)

// Grabber produces the still image analysed for a video.
type Grabber interface {
	Grab(ctx context.Context, videoPath string) (*frame.Grab, error)
}

// ProgressFunc receives coarse progress in percent with a stage name.
type ProgressFunc func(percent int, stage string)

// Option customises a single Run.
type Option func(*runOptions)

type runOptions struct {
	progress ProgressFunc
}

// WithProgress reports stage milestones to fn.
func WithProgress(fn ProgressFunc) Option {
	return func(o *runOptions) { o.progress = fn }
}

// Pipeline wires a frame grabber to a recognizer.
type Pipeline struct {
	grabber    Grabber
	recognizer ocr.Recognizer
	logger     *zap.Logger
}

// New returns a Pipeline. A nil logger discards logs.
func New(grabber Grabber, recognizer ocr.Recognizer, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{grabber: grabber, recognizer: recognizer, logger: logger}
}

// Run extracts a Record from the video at videoPath. Field-level misses are
// not errors; only usage, missing file, frame read and recognition failures
// are returned.
func (p *Pipeline) Run(ctx context.Context, videoPath string, opts ...Option) (rec *dragy.Record, err error) {
	o := runOptions{progress: func(int, string) {}}
	for _, opt := range opts {
		opt(&o)
	}
	log := p.logger.With(zap.String("video", videoPath))
	defer func() {
		outcome := Outcome(err)
		metrics.ExtractionsTotal.WithLabelValues(outcome).Inc()
		if err != nil {
			log.Warn("extraction failed", zap.String("outcome", outcome), zap.Error(err))
			o.progress(100, "failed")
		}
	}()

	if strings.TrimSpace(videoPath) == "" {
		return nil, fmt.Errorf("%w: no video path supplied", ErrUsage)
	}
	if _, err := os.Stat(videoPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, videoPath)
		}
		return nil, fmt.Errorf("stat video: %w", err)
	}
	o.progress(5, "start")

	start := time.Now()
	grab, err := p.grabber.Grab(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	metrics.StageDuration.WithLabelValues("frame").Observe(time.Since(start).Seconds())
	o.progress(15, "frame")

	start = time.Now()
	fragments, err := p.recognizer.Recognize(ctx, grab.Image)
	if err != nil {
		if !errors.Is(err, ErrRecognition) {
			err = fmt.Errorf("%w: %v", ErrRecognition, err)
		}
		return nil, err
	}
	metrics.StageDuration.WithLabelValues("ocr").Observe(time.Since(start).Seconds())
	o.progress(60, "ocr")

	start = time.Now()
	blob := ocr.Blob(fragments)
	o.progress(75, "parsing")
	r := dragy.Assemble(fragments, blob, dragy.ExtractInfo(blob))
	metrics.StageDuration.WithLabelValues("extract").Observe(time.Since(start).Seconds())

	present := r.FieldsPresent()
	for _, f := range present {
		metrics.FieldsExtractedTotal.WithLabelValues(f).Inc()
	}
	log.Info("extraction completed",
		zap.Int("target_frame", grab.Selection.Target),
		zap.Int("fragments", len(fragments)),
		zap.Strings("fields", present),
		zap.Bool("found_100_200_header", r.Debug100200.Found),
	)
	o.progress(100, "done")
	return &r, nil
}

// NewFromConfig builds the production pipeline: ffmpeg frame grabs and a
// Tesseract recognizer.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) *Pipeline {
	src := frame.NewFFmpegSource(cfg.FFmpegPath, cfg.FFprobePath, logger)
	sel := frame.NewSelector(src, cfg.FrameFileName, logger)
	return New(sel, ocr.NewTesseractRecognizer(cfg.OCRLanguage, logger), logger)
}
