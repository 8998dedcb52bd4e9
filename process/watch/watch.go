// Package watch extracts records from videos dropped into a directory.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"dragyocr/pkg/dragy"
	"dragyocr/pkg/pipeline"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Runner extracts a record from one video.
type Runner interface {
	Run(ctx context.Context, videoPath string, opts ...pipeline.Option) (*dragy.Record, error)
}

// Line is one JSON line written per processed video.
type Line struct {
	File   string        `json:"file"`
	Record *dragy.Record `json:"record,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Watcher processes new videos in dir one at a time.
type Watcher struct {
	dir      string
	debounce time.Duration
	runner   Runner
	logger   *zap.Logger

	mu  sync.Mutex
	out io.Writer
}

// New returns a Watcher writing result lines to out. Files are processed once
// they have not changed for the debounce interval.
func New(dir string, debounce time.Duration, runner Runner, out io.Writer, logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{dir: dir, debounce: debounce, runner: runner, out: out, logger: logger}
}

// IsSupportedVideo reports whether name looks like a video the extractor can
// take.
func IsSupportedVideo(name string) bool {
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4", ".mov", ".mkv", ".3gp", ".avi", ".mpg", ".mpeg":
		return true
	}
	return false
}

// Scan processes the videos already present in the directory, in name order.
func (w *Watcher) Scan(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !IsSupportedVideo(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.ProcessFile(ctx, filepath.Join(w.dir, name))
	}
	return nil
}

// ProcessFile extracts one video and writes its result line.
func (w *Watcher) ProcessFile(ctx context.Context, path string) Line {
	line := Line{File: filepath.Base(path)}
	rec, err := w.runner.Run(ctx, path)
	if err != nil {
		line.Error = err.Error()
	} else {
		line.Record = rec
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := json.NewEncoder(w.out).Encode(line); err != nil {
		w.logger.Error("write result line", zap.String("file", line.File), zap.Error(err))
	}
	return line
}

// Run watches the directory until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return err
	}
	w.logger.Info("watching directory", zap.String("dir", w.dir), zap.Duration("debounce", w.debounce))

	// pending maps a path to the last time it changed
	pending := map[string]time.Time{}
	tick := w.debounce / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !IsSupportedVideo(ev.Name) {
				continue
			}
			pending[ev.Name] = time.Now()
		case <-ticker.C:
			now := time.Now()
			var ready []string
			for name, t := range pending {
				if now.Sub(t) > w.debounce {
					ready = append(ready, name)
				}
			}
			sort.Strings(ready)
			for _, name := range ready {
				delete(pending, name)
				w.ProcessFile(ctx, name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}
