// Package frame picks and decodes the still image that carries the timing
// display, two seconds before the end of the clip.
package frame

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

const (
	defaultFrameRate = 30
	// fallback clip length, in seconds, when the container has no frame count.
	defaultSeconds = 10
	tailSeconds    = 2

	// DefaultFileName is the still written next to the source video.
	DefaultFileName = "last_frame_extracted.png"
)

// Selection is the outcome of the target frame calculation.
type Selection struct {
	FrameRate   int
	TotalFrames int
	Target      int
}

// Select computes the frame two seconds before the end, clamped at zero.
// Unknown rates fall back to 30 fps and unknown lengths to ten seconds.
func Select(frameRate, totalFrames int) Selection {
	if frameRate <= 0 {
		frameRate = defaultFrameRate
	}
	if totalFrames <= 0 {
		totalFrames = frameRate * defaultSeconds
	}
	target := totalFrames - tailSeconds*frameRate
	if target < 0 {
		target = 0
	}
	return Selection{FrameRate: frameRate, TotalFrames: totalFrames, Target: target}
}

// Video is an opened clip that can decode single frames.
type Video interface {
	FrameRate() int
	FrameCount() int
	Frame(ctx context.Context, index int) (image.Image, error)
	Close() error
}

// Source opens videos.
type Source interface {
	Open(ctx context.Context, path string) (Video, error)
}

// Grab is the still taken from a video.
type Grab struct {
	Path      string
	Image     image.Image
	Selection Selection
}

// Selector grabs the timing frame from a video and keeps a copy on disk.
type Selector struct {
	source   Source
	fileName string
	logger   *zap.Logger
}

// NewSelector returns a Selector that writes the still as fileName in the
// video's directory. An empty fileName uses DefaultFileName.
func NewSelector(source Source, fileName string, logger *zap.Logger) *Selector {
	if fileName == "" {
		fileName = DefaultFileName
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{source: source, fileName: fileName, logger: logger}
}

// Grab opens videoPath, decodes exactly one frame at the selected index and
// saves it alongside the video.
func (s *Selector) Grab(ctx context.Context, videoPath string) (*Grab, error) {
	v, err := s.source.Open(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open video: %v", ErrFrameRead, err)
	}
	defer v.Close()

	sel := Select(v.FrameRate(), v.FrameCount())
	img, err := v.Frame(ctx, sel.Target)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read frame %d: %v", ErrFrameRead, sel.Target, err)
	}

	out := filepath.Join(filepath.Dir(videoPath), s.fileName)
	if err := imaging.Save(img, out); err != nil {
		// best effort, extraction continues from the decoded image
		s.logger.Warn("could not save frame", zap.String("path", out), zap.Error(err))
		out = ""
	}
	s.logger.Debug("frame grabbed",
		zap.String("video", videoPath),
		zap.Int("fps", sel.FrameRate),
		zap.Int("total_frames", sel.TotalFrames),
		zap.Int("target_frame", sel.Target),
		zap.String("image", out),
	)
	return &Grab{Path: out, Image: img, Selection: sel}, nil
}
