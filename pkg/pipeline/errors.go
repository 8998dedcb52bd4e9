package pipeline

import (
	"errors"

	"dragyocr/pkg/frame"
	"dragyocr/pkg/ocr"
)

// Fatal error kinds. Boundaries match them with errors.Is and report the
// message as a single {"error": ...} mapping.
var (
	ErrUsage        = errors.New("usage")
	ErrFileNotFound = errors.New("video not found")
	ErrFrameRead    = frame.ErrFrameRead
	ErrRecognition  = ocr.ErrRecognition
)

// Outcome labels an error for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUsage):
		return "usage"
	case errors.Is(err, ErrFileNotFound):
		return "file_not_found"
	case errors.Is(err, ErrFrameRead):
		return "frame_read"
	case errors.Is(err, ErrRecognition):
		return "recognition"
	default:
		return "error"
	}
}
