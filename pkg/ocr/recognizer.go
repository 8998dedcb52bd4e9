package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// DefaultLanguage is the single Tesseract language used per pass.
const DefaultLanguage = "eng"

// Recognizer turns an image into recognized text fragments. Fragment order
// follows the engine's reading order; callers must not rely on it.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]string, error)
}

// TesseractRecognizer runs one Tesseract pass through gosseract and returns
// one fragment per recognized text line.
type TesseractRecognizer struct {
	language string
	logger   *zap.Logger
}

// NewTesseractRecognizer returns a recognizer for language (DefaultLanguage
// when empty).
func NewTesseractRecognizer(language string, logger *zap.Logger) *TesseractRecognizer {
	if language == "" {
		language = DefaultLanguage
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TesseractRecognizer{language: language, logger: logger}
}

// Recognize encodes img as PNG and runs a single recognition pass over it.
// Box positions and confidences are dropped.
func (r *TesseractRecognizer) Recognize(ctx context.Context, img image.Image) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecognition, err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: encode image: %v", ErrRecognition, err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(r.language); err != nil {
		return nil, fmt.Errorf("%w: set language %s: %v", ErrRecognition, r.language, err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: set image: %v", ErrRecognition, err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecognition, err)
	}

	raw := make([]string, 0, len(boxes))
	for _, b := range boxes {
		raw = append(raw, b.Word)
	}
	frags := CleanFragments(raw)
	r.logger.Debug("text recognized", zap.Int("fragments", len(frags)), zap.String("snippet", snippet(Blob(frags), 180)))
	return frags, nil
}

// RecognizeFile opens the image at path and recognizes it.
func RecognizeFile(ctx context.Context, r Recognizer, path string) ([]string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	return r.Recognize(ctx, img)
}

// CleanFragments collapses whitespace inside each fragment and drops empty
// ones.
func CleanFragments(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if f = normalizeOCRText(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Blob joins fragments into the single text the field rules run over.
func Blob(fragments []string) string {
	return strings.Join(fragments, " ")
}
