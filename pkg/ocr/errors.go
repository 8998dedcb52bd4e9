package ocr

import "errors"

// ErrRecognition is returned when the recognition engine is unavailable or
// fails on an image.
var ErrRecognition = errors.New("text recognition failed")
