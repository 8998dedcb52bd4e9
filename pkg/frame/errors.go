package frame

import "errors"

// ErrFrameRead is returned when the video cannot be opened or the target
// frame cannot be decoded.
var ErrFrameRead = errors.New("frame read failed")
