package main

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	uploadDir            = "uploads"
	maxUploadBytes int64 = 200 << 20
)

var unsafeNameRE = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

var allowedVideoTypes = map[string]bool{
	"video/mp4":        true,
	"video/quicktime":  true,
	"video/x-matroska": true,
	"video/3gpp":       true,
	"video/avi":        true,
	"video/mpeg":       true,
}

var allowedVideoExts = map[string]bool{
	".mp4": true, ".mov": true, ".mkv": true, ".3gp": true, ".avi": true, ".mpg": true, ".mpeg": true,
}

// ensureUploadBase creates the base uploads directory.
func ensureUploadBase(log *zap.Logger) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		log.Warn("failed to create upload dir", zap.String("dir", uploadDir), zap.Error(err))
	}
}

// isAllowedVideo accepts known video mime types, falling back to the file
// extension because some phones send no usable type.
func isAllowedVideo(fh *multipart.FileHeader) bool {
	if allowedVideoTypes[strings.ToLower(fh.Header.Get("Content-Type"))] {
		return true
	}
	return allowedVideoExts[strings.ToLower(filepath.Ext(fh.Filename))]
}

// uploadPath returns a fresh per-upload directory and the file path inside
// it. The extracted still is written into the same directory.
func uploadPath(original string) (dir, path string) {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ext = ".mp4"
	}
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = unsafeNameRE.ReplaceAllString(base, "_")
	if base == "" || base == "_" {
		base = "video"
	}
	dir = filepath.Join(uploadDir, uuid.NewString())
	return dir, filepath.Join(dir, fmt.Sprintf("%s%s", base, ext))
}
