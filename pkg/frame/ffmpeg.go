package frame

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// FFmpegSource reads video metadata with ffprobe and decodes frames with
// ffmpeg.
type FFmpegSource struct {
	ffmpeg  string
	ffprobe string
	logger  *zap.Logger
}

// NewFFmpegSource returns a Source backed by the given binaries. Empty paths
// resolve "ffmpeg" and "ffprobe" from PATH.
func NewFFmpegSource(ffmpegPath, ffprobePath string, logger *zap.Logger) *FFmpegSource {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFmpegSource{ffmpeg: ffmpegPath, ffprobe: ffprobePath, logger: logger}
}

type probeOutput struct {
	Streams []struct {
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
		NbFrames     string `json:"nb_frames"`
		Duration     string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Open probes the first video stream. Frame rate and count are zero when the
// container does not report them.
func (s *FFmpegSource) Open(ctx context.Context, path string) (Video, error) {
	cmd := exec.CommandContext(ctx, s.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=avg_frame_rate,r_frame_rate,nb_frames,duration:format=duration",
		"-of", "json",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}
	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return nil, fmt.Errorf("no video stream in %s", path)
	}
	st := probe.Streams[0]
	fps := parseRate(st.AvgFrameRate)
	if fps == 0 {
		fps = parseRate(st.RFrameRate)
	}
	count := frameCount(st.NbFrames, fps, st.Duration, probe.Format.Duration)

	dir, err := os.MkdirTemp("", "dragy-frame-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	s.logger.Debug("video probed", zap.String("video", path), zap.Int("fps", fps), zap.Int("nb_frames", count))
	return &ffmpegVideo{src: s, path: path, fps: fps, count: count, dir: dir}, nil
}

type ffmpegVideo struct {
	src   *FFmpegSource
	path  string
	fps   int
	count int
	dir   string
}

func (v *ffmpegVideo) FrameRate() int  { return v.fps }
func (v *ffmpegVideo) FrameCount() int { return v.count }

// Frame decodes the frame at index. Indexes past the last frame produce no
// output and are reported as an error.
func (v *ffmpegVideo) Frame(ctx context.Context, index int) (image.Image, error) {
	out := filepath.Join(v.dir, fmt.Sprintf("frame_%06d.png", index))
	cmd := exec.CommandContext(ctx, v.src.ffmpeg,
		"-v", "error",
		"-i", v.path,
		"-vf", fmt.Sprintf(`select=eq(n\,%d)`, index),
		"-frames:v", "1",
		"-y",
		out,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg error: %w, output: %s", err, strings.TrimSpace(string(output)))
	}
	if _, err := os.Stat(out); err != nil {
		return nil, fmt.Errorf("no frame decoded at index %d", index)
	}
	img, err := imaging.Open(out)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return img, nil
}

func (v *ffmpegVideo) Close() error {
	return os.RemoveAll(v.dir)
}

// frameCount prefers the container's nb_frames. Containers that omit it
// (Matroska, fragmented MP4) get an estimate from the stream or format
// duration. Zero means unknown.
func frameCount(nbFrames string, fps int, durations ...string) int {
	if n, err := strconv.Atoi(strings.TrimSpace(nbFrames)); err == nil && n > 0 {
		return n
	}
	if fps <= 0 {
		fps = defaultFrameRate
	}
	for _, d := range durations {
		secs, err := strconv.ParseFloat(strings.TrimSpace(d), 64)
		if err != nil || secs <= 0 {
			continue
		}
		return int(secs * float64(fps))
	}
	return 0
}

// parseRate converts an ffprobe rate such as "30000/1001" into whole frames
// per second, truncating like an integer cast would.
func parseRate(rate string) int {
	rate = strings.TrimSpace(rate)
	if rate == "" {
		return 0
	}
	num, den, found := strings.Cut(rate, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if found {
		d, err := strconv.ParseFloat(den, 64)
		if err != nil || d == 0 {
			return 0
		}
		n /= d
	}
	if n < 0 {
		return 0
	}
	return int(n)
}
