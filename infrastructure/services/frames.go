package services

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/notelens/notelens/internal/ports"
)

// DefaultFrameCount is the number of still frames sampled from a video for
// backends without native video ingestion.
const DefaultFrameCount = 8

// FrameExtractor samples evenly spaced frames from a video file using
// ffmpeg. Sampling is by frame index, not by time, so variable-frame-rate
// clips get an even spread regardless of their timing metadata.
type FrameExtractor struct {
	ffmpegPath  string
	ffprobePath string
	logger      zerolog.Logger
}

// NewFrameExtractor creates an extractor that shells out to ffmpeg/ffprobe
// from PATH.
func NewFrameExtractor(logger zerolog.Logger) *FrameExtractor {
	return &FrameExtractor{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		logger:      logger.With().Str("component", "frames").Logger(),
	}
}

// Available reports whether the ffmpeg tooling is on PATH.
func (x *FrameExtractor) Available() bool {
	_, errFFmpeg := exec.LookPath(x.ffmpegPath)
	_, errFFprobe := exec.LookPath(x.ffprobePath)
	return errFFmpeg == nil && errFFprobe == nil
}

// ExtractFrames decodes up to count evenly spaced JPEG frames from the
// video. Individual undecodable frames are skipped rather than failing the
// whole extraction, so a clip with fewer decodable frames than requested
// yields however many could be read. It errors only when the video itself is
// unreadable or no frame at all could be decoded.
func (x *FrameExtractor) ExtractFrames(ctx context.Context, videoPath string, count int) ([][]byte, error) {
	if count <= 0 {
		count = DefaultFrameCount
	}

	total, err := x.frameCount(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrFrameExtraction, err)
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: video has no frames", ports.ErrFrameExtraction)
	}

	frames := make([][]byte, 0, count)
	for _, idx := range frameIndices(total, count) {
		frame, err := x.decodeFrame(ctx, videoPath, idx)
		if err != nil {
			x.logger.Warn().Err(err).Int("frame", idx).Str("video", videoPath).
				Msg("skipping undecodable frame")
			continue
		}
		frames = append(frames, frame)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no decodable frames", ports.ErrFrameExtraction)
	}

	x.logger.Debug().Int("frames", len(frames)).Int("total", total).
		Str("video", videoPath).Msg("extracted frames")
	return frames, nil
}

// frameCount asks ffprobe for the stream's frame count, falling back to a
// packet count for containers that do not record nb_frames.
func (x *FrameExtractor) frameCount(ctx context.Context, videoPath string) (int, error) {
	if n, err := x.probeInt(ctx, videoPath, "stream=nb_frames"); err == nil && n > 0 {
		return n, nil
	}

	cmd := exec.CommandContext(ctx, x.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-count_packets",
		"-show_entries", "stream=nb_read_packets",
		"-of", "default=nokey=1:noprint_wrappers=1",
		videoPath)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", videoPath, err)
	}
	return strconv.Atoi(strings.TrimSpace(string(out)))
}

func (x *FrameExtractor) probeInt(ctx context.Context, videoPath, entries string) (int, error) {
	cmd := exec.CommandContext(ctx, x.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", entries,
		"-of", "default=nokey=1:noprint_wrappers=1",
		videoPath)
	out, err := cmd.Output()
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(out)))
}

// decodeFrame extracts a single frame by index as JPEG bytes on stdout.
func (x *FrameExtractor) decodeFrame(ctx context.Context, videoPath string, index int) ([]byte, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, x.ffmpegPath,
		"-v", "error",
		"-i", videoPath,
		"-vf", fmt.Sprintf("select=eq(n\\,%d)", index),
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", "mjpeg",
		"pipe:1")
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame %d: %w", index, err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg frame %d: empty output", index)
	}
	return stdout.Bytes(), nil
}

// frameIndices returns up to want evenly spaced frame indices in [0, total).
// When the video has fewer frames than requested, every frame is selected.
func frameIndices(total, want int) []int {
	if total <= 0 || want <= 0 {
		return nil
	}
	if want >= total {
		indices := make([]int, total)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}
	if want == 1 {
		return []int{0}
	}

	indices := make([]int, 0, want)
	last := -1
	for i := 0; i < want; i++ {
		idx := int(float64(i) * float64(total-1) / float64(want-1))
		if idx == last {
			continue
		}
		indices = append(indices, idx)
		last = idx
	}
	return indices
}
