package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os/exec"

	"media-gallery/internal/logging"

	// Decoders for ffmpeg's piped frame output
	_ "image/png"
)

// VideoProber reads stream dimensions and a representative frame from a video.
type VideoProber interface {
	Probe(ctx context.Context, path string) (width, height int, err error)
	Frame(ctx context.Context, path string) (image.Image, error)
}

// FFmpeg shells out to ffprobe and ffmpeg.
type FFmpeg struct {
	FFprobePath string
	FFmpegPath  string
}

// NewFFmpeg resolves both binaries from PATH.
func NewFFmpeg() (*FFmpeg, error) {
	probe, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}
	mpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	logging.Debug("Using ffprobe: %s, ffmpeg: %s", probe, mpeg)
	return &FFmpeg{FFprobePath: probe, FFmpegPath: mpeg}, nil
}

type ffprobeOutput struct {
	Streams []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"streams"`
}

// Probe returns the dimensions of the first video stream.
func (f *FFmpeg) Probe(ctx context.Context, path string) (int, int, error) {
	cmd := exec.CommandContext(ctx, f.FFprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "json",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, 0, fmt.Errorf("ffprobe failed: %v, stderr: %s", err, stderr.String())
	}
	return parseProbe(stdout.Bytes())
}

func parseProbe(data []byte) (int, int, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return 0, 0, fmt.Errorf("no video stream")
	}
	s := out.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return 0, 0, fmt.Errorf("invalid stream dimensions %dx%d", s.Width, s.Height)
	}
	return s.Width, s.Height, nil
}

// Frame grabs the frame at one second, or the first frame for shorter clips.
func (f *FFmpeg) Frame(ctx context.Context, path string) (image.Image, error) {
	out, err := f.grab(ctx, path, true)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logging.Debug("FFmpeg seek attempt failed for %s: %v", path, err)
		out, err = f.grab(ctx, path, false)
		if err != nil {
			return nil, err
		}
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}
	return img, nil
}

func (f *FFmpeg) grab(ctx context.Context, path string, seek bool) ([]byte, error) {
	args := []string{"-v", "error"}
	if seek {
		args = append(args, "-ss", "00:00:01")
	}
	args = append(args,
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	cmd := exec.CommandContext(ctx, f.FFmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %v, stderr: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s", path)
	}
	return stdout.Bytes(), nil
}
