// Package ffmpeg implements types.MediaTool by running ffmpeg and ffprobe.
package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"movie-recap/internal/types"
	apperrors "movie-recap/pkg/errors"
	"movie-recap/pkg/util"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
	logger  *zap.Logger
}

func New(ffmpegPath, ffprobePath string, logger *zap.Logger) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath, logger: logger}
}

func (a *Adapter) run(ctx context.Context, what, output string, args []string) error {
	a.logger.Debug("ffmpeg", zap.String("step", what), zap.Strings("args", args))
	b, err := exec.CommandContext(ctx, a.ffmpeg, args...).CombinedOutput()
	if err != nil {
		_ = os.Remove(output)
		return fmt.Errorf("ffmpeg %s: %w\n%s", what, err, util.TruncateUTF8(string(b), 2000))
	}
	if _, err = os.Stat(output); err != nil {
		return fmt.Errorf("ffmpeg %s: no output: %w", what, err)
	}
	return nil
}

func (a *Adapter) probe(ctx context.Context, args []string) (string, error) {
	b, err := exec.CommandContext(ctx, a.ffprobe, args...).CombinedOutput()
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeProbeFailed, "ffprobe failed", fmt.Errorf("%w\n%s", err, strings.TrimSpace(string(b))))
	}
	return string(b), nil
}

func (a *Adapter) ProbeDuration(ctx context.Context, path string) (float64, error) {
	out, err := a.probe(ctx, DurationProbeArgs(path))
	if err != nil {
		return 0, err
	}
	return ParseDuration(out)
}

func (a *Adapter) ProbeDimensions(ctx context.Context, path string) (int, int, error) {
	out, err := a.probe(ctx, DimensionsProbeArgs(path))
	if err != nil {
		return 0, 0, err
	}
	return ParseDimensions(out)
}

// ParseDuration reads ffprobe's bare duration output.
func ParseDuration(out string) (float64, error) {
	s := strings.TrimSpace(out)
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeProbeFailed, fmt.Sprintf("parse duration %q", s), err)
	}
	return sec, nil
}

// ParseDimensions reads "WxH" from the first line of ffprobe csv output.
func ParseDimensions(out string) (int, int, error) {
	line := strings.TrimSpace(strings.SplitN(strings.TrimSpace(out), "\n", 2)[0])
	w, h, ok := strings.Cut(strings.TrimSuffix(line, "x"), "x")
	if !ok {
		return 0, 0, apperrors.New(apperrors.CodeProbeFailed, fmt.Sprintf("parse dimensions %q", line))
	}
	width, errW := strconv.Atoi(w)
	height, errH := strconv.Atoi(h)
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return 0, 0, apperrors.New(apperrors.CodeProbeFailed, fmt.Sprintf("parse dimensions %q", line))
	}
	return width, height, nil
}

func (a *Adapter) RenderClip(ctx context.Context, req types.RenderRequest) error {
	return a.run(ctx, "render clip", req.Output, RenderArgs(req))
}

func (a *Adapter) ConcatVideos(ctx context.Context, listFile, output string) error {
	return a.run(ctx, "concat videos", output, ConcatVideoArgs(listFile, output))
}

func (a *Adapter) TrimAudio(ctx context.Context, input string, offset, duration float64, output string) error {
	return a.run(ctx, "trim audio", output, TrimAudioArgs(input, offset, duration, output))
}

func (a *Adapter) ConcatAudio(ctx context.Context, listFile, output string) error {
	return a.run(ctx, "concat audio", output, ConcatAudioArgs(listFile, output))
}

func (a *Adapter) MixBgm(ctx context.Context, video, bgm, output string, narrationGain, bgmGain float64) error {
	return a.run(ctx, "mix bgm", output, MixArgs(video, bgm, output, narrationGain, bgmGain))
}

// MakeVertical renders a 9:16 copy of input for short-form platforms.
func (a *Adapter) MakeVertical(ctx context.Context, input, output string) error {
	_, h, err := a.ProbeDimensions(ctx, input)
	if err != nil {
		return err
	}
	dur, err := a.ProbeDuration(ctx, input)
	if err != nil {
		return err
	}
	if dur <= 0.1 {
		return apperrors.New(apperrors.CodeVerticalFailed, fmt.Sprintf("input too short for vertical render (%.2fs)", dur))
	}
	w, vh := VerticalSize(h)
	return a.run(ctx, "vertical", output, VerticalArgs(input, output, dur, w, vh))
}
