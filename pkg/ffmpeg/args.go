package ffmpeg

import (
	"fmt"
	"math"
	"strconv"

	"movie-recap/internal/types"
)

var commonArgs = []string{"-y", "-hide_banner", "-loglevel", "error"}

var videoEncode = []string{"-c:v", "libx264", "-pix_fmt", "yuv420p", "-preset", "veryfast", "-crf", "22"}

var audioEncode = []string{"-c:a", "aac", "-b:a", "192k"}

func join(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// RenderArgs cuts the window from the source, retimes video by the window's
// speed and lays the narration under it. The output ends with the shorter
// stream.
func RenderArgs(req types.RenderRequest) []string {
	return join(commonArgs,
		[]string{
			"-ss", strconv.Itoa(req.Window.Start),
			"-to", strconv.Itoa(req.Window.End),
			"-i", req.Source,
			"-i", req.Narration,
			"-filter_complex", fmt.Sprintf("[0:v]setpts=PTS/%.10f[v]", req.Window.Speed),
			"-map", "[v]", "-map", "1:a",
		},
		videoEncode, audioEncode,
		[]string{"-shortest", req.Output},
	)
}

func ConcatVideoArgs(listFile, output string) []string {
	return join(commonArgs,
		[]string{"-f", "concat", "-safe", "0", "-i", listFile},
		videoEncode, audioEncode,
		[]string{"-movflags", "+faststart", output},
	)
}

func TrimAudioArgs(input string, offset, duration float64, output string) []string {
	return join(commonArgs,
		[]string{"-ss", seconds(offset), "-i", input, "-t", seconds(duration)},
		audioEncode,
		[]string{output},
	)
}

func ConcatAudioArgs(listFile, output string) []string {
	return join(commonArgs, []string{"-f", "concat", "-safe", "0", "-i", listFile, "-c", "copy", output})
}

// MixFilter scales narration and music and mixes them for the length of the
// narration track.
func MixFilter(narrationGain, bgmGain float64) string {
	return fmt.Sprintf("[0:a]volume=%s[a0];[1:a]volume=%s[a1];[a0][a1]amix=inputs=2:duration=first:dropout_transition=2[a]",
		gain(narrationGain), gain(bgmGain))
}

func MixArgs(video, bgm, output string, narrationGain, bgmGain float64) []string {
	return join(commonArgs,
		[]string{
			"-i", video, "-i", bgm,
			"-filter_complex", MixFilter(narrationGain, bgmGain),
			"-map", "0:v", "-map", "[a]",
			"-c:v", "copy",
		},
		audioEncode,
		[]string{"-movflags", "+faststart", output},
	)
}

// VerticalSize returns the 9:16 frame for a source of height h. Both sides
// are rounded down to even numbers.
func VerticalSize(h int) (int, int) {
	w := int(math.Floor(float64(h)*9.0/16.0 + 0.5))
	return w &^ 1, h &^ 1
}

// VerticalFilter keeps the middle 60% of the frame and letterboxes it into
// a w x h black canvas.
func VerticalFilter(w, h int) string {
	return fmt.Sprintf("[0:v]crop=iw*0.6:ih:iw*0.2:0,scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black[v]",
		w, h, w, h)
}

func VerticalArgs(input, output string, duration float64, w, h int) []string {
	return join(commonArgs,
		[]string{
			"-i", input, "-t", seconds(duration),
			"-filter_complex", VerticalFilter(w, h),
			"-map", "[v]", "-map", "0:a?",
		},
		videoEncode, audioEncode,
		[]string{"-movflags", "+faststart", output},
	)
}

func DurationProbeArgs(path string) []string {
	return []string{"-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path}
}

func DimensionsProbeArgs(path string) []string {
	return []string{"-v", "error", "-select_streams", "v:0", "-show_entries", "stream=width,height", "-of", "csv=s=x:p=0", path}
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func gain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
