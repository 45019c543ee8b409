package types

import "context"

type ChatRequest struct {
	SystemPrompt string
	UserPrompt   string
	JSONOnly     bool
}

type ChatCompleter interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (string, error)
}

type Ttser interface {
	Text2Speech(ctx context.Context, text, voice, outputFile string) error
}

// SubtitleSource returns the raw subtitle file for a title.
type SubtitleSource interface {
	FetchSubtitles(ctx context.Context, title string) ([]byte, error)
}

// ScriptSource returns narrative script text for a title.
type ScriptSource interface {
	FetchScript(ctx context.Context, title string) (string, error)
}

type PlanRequest struct {
	Title     string
	Subtitles string
	Script    string
	ClipCount int
}

type PlanGenerator interface {
	Generate(ctx context.Context, req PlanRequest) (ClipPlan, error)
}

type RenderRequest struct {
	Source    string
	Window    RenderWindow
	Narration string
	Output    string
}

// MediaTool covers every media operation the pipeline delegates to ffmpeg.
type MediaTool interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
	ProbeDimensions(ctx context.Context, path string) (width, height int, err error)
	RenderClip(ctx context.Context, req RenderRequest) error
	ConcatVideos(ctx context.Context, listFile, output string) error
	TrimAudio(ctx context.Context, input string, offset, duration float64, output string) error
	ConcatAudio(ctx context.Context, listFile, output string) error
	MixBgm(ctx context.Context, video, bgm, output string, narrationGain, bgmGain float64) error
	MakeVertical(ctx context.Context, input, output string) error
}
