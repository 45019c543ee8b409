package artifact

import (
	"fmt"
	"path/filepath"
	"strings"

	"movie-recap/internal/appdirs"
)

// Layout derives every artifact path of a movie from its title.
type Layout struct {
	ws appdirs.Workspace
}

func NewLayout(ws appdirs.Workspace) Layout {
	return Layout{ws: ws}
}

func (l Layout) Workspace() appdirs.Workspace { return l.ws }

func (l Layout) Subtitles(title string) string {
	return filepath.Join(l.ws.SubtitlesDir(), title+".srt")
}

func (l Layout) ConvertedSubtitles(title string) string {
	return filepath.Join(l.ws.SubtitlesDir(), title+"_modified.srt")
}

func (l Layout) Script(title string) string {
	return filepath.Join(l.ws.SubtitlesDir(), title+"_summary.txt")
}

func (l Layout) Narration(title string, clipID int) string {
	return filepath.Join(l.ws.AudioDir(), fmt.Sprintf("%s_audio_%d.mp3", title, clipID))
}

func (l Layout) Clip(title string, clipID int) string {
	return filepath.Join(l.ws.ClipsDir(), ClipFileName(title, clipID))
}

func ClipFileName(title string, clipID int) string {
	return fmt.Sprintf("%s_clip_%d.mp4", title, clipID)
}

func (l Layout) Manifest(title string) string {
	return filepath.Join(l.ws.ClipsDir(), title+"_concat_list.txt")
}

func (l Layout) Concatenated(title string) string {
	return filepath.Join(l.ws.ClipsDir(), title+"_concat_tmp.mp4")
}

func (l Layout) BgmPart(title string, part int) string {
	return filepath.Join(l.ws.ClipsDir(), fmt.Sprintf("%s_bgm_part_%d.m4a", title, part))
}

func (l Layout) BgmManifest(title string) string {
	return filepath.Join(l.ws.ClipsDir(), title+"_bgm_list.txt")
}

func (l Layout) Bgm(title string) string {
	return filepath.Join(l.ws.ClipsDir(), title+"_bgm.m4a")
}

func (l Layout) Final(title string) string {
	return filepath.Join(l.ws.OutputDir(), title+".mp4")
}

func (l Layout) Vertical(title string) string {
	return filepath.Join(l.ws.VerticalDir(), title+"_vertical.mp4")
}

func (l Layout) Retired(title string) string {
	return filepath.Join(l.ws.RetiredDir(), title+".mp4")
}

func (l Layout) MoviesDir() string { return l.ws.MoviesDir() }
func (l Layout) MusicDir() string  { return l.ws.MusicDir() }

// ConcatManifest renders an ffmpeg concat demuxer list. Entries are file
// names relative to the list's own directory.
func ConcatManifest(names []string) []byte {
	var b strings.Builder
	for _, name := range names {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(name, "'", `'\''`))
		b.WriteString("'\n")
	}
	return []byte(b.String())
}

// ParseConcatManifest is the inverse of ConcatManifest.
func ParseConcatManifest(data []byte) []string {
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "file '") || !strings.HasSuffix(line, "'") {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(line, "file '"), "'")
		names = append(names, strings.ReplaceAll(name, `'\''`, "'"))
	}
	return names
}
