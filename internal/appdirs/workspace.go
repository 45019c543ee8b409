package appdirs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	MoviesDirName    = "movies"
	OutputDirName    = "output"
	MusicDirName     = "backgroundmusic"
	ClipsDirName     = "clips"
	AudioDirName     = "audio"
	SubtitlesDirName = "scripts/srt_files"
	VerticalDirName  = "tiktok_output"
	RetiredDirName   = "movies_retired"
)

// Workspace is the working directory a batch runs against. Every artifact
// path is derived from it.
type Workspace struct {
	Root string
}

func NewWorkspace(root string) Workspace {
	if strings.TrimSpace(root) == "" {
		root = "."
	}
	return Workspace{Root: filepath.Clean(root)}
}

// ResolveWorkspace prefers the environment override over the configured dir.
func ResolveWorkspace(configured string) Workspace {
	if env := strings.TrimSpace(os.Getenv(WorkDirEnv)); env != "" {
		return NewWorkspace(env)
	}
	return NewWorkspace(configured)
}

func (w Workspace) join(parts ...string) string {
	return filepath.Join(append([]string{w.Root}, parts...)...)
}

func (w Workspace) MoviesDir() string    { return w.join(MoviesDirName) }
func (w Workspace) OutputDir() string    { return w.join(OutputDirName) }
func (w Workspace) MusicDir() string     { return w.join(MusicDirName) }
func (w Workspace) ClipsDir() string     { return w.join(ClipsDirName) }
func (w Workspace) AudioDir() string     { return w.join(ClipsDirName, AudioDirName) }
func (w Workspace) SubtitlesDir() string { return w.join(filepath.FromSlash(SubtitlesDirName)) }
func (w Workspace) VerticalDir() string  { return w.join(VerticalDirName) }
func (w Workspace) RetiredDir() string   { return w.join(RetiredDirName) }

// Dirs lists every directory of the layout in creation order.
func (w Workspace) Dirs() []string {
	return []string{
		w.MoviesDir(),
		w.OutputDir(),
		w.MusicDir(),
		w.ClipsDir(),
		w.AudioDir(),
		w.SubtitlesDir(),
		w.VerticalDir(),
		w.RetiredDir(),
	}
}

// Ensure creates the layout. Existing directories are left alone.
func (w Workspace) Ensure() error {
	for _, dir := range w.Dirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// ClearScratch removes every regular file under clips/ (including clips/audio)
// and keeps the directories.
func (w Workspace) ClearScratch() error {
	for _, dir := range []string{w.ClipsDir(), w.AudioDir()} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !os.IsNotExist(err) {
				return err
			}
		}
	}
	return nil
}
