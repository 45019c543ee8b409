// Package deps locates the external media tools and reports on them.
package deps

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"movie-recap/config"
	apperrors "movie-recap/pkg/errors"
)

type DependencyTier string

const (
	DependencyTierMust     DependencyTier = "must"
	DependencyTierOptional DependencyTier = "optional"
)

type DependencyStatus string

const (
	DependencyStatusOK      DependencyStatus = "ok"
	DependencyStatusMissing DependencyStatus = "missing"
	DependencyStatusError   DependencyStatus = "error"
)

type DependencySource string

const (
	DependencySourceConfig   DependencySource = "config"
	DependencySourceLookPath DependencySource = "lookpath"
)

const (
	DependencyIDFFmpeg  = "ffmpeg"
	DependencyIDFFprobe = "ffprobe"

	versionTimeout = 10 * time.Second
)

type DependencySpec struct {
	ID             string
	Name           string
	Command        string
	Tier           DependencyTier
	ConfiguredPath string
	Hint           string
}

type DependencyState struct {
	DependencySpec
	ResolvedPath string
	Status       DependencyStatus
	Source       DependencySource
	Version      string
	Error        string
}

type PathResolver struct {
	LookPath func(file string) (string, error)
	AbsPath  func(path string) (string, error)
	Stat     func(name string) (os.FileInfo, error)
	// Version returns the first line of "<bin> -version". Nil skips the check.
	Version func(ctx context.Context, bin string) (string, error)
}

func NewPathResolver() PathResolver {
	return PathResolver{
		LookPath: exec.LookPath,
		AbsPath:  filepath.Abs,
		Stat:     os.Stat,
		Version:  commandVersion,
	}
}

func commandVersion(ctx context.Context, bin string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, bin, "-version").Output()
	if err != nil {
		return "", err
	}
	line, _, _ := bufio.NewReader(bytes.NewReader(out)).ReadLine()
	return strings.TrimSpace(string(line)), nil
}

func (r PathResolver) Resolve(ctx context.Context, spec DependencySpec) DependencyState {
	state := r.locate(spec)
	if state.Status != DependencyStatusOK || r.Version == nil {
		return state
	}

	version, err := r.Version(ctx, state.ResolvedPath)
	if err != nil {
		state.Status = DependencyStatusError
		state.Error = fmt.Sprintf("%s -version failed: %v", state.ResolvedPath, err)
		return state
	}
	state.Version = version
	return state
}

func (r PathResolver) locate(spec DependencySpec) DependencyState {
	state := DependencyState{DependencySpec: spec}
	configured := strings.TrimSpace(spec.ConfiguredPath)

	if configured != "" {
		state.Source = DependencySourceConfig
		resolvedPath, err := r.resolveConfiguredPath(configured)
		if err == nil {
			state.Status = DependencyStatusOK
			state.ResolvedPath = resolvedPath
			return state
		}

		if absPath, absErr := r.AbsPath(configured); absErr == nil {
			state.ResolvedPath = absPath
		} else {
			state.ResolvedPath = configured
		}
		state.Error = err.Error()
		if isMissingPathError(err) {
			state.Status = DependencyStatusMissing
		} else {
			state.Status = DependencyStatusError
		}
		return state
	}

	state.Source = DependencySourceLookPath
	resolvedPath, err := r.LookPath(spec.Command)
	if err == nil {
		state.Status = DependencyStatusOK
		state.ResolvedPath = resolvedPath
		return state
	}

	state.Error = err.Error()
	if isMissingPathError(err) {
		state.Status = DependencyStatusMissing
		return state
	}
	state.Status = DependencyStatusError
	return state
}

func (r PathResolver) resolveConfiguredPath(configuredPath string) (string, error) {
	if resolvedPath, err := r.LookPath(configuredPath); err == nil {
		return resolvedPath, nil
	}

	absPath, err := r.AbsPath(configuredPath)
	if err != nil {
		return "", err
	}
	if _, err = r.Stat(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

// ResolveDependencyStates checks every spec concurrently; the result keeps
// the order of specs.
func ResolveDependencyStates(ctx context.Context, specs []DependencySpec, resolver PathResolver) []DependencyState {
	resolved := make([]DependencyState, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			resolved[i] = resolver.Resolve(gctx, spec)
			return nil
		})
	}
	_ = g.Wait()
	return resolved
}

func BuildDependencyInventory(app config.App) []DependencySpec {
	return []DependencySpec{
		{
			ID:             DependencyIDFFmpeg,
			Name:           "ffmpeg",
			Command:        "ffmpeg",
			Tier:           DependencyTierMust,
			ConfiguredPath: app.FfmpegPath,
			Hint:           "Required to render, concatenate and mix clips.",
		},
		{
			ID:             DependencyIDFFprobe,
			Name:           "ffprobe",
			Command:        "ffprobe",
			Tier:           DependencyTierMust,
			ConfiguredPath: app.FfprobePath,
			Hint:           "Required to measure narration and video durations.",
		},
	}
}

// MediaTools are the resolved binaries the pipeline runs.
type MediaTools struct {
	Ffmpeg  string
	Ffprobe string
}

// CheckDependency resolves ffmpeg and ffprobe. A missing must-tier tool is a
// setup error.
func CheckDependency(ctx context.Context, app config.App, resolver PathResolver) (MediaTools, []DependencyState, error) {
	states := ResolveDependencyStates(ctx, BuildDependencyInventory(app), resolver)

	var tools MediaTools
	var problems []string
	for _, st := range states {
		if st.Tier == DependencyTierMust && st.Status != DependencyStatusOK {
			problems = append(problems, fmt.Sprintf("%s: %s", st.Name, st.Error))
			continue
		}
		switch st.ID {
		case DependencyIDFFmpeg:
			tools.Ffmpeg = st.ResolvedPath
		case DependencyIDFFprobe:
			tools.Ffprobe = st.ResolvedPath
		}
	}
	if len(problems) > 0 {
		return tools, states, apperrors.WrapWithDetail(apperrors.CodeMediaToolMissing, "ffmpeg or ffprobe not found", strings.Join(problems, "; "), nil)
	}
	return tools, states, nil
}

func FormatDependencyReport(states []DependencyState) string {
	if len(states) == 0 {
		return "No dependencies to diagnose."
	}

	var builder strings.Builder
	builder.WriteString("Dependency status")

	for _, state := range states {
		resolvedPath := strings.TrimSpace(state.ResolvedPath)
		if resolvedPath == "" {
			resolvedPath = "unknown"
		}

		source := strings.TrimSpace(string(state.Source))
		if source == "" {
			source = "n/a"
		}

		builder.WriteString("\n")
		builder.WriteString(fmt.Sprintf("- %s [%s]: %s | path=%s | source=%s", state.Name, strings.ToUpper(string(state.Tier)), state.Status, resolvedPath, source))
		if state.Version != "" {
			builder.WriteString("\n  version: ")
			builder.WriteString(state.Version)
		}
		if state.Error != "" {
			builder.WriteString("\n  error: ")
			builder.WriteString(state.Error)
		}
		if state.Hint != "" && state.Status != DependencyStatusOK {
			builder.WriteString("\n  hint: ")
			builder.WriteString(state.Hint)
		}
	}

	return builder.String()
}

func isMissingPathError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, exec.ErrNotFound) {
		return true
	}

	message := strings.ToLower(err.Error())
	return strings.Contains(message, "not found") || strings.Contains(message, "cannot find")
}
