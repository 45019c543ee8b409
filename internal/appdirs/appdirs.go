package appdirs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	PortableEnv = "MOVIERECAP_PORTABLE"
	WorkDirEnv  = "MOVIERECAP_WORKDIR"

	appName        = "movie-recap"
	configFileName = "config.toml"
	dbFileName     = "runs.db"
)

// Paths locates the per-user files of the tool. The working directory holding
// movies and outputs is resolved separately, see Layout.
type Paths struct {
	Portable   bool
	ConfigDir  string
	ConfigFile string
	LogDir     string
	CacheDir   string
}

type resolveDeps struct {
	goos          string
	getenv        func(string) string
	executable    func() (string, error)
	userConfigDir func() (string, error)
	userCacheDir  func() (string, error)
}

func Resolve() (Paths, error) {
	return resolve(resolveDeps{})
}

func resolve(deps resolveDeps) (Paths, error) {
	deps = fillDeps(deps)
	switch {
	case isTruthy(deps.getenv(PortableEnv)):
		return portablePaths(deps)
	case deps.goos == "windows":
		return userPaths(deps)
	default:
		return relativePaths(), nil
	}
}

func fillDeps(deps resolveDeps) resolveDeps {
	if deps.goos == "" {
		deps.goos = runtime.GOOS
	}
	if deps.getenv == nil {
		deps.getenv = os.Getenv
	}
	if deps.executable == nil {
		deps.executable = os.Executable
	}
	if deps.userConfigDir == nil {
		deps.userConfigDir = os.UserConfigDir
	}
	if deps.userCacheDir == nil {
		deps.userCacheDir = os.UserCacheDir
	}
	return deps
}

func portablePaths(deps resolveDeps) (Paths, error) {
	exe, err := deps.executable()
	if err != nil {
		return Paths{}, err
	}

	root := filepath.Join(filepath.Dir(exe), "data")
	return Paths{
		Portable:   true,
		ConfigDir:  filepath.Join(root, "config"),
		ConfigFile: filepath.Join(root, "config", configFileName),
		LogDir:     filepath.Join(root, "logs"),
		CacheDir:   filepath.Join(root, "cache"),
	}, nil
}

func userPaths(deps resolveDeps) (Paths, error) {
	configRoot, err := nonEmptyDir(deps.userConfigDir, "user config dir")
	if err != nil {
		return Paths{}, err
	}
	cacheRoot, err := nonEmptyDir(deps.userCacheDir, "user cache dir")
	if err != nil {
		return Paths{}, err
	}

	configDir := filepath.Join(configRoot, appName)
	cacheDir := filepath.Join(cacheRoot, appName)
	return Paths{
		ConfigDir:  configDir,
		ConfigFile: filepath.Join(configDir, configFileName),
		LogDir:     filepath.Join(cacheDir, "logs"),
		CacheDir:   cacheDir,
	}, nil
}

func nonEmptyDir(fn func() (string, error), what string) (string, error) {
	dir, err := fn()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(dir) == "" {
		return "", errors.New(what + " is empty")
	}
	return dir, nil
}

func relativePaths() Paths {
	return Paths{
		ConfigDir:  "config",
		ConfigFile: filepath.Join("config", configFileName),
		LogDir:     ".",
		CacheDir:   "cache",
	}
}

// DBPathFor returns the run ledger database location.
func DBPathFor(paths Paths) string {
	dir := strings.TrimSpace(paths.CacheDir)
	if dir == "" {
		dir = "cache"
	}
	return filepath.Join(dir, dbFileName)
}

func ResolveDBPath() (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return DBPathFor(paths), nil
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
