package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"movie-recap/config"
	"movie-recap/internal/appdirs"
	"movie-recap/internal/deps"
	"movie-recap/log"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check config, directories and media tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printDiagnose(w)

			configErr := config.CheckConfig()
			if configErr != nil {
				fmt.Fprintf(w, "config: %v\n", configErr)
			} else {
				fmt.Fprintln(w, "config: ok")
			}

			_, states, depErr := deps.CheckDependency(cmd.Context(), config.Conf.App, deps.NewPathResolver())
			fmt.Fprintln(w, deps.FormatDependencyReport(states))

			if configErr != nil {
				return configErr
			}
			return depErr
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "version: %s\ncommit: %s\ndate: %s\n", version, commit, date)
}

func printDiagnose(w io.Writer) {
	fmt.Fprintf(w, "runtime: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "version: %s\n", version)

	if cfgPath, err := config.ResolveConfigPath(); err == nil {
		printPath(w, "config", cfgPath)
	} else {
		fmt.Fprintf(w, "path.config: <error: %v>\n", err)
	}
	if logPath, err := log.ResolveLogFilePath(); err == nil {
		printPath(w, "log", logPath)
	} else {
		fmt.Fprintf(w, "path.log: <error: %v>\n", err)
	}
	if dbPath, err := appdirs.ResolveDBPath(); err == nil {
		printPath(w, "ledger", dbPath)
	}

	ws := appdirs.ResolveWorkspace(config.Conf.App.WorkDir)
	printPath(w, "workdir", ws.Root)
	for _, dir := range ws.Dirs() {
		printPath(w, "workdir."+dirLabel(ws, dir), dir)
	}
}

func dirLabel(ws appdirs.Workspace, dir string) string {
	switch dir {
	case ws.MoviesDir():
		return "movies"
	case ws.OutputDir():
		return "output"
	case ws.MusicDir():
		return "music"
	case ws.ClipsDir():
		return "clips"
	case ws.AudioDir():
		return "audio"
	case ws.SubtitlesDir():
		return "subtitles"
	case ws.VerticalDir():
		return "vertical"
	case ws.RetiredDir():
		return "retired"
	}
	return "other"
}

func printPath(w io.Writer, name, value string) {
	_, err := os.Stat(value)
	switch {
	case err == nil:
		fmt.Fprintf(w, "path.%s: %s (exists)\n", name, value)
	case os.IsNotExist(err):
		fmt.Fprintf(w, "path.%s: %s (missing)\n", name, value)
	default:
		fmt.Fprintf(w, "path.%s: %s (error=%v)\n", name, value, err)
	}
}
