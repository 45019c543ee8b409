// Package cli is the recap command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func Main() {
	root := newRootCmd()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "recap",
		Short:         "Turn a folder of movies into narrated recap videos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("workdir", "", "Working directory (overrides app.work_dir)")

	root.AddCommand(
		newRunCmd(),
		newServeCmd(),
		newWorkerCmd(),
		newEnqueueCmd(),
		newHistoryCmd(),
		newDoctorCmd(),
		newVersionCmd(),
	)
	return root
}
