package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"movie-recap/config"
	"movie-recap/internal/appcore"
	"movie-recap/internal/handler"
	"movie-recap/internal/queue"
	"movie-recap/internal/server"
	"movie-recap/internal/storage"
	"movie-recap/internal/taskrunner"
	"movie-recap/internal/types"
	"movie-recap/log"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process every pending movie once, in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer log.GetLogger().Sync()

			// batches run to completion
			result, err := svc.Driver.Run(context.WithoutCancel(cmd.Context()))
			printBatch(cmd.OutOrStdout(), result)
			if err != nil {
				return err
			}
			if result.Failed > 0 {
				return fmt.Errorf("%d of %d movies failed", result.Failed, len(result.Results))
			}
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the batch status API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer log.GetLogger().Sync()

			runner := taskrunner.New(svc.Driver, svc.Progress)
			hdl := handler.NewHandler(runner, nil)
			if svc.Ledger != nil {
				hdl.History = svc.Ledger
			}
			if start, _ := cmd.Flags().GetBool("start"); start {
				runner.Start()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.StartBackend(ctx, config.Conf.Server, hdl)
		},
	}
	cmd.Flags().Bool("start", false, "Start a batch right away")
	return cmd
}

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run queued batches from Redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer log.GetLogger().Sync()
			return queue.StartWorker(queue.ConfigFrom(config.Conf.Queue), svc.Driver)
		},
	}
}

func newEnqueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue",
		Short: "Queue a batch for a worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			id, err := queue.Enqueue(cmd.Context(), queue.ConfigFrom(config.Conf.Queue))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent movie runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			if err := storage.InitDB(); err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			rows, err := storage.NewLedger(storage.DB).History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Number of rows")
	return cmd
}

func printBatch(w io.Writer, result appcore.BatchResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tSTATUS\tSTAGE\tCLIPS\tWARNINGS\tERROR")
	for _, r := range result.Results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%d\t%s\n", r.Title, r.Status, r.Stage, r.Produced, r.Planned, len(r.Warnings), errText)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "run %s: processed %d, failed %d, skipped %d\n", result.RunID, result.Processed, result.Failed, result.Skipped)
}

func printHistory(w io.Writer, rows []types.MovieRun) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tTITLE\tSTATUS\tSTAGE\tCLIPS\tREASON")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d/%d\t%s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.Title, r.Status, r.Stage, r.Produced, r.Planned, r.FailReason)
	}
	_ = tw.Flush()
}
