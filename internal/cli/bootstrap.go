package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"movie-recap/config"
	"movie-recap/internal/deps"
	"movie-recap/internal/service"
	"movie-recap/internal/storage"
	"movie-recap/log"
)

// loadConfig reads config and starts logging. Every command calls it first.
func loadConfig(cmd *cobra.Command) error {
	if err := config.LoadConfig(); err != nil {
		return err
	}
	if wd, _ := cmd.Flags().GetString("workdir"); strings.TrimSpace(wd) != "" {
		config.Conf.App.WorkDir = wd
	}
	log.InitLogger(config.Conf.App.LogLevel)
	return nil
}

// openLedger opens the run ledger and fails over stale rows. A ledger that
// cannot be opened is logged and skipped.
func openLedger(ctx context.Context) {
	if !config.Conf.Storage.Enabled {
		return
	}
	if err := storage.InitDB(); err != nil {
		log.GetLogger().Warn("run ledger unavailable", zap.Error(err))
		return
	}
	if count, err := storage.NewLedger(storage.DB).MarkStaleRuns(ctx); err != nil {
		log.GetLogger().Warn("Failed to mark stale runs", zap.Error(err))
	} else if count > 0 {
		log.GetLogger().Info("Marked stale runs as failed", zap.Int64("count", count))
	}
}

// bootstrap prepares everything a batch needs.
func bootstrap(cmd *cobra.Command) (*service.Service, error) {
	if err := loadConfig(cmd); err != nil {
		return nil, err
	}
	if err := config.CheckConfig(); err != nil {
		log.GetLogger().Error("config check failed", zap.Error(err))
		return nil, err
	}

	ctx := cmd.Context()
	tools, states, err := deps.CheckDependency(ctx, config.Conf.App, deps.NewPathResolver())
	if err != nil {
		log.GetLogger().Error("media tools missing", zap.String("report", deps.FormatDependencyReport(states)))
		return nil, err
	}

	openLedger(ctx)
	return service.NewService(config.Conf, tools, storage.DB, service.Collaborators{})
}
