package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	internalApp "github.com/haierkeys/content-hub-service/internal/app"
	"github.com/haierkeys/content-hub-service/internal/dao"
	"github.com/haierkeys/content-hub-service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// sweepTimeout 单次清理执行超时时间
const sweepTimeout = 30 * time.Minute

type sweepFlags struct {
	config string // 配置文件路径
	delete bool   // 孤儿清理是否真正删除
}

// newSweepApp 构建清理命令使用的应用容器
func newSweepApp(configFile string) (*internalApp.App, *zap.Logger, error) {
	appConfig, _, err := internalApp.LoadConfig(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg, err := logger.NewLogger(logger.Config{
		Level:      appConfig.Log.Level,
		File:       "", // 清理命令只输出到控制台
		Production: false,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}

	db, err := dao.NewDBEngine(appConfig.ToDatabaseConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("initDatabase: %w", err)
	}

	app, err := internalApp.NewApp(appConfig, lg, db)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create app container: %w", err)
	}
	return app, lg, nil
}

func init() {
	sweepEnv := new(sweepFlags)

	var sweepCommand = &cobra.Command{
		Use:   "sweep",
		Short: "Run a history sweep once and exit // 执行一次历史清理后退出",
	}

	var retentionCommand = &cobra.Command{
		Use:   "retention",
		Short: "Delete history rows past the per-tier retention window // 删除超出用户等级保留期的历史行",
		Run: func(cmd *cobra.Command, args []string) {
			app, lg, err := newSweepApp(sweepEnv.config)
			if err != nil {
				bootstrapLogger.Error("sweep retention init err", zap.Error(err))
				os.Exit(1)
			}
			defer app.Close()

			ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
			defer cancel()

			result, err := app.RetentionService.SweepOnce(ctx)
			if err != nil {
				lg.Error("sweep retention err", zap.Error(err))
				os.Exit(1)
			}
			fmt.Printf("retention sweep done: scanned %d users, deleted %d rows\n", result.UsersScanned, result.Deleted)
		},
	}

	var orphansCommand = &cobra.Command{
		Use:   "orphans [--delete]",
		Short: "Count or delete history rows whose entity no longer exists // 统计或删除实体已不存在的历史行",
		Run: func(cmd *cobra.Command, args []string) {
			app, lg, err := newSweepApp(sweepEnv.config)
			if err != nil {
				bootstrapLogger.Error("sweep orphans init err", zap.Error(err))
				os.Exit(1)
			}
			defer app.Close()

			ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
			defer cancel()

			result, err := app.OrphanService.Sweep(ctx, sweepEnv.delete)
			if err != nil {
				lg.Error("sweep orphans err", zap.Error(err))
				os.Exit(1)
			}
			verb := "deleted"
			if result.DryRun {
				verb = "found"
			}
			fmt.Printf("orphan sweep done: %s %d rows\n", verb, result.Deleted)
			for entityType, n := range result.PerEntity {
				fmt.Printf("  %s: %d\n", entityType, n)
			}
		},
	}

	sweepCommand.AddCommand(retentionCommand)
	sweepCommand.AddCommand(orphansCommand)
	rootCmd.AddCommand(sweepCommand)

	fs := sweepCommand.PersistentFlags()
	fs.StringVarP(&sweepEnv.config, "config", "c", "config/config.yaml", "config file")
	orphansCommand.Flags().BoolVar(&sweepEnv.delete, "delete", false, "delete orphan rows instead of counting")
}
