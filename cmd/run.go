package cmd

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/haierkeys/content-hub-service/pkg/util"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runFlags struct {
	dir     string // Project root directory // 项目根目录
	port    string // Startup port // 启动端口
	runMode string // Startup mode // 启动模式
	config  string // Specified configuration file path // 指定要使用的配置文件路径
}

// resolveConfig 解析配置文件路径，缺失时生成默认配置
func resolveConfig(runEnv *runFlags) error {
	if len(runEnv.config) > 0 {
		return nil
	}
	if util.IsExist("config/config-dev.yaml") {
		runEnv.config = "config/config-dev.yaml"
		return nil
	}
	if util.IsExist("config.yaml") {
		runEnv.config = "config.yaml"
		return nil
	}
	if util.IsExist("config/config.yaml") {
		runEnv.config = "config/config.yaml"
		return nil
	}

	bootstrapLogger.Warn("config file not found, creating default config")
	runEnv.config = "config/config.yaml"

	// 默认密钥替换为随机串
	content := strings.Replace(configDefault, "content-hub-Auth-Token", util.GetRandomString(32), 1)

	if err := util.CreatePath(runEnv.config, os.ModePerm); err != nil {
		return err
	}

	if err := os.WriteFile(runEnv.config, []byte(content), 0666); err != nil {
		return err
	}
	bootstrapLogger.Info("config file auto create successfully", zap.String("path", runEnv.config))
	return nil
}

func init() {
	runEnv := new(runFlags)

	var runCommand = &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port]",
		Short: "Run service",
		Run: func(cmd *cobra.Command, args []string) {
			if len(runEnv.dir) > 0 {
				err := os.Chdir(runEnv.dir)
				if err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
				}
				bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
			}

			if err := resolveConfig(runEnv); err != nil {
				bootstrapLogger.Error("config file auto create error", zap.Error(err))
				return
			}

			s, err := NewServer(runEnv)
			if err != nil {
				bootstrapLogger.Error("api service start err", zap.Error(err))
				return
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case <-quit:
				s.logger.Info("Received shutdown signal, initiating graceful shutdown...")
			case err := <-s.errChan:
				s.logger.Error("service error, initiating shutdown", zap.Error(err))
			}

			s.Shutdown()
			s.logger.Info("Service has been shut down gracefully.")
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.port, "port", "p", "", "run port")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode")
	fs.StringVarP(&runEnv.config, "config", "c", "", "config file")
}
