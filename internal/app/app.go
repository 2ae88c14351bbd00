// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"fmt"

	"github.com/haierkeys/content-hub-service/internal/dao"
	"github.com/haierkeys/content-hub-service/internal/domain"
	"github.com/haierkeys/content-hub-service/internal/service"
	"github.com/haierkeys/content-hub-service/internal/task"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// Repository 层
	HistoryRepo domain.HistoryRepository
	UserRepo    domain.UserRepository
	EntityRepo  domain.EntityRepository

	// Service 层
	HistoryService   service.HistoryService
	RetentionService service.RetentionService
	OrphanService    service.OrphanService

	// 后台任务
	TaskManager *task.Manager
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config: cfg,
		logger: logger,
		DB:     db,
	}

	// 初始化 DAO
	a.Dao = dao.New(db, logger)

	// 初始化 Repository 层
	a.HistoryRepo = dao.NewHistoryRepository(a.Dao)
	a.UserRepo = dao.NewUserRepository(a.Dao)
	a.EntityRepo = dao.NewEntityRepository(a.Dao)

	// 创建 ServiceConfig（从 AppConfig 提取 Service 层需要的配置）
	svcConfig := &service.ServiceConfig{
		App: service.AppServiceConfig{
			SnapshotInterval:       cfg.App.SnapshotInterval,
			HistoryRetentionDays:   cfg.App.HistoryRetentionDays,
			RetentionUserBatchSize: cfg.App.RetentionUserBatchSize,
		},
	}

	// 初始化 Service 层（依赖注入）
	a.HistoryService = service.NewHistoryService(a.HistoryRepo, a.EntityRepo, logger, &svcConfig.App)
	a.RetentionService = service.NewRetentionService(a.HistoryRepo, a.UserRepo, logger, &svcConfig.App)
	a.OrphanService = service.NewOrphanService(a.HistoryRepo, logger)

	// 初始化后台任务管理器
	a.TaskManager = task.NewManager(logger)
	a.TaskManager.RegisterTasks(task.Config{
		RetentionCron:     cfg.App.SweepRetentionCron,
		OrphanCron:        cfg.App.SweepOrphanCron,
		OrphanSweepDelete: cfg.App.SweepOrphanDelete,
	}, a.RetentionService, a.OrphanService)

	logger.Info("App container initialized successfully",
		zap.Int("snapshotInterval", cfg.App.SnapshotInterval),
		zap.String("retentionCron", cfg.App.SweepRetentionCron),
		zap.String("orphanCron", cfg.App.SweepOrphanCron))

	return a, nil
}

// ToDatabaseConfig 映射到 DAO 层数据库配置
// dao 包不依赖 app 包，配置在此处转换
func (c *AppConfig) ToDatabaseConfig() *dao.DatabaseConfig {
	return &dao.DatabaseConfig{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Name:            c.Database.Name,
		TablePrefix:     c.Database.TablePrefix,
		AutoMigrate:     c.Database.AutoMigrate,
		Charset:         c.Database.Charset,
		ParseTime:       c.Database.ParseTime,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
		RunMode:         c.Server.RunMode,
	}
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	if a.TaskManager != nil {
		a.TaskManager.Stop()
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}
