package task

import (
	"github.com/haierkeys/content-hub-service/internal/service"

	"go.uber.org/zap"
)

// Config 任务调度配置
type Config struct {
	RetentionCron     string // 保留期清理的 cron 表达式，空表示禁用
	OrphanCron        string // 孤儿清理的 cron 表达式，空表示禁用
	OrphanSweepDelete bool   // 定时孤儿清理是否执行删除，默认只统计
}

// Manager 任务管理器，负责创建和管理所有任务
type Manager struct {
	scheduler *Scheduler
	logger    *zap.Logger
}

// NewManager 创建任务管理器
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger),
		logger:    logger,
	}
}

// RegisterTasks 注册所有任务
func (m *Manager) RegisterTasks(cfg Config, retentionSvc service.RetentionService, orphanSvc service.OrphanService) {
	if cfg.RetentionCron != "" {
		m.scheduler.AddTask(NewRetentionSweepTask(retentionSvc, cfg.RetentionCron))
	} else {
		m.logger.Info("retention sweep task is disabled (cron not configured)")
	}

	if cfg.OrphanCron != "" {
		m.scheduler.AddTask(NewOrphanSweepTask(orphanSvc, cfg.OrphanCron, cfg.OrphanSweepDelete))
	} else {
		m.logger.Info("orphan sweep task is disabled (cron not configured)")
	}
}

// Start 启动所有已注册的任务
func (m *Manager) Start() error {
	return m.scheduler.Start()
}

// Stop 停止所有任务
func (m *Manager) Stop() {
	m.scheduler.Stop()
}
