package task

import (
	"context"

	"github.com/haierkeys/content-hub-service/internal/service"
)

// RetentionSweepTask 保留期清理任务
// 按用户等级的保留窗口删除过期历史行
type RetentionSweepTask struct {
	svc  service.RetentionService
	spec string
}

// NewRetentionSweepTask 创建保留期清理任务
func NewRetentionSweepTask(svc service.RetentionService, spec string) Task {
	return &RetentionSweepTask{svc: svc, spec: spec}
}

// Name 返回任务名称
func (t *RetentionSweepTask) Name() string {
	return "RetentionSweepTask"
}

// Run 执行一轮保留期清理
func (t *RetentionSweepTask) Run(ctx context.Context) error {
	_, err := t.svc.SweepOnce(ctx)
	return err
}

// CronSpec 返回 cron 表达式
func (t *RetentionSweepTask) CronSpec() string {
	return t.spec
}

// IsStartupRun 启动时不立即执行，避免与部署窗口的写入高峰重叠
func (t *RetentionSweepTask) IsStartupRun() bool {
	return false
}
