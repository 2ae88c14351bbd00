package task

import (
	"context"

	"github.com/haierkeys/content-hub-service/internal/service"
)

// OrphanSweepTask 孤儿历史清理任务
// 默认只统计孤儿行数量，删除需显式开启
type OrphanSweepTask struct {
	svc  service.OrphanService
	spec string
	del  bool
}

// NewOrphanSweepTask 创建孤儿清理任务
func NewOrphanSweepTask(svc service.OrphanService, spec string, del bool) Task {
	return &OrphanSweepTask{svc: svc, spec: spec, del: del}
}

// Name 返回任务名称
func (t *OrphanSweepTask) Name() string {
	return "OrphanSweepTask"
}

// Run 执行一轮孤儿清理
func (t *OrphanSweepTask) Run(ctx context.Context) error {
	_, err := t.svc.Sweep(ctx, t.del)
	return err
}

// CronSpec 返回 cron 表达式
func (t *OrphanSweepTask) CronSpec() string {
	return t.spec
}

// IsStartupRun 是否启动时立即执行一次
func (t *OrphanSweepTask) IsStartupRun() bool {
	return false
}
