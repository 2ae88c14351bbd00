package service

import (
	"context"

	"github.com/haierkeys/content-hub-service/internal/domain"
	"github.com/haierkeys/content-hub-service/internal/dto"
	"github.com/haierkeys/content-hub-service/pkg/code"
	"github.com/haierkeys/content-hub-service/pkg/logger"

	"go.uber.org/zap"
)

// OrphanService defines the orphan history sweep interface
// OrphanService 定义孤儿历史清理接口
type OrphanService interface {
	// Sweep counts orphan history rows, and deletes them when del is true
	// Sweep 统计孤儿历史行，del 为 true 时执行删除
	Sweep(ctx context.Context, del bool) (*dto.SweepResultDTO, error)
}

// orphanService implementation of OrphanService interface
// orphanService 实现 OrphanService 接口
// 孤儿行：锚点实体行已被硬删除的历史行，软删除行不算
type orphanService struct {
	historyRepo domain.HistoryRepository // History repository // 历史记录仓库
	logger      *zap.Logger              // Logger // 日志对象
}

// NewOrphanService creates OrphanService instance
// NewOrphanService 创建 OrphanService 实例
func NewOrphanService(historyRepo domain.HistoryRepository, lg *zap.Logger) OrphanService {
	return &orphanService{historyRepo: historyRepo, logger: lg}
}

// Sweep counts orphan history rows, and deletes them when del is true
// Sweep 统计孤儿历史行，del 为 true 时执行删除
// 统计与删除使用同一判定谓词，默认只统计
func (s *orphanService) Sweep(ctx context.Context, del bool) (*dto.SweepResultDTO, error) {
	result := &dto.SweepResultDTO{
		PerEntity: map[string]int64{},
		DryRun:    !del,
	}

	for _, entityType := range domain.AllEntityTypes {
		var count int64
		var err error
		if del {
			count, err = s.historyRepo.DeleteOrphans(ctx, entityType)
		} else {
			count, err = s.historyRepo.CountOrphans(ctx, entityType)
		}
		if err != nil {
			return nil, code.ErrorDBQuery.WithDetails(err.Error())
		}
		result.PerEntity[entityType.String()] = count
		result.Deleted += count
	}

	if del {
		sweepDeletedTotal.WithLabelValues("orphan").Add(float64(result.Deleted))
	}
	s.logger.Info("orphan history sweep completed",
		zap.Bool("dryRun", result.DryRun),
		zap.Int64(logger.FieldDeleted, result.Deleted),
		zap.Any("perEntity", result.PerEntity),
	)
	return result, nil
}

// Verify orphanService implements OrphanService interface
// 确保 orphanService 实现了 OrphanService 接口
var _ OrphanService = (*orphanService)(nil)
