package service

import (
	"context"
	"time"

	"github.com/haierkeys/content-hub-service/internal/domain"
	"github.com/haierkeys/content-hub-service/internal/dto"
	"github.com/haierkeys/content-hub-service/pkg/code"
	"github.com/haierkeys/content-hub-service/pkg/logger"

	"go.uber.org/zap"
)

// defaultRetentionUserBatchSize 保留期清理的默认用户批次大小
const defaultRetentionUserBatchSize = 100

// RetentionService defines the history retention sweep interface
// RetentionService 定义历史保留期清理接口
type RetentionService interface {
	// SweepOnce runs one full retention sweep across all users
	// SweepOnce 对全部用户执行一轮保留期清理
	SweepOnce(ctx context.Context) (*dto.SweepResultDTO, error)
}

// retentionService implementation of RetentionService interface
// retentionService 实现 RetentionService 接口
type retentionService struct {
	historyRepo domain.HistoryRepository // History repository // 历史记录仓库
	userRepo    domain.UserRepository    // User repository // 用户仓库
	logger      *zap.Logger              // Logger // 日志对象
	config      *AppServiceConfig        // Service configuration // 服务配置
	now         func() time.Time         // Clock, injectable for tests // 时钟
}

// NewRetentionService creates RetentionService instance
// NewRetentionService 创建 RetentionService 实例
func NewRetentionService(historyRepo domain.HistoryRepository, userRepo domain.UserRepository, lg *zap.Logger, config *AppServiceConfig) RetentionService {
	if config == nil {
		config = &AppServiceConfig{}
	}
	return &retentionService{
		historyRepo: historyRepo,
		userRepo:    userRepo,
		logger:      lg,
		config:      config,
		now:         time.Now,
	}
}

// SweepOnce runs one full retention sweep across all users
// SweepOnce 对全部用户执行一轮保留期清理
// 用户按批次遍历，单个用户失败不中断整轮清理
func (s *retentionService) SweepOnce(ctx context.Context) (*dto.SweepResultDTO, error) {
	batchSize := s.config.RetentionUserBatchSize
	if batchSize <= 0 {
		batchSize = defaultRetentionUserBatchSize
	}

	result := &dto.SweepResultDTO{PerUser: map[int64]int64{}}
	now := s.now()

	for offset := 0; ; offset += batchSize {
		users, err := s.userRepo.ListBatch(ctx, offset, batchSize)
		if err != nil {
			return nil, code.ErrorDBQuery.WithDetails(err.Error())
		}
		if len(users) == 0 {
			break
		}

		for _, user := range users {
			result.UsersScanned++

			days := s.config.retentionDaysFor(user.Tier)
			// 保留天数为 0 表示该等级永久保留
			if days <= 0 {
				continue
			}

			cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
			deleted, err := s.historyRepo.DeleteOlderThan(ctx, user.UID, cutoff)
			if err != nil {
				s.logger.Error("retention sweep failed for user",
					zap.Int64(logger.FieldUID, user.UID),
					zap.String("tier", user.Tier),
					zap.Error(err),
				)
				continue
			}
			if deleted > 0 {
				result.PerUser[user.UID] = deleted
				result.Deleted += deleted
			}
		}

		if len(users) < batchSize {
			break
		}
	}

	sweepDeletedTotal.WithLabelValues("retention").Add(float64(result.Deleted))
	s.logger.Info("history retention sweep completed",
		zap.Int64("usersScanned", result.UsersScanned),
		zap.Int64(logger.FieldDeleted, result.Deleted),
	)
	return result, nil
}

// Verify retentionService implements RetentionService interface
// 确保 retentionService 实现了 RetentionService 接口
var _ RetentionService = (*retentionService)(nil)
