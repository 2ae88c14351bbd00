package domain

import (
	"context"
	"time"
)

// HistoryRepository 历史记录仓储接口
// 仓储层只提供追加与读取，不存在更新已写入行的方法
type HistoryRepository interface {
	// Create 追加一条历史记录
	// 版本唯一约束冲突时返回 ErrDuplicateVersion
	Create(ctx context.Context, record *HistoryRecord) (*HistoryRecord, error)

	// GetByID 根据ID获取历史记录
	GetByID(ctx context.Context, id string, uid int64) (*HistoryRecord, error)

	// GetByVersion 根据锚点和版本号获取历史记录
	GetByVersion(ctx context.Context, uid int64, ref EntityRef, version int64) (*HistoryRecord, error)

	// GetLatestVersion 获取锚点的最新版本号，无记录时返回 0
	GetLatestVersion(ctx context.Context, uid int64, ref EntityRef) (int64, error)

	// GetNearestSnapshotVersion 获取不大于 version 的最近快照版本号，无快照时返回 0
	GetNearestSnapshotVersion(ctx context.Context, uid int64, ref EntityRef, version int64) (int64, error)

	// ListVersionRange 按版本升序获取 [fromVersion, toVersion] 区间内的版本行
	ListVersionRange(ctx context.Context, uid int64, ref EntityRef, fromVersion, toVersion int64) ([]*HistoryRecord, error)

	// ListByUser 按创建时间倒序分页获取用户全部历史，entityType 为空时不过滤
	ListByUser(ctx context.Context, uid int64, entityType EntityType, page, pageSize int) ([]*HistoryRecord, int64, error)

	// ListByEntity 按版本倒序分页获取单个锚点的历史
	ListByEntity(ctx context.Context, uid int64, ref EntityRef, page, pageSize int) ([]*HistoryRecord, int64, error)

	// DeleteByEntity 删除锚点的全部历史（实体硬删除级联）
	DeleteByEntity(ctx context.Context, uid int64, ref EntityRef) (int64, error)

	// DeleteOlderThan 删除用户早于 cutoff 的历史记录，返回删除行数
	DeleteOlderThan(ctx context.Context, uid int64, cutoff time.Time) (int64, error)

	// CountOrphans 统计锚点实体已不存在的历史行数
	CountOrphans(ctx context.Context, entityType EntityType) (int64, error)

	// DeleteOrphans 删除锚点实体已不存在的历史行，返回删除行数
	DeleteOrphans(ctx context.Context, entityType EntityType) (int64, error)
}

// UserRepository 用户仓储接口
type UserRepository interface {
	// GetByUID 根据 UID 获取用户
	GetByUID(ctx context.Context, uid int64) (*User, error)

	// ListBatch 按 UID 升序分批获取用户
	ListBatch(ctx context.Context, offset, limit int) ([]*User, error)
}

// EntityRepository 实体存在性仓储接口
// 锚点没有外键约束，存在性通过显式查询判定
type EntityRepository interface {
	// Exists 检查实体行是否存在（含软删除行）
	Exists(ctx context.Context, uid int64, ref EntityRef) (bool, error)
}
