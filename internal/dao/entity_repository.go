package dao

import (
	"context"
	"fmt"

	"github.com/haierkeys/content-hub-service/internal/domain"
)

// entityRepository 实现 domain.EntityRepository 接口
// 锚点实体与历史账本之间没有外键约束，存在性通过显式查询判定
type entityRepository struct {
	dao *Dao
}

// NewEntityRepository 创建 EntityRepository 实例
func NewEntityRepository(dao *Dao) domain.EntityRepository {
	return &entityRepository{dao: dao}
}

// Exists 检查实体行是否存在，软删除行视为存在
func (r *entityRepository) Exists(ctx context.Context, uid int64, ref domain.EntityRef) (bool, error) {
	table, err := entityTableName(ref.Type)
	if err != nil {
		return false, err
	}
	var count int64
	err = r.dao.db.WithContext(ctx).
		Table(table).
		Where("id = ? AND uid = ?", ref.ID, uid).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check entity existence: %w", err)
	}
	return count > 0, nil
}

// 确保 entityRepository 实现了 domain.EntityRepository 接口
var _ domain.EntityRepository = (*entityRepository)(nil)
