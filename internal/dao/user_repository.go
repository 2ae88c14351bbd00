package dao

import (
	"context"

	"github.com/haierkeys/content-hub-service/internal/domain"
	"github.com/haierkeys/content-hub-service/internal/model"
	"github.com/haierkeys/content-hub-service/pkg/convert"
)

// userRepository 实现 domain.UserRepository 接口
type userRepository struct {
	dao *Dao
}

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(dao *Dao) domain.UserRepository {
	return &userRepository{dao: dao}
}

// toDomain 将数据库模型转换为领域模型
func (r *userRepository) toDomain(m *model.User) *domain.User {
	if m == nil {
		return nil
	}
	u := &domain.User{}
	if err := convert.CopyStruct(u, m); err != nil {
		return nil
	}
	return u
}

// GetByUID 根据 UID 获取用户
func (r *userRepository) GetByUID(ctx context.Context, uid int64) (*domain.User, error) {
	var m model.User
	err := r.dao.db.WithContext(ctx).
		Where("uid = ? AND is_deleted = ?", uid, 0).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// ListBatch 按 UID 升序分批获取用户
func (r *userRepository) ListBatch(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	var modelList []*model.User
	err := r.dao.db.WithContext(ctx).
		Where("is_deleted = ?", 0).
		Order("uid ASC").
		Offset(offset).
		Limit(limit).
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}
	results := make([]*domain.User, 0, len(modelList))
	for _, m := range modelList {
		results = append(results, r.toDomain(m))
	}
	return results, nil
}

// 确保 userRepository 实现了 domain.UserRepository 接口
var _ domain.UserRepository = (*userRepository)(nil)
