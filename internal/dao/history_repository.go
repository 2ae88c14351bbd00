package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/haierkeys/content-hub-service/internal/domain"
	"github.com/haierkeys/content-hub-service/internal/model"
	"github.com/haierkeys/content-hub-service/pkg/app"
	"github.com/haierkeys/content-hub-service/pkg/timex"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"
)

// historyRepository 实现 domain.HistoryRepository 接口
type historyRepository struct {
	dao *Dao
}

// NewHistoryRepository 创建 HistoryRepository 实例
func NewHistoryRepository(dao *Dao) domain.HistoryRepository {
	return &historyRepository{dao: dao}
}

// entityTableName 实体类型到锚点表名的映射
func entityTableName(t domain.EntityType) (string, error) {
	switch t {
	case domain.EntityTypeBookmark:
		return model.TableNameBookmark, nil
	case domain.EntityTypeNote:
		return model.TableNameNote, nil
	case domain.EntityTypePrompt:
		return model.TableNamePrompt, nil
	}
	return "", fmt.Errorf("unknown entity type: %s", t)
}

// toModel 将领域模型转换为数据库模型
func (r *historyRepository) toModel(h *domain.HistoryRecord) (*model.ContentHistory, error) {
	m := &model.ContentHistory{
		ID:               h.ID,
		UID:              h.UID,
		EntityType:       h.Entity.Type.String(),
		EntityID:         h.Entity.ID,
		Action:           h.Action.String(),
		MetadataSnapshot: h.MetadataSnapshot,
		Source:           h.Source,
		AuthType:         h.AuthType,
		TokenPrefix:      h.TokenPrefix,
		CreatedAt:        timex.Time(h.CreatedAt),
	}
	if h.HasVersion() {
		v := h.Version
		m.Version = &v
	}
	switch h.Payload.Kind() {
	case domain.PayloadSnapshot:
		content, _ := h.Payload.Snapshot()
		m.ContentSnapshot = &content
		m.HasSnapshot = true
	case domain.PayloadDiff:
		blob, _ := h.Payload.Diff()
		m.ContentDiff = &blob
	}
	if len(h.ChangedFields) > 0 {
		fields, err := sonic.MarshalString(h.ChangedFields)
		if err != nil {
			return nil, err
		}
		m.ChangedFields = fields
	}
	return m, nil
}

// toDomain 将数据库模型转换为领域模型
// 负载种类由列形态推导: 无版本号为审计行, delete 为墓碑行,
// 快照列非空为快照行, 其余为增量行
func (r *historyRepository) toDomain(m *model.ContentHistory) (*domain.HistoryRecord, error) {
	if m == nil {
		return nil, nil
	}
	h := &domain.HistoryRecord{
		ID:               m.ID,
		UID:              m.UID,
		Entity:           domain.EntityRef{Type: domain.EntityType(m.EntityType), ID: m.EntityID},
		Action:           domain.HistoryAction(m.Action),
		MetadataSnapshot: m.MetadataSnapshot,
		Source:           m.Source,
		AuthType:         m.AuthType,
		TokenPrefix:      m.TokenPrefix,
		CreatedAt:        time.Time(m.CreatedAt),
	}
	if m.Version != nil {
		h.Version = *m.Version
	}
	switch {
	case m.Version == nil:
		h.Payload = domain.AuditPayload()
	case h.Action == domain.ActionDelete:
		h.Payload = domain.TombstonePayload()
	case m.ContentSnapshot != nil:
		h.Payload = domain.SnapshotPayload(*m.ContentSnapshot)
	default:
		var blob string
		if m.ContentDiff != nil {
			blob = *m.ContentDiff
		}
		h.Payload = domain.DiffPayload(blob)
	}
	if m.ChangedFields != "" {
		if err := sonic.UnmarshalString(m.ChangedFields, &h.ChangedFields); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Create 追加一条历史记录
func (r *historyRepository) Create(ctx context.Context, record *domain.HistoryRecord) (*domain.HistoryRecord, error) {
	m, err := r.toModel(record)
	if err != nil {
		return nil, err
	}
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateVersion
		}
		return nil, err
	}
	return r.toDomain(m)
}

// GetByID 根据ID获取历史记录
func (r *historyRepository) GetByID(ctx context.Context, id string, uid int64) (*domain.HistoryRecord, error) {
	var m model.ContentHistory
	err := r.dao.db.WithContext(ctx).
		Where("id = ? AND uid = ?", id, uid).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m)
}

// GetByVersion 根据锚点和版本号获取历史记录
func (r *historyRepository) GetByVersion(ctx context.Context, uid int64, ref domain.EntityRef, version int64) (*domain.HistoryRecord, error) {
	var m model.ContentHistory
	err := r.anchorQuery(ctx, uid, ref).
		Where("version = ?", version).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m)
}

// GetLatestVersion 获取锚点的最新版本号，无记录时返回 0
func (r *historyRepository) GetLatestVersion(ctx context.Context, uid int64, ref domain.EntityRef) (int64, error) {
	var latest *int64
	err := r.anchorQuery(ctx, uid, ref).
		Select("MAX(version)").
		Scan(&latest).Error
	if err != nil {
		return 0, err
	}
	if latest == nil {
		return 0, nil
	}
	return *latest, nil
}

// GetNearestSnapshotVersion 获取不大于 version 的最近快照版本号，无快照时返回 0
func (r *historyRepository) GetNearestSnapshotVersion(ctx context.Context, uid int64, ref domain.EntityRef, version int64) (int64, error) {
	var nearest *int64
	err := r.anchorQuery(ctx, uid, ref).
		Select("MAX(version)").
		Where("has_snapshot = ? AND version <= ?", true, version).
		Scan(&nearest).Error
	if err != nil {
		return 0, err
	}
	if nearest == nil {
		return 0, nil
	}
	return *nearest, nil
}

// ListVersionRange 按版本升序获取区间内的版本行
func (r *historyRepository) ListVersionRange(ctx context.Context, uid int64, ref domain.EntityRef, fromVersion, toVersion int64) ([]*domain.HistoryRecord, error) {
	var modelList []*model.ContentHistory
	err := r.anchorQuery(ctx, uid, ref).
		Where("version >= ? AND version <= ?", fromVersion, toVersion).
		Order("version ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}
	return r.toDomainList(modelList)
}

// ListByUser 按创建时间倒序分页获取用户全部历史
func (r *historyRepository) ListByUser(ctx context.Context, uid int64, entityType domain.EntityType, page, pageSize int) ([]*domain.HistoryRecord, int64, error) {
	q := r.dao.db.WithContext(ctx).
		Model(&model.ContentHistory{}).
		Where("uid = ?", uid)
	if entityType != "" {
		q = q.Where("entity_type = ?", entityType.String())
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var modelList []*model.ContentHistory
	err := q.Order("created_at DESC, id DESC").
		Limit(pageSize).
		Offset(app.GetPageOffset(page, pageSize)).
		Find(&modelList).Error
	if err != nil {
		return nil, 0, err
	}

	results, err := r.toDomainList(modelList)
	if err != nil {
		return nil, 0, err
	}
	return results, count, nil
}

// ListByEntity 按版本倒序分页获取单个锚点的历史
// 审计行无版本号，排在版本行之后
func (r *historyRepository) ListByEntity(ctx context.Context, uid int64, ref domain.EntityRef, page, pageSize int) ([]*domain.HistoryRecord, int64, error) {
	q := r.anchorQuery(ctx, uid, ref)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var modelList []*model.ContentHistory
	err := q.Order("version IS NULL, version DESC, id DESC").
		Limit(pageSize).
		Offset(app.GetPageOffset(page, pageSize)).
		Find(&modelList).Error
	if err != nil {
		return nil, 0, err
	}

	results, err := r.toDomainList(modelList)
	if err != nil {
		return nil, 0, err
	}
	return results, count, nil
}

// DeleteByEntity 删除锚点的全部历史
func (r *historyRepository) DeleteByEntity(ctx context.Context, uid int64, ref domain.EntityRef) (int64, error) {
	res := r.anchorQuery(ctx, uid, ref).Delete(&model.ContentHistory{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// DeleteOlderThan 删除用户早于 cutoff 的历史记录，返回删除行数
func (r *historyRepository) DeleteOlderThan(ctx context.Context, uid int64, cutoff time.Time) (int64, error) {
	res := r.dao.db.WithContext(ctx).
		Where("uid = ? AND created_at < ?", uid, timex.Time(cutoff)).
		Delete(&model.ContentHistory{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// CountOrphans 统计锚点实体已不存在的历史行数
func (r *historyRepository) CountOrphans(ctx context.Context, entityType domain.EntityType) (int64, error) {
	table, err := entityTableName(entityType)
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.dao.db.WithContext(ctx).
		Model(&model.ContentHistory{}).
		Where("entity_type = ?", entityType.String()).
		Where(orphanPredicate(table)).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteOrphans 删除锚点实体已不存在的历史行，返回删除行数
func (r *historyRepository) DeleteOrphans(ctx context.Context, entityType domain.EntityType) (int64, error) {
	table, err := entityTableName(entityType)
	if err != nil {
		return 0, err
	}
	res := r.dao.db.WithContext(ctx).
		Where("entity_type = ?", entityType.String()).
		Where(orphanPredicate(table)).
		Delete(&model.ContentHistory{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// orphanPredicate 孤儿判定谓词，统计与删除使用同一条件
// 软删除行仍然存在于锚点表中，不视为孤儿
func orphanPredicate(table string) string {
	return fmt.Sprintf(
		"NOT EXISTS (SELECT 1 FROM %s e WHERE e.id = %s.entity_id AND e.uid = %s.uid)",
		table, model.TableNameContentHistory, model.TableNameContentHistory,
	)
}

// anchorQuery 构造单个锚点的基础查询
func (r *historyRepository) anchorQuery(ctx context.Context, uid int64, ref domain.EntityRef) *gorm.DB {
	return r.dao.db.WithContext(ctx).
		Model(&model.ContentHistory{}).
		Where("uid = ? AND entity_type = ? AND entity_id = ?", uid, ref.Type.String(), ref.ID)
}

// toDomainList 批量转换数据库模型
func (r *historyRepository) toDomainList(modelList []*model.ContentHistory) ([]*domain.HistoryRecord, error) {
	var results []*domain.HistoryRecord
	for _, m := range modelList {
		h, err := r.toDomain(m)
		if err != nil {
			return nil, err
		}
		results = append(results, h)
	}
	return results, nil
}

// 确保 historyRepository 实现了 domain.HistoryRepository 接口
var _ domain.HistoryRepository = (*historyRepository)(nil)
