// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/haierkeys/content-hub-service/internal/domain"
	"github.com/haierkeys/content-hub-service/internal/dto"
	"github.com/haierkeys/content-hub-service/pkg/app"
	"github.com/haierkeys/content-hub-service/pkg/code"
	"github.com/haierkeys/content-hub-service/pkg/diff"
	"github.com/haierkeys/content-hub-service/pkg/logger"
	"github.com/haierkeys/content-hub-service/pkg/timex"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Provenance carries the write context captured from the request
// Provenance 记录写入来源上下文
type Provenance struct {
	Source      string // Client or subsystem name // 客户端或子系统名称
	AuthType    string // Authentication type // 认证类型
	TokenPrefix string // Token prefix for audit // 用于审计的 Token 前缀
}

// HistoryService defines the content history business service interface
// HistoryService 定义内容历史业务服务接口
type HistoryService interface {
	// RecordAction appends a history record for an entity action
	// RecordAction 为实体操作追加一条历史记录
	RecordAction(ctx context.Context, uid int64, params *dto.HistoryRecordRequest, prov Provenance) (*dto.HistoryRecordDTO, error)

	// Get retrieves history record details for a specified ID
	// Get 获取指定 ID 的历史记录详情
	Get(ctx context.Context, uid int64, id string) (*dto.HistoryRecordDTO, error)

	// GetVersion retrieves the history record at a specific version
	// GetVersion 获取锚点指定版本的历史记录
	GetVersion(ctx context.Context, uid int64, params *dto.HistoryVersionRequest) (*dto.HistoryRecordDTO, error)

	// ListByUser retrieves history across all entities of a user
	// ListByUser 获取用户全部实体的历史列表
	ListByUser(ctx context.Context, uid int64, params *dto.HistoryListRequest, pager *app.Pager) ([]*dto.HistoryNoContentDTO, int64, error)

	// ListByEntity retrieves the history chain of a single entity
	// ListByEntity 获取单个实体的历史链
	ListByEntity(ctx context.Context, uid int64, params *dto.EntityHistoryListRequest, pager *app.Pager) ([]*dto.HistoryNoContentDTO, int64, error)

	// Reconstruct rebuilds the full content at a version
	// Reconstruct 重建指定版本的完整内容
	Reconstruct(ctx context.Context, uid int64, params *dto.HistoryReconstructRequest) (*dto.HistoryReconstructDTO, error)

	// DeleteEntityHistory removes the whole history chain of an entity (hard delete cascade)
	// DeleteEntityHistory 删除实体的全部历史链（硬删除级联）
	DeleteEntityHistory(ctx context.Context, uid int64, params *dto.EntityHistoryListRequest) (int64, error)
}

// historyService implementation of HistoryService interface
// historyService 实现 HistoryService 接口
type historyService struct {
	historyRepo domain.HistoryRepository // History repository // 历史记录仓库
	entityRepo  domain.EntityRepository  // Entity existence repository // 实体存在性仓库
	sf          *singleflight.Group      // Singleflight group // 并发请求合并组
	logger      *zap.Logger              // Logger // 日志对象
	config      *AppServiceConfig        // Service configuration // 服务配置
	now         func() time.Time         // Clock, injectable for tests // 时钟
}

// NewHistoryService creates HistoryService instance
// NewHistoryService 创建 HistoryService 实例
func NewHistoryService(historyRepo domain.HistoryRepository, entityRepo domain.EntityRepository, lg *zap.Logger, config *AppServiceConfig) HistoryService {
	if config == nil {
		config = &AppServiceConfig{SnapshotInterval: 10}
	}
	if config.SnapshotInterval <= 0 {
		config.SnapshotInterval = 10
	}
	return &historyService{
		historyRepo: historyRepo,
		entityRepo:  entityRepo,
		sf:          &singleflight.Group{},
		logger:      lg,
		config:      config,
		now:         time.Now,
	}
}

// payloadKindName 负载种类对应的对外名称
func payloadKindName(k domain.PayloadKind) string {
	switch k {
	case domain.PayloadSnapshot:
		return "snapshot"
	case domain.PayloadDiff:
		return "diff"
	case domain.PayloadTombstone:
		return "tombstone"
	}
	return "audit"
}

// domainToDTO converts domain model to DTO
// domainToDTO 将领域模型转换为 DTO
func (s *historyService) domainToDTO(h *domain.HistoryRecord) *dto.HistoryRecordDTO {
	if h == nil {
		return nil
	}
	d := &dto.HistoryRecordDTO{
		ID:            h.ID,
		EntityType:    h.Entity.Type.String(),
		EntityID:      h.Entity.ID,
		Action:        h.Action.String(),
		Version:       h.Version,
		PayloadKind:   payloadKindName(h.Payload.Kind()),
		ChangedFields: h.ChangedFields,
		Source:        h.Source,
		AuthType:      h.AuthType,
		TokenPrefix:   h.TokenPrefix,
		CreatedAt:     timex.Time(h.CreatedAt),
	}
	_, d.HasSnapshot = h.Payload.Snapshot()
	if h.MetadataSnapshot != "" {
		var metadata interface{}
		if err := sonic.UnmarshalString(h.MetadataSnapshot, &metadata); err == nil {
			d.MetadataSnapshot = metadata
		}
	}
	return d
}

// domainToNoContentDTO converts domain model to DTO without content
// domainToNoContentDTO 将领域模型转换为不含内容的 DTO
func (s *historyService) domainToNoContentDTO(h *domain.HistoryRecord) *dto.HistoryNoContentDTO {
	if h == nil {
		return nil
	}
	d := &dto.HistoryNoContentDTO{
		ID:            h.ID,
		EntityType:    h.Entity.Type.String(),
		EntityID:      h.Entity.ID,
		Action:        h.Action.String(),
		Version:       h.Version,
		ChangedFields: h.ChangedFields,
		Source:        h.Source,
		CreatedAt:     timex.Time(h.CreatedAt),
	}
	_, d.HasSnapshot = h.Payload.Snapshot()
	return d
}

// parseAnchor 解析并校验锚点参数
func parseAnchor(entityType string, entityID int64) (domain.EntityRef, error) {
	t, ok := domain.ParseEntityType(entityType)
	if !ok {
		return domain.EntityRef{}, code.ErrorInvalidEntity.WithDetails("unknown entity type: " + entityType)
	}
	if entityID <= 0 {
		return domain.EntityRef{}, code.ErrorInvalidEntity.WithDetails("invalid entity id")
	}
	return domain.EntityRef{Type: t, ID: entityID}, nil
}

// newHistoryID 生成时间有序的历史记录 ID
func newHistoryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// RecordAction appends a history record for an entity action
// RecordAction 为实体操作追加一条历史记录
// 版本行通过读取最新版本号后写入 +1 实现 CAS，唯一约束冲突时重试一次
func (s *historyService) RecordAction(ctx context.Context, uid int64, params *dto.HistoryRecordRequest, prov Provenance) (*dto.HistoryRecordDTO, error) {
	ref, err := parseAnchor(params.EntityType, params.EntityID)
	if err != nil {
		return nil, err
	}
	action := domain.HistoryAction(params.Action)
	if !action.IsValid() {
		return nil, code.ErrorInvalidParams.WithDetails("unknown action: " + params.Action)
	}

	exists, err := s.entityRepo.Exists(ctx, uid, ref)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if !exists {
		return nil, code.ErrorInvalidEntity.WithDetails(fmt.Sprintf("%s %d does not exist", ref.Type, ref.ID))
	}

	var metadata string
	if params.Metadata != nil {
		metadata, err = sonic.MarshalString(params.Metadata)
		if err != nil {
			return nil, code.ErrorInvalidParams.WithDetails(err.Error())
		}
	}

	base := &domain.HistoryRecord{
		UID:              uid,
		Entity:           ref,
		Action:           action,
		MetadataSnapshot: metadata,
		ChangedFields:    params.ChangedFields,
		Source:           prov.Source,
		AuthType:         prov.AuthType,
		TokenPrefix:      prov.TokenPrefix,
	}

	// 审计事件不占用版本号，无唯一约束竞争
	if action.IsAudit() {
		record := *base
		record.ID = newHistoryID()
		record.Payload = domain.AuditPayload()
		record.CreatedAt = s.now()
		created, err := s.historyRepo.Create(ctx, &record)
		if err != nil {
			return nil, code.ErrorHistoryRecord.WithDetails(err.Error())
		}
		historyActionsTotal.WithLabelValues(action.String()).Inc()
		return s.domainToDTO(created), nil
	}

	for attempt := 0; attempt < 2; attempt++ {
		record, err := s.buildVersionedRecord(ctx, uid, ref, base, params.Content)
		if err != nil {
			return nil, err
		}
		created, err := s.historyRepo.Create(ctx, record)
		if err == nil {
			historyActionsTotal.WithLabelValues(action.String()).Inc()
			return s.domainToDTO(created), nil
		}
		if !errors.Is(err, domain.ErrDuplicateVersion) {
			return nil, code.ErrorHistoryRecord.WithDetails(err.Error())
		}
		// 输掉版本竞争，重读最新版本号后重试一次
		versionConflictsTotal.Inc()
		s.logger.Warn("history version race lost, retrying",
			zap.Int64(logger.FieldUID, uid),
			zap.String(logger.FieldEntityType, ref.Type.String()),
			zap.Int64(logger.FieldEntityID, ref.ID),
			zap.Int64(logger.FieldVersion, record.Version),
		)
	}
	return nil, code.ErrorVersionConflict
}

// buildVersionedRecord 构造一条占用版本号的记录
func (s *historyService) buildVersionedRecord(ctx context.Context, uid int64, ref domain.EntityRef, base *domain.HistoryRecord, content string) (*domain.HistoryRecord, error) {
	latest, err := s.historyRepo.GetLatestVersion(ctx, uid, ref)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	record := *base
	record.ID = newHistoryID()
	record.Version = latest + 1
	record.CreatedAt = s.now()

	if record.Action == domain.ActionDelete {
		record.Payload = domain.TombstonePayload()
		return &record, nil
	}

	payload, err := s.contentPayload(ctx, uid, ref, latest, record.Version, content)
	if err != nil {
		return nil, err
	}
	record.Payload = payload
	return &record, nil
}

// contentPayload 决定版本行以快照还是反向补丁落盘
// 快照策略: 链上首行、create 行、墓碑之后的首个内容行、
// 距上一快照达到间隔阈值时强制快照，其余存反向补丁
func (s *historyService) contentPayload(ctx context.Context, uid int64, ref domain.EntityRef, latest, newVersion int64, content string) (domain.ContentPayload, error) {
	if latest == 0 || newVersion-s.lastSnapshotVersion(ctx, uid, ref, latest) >= int64(s.config.SnapshotInterval) {
		return domain.SnapshotPayload(content), nil
	}

	prev, err := s.historyRepo.GetByVersion(ctx, uid, ref, latest)
	if err != nil {
		return domain.ContentPayload{}, code.ErrorDBQuery.WithDetails(err.Error())
	}
	// 墓碑之后的首个内容行必须是快照，反向链在删除处断开
	if prev.Payload.Kind() == domain.PayloadTombstone {
		return domain.SnapshotPayload(content), nil
	}

	prevContent, deleted, warnings, err := s.reconstructAt(ctx, uid, ref, latest)
	if err != nil || deleted || len(warnings) > 0 {
		s.snapshotFallback(uid, ref, newVersion, "previous content unavailable", err)
		return domain.SnapshotPayload(content), nil
	}

	patch, err := diff.MakeReversePatch(prevContent, content)
	if err != nil {
		s.snapshotFallback(uid, ref, newVersion, "reverse patch build failed", err)
		return domain.SnapshotPayload(content), nil
	}

	// 写入前验证补丁能精确还原上一版本，验证失败降级为快照
	restored, err := diff.ApplyReversePatch(content, patch)
	if err != nil || restored != prevContent {
		s.snapshotFallback(uid, ref, newVersion, "reverse patch failed round-trip verification", err)
		return domain.SnapshotPayload(content), nil
	}

	return domain.DiffPayload(patch), nil
}

// lastSnapshotVersion 获取不大于 latest 的最近快照版本，查询失败按 0 处理
func (s *historyService) lastSnapshotVersion(ctx context.Context, uid int64, ref domain.EntityRef, latest int64) int64 {
	v, err := s.historyRepo.GetNearestSnapshotVersion(ctx, uid, ref, latest)
	if err != nil {
		return 0
	}
	return v
}

func (s *historyService) snapshotFallback(uid int64, ref domain.EntityRef, version int64, reason string, err error) {
	snapshotFallbacksTotal.Inc()
	s.logger.Warn("storing snapshot instead of diff: "+reason,
		zap.Int64(logger.FieldUID, uid),
		zap.String(logger.FieldEntityType, ref.Type.String()),
		zap.Int64(logger.FieldEntityID, ref.ID),
		zap.Int64(logger.FieldVersion, version),
		zap.Error(err),
	)
}

// Get retrieves history record details for a specified ID
// Get 获取指定 ID 的历史记录详情
func (s *historyService) Get(ctx context.Context, uid int64, id string) (*dto.HistoryRecordDTO, error) {
	record, err := s.historyRepo.GetByID(ctx, id, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorHistoryNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return s.domainToDTO(record), nil
}

// GetVersion retrieves the history record at a specific version
// GetVersion 获取锚点指定版本的历史记录
func (s *historyService) GetVersion(ctx context.Context, uid int64, params *dto.HistoryVersionRequest) (*dto.HistoryRecordDTO, error) {
	ref, err := parseAnchor(params.EntityType, params.EntityID)
	if err != nil {
		return nil, err
	}
	record, err := s.historyRepo.GetByVersion(ctx, uid, ref, params.Version)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.versionNotFound(ctx, uid, ref)
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return s.domainToDTO(record), nil
}

// versionNotFound 区分整条链不存在与单个版本不存在
func (s *historyService) versionNotFound(ctx context.Context, uid int64, ref domain.EntityRef) error {
	latest, err := s.historyRepo.GetLatestVersion(ctx, uid, ref)
	if err == nil && latest == 0 {
		return code.ErrorHistoryNotFound
	}
	return code.ErrorVersionNotFound
}

// ListByUser retrieves history across all entities of a user
// ListByUser 获取用户全部实体的历史列表
func (s *historyService) ListByUser(ctx context.Context, uid int64, params *dto.HistoryListRequest, pager *app.Pager) ([]*dto.HistoryNoContentDTO, int64, error) {
	var entityType domain.EntityType
	if params.EntityType != "" {
		t, ok := domain.ParseEntityType(params.EntityType)
		if !ok {
			return nil, 0, code.ErrorInvalidEntity.WithDetails("unknown entity type: " + params.EntityType)
		}
		entityType = t
	}

	records, count, err := s.historyRepo.ListByUser(ctx, uid, entityType, pager.Page, pager.PageSize)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}

	var results []*dto.HistoryNoContentDTO
	for _, h := range records {
		results = append(results, s.domainToNoContentDTO(h))
	}
	return results, count, nil
}

// ListByEntity retrieves the history chain of a single entity
// ListByEntity 获取单个实体的历史链
func (s *historyService) ListByEntity(ctx context.Context, uid int64, params *dto.EntityHistoryListRequest, pager *app.Pager) ([]*dto.HistoryNoContentDTO, int64, error) {
	ref, err := parseAnchor(params.EntityType, params.EntityID)
	if err != nil {
		return nil, 0, err
	}

	records, count, err := s.historyRepo.ListByEntity(ctx, uid, ref, pager.Page, pager.PageSize)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}

	var results []*dto.HistoryNoContentDTO
	for _, h := range records {
		results = append(results, s.domainToNoContentDTO(h))
	}
	return results, count, nil
}

// Reconstruct rebuilds the full content at a version
// Reconstruct 重建指定版本的完整内容
// 相同版本的并发重建通过 singleflight 合并为一次计算
func (s *historyService) Reconstruct(ctx context.Context, uid int64, params *dto.HistoryReconstructRequest) (*dto.HistoryReconstructDTO, error) {
	ref, err := parseAnchor(params.EntityType, params.EntityID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("reconstruct:%d:%s:%d:%d", uid, ref.Type, ref.ID, params.Version)
	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.reconstructDTO(ctx, uid, ref, params.Version)
	})
	if err != nil {
		return nil, err
	}
	return result.(*dto.HistoryReconstructDTO), nil
}

func (s *historyService) reconstructDTO(ctx context.Context, uid int64, ref domain.EntityRef, version int64) (*dto.HistoryReconstructDTO, error) {
	content, deleted, warnings, err := s.reconstructAt(ctx, uid, ref, version)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.versionNotFound(ctx, uid, ref)
		}
		var c *code.Code
		if errors.As(err, &c) {
			return nil, err
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	d := &dto.HistoryReconstructDTO{
		EntityType: ref.Type.String(),
		EntityID:   ref.ID,
		Version:    version,
		Deleted:    deleted,
		Warnings:   warnings,
	}
	if !deleted {
		d.Content = &content
	}
	return d, nil
}

// reconstructAt 重建锚点在指定版本的内容
// 以不大于目标版本的最近快照为种子，沿版本链向上逐行
// 反演应用补丁，补丁损坏时收集警告并尽力继续
func (s *historyService) reconstructAt(ctx context.Context, uid int64, ref domain.EntityRef, version int64) (string, bool, []string, error) {
	target, err := s.historyRepo.GetByVersion(ctx, uid, ref, version)
	if err != nil {
		return "", false, nil, err
	}

	switch target.Payload.Kind() {
	case domain.PayloadTombstone:
		return "", true, nil, nil
	case domain.PayloadSnapshot:
		snapshot, _ := target.Payload.Snapshot()
		return snapshot, false, nil, nil
	}

	snapVersion, err := s.historyRepo.GetNearestSnapshotVersion(ctx, uid, ref, version)
	if err != nil {
		return "", false, nil, err
	}
	if snapVersion == 0 {
		return "", false, nil, code.ErrorHistoryRecord.WithDetails(
			fmt.Sprintf("no snapshot at or below version %d", version))
	}

	rows, err := s.historyRepo.ListVersionRange(ctx, uid, ref, snapVersion, version)
	if err != nil {
		return "", false, nil, err
	}

	var content string
	var warnings []string
	seeded := false
	for _, row := range rows {
		if !seeded {
			snapshot, ok := row.Payload.Snapshot()
			if !ok {
				return "", false, nil, code.ErrorHistoryRecord.WithDetails(
					fmt.Sprintf("version %d expected to be a snapshot", row.Version))
			}
			content = snapshot
			seeded = true
			continue
		}
		switch row.Payload.Kind() {
		case domain.PayloadSnapshot:
			content, _ = row.Payload.Snapshot()
		case domain.PayloadTombstone:
			content = ""
			warnings = append(warnings, fmt.Sprintf("tombstone inside reconstruction range at version %d", row.Version))
		case domain.PayloadDiff:
			blob, _ := row.Payload.Diff()
			next, err := diff.ReapplyReversePatch(content, blob)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("patch for version %d could not be applied: %v", row.Version, err))
				continue
			}
			content = next
		}
	}
	return content, false, warnings, nil
}

// DeleteEntityHistory removes the whole history chain of an entity
// DeleteEntityHistory 删除实体的全部历史链
func (s *historyService) DeleteEntityHistory(ctx context.Context, uid int64, params *dto.EntityHistoryListRequest) (int64, error) {
	ref, err := parseAnchor(params.EntityType, params.EntityID)
	if err != nil {
		return 0, err
	}
	deleted, err := s.historyRepo.DeleteByEntity(ctx, uid, ref)
	if err != nil {
		return 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	s.logger.Info("entity history chain deleted",
		zap.Int64(logger.FieldUID, uid),
		zap.String(logger.FieldEntityType, ref.Type.String()),
		zap.Int64(logger.FieldEntityID, ref.ID),
		zap.Int64(logger.FieldDeleted, deleted),
	)
	return deleted, nil
}

// Verify historyService implements HistoryService interface
// 确保 historyService 实现了 HistoryService 接口
var _ HistoryService = (*historyService)(nil)
