package dao

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/haierkeys/content-hub-service/internal/domain"
	"github.com/haierkeys/content-hub-service/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// newTestDao 创建基于内存 SQLite 的 Dao 实例
func newTestDao(t *testing.T) *Dao {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrateAll(db))
	return New(db, zap.NewNop())
}

var testRecordSeq int

// newTestRecord 构造一条待写入的历史记录
func newTestRecord(uid int64, ref domain.EntityRef, action domain.HistoryAction, version int64, payload domain.ContentPayload, createdAt time.Time) *domain.HistoryRecord {
	testRecordSeq++
	return &domain.HistoryRecord{
		ID:        fmt.Sprintf("test-history-%04d", testRecordSeq),
		UID:       uid,
		Entity:    ref,
		Action:    action,
		Version:   version,
		Payload:   payload,
		Source:    "Web",
		CreatedAt: createdAt,
	}
}

func TestHistoryRepository_CreateAndVersionLookup(t *testing.T) {
	d := newTestDao(t)
	repo := NewHistoryRepository(d)
	ctx := context.Background()

	uid := int64(1)
	ref := domain.EntityRef{Type: domain.EntityTypeNote, ID: 10}
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	// 空历史链的最新版本为 0
	latest, err := repo.GetLatestVersion(ctx, uid, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(0), latest)

	// v1 快照，v2 增量，v3 墓碑，外加一条无版本的审计行
	_, err = repo.Create(ctx, newTestRecord(uid, ref, domain.ActionCreate, 1, domain.SnapshotPayload("hello"), base))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTestRecord(uid, ref, domain.ActionUpdate, 2, domain.DiffPayload("@@ patch @@"), base.Add(time.Minute)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTestRecord(uid, ref, domain.ActionArchive, 0, domain.AuditPayload(), base.Add(2*time.Minute)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTestRecord(uid, ref, domain.ActionDelete, 3, domain.TombstonePayload(), base.Add(3*time.Minute)))
	require.NoError(t, err)

	// 审计行不占用版本号
	latest, err = repo.GetLatestVersion(ctx, uid, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(3), latest)

	// 最近快照查找
	nearest, err := repo.GetNearestSnapshotVersion(ctx, uid, ref, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), nearest)

	// 各版本的负载种类由列形态推导
	v1, err := repo.GetByVersion(ctx, uid, ref, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.PayloadSnapshot, v1.Payload.Kind())
	content, ok := v1.Payload.Snapshot()
	assert.True(t, ok)
	assert.Equal(t, "hello", content)

	v2, err := repo.GetByVersion(ctx, uid, ref, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.PayloadDiff, v2.Payload.Kind())

	v3, err := repo.GetByVersion(ctx, uid, ref, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.PayloadTombstone, v3.Payload.Kind())

	// 按 ID 读取时校验归属用户
	byID, err := repo.GetByID(ctx, v1.ID, uid)
	require.NoError(t, err)
	assert.Equal(t, v1.Version, byID.Version)
	_, err = repo.GetByID(ctx, v1.ID, uid+1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// 版本号重复写入返回 ErrDuplicateVersion
	_, err = repo.Create(ctx, newTestRecord(uid, ref, domain.ActionUpdate, 3, domain.DiffPayload("@@ dup @@"), base.Add(4*time.Minute)))
	assert.ErrorIs(t, err, domain.ErrDuplicateVersion)

	// 另一个锚点的版本号互不影响
	other := domain.EntityRef{Type: domain.EntityTypeNote, ID: 11}
	_, err = repo.Create(ctx, newTestRecord(uid, other, domain.ActionCreate, 1, domain.SnapshotPayload("other"), base))
	require.NoError(t, err)
}

func TestHistoryRepository_ListOrdering(t *testing.T) {
	d := newTestDao(t)
	repo := NewHistoryRepository(d)
	ctx := context.Background()

	uid := int64(2)
	ref := domain.EntityRef{Type: domain.EntityTypeBookmark, ID: 20}
	base := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, newTestRecord(uid, ref, domain.ActionCreate, 1, domain.SnapshotPayload("a"), base))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTestRecord(uid, ref, domain.ActionArchive, 0, domain.AuditPayload(), base.Add(time.Minute)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTestRecord(uid, ref, domain.ActionUpdate, 2, domain.DiffPayload("@@ p @@"), base.Add(2*time.Minute)))
	require.NoError(t, err)

	// ListByEntity 按版本倒序，审计行排在最后
	list, count, err := repo.ListByEntity(ctx, uid, ref, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	require.Len(t, list, 3)
	assert.Equal(t, int64(2), list[0].Version)
	assert.Equal(t, int64(1), list[1].Version)
	assert.Equal(t, domain.PayloadAudit, list[2].Payload.Kind())

	// ListVersionRange 按版本升序且不包含审计行
	rows, err := repo.ListVersionRange(ctx, uid, ref, 1, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].Version)
	assert.Equal(t, int64(2), rows[1].Version)

	// ListByUser 可按实体类型过滤
	noteRef := domain.EntityRef{Type: domain.EntityTypeNote, ID: 21}
	_, err = repo.Create(ctx, newTestRecord(uid, noteRef, domain.ActionCreate, 1, domain.SnapshotPayload("n"), base.Add(3*time.Minute)))
	require.NoError(t, err)

	_, count, err = repo.ListByUser(ctx, uid, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	filtered, count, err := repo.ListByUser(ctx, uid, domain.EntityTypeNote, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.Len(t, filtered, 1)
	assert.Equal(t, domain.EntityTypeNote, filtered[0].Entity.Type)
}

func TestHistoryRepository_DeleteOlderThan(t *testing.T) {
	d := newTestDao(t)
	repo := NewHistoryRepository(d)
	ctx := context.Background()

	uid := int64(3)
	ref := domain.EntityRef{Type: domain.EntityTypePrompt, ID: 30}
	cutoff := time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, newTestRecord(uid, ref, domain.ActionCreate, 1, domain.SnapshotPayload("old"), cutoff.Add(-time.Hour)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTestRecord(uid, ref, domain.ActionUpdate, 2, domain.DiffPayload("@@ p @@"), cutoff))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTestRecord(uid, ref, domain.ActionUpdate, 3, domain.DiffPayload("@@ q @@"), cutoff.Add(time.Hour)))
	require.NoError(t, err)

	// 严格早于 cutoff 的行才被删除
	deleted, err := repo.DeleteOlderThan(ctx, uid, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, count, err := repo.ListByEntity(ctx, uid, ref, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestHistoryRepository_DeleteByEntity(t *testing.T) {
	d := newTestDao(t)
	repo := NewHistoryRepository(d)
	ctx := context.Background()

	uid := int64(4)
	ref := domain.EntityRef{Type: domain.EntityTypeNote, ID: 40}
	keep := domain.EntityRef{Type: domain.EntityTypeNote, ID: 41}
	base := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, newTestRecord(uid, ref, domain.ActionCreate, 1, domain.SnapshotPayload("x"), base))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTestRecord(uid, ref, domain.ActionUpdate, 2, domain.DiffPayload("@@ p @@"), base.Add(time.Minute)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTestRecord(uid, keep, domain.ActionCreate, 1, domain.SnapshotPayload("y"), base))
	require.NoError(t, err)

	deleted, err := repo.DeleteByEntity(ctx, uid, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, count, err := repo.ListByEntity(ctx, uid, keep, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestHistoryRepository_OrphanSweep(t *testing.T) {
	d := newTestDao(t)
	repo := NewHistoryRepository(d)
	ctx := context.Background()

	uid := int64(5)
	base := time.Date(2026, 5, 5, 10, 0, 0, 0, time.UTC)

	// 存活锚点与软删除锚点都视为存在
	live := &model.Bookmark{UID: uid, Title: "live", URL: "https://example.com/1"}
	require.NoError(t, d.db.Create(live).Error)
	softDeleted := &model.Bookmark{UID: uid, Title: "soft", URL: "https://example.com/2", IsDeleted: 1}
	require.NoError(t, d.db.Create(softDeleted).Error)

	liveRef := domain.EntityRef{Type: domain.EntityTypeBookmark, ID: live.ID}
	softRef := domain.EntityRef{Type: domain.EntityTypeBookmark, ID: softDeleted.ID}
	goneRef := domain.EntityRef{Type: domain.EntityTypeBookmark, ID: 9999}

	_, err := repo.Create(ctx, newTestRecord(uid, liveRef, domain.ActionCreate, 1, domain.SnapshotPayload("a"), base))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTestRecord(uid, softRef, domain.ActionCreate, 1, domain.SnapshotPayload("b"), base))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTestRecord(uid, goneRef, domain.ActionCreate, 1, domain.SnapshotPayload("c"), base))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTestRecord(uid, goneRef, domain.ActionUpdate, 2, domain.DiffPayload("@@ p @@"), base.Add(time.Minute)))
	require.NoError(t, err)

	// 统计与删除使用同一判定谓词
	count, err := repo.CountOrphans(ctx, domain.EntityTypeBookmark)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	deleted, err := repo.DeleteOrphans(ctx, domain.EntityTypeBookmark)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	// 剩下的行都有存活锚点，再次清理无事可做
	count, err = repo.CountOrphans(ctx, domain.EntityTypeBookmark)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	_, total, err := repo.ListByUser(ctx, uid, domain.EntityTypeBookmark, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
