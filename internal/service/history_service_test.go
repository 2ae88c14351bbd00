package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/haierkeys/content-hub-service/internal/domain"
	"github.com/haierkeys/content-hub-service/internal/dto"
	"github.com/haierkeys/content-hub-service/pkg/code"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// --- Mocks ---

// memHistoryRepo in-memory history repository enforcing the version unique constraint
type memHistoryRepo struct {
	records     []*domain.HistoryRecord
	failCreates int // pending Creates to fail with ErrDuplicateVersion
}

func (m *memHistoryRepo) Create(ctx context.Context, r *domain.HistoryRecord) (*domain.HistoryRecord, error) {
	if m.failCreates > 0 {
		m.failCreates--
		return nil, domain.ErrDuplicateVersion
	}
	if r.HasVersion() {
		for _, e := range m.records {
			if e.UID == r.UID && e.Entity == r.Entity && e.HasVersion() && e.Version == r.Version {
				return nil, domain.ErrDuplicateVersion
			}
		}
	}
	cp := *r
	m.records = append(m.records, &cp)
	return &cp, nil
}

func (m *memHistoryRepo) GetByID(ctx context.Context, id string, uid int64) (*domain.HistoryRecord, error) {
	for _, e := range m.records {
		if e.ID == id && e.UID == uid {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memHistoryRepo) GetByVersion(ctx context.Context, uid int64, ref domain.EntityRef, version int64) (*domain.HistoryRecord, error) {
	for _, e := range m.records {
		if e.UID == uid && e.Entity == ref && e.HasVersion() && e.Version == version {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memHistoryRepo) GetLatestVersion(ctx context.Context, uid int64, ref domain.EntityRef) (int64, error) {
	var latest int64
	for _, e := range m.records {
		if e.UID == uid && e.Entity == ref && e.Version > latest {
			latest = e.Version
		}
	}
	return latest, nil
}

func (m *memHistoryRepo) GetNearestSnapshotVersion(ctx context.Context, uid int64, ref domain.EntityRef, version int64) (int64, error) {
	var nearest int64
	for _, e := range m.records {
		if e.UID == uid && e.Entity == ref && e.Payload.Kind() == domain.PayloadSnapshot &&
			e.Version <= version && e.Version > nearest {
			nearest = e.Version
		}
	}
	return nearest, nil
}

func (m *memHistoryRepo) ListVersionRange(ctx context.Context, uid int64, ref domain.EntityRef, fromVersion, toVersion int64) ([]*domain.HistoryRecord, error) {
	var rows []*domain.HistoryRecord
	for _, e := range m.records {
		if e.UID == uid && e.Entity == ref && e.HasVersion() && e.Version >= fromVersion && e.Version <= toVersion {
			rows = append(rows, e)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Version < rows[j].Version })
	return rows, nil
}

func (m *memHistoryRepo) ListByUser(ctx context.Context, uid int64, entityType domain.EntityType, page, pageSize int) ([]*domain.HistoryRecord, int64, error) {
	var rows []*domain.HistoryRecord
	for _, e := range m.records {
		if e.UID == uid && (entityType == "" || e.Entity.Type == entityType) {
			rows = append(rows, e)
		}
	}
	return rows, int64(len(rows)), nil
}

func (m *memHistoryRepo) ListByEntity(ctx context.Context, uid int64, ref domain.EntityRef, page, pageSize int) ([]*domain.HistoryRecord, int64, error) {
	var rows []*domain.HistoryRecord
	for _, e := range m.records {
		if e.UID == uid && e.Entity == ref {
			rows = append(rows, e)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Version > rows[j].Version })
	return rows, int64(len(rows)), nil
}

func (m *memHistoryRepo) DeleteByEntity(ctx context.Context, uid int64, ref domain.EntityRef) (int64, error) {
	var kept []*domain.HistoryRecord
	var deleted int64
	for _, e := range m.records {
		if e.UID == uid && e.Entity == ref {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	m.records = kept
	return deleted, nil
}

func (m *memHistoryRepo) DeleteOlderThan(ctx context.Context, uid int64, cutoff time.Time) (int64, error) {
	var kept []*domain.HistoryRecord
	var deleted int64
	for _, e := range m.records {
		if e.UID == uid && e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	m.records = kept
	return deleted, nil
}

func (m *memHistoryRepo) CountOrphans(ctx context.Context, entityType domain.EntityType) (int64, error) {
	return 0, nil
}

func (m *memHistoryRepo) DeleteOrphans(ctx context.Context, entityType domain.EntityType) (int64, error) {
	return 0, nil
}

// memEntityRepo treats every anchor as existing unless listed in missing
type memEntityRepo struct {
	missing map[domain.EntityRef]bool
}

func (m *memEntityRepo) Exists(ctx context.Context, uid int64, ref domain.EntityRef) (bool, error) {
	return !m.missing[ref], nil
}

func newTestHistoryService(repo *memHistoryRepo, interval int) *historyService {
	return &historyService{
		historyRepo: repo,
		entityRepo:  &memEntityRepo{},
		sf:          &singleflight.Group{},
		logger:      zap.NewNop(),
		config:      &AppServiceConfig{SnapshotInterval: interval},
		now:         time.Now,
	}
}

func recordUpdate(t *testing.T, s *historyService, uid int64, content string) *dto.HistoryRecordDTO {
	t.Helper()
	res, err := s.RecordAction(context.Background(), uid, &dto.HistoryRecordRequest{
		EntityType: "note",
		EntityID:   7,
		Action:     "update",
		Content:    content,
	}, Provenance{Source: "test"})
	if err != nil {
		t.Fatalf("RecordAction failed: %v", err)
	}
	return res
}

func reconstruct(t *testing.T, s *historyService, uid, version int64) *dto.HistoryReconstructDTO {
	t.Helper()
	res, err := s.Reconstruct(context.Background(), uid, &dto.HistoryReconstructRequest{
		EntityType: "note",
		EntityID:   7,
		Version:    version,
	})
	if err != nil {
		t.Fatalf("Reconstruct v%d failed: %v", version, err)
	}
	return res
}

// --- Tests ---

func TestHistoryService_RecordAndReconstruct(t *testing.T) {
	repo := &memHistoryRepo{}
	s := newTestHistoryService(repo, 100)

	first, err := s.RecordAction(context.Background(), 1, &dto.HistoryRecordRequest{
		EntityType: "note",
		EntityID:   7,
		Action:     "create",
		Content:    "Hello",
	}, Provenance{Source: "web", AuthType: "jwt", TokenPrefix: "eyJhbG"})
	if err != nil {
		t.Fatalf("RecordAction create failed: %v", err)
	}
	if first.Version != 1 {
		t.Errorf("expected version 1, got %d", first.Version)
	}
	if first.PayloadKind != "snapshot" {
		t.Errorf("first row must be a snapshot, got %s", first.PayloadKind)
	}

	second := recordUpdate(t, s, 1, "Hello World")
	third := recordUpdate(t, s, 1, "Hello World!")
	if second.Version != 2 || third.Version != 3 {
		t.Fatalf("versions must increase by one: %d, %d", second.Version, third.Version)
	}
	if second.PayloadKind != "diff" || third.PayloadKind != "diff" {
		t.Errorf("follow-up rows should be diffs: %s, %s", second.PayloadKind, third.PayloadKind)
	}

	want := []string{"Hello", "Hello World", "Hello World!"}
	for i, expected := range want {
		res := reconstruct(t, s, 1, int64(i+1))
		if res.Content == nil || *res.Content != expected {
			t.Errorf("v%d: expected %q, got %v", i+1, expected, res.Content)
		}
		if res.Deleted {
			t.Errorf("v%d: unexpected deleted flag", i+1)
		}
		if len(res.Warnings) != 0 {
			t.Errorf("v%d: unexpected warnings %v", i+1, res.Warnings)
		}
	}
}

func TestHistoryService_SnapshotInterval(t *testing.T) {
	repo := &memHistoryRepo{}
	s := newTestHistoryService(repo, 5)

	contents := []string{"a", "ab", "abc", "abcd", "abcde", "abcdef", "abcdefg"}
	for _, c := range contents {
		recordUpdate(t, s, 1, c)
	}

	kinds := map[int64]domain.PayloadKind{}
	for _, r := range repo.records {
		kinds[r.Version] = r.Payload.Kind()
	}
	// v1 首行快照，v6 距 v1 达到间隔 5 强制快照
	if kinds[1] != domain.PayloadSnapshot {
		t.Errorf("v1 must be snapshot")
	}
	for _, v := range []int64{2, 3, 4, 5, 7} {
		if kinds[v] != domain.PayloadDiff {
			t.Errorf("v%d must be diff, got %v", v, kinds[v])
		}
	}
	if kinds[6] != domain.PayloadSnapshot {
		t.Errorf("v6 must be a forced snapshot, got %v", kinds[6])
	}

	for i, c := range contents {
		res := reconstruct(t, s, 1, int64(i+1))
		if res.Content == nil || *res.Content != c {
			t.Errorf("v%d: expected %q, got %v", i+1, c, res.Content)
		}
	}
}

func TestHistoryService_DeleteAndUndelete(t *testing.T) {
	repo := &memHistoryRepo{}
	s := newTestHistoryService(repo, 100)

	recordUpdate(t, s, 1, "alpha")
	recordUpdate(t, s, 1, "beta")

	del, err := s.RecordAction(context.Background(), 1, &dto.HistoryRecordRequest{
		EntityType: "note", EntityID: 7, Action: "delete",
	}, Provenance{})
	if err != nil {
		t.Fatalf("delete action failed: %v", err)
	}
	if del.Version != 3 {
		t.Errorf("delete row must claim a version, got %d", del.Version)
	}
	if del.PayloadKind != "tombstone" {
		t.Errorf("delete row payload must be tombstone, got %s", del.PayloadKind)
	}

	res := reconstruct(t, s, 1, 3)
	if !res.Deleted {
		t.Error("reconstructing a delete row must report deleted")
	}
	if res.Content != nil {
		t.Errorf("deleted version has no content, got %q", *res.Content)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("delete reconstruction is not an error: %v", res.Warnings)
	}

	// 删除前的版本仍可重建
	prev := reconstruct(t, s, 1, 2)
	if prev.Content == nil || *prev.Content != "beta" {
		t.Errorf("v2 after delete: expected beta, got %v", prev.Content)
	}

	undel, err := s.RecordAction(context.Background(), 1, &dto.HistoryRecordRequest{
		EntityType: "note", EntityID: 7, Action: "undelete", Content: "beta",
	}, Provenance{})
	if err != nil {
		t.Fatalf("undelete action failed: %v", err)
	}
	if undel.PayloadKind != "snapshot" {
		t.Errorf("first content row after tombstone must be a snapshot, got %s", undel.PayloadKind)
	}
	back := reconstruct(t, s, 1, 4)
	if back.Content == nil || *back.Content != "beta" {
		t.Errorf("v4: expected beta, got %v", back.Content)
	}
}

func TestHistoryService_AuditActionsClaimNoVersion(t *testing.T) {
	repo := &memHistoryRepo{}
	s := newTestHistoryService(repo, 100)

	recordUpdate(t, s, 1, "content")

	for _, action := range []string{"archive", "unarchive", "archive"} {
		res, err := s.RecordAction(context.Background(), 1, &dto.HistoryRecordRequest{
			EntityType: "note", EntityID: 7, Action: action,
		}, Provenance{})
		if err != nil {
			t.Fatalf("%s failed: %v", action, err)
		}
		if res.Version != 0 {
			t.Errorf("%s must not claim a version, got %d", action, res.Version)
		}
		if res.PayloadKind != "audit" {
			t.Errorf("%s payload must be audit, got %s", action, res.PayloadKind)
		}
	}

	latest, _ := repo.GetLatestVersion(context.Background(), 1, domain.EntityRef{Type: domain.EntityTypeNote, ID: 7})
	if latest != 1 {
		t.Errorf("audit events must not advance the version counter, latest = %d", latest)
	}
}

func TestHistoryService_VersionConflictRetry(t *testing.T) {
	// 第一次写入输掉竞争，重试一次后成功
	repo := &memHistoryRepo{failCreates: 1}
	s := newTestHistoryService(repo, 100)

	res := recordUpdate(t, s, 1, "content")
	if res.Version != 1 {
		t.Errorf("retried write should land on version 1, got %d", res.Version)
	}

	// 连续冲突耗尽重试次数
	repo2 := &memHistoryRepo{failCreates: 2}
	s2 := newTestHistoryService(repo2, 100)
	_, err := s2.RecordAction(context.Background(), 1, &dto.HistoryRecordRequest{
		EntityType: "note", EntityID: 7, Action: "update", Content: "content",
	}, Provenance{})
	if !errors.Is(err, code.ErrorVersionConflict) {
		t.Errorf("expected ErrorVersionConflict, got %v", err)
	}
}

func TestHistoryService_CorruptPatchWarnings(t *testing.T) {
	repo := &memHistoryRepo{}
	s := newTestHistoryService(repo, 100)

	recordUpdate(t, s, 1, "one")
	recordUpdate(t, s, 1, "two")
	recordUpdate(t, s, 1, "three")

	// 破坏 v2 的补丁，重建 v3 应尽力继续并收集警告
	for _, r := range repo.records {
		if r.Version == 2 {
			r.Payload = domain.DiffPayload("@@ this is not a patch @@")
		}
	}

	res := reconstruct(t, s, 1, 3)
	if len(res.Warnings) == 0 {
		t.Error("corrupt patch must surface warnings")
	}
	if res.Content == nil {
		t.Error("reconstruction should still return best-effort content")
	}
}

func TestHistoryService_NotFoundDistinction(t *testing.T) {
	repo := &memHistoryRepo{}
	s := newTestHistoryService(repo, 100)

	// 整条链不存在
	_, err := s.GetVersion(context.Background(), 1, &dto.HistoryVersionRequest{
		EntityType: "note", EntityID: 7, Version: 1,
	})
	if !errors.Is(err, code.ErrorHistoryNotFound) {
		t.Errorf("expected ErrorHistoryNotFound, got %v", err)
	}

	recordUpdate(t, s, 1, "content")

	// 链存在但版本不存在
	_, err = s.GetVersion(context.Background(), 1, &dto.HistoryVersionRequest{
		EntityType: "note", EntityID: 7, Version: 5,
	})
	if !errors.Is(err, code.ErrorVersionNotFound) {
		t.Errorf("expected ErrorVersionNotFound, got %v", err)
	}

	// 未知实体类型
	_, err = s.GetVersion(context.Background(), 1, &dto.HistoryVersionRequest{
		EntityType: "widget", EntityID: 7, Version: 1,
	})
	if !errors.Is(err, code.ErrorInvalidEntity) {
		t.Errorf("expected ErrorInvalidEntity, got %v", err)
	}
}

func TestHistoryService_MissingAnchorRejected(t *testing.T) {
	repo := &memHistoryRepo{}
	s := newTestHistoryService(repo, 100)
	s.entityRepo = &memEntityRepo{missing: map[domain.EntityRef]bool{
		{Type: domain.EntityTypeNote, ID: 7}: true,
	}}

	_, err := s.RecordAction(context.Background(), 1, &dto.HistoryRecordRequest{
		EntityType: "note", EntityID: 7, Action: "update", Content: "content",
	}, Provenance{})
	if !errors.Is(err, code.ErrorInvalidEntity) {
		t.Errorf("expected ErrorInvalidEntity for missing anchor, got %v", err)
	}
}

func TestHistoryService_DeleteEntityHistory(t *testing.T) {
	repo := &memHistoryRepo{}
	s := newTestHistoryService(repo, 100)

	recordUpdate(t, s, 1, "one")
	recordUpdate(t, s, 1, "two")

	deleted, err := s.DeleteEntityHistory(context.Background(), 1, &dto.EntityHistoryListRequest{
		EntityType: "note", EntityID: 7,
	})
	if err != nil {
		t.Fatalf("DeleteEntityHistory failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 rows deleted, got %d", deleted)
	}
	if len(repo.records) != 0 {
		t.Errorf("expected empty repo, got %d rows", len(repo.records))
	}
}

// 随机内容链上的版本重建恒等性
func TestHistoryService_ReconstructProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)
	properties.Property("every version reconstructs to the content written at it", prop.ForAll(
		func(contents []string) bool {
			repo := &memHistoryRepo{}
			s := newTestHistoryService(repo, 4)
			for _, c := range contents {
				if _, err := s.RecordAction(context.Background(), 1, &dto.HistoryRecordRequest{
					EntityType: "note", EntityID: 7, Action: "update", Content: c,
				}, Provenance{}); err != nil {
					return false
				}
			}
			for i, c := range contents {
				res, err := s.Reconstruct(context.Background(), 1, &dto.HistoryReconstructRequest{
					EntityType: "note", EntityID: 7, Version: int64(i + 1),
				})
				if err != nil || res.Content == nil || *res.Content != c {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(6, gen.AnyString()),
	))
	properties.TestingRun(t)
}
