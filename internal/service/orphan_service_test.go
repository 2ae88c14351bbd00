package service

import (
	"context"
	"testing"
	"time"

	"github.com/haierkeys/content-hub-service/internal/domain"

	"go.uber.org/zap"
)

// --- Mocks ---

// orphanMockHistoryRepo 基于存活锚点集合判定孤儿行
type orphanMockHistoryRepo struct {
	memHistoryRepo
	live map[domain.EntityRef]bool
}

func (m *orphanMockHistoryRepo) CountOrphans(ctx context.Context, entityType domain.EntityType) (int64, error) {
	var count int64
	for _, r := range m.records {
		if r.Entity.Type == entityType && !m.live[r.Entity] {
			count++
		}
	}
	return count, nil
}

func (m *orphanMockHistoryRepo) DeleteOrphans(ctx context.Context, entityType domain.EntityType) (int64, error) {
	var kept []*domain.HistoryRecord
	var deleted int64
	for _, r := range m.records {
		if r.Entity.Type == entityType && !m.live[r.Entity] {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return deleted, nil
}

// --- Tests ---

func newOrphanRepo() *orphanMockHistoryRepo {
	liveNote := domain.EntityRef{Type: domain.EntityTypeNote, ID: 1}
	goneNote := domain.EntityRef{Type: domain.EntityTypeNote, ID: 2}
	goneBookmark := domain.EntityRef{Type: domain.EntityTypeBookmark, ID: 3}

	return &orphanMockHistoryRepo{
		memHistoryRepo: memHistoryRepo{records: []*domain.HistoryRecord{
			{ID: "a", UID: 1, Entity: liveNote, Version: 1, CreatedAt: time.Now()},
			{ID: "b", UID: 1, Entity: goneNote, Version: 1, CreatedAt: time.Now()},
			{ID: "c", UID: 1, Entity: goneNote, Version: 2, CreatedAt: time.Now()},
			{ID: "d", UID: 1, Entity: goneBookmark, Version: 1, CreatedAt: time.Now()},
		}},
		live: map[domain.EntityRef]bool{liveNote: true},
	}
}

func TestOrphanService_DryRun(t *testing.T) {
	repo := newOrphanRepo()
	s := NewOrphanService(repo, zap.NewNop())

	result, err := s.Sweep(context.Background(), false)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if !result.DryRun {
		t.Error("default sweep must be a dry run")
	}
	if result.Deleted != 3 {
		t.Errorf("expected 3 orphan rows counted, got %d", result.Deleted)
	}
	if result.PerEntity["note"] != 2 || result.PerEntity["bookmark"] != 1 {
		t.Errorf("per-entity counts mismatch: %v", result.PerEntity)
	}
	if len(repo.records) != 4 {
		t.Error("dry run must not delete anything")
	}
}

func TestOrphanService_DeleteAndIdempotence(t *testing.T) {
	repo := newOrphanRepo()
	s := NewOrphanService(repo, zap.NewNop())

	result, err := s.Sweep(context.Background(), true)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if result.Deleted != 3 {
		t.Errorf("expected 3 orphan rows deleted, got %d", result.Deleted)
	}
	if len(repo.records) != 1 || repo.records[0].ID != "a" {
		t.Error("rows of live anchors must survive the sweep")
	}

	// 再次执行无可清理行
	again, err := s.Sweep(context.Background(), true)
	if err != nil {
		t.Fatalf("second Sweep failed: %v", err)
	}
	if again.Deleted != 0 {
		t.Errorf("orphan sweep must be idempotent, got %d", again.Deleted)
	}
}
