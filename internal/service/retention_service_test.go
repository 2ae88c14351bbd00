package service

import (
	"context"
	"testing"
	"time"

	"github.com/haierkeys/content-hub-service/internal/domain"

	"go.uber.org/zap"
)

// --- Mocks ---

type retentionMockUserRepo struct {
	domain.UserRepository
	users []*domain.User
}

func (m *retentionMockUserRepo) ListBatch(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	if offset >= len(m.users) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.users) {
		end = len(m.users)
	}
	return m.users[offset:end], nil
}

// --- Tests ---

func TestRetentionService_SweepOnce(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	noteRef := domain.EntityRef{Type: domain.EntityTypeNote, ID: 1}

	repo := &memHistoryRepo{records: []*domain.HistoryRecord{
		// free 用户：31 天前的记录被清理，29 天前的保留
		{ID: "a", UID: 1, Entity: noteRef, Version: 1, CreatedAt: now.Add(-31 * 24 * time.Hour)},
		{ID: "b", UID: 1, Entity: noteRef, Version: 2, CreatedAt: now.Add(-29 * 24 * time.Hour)},
		// pro 用户等级未配置上限为 0，永久保留
		{ID: "c", UID: 2, Entity: noteRef, Version: 1, CreatedAt: now.Add(-400 * 24 * time.Hour)},
	}}

	s := &retentionService{
		historyRepo: repo,
		userRepo: &retentionMockUserRepo{users: []*domain.User{
			{UID: 1, Tier: "free"},
			{UID: 2, Tier: "pro"},
		}},
		logger: zap.NewNop(),
		config: &AppServiceConfig{
			HistoryRetentionDays: map[string]int{"free": 30, "pro": 0},
		},
		now: func() time.Time { return now },
	}

	result, err := s.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("SweepOnce failed: %v", err)
	}

	if result.UsersScanned != 2 {
		t.Errorf("expected 2 users scanned, got %d", result.UsersScanned)
	}
	if result.Deleted != 1 {
		t.Errorf("expected 1 row deleted, got %d", result.Deleted)
	}
	if result.PerUser[1] != 1 {
		t.Errorf("expected 1 row deleted for uid 1, got %d", result.PerUser[1])
	}
	if len(repo.records) != 2 {
		t.Errorf("expected 2 rows remaining, got %d", len(repo.records))
	}
	for _, r := range repo.records {
		if r.ID == "a" {
			t.Error("expired row was not deleted")
		}
	}
}

func TestRetentionService_SweepBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cutoffAge := 30 * 24 * time.Hour
	noteRef := domain.EntityRef{Type: domain.EntityTypeNote, ID: 1}

	repo := &memHistoryRepo{records: []*domain.HistoryRecord{
		// 恰好落在边界上的记录保留，只有严格早于 cutoff 的被清理
		{ID: "exact", UID: 1, Entity: noteRef, Version: 1, CreatedAt: now.Add(-cutoffAge)},
		{ID: "older", UID: 1, Entity: noteRef, Version: 2, CreatedAt: now.Add(-cutoffAge - time.Second)},
	}}

	s := &retentionService{
		historyRepo: repo,
		userRepo:    &retentionMockUserRepo{users: []*domain.User{{UID: 1, Tier: "free"}}},
		logger:      zap.NewNop(),
		config:      &AppServiceConfig{HistoryRetentionDays: map[string]int{"free": 30}},
		now:         func() time.Time { return now },
	}

	result, err := s.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("SweepOnce failed: %v", err)
	}
	if result.Deleted != 1 {
		t.Errorf("expected exactly 1 row deleted, got %d", result.Deleted)
	}
	if len(repo.records) != 1 || repo.records[0].ID != "exact" {
		t.Error("the record created exactly at the boundary must be kept")
	}
}

func TestRetentionService_UserBatches(t *testing.T) {
	// 250 个用户按批次 100 遍历，全部被扫描
	var users []*domain.User
	for i := 1; i <= 250; i++ {
		users = append(users, &domain.User{UID: int64(i), Tier: "free"})
	}

	s := &retentionService{
		historyRepo: &memHistoryRepo{},
		userRepo:    &retentionMockUserRepo{users: users},
		logger:      zap.NewNop(),
		config: &AppServiceConfig{
			HistoryRetentionDays:   map[string]int{"free": 30},
			RetentionUserBatchSize: 100,
		},
		now: time.Now,
	}

	result, err := s.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("SweepOnce failed: %v", err)
	}
	if result.UsersScanned != 250 {
		t.Errorf("expected 250 users scanned, got %d", result.UsersScanned)
	}
}
