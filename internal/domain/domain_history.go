// Package domain 定义领域模型和接口
package domain

import (
	"errors"
	"time"
)

// ErrDuplicateVersion 表示并发写入导致的版本唯一约束冲突
var ErrDuplicateVersion = errors.New("history version already exists")

// EntityType 历史记录归属的实体类型
type EntityType string

const (
	EntityTypeBookmark EntityType = "bookmark"
	EntityTypeNote     EntityType = "note"
	EntityTypePrompt   EntityType = "prompt"
)

// AllEntityTypes 实体类型的封闭集合
var AllEntityTypes = []EntityType{EntityTypeBookmark, EntityTypeNote, EntityTypePrompt}

// IsValid 检查实体类型是否属于封闭集合
func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypeBookmark, EntityTypeNote, EntityTypePrompt:
		return true
	}
	return false
}

func (t EntityType) String() string {
	return string(t)
}

// ParseEntityType 解析实体类型字符串
func ParseEntityType(s string) (EntityType, bool) {
	t := EntityType(s)
	return t, t.IsValid()
}

// EntityRef 标识一条历史链归属的实体（锚点）
type EntityRef struct {
	Type EntityType
	ID   int64
}

// HistoryAction 历史记录的操作类型
type HistoryAction string

const (
	ActionCreate    HistoryAction = "create"
	ActionUpdate    HistoryAction = "update"
	ActionDelete    HistoryAction = "delete"
	ActionUndelete  HistoryAction = "undelete"
	ActionArchive   HistoryAction = "archive"
	ActionUnarchive HistoryAction = "unarchive"
)

// IsValid 检查操作类型是否合法
func (a HistoryAction) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionUndelete, ActionArchive, ActionUnarchive:
		return true
	}
	return false
}

// IsAudit 归档/取消归档为纯审计事件，不占用版本号
func (a HistoryAction) IsAudit() bool {
	return a == ActionArchive || a == ActionUnarchive
}

func (a HistoryAction) String() string {
	return string(a)
}

// PayloadKind 历史记录内容负载的种类
type PayloadKind int

const (
	// PayloadAudit 无版本审计事件，不携带内容
	PayloadAudit PayloadKind = iota
	// PayloadSnapshot 携带该版本完整内容的快照行
	PayloadSnapshot
	// PayloadDiff 携带反向补丁的增量行
	PayloadDiff
	// PayloadTombstone 删除行，占用版本号但无内容
	PayloadTombstone
)

// ContentPayload 内容负载，快照、补丁与墓碑互斥
// 通过构造函数保证不会出现同时携带快照和补丁的非法状态
type ContentPayload struct {
	kind     PayloadKind
	snapshot string
	diff     string
}

// SnapshotPayload 构造快照负载
func SnapshotPayload(content string) ContentPayload {
	return ContentPayload{kind: PayloadSnapshot, snapshot: content}
}

// DiffPayload 构造反向补丁负载
func DiffPayload(blob string) ContentPayload {
	return ContentPayload{kind: PayloadDiff, diff: blob}
}

// TombstonePayload 构造删除墓碑负载
func TombstonePayload() ContentPayload {
	return ContentPayload{kind: PayloadTombstone}
}

// AuditPayload 构造审计事件负载
func AuditPayload() ContentPayload {
	return ContentPayload{kind: PayloadAudit}
}

func (p ContentPayload) Kind() PayloadKind {
	return p.kind
}

// Snapshot 返回快照内容，仅快照行有效
func (p ContentPayload) Snapshot() (string, bool) {
	return p.snapshot, p.kind == PayloadSnapshot
}

// Diff 返回反向补丁，仅增量行有效
func (p ContentPayload) Diff() (string, bool) {
	return p.diff, p.kind == PayloadDiff
}

// HistoryRecord 历史记录领域模型
// 一经写入不可变更，仅由清理任务或实体硬删除级联删除
type HistoryRecord struct {
	ID               string
	UID              int64
	Entity           EntityRef
	Action           HistoryAction
	Version          int64 // 0 表示审计事件，无版本号
	Payload          ContentPayload
	MetadataSnapshot string
	ChangedFields    []string
	Source           string
	AuthType         string
	TokenPrefix      string
	CreatedAt        time.Time
}

// HasVersion 该记录是否占用版本号
func (r *HistoryRecord) HasVersion() bool {
	return r.Version > 0
}
