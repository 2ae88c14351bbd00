package model

import "github.com/haierkeys/content-hub-service/pkg/timex"

const TableNameContentHistory = "content_history"

// ContentHistory mapped from table <content_history>
// 追加式历史账本，行一经写入不再变更
// (uid, entity_type, entity_id, version) 唯一约束用于并发写入时的版本 CAS
// idx_snapshot_lookup 服务最近快照查找
type ContentHistory struct {
	ID               string     `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	UID              int64      `gorm:"column:uid;not null;uniqueIndex:uidx_anchor_version,priority:1;index:idx_uid_created,priority:1;index:idx_snapshot_lookup,priority:1" json:"uid"`
	EntityType       string     `gorm:"column:entity_type;type:varchar(16);not null;uniqueIndex:uidx_anchor_version,priority:2;index:idx_orphan,priority:1;index:idx_snapshot_lookup,priority:2" json:"entityType"`
	EntityID         int64      `gorm:"column:entity_id;not null;uniqueIndex:uidx_anchor_version,priority:3;index:idx_orphan,priority:2;index:idx_snapshot_lookup,priority:3" json:"entityId"`
	Action           string     `gorm:"column:action;type:varchar(16);not null" json:"action"`
	Version          *int64     `gorm:"column:version;uniqueIndex:uidx_anchor_version,priority:4;index:idx_snapshot_lookup,priority:5" json:"version"`
	HasSnapshot      bool       `gorm:"column:has_snapshot;not null;default:false;index:idx_snapshot_lookup,priority:4" json:"hasSnapshot"`
	ContentSnapshot  *string    `gorm:"column:content_snapshot;type:text" json:"contentSnapshot"`
	ContentDiff      *string    `gorm:"column:content_diff;type:text" json:"contentDiff"`
	MetadataSnapshot string     `gorm:"column:metadata_snapshot;type:text" json:"metadataSnapshot"`
	ChangedFields    string     `gorm:"column:changed_fields;type:text" json:"changedFields"`
	Source           string     `gorm:"column:source;type:varchar(64)" json:"source"`
	AuthType         string     `gorm:"column:auth_type;type:varchar(32)" json:"authType"`
	TokenPrefix      string     `gorm:"column:token_prefix;type:varchar(16)" json:"tokenPrefix"`
	CreatedAt        timex.Time `gorm:"column:created_at;type:datetime;autoCreateTime:false;index:idx_uid_created,priority:2" json:"createdAt"`
}

// TableName ContentHistory's table name
func (*ContentHistory) TableName() string {
	return TableNameContentHistory
}
