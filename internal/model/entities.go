package model

import "github.com/haierkeys/content-hub-service/pkg/timex"

const (
	TableNameBookmark = "bookmark"
	TableNameNote     = "note"
	TableNamePrompt   = "prompt"
)

// Bookmark mapped from table <bookmark>
// 历史账本的锚点实体，软删除行仍视为存在
type Bookmark struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UID        int64      `gorm:"column:uid;not null;index:idx_bookmark_uid" json:"uid"`
	Title      string     `gorm:"column:title;type:varchar(255);not null" json:"title"`
	URL        string     `gorm:"column:url;type:text;not null" json:"url"`
	IsArchived int64      `gorm:"column:is_archived;not null;default:0" json:"isArchived"`
	IsDeleted  int64      `gorm:"column:is_deleted;not null;default:0" json:"isDeleted"`
	UpdatedAt  timex.Time `gorm:"column:updated_at;type:datetime" json:"updatedAt"`
	CreatedAt  timex.Time `gorm:"column:created_at;type:datetime" json:"createdAt"`
}

// TableName Bookmark's table name
func (*Bookmark) TableName() string {
	return TableNameBookmark
}

// Note mapped from table <note>
type Note struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UID        int64      `gorm:"column:uid;not null;index:idx_note_uid" json:"uid"`
	Title      string     `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Content    string     `gorm:"column:content;type:text" json:"content"`
	IsArchived int64      `gorm:"column:is_archived;not null;default:0" json:"isArchived"`
	IsDeleted  int64      `gorm:"column:is_deleted;not null;default:0" json:"isDeleted"`
	UpdatedAt  timex.Time `gorm:"column:updated_at;type:datetime" json:"updatedAt"`
	CreatedAt  timex.Time `gorm:"column:created_at;type:datetime" json:"createdAt"`
}

// TableName Note's table name
func (*Note) TableName() string {
	return TableNameNote
}

// Prompt mapped from table <prompt>
type Prompt struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UID        int64      `gorm:"column:uid;not null;index:idx_prompt_uid" json:"uid"`
	Title      string     `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Content    string     `gorm:"column:content;type:text" json:"content"`
	IsArchived int64      `gorm:"column:is_archived;not null;default:0" json:"isArchived"`
	IsDeleted  int64      `gorm:"column:is_deleted;not null;default:0" json:"isDeleted"`
	UpdatedAt  timex.Time `gorm:"column:updated_at;type:datetime" json:"updatedAt"`
	CreatedAt  timex.Time `gorm:"column:created_at;type:datetime" json:"createdAt"`
}

// TableName Prompt's table name
func (*Prompt) TableName() string {
	return TableNamePrompt
}
