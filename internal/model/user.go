package model

import "github.com/haierkeys/content-hub-service/pkg/timex"

const TableNameUser = "user"

// User mapped from table <user>
type User struct {
	UID       int64      `gorm:"column:uid;primaryKey;autoIncrement" json:"uid"`
	Email     string     `gorm:"column:email;type:varchar(128);not null;uniqueIndex:uidx_email" json:"email"`
	Nickname  string     `gorm:"column:nickname;type:varchar(64);not null" json:"nickname"`
	Tier      string     `gorm:"column:tier;type:varchar(16);not null;default:free" json:"tier"`
	Password  string     `gorm:"column:password;type:varchar(128)" json:"password"`
	Salt      string     `gorm:"column:salt;type:varchar(64)" json:"salt"`
	IsDeleted int64      `gorm:"column:is_deleted;not null;default:0" json:"isDeleted"`
	UpdatedAt timex.Time `gorm:"column:updated_at;type:datetime" json:"updatedAt"`
	CreatedAt timex.Time `gorm:"column:created_at;type:datetime" json:"createdAt"`
}

// TableName User's table name
func (*User) TableName() string {
	return TableNameUser
}
