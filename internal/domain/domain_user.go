package domain

import "time"

// User 用户领域模型
// 本仓库只承载历史引擎需要的最小字段：保留策略按 Tier 解析
type User struct {
	UID       int64
	Email     string
	Nickname  string
	Tier      string
	CreatedAt time.Time
}
