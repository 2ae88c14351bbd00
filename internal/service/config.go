// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	App AppServiceConfig // App related config // 应用相关配置
}

// AppServiceConfig app service configuration
// AppServiceConfig 应用服务配置
type AppServiceConfig struct {
	// SnapshotInterval forced snapshot interval in versions // 强制快照的版本间隔
	SnapshotInterval int
	// HistoryRetentionDays retention window in days per user tier, 0 means keep forever // 各用户等级的保留天数，0 表示永久保留
	HistoryRetentionDays map[string]int
	// RetentionUserBatchSize user batch size for the retention sweep // 保留期清理的用户批次大小
	RetentionUserBatchSize int
}

// retentionDaysFor 获取用户等级对应的保留天数，未配置的等级回退到 free
func (c *AppServiceConfig) retentionDaysFor(tier string) int {
	if c == nil || c.HistoryRetentionDays == nil {
		return 0
	}
	if days, ok := c.HistoryRetentionDays[tier]; ok {
		return days
	}
	return c.HistoryRetentionDays["free"]
}
