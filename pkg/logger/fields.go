package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldUID 用户 ID 字段
	FieldUID = "uid"

	// FieldAction 操作类型字段
	FieldAction = "action"

	// FieldEntityType 实体类型字段
	FieldEntityType = "entityType"

	// FieldEntityID 实体 ID 字段
	FieldEntityID = "entityId"

	// FieldVersion 历史版本号字段
	FieldVersion = "version"

	// FieldHistoryID 历史记录 ID 字段
	FieldHistoryID = "historyId"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldError 错误信息字段
	FieldError = "error"

	// FieldDeleted 删除行数字段
	FieldDeleted = "deleted"
)
