package code

import "net/http"

// 通用状态码
var (
	Success = NewSuss(0, lang{en: "Success", zh_cn: "成功"})

	ErrorServerInternal = NewError(100001, lang{en: "Server internal error", zh_cn: "服务器内部错误"}).WithStatusCode(http.StatusInternalServerError)
	ErrorInvalidParams  = NewError(100002, lang{en: "Invalid request parameters", zh_cn: "请求参数错误"}).WithStatusCode(http.StatusBadRequest)
	ErrorNotFound       = NewError(100003, lang{en: "Resource not found", zh_cn: "资源不存在"}).WithStatusCode(http.StatusNotFound)
	ErrorDBQuery        = NewError(100004, lang{en: "Database query error", zh_cn: "数据库查询错误"}).WithStatusCode(http.StatusInternalServerError)
	ErrorTooManyRequests = NewError(100005, lang{en: "Too many requests", zh_cn: "请求过于频繁"}).WithStatusCode(http.StatusTooManyRequests)
)

// 认证相关状态码
var (
	ErrorNotUserAuthToken     = NewError(100101, lang{en: "Auth token is missing", zh_cn: "认证 Token 缺失"}).WithStatusCode(http.StatusUnauthorized)
	ErrorInvalidUserAuthToken = NewError(100102, lang{en: "Auth token is invalid", zh_cn: "认证 Token 无效"}).WithStatusCode(http.StatusUnauthorized)
)

// 历史记录相关状态码
var (
	ErrorHistoryNotFound = NewError(100201, lang{en: "History record not found", zh_cn: "历史记录不存在"}).WithStatusCode(http.StatusNotFound)
	ErrorVersionNotFound = NewError(100202, lang{en: "History version not found", zh_cn: "历史版本不存在"}).WithStatusCode(http.StatusNotFound)
	ErrorVersionConflict = NewError(100203, lang{en: "History version conflict, concurrent write detected", zh_cn: "历史版本冲突，检测到并发写入"}).WithStatusCode(http.StatusConflict)
	ErrorInvalidEntity   = NewError(100204, lang{en: "Unknown entity type", zh_cn: "未知的实体类型"}).WithStatusCode(http.StatusBadRequest)
	ErrorHistoryRecord   = NewError(100205, lang{en: "Failed to record history", zh_cn: "历史记录写入失败"}).WithStatusCode(http.StatusInternalServerError)
)
