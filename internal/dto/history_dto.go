// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import (
	"github.com/haierkeys/content-hub-service/pkg/timex"
)

// HistoryRecordRequest Request parameters for appending a history record
// 追加历史记录的请求参数
type HistoryRecordRequest struct {
	EntityType    string                 `json:"entityType" form:"entityType" binding:"required"`
	EntityID      int64                  `json:"entityId" form:"entityId" binding:"required"`
	Action        string                 `json:"action" form:"action" binding:"required"`
	Content       string                 `json:"content" form:"content"`
	Metadata      map[string]interface{} `json:"metadata" form:"metadata"`
	ChangedFields []string               `json:"changedFields" form:"changedFields"`
}

// HistoryListRequest User history list request parameters
// 用户历史列表请求参数
type HistoryListRequest struct {
	EntityType string `json:"entityType" form:"entityType"`
}

// EntityHistoryListRequest Entity history list request parameters
// 单个实体历史列表请求参数
type EntityHistoryListRequest struct {
	EntityType string `json:"entityType" form:"entityType" binding:"required"`
	EntityID   int64  `json:"entityId" form:"entityId" binding:"required"`
}

// HistoryVersionRequest Request parameters for a single version row
// 单个版本行请求参数
type HistoryVersionRequest struct {
	EntityType string `json:"entityType" form:"entityType" binding:"required"`
	EntityID   int64  `json:"entityId" form:"entityId" binding:"required"`
	Version    int64  `json:"version" form:"version" binding:"required,min=1"`
}

// HistoryReconstructRequest Request parameters for reconstructing content at a version
// 重建指定版本内容的请求参数
type HistoryReconstructRequest struct {
	EntityType string `json:"entityType" form:"entityType" binding:"required"`
	EntityID   int64  `json:"entityId" form:"entityId" binding:"required"`
	Version    int64  `json:"version" form:"version" binding:"required,min=1"`
}

// HistoryRecordDTO History record data transfer object
// 历史记录数据传输对象
type HistoryRecordDTO struct {
	ID               string      `json:"id" form:"id"`
	EntityType       string      `json:"entityType" form:"entityType"`
	EntityID         int64       `json:"entityId" form:"entityId"`
	Action           string      `json:"action" form:"action"`
	Version          int64       `json:"version,omitempty" form:"version"`
	PayloadKind      string      `json:"payloadKind" form:"payloadKind"`
	HasSnapshot      bool        `json:"hasSnapshot" form:"hasSnapshot"`
	MetadataSnapshot interface{} `json:"metadata,omitempty"`
	ChangedFields    []string    `json:"changedFields,omitempty"`
	Source           string      `json:"source,omitempty" form:"source"`
	AuthType         string      `json:"authType,omitempty" form:"authType"`
	TokenPrefix      string      `json:"tokenPrefix,omitempty" form:"tokenPrefix"`
	CreatedAt        timex.Time  `json:"createdAt" form:"createdAt"`
}

// HistoryNoContentDTO History record DTO for list views, never carries content
// 列表视图历史记录 DTO，不携带内容
type HistoryNoContentDTO struct {
	ID            string     `json:"id" form:"id"`
	EntityType    string     `json:"entityType" form:"entityType"`
	EntityID      int64      `json:"entityId" form:"entityId"`
	Action        string     `json:"action" form:"action"`
	Version       int64      `json:"version,omitempty" form:"version"`
	HasSnapshot   bool       `json:"hasSnapshot" form:"hasSnapshot"`
	ChangedFields []string   `json:"changedFields,omitempty"`
	Source        string     `json:"source,omitempty" form:"source"`
	CreatedAt     timex.Time `json:"createdAt" form:"createdAt"`
}

// HistoryReconstructDTO Reconstructed content at a version
// 重建出的版本内容
// Content 为 null 表示该版本是删除行
type HistoryReconstructDTO struct {
	EntityType string   `json:"entityType" form:"entityType"`
	EntityID   int64    `json:"entityId" form:"entityId"`
	Version    int64    `json:"version" form:"version"`
	Content    *string  `json:"content"`
	Deleted    bool     `json:"deleted" form:"deleted"`
	Warnings   []string `json:"warnings,omitempty"`
}

// SweepResultDTO Result of a retention or orphan sweep run
// 清理任务执行结果
type SweepResultDTO struct {
	UsersScanned int64            `json:"usersScanned,omitempty"`
	Deleted      int64            `json:"deleted"`
	PerUser      map[int64]int64  `json:"perUser,omitempty"`
	PerEntity    map[string]int64 `json:"perEntity,omitempty"`
	DryRun       bool             `json:"dryRun"`
}
