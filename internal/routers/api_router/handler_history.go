package api_router

import (
	"context"

	"github.com/haierkeys/content-hub-service/internal/app"
	"github.com/haierkeys/content-hub-service/internal/dto"
	"github.com/haierkeys/content-hub-service/internal/middleware"
	"github.com/haierkeys/content-hub-service/internal/service"
	pkgapp "github.com/haierkeys/content-hub-service/pkg/app"
	"github.com/haierkeys/content-hub-service/pkg/code"
	apperrors "github.com/haierkeys/content-hub-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HistoryHandler 内容历史 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type HistoryHandler struct {
	*Handler
}

// NewHistoryHandler 创建 HistoryHandler 实例
func NewHistoryHandler(a *app.App) *HistoryHandler {
	return &HistoryHandler{
		Handler: NewHandler(a),
	}
}

// HistoryGetRequestParams 获取历史记录详情请求参数
type HistoryGetRequestParams struct {
	ID string `form:"id" binding:"required"`
}

// provenance 从请求上下文收集写入来源信息
func (h *HistoryHandler) provenance(c *gin.Context) service.Provenance {
	prov := service.Provenance{}
	if v, ok := c.Get("client_name"); ok {
		if name, ok := v.(string); ok {
			prov.Source = name
		}
	}
	if user := pkgapp.GetUserToken(c); user != nil {
		prov.AuthType = user.AuthType
	}
	if v, ok := c.Get("token_prefix"); ok {
		if prefix, ok := v.(string); ok {
			prov.TokenPrefix = prefix
		}
	}
	return prov
}

// logError 记录错误日志，包含 Trace ID
func (h *HistoryHandler) logError(ctx context.Context, method string, err error) {
	traceID := middleware.GetTraceID(ctx)
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", traceID),
	)
}

// Record 追加一条历史记录
// @Summary 追加历史记录
// @Description 为实体的一次变更追加一条不可变历史记录，返回写入的行
// @Tags 内容历史
// @Security UserAuthToken
// @Param token header string true "认证 Token"
// @Accept json
// @Produce json
// @Param params body dto.HistoryRecordRequest true "变更参数"
// @Success 200 {object} pkgapp.Res{data=dto.HistoryRecordDTO} "成功"
// @Router /api/history [post]
func (h *HistoryHandler) Record(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.HistoryRecordRequest{}

	// 参数绑定和验证
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("HistoryHandler.Record.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	// 获取用户 ID
	uid := pkgapp.GetUID(c)
	if uid == 0 {
		h.App.Logger().Error("HistoryHandler.Record err uid=0")
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	// 获取请求上下文
	ctx := c.Request.Context()

	record, err := h.App.HistoryService.RecordAction(ctx, uid, params, h.provenance(c))
	if err != nil {
		h.logError(ctx, "HistoryHandler.Record", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(record))
}

// Get 获取单条历史记录详情
// @Summary 获取历史记录详情
// @Description 根据历史记录 ID 获取单条特定的历史记录
// @Tags 内容历史
// @Security UserAuthToken
// @Param token header string true "认证 Token"
// @Produce json
// @Param id query string true "历史记录 ID"
// @Success 200 {object} pkgapp.Res{data=dto.HistoryRecordDTO} "成功"
// @Router /api/history [get]
func (h *HistoryHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &HistoryGetRequestParams{}

	// 参数绑定和验证
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("HistoryHandler.Get.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	// 获取用户 ID
	uid := pkgapp.GetUID(c)
	if uid == 0 {
		h.App.Logger().Error("HistoryHandler.Get err uid=0")
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	// 获取请求上下文
	ctx := c.Request.Context()

	record, err := h.App.HistoryService.Get(ctx, uid, params.ID)
	if err != nil {
		h.logError(ctx, "HistoryHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(record))
}

// GetVersion 获取实体指定版本的历史记录
// @Summary 获取指定版本的历史记录
// @Description 根据实体锚点和版本号获取单条历史记录
// @Tags 内容历史
// @Security UserAuthToken
// @Param token header string true "认证 Token"
// @Produce json
// @Param params query dto.HistoryVersionRequest true "查询参数"
// @Success 200 {object} pkgapp.Res{data=dto.HistoryRecordDTO} "成功"
// @Router /api/history/version [get]
func (h *HistoryHandler) GetVersion(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.HistoryVersionRequest{}

	// 参数绑定和验证
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("HistoryHandler.GetVersion.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	// 获取用户 ID
	uid := pkgapp.GetUID(c)
	if uid == 0 {
		h.App.Logger().Error("HistoryHandler.GetVersion err uid=0")
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	// 获取请求上下文
	ctx := c.Request.Context()

	record, err := h.App.HistoryService.GetVersion(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "HistoryHandler.GetVersion", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(record))
}

// List 获取用户历史列表
// @Summary 获取用户历史列表
// @Description 分页获取用户所有实体的历史记录，可按实体类型过滤，列表不携带内容
// @Tags 内容历史
// @Security UserAuthToken
// @Param token header string true "认证 Token"
// @Produce json
// @Param params query dto.HistoryListRequest true "查询参数"
// @Success 200 {object} pkgapp.Res{data=[]dto.HistoryNoContentDTO} "成功"
// @Router /api/histories [get]
func (h *HistoryHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.HistoryListRequest{}

	// 参数绑定和验证
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("HistoryHandler.List.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	// 获取用户 ID
	uid := pkgapp.GetUID(c)
	if uid == 0 {
		h.App.Logger().Error("HistoryHandler.List err uid=0")
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	// 获取请求上下文
	ctx := c.Request.Context()

	pager := &pkgapp.Pager{Page: pkgapp.GetPage(c), PageSize: pkgapp.GetPageSize(c)}

	list, count, err := h.App.HistoryService.ListByUser(ctx, uid, params, pager)
	if err != nil {
		h.logError(ctx, "HistoryHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, list, int(count))
}

// ListByEntity 获取单个实体的历史链
// @Summary 获取实体历史链
// @Description 分页获取单个实体的全部历史记录，按版本倒序，列表不携带内容
// @Tags 内容历史
// @Security UserAuthToken
// @Param token header string true "认证 Token"
// @Produce json
// @Param params query dto.EntityHistoryListRequest true "查询参数"
// @Success 200 {object} pkgapp.Res{data=[]dto.HistoryNoContentDTO} "成功"
// @Router /api/history/entity [get]
func (h *HistoryHandler) ListByEntity(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.EntityHistoryListRequest{}

	// 参数绑定和验证
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("HistoryHandler.ListByEntity errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	// 获取用户 ID
	uid := pkgapp.GetUID(c)
	if uid == 0 {
		h.App.Logger().Error("HistoryHandler.ListByEntity err uid=0")
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	// 获取请求上下文
	ctx := c.Request.Context()

	pager := &pkgapp.Pager{Page: pkgapp.GetPage(c), PageSize: pkgapp.GetPageSize(c)}

	list, count, err := h.App.HistoryService.ListByEntity(ctx, uid, params, pager)
	if err != nil {
		h.logError(ctx, "HistoryHandler.ListByEntity", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, list, int(count))
}

// Reconstruct 重建指定版本的完整内容
// @Summary 重建版本内容
// @Description 从快照和差异链重建实体在指定版本的完整内容
// @Tags 内容历史
// @Security UserAuthToken
// @Param token header string true "认证 Token"
// @Produce json
// @Param params query dto.HistoryReconstructRequest true "查询参数"
// @Success 200 {object} pkgapp.Res{data=dto.HistoryReconstructDTO} "成功"
// @Router /api/history/reconstruct [get]
func (h *HistoryHandler) Reconstruct(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.HistoryReconstructRequest{}

	// 参数绑定和验证
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("HistoryHandler.Reconstruct errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	// 获取用户 ID
	uid := pkgapp.GetUID(c)
	if uid == 0 {
		h.App.Logger().Error("HistoryHandler.Reconstruct err uid=0")
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	// 获取请求上下文
	ctx := c.Request.Context()

	result, err := h.App.HistoryService.Reconstruct(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "HistoryHandler.Reconstruct", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(result))
}

// DeleteEntity 删除实体的全部历史链
// @Summary 删除实体历史链
// @Description 硬删除单个实体的全部历史记录，用于实体被彻底清除后的级联清理
// @Tags 内容历史
// @Security UserAuthToken
// @Param token header string true "认证 Token"
// @Produce json
// @Param params query dto.EntityHistoryListRequest true "删除参数"
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/history/entity [delete]
func (h *HistoryHandler) DeleteEntity(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.EntityHistoryListRequest{}

	// 参数绑定和验证
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("HistoryHandler.DeleteEntity errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	// 获取用户 ID
	uid := pkgapp.GetUID(c)
	if uid == 0 {
		h.App.Logger().Error("HistoryHandler.DeleteEntity err uid=0")
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	// 获取请求上下文
	ctx := c.Request.Context()

	deleted, err := h.App.HistoryService.DeleteEntityHistory(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "HistoryHandler.DeleteEntity", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(gin.H{"deleted": deleted}))
}
