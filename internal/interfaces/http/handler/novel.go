// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"inkwell-api/internal/application/novel"
	"inkwell-api/internal/domain/entity"
	"inkwell-api/internal/domain/repository"
	"inkwell-api/internal/interfaces/http/dto"
	"inkwell-api/pkg/logger"
)

// NovelHandler 小说处理器
type NovelHandler struct {
	novels *novel.Service
}

// NewNovelHandler 创建小说处理器
func NewNovelHandler(novels *novel.Service) *NovelHandler {
	return &NovelHandler{novels: novels}
}

// ListNovels 获取小说列表
// @Summary 获取小说列表
// @Tags Novels
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Success 200 {object} dto.Response[[]dto.NovelResponse]
// @Router /v1/novels [get]
func (h *NovelHandler) ListNovels(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)

	result, err := h.novels.List(ctx, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list novels", err)
		dto.FromError(c, err, "failed to list novels")
		return
	}

	resp := dto.ToNovelListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// CreateNovel 创建小说
// @Summary 创建小说
// @Tags Novels
// @Accept json
// @Produce json
// @Param body body dto.CreateNovelRequest true "小说信息"
// @Success 201 {object} dto.Response[dto.NovelResponse]
// @Router /v1/novels [post]
func (h *NovelHandler) CreateNovel(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateNovelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	n, err := h.novels.Create(ctx, req.Title, req.Author, req.Description)
	if err != nil {
		logger.Error(ctx, "failed to create novel", err)
		dto.FromError(c, err, "failed to create novel")
		return
	}

	dto.Created(c, dto.ToNovelResponse(n))
}

// GetNovel 获取小说详情
// @Summary 获取小说详情
// @Tags Novels
// @Produce json
// @Param nid path int true "小说 ID"
// @Success 200 {object} dto.Response[dto.NovelResponse]
// @Router /v1/novels/{nid} [get]
func (h *NovelHandler) GetNovel(c *gin.Context) {
	ctx := c.Request.Context()
	novelID, ok := dto.BindNovelID(c)
	if !ok {
		return
	}

	n, err := h.novels.Get(ctx, novelID)
	if err != nil {
		dto.FromError(c, err, "failed to get novel")
		return
	}

	dto.Success(c, dto.ToNovelResponse(n))
}

// UpdateNovel 更新小说
// @Summary 更新小说元数据
// @Tags Novels
// @Accept json
// @Produce json
// @Param nid path int true "小说 ID"
// @Param body body dto.UpdateNovelRequest true "更新字段"
// @Success 200 {object} dto.Response[dto.NovelResponse]
// @Router /v1/novels/{nid} [put]
func (h *NovelHandler) UpdateNovel(c *gin.Context) {
	ctx := c.Request.Context()
	novelID, ok := dto.BindNovelID(c)
	if !ok {
		return
	}

	var req dto.UpdateNovelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	var status *entity.NovelStatus
	if req.Status != nil {
		s := entity.NovelStatus(*req.Status)
		status = &s
	}

	n, err := h.novels.Update(ctx, novelID, req.Title, req.Author, req.Description, status)
	if err != nil {
		dto.FromError(c, err, "failed to update novel")
		return
	}

	dto.Success(c, dto.ToNovelResponse(n))
}

// DeleteNovel 删除小说
// @Summary 删除小说
// @Tags Novels
// @Param nid path int true "小说 ID"
// @Success 204
// @Router /v1/novels/{nid} [delete]
func (h *NovelHandler) DeleteNovel(c *gin.Context) {
	ctx := c.Request.Context()
	novelID, ok := dto.BindNovelID(c)
	if !ok {
		return
	}

	if err := h.novels.Delete(ctx, novelID); err != nil {
		dto.FromError(c, err, "failed to delete novel")
		return
	}

	dto.NoContent(c)
}
