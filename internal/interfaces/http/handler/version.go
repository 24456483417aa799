package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"inkwell-api/internal/application/revision"
	"inkwell-api/internal/interfaces/http/dto"
	"inkwell-api/pkg/logger"
)

// VersionHandler 版本处理器
type VersionHandler struct {
	revisions *revision.Service
}

// NewVersionHandler 创建版本处理器
func NewVersionHandler(revisions *revision.Service) *VersionHandler {
	return &VersionHandler{revisions: revisions}
}

// CreateVersion 创建版本
// @Summary 为章节当前正文创建版本
// @Tags Versions
// @Accept json
// @Produce json
// @Param cid path int true "章节 ID"
// @Param body body dto.CreateVersionRequest true "提交信息"
// @Success 201 {object} dto.Response[dto.VersionResponse]
// @Router /v1/chapters/{cid}/versions [post]
func (h *VersionHandler) CreateVersion(c *gin.Context) {
	ctx := c.Request.Context()
	chapterID, ok := dto.BindChapterID(c)
	if !ok {
		return
	}

	var req dto.CreateVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	version, err := h.revisions.CreateVersion(ctx, chapterID, req.CommitMessage, req.AutoSave)
	if err != nil {
		logger.Error(ctx, "failed to create version", err, "chapter_id", chapterID)
		dto.FromError(c, err, "failed to create version")
		return
	}
	dto.Created(c, dto.ToVersionResponse(version))
}

// ListVersions 获取版本历史
// @Summary 获取章节的版本历史，最新在前
// @Tags Versions
// @Produce json
// @Param cid path int true "章节 ID"
// @Success 200 {object} dto.Response[[]dto.VersionResponse]
// @Router /v1/chapters/{cid}/versions [get]
func (h *VersionHandler) ListVersions(c *gin.Context) {
	ctx := c.Request.Context()
	chapterID, ok := dto.BindChapterID(c)
	if !ok {
		return
	}

	versions, err := h.revisions.Timeline(ctx, chapterID)
	if err != nil {
		dto.FromError(c, err, "failed to list versions")
		return
	}
	dto.Success(c, dto.ToVersionListResponse(versions))
}

// PruneVersions 修剪自动保存版本
// @Summary 删除超出保留数量的旧自动保存版本
// @Tags Versions
// @Produce json
// @Param cid path int true "章节 ID"
// @Success 200 {object} dto.Response[dto.PruneResponse]
// @Router /v1/chapters/{cid}/versions/prune [post]
func (h *VersionHandler) PruneVersions(c *gin.Context) {
	ctx := c.Request.Context()
	chapterID, ok := dto.BindChapterID(c)
	if !ok {
		return
	}

	pruned, err := h.revisions.PruneAutoSaves(ctx, chapterID)
	if err != nil {
		logger.Error(ctx, "failed to prune versions", err, "chapter_id", chapterID)
		dto.FromError(c, err, "failed to prune versions")
		return
	}
	dto.Success(c, dto.PruneResponse{Pruned: pruned})
}

// GetVersion 获取版本元数据
// @Summary 获取版本元数据
// @Tags Versions
// @Produce json
// @Param vid path int true "版本 ID"
// @Success 200 {object} dto.Response[dto.VersionResponse]
// @Router /v1/versions/{vid} [get]
func (h *VersionHandler) GetVersion(c *gin.Context) {
	ctx := c.Request.Context()
	versionID, ok := dto.BindVersionID(c)
	if !ok {
		return
	}

	version, err := h.revisions.GetVersion(ctx, versionID)
	if err != nil {
		dto.FromError(c, err, "failed to get version")
		return
	}
	dto.Success(c, dto.ToVersionResponse(version))
}

// GetVersionContent 获取版本全文
// @Summary 重建并返回版本的章节全文
// @Tags Versions
// @Produce json
// @Param vid path int true "版本 ID"
// @Success 200 {object} dto.Response[dto.VersionContentResponse]
// @Router /v1/versions/{vid}/content [get]
func (h *VersionHandler) GetVersionContent(c *gin.Context) {
	ctx := c.Request.Context()
	versionID, ok := dto.BindVersionID(c)
	if !ok {
		return
	}

	version, err := h.revisions.GetVersion(ctx, versionID)
	if err != nil {
		dto.FromError(c, err, "failed to get version")
		return
	}

	content, err := h.revisions.Restore(ctx, versionID)
	if err != nil {
		logger.Error(ctx, "failed to restore version", err, "version_id", versionID)
		dto.FromError(c, err, "failed to restore version")
		return
	}

	dto.Success(c, dto.VersionContentResponse{
		VersionResponse: dto.ToVersionResponse(version),
		Content:         content,
	})
}

// RestoreVersion 回滚章节到指定版本
// @Summary 将章节正文回滚到指定版本
// @Tags Versions
// @Produce json
// @Param vid path int true "版本 ID"
// @Success 200 {object} dto.Response[dto.ChapterContentResponse]
// @Router /v1/versions/{vid}/restore [post]
func (h *VersionHandler) RestoreVersion(c *gin.Context) {
	ctx := c.Request.Context()
	versionID, ok := dto.BindVersionID(c)
	if !ok {
		return
	}

	chapter, err := h.revisions.RestoreToChapter(ctx, versionID)
	if err != nil {
		logger.Error(ctx, "failed to restore chapter", err, "version_id", versionID)
		dto.FromError(c, err, "failed to restore chapter")
		return
	}
	dto.Success(c, dto.ToChapterContentResponse(chapter))
}

// CompareVersions 比较两个版本
// @Summary 比较两个版本的全文差异
// @Tags Versions
// @Produce json
// @Param from query int true "起始版本 ID"
// @Param to query int true "目标版本 ID"
// @Success 200 {object} dto.Response[dto.CompareResponse]
// @Router /v1/versions/compare [get]
func (h *VersionHandler) CompareVersions(c *gin.Context) {
	ctx := c.Request.Context()

	fromID, err := strconv.ParseInt(c.Query("from"), 10, 64)
	if err != nil || fromID <= 0 {
		dto.BadRequest(c, "invalid from version id")
		return
	}
	toID, err := strconv.ParseInt(c.Query("to"), 10, 64)
	if err != nil || toID <= 0 {
		dto.BadRequest(c, "invalid to version id")
		return
	}

	result, err := h.revisions.Compare(ctx, fromID, toID)
	if err != nil {
		logger.Error(ctx, "failed to compare versions", err, "from", fromID, "to", toID)
		dto.FromError(c, err, "failed to compare versions")
		return
	}
	dto.Success(c, dto.ToCompareResponse(result))
}
