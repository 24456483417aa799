package handler

import (
	"github.com/gin-gonic/gin"

	"inkwell-api/internal/application/chaptertree"
	"inkwell-api/internal/domain/entity"
	"inkwell-api/internal/interfaces/http/dto"
	"inkwell-api/pkg/logger"
)

// ChapterHandler 章节处理器
type ChapterHandler struct {
	tree *chaptertree.Service
}

// NewChapterHandler 创建章节处理器
func NewChapterHandler(tree *chaptertree.Service) *ChapterHandler {
	return &ChapterHandler{tree: tree}
}

// CreateChapter 创建章节
// @Summary 在指定父节点下创建章节
// @Tags Chapters
// @Accept json
// @Produce json
// @Param nid path int true "小说 ID"
// @Param body body dto.CreateChapterRequest true "章节信息"
// @Success 201 {object} dto.Response[dto.ChapterResponse]
// @Router /v1/novels/{nid}/chapters [post]
func (h *ChapterHandler) CreateChapter(c *gin.Context) {
	ctx := c.Request.Context()
	novelID, ok := dto.BindNovelID(c)
	if !ok {
		return
	}

	var req dto.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	chapter, err := h.tree.CreateChapter(ctx, novelID, req.Title, req.ParentID, entity.ChapterType(req.Type))
	if err != nil {
		logger.Error(ctx, "failed to create chapter", err, "novel_id", novelID)
		dto.FromError(c, err, "failed to create chapter")
		return
	}

	dto.Created(c, dto.ToChapterResponse(chapter))
}

// ListChapters 获取章节树
// @Summary 获取小说的章节层级，flat=true 时返回先序遍历列表
// @Tags Chapters
// @Produce json
// @Param nid path int true "小说 ID"
// @Param flat query bool false "返回扁平列表"
// @Success 200 {object} dto.Response[[]dto.ChapterNodeResponse]
// @Router /v1/novels/{nid}/chapters [get]
func (h *ChapterHandler) ListChapters(c *gin.Context) {
	ctx := c.Request.Context()
	novelID, ok := dto.BindNovelID(c)
	if !ok {
		return
	}

	if c.Query("flat") == "true" {
		nodes, err := h.tree.ListFlattened(ctx, novelID)
		if err != nil {
			dto.FromError(c, err, "failed to list chapters")
			return
		}
		dto.Success(c, dto.ToFlatChapterResponse(nodes))
		return
	}

	tree, err := h.tree.GetTree(ctx, novelID)
	if err != nil {
		dto.FromError(c, err, "failed to load chapter tree")
		return
	}
	dto.Success(c, dto.ToChapterTreeResponse(tree))
}

// GetChapter 获取章节详情（含正文）
// @Summary 获取章节详情
// @Tags Chapters
// @Produce json
// @Param cid path int true "章节 ID"
// @Success 200 {object} dto.Response[dto.ChapterContentResponse]
// @Router /v1/chapters/{cid} [get]
func (h *ChapterHandler) GetChapter(c *gin.Context) {
	ctx := c.Request.Context()
	chapterID, ok := dto.BindChapterID(c)
	if !ok {
		return
	}

	chapter, err := h.tree.GetChapter(ctx, chapterID)
	if err != nil {
		dto.FromError(c, err, "failed to get chapter")
		return
	}
	dto.Success(c, dto.ToChapterContentResponse(chapter))
}

// RenameChapter 重命名章节
// @Summary 重命名章节
// @Tags Chapters
// @Accept json
// @Produce json
// @Param cid path int true "章节 ID"
// @Param body body dto.RenameChapterRequest true "新标题"
// @Success 200 {object} dto.Response[dto.ChapterResponse]
// @Router /v1/chapters/{cid} [put]
func (h *ChapterHandler) RenameChapter(c *gin.Context) {
	ctx := c.Request.Context()
	chapterID, ok := dto.BindChapterID(c)
	if !ok {
		return
	}

	var req dto.RenameChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	chapter, err := h.tree.Rename(ctx, chapterID, req.Title)
	if err != nil {
		dto.FromError(c, err, "failed to rename chapter")
		return
	}
	dto.Success(c, dto.ToChapterResponse(chapter))
}

// UpdateContent 更新章节正文
// @Summary 更新章节正文，auto_save=true 时同时记录自动保存版本
// @Tags Chapters
// @Accept json
// @Produce json
// @Param cid path int true "章节 ID"
// @Param body body dto.UpdateContentRequest true "正文内容"
// @Success 200 {object} dto.Response[dto.ChapterContentResponse]
// @Router /v1/chapters/{cid}/content [put]
func (h *ChapterHandler) UpdateContent(c *gin.Context) {
	ctx := c.Request.Context()
	chapterID, ok := dto.BindChapterID(c)
	if !ok {
		return
	}

	var req dto.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	chapter, err := h.tree.UpdateContent(ctx, chapterID, req.Content, req.AutoSave)
	if err != nil {
		logger.Error(ctx, "failed to update content", err, "chapter_id", chapterID)
		dto.FromError(c, err, "failed to update content")
		return
	}
	dto.Success(c, dto.ToChapterContentResponse(chapter))
}

// MoveChapter 移动章节
// @Summary 将章节移动到新父节点下的指定位置
// @Tags Chapters
// @Accept json
// @Produce json
// @Param cid path int true "章节 ID"
// @Param body body dto.MoveChapterRequest true "目标位置"
// @Success 200 {object} dto.Response[dto.ChapterResponse]
// @Failure 422 {object} dto.ErrorResponse "移动会产生环"
// @Router /v1/chapters/{cid}/move [post]
func (h *ChapterHandler) MoveChapter(c *gin.Context) {
	ctx := c.Request.Context()
	chapterID, ok := dto.BindChapterID(c)
	if !ok {
		return
	}

	var req dto.MoveChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	chapter, err := h.tree.MoveChapter(ctx, chapterID, req.ParentID, req.Position)
	if err != nil {
		dto.FromError(c, err, "failed to move chapter")
		return
	}
	dto.Success(c, dto.ToChapterResponse(chapter))
}

// ArchiveChapter 归档章节
// @Summary 归档章节
// @Tags Chapters
// @Param cid path int true "章节 ID"
// @Success 204
// @Router /v1/chapters/{cid}/archive [post]
func (h *ChapterHandler) ArchiveChapter(c *gin.Context) {
	ctx := c.Request.Context()
	chapterID, ok := dto.BindChapterID(c)
	if !ok {
		return
	}

	if err := h.tree.Archive(ctx, chapterID); err != nil {
		dto.FromError(c, err, "failed to archive chapter")
		return
	}
	dto.NoContent(c)
}

// DeleteChapter 删除章节
// @Summary 删除章节及其全部版本
// @Tags Chapters
// @Param cid path int true "章节 ID"
// @Success 204
// @Router /v1/chapters/{cid} [delete]
func (h *ChapterHandler) DeleteChapter(c *gin.Context) {
	ctx := c.Request.Context()
	chapterID, ok := dto.BindChapterID(c)
	if !ok {
		return
	}

	if err := h.tree.Delete(ctx, chapterID); err != nil {
		logger.Error(ctx, "failed to delete chapter", err, "chapter_id", chapterID)
		dto.FromError(c, err, "failed to delete chapter")
		return
	}
	dto.NoContent(c)
}
