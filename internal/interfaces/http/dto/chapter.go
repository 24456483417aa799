package dto

import (
	"time"

	"inkwell-api/internal/application/chaptertree"
	"inkwell-api/internal/domain/entity"
)

// CreateChapterRequest 创建章节请求
type CreateChapterRequest struct {
	Title    string `json:"title" binding:"required"`
	ParentID *int64 `json:"parent_id"`
	Type     string `json:"type"`
}

// RenameChapterRequest 重命名章节请求
type RenameChapterRequest struct {
	Title string `json:"title" binding:"required"`
}

// UpdateContentRequest 更新正文请求
type UpdateContentRequest struct {
	Content  string `json:"content"`
	AutoSave bool   `json:"auto_save"`
}

// MoveChapterRequest 移动章节请求
type MoveChapterRequest struct {
	ParentID *int64 `json:"parent_id"`
	Position int    `json:"position"`
}

// ChapterResponse 章节响应（不含正文）
type ChapterResponse struct {
	ID        int64     `json:"id"`
	NovelID   int64     `json:"novel_id"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	WordCount int       `json:"word_count"`
	SortPath  string    `json:"sort_path"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChapterContentResponse 章节正文响应
type ChapterContentResponse struct {
	ChapterResponse
	Content string `json:"content"`
}

// ChapterNodeResponse 章节树节点响应
type ChapterNodeResponse struct {
	ChapterResponse
	Depth    int                   `json:"depth"`
	Children []ChapterNodeResponse `json:"children,omitempty"`
}

// FlatChapterResponse 扁平章节响应
type FlatChapterResponse struct {
	ChapterResponse
	Depth int `json:"depth"`
}

// ToChapterResponse 转换章节实体为响应
func ToChapterResponse(ch *entity.Chapter) ChapterResponse {
	return ChapterResponse{
		ID:        ch.ID,
		NovelID:   ch.NovelID,
		ParentID:  ch.ParentID,
		Title:     ch.Title,
		Type:      string(ch.Type),
		WordCount: ch.WordCount,
		SortPath:  ch.SortPath,
		CreatedAt: ch.CreatedAt,
		UpdatedAt: ch.UpdatedAt,
	}
}

// ToChapterContentResponse 转换章节实体为正文响应
func ToChapterContentResponse(ch *entity.Chapter) ChapterContentResponse {
	return ChapterContentResponse{
		ChapterResponse: ToChapterResponse(ch),
		Content:         ch.Content,
	}
}

// ToChapterTreeResponse 转换章节树为嵌套响应
func ToChapterTreeResponse(tree *chaptertree.Tree) []ChapterNodeResponse {
	var convert func(id int64) ChapterNodeResponse
	convert = func(id int64) ChapterNodeResponse {
		node, _ := tree.Get(id)
		resp := ChapterNodeResponse{
			ChapterResponse: ToChapterResponse(node.Chapter),
			Depth:           node.Depth,
		}
		for _, child := range node.Children {
			resp.Children = append(resp.Children, convert(child))
		}
		return resp
	}

	out := make([]ChapterNodeResponse, 0, len(tree.Roots))
	for _, rootID := range tree.Roots {
		out = append(out, convert(rootID))
	}
	return out
}

// ToFlatChapterResponse 转换先序遍历结果为响应
func ToFlatChapterResponse(nodes []chaptertree.FlatNode) []FlatChapterResponse {
	out := make([]FlatChapterResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, FlatChapterResponse{
			ChapterResponse: ToChapterResponse(n.Chapter),
			Depth:           n.Depth,
		})
	}
	return out
}
