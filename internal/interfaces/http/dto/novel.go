package dto

import (
	"time"

	"inkwell-api/internal/domain/entity"
)

// CreateNovelRequest 创建小说请求
type CreateNovelRequest struct {
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

// UpdateNovelRequest 更新小说请求，nil 字段保持不变
type UpdateNovelRequest struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// NovelResponse 小说响应
type NovelResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	WordCount   int       `json:"word_count"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToNovelResponse 转换小说实体为响应
func ToNovelResponse(n *entity.Novel) NovelResponse {
	return NovelResponse{
		ID:          n.ID,
		Title:       n.Title,
		Author:      n.Author,
		Description: n.Description,
		WordCount:   n.WordCount,
		Status:      string(n.Status),
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

// ToNovelListResponse 转换小说列表为响应
func ToNovelListResponse(items []*entity.Novel) []NovelResponse {
	out := make([]NovelResponse, 0, len(items))
	for _, n := range items {
		out = append(out, ToNovelResponse(n))
	}
	return out
}
