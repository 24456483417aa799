package dto

import (
	"time"

	"inkwell-api/internal/application/revision"
	"inkwell-api/internal/application/textdiff"
	"inkwell-api/internal/domain/entity"
)

// CreateVersionRequest 创建版本请求
type CreateVersionRequest struct {
	CommitMessage string `json:"commit_message"`
	AutoSave      bool   `json:"auto_save"`
}

// VersionResponse 版本元数据响应
type VersionResponse struct {
	ID              int64     `json:"id"`
	ChapterID       int64     `json:"chapter_id"`
	ParentVersionID *int64    `json:"parent_version_id,omitempty"`
	Type            string    `json:"type"`
	WordCount       int       `json:"word_count"`
	CommitMessage   string    `json:"commit_message"`
	IsAutoSave      bool      `json:"is_auto_save"`
	CreatedAt       time.Time `json:"created_at"`
}

// VersionContentResponse 版本全文响应
type VersionContentResponse struct {
	VersionResponse
	Content string `json:"content"`
}

// CompareResponse 版本比较响应
type CompareResponse struct {
	FromVersionID int64                   `json:"from_version_id"`
	ToVersionID   int64                   `json:"to_version_id"`
	DiffText      string                  `json:"diff_text"`
	Statistics    textdiff.Statistics     `json:"statistics"`
	Similarity    float64                 `json:"similarity"`
	SimilarChunks []textdiff.SimilarChunk `json:"similar_chunks,omitempty"`
}

// PruneResponse 修剪结果响应
type PruneResponse struct {
	Pruned int64 `json:"pruned"`
}

// ToVersionResponse 转换版本实体为响应
func ToVersionResponse(v *entity.ChapterVersion) VersionResponse {
	return VersionResponse{
		ID:              v.ID,
		ChapterID:       v.ChapterID,
		ParentVersionID: v.ParentVersionID,
		Type:            string(v.Type),
		WordCount:       v.WordCount,
		CommitMessage:   v.CommitMessage,
		IsAutoSave:      v.IsAutoSave,
		CreatedAt:       v.CreatedAt,
	}
}

// ToVersionListResponse 转换版本列表为响应
func ToVersionListResponse(items []*entity.ChapterVersion) []VersionResponse {
	out := make([]VersionResponse, 0, len(items))
	for _, v := range items {
		out = append(out, ToVersionResponse(v))
	}
	return out
}

// ToCompareResponse 转换比较结果为响应
func ToCompareResponse(r *revision.CompareResult) CompareResponse {
	return CompareResponse{
		FromVersionID: r.FromVersionID,
		ToVersionID:   r.ToVersionID,
		DiffText:      r.DiffText,
		Statistics:    r.Statistics,
		Similarity:    r.Similarity,
		SimilarChunks: r.SimilarChunks,
	}
}
