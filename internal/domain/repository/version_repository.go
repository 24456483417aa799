// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"inkwell-api/internal/domain/entity"
)

// VersionRepository 章节版本仓储接口
type VersionRepository interface {
	// Create 创建版本记录（写入后填充 ID）
	Create(ctx context.Context, version *entity.ChapterVersion) error

	// GetByID 根据 ID 获取版本，不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id int64) (*entity.ChapterVersion, error)

	// ListByChapter 获取章节的全部版本（新到旧）
	ListByChapter(ctx context.Context, chapterID int64) ([]*entity.ChapterVersion, error)

	// DeleteByIDs 按 ID 批量删除版本，返回删除条数
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)

	// DeleteByChapter 删除章节的全部版本（章节删除时级联）
	DeleteByChapter(ctx context.Context, chapterID int64) error

	// PromoteToSnapshot 将差异版本提升为快照：写入完整正文、
	// 清空差异负载并断开父链接。仅供清理流程在事务内使用。
	PromoteToSnapshot(ctx context.Context, id int64, content string) error
}
